package manifest

import (
	"testing"

	"github.com/conveyor-release/conveyor/pkg/semver"
)

func mustParse(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}
