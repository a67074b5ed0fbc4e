package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

var _ Handler = cargoHandler{}

type cargoHandler struct{}

type cargoManifest struct {
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

func (cargoHandler) ReadVersion(content []byte) (semver.Version, error) {
	var m cargoManifest
	if err := toml.Unmarshal(content, &m); err != nil {
		return semver.Version{}, fmt.Errorf("parsing Cargo.toml: %w", err)
	}
	if m.Package.Version == "" {
		return semver.Version{}, fmt.Errorf("[package] table of Cargo.toml: %w", ErrNoVersion)
	}
	v, err := semver.Parse(m.Package.Version)
	if err != nil {
		return semver.Version{}, corerr.NewSemverParseError(m.Package.Version, err)
	}
	return v, nil
}

var cargoVersionRe = regexp.MustCompile(`(?m)^([ \t]*version[ \t]*=[ \t]*")([^"]*)(")`)

// WriteVersion rewrites only the bytes inside the quotes of the version
// string within the [package] table, leaving comments, ordering, and
// whitespace elsewhere byte-identical.
func (cargoHandler) WriteVersion(content []byte, newVersion semver.Version, _ string) ([]byte, error) {
	s := string(content)

	start := strings.Index(s, "[package]")
	if start == -1 {
		return nil, fmt.Errorf("no [package] section found in Cargo.toml")
	}

	sectionBody := s[start+len("[package]"):]
	end := len(s)
	if loc := regexp.MustCompile(`\n\[`).FindStringIndex(sectionBody); loc != nil {
		end = start + len("[package]") + loc[0]
	}

	section := s[start:end]
	loc := cargoVersionRe.FindStringSubmatchIndex(section)
	if loc == nil {
		return nil, fmt.Errorf("no version field found in [package] section of Cargo.toml")
	}

	return []byte(s[:start+loc[4]] + newVersion.String() + s[start+loc[5]:]), nil
}
