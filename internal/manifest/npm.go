package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

var _ Handler = npmHandler{}

type npmHandler struct{}

func (npmHandler) ReadVersion(content []byte) (semver.Version, error) {
	var pkg map[string]interface{}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return semver.Version{}, fmt.Errorf("parsing package.json: %w", err)
	}
	versionStr, ok := pkg["version"].(string)
	if !ok {
		return semver.Version{}, fmt.Errorf("package.json: %w", ErrNoVersion)
	}
	v, err := semver.Parse(versionStr)
	if err != nil {
		return semver.Version{}, corerr.NewSemverParseError(versionStr, err)
	}
	return v, nil
}

var npmVersionRe = regexp.MustCompile(`("version"\s*:\s*")([^"]*)(")`)

// WriteVersion replaces only the version string's bytes via regex, rather
// than re-marshaling the document, to preserve key order and indentation.
// The first "version" key in the document is the one rewritten.
func (npmHandler) WriteVersion(content []byte, newVersion semver.Version, _ string) ([]byte, error) {
	loc := npmVersionRe.FindSubmatchIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("no version field found in package.json")
	}
	out := append([]byte(nil), content[:loc[4]]...)
	out = append(out, newVersion.String()...)
	return append(out, content[loc[5]:]...), nil
}
