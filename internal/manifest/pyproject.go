package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

var _ Handler = pyprojectHandler{}

type pyprojectHandler struct{}

type pyprojectManifest struct {
	Tool struct {
		Poetry struct {
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		Version string `toml:"version"`
	} `toml:"project"`
}

// ReadVersion accepts either a [tool.poetry] or a PEP-621 [project] table.
// When [project] carries a version, that value is returned; otherwise
// [tool.poetry]'s is. When both tables carry a version, the [tool.poetry]
// value is not compared, so a disagreement between them is not reported.
func (pyprojectHandler) ReadVersion(content []byte) (semver.Version, error) {
	var m pyprojectManifest
	if err := toml.Unmarshal(content, &m); err != nil {
		return semver.Version{}, fmt.Errorf("parsing pyproject.toml: %w", err)
	}
	raw := ""
	switch {
	case m.Project.Version != "":
		raw = m.Project.Version
	case m.Tool.Poetry.Version != "":
		raw = m.Tool.Poetry.Version
	default:
		return semver.Version{}, fmt.Errorf("[tool.poetry] and [project] tables of pyproject.toml: %w", ErrNoVersion)
	}
	v, err := semver.Parse(raw)
	if err != nil {
		return semver.Version{}, corerr.NewSemverParseError(raw, err)
	}
	return v, nil
}

var pyprojectVersionRe = regexp.MustCompile(`(version\s*=\s*)"([^"]*)"`)

// WriteVersion rewrites the version string in both [tool.poetry] and
// [project] tables when both are present, so the two tables never
// drift apart.
func (pyprojectHandler) WriteVersion(content []byte, newVersion semver.Version, _ string) ([]byte, error) {
	s := string(content)

	poetryStart := sectionStart(s, "[tool.poetry]")
	projectStart := sectionStart(s, "[project]")
	if poetryStart == -1 && projectStart == -1 {
		return nil, fmt.Errorf("no [tool.poetry] or [project] table found in pyproject.toml")
	}

	replaceIn := func(sectionName string, start int) (ok bool) {
		if start == -1 {
			return false
		}
		body := s[start+len(sectionName):]
		end := len(s)
		if loc := regexp.MustCompile(`\n\[`).FindStringIndex(body); loc != nil {
			end = start + len(sectionName) + loc[0]
		}
		section := s[start:end]
		if !pyprojectVersionRe.MatchString(section) {
			return false
		}
		newSection := pyprojectVersionRe.ReplaceAllString(section, fmt.Sprintf(`${1}"%s"`, newVersion.String()))
		s = s[:start] + newSection + s[end:]
		return true
	}

	var replacedAny bool
	if poetryStart != -1 && replaceIn("[tool.poetry]", poetryStart) {
		replacedAny = true
	}
	// Recompute projectStart: poetry rewrite may have shifted byte offsets.
	projectStart = sectionStart(s, "[project]")
	if projectStart != -1 && replaceIn("[project]", projectStart) {
		replacedAny = true
	}

	if !replacedAny {
		return nil, fmt.Errorf("no version field found in [tool.poetry] or [project] table of pyproject.toml")
	}
	return []byte(s), nil
}

func sectionStart(s, header string) int {
	return strings.Index(s, header)
}
