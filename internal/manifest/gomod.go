package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/pkg/semver"
	"golang.org/x/mod/modfile"
)

var _ Handler = gomodHandler{}

type gomodHandler struct{}

// ErrGoModNoVersionComment is returned by ReadVersion when the module line
// carries no "// vX.Y.Z" comment. It is not a parse failure: a go.mod is a
// valid manifest with no version of its own — the orchestrator falls back
// to the package's highest stable Git tag as its current version and, when
// no tag matches, to the /vN major reported by ModuleMajor (as N.0.0).
var ErrGoModNoVersionComment = errors.New("manifest: go.mod module line has no // vX.Y.Z comment")

var goModVersionCommentRe = regexp.MustCompile(`//\s*v(\d+\.\d+\.\d+(?:-[0-9A-Za-z.]+)?)\s*$`)

// ReadVersion parses the module directive with golang.org/x/mod/modfile
// (to validate it is well-formed) and reads the override version from the
// module line's trailing "// vX.Y.Z" comment.
func (gomodHandler) ReadVersion(content []byte) (semver.Version, error) {
	f, err := modfile.Parse("go.mod", content, nil)
	if err != nil {
		return semver.Version{}, fmt.Errorf("parsing go.mod: %w", err)
	}
	if f.Module == nil {
		return semver.Version{}, fmt.Errorf("go.mod has no module directive")
	}

	moduleLine := findModuleLine(content)
	if moduleLine == "" {
		return semver.Version{}, ErrGoModNoVersionComment
	}
	m := goModVersionCommentRe.FindStringSubmatch(moduleLine)
	if m == nil {
		return semver.Version{}, ErrGoModNoVersionComment
	}
	v, err := semver.Parse(m[1])
	if err != nil {
		return semver.Version{}, corerr.NewSemverParseError(m[1], err)
	}
	return v, nil
}

// ModuleMajor returns the major version encoded in the module path's /vN
// suffix, or (1, false) if there is no such suffix (majors 0 and 1 carry no
// suffix per Go module convention).
func ModuleMajor(content []byte) (int, bool, error) {
	f, err := modfile.Parse("go.mod", content, nil)
	if err != nil {
		return 0, false, fmt.Errorf("parsing go.mod: %w", err)
	}
	if f.Module == nil {
		return 0, false, fmt.Errorf("go.mod has no module directive")
	}
	path := f.Module.Mod.Path
	idx := strings.LastIndex(path, "/v")
	if idx == -1 {
		return 1, false, nil
	}
	n, err := strconv.Atoi(path[idx+2:])
	if err != nil {
		return 1, false, nil
	}
	return n, true, nil
}

func findModuleLine(content []byte) string {
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "module ") || trimmed == "module" {
			return line
		}
	}
	return ""
}

// WriteVersion rewrites only the module line: updating the /vN path suffix
// (added when newVersion.Major >= 2, stripped when <= 1) and the trailing
// "// vX.Y.Z" comment, leaving every other line byte-identical.
func (gomodHandler) WriteVersion(content []byte, newVersion semver.Version, path string) ([]byte, error) {
	f, err := modfile.Parse(path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("go.mod has no module directive")
	}

	basePath := stripMajorSuffix(f.Module.Mod.Path)
	newPath := basePath
	if newVersion.Major >= 2 {
		newPath = fmt.Sprintf("%s/v%d", basePath, newVersion.Major)
	}

	lines := strings.Split(string(content), "\n")
	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "module ") {
			continue
		}
		lines[i] = fmt.Sprintf("module %s // v%s", newPath, newVersion.String())
		replaced = true
		break
	}
	if !replaced {
		return nil, fmt.Errorf("no module directive found in go.mod")
	}

	return []byte(strings.Join(lines, "\n")), nil
}

func stripMajorSuffix(path string) string {
	idx := strings.LastIndex(path, "/v")
	if idx == -1 {
		return path
	}
	if _, err := strconv.Atoi(path[idx+2:]); err != nil {
		return path
	}
	return path[:idx]
}
