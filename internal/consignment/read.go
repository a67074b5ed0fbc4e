package consignment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/conveyor-release/conveyor/pkg/types"
)

// Read parses a single changeset file. Front matter entries are
// "<package>": <major|minor|patch|custom-label>; the body (everything
// after the closing "---") becomes Summary with surrounding whitespace
// trimmed.
func Read(path string) (*Consignment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read consignment file: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("consignment file is empty: %s", path)
	}

	var raw map[string]string
	body, err := frontmatter.Parse(bytes.NewReader(content), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no packages declared in front matter: %s", path)
	}

	changes := make(map[string]types.ChangeType, len(raw))
	for pkg, val := range raw {
		ct, err := types.ParseChangeType(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", pkg, err)
		}
		changes[pkg] = ct
	}

	c := &Consignment{
		SourcePath: path,
		Changes:    changes,
		Summary:    strings.TrimSpace(string(body)),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadDir reads every ".md" file directly under dir and parses it as a
// consignment. A missing directory yields an empty, nil-error result (no
// changesets is not an error). Any unparseable file is fatal — the caller
// gets a wrapped error and the filesystem is left untouched.
// Results are sorted by source file name for determinism.
func ReadDir(dir string) ([]*Consignment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read consignment directory %s: %w", dir, err)
	}

	var out []*Consignment
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		c, err := Read(path)
		if err != nil {
			return nil, fmt.Errorf("changeset %s: %w", entry.Name(), err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourcePath < out[j].SourcePath })
	return out, nil
}
