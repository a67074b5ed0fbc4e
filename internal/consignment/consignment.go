// Package consignment implements the changeset store: Markdown files
// under .changeset/ whose front matter maps package names to declared
// change types, and whose body is release-note Markdown carried verbatim
// into the changelog. Different packages named in the same file may carry
// different change types.
package consignment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conveyor-release/conveyor/pkg/types"
)

// Consignment is a single parsed changeset file.
type Consignment struct {
	// SourcePath is the file this consignment was read from. Empty for a
	// consignment built in memory and not yet written.
	SourcePath string
	// Changes maps package name to its declared change type for this file.
	Changes map[string]types.ChangeType
	// Summary is the Markdown body, carried verbatim into the changelog.
	Summary string
}

// New builds a consignment from an explicit package->type map and summary.
func New(changes map[string]types.ChangeType, summary string) (*Consignment, error) {
	c := &Consignment{Changes: changes, Summary: summary}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the consignment carries at least one package, every
// declared change type is non-empty, and the summary is non-blank.
func (c *Consignment) Validate() error {
	if len(c.Changes) == 0 {
		return fmt.Errorf("consignment: at least one package is required")
	}
	for pkg, ct := range c.Changes {
		if pkg == "" {
			return fmt.Errorf("consignment: package name must not be empty")
		}
		if ct == "" {
			return fmt.Errorf("consignment: package %q: change type must not be empty", pkg)
		}
	}
	if strings.TrimSpace(c.Summary) == "" {
		return fmt.Errorf("consignment: summary is required")
	}
	return nil
}

// AffectsPackage reports whether the consignment declares a change type for
// the named package.
func (c *Consignment) AffectsPackage(name string) bool {
	_, ok := c.Changes[name]
	return ok
}

// ChangeTypeFor returns the declared change type for the named package.
func (c *Consignment) ChangeTypeFor(name string) (types.ChangeType, bool) {
	ct, ok := c.Changes[name]
	return ct, ok
}

// PackageNames returns the consignment's package names in sorted order.
func (c *Consignment) PackageNames() []string {
	names := make([]string, 0, len(c.Changes))
	for name := range c.Changes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
