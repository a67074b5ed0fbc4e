package consignment

import (
	"fmt"
	"path/filepath"

	"github.com/conveyor-release/conveyor/internal/fileutil"
)

// Write serializes c and atomically writes it to dir under a generated
// filename, returning the path written. Filenames are arbitrary — this
// uses a random ID so concurrent authors never collide.
func Write(c *Consignment, dir string) (string, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create consignment directory: %w", err)
	}

	content, err := Serialize(c)
	if err != nil {
		return "", err
	}

	id, err := GenerateID()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, id+".md")

	if err := fileutil.AtomicWrite(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write consignment file: %w", err)
	}
	c.SourcePath = path
	return path, nil
}
