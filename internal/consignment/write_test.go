package consignment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conveyor-release/conveyor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesFileAndSetsSourcePath(t *testing.T) {
	tempDir := t.TempDir()
	c := &Consignment{
		Changes: map[string]types.ChangeType{"core": types.ChangeTypePatch},
		Summary: "Fixed a bug",
	}

	path, err := Write(c, tempDir)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, path, c.SourcePath)
	assert.True(t, filepath.Ext(path) == ".md")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "core: patch")
	assert.Contains(t, string(content), "Fixed a bug")
}

func TestWriteCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	changesetDir := filepath.Join(tempDir, ".changeset")
	assert.NoDirExists(t, changesetDir)

	c := &Consignment{Changes: map[string]types.ChangeType{"core": types.ChangeTypePatch}, Summary: "Test"}
	_, err := Write(c, changesetDir)
	require.NoError(t, err)

	assert.DirExists(t, changesetDir)
}

func TestWriteTwiceProducesDistinctFiles(t *testing.T) {
	tempDir := t.TempDir()
	c1 := &Consignment{Changes: map[string]types.ChangeType{"core": types.ChangeTypePatch}, Summary: "First"}
	c2 := &Consignment{Changes: map[string]types.ChangeType{"core": types.ChangeTypePatch}, Summary: "Second"}

	p1, err := Write(c1, tempDir)
	require.NoError(t, err)
	p2, err := Write(c2, tempDir)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteRejectsInvalidConsignment(t *testing.T) {
	_, err := Write(&Consignment{}, t.TempDir())
	assert.Error(t, err)
}
