package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGomodHandler_ReadVersion_WithComment(t *testing.T) {
	content := "module example.com/m/v2 // v2.0.0\n\ngo 1.24\n"
	v, err := gomodHandler{}.ReadVersion([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v.String())
}

func TestGomodHandler_ReadVersion_NoComment(t *testing.T) {
	content := "module example.com/m\n\ngo 1.24\n"
	_, err := gomodHandler{}.ReadVersion([]byte(content))
	assert.ErrorIs(t, err, ErrGoModNoVersionComment)
}

func TestGomodHandler_WriteVersion_MajorBump(t *testing.T) {
	content := "module example.com/m\n\ngo 1.24\n\nrequire foo v1.0.0\n"
	out, err := gomodHandler{}.WriteVersion([]byte(content), mustParse(t, "2.0.0"), "go.mod")
	require.NoError(t, err)

	want := "module example.com/m/v2 // v2.0.0\n\ngo 1.24\n\nrequire foo v1.0.0\n"
	assert.Equal(t, want, string(out))
}

func TestGomodHandler_WriteVersion_StripsSuffixOnMajorDowngrade(t *testing.T) {
	content := "module example.com/m/v2 // v2.1.0\n\ngo 1.24\n"
	out, err := gomodHandler{}.WriteVersion([]byte(content), mustParse(t, "1.0.0"), "go.mod")
	require.NoError(t, err)
	assert.Equal(t, "module example.com/m // v1.0.0\n\ngo 1.24\n", string(out))
}

func TestModuleMajor(t *testing.T) {
	major, ok, err := ModuleMajor([]byte("module example.com/m/v3\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, major)

	major, ok, err = ModuleMajor([]byte("module example.com/m\n"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, major)
}
