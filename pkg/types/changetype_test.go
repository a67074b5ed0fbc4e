package types

import (
	"testing"

	"github.com/conveyor-release/conveyor/pkg/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		name       string
		changeType ChangeType
		want       string
	}{
		{name: "patch", changeType: ChangeTypePatch, want: "patch"},
		{name: "minor", changeType: ChangeTypeMinor, want: "minor"},
		{name: "major", changeType: ChangeTypeMajor, want: "major"},
		{name: "custom", changeType: ChangeType("security"), want: "security"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.changeType.String())
		})
	}
}

func TestChangeType_IsCustom(t *testing.T) {
	assert.False(t, ChangeTypePatch.IsCustom())
	assert.False(t, ChangeTypeMinor.IsCustom())
	assert.False(t, ChangeTypeMajor.IsCustom())
	assert.True(t, ChangeType("security").IsCustom())
}

func TestChangeType_BumpRule(t *testing.T) {
	assert.Equal(t, semver.Patch(), ChangeTypePatch.BumpRule())
	assert.Equal(t, semver.Minor(), ChangeTypeMinor.BumpRule())
	assert.Equal(t, semver.Major(), ChangeTypeMajor.BumpRule())
	assert.Equal(t, semver.BumpRule{}, ChangeType("security").BumpRule())
}

func TestParseChangeType(t *testing.T) {
	ct, err := ParseChangeType("minor")
	require.NoError(t, err)
	assert.Equal(t, ChangeTypeMinor, ct)

	ct, err = ParseChangeType("security")
	require.NoError(t, err)
	assert.Equal(t, ChangeType("security"), ct)

	_, err = ParseChangeType("")
	assert.Error(t, err)
}
