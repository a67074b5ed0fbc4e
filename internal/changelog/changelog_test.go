package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveyor-release/conveyor/pkg/semver"
)

var testDate = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestRender(t *testing.T) {
	out, err := Render(semver.MustParse("1.3.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"Add retry support", "**api:** New endpoint"}},
		{Title: "Fixes", Entries: []string{"Handle empty input"}},
	})
	require.NoError(t, err)

	expected := `## 1.3.0 (2026-08-01)

### Features

- Add retry support
- **api:** New endpoint

### Fixes

- Handle empty input
`
	assert.Equal(t, expected, out)
}

func TestRender_MultiLineEntryStaysInBullet(t *testing.T) {
	out, err := Render(semver.MustParse("2.0.0"), testDate, []Section{
		{Title: "Breaking Changes", Entries: []string{"Removed the v1 API.\n\nMigrate to v2 before upgrading."}},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "- Removed the v1 API.\n\n  Migrate to v2 before upgrading.")
}

func TestUpdate_EmptyExistingCreatesHeader(t *testing.T) {
	out, err := Update("", semver.MustParse("1.0.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"Initial release"}},
	})
	require.NoError(t, err)

	expected := `# Changelog

## 1.0.0 (2026-08-01)

### Features

- Initial release
`
	assert.Equal(t, expected, out)
}

func TestUpdate_InsertsBeforeMostRecentRelease(t *testing.T) {
	existing := `# Changelog

All notable changes to this project are documented here.

## 1.2.0 (2026-05-10)

### Features

- Old feature

## 1.1.0 (2026-03-01)

### Fixes

- Old fix
`
	out, err := Update(existing, semver.MustParse("1.3.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"New feature"}},
	})
	require.NoError(t, err)

	// Preamble preserved above, new section before 1.2.0, old sections intact.
	newIdx := indexOf(t, out, "## 1.3.0 (2026-08-01)")
	oldIdx := indexOf(t, out, "## 1.2.0 (2026-05-10)")
	preambleIdx := indexOf(t, out, "All notable changes")
	assert.Less(t, preambleIdx, newIdx)
	assert.Less(t, newIdx, oldIdx)
	assert.Contains(t, out, "- Old feature")
	assert.Contains(t, out, "- Old fix")
}

func TestUpdate_PreservesPriorReleasesByteForByte(t *testing.T) {
	prior := `## 0.9.0 (2025-12-24)

### Fixes

-   odd   spacing preserved
`
	existing := "# Changelog\n\n" + prior
	out, err := Update(existing, semver.MustParse("1.0.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"Stable"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, prior)
}

func TestUpdate_NoPriorReleaseAppendsAfterPreamble(t *testing.T) {
	existing := `# Changelog

Nothing released yet.
`
	out, err := Update(existing, semver.MustParse("0.1.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"First cut"}},
	})
	require.NoError(t, err)

	assert.Less(t, indexOf(t, out, "Nothing released yet."), indexOf(t, out, "## 0.1.0"))
}

func TestUpdate_MissingTitleIsInserted(t *testing.T) {
	existing := `## 1.0.0 (2026-01-01)

### Features

- Old
`
	out, err := Update(existing, semver.MustParse("1.0.1"), testDate, []Section{
		{Title: "Fixes", Entries: []string{"Patch it"}},
	})
	require.NoError(t, err)

	assert.True(t, len(out) > len(DefaultTitle) && out[:len(DefaultTitle)] == DefaultTitle)
	assert.Less(t, indexOf(t, out, "## 1.0.1"), indexOf(t, out, "## 1.0.0"))
}

func TestUpdate_FrontMatterNotMistakenForHeading(t *testing.T) {
	existing := `---
layout: changelog
---

# Changelog

## 1.0.0 (2026-01-01)

### Features

- Old
`
	out, err := Update(existing, semver.MustParse("1.1.0"), testDate, []Section{
		{Title: "Features", Entries: []string{"New"}},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "layout: changelog")
	assert.Less(t, indexOf(t, out, "layout: changelog"), indexOf(t, out, "## 1.1.0"))
	assert.Less(t, indexOf(t, out, "## 1.1.0"), indexOf(t, out, "## 1.0.0"))
}

func TestUpdate_Deterministic(t *testing.T) {
	existing := "# Changelog\n\n## 1.0.0 (2026-01-01)\n\n### Fixes\n\n- Old\n"
	sections := []Section{{Title: "Features", Entries: []string{"Same"}}}

	first, err := Update(existing, semver.MustParse("1.1.0"), testDate, sections)
	require.NoError(t, err)
	second, err := Update(existing, semver.MustParse("1.1.0"), testDate, sections)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
