package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveyor-release/conveyor/internal/consignment"
	"github.com/conveyor-release/conveyor/internal/gitrepo"
	"github.com/conveyor-release/conveyor/pkg/config"
	"github.com/conveyor-release/conveyor/pkg/semver"
	"github.com/conveyor-release/conveyor/pkg/types"
)

func commits(subjects ...string) []gitrepo.Commit {
	out := make([]gitrepo.Commit, len(subjects))
	for i, s := range subjects {
		out[i] = gitrepo.Commit{Subject: s}
	}
	return out
}

func TestAggregate_RuleIsMaxAcrossCommits(t *testing.T) {
	pkg := config.Package{Name: "demo"}

	tests := []struct {
		name     string
		subjects []string
		want     semver.RuleKind
	}{
		{"fix only", []string{"fix: A"}, semver.RulePatch},
		{"feat wins over fix", []string{"fix: A", "feat: B"}, semver.RuleMinor},
		{"breaking wins over all", []string{"fix: A", "feat: B", "refactor!: C"}, semver.RuleMajor},
		{"breaking via footer", []string{"chore: D\n\nBREAKING CHANGE: it breaks"}, semver.RuleMajor},
		{"other types contribute nothing", []string{"chore: A", "docs: B", "ci: C"}, semver.RuleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cs []gitrepo.Commit
			for _, s := range tt.subjects {
				subject, body, _ := strings.Cut(s, "\n\n")
				cs = append(cs, gitrepo.Commit{Subject: subject, Body: body})
			}
			result := Aggregate(pkg, cs, nil)
			assert.Equal(t, tt.want, result.Rule.Kind)
		})
	}
}

func TestAggregate_ScopeFiltering(t *testing.T) {
	first := config.Package{Name: "first", Scopes: []string{"first", "both"}}
	second := config.Package{Name: "second", Scopes: []string{"second", "both"}}
	cs := commits("fix(first): A bug", "feat(both): Shared", "feat(second)!: Breaking")

	assert.Equal(t, semver.RuleMinor, Aggregate(first, cs, nil).Rule.Kind)
	assert.Equal(t, semver.RuleMajor, Aggregate(second, cs, nil).Rule.Kind)
}

func TestAggregate_UnscopedCommitReachesEveryPackage(t *testing.T) {
	pkg := config.Package{Name: "scoped", Scopes: []string{"scoped"}}
	result := Aggregate(pkg, commits("fix: Unscoped fix"), nil)
	assert.Equal(t, semver.RulePatch, result.Rule.Kind)
}

func TestAggregate_PackageWithoutScopesTakesEverything(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	result := Aggregate(pkg, commits("feat(whatever): Scoped elsewhere"), nil)
	assert.Equal(t, semver.RuleMinor, result.Rule.Kind)
}

func TestAggregate_ChangesetsFoldIntoRule(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	major, err := consignment.New(map[string]types.ChangeType{"demo": types.ChangeTypeMajor}, "Rework everything")
	require.NoError(t, err)
	otherPkg, err := consignment.New(map[string]types.ChangeType{"other": types.ChangeTypeMajor}, "Not ours")
	require.NoError(t, err)

	result := Aggregate(pkg, commits("fix: Small"), []*consignment.Consignment{major, otherPkg})

	assert.Equal(t, semver.RuleMajor, result.Rule.Kind)
	require.Len(t, result.Sections, 2)
	assert.Equal(t, "Breaking Changes", result.Sections[0].Section)
	assert.Equal(t, []string{"Rework everything"}, result.Sections[0].Entries)
	assert.Equal(t, "Fixes", result.Sections[1].Section)
}

func TestAggregate_SectionsFollowConfiguredOrder(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	result := Aggregate(pkg, commits("fix: B", "feat!: A", "feat: C"), nil)

	require.Len(t, result.Sections, 3)
	assert.Equal(t, "Breaking Changes", result.Sections[0].Section)
	assert.Equal(t, "Features", result.Sections[1].Section)
	assert.Equal(t, "Fixes", result.Sections[2].Section)
}

func TestAggregate_ScopedEntryRendersScopePrefix(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	result := Aggregate(pkg, commits("feat(api): New endpoint"), nil)

	require.Len(t, result.Sections, 1)
	assert.Equal(t, []string{"**api:** New endpoint"}, result.Sections[0].Entries)
}

func TestAggregate_CustomFooterTokenRoutesToConfiguredSection(t *testing.T) {
	pkg := config.Package{
		Name:              "demo",
		ExtraFooterTokens: []config.ChangeTypeConfig{{Token: "Security", Section: "Security"}},
	}
	cs := []gitrepo.Commit{{
		Subject: "chore: Bump a dependency",
		Body:    "Routine update.\n\nSecurity: fixes CVE-2026-0001",
	}}

	result := Aggregate(pkg, cs, nil)

	// No bump from a chore, but the entry lands in the custom section.
	assert.Equal(t, semver.RuleNone, result.Rule.Kind)
	require.Len(t, result.Sections, 1)
	assert.Equal(t, "Security", result.Sections[0].Section)
}

func TestAggregate_CustomChangesetTypeRoutesToConfiguredSection(t *testing.T) {
	pkg := config.Package{
		Name:              "demo",
		ExtraFooterTokens: []config.ChangeTypeConfig{{Token: "deprecation", Section: "Deprecations"}},
	}
	dep, err := consignment.New(map[string]types.ChangeType{"demo": types.ChangeType("deprecation")}, "The old flag is deprecated")
	require.NoError(t, err)

	result := Aggregate(pkg, nil, []*consignment.Consignment{dep})

	assert.Equal(t, semver.RuleNone, result.Rule.Kind)
	require.Len(t, result.Sections, 1)
	assert.Equal(t, "Deprecations", result.Sections[0].Section)
	assert.Equal(t, []string{"The old flag is deprecated"}, result.Sections[0].Entries)
}

func TestAggregate_ConsideredCommitsRecordedForVerboseMode(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	result := Aggregate(pkg, commits("feat: A", "chore: B"), nil)

	require.Len(t, result.ConsideredCommits, 2)
	assert.Equal(t, "feat", result.ConsideredCommits[0].Type)
	assert.Equal(t, "chore", result.ConsideredCommits[1].Type)
}

func TestAggregate_HasChange(t *testing.T) {
	pkg := config.Package{Name: "demo"}
	assert.False(t, Aggregate(pkg, commits("docs: Only docs"), nil).HasChange())
	assert.True(t, Aggregate(pkg, commits("fix: Real"), nil).HasChange())
}
