// Package aggregate implements per-package change aggregation:
// scope-filtered commits plus matching changesets reduce to a single bump
// rule and an ordered set of changelog entries.
package aggregate

import (
	"sort"

	"github.com/conveyor-release/conveyor/internal/commitparse"
	"github.com/conveyor-release/conveyor/internal/consignment"
	"github.com/conveyor-release/conveyor/internal/gitrepo"
	"github.com/conveyor-release/conveyor/pkg/config"
	"github.com/conveyor-release/conveyor/pkg/semver"
	"github.com/conveyor-release/conveyor/pkg/types"
)

// SectionEntries groups rendered changelog bullets under one heading, in
// the package's configured section order.
type SectionEntries struct {
	Section string
	Entries []string
}

// Result is one package's aggregated changes: the reduced bump rule, its
// changelog entries grouped by section, and (for verbose mode) every
// conventional commit that was considered, whether or not it contributed
// a rule.
type Result struct {
	Rule              semver.BumpRule
	Sections          []SectionEntries
	ConsideredCommits []commitparse.Commit
}

// HasChange reports whether any rule-bearing change was found.
func (r Result) HasChange() bool { return r.Rule.Kind != semver.RuleNone }

// Aggregate reduces commits and consignments for a single package:
// scope-filter the commits, parse each, fold commit and changeset rules
// into a single maximum, and group every rendered entry by section.
func Aggregate(pkg config.Package, commits []gitrepo.Commit, consignments []*consignment.Consignment) Result {
	sectionCfg := pkg.ChangeTypes()
	entriesBySection := map[string][]string{}
	var considered []commitparse.Commit
	rule := semver.BumpRule{}

	for _, c := range filterByScope(pkg, commits) {
		pc := commitparse.Parse(c.Subject + "\n\n" + c.Body)
		considered = append(considered, pc)

		if r, ok := pc.BumpRule(); ok {
			rule = rule.Max(r)
		}

		if section, ok := sectionForCommit(pc, sectionCfg); ok {
			entriesBySection[section] = append(entriesBySection[section], renderCommitEntry(pc))
		}
	}

	for _, cs := range consignments {
		ct, ok := cs.ChangeTypeFor(pkg.Name)
		if !ok {
			continue
		}
		rule = rule.Max(ct.BumpRule())
		if section, ok := sectionForChangeType(ct, sectionCfg); ok {
			entriesBySection[section] = append(entriesBySection[section], renderChangesetEntry(cs))
		}
	}

	return Result{
		Rule:              rule,
		Sections:          orderSections(sectionCfg, entriesBySection),
		ConsideredCommits: considered,
	}
}

// filterByScope decides commit relevance: a commit is included if the package
// declares no scopes, the commit carries no scope of its own, or the
// commit's scope matches one of the package's configured scopes.
func filterByScope(pkg config.Package, commits []gitrepo.Commit) []gitrepo.Commit {
	if len(pkg.Scopes) == 0 {
		return commits
	}
	scopes := make(map[string]bool, len(pkg.Scopes))
	for _, s := range pkg.Scopes {
		scopes[s] = true
	}

	var included []gitrepo.Commit
	for _, c := range commits {
		pc := commitparse.Parse(c.Subject)
		if pc.Scope == "" || scopes[pc.Scope] {
			included = append(included, c)
		}
	}
	return included
}

// sectionForCommit assigns a commit to a changelog section: breaking
// markers win outright, then a matching footer token, then the commit's
// own type.
func sectionForCommit(c commitparse.Commit, cfgs []config.ChangeTypeConfig) (string, bool) {
	if c.Breaking {
		if s, ok := sectionForToken("breaking", cfgs); ok {
			return s, true
		}
	}
	for _, f := range c.Footers {
		if s, ok := sectionForToken(f.Token, cfgs); ok {
			return s, true
		}
	}
	return sectionForToken(string(c.Type), cfgs)
}

// sectionForChangeType assigns a changeset's declared change type to a
// section: the three built-in types map onto the same tokens a breaking
// marker, a feat, and a fix would; any custom type is looked up directly
// as a registered footer token, mirroring the routing commits get for
// their footer tokens.
func sectionForChangeType(ct types.ChangeType, cfgs []config.ChangeTypeConfig) (string, bool) {
	switch ct {
	case types.ChangeTypeMajor:
		return sectionForToken("breaking", cfgs)
	case types.ChangeTypeMinor:
		return sectionForToken("feat", cfgs)
	case types.ChangeTypePatch:
		return sectionForToken("fix", cfgs)
	default:
		return sectionForToken(string(ct), cfgs)
	}
}

func sectionForToken(token string, cfgs []config.ChangeTypeConfig) (string, bool) {
	for _, cfg := range cfgs {
		if equalFold(cfg.Token, token) {
			return cfg.Section, true
		}
	}
	return "", false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func renderCommitEntry(c commitparse.Commit) string {
	if c.Scope != "" {
		return "**" + c.Scope + ":** " + c.Description
	}
	return c.Description
}

func renderChangesetEntry(c *consignment.Consignment) string {
	return c.Summary
}

// orderSections emits sections in the package's configured order, skipping
// any section with no entries, so output is deterministic regardless of
// map iteration order.
func orderSections(cfgs []config.ChangeTypeConfig, bySection map[string][]string) []SectionEntries {
	seen := map[string]bool{}
	var out []SectionEntries
	for _, cfg := range cfgs {
		if seen[cfg.Section] {
			continue
		}
		seen[cfg.Section] = true
		entries, ok := bySection[cfg.Section]
		if !ok {
			continue
		}
		out = append(out, SectionEntries{Section: cfg.Section, Entries: entries})
	}

	// Any section reached only via a custom changeset type with no
	// corresponding ChangeTypeConfig entry would be silently dropped above;
	// sectionForToken only ever returns sections present in cfgs, so this
	// is just a defensive sort of leftover keys for stability.
	var extra []string
	for s := range bySection {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		out = append(out, SectionEntries{Section: s, Entries: bySection[s]})
	}
	return out
}
