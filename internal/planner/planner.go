// Package planner computes the next version for a package: given its
// current version, its reduced bump rule, an optional pre-release label,
// and every Git tag matching the package's pattern, it produces the
// version to release under.
//
// Pre-release counters are recomputed from the tag set on every
// invocation; no state is carried between runs.
package planner

import (
	"fmt"

	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/internal/gitrepo"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

// Candidate is the planner's output: the next version for a package, plus
// the tag name it should be published under.
type Candidate struct {
	Version semver.Version
	Tag     string
}

// Plan computes the next version for a package.
//
//   - current is the package's current version as the caller resolved it
//     from manifests/tags. It may carry a pre-release: Release finalizes
//     it, and a pre-release plan requires its label to match preLabel.
//   - rule is the reduced bump rule from internal/aggregate.
//   - preLabel is the requested pre-release label, or "" for a stable
//     release.
//   - tags is every Git tag matching the package's pattern (gitrepo.Tag),
//     already parsed to Version by the caller via ParseTags.
//   - tagPrefix is the package's tag prefix ("" or "<name>/"), used only
//     to render the returned Candidate.Tag.
func Plan(current semver.Version, rule semver.BumpRule, preLabel string, tags []semver.Version, tagPrefix string) (Candidate, error) {
	if rule.Kind == semver.RuleOverride {
		v := rule.Override
		return Candidate{Version: v, Tag: renderTag(tagPrefix, v)}, nil
	}

	if rule.Kind == semver.RuleRelease {
		if !current.IsPre() {
			return Candidate{}, fmt.Errorf("planner: current version %s has no pre-release to finalize", current)
		}
		v := current.StripPre()
		return Candidate{Version: v, Tag: renderTag(tagPrefix, v)}, nil
	}

	if preLabel == "" {
		next, err := current.Bump(stableRule(rule))
		if err != nil {
			return Candidate{}, err
		}
		if next.Compare(current) <= 0 {
			return Candidate{}, fmt.Errorf("planner: computed version %s does not exceed current %s", next, current)
		}
		return Candidate{Version: next, Tag: renderTag(tagPrefix, next)}, nil
	}

	return planPre(current, rule, preLabel, tags, tagPrefix)
}

// stableRule maps a reduced rule onto the Bump-compatible stable rule:
// Major/Minor/Patch pass through; RuleNone has no business reaching Plan
// (the caller surfaces corerr.NoChangeError first) but is mapped to Patch
// defensively rather than silently producing a non-advancing version.
func stableRule(rule semver.BumpRule) semver.BumpRule {
	switch rule.Kind {
	case semver.RuleMajor, semver.RuleMinor, semver.RulePatch:
		return rule
	default:
		return semver.Patch()
	}
}

// planPre computes the next pre-release, including the
// carry-the-counter-forward rule: a pre-release must never sort below an
// already-published pre-release carrying the same label, even one
// targeting a higher future stable.
func planPre(current semver.Version, rule semver.BumpRule, preLabel string, tags []semver.Version, tagPrefix string) (Candidate, error) {
	target, err := current.StripPre().Bump(stableRule(rule))
	if err != nil {
		return Candidate{}, err
	}

	counter := 0
	if highest, ok := highestPreForStable(tags, target, preLabel); ok {
		n, _ := highest.PreCounter()
		counter = n + 1
	}
	computed := semver.NewPre(target.Major, target.Minor, target.Patch, preLabel, counter)

	if highest, ok := highestPreWithLabel(tags, preLabel); ok {
		carried := nextAfter(highest)
		if carried.Compare(computed) > 0 {
			computed = carried
		}
	}

	if current.IsPre() {
		if existingLabel, ok := current.PreLabel(); ok && existingLabel != preLabel {
			return Candidate{}, corerr.NewPreLabelMismatchError(existingLabel, preLabel)
		}
	}

	return Candidate{Version: computed, Tag: renderTag(tagPrefix, computed)}, nil
}

// highestPreForStable returns the highest-counter pre-release tag whose
// stable triple equals target and whose label equals preLabel.
func highestPreForStable(tags []semver.Version, target semver.Version, preLabel string) (semver.Version, bool) {
	var best semver.Version
	found := false
	for _, t := range tags {
		if !t.IsPre() {
			continue
		}
		label, ok := t.PreLabel()
		if !ok || label != preLabel {
			continue
		}
		if t.StripPre().Compare(target) != 0 {
			continue
		}
		if !found || t.Compare(best) > 0 {
			best = t
			found = true
		}
	}
	return best, found
}

// highestPreWithLabel returns the highest pre-release tag carrying
// preLabel regardless of its stable target, used for the carry-forward
// rule against an in-progress pre-release targeting a higher stable.
func highestPreWithLabel(tags []semver.Version, preLabel string) (semver.Version, bool) {
	var best semver.Version
	found := false
	for _, t := range tags {
		if !t.IsPre() {
			continue
		}
		label, ok := t.PreLabel()
		if !ok || label != preLabel {
			continue
		}
		if !found || t.Compare(best) > 0 {
			best = t
			found = true
		}
	}
	return best, found
}

// nextAfter returns the next pre-release counter on top of v's stable
// triple and label.
func nextAfter(v semver.Version) semver.Version {
	counter, _ := v.PreCounter()
	label, _ := v.PreLabel()
	return semver.NewPre(v.Major, v.Minor, v.Patch, label, counter+1)
}

func renderTag(prefix string, v semver.Version) string {
	return prefix + "v" + v.String()
}

// ParseTags parses every gitrepo.Tag matching a package's pattern into a
// Version, silently skipping any tag whose suffix (after stripping prefix
// and "v") fails to parse as semver — such tags do not match the pattern
// built by gitrepo.TagPattern in the first place, but defends against a
// caller passing an unfiltered tag list.
func ParseTags(tags []gitrepo.Tag, prefix string) []semver.Version {
	var out []semver.Version
	for _, t := range tags {
		name := t.Name
		if prefix != "" {
			if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
				continue
			}
			name = name[len(prefix):]
		}
		v, err := semver.Parse(name)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
