package semver

import "fmt"

// RuleKind enumerates the closed set of bump rules. BumpRule is a tagged
// variant rather than a class hierarchy, per the sum-types-over-inheritance
// convention used across this module.
type RuleKind int

const (
	// RuleNone means "no change" — the absent rule.
	RuleNone RuleKind = iota
	RuleMajor
	RuleMinor
	RulePatch
	RulePre
	RuleRelease
	RuleOverride
)

// BumpRule is the closed sum type Major | Minor | Patch | Pre(label) |
// Release | Override(Version). Label is only meaningful for RulePre;
// Override is only meaningful for RuleOverride.
type BumpRule struct {
	Kind     RuleKind
	Label    string
	Override Version
}

func Major() BumpRule               { return BumpRule{Kind: RuleMajor} }
func Minor() BumpRule               { return BumpRule{Kind: RuleMinor} }
func Patch() BumpRule               { return BumpRule{Kind: RulePatch} }
func Release() BumpRule             { return BumpRule{Kind: RuleRelease} }
func Pre(label string) BumpRule     { return BumpRule{Kind: RulePre, Label: label} }
func OverrideTo(v Version) BumpRule { return BumpRule{Kind: RuleOverride, Override: v} }

// Max returns the more significant of two rules, ordered Major > Minor >
// Patch > none. RulePre/RuleRelease/RuleOverride are not comparable by
// significance here — they're resolved separately by the planner — and Max
// treats them as equal to RuleNone for this ordering (they never arise from
// change aggregation, only from planner input).
func (r BumpRule) Max(other BumpRule) BumpRule {
	rank := func(k RuleKind) int {
		switch k {
		case RuleMajor:
			return 3
		case RuleMinor:
			return 2
		case RulePatch:
			return 1
		default:
			return 0
		}
	}
	if rank(other.Kind) > rank(r.Kind) {
		return other
	}
	return r
}

// Bump applies rule to v. Major/Minor/Patch/Release clear any pre-release
// component. Pre(label) requires v's existing pre-release (if any) to have
// the [label, counter] layout and the same label; bumping an absent
// pre-release starts a new one at counter 0 on top of v's stable triple
// (the caller is expected to have already set v to the target stable
// version via Patch/Minor/Major when starting a new pre-release line —
// see internal/planner).
func (v Version) Bump(rule BumpRule) (Version, error) {
	switch rule.Kind {
	case RuleNone:
		return v, nil
	case RuleMajor:
		return Version{Major: v.Major + 1}, nil
	case RuleMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case RulePatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	case RuleRelease:
		return v.StripPre(), nil
	case RuleOverride:
		return rule.Override, nil
	case RulePre:
		return v.bumpPre(rule.Label)
	default:
		return Version{}, fmt.Errorf("semver: unknown bump rule %v", rule.Kind)
	}
}

func (v Version) bumpPre(label string) (Version, error) {
	if !v.IsPre() {
		return NewPre(v.Major, v.Minor, v.Patch, label, 0), nil
	}
	existingLabel, ok := v.PreLabel()
	if !ok {
		return Version{}, fmt.Errorf("semver: cannot bump pre-release with non [label,counter] layout %q", v)
	}
	if existingLabel != label {
		return Version{}, fmt.Errorf("semver: pre-release label mismatch: existing %q, requested %q", existingLabel, label)
	}
	counter, ok := v.PreCounter()
	if !ok {
		return Version{}, fmt.Errorf("semver: cannot bump pre-release with non-numeric counter in %q", v)
	}
	return NewPre(v.Major, v.Minor, v.Patch, label, counter+1), nil
}
