// Package types holds small shared value types used by both the changeset
// store and the change aggregator.
package types

import "github.com/conveyor-release/conveyor/pkg/semver"

// ChangeType is a changeset's declared type: Major, Minor, Patch, or an
// arbitrary custom label that carries no bump but may still route into a
// configured changelog section.
type ChangeType string

const (
	ChangeTypePatch ChangeType = "patch"
	ChangeTypeMinor ChangeType = "minor"
	ChangeTypeMajor ChangeType = "major"
)

// String returns the change type as a changelog/footer token.
func (ct ChangeType) String() string { return string(ct) }

// IsCustom reports whether ct is anything other than the three built-in
// bump-carrying types.
func (ct ChangeType) IsCustom() bool {
	switch ct {
	case ChangeTypePatch, ChangeTypeMinor, ChangeTypeMajor:
		return false
	default:
		return true
	}
}

// BumpRule maps a built-in change type to the corresponding semver bump
// rule. Custom change types carry no bump and return the zero BumpRule.
func (ct ChangeType) BumpRule() semver.BumpRule {
	switch ct {
	case ChangeTypePatch:
		return semver.Patch()
	case ChangeTypeMinor:
		return semver.Minor()
	case ChangeTypeMajor:
		return semver.Major()
	default:
		return semver.BumpRule{}
	}
}

// Priority ranks built-in change types for max-reduction (patch=1, minor=2,
// major=3); custom types never win a reduction so they rank 0.
func (ct ChangeType) Priority() int {
	switch ct {
	case ChangeTypePatch:
		return 1
	case ChangeTypeMinor:
		return 2
	case ChangeTypeMajor:
		return 3
	default:
		return 0
	}
}

// ParseChangeType parses a front-matter value into a ChangeType. Any
// non-empty string is accepted — custom types are deliberately
// permissive.
func ParseChangeType(s string) (ChangeType, error) {
	if s == "" {
		return "", errEmptyChangeType
	}
	return ChangeType(s), nil
}

var errEmptyChangeType = changeTypeError("changeset change type must not be empty")

type changeTypeError string

func (e changeTypeError) Error() string { return string(e) }
