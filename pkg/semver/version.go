// Package semver implements an ordered semantic version type with
// pre-release identifiers, following the Semantic Versioning spec
// (https://semver.org/) precedence rules.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Identifier is a single dot-separated pre-release component. It is either
// numeric (no leading zeros) or alphanumeric.
type Identifier struct {
	raw     string
	numeric bool
	num     int
}

// NewIdentifier builds an Identifier from raw text, classifying it as
// numeric (all digits, no leading zero unless the value is exactly "0")
// or alphanumeric.
func NewIdentifier(raw string) (Identifier, error) {
	if raw == "" {
		return Identifier{}, fmt.Errorf("semver: empty pre-release identifier")
	}
	if isDigits(raw) {
		if len(raw) > 1 && raw[0] == '0' {
			return Identifier{}, fmt.Errorf("semver: numeric identifier %q has leading zero", raw)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Identifier{}, fmt.Errorf("semver: invalid numeric identifier %q: %w", raw, err)
		}
		return Identifier{raw: raw, numeric: true, num: n}, nil
	}
	return Identifier{raw: raw}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (id Identifier) String() string { return id.raw }

// Compare orders identifiers per semver precedence: numeric identifiers are
// compared numerically and are always less than alphanumeric identifiers;
// alphanumeric identifiers compare lexically (ASCII).
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.numeric && other.numeric:
		switch {
		case id.num < other.num:
			return -1
		case id.num > other.num:
			return 1
		default:
			return 0
		}
	case id.numeric && !other.numeric:
		return -1
	case !id.numeric && other.numeric:
		return 1
	default:
		return strings.Compare(id.raw, other.raw)
	}
}

// Version is a semantic version: major.minor.patch plus an optional ordered
// list of pre-release identifiers. Versions produced by the planner always
// carry exactly two pre-release identifiers: [label, counter].
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   []Identifier
}

// IsPre reports whether v carries a pre-release component.
func (v Version) IsPre() bool { return len(v.Pre) > 0 }

// PreLabel returns the first pre-release identifier (the label) and true, or
// ("", false) if v has no pre-release component or a layout other than
// [label, counter].
func (v Version) PreLabel() (string, bool) {
	if len(v.Pre) != 2 {
		return "", false
	}
	return v.Pre[0].String(), true
}

// PreCounter returns the numeric second pre-release identifier and true, or
// (0, false) if v does not have the [label, counter] layout.
func (v Version) PreCounter() (int, bool) {
	if len(v.Pre) != 2 || !v.Pre[1].numeric {
		return 0, false
	}
	return v.Pre[1].num, true
}

// String renders the version as "major.minor.patch[-pre1.pre2...]".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Pre) > 0 {
		parts := make([]string, len(v.Pre))
		for i, id := range v.Pre {
			parts[i] = id.String()
		}
		s += "-" + strings.Join(parts, ".")
	}
	return s
}

// StripPre returns a copy of v with the pre-release component removed.
func (v Version) StripPre() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// Stable returns v's (major, minor, patch) triple with any pre-release
// removed; it is the same as StripPre.
func (v Version) Stable() Version { return v.StripPre() }

// Compare orders versions per semver precedence: stable components first,
// then pre-release identifiers pairwise, with the rule that a version
// without a pre-release component is greater than one with, once the stable
// triple is equal.
func (v Version) Compare(other Version) int {
	if c := cmpInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := cmpInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case !v.IsPre() && !other.IsPre():
		return 0
	case !v.IsPre() && other.IsPre():
		return 1
	case v.IsPre() && !other.IsPre():
		return -1
	}

	n := len(v.Pre)
	if len(other.Pre) < n {
		n = len(other.Pre)
	}
	for i := 0; i < n; i++ {
		if c := v.Pre[i].Compare(other.Pre[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(v.Pre), len(other.Pre))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) Equal(other Version) bool       { return v.Compare(other) == 0 }
func (v Version) LessThan(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

// Parse parses a version string of the form "X.Y.Z[-pre]", with an optional
// leading "v". Every pre-release identifier is validated individually.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, fmt.Errorf("semver: empty version string")
	}

	core := s
	var preRaw string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		core = s[:idx]
		preRaw = s[idx+1:]
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("semver: invalid version %q (want major.minor.patch)", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("semver: invalid major in %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("semver: invalid minor in %q: %w", s, err)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return Version{}, fmt.Errorf("semver: invalid patch in %q: %w", s, err)
	}

	v := Version{Major: major, Minor: minor, Patch: patch}
	if preRaw != "" {
		for _, p := range strings.Split(preRaw, ".") {
			id, err := NewIdentifier(p)
			if err != nil {
				return Version{}, fmt.Errorf("semver: invalid version %q: %w", s, err)
			}
			v.Pre = append(v.Pre, id)
		}
	}
	return v, nil
}

// MustParse parses s and panics on error. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Zero is the 0.0.0 version.
var Zero = Version{}

// NewPre builds a Version with a two-element [label, counter] pre-release.
func NewPre(major, minor, patch int, label string, counter int) Version {
	return Version{
		Major: major,
		Minor: minor,
		Patch: patch,
		Pre: []Identifier{
			{raw: label},
			{raw: strconv.Itoa(counter), numeric: true, num: counter},
		},
	}
}
