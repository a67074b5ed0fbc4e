// Package commitparse splits a raw commit message into the subject, body,
// and footers of the Conventional Commits grammar, and maps the subject's
// type to a bump rule.
package commitparse

import (
	"regexp"
	"strings"

	"github.com/conveyor-release/conveyor/pkg/semver"
)

// Footer is a single trailing "Token: value" or "Token #value" line.
type Footer struct {
	Token string
	Value string
}

// Commit is a parsed conventional commit.
type Commit struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
	Body        string
	Footers     []Footer
}

var subjectRex = regexp.MustCompile(`^(?P<type>\w+)(?:\((?P<scope>[^()\r\n]*)\))?(?P<breaking>!)?:\s*(?P<description>.*)$`)

// footerLineRex matches both "Token: value" and the git-trailer "Token #value"
// form. A token is one or more words possibly joined by hyphens, or the
// special two-word "BREAKING CHANGE" token. The trailer form's value keeps
// its leading '#'.
var footerLineRex = regexp.MustCompile(`^(BREAKING CHANGE|[A-Za-z][A-Za-z-]*)(?:: ?(.*)|( #.*))$`)

// Parse splits a raw commit message into subject components, body, and
// footers. A message whose first line doesn't match the conventional-commit
// subject grammar yields Type "other" with the entire first line as the
// description.
func Parse(message string) Commit {
	lines := strings.Split(message, "\n")
	if len(lines) == 0 {
		return Commit{Type: "other"}
	}

	subject := lines[0]
	rest := lines[1:]

	c := Commit{Type: "other", Description: subject}
	if m := subjectRex.FindStringSubmatch(subject); m != nil {
		names := subjectRex.SubexpNames()
		values := map[string]string{}
		for i, n := range names {
			if n != "" {
				values[n] = m[i]
			}
		}
		c.Type = values["type"]
		c.Scope = values["scope"]
		c.Breaking = values["breaking"] == "!"
		c.Description = values["description"]
	}

	bodyLines, footerLines := splitFooters(rest)
	c.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	c.Footers = parseFooters(footerLines)

	for _, f := range c.Footers {
		if isBreakingToken(f.Token) {
			c.Breaking = true
		}
	}

	return c
}

// splitFooters finds the trailing contiguous block of footer-shaped lines,
// skipping leading/trailing blank lines. Everything before that block is body.
func splitFooters(lines []string) (body, footers []string) {
	trimmed := lines
	for len(trimmed) > 0 && strings.TrimSpace(trimmed[len(trimmed)-1]) == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}

	end := len(trimmed)
	start := end
	for start > 0 && footerLineRex.MatchString(trimmed[start-1]) {
		start--
	}

	// Require at least one footer-shaped line and a blank separator (or
	// start-of-body) before it to avoid misreading an ordinary paragraph
	// that happens to contain a colon as footers.
	if start == end {
		return trimmed, nil
	}
	if start > 0 && strings.TrimSpace(trimmed[start-1]) != "" {
		return trimmed, nil
	}

	body = trimmed[:start]
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}
	return body, trimmed[start:end]
}

func parseFooters(lines []string) []Footer {
	var footers []Footer
	for _, line := range lines {
		m := footerLineRex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		footers = append(footers, Footer{Token: m[1], Value: strings.TrimSpace(value)})
	}
	return footers
}

func isBreakingToken(token string) bool {
	switch strings.ToUpper(token) {
	case "BREAKING CHANGE", "BREAKING-CHANGE":
		return true
	default:
		return false
	}
}

// Kind classifies a commit's type for rule mapping.
type Kind string

const (
	KindFeat  Kind = "feat"
	KindFix   Kind = "fix"
	KindOther Kind = "other"
)

// Kind returns the commit's rule-mapping classification: "feat", "fix", or
// "other" for every other type (chore, docs, style, refactor, perf, test,
// build, ci, and any unrecognized type).
func (c Commit) Kind() Kind {
	switch c.Type {
	case "feat":
		return KindFeat
	case "fix":
		return KindFix
	default:
		return KindOther
	}
}

// BumpRule maps the commit to a bump rule: breaking always wins (Major),
// then feat→Minor, fix→Patch, anything else contributes no rule.
func (c Commit) BumpRule() (semver.BumpRule, bool) {
	if c.Breaking {
		return semver.Major(), true
	}
	switch c.Kind() {
	case KindFeat:
		return semver.Minor(), true
	case KindFix:
		return semver.Patch(), true
	default:
		return semver.BumpRule{}, false
	}
}

// FooterValue returns the value of the first footer matching token
// (case-insensitive), if any.
func (c Commit) FooterValue(token string) (string, bool) {
	for _, f := range c.Footers {
		if strings.EqualFold(f.Token, token) {
			return f.Value, true
		}
	}
	return "", false
}
