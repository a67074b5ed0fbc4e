// Package changelog renders a release's sections into Markdown and splices
// the result into an existing changelog, leaving everything already there
// byte-for-byte intact. Insertion-point discovery goes through goldmark's
// AST rather than a line scan, so a changelog carrying YAML front matter or
// a "---" thematic break is not mistaken for a release heading.
package changelog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/conveyor-release/conveyor/pkg/semver"
)

// DefaultTitle is the heading line created when a changelog is configured
// but absent, or present without a top-level title.
const DefaultTitle = "# Changelog"

// Section is one rendered group of entries under a "### " subheading, in
// the package's configured section order.
type Section struct {
	Title   string
	Entries []string
}

const releaseTmpl = `## {{.Version}} ({{.Date}})
{{range .Sections}}
### {{.Title}}

{{range .Entries}}{{.}}
{{end}}{{end}}`

var releaseTemplate = template.Must(template.New("release").Parse(releaseTmpl))

// Render produces the Markdown block for a single release: the
// "## X.Y.Z (YYYY-MM-DD)" heading followed by per-section subheadings and
// bullet entries. Multi-line entries (changeset bodies) keep their line
// structure, indented to stay inside their bullet.
func Render(version semver.Version, date time.Time, sections []Section) (string, error) {
	rendered := make([]Section, len(sections))
	for i, s := range sections {
		entries := make([]string, len(s.Entries))
		for j, e := range s.Entries {
			entries[j] = renderEntry(e)
		}
		rendered[i] = Section{Title: s.Title, Entries: entries}
	}

	var buf bytes.Buffer
	err := releaseTemplate.Execute(&buf, struct {
		Version  string
		Date     string
		Sections []Section
	}{
		Version:  version.String(),
		Date:     date.Format("2006-01-02"),
		Sections: rendered,
	})
	if err != nil {
		return "", fmt.Errorf("changelog: rendering release section: %w", err)
	}
	return buf.String(), nil
}

// renderEntry turns one change entry into a bullet. Continuation lines of a
// multi-line entry are indented two spaces so Markdown keeps them attached
// to the bullet.
func renderEntry(entry string) string {
	lines := strings.Split(strings.TrimSpace(entry), "\n")
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		b.WriteString("\n")
		if strings.TrimSpace(line) != "" {
			b.WriteString("  ")
		}
		b.WriteString(strings.TrimRight(line, " \t"))
	}
	return b.String()
}

// Update renders the release section for version and inserts it into
// existing changelog text (which may be empty, for a configured but absent
// file). The new section lands directly before the most recent prior
// release heading; with no prior release it lands after the title and any
// free-form preamble. A missing top-level title is created.
func Update(existing string, version semver.Version, date time.Time, sections []Section) (string, error) {
	section, err := Render(version, date, sections)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(existing) == "" {
		return DefaultTitle + "\n\n" + section, nil
	}

	src := []byte(existing)
	insertAt, hasRelease := firstReleaseHeadingOffset(src)

	if hasRelease {
		out := existing[:insertAt] + section + "\n" + existing[insertAt:]
		if !hasTopLevelHeading(src) {
			out = DefaultTitle + "\n\n" + out
		}
		return out, nil
	}

	// No prior release: everything present is title and/or preamble. Keep
	// it, create the title if absent, and append the release at the end.
	out := existing
	if !hasTopLevelHeading(src) {
		out = DefaultTitle + "\n\n" + out
	}
	out = strings.TrimRight(out, "\n") + "\n\n" + section
	return out, nil
}

func parse(src []byte) ast.Node {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	return md.Parser().Parse(gtext.NewReader(src))
}

// firstReleaseHeadingOffset returns the byte offset of the line starting
// the first level-2 heading, and whether one exists.
func firstReleaseHeadingOffset(src []byte) (int, bool) {
	doc := parse(src)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		return lineStart(src, seg.Start), true
	}
	return 0, false
}

func hasTopLevelHeading(src []byte) bool {
	doc := parse(src)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			return h.Level == 1
		}
	}
	return false
}

// lineStart walks back from offset to the beginning of its line; heading
// segments start at the heading text, after the "## " marker.
func lineStart(src []byte, offset int) int {
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}
