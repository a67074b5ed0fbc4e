package consignment

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Serialize renders a consignment back to the on-disk Markdown-with-front-
// matter form: a YAML front-matter block of "<package>": <type> entries in
// sorted-by-package order for deterministic output, then the summary body.
func Serialize(c *Consignment) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pkg := range c.PackageNames() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pkg},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(c.Changes[pkg])},
		)
	}
	yamlBytes, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(c.Summary))
	b.WriteString("\n")
	return b.String(), nil
}
