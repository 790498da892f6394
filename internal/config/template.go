package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"erblint/internal/lint"
)

// Render produces a starter .erb-lint.yml listing every registered linter with its
// default options.
func Render(reg *lint.Registry) ([]byte, error) {
	linters := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range reg.Entries() {
		defaults, err := entry.Decode(nil)
		if err != nil {
			return nil, err
		}
		var section yaml.Node
		if err := section.Encode(defaults); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		if section.Kind != yaml.MappingNode {
			section = yaml.Node{Kind: yaml.MappingNode}
		}
		section.Style = 0
		enabled := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(entry.EnabledByDefault)}
		section.Content = append([]*yaml.Node{{Kind: yaml.ScalarNode, Value: "enabled"}, enabled}, section.Content...)

		key := &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name, HeadComment: entry.Description}
		linters.Content = append(linters.Content, key, &section)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "enable_default_linters"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: "glob"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: DefaultGlob},
		&yaml.Node{Kind: yaml.ScalarNode, Value: "exclude"},
		&yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: "vendor/**"}, {Kind: yaml.ScalarNode, Value: "node_modules/**"}}},
		&yaml.Node{Kind: yaml.ScalarNode, Value: "linters"},
		linters,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
