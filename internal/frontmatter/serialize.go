package frontmatter

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"
)

// Serialize renders flat page metadata as YAML without delimiters. Keys are
// sorted so output is stable across runs.
func Serialize(fields map[string]string) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fields[k]},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compose assembles a Markdown document from metadata and body, the inverse
// of Split. Empty metadata produces the bare body with no delimiters.
func Compose(fields map[string]string, body []byte) ([]byte, error) {
	meta, err := Serialize(fields)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return body, nil
	}

	var buf bytes.Buffer
	buf.Write(delimiter)
	buf.WriteByte('\n')
	buf.Write(meta)
	buf.Write(delimiter)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}
