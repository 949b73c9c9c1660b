// Package frontmatter splits `---` delimited YAML front matter from Markdown
// documents and parses it into the flat string metadata pages carry.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated indicates the document started with a front matter
// delimiter but never closed it.
var ErrUnterminated = errors.New("front matter opened with --- but closing delimiter is missing")

var delimiter = []byte("---")

// Split separates YAML front matter from the Markdown body.
//
// If the document does not start with a `---` line, found is false and body
// is the full input. The document's own newline convention (LF or CRLF) is
// respected.
func Split(content []byte) (meta []byte, body []byte, found bool, err error) {
	nl := detectNewline(content)
	open := append(append([]byte{}, delimiter...), nl...)

	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]

	// An immediately repeated delimiter is an empty front matter block.
	if bytes.HasPrefix(rest, open) {
		return nil, rest[len(open):], true, nil
	}

	closing := append(append(append([]byte{}, nl...), delimiter...), nl...)
	end := bytes.Index(rest, closing)
	if end < 0 {
		return nil, nil, false, ErrUnterminated
	}

	meta = rest[:end+len(nl)]
	body = rest[end+len(closing):]
	return meta, body, true, nil
}

// Fields parses raw front matter (without delimiters) into a flat string map.
//
// Scalar values decode to their literal text, so unquoted dates like
// 2024-01-01 stay exactly as written. Nested sequences or mappings are
// rejected by the YAML decoder since pages carry flat metadata only.
func Fields(meta []byte) (map[string]string, error) {
	if len(meta) == 0 {
		return map[string]string{}, nil
	}

	var fields map[string]string
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

func detectNewline(content []byte) []byte {
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		if i > 0 && content[i-1] == '\r' {
			return []byte("\r\n")
		}
		return []byte("\n")
	}
	return []byte("\n")
}
