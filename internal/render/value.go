// Package render assembles per-page template contexts and renders them
// through mustache templates.
package render

// Value is one entry in a render context: a string, a nested mapping, or a
// sequence of mappings. The closed set keeps the template adapter boundary
// explicit about the shapes it accepts.
type Value interface{ value() }

// String is a scalar context value.
type String string

// Mapping is a string-keyed collection of values.
type Mapping map[string]Value

// Sequence is an ordered list of mappings, used for page collections.
type Sequence []Mapping

func (String) value()   {}
func (Mapping) value()  {}
func (Sequence) value() {}

// Context is the root mapping handed to the template engine.
type Context = Mapping

// toTemplateData lowers a Value tree into the plain strings, maps and slices
// the mustache engine consumes.
func toTemplateData(v Value) any {
	switch tv := v.(type) {
	case String:
		return string(tv)
	case Mapping:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[k] = toTemplateData(val)
		}
		return out
	case Sequence:
		out := make([]any, 0, len(tv))
		for _, m := range tv {
			out = append(out, toTemplateData(m))
		}
		return out
	}
	return nil
}
