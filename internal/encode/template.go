package encode

import (
	"fmt"
	"strings"

	"fsa-go/internal/audit"
)

// segment is one parsed piece of a template: literal text, or a field
// placeholder.
type segment struct {
	literal string
	field   audit.Field
	isField bool
}

// Template renders records through a format string with {name}-style
// placeholders for the ten record fields. "{{" and "}}" emit literal braces.
type Template struct {
	segments []segment
}

// ParseTemplate parses a format string, validating every placeholder against
// the closed field set. An unknown placeholder is a usage error, reported
// here — before any filesystem work begins — never silently ignored.
func ParseTemplate(format string) (*Template, error) {
	var segs []segment
	var lit strings.Builder

	for i := 0; i < len(format); {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := format[i+1 : i+end]
			field, err := audit.ParseField(name)
			if err != nil {
				return nil, fmt.Errorf("unknown placeholder {%s}", name)
			}
			if lit.Len() > 0 {
				segs = append(segs, segment{literal: lit.String()})
				lit.Reset()
			}
			segs = append(segs, segment{field: field, isField: true})
			i += end + 1
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if lit.Len() > 0 {
		segs = append(segs, segment{literal: lit.String()})
	}

	return &Template{segments: segs}, nil
}

// Render formats one record through the template.
func (t *Template) Render(r *audit.Record) string {
	var out strings.Builder
	for _, s := range t.segments {
		if s.isField {
			out.WriteString(fieldText(r, s.field))
		} else {
			out.WriteString(s.literal)
		}
	}
	return out.String()
}
