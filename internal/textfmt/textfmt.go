// Package textfmt renders and reads the name-component sub-grammar: a display
// string plus optional color and style flags.
package textfmt

import (
	"fmt"
	"strings"

	"head-hunter/internal/head"
	"head-hunter/internal/snbt"
)

// Style is the set of formatting flags a name component can carry.
type Style struct {
	Color         string
	Italic        bool
	Bold          bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
}

// IsZero reports whether no flag is set.
func (s Style) IsZero() bool { return s == Style{} }

// Escaper makes a rendered component safe to embed between a dialect's
// string delimiters.
type Escaper func(string) string

var (
	// EscapeNone leaves the component untouched.
	EscapeNone Escaper = func(s string) string { return s }
	// EscapeSingle is for components wrapped in single quotes.
	EscapeSingle Escaper = func(s string) string { return escapeFor(s, '\'') }
	// EscapeDouble is for components wrapped in double quotes.
	EscapeDouble Escaper = func(s string) string { return escapeFor(s, '"') }
)

func escapeFor(s string, delim byte) string {
	q := snbt.Quote(s, delim)
	return q[1 : len(q)-1]
}

// Render builds a name component. An unstyled name renders as a bare JSON
// string; otherwise as an object with a "text" key followed by each set flag
// in the order color, italic, bold, underlined, strikethrough, obfuscated.
func Render(text string, style Style, escape Escaper) string {
	if escape == nil {
		escape = EscapeNone
	}
	if style.IsZero() {
		return escape(jsonString(text))
	}

	var b strings.Builder
	b.WriteString(`{"text":`)
	b.WriteString(jsonString(text))
	if style.Color != "" {
		fmt.Fprintf(&b, `, "color": %s`, jsonString(style.Color))
	}
	for _, flag := range []struct {
		key string
		on  bool
	}{
		{"italic", style.Italic},
		{"bold", style.Bold},
		{"underlined", style.Underlined},
		{"strikethrough", style.Strikethrough},
		{"obfuscated", style.Obfuscated},
	} {
		if flag.on {
			fmt.Fprintf(&b, `, "%s": true`, flag.key)
		}
	}
	b.WriteByte('}')
	return escape(b.String())
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// DecodeComponent reads an already parsed component value: a string (which
// may carry legacy format codes) or a single-segment object. Multi-segment
// components are rejected with head.ErrUnsupportedFeature.
func DecodeComponent(v any) (string, Style, error) {
	const op = "decode name component"
	switch t := v.(type) {
	case string:
		text, style := StripFormatCodes(t)
		return text, style, nil
	case map[string]any:
		if _, ok := t["extra"]; ok {
			return "", Style{}, head.Errorf(op, fmt.Sprint(t), head.ErrUnsupportedFeature, "multi-segment name")
		}
		raw, ok := t["text"]
		if !ok {
			return "", Style{}, head.Errorf(op, fmt.Sprint(t), head.ErrUnsupportedFeature, "name without a text value")
		}
		s, ok := snbt.AsString(raw)
		if !ok {
			return "", Style{}, head.Errorf(op, fmt.Sprint(t), head.ErrMalformedDialectText, "text is not a string")
		}
		text, style := StripFormatCodes(s)
		if c, ok := t["color"].(string); ok {
			style.Color = c
		}
		style.Italic = style.Italic || truthy(t["italic"])
		style.Bold = style.Bold || truthy(t["bold"])
		style.Underlined = style.Underlined || truthy(t["underlined"])
		style.Strikethrough = style.Strikethrough || truthy(t["strikethrough"])
		style.Obfuscated = style.Obfuscated || truthy(t["obfuscated"])
		return text, style, nil
	case []any:
		return "", Style{}, head.Errorf(op, fmt.Sprint(t), head.ErrUnsupportedFeature, "multi-segment name")
	default:
		return "", Style{}, head.Errorf(op, fmt.Sprint(t), head.ErrMalformedDialectText, "unexpected component type %T", v)
	}
}

// DecodeComponentText parses component text (JSON or tag syntax) and decodes
// it. Text that does not parse as a component is taken as a literal name.
func DecodeComponentText(text string) (string, Style, error) {
	v, err := snbt.Parse(text)
	if err != nil {
		name, style := StripFormatCodes(text)
		return name, style, nil
	}
	switch v.(type) {
	case string, map[string]any, []any:
		return DecodeComponent(v)
	}
	name, style := StripFormatCodes(text)
	return name, style, nil
}

// ExtractFormatFlags returns the plain name and style flags of an annotated
// name. It never fails: anything it cannot interpret is kept as text, and
// unknown codes are dropped. Multi-segment names are flattened and take the
// style of their first segment.
func ExtractFormatFlags(annotated string) (string, Style) {
	v, err := snbt.Parse(annotated)
	if err != nil {
		return StripFormatCodes(annotated)
	}
	switch v.(type) {
	case string, map[string]any, []any:
		return flatten(v)
	}
	return StripFormatCodes(annotated)
}

func flatten(v any) (string, Style) {
	switch t := v.(type) {
	case string:
		return StripFormatCodes(t)
	case map[string]any:
		first := make(map[string]any, len(t))
		for k, val := range t {
			if k != "extra" {
				first[k] = val
			}
		}
		var b strings.Builder
		var style Style
		if _, ok := first["text"]; ok {
			name, st, err := DecodeComponent(first)
			if err == nil {
				b.WriteString(name)
				style = st
			}
		}
		if extra, ok := t["extra"].([]any); ok {
			rest, st := flatten(extra)
			if b.Len() == 0 {
				style = st
			}
			b.WriteString(rest)
		}
		return b.String(), style
	case []any:
		var b strings.Builder
		var style Style
		for i, seg := range t {
			name, st := flatten(seg)
			if i == 0 {
				style = st
			}
			b.WriteString(name)
		}
		return b.String(), style
	case nil:
		return "", Style{}
	default:
		return fmt.Sprint(t), Style{}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case snbt.Number:
		return t == "1" || t == "1b" || t == "1B"
	case string:
		return t == "true"
	}
	return false
}
