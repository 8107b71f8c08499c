// Package snbt reads the small stringified-tag grammar that content packs use
// to describe items: quoted strings (either quote style), unquoted words,
// numbers with an optional type suffix, booleans, compounds, lists and typed
// arrays. JSON is a subset of the grammar, so JSON text components embedded in
// tags are read with the same reader.
//
// Parsed values are plain Go values:
//
//	compound      map[string]any
//	list / array  []any
//	string        string
//	number        Number (raw token, suffix included)
//	true / false  bool
//	null          nil
package snbt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Number is a numeric token kept in its source form, e.g. "1", "0b", "2.5f".
type Number string

// SyntaxError reports where the reader gave up.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("snbt: offset %d: %s", e.Offset, e.Msg)
}

var numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?[bBsSlLfFdD]?$`)

// Parse reads exactly one value from text. Trailing whitespace is allowed,
// anything else after the value is an error.
func Parse(text string) (any, error) {
	v, end, err := ParseAt(text, 0)
	if err != nil {
		return nil, err
	}
	r := reader{s: text, pos: end}
	r.skipSpace()
	if !r.eof() {
		return nil, r.errorf("unexpected %q after value", r.peek())
	}
	return v, nil
}

// ParseAt reads one value starting at pos (leading whitespace skipped) and
// returns it along with the offset just past it.
func ParseAt(text string, pos int) (any, int, error) {
	r := reader{s: text, pos: pos}
	v, err := r.value()
	if err != nil {
		return nil, r.pos, err
	}
	return v, r.pos, nil
}

// ParseCompoundBody reads a brace-less compound body such as
// `display:{Name:"x"}, SkullOwner:Notch`.
func ParseCompoundBody(text string) (map[string]any, error) {
	v, err := Parse("{" + text + "}")
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// Span locates one compound entry in the source text: From is the first byte
// of the key, To is just past the value.
type Span struct {
	From, To int
}

// EntrySpans reads the compound starting at pos and reports where each of its
// top-level entries sits, along with the offset just past the closing brace.
func EntrySpans(text string, pos int) (map[string]Span, int, error) {
	r := reader{s: text, pos: pos}
	r.skipSpace()
	if r.eof() || r.peek() != '{' {
		return nil, r.pos, r.errorf("expected '{' to open compound")
	}
	r.pos++
	spans := make(map[string]Span)
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.pos, r.errorf("unterminated compound")
		}
		if r.peek() == '}' {
			r.pos++
			return spans, r.pos, nil
		}
		from := r.pos
		key, err := r.key()
		if err != nil {
			return nil, r.pos, err
		}
		r.skipSpace()
		if r.eof() || r.peek() != ':' {
			return nil, r.pos, r.errorf("expected ':' after key %q", key)
		}
		r.pos++
		if _, err := r.value(); err != nil {
			return nil, r.pos, err
		}
		spans[key] = Span{From: from, To: r.pos}
		r.skipSpace()
		if r.eof() {
			return nil, r.pos, r.errorf("unterminated compound")
		}
		switch r.peek() {
		case ',':
			r.pos++
		case '}':
		default:
			return nil, r.pos, r.errorf("expected ',' or '}' in compound, got %q", r.peek())
		}
	}
}

// Component is one entry of a top-level item component list.
type Component struct {
	Key   string
	Value any
}

// SplitComponents reads a comma separated component list. Entries are either
// `key=value` with an unquoted, possibly namespaced key, or `"key":value`
// with a quoted key.
func SplitComponents(text string) ([]Component, error) {
	r := reader{s: text}
	return r.components(0)
}

// ParseComponentsAt reads a bracketed component list `[k=v, ...]` starting at
// pos and returns the offset just past the closing bracket.
func ParseComponentsAt(text string, pos int) ([]Component, int, error) {
	r := reader{s: text, pos: pos}
	r.skipSpace()
	if r.eof() || r.peek() != '[' {
		return nil, r.pos, r.errorf("expected '[' to open component list")
	}
	r.pos++
	out, err := r.components(']')
	return out, r.pos, err
}

// components reads entries until closer (0 means end of input).
func (r *reader) components(closer byte) ([]Component, error) {
	var out []Component
	for {
		r.skipSpace()
		if r.atClose(closer) {
			return out, r.close(closer)
		}
		var key string
		if c := r.peek(); c == '"' || c == '\'' {
			k, err := r.quoted()
			if err != nil {
				return nil, err
			}
			key = k
			r.skipSpace()
			if r.eof() || (r.peek() != ':' && r.peek() != '=') {
				return nil, r.errorf("expected ':' or '=' after component key %q", key)
			}
			r.pos++
		} else {
			start := r.pos
			for !r.eof() && isComponentKeyChar(r.peek()) {
				r.pos++
			}
			key = r.s[start:r.pos]
			if key == "" {
				return nil, r.errorf("expected component key")
			}
			r.skipSpace()
			if r.eof() || r.peek() != '=' {
				return nil, r.errorf("expected '=' after component key %q", key)
			}
			r.pos++
		}
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		out = append(out, Component{Key: key, Value: v})
		r.skipSpace()
		if r.atClose(closer) {
			return out, r.close(closer)
		}
		if r.peek() != ',' {
			return nil, r.errorf("expected ',' between components, got %q", r.peek())
		}
		r.pos++
	}
}

func (r *reader) atClose(closer byte) bool {
	if closer == 0 || r.eof() {
		return r.eof()
	}
	return r.peek() == closer
}

func (r *reader) close(closer byte) error {
	if closer == 0 {
		return nil
	}
	if r.eof() {
		return r.errorf("unterminated component list")
	}
	r.pos++
	return nil
}

// Quote wraps s in delim, escaping backslashes and the delimiter.
func Quote(s string, delim byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(delim)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == delim {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(delim)
	return b.String()
}

// Word writes s bare when it reads back as the same string, and double
// quoted otherwise (keywords such as true or null, numbers, punctuation).
func Word(s string) string {
	if v, err := Parse(s); err == nil {
		if str, ok := v.(string); ok && str == s {
			return s
		}
	}
	return Quote(s, '"')
}

// AsString accepts strings and bare numeric words (a username may be all digits).
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case Number:
		return string(t), true
	}
	return "", false
}

// Lookup walks nested compounds by key.
func Lookup(v any, path ...string) (any, bool) {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, true
}

type reader struct {
	s   string
	pos int
}

func (r *reader) eof() bool  { return r.pos >= len(r.s) }
func (r *reader) peek() byte { return r.s[r.pos] }

func (r *reader) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: r.pos, Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) skipSpace() {
	for !r.eof() {
		switch r.peek() {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) value() (any, error) {
	r.skipSpace()
	if r.eof() {
		return nil, r.errorf("unexpected end of input")
	}
	switch c := r.peek(); c {
	case '{':
		return r.compound()
	case '[':
		return r.list()
	case '"', '\'':
		return r.quoted()
	default:
		return r.word()
	}
}

func (r *reader) compound() (map[string]any, error) {
	r.pos++ // {
	m := make(map[string]any)
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated compound")
		}
		if r.peek() == '}' {
			r.pos++
			return m, nil
		}
		key, err := r.key()
		if err != nil {
			return nil, err
		}
		r.skipSpace()
		if r.eof() || r.peek() != ':' {
			return nil, r.errorf("expected ':' after key %q", key)
		}
		r.pos++
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		m[key] = v
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated compound")
		}
		switch r.peek() {
		case ',':
			r.pos++
		case '}':
		default:
			return nil, r.errorf("expected ',' or '}' in compound, got %q", r.peek())
		}
	}
}

func (r *reader) key() (string, error) {
	if c := r.peek(); c == '"' || c == '\'' {
		return r.quoted()
	}
	start := r.pos
	for !r.eof() && isWordChar(r.peek()) {
		r.pos++
	}
	if start == r.pos {
		return "", r.errorf("expected key, got %q", r.peek())
	}
	return r.s[start:r.pos], nil
}

func (r *reader) list() ([]any, error) {
	r.pos++ // [
	// typed arrays: [B;...] [I;...] [L;...]
	if r.pos+1 < len(r.s) && r.s[r.pos+1] == ';' && strings.IndexByte("BIL", r.s[r.pos]) >= 0 {
		r.pos += 2
	}
	out := []any{}
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated list")
		}
		if r.peek() == ']' {
			r.pos++
			return out, nil
		}
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated list")
		}
		switch r.peek() {
		case ',':
			r.pos++
		case ']':
		default:
			return nil, r.errorf("expected ',' or ']' in list, got %q", r.peek())
		}
	}
}

func (r *reader) quoted() (string, error) {
	delim := r.peek()
	start := r.pos
	r.pos++
	var b strings.Builder
	for {
		if r.eof() {
			r.pos = start
			return "", r.errorf("unterminated string")
		}
		c := r.peek()
		switch {
		case c == delim:
			r.pos++
			return b.String(), nil
		case c == '\\' && r.pos+1 < len(r.s):
			r.pos++
			r.escape(&b)
		default:
			b.WriteByte(c)
			r.pos++
		}
	}
}

// escape consumes the character after a backslash. Unknown escapes are kept
// verbatim so nested text survives for a second decoding pass.
func (r *reader) escape(b *strings.Builder) {
	c := r.peek()
	r.pos++
	switch c {
	case '\\', '"', '\'', '/':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'u':
		if r.pos+4 <= len(r.s) {
			if n, err := strconv.ParseUint(r.s[r.pos:r.pos+4], 16, 32); err == nil {
				b.WriteRune(rune(n))
				r.pos += 4
				return
			}
		}
		b.WriteString(`\u`)
	default:
		b.WriteByte('\\')
		if c >= utf8.RuneSelf {
			r.pos--
			return
		}
		b.WriteByte(c)
	}
}

func (r *reader) word() (any, error) {
	start := r.pos
	for !r.eof() && (isWordChar(r.peek()) || r.peek() == ':') {
		r.pos++
	}
	w := r.s[start:r.pos]
	if w == "" {
		return nil, r.errorf("unexpected %q", r.peek())
	}
	switch {
	case w == "true":
		return true, nil
	case w == "false":
		return false, nil
	case w == "null":
		return nil, nil
	case numberPattern.MatchString(w):
		return Number(w), nil
	}
	return w, nil
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '.' || c == '+'
}

func isComponentKeyChar(c byte) bool {
	return isWordChar(c) || c == ':' || c == '/' || c == '!'
}
