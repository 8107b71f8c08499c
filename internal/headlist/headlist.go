// Package headlist reads and writes the human-editable head list format.
//
// Each head is a block of one to three lines, blocks separated by a blank
// line:
//
//	desert set                      optional comment
//	Cactus                          name
//	texture="e3RleHR1...", bold=true  optional field list
//
// A block holding a single valid username is shorthand for a head named
// after, and skinned as, that player.
package headlist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"head-hunter/internal/head"
)

// field describes one key of the field list, in the order it is written.
type field struct {
	key string
	get func(head.Spec) (string, bool)
	set func(*head.Spec, string) error
}

var fields = []field{
	stringField("player_name", func(s *head.Spec) *string { return &s.PlayerName }),
	stringField("texture", func(s *head.Spec) *string { return &s.Texture }),
	stringField("note_block_sound", func(s *head.Spec) *string { return &s.NoteBlockSound }),
	{
		key: "rarity",
		get: func(s head.Spec) (string, bool) { return strconv.Quote(string(s.Rarity)), s.Rarity != head.RarityNone },
		set: func(s *head.Spec, v string) error {
			str, err := unquote(v)
			if err != nil {
				return err
			}
			r, err := head.ParseRarity(str)
			s.Rarity = r
			return err
		},
	},
	stringField("color", func(s *head.Spec) *string { return &s.Color }),
	boolField("italic", func(s *head.Spec) *bool { return &s.Italic }),
	boolField("bold", func(s *head.Spec) *bool { return &s.Bold }),
	boolField("underlined", func(s *head.Spec) *bool { return &s.Underlined }),
	boolField("strikethrough", func(s *head.Spec) *bool { return &s.Strikethrough }),
	boolField("obfuscated", func(s *head.Spec) *bool { return &s.Obfuscated }),
}

func stringField(key string, ptr func(*head.Spec) *string) field {
	return field{
		key: key,
		get: func(s head.Spec) (string, bool) {
			v := *ptr(&s)
			return strconv.Quote(v), v != ""
		},
		set: func(s *head.Spec, v string) error {
			str, err := unquote(v)
			*ptr(s) = str
			return err
		},
	}
}

func boolField(key string, ptr func(*head.Spec) *bool) field {
	return field{
		key: key,
		get: func(s head.Spec) (string, bool) { return "true", *ptr(&s) },
		set: func(s *head.Spec, v string) error {
			b, err := strconv.ParseBool(v)
			*ptr(s) = b
			return err
		},
	}
}

func unquote(v string) (string, error) {
	if !strings.HasPrefix(v, `"`) {
		return "", fmt.Errorf("expected a quoted string, got %s", v)
	}
	return strconv.Unquote(v)
}

// emptyFieldList stands in for "no fields" when a block would otherwise be
// read back differently.
const emptyFieldList = `player_name=""`

// Dump renders one head as a block, without a trailing newline.
func Dump(s head.Spec) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("dump head: %w", err)
	}
	if s.IsShorthand() {
		return s.Name, nil
	}

	var lines []string
	if s.Comment != "" {
		lines = append(lines, s.Comment, s.Name)
	} else {
		lines = append(lines, s.Name)
	}

	var pairs []string
	for _, f := range fields {
		if v, ok := f.get(s); ok {
			pairs = append(pairs, f.key+"="+v)
		}
	}
	switch {
	case len(pairs) > 0:
		lines = append(lines, strings.Join(pairs, ", "))
	case s.Comment == "" && head.IsUsername(s.Name):
		// a lone username line would read back as the shorthand
		lines = append(lines, emptyFieldList)
	case s.Comment != "" && isFieldList(s.Name):
		lines = append(lines, emptyFieldList)
	}
	return strings.Join(lines, "\n"), nil
}

// Dumps renders heads as blocks separated by blank lines.
func Dumps(heads []head.Spec) (string, error) {
	if len(heads) == 0 {
		return "", nil
	}
	blocks := make([]string, 0, len(heads))
	for i, s := range heads {
		block, err := Dump(s)
		if err != nil {
			return "", fmt.Errorf("entry %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

// Loads parses the list format. Errors name the 0-based line of the block
// that failed.
func Loads(text string) ([]head.Spec, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	heads := []head.Spec{}
	var block []string
	start := 0
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		s, err := loadBlock(block)
		if err != nil {
			return head.AtLine(err, start, strings.Join(block, "\n"))
		}
		heads = append(heads, s)
		block = block[:0]
		return nil
	}

	for i, line := range lines {
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			start = i
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return heads, nil
}

func loadBlock(block []string) (head.Spec, error) {
	const op = "load head block"
	var s head.Spec

	switch len(block) {
	case 1:
		if head.IsUsername(block[0]) {
			return head.FromUsername(block[0])
		}
		s.Name = block[0]
	case 2:
		if isFieldList(block[1]) {
			s.Name = block[0]
			if err := parseFields(&s, block[1]); err != nil {
				return head.Spec{}, err
			}
		} else {
			s.Comment, s.Name = block[0], block[1]
		}
	case 3:
		s.Comment, s.Name = block[0], block[1]
		if err := parseFields(&s, block[2]); err != nil {
			return head.Spec{}, err
		}
	default:
		return head.Spec{}, head.Errorf(op, strings.Join(block, "\n"), head.ErrMalformedDialectText,
			"block has %d lines, want 1 to 3", len(block))
	}

	if err := s.Validate(); err != nil {
		return head.Spec{}, err
	}
	return s, nil
}

// isFieldList reports whether line has the shape of a field list: known keys
// with literal values. Values are checked later by parseFields.
func isFieldList(line string) bool {
	pairs, err := splitPairs(line)
	if err != nil {
		return false
	}
	for _, p := range pairs {
		if _, ok := lookupField(p[0]); !ok {
			return false
		}
	}
	return true
}

func parseFields(s *head.Spec, line string) error {
	const op = "parse field list"
	pairs, err := splitPairs(line)
	if err != nil {
		return head.Errorf(op, line, head.ErrMalformedDialectText, "%v", err)
	}
	for _, p := range pairs {
		f, ok := lookupField(p[0])
		if !ok {
			return head.Errorf(op, line, head.ErrMalformedDialectText, "unknown field %q", p[0])
		}
		if err := f.set(s, p[1]); err != nil {
			var te *head.TextError
			if errors.As(err, &te) {
				return err
			}
			return head.Errorf(op, line, head.ErrMalformedDialectText, "%s: %v", p[0], err)
		}
	}
	return nil
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// splitPairs cuts `k=v, k="v, with comma"` into key/value pairs, honoring
// quoted values.
func splitPairs(line string) ([][2]string, error) {
	var pairs [][2]string
	rest := line
	for {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("expected key=value in %q", rest)
		}
		key := rest[:eq]
		if strings.ContainsAny(key, ` ",`) {
			return nil, fmt.Errorf("invalid key %q", key)
		}
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			q, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, fmt.Errorf("unterminated value for %s", key)
			}
			value, rest = q, rest[len(q):]
		} else {
			end := strings.Index(rest, ", ")
			if end < 0 {
				end = len(rest)
			}
			value, rest = rest[:end], rest[end:]
		}
		pairs = append(pairs, [2]string{key, value})

		if rest == "" {
			return pairs, nil
		}
		if !strings.HasPrefix(rest, ", ") {
			return nil, fmt.Errorf("expected \", \" after %s", key)
		}
		rest = rest[2:]
	}
}
