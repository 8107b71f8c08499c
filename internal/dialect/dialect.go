// Package dialect converts head specs to and from the textual item dialects
// used by successive pack formats.
//
// A Dialect is chosen once per call from the pack format:
//
//	format < 4         unsupported
//	4  <= format < 15  Legacy          display:{Name:"..."}, SkullOwner:...
//	15 <= format < 41  ExtendedLegacy  Legacy + BlockEntityTag:{note_block_sound:"..."}
//	format >= 41       Modern          minecraft:item_name='...', minecraft:profile=...
package dialect

import (
	"fmt"
	"strconv"

	"head-hunter/internal/head"
	"head-hunter/internal/textfmt"
)

// Pack format thresholds.
const (
	MinPackFormat            = 4
	ExtendedLegacyPackFormat = 15
	ModernPackFormat         = 41
	// DefaultPackFormat targets Minecraft 1.21.
	DefaultPackFormat = 48
)

// Dialect is the closed set of item encodings: Legacy, ExtendedLegacy and
// Modern.
type Dialect interface {
	// Name identifies the dialect in logs and errors.
	Name() string
	// Encode renders the item fragment for s.
	Encode(s head.Spec) (string, error)
	// Decode recovers a spec from a fragment produced by this dialect.
	Decode(fragment string) (head.Spec, error)
	// Project restricts s to the fields this dialect can represent.
	Project(s head.Spec) head.Spec

	isDialect()
}

// Legacy is the NBT dialect of pack formats 4 through 14.
type Legacy struct{}

// ExtendedLegacy adds the note block sound to Legacy (pack formats 15-40).
type ExtendedLegacy struct{}

// Modern is the item component dialect of pack format 41 onwards.
type Modern struct{}

func (Legacy) Name() string         { return "legacy" }
func (ExtendedLegacy) Name() string { return "extended-legacy" }
func (Modern) Name() string         { return "modern" }

func (Legacy) isDialect()         {}
func (ExtendedLegacy) isDialect() {}
func (Modern) isDialect()         {}

// ForPackFormat selects the dialect for a pack format.
func ForPackFormat(packFormat int) (Dialect, error) {
	switch {
	case packFormat >= ModernPackFormat:
		return Modern{}, nil
	case packFormat >= ExtendedLegacyPackFormat:
		return ExtendedLegacy{}, nil
	case packFormat >= MinPackFormat:
		return Legacy{}, nil
	default:
		return nil, head.Errorf("select dialect", strconv.Itoa(packFormat), head.ErrUnsupportedVersion,
			"pack format %d predates structured item data", packFormat)
	}
}

// Encode renders s in the dialect for packFormat.
func Encode(s head.Spec, packFormat int) (string, error) {
	d, err := ForPackFormat(packFormat)
	if err != nil {
		return "", err
	}
	return d.Encode(s)
}

// Decode reads a fragment using the dialect for packFormat as the hint.
func Decode(fragment string, packFormat int) (head.Spec, error) {
	d, err := ForPackFormat(packFormat)
	if err != nil {
		return head.Spec{}, err
	}
	return d.Decode(fragment)
}

// Project restricts s to what d can represent, which is exactly what a
// Decode(Encode(s)) round trip returns.
func Project(s head.Spec, d Dialect) head.Spec {
	return d.Project(s)
}

func (Legacy) Project(s head.Spec) head.Spec {
	s = projectLegacy(s)
	s.NoteBlockSound = ""
	return s
}

func (ExtendedLegacy) Project(s head.Spec) head.Spec {
	return projectLegacy(s)
}

func (Modern) Project(s head.Spec) head.Spec {
	s.Comment = ""
	return s
}

// projectLegacy folds the rarity into the name color and keeps a single skin
// source, texture first.
func projectLegacy(s head.Spec) head.Spec {
	if color, err := s.NameColor(); err == nil {
		s.Color = color
	}
	s.Rarity = head.RarityNone
	if s.Texture != "" {
		s.PlayerName = ""
	}
	s.Comment = ""
	return s
}

// style collects the name styling of s with the given resolved color.
func style(s head.Spec, color string) textfmt.Style {
	return textfmt.Style{
		Color:         color,
		Italic:        s.Italic,
		Bold:          s.Bold,
		Underlined:    s.Underlined,
		Strikethrough: s.Strikethrough,
		Obfuscated:    s.Obfuscated,
	}
}

// applyStyle copies decoded styling onto s.
func applyStyle(s head.Spec, st textfmt.Style) head.Spec {
	s.Color = st.Color
	s.Italic = st.Italic
	s.Bold = st.Bold
	s.Underlined = st.Underlined
	s.Strikethrough = st.Strikethrough
	s.Obfuscated = st.Obfuscated
	return s
}

// failed wraps a validation error with the raw input it came from.
func failed(op, raw string, err error) error {
	return &head.TextError{Op: op, Text: raw, Line: -1, Err: err}
}

func describe(d Dialect) string {
	return fmt.Sprintf("%s dialect", d.Name())
}
