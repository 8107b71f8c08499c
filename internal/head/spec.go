// Package head defines the player head model shared by every dialect codec.
//
// A Spec is a plain comparable value. It carries no version information:
// which fields survive in a given textual dialect is decided by the encoder.
package head

import (
	"regexp"
	"strings"
)

// FormatMarker prefixes a legacy single-character format code. Names keep
// their styling in the flag fields instead.
const FormatMarker = '§'

// usernamePattern is the game's account name grammar.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// IsUsername reports whether s is a syntactically valid player name.
func IsUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Spec describes a player head item independent of any dialect.
// Empty strings mean "absent".
type Spec struct {
	Name           string `json:"name" yaml:"name"`
	PlayerName     string `json:"player_name,omitempty" yaml:"player_name,omitempty"`
	Texture        string `json:"texture,omitempty" yaml:"texture,omitempty"`
	NoteBlockSound string `json:"note_block_sound,omitempty" yaml:"note_block_sound,omitempty"`
	Rarity         Rarity `json:"rarity,omitempty" yaml:"rarity,omitempty"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
	Italic         bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Bold           bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Underlined     bool   `json:"underlined,omitempty" yaml:"underlined,omitempty"`
	Strikethrough  bool   `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
	Obfuscated     bool   `json:"obfuscated,omitempty" yaml:"obfuscated,omitempty"`
	// Comment is an internal annotation. It is never written into a game dialect.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Option sets an optional field during New.
type Option func(*Spec)

func WithPlayerName(name string) Option { return func(s *Spec) { s.PlayerName = name } }
func WithTexture(texture string) Option { return func(s *Spec) { s.Texture = texture } }
func WithNoteBlockSound(id string) Option { return func(s *Spec) { s.NoteBlockSound = id } }
func WithRarity(r Rarity) Option { return func(s *Spec) { s.Rarity = r } }
func WithColor(color string) Option { return func(s *Spec) { s.Color = color } }
func WithComment(comment string) Option { return func(s *Spec) { s.Comment = comment } }
func Italic() Option { return func(s *Spec) { s.Italic = true } }
func Bold() Option { return func(s *Spec) { s.Bold = true } }
func Underlined() Option { return func(s *Spec) { s.Underlined = true } }
func Strikethrough() Option { return func(s *Spec) { s.Strikethrough = true } }
func Obfuscated() Option { return func(s *Spec) { s.Obfuscated = true } }

// New builds and validates a Spec.
func New(name string, opts ...Option) (Spec, error) {
	s := Spec{Name: name}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// FromUsername is the shorthand for a head named after, and skinned as, a player.
func FromUsername(username string) (Spec, error) {
	return New(username, WithPlayerName(username))
}

// Validate checks the construction invariants.
func (s Spec) Validate() error {
	if s.Name == "" {
		return Errorf("validate head", s.Name, ErrInvalidIdentifier, "name is required")
	}
	if strings.ContainsAny(s.Name, "\r\n") {
		return Errorf("validate head", s.Name, ErrInvalidIdentifier, "name spans multiple lines")
	}
	if strings.ContainsRune(s.Name, FormatMarker) {
		return Errorf("validate head", s.Name, ErrInvalidIdentifier, "name carries raw format codes")
	}
	if strings.ContainsAny(s.Comment, "\r\n") {
		return Errorf("validate head", s.Comment, ErrInvalidIdentifier, "comment spans multiple lines")
	}
	if s.PlayerName != "" && s.Texture == "" && !IsUsername(s.PlayerName) {
		return Errorf("validate head", s.PlayerName, ErrInvalidIdentifier, "not a valid username")
	}
	return s.Rarity.Validate()
}

// HasSkin reports whether the head names a skin source.
func (s Spec) HasSkin() bool {
	return s.Texture != "" || s.PlayerName != ""
}

// IsShorthand reports whether s is exactly FromUsername(s.Name).
func (s Spec) IsShorthand() bool {
	return s == Spec{Name: s.Name, PlayerName: s.Name} && IsUsername(s.Name)
}

// NameColor is the color the name should be drawn in: the explicit color, or
// the rarity default.
func (s Spec) NameColor() (string, error) {
	if s.Color != "" {
		return s.Color, nil
	}
	return s.Rarity.Color()
}

func (s Spec) WithComment(comment string) Spec {
	s.Comment = comment
	return s
}

func (s Spec) WithName(name string) Spec {
	s.Name = name
	return s
}
