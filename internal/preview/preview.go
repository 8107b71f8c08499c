// Package preview draws head names in a terminal the way the game would
// show them.
package preview

import (
	"fmt"
	"io"
	"strings"

	"head-hunter/internal/head"
	"head-hunter/internal/textfmt"
	"head-hunter/internal/textutil"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette maps component color names to the game's RGB values.
var palette = map[string]string{
	"black":        "#000000",
	"dark_blue":    "#0000AA",
	"dark_green":   "#00AA00",
	"dark_aqua":    "#00AAAA",
	"dark_red":     "#AA0000",
	"dark_purple":  "#AA00AA",
	"gold":         "#FFAA00",
	"gray":         "#AAAAAA",
	"dark_gray":    "#555555",
	"blue":         "#5555FF",
	"green":        "#55FF55",
	"aqua":         "#55FFFF",
	"red":          "#FF5555",
	"light_purple": "#FF55FF",
	"magenta":      "#FF55FF",
	"yellow":       "#FFFF55",
	"white":        "#FFFFFF",
}

// Hex resolves a component color (named or #rrggbb) to #rrggbb.
func Hex(color string) (string, bool) {
	if hex, ok := palette[strings.ToLower(color)]; ok {
		return hex, true
	}
	if len(color) == 7 && color[0] == '#' {
		return strings.ToUpper(color), true
	}
	return "", false
}

// Previewer renders heads through a lipgloss renderer.
type Previewer struct {
	r *lipgloss.Renderer
}

// New returns a Previewer that detects the color support of w.
func New(w io.Writer) *Previewer {
	return &Previewer{r: lipgloss.NewRenderer(w)}
}

// WithProfile returns a Previewer pinned to a color profile.
func WithProfile(w io.Writer, profile termenv.Profile) *Previewer {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return &Previewer{r: r}
}

// NameStyle is the style the game applies to the head's name.
func (p *Previewer) NameStyle(s head.Spec) (lipgloss.Style, error) {
	style := p.r.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underlined).
		Strikethrough(s.Strikethrough).
		Blink(s.Obfuscated)

	color, err := s.NameColor()
	if err != nil {
		return style, err
	}
	if color == "" {
		return style, nil
	}
	hex, ok := Hex(color)
	if !ok {
		return style, head.Errorf("preview", color, head.ErrUnsupportedFeature, "unknown color %q", color)
	}
	return style.Foreground(lipgloss.Color(hex)), nil
}

// Name renders the head's name.
func (p *Previewer) Name(s head.Spec) (string, error) {
	style, err := p.NameStyle(s)
	if err != nil {
		return "", err
	}
	return style.Render(s.Name), nil
}

// Coded writes the name behind legacy format codes, for chat, signs and
// terminals that pass the codes through untouched.
func Coded(s head.Spec) (string, error) {
	color, err := s.NameColor()
	if err != nil {
		return "", err
	}
	return textfmt.FormatCodes(textfmt.Style{
		Color:         color,
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underlined:    s.Underlined,
		Strikethrough: s.Strikethrough,
		Obfuscated:    s.Obfuscated,
	}) + s.Name, nil
}

// Card renders the name above a bordered summary of the head's fields.
func (p *Previewer) Card(s head.Spec) (string, error) {
	name, err := p.Name(s)
	if err != nil {
		return "", err
	}

	label := p.r.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	lines := []string{name}
	add := func(key, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%s %s", label.Render(key+":"), value))
		}
	}
	add("player", s.PlayerName)
	add("texture", textutil.Truncate(s.Texture, 24))
	add("rarity", string(s.Rarity))
	add("sound", s.NoteBlockSound)
	add("note", s.Comment)

	box := p.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Padding(0, 1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), nil
}
