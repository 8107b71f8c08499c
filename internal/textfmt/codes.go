package textfmt

import (
	"strings"
	"unicode"

	"head-hunter/internal/head"
)

// colorCodes maps legacy color code characters to component color names.
var colorCodes = map[rune]string{
	'0': "black",
	'1': "dark_blue",
	'2': "dark_green",
	'3': "dark_aqua",
	'4': "dark_red",
	'5': "dark_purple",
	'6': "gold",
	'7': "gray",
	'8': "dark_gray",
	'9': "blue",
	'a': "green",
	'b': "aqua",
	'c': "red",
	'd': "light_purple",
	'e': "yellow",
	'f': "white",
}

// StripFormatCodes removes every marker+code pair from s and reports the
// style in effect where the visible text starts. Codes that appear after the
// text has started are removed but do not change the result. A color code
// clears the flags set before it. Unknown codes are dropped silently.
func StripFormatCodes(s string) (string, Style) {
	if !strings.ContainsRune(s, head.FormatMarker) {
		return s, Style{}
	}

	var (
		b       strings.Builder
		current Style
		settled *Style
	)
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != head.FormatMarker {
			if settled == nil {
				snapshot := current
				settled = &snapshot
			}
			b.WriteRune(r)
			continue
		}
		if i+1 >= len(rs) {
			break // dangling marker
		}
		i++
		code := unicode.ToLower(rs[i])
		if color, ok := colorCodes[code]; ok {
			current = Style{Color: color}
			continue
		}
		switch code {
		case 'k':
			current.Obfuscated = true
		case 'l':
			current.Bold = true
		case 'm':
			current.Strikethrough = true
		case 'n':
			current.Underlined = true
		case 'o':
			current.Italic = true
		case 'r':
			current = Style{}
		}
	}

	if settled == nil {
		return b.String(), current
	}
	return b.String(), *settled
}

// FormatCodes renders a style back into a legacy code prefix. Colors without
// a legacy code are skipped.
func FormatCodes(style Style) string {
	var b strings.Builder
	if style.Color != "" {
		for code, name := range colorCodes {
			if name == style.Color {
				b.WriteRune(head.FormatMarker)
				b.WriteRune(code)
				break
			}
		}
	}
	for _, f := range []struct {
		on   bool
		code rune
	}{
		{style.Obfuscated, 'k'},
		{style.Bold, 'l'},
		{style.Strikethrough, 'm'},
		{style.Underlined, 'n'},
		{style.Italic, 'o'},
	} {
		if f.on {
			b.WriteRune(head.FormatMarker)
			b.WriteRune(f.code)
		}
	}
	return b.String()
}
