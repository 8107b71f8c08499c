package dialect

import (
	"strings"

	"head-hunter/internal/head"
	"head-hunter/internal/snbt"
	"head-hunter/internal/textfmt"
)

func (d Legacy) Encode(s head.Spec) (string, error) {
	parts, err := legacyParts(d, s)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ", "), nil
}

func (d ExtendedLegacy) Encode(s head.Spec) (string, error) {
	parts, err := legacyParts(d, s)
	if err != nil {
		return "", err
	}
	if s.NoteBlockSound != "" {
		parts = append(parts, "BlockEntityTag:{note_block_sound:"+snbt.Quote(s.NoteBlockSound, '"')+"}")
	}
	return strings.Join(parts, ", "), nil
}

func (d Modern) Encode(s head.Spec) (string, error) {
	parts, err := modernParts(d, s)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ", "), nil
}

// ToComponentDict renders the modern dialect with each component key quoted,
// `"minecraft:item_name":'...'`, for embedding inside a components map.
func ToComponentDict(s head.Spec) (string, error) {
	parts, err := modernParts(Modern{}, s)
	if err != nil {
		return "", err
	}
	for i, part := range parts {
		eq := strings.IndexByte(part, '=')
		parts[i] = `"` + part[:eq] + `":` + part[eq+1:]
	}
	return strings.Join(parts, ", "), nil
}

// ComponentValues returns the modern components of s as plain values, keyed
// the way loot-table JSON expects them under `set_components`.
func ComponentValues(s head.Spec) (map[string]any, error) {
	if err := s.Validate(); err != nil {
		return nil, failed("encode component values", s.Name, err)
	}
	out := map[string]any{
		"minecraft:item_name": textfmt.Render(s.Name, style(s, s.Color), textfmt.EscapeNone),
	}
	if s.HasSkin() {
		profile := map[string]any{}
		if s.PlayerName != "" {
			profile["name"] = s.PlayerName
		}
		if s.Texture != "" {
			profile["properties"] = []any{map[string]any{"name": "textures", "value": s.Texture}}
		}
		out["minecraft:profile"] = profile
	}
	if s.Rarity != head.RarityNone {
		out["minecraft:rarity"] = string(s.Rarity)
	}
	if s.NoteBlockSound != "" {
		out["minecraft:note_block_sound"] = s.NoteBlockSound
	}
	return out, nil
}

func legacyParts(d Dialect, s head.Spec) ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, failed("encode "+describe(d), s.Name, err)
	}
	color, err := s.NameColor()
	if err != nil {
		return nil, failed("encode "+describe(d), s.Name, err)
	}

	name := textfmt.Render(s.Name, style(s, color), textfmt.EscapeDouble)
	parts := []string{`display:{Name:"` + name + `"}`}

	switch {
	case s.Texture != "":
		parts = append(parts, "SkullOwner:{Properties:{textures:[{Value:"+snbt.Quote(s.Texture, '"')+"}]}}")
	case s.PlayerName != "":
		parts = append(parts, "SkullOwner:"+snbt.Word(s.PlayerName))
	}
	return parts, nil
}

func modernParts(d Dialect, s head.Spec) ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, failed("encode "+describe(d), s.Name, err)
	}

	// rarity stays a component of its own here; it is not folded into a color
	name := textfmt.Render(s.Name, style(s, s.Color), textfmt.EscapeSingle)
	parts := []string{"minecraft:item_name='" + name + "'"}

	var profile []string
	if s.PlayerName != "" {
		profile = append(profile, "name:"+snbt.Quote(s.PlayerName, '"'))
	}
	if s.Texture != "" {
		profile = append(profile, `properties:[{name:"textures", value:`+snbt.Quote(s.Texture, '"')+"}]")
	}
	if len(profile) > 0 {
		parts = append(parts, "minecraft:profile={"+strings.Join(profile, ", ")+"}")
	}
	if s.Rarity != head.RarityNone {
		parts = append(parts, "minecraft:rarity="+snbt.Quote(string(s.Rarity), '"'))
	}
	if s.NoteBlockSound != "" {
		parts = append(parts, "minecraft:note_block_sound="+snbt.Quote(s.NoteBlockSound, '"'))
	}
	return parts, nil
}
