package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"head-hunter/internal/head"
	"head-hunter/internal/snbt"
	"head-hunter/internal/textfmt"
)

var (
	modernCue = regexp.MustCompile(`(^|[\s,{\[])(minecraft:)?(item_name|custom_name|profile)\s*=|"(minecraft:)?(item_name|custom_name|profile)"\s*:`)
	legacyCue = regexp.MustCompile(`SkullOwner\s*:|display\s*:\s*\{\s*Name\s*:`)
)

// Detect picks the dialect that produced fragment from its structural cues.
// NBT-style fragments are reported as ExtendedLegacy, which reads everything
// Legacy does.
func Detect(fragment string) (Dialect, error) {
	switch {
	case modernCue.MatchString(fragment):
		return Modern{}, nil
	case legacyCue.MatchString(fragment):
		return ExtendedLegacy{}, nil
	default:
		return nil, head.Errorf("detect dialect", fragment, head.ErrMalformedDialectText,
			"no item_name, profile, SkullOwner or display marker")
	}
}

// DecodeFragment detects the dialect of a trade or give fragment and decodes it.
func DecodeFragment(fragment string) (head.Spec, error) {
	d, err := Detect(fragment)
	if err != nil {
		return head.Spec{}, err
	}
	return d.Decode(fragment)
}

func (Legacy) Decode(fragment string) (head.Spec, error) {
	return decodeLegacyFragment(fragment, false)
}

func (ExtendedLegacy) Decode(fragment string) (head.Spec, error) {
	return decodeLegacyFragment(fragment, true)
}

func (Modern) Decode(fragment string) (head.Spec, error) {
	const op = "decode modern fragment"
	text := strings.TrimSpace(fragment)

	var components map[string]any
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		v, err := snbt.Parse(text)
		if err != nil {
			return head.Spec{}, failed(op, fragment, fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err))
		}
		switch t := v.(type) {
		case map[string]any:
			components = t
		case []any:
			// a bracketed list is a component list, read it as one
			list, err := snbt.SplitComponents(text[1 : len(text)-1])
			if err != nil {
				return head.Spec{}, failed(op, fragment, fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err))
			}
			components = componentMap(list)
		}
	} else {
		list, err := snbt.SplitComponents(text)
		if err != nil {
			return head.Spec{}, failed(op, fragment, fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err))
		}
		components = componentMap(list)
	}
	return DecodeComponents(components, fragment)
}

func componentMap(list []snbt.Component) map[string]any {
	m := make(map[string]any, len(list))
	for _, c := range list {
		m[c.Key] = c.Value
	}
	return m
}

// DecodeComponents builds a spec from an item component map, as found in a
// modern fragment, a trade's `components` compound or a loot-table
// `set_components` function. Keys may carry the `minecraft:` namespace.
func DecodeComponents(components map[string]any, raw string) (head.Spec, error) {
	const op = "decode item components"
	get := func(key string) (any, bool) {
		if v, ok := components["minecraft:"+key]; ok {
			return v, true
		}
		v, ok := components[key]
		return v, ok
	}

	nameValue, ok := get("item_name")
	if !ok {
		if nameValue, ok = get("custom_name"); !ok {
			return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "no item_name component")
		}
	}
	name, st, err := decodeName(nameValue)
	if err != nil {
		return head.Spec{}, failed(op, raw, err)
	}
	s := applyStyle(head.Spec{Name: name}, st)

	if profile, ok := get("profile"); ok {
		player, texture, err := decodeProfile(profile)
		if err != nil {
			return head.Spec{}, failed(op, raw, err)
		}
		s.PlayerName, s.Texture = player, texture
	}
	if v, ok := get("rarity"); ok {
		str, ok := snbt.AsString(v)
		if !ok {
			return head.Spec{}, head.Errorf(op, raw, head.ErrInvalidRarity, "rarity is not a tier name: %v", v)
		}
		rarity, err := head.ParseRarity(str)
		if err != nil {
			return head.Spec{}, failed(op, raw, err)
		}
		s.Rarity = rarity
	}
	if v, ok := get("note_block_sound"); ok {
		sound, ok := v.(string)
		if !ok {
			return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "note_block_sound is not a string")
		}
		s.NoteBlockSound = sound
	}

	if err := s.Validate(); err != nil {
		return head.Spec{}, failed(op, raw, err)
	}
	return s, nil
}

// decodeName accepts component text (JSON inside a string) or an inline
// component compound.
func decodeName(v any) (string, textfmt.Style, error) {
	if s, ok := v.(string); ok {
		return textfmt.DecodeComponentText(s)
	}
	return textfmt.DecodeComponent(v)
}

// decodeProfile reads a modern profile: a bare player name, or a compound
// with `name` and/or `properties`. A missing properties key means no
// texture; an empty properties list is rejected as ambiguous.
func decodeProfile(v any) (player, texture string, err error) {
	const op = "decode profile"
	if name, ok := ownerName(v); ok {
		return name, "", nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "profile is neither a name nor a compound")
	}

	if name, ok := m["name"]; ok {
		if player, ok = ownerName(name); !ok {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "profile name is not a string")
		}
	}
	if props, ok := m["properties"]; ok {
		list, ok := props.([]any)
		if !ok {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "properties is not a list")
		}
		if len(list) == 0 {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrInvalidIdentifier, "properties list is empty")
		}
		for _, entry := range list {
			if propName, _ := snbt.Lookup(entry, "name"); propName != "textures" {
				continue
			}
			value, _ := snbt.Lookup(entry, "value")
			tex, ok := value.(string)
			if !ok || tex == "" {
				return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "textures property has no value")
			}
			texture = tex
			break
		}
	}
	if player == "" && texture == "" {
		return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "profile has no name or texture")
	}
	return player, texture, nil
}

func decodeLegacyFragment(fragment string, extended bool) (head.Spec, error) {
	const op = "decode legacy fragment"
	text := strings.TrimSpace(fragment)

	var (
		tag map[string]any
		err error
	)
	if strings.HasPrefix(text, "{") {
		var v any
		if v, err = snbt.Parse(text); err == nil {
			tag, _ = v.(map[string]any)
		}
	}
	if tag == nil {
		tag, err = snbt.ParseCompoundBody(text)
	}
	if err != nil {
		return head.Spec{}, failed(op, fragment, fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err))
	}
	return DecodeLegacyTag(tag, extended, fragment)
}

// DecodeLegacyTag builds a spec from a legacy item tag compound holding
// `display.Name`, `SkullOwner` and, when extended, `BlockEntityTag`.
func DecodeLegacyTag(tag map[string]any, extended bool, raw string) (head.Spec, error) {
	const op = "decode legacy tag"

	nameValue, hasName := snbt.Lookup(tag, "display", "Name")
	owner, hasOwner := tag["SkullOwner"]
	if !hasName && !hasOwner {
		return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "no display.Name or SkullOwner")
	}

	var s head.Spec
	if hasOwner {
		player, texture, err := decodeSkullOwner(owner)
		if err != nil {
			return head.Spec{}, failed(op, raw, err)
		}
		s.PlayerName, s.Texture = player, texture
	}
	if hasName {
		text, ok := nameValue.(string)
		if !ok {
			return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "display.Name is not a string")
		}
		name, st := textfmt.ExtractFormatFlags(text)
		s = applyStyle(s, st)
		s.Name = name
	} else {
		if s.PlayerName == "" {
			return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "textured head without display.Name")
		}
		s.Name = s.PlayerName
	}
	if extended {
		if v, ok := snbt.Lookup(tag, "BlockEntityTag", "note_block_sound"); ok {
			sound, ok := v.(string)
			if !ok {
				return head.Spec{}, head.Errorf(op, raw, head.ErrMalformedDialectText, "note_block_sound is not a string")
			}
			s.NoteBlockSound = sound
		}
	}

	if err := s.Validate(); err != nil {
		return head.Spec{}, failed(op, raw, err)
	}
	return s, nil
}

// decodeSkullOwner prefers a texture (`Properties.textures[0].Value`) and
// falls back to a player name, bare or under `Name`.
func decodeSkullOwner(v any) (player, texture string, err error) {
	const op = "decode skull owner"
	if name, ok := ownerName(v); ok {
		if !head.IsUsername(name) {
			return "", "", head.Errorf(op, name, head.ErrInvalidIdentifier, "not a valid username")
		}
		return name, "", nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "SkullOwner is neither a name nor a compound")
	}

	if textures, ok := snbt.Lookup(m, "Properties", "textures"); ok {
		list, ok := textures.([]any)
		if !ok {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "textures is not a list")
		}
		if len(list) == 0 {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrInvalidIdentifier, "textures list is empty")
		}
		value, _ := snbt.Lookup(list[0], "Value")
		tex, ok := value.(string)
		if !ok || tex == "" {
			return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "texture has no Value")
		}
		return "", tex, nil
	}
	if name, ok := m["Name"]; ok {
		str, _ := ownerName(name)
		if !head.IsUsername(str) {
			return "", "", head.Errorf(op, str, head.ErrInvalidIdentifier, "not a valid username")
		}
		return str, "", nil
	}
	return "", "", head.Errorf(op, fmt.Sprint(v), head.ErrMalformedDialectText, "SkullOwner has neither Properties nor Name")
}

// ownerName reads a player name written as a bare word. Hand-written files
// leave names such as true or null unquoted, and those read as keywords.
func ownerName(v any) (string, bool) {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "null", true
	}
	return snbt.AsString(v)
}
