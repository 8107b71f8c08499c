// Package loottable extracts player heads from loot-table JSON. Tables are
// read as JSONC, so comments and trailing commas in hand-edited packs are
// tolerated.
package loottable

import (
	"fmt"
	"os"

	"head-hunter/internal/dialect"
	"head-hunter/internal/head"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// HeadItem is the item id a head entry carries.
const HeadItem = "minecraft:player_head"

// Head is a decoded head together with where it sits in the table.
type Head struct {
	Spec head.Spec
	// Path is the gjson path of the function that produced the head,
	// e.g. "pools.0.entries.2.functions.1".
	Path string
}

// Decode walks pools → entries (→ children) → functions and decodes every
// player head it finds, in document order.
func Decode(data []byte) ([]Head, error) {
	const op = "decode loot table"
	stripped := jsonc.ToJSON(data)
	if !gjson.ValidBytes(stripped) {
		return nil, head.Errorf(op, string(data), head.ErrMalformedDialectText, "not valid JSON")
	}

	root := gjson.ParseBytes(stripped)
	pools := root.Get("pools")
	if !pools.IsArray() {
		return nil, head.Errorf(op, string(data), head.ErrMalformedDialectText, "no pools array")
	}

	var (
		heads []Head
		err   error
	)
	for i, pool := range pools.Array() {
		heads, err = walkEntries(pool.Get("entries"), fmt.Sprintf("pools.%d.entries", i), heads)
		if err != nil {
			return nil, err
		}
	}
	return heads, nil
}

// ReadFile reads and decodes a loot table from disk.
func ReadFile(path string) ([]Head, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read loot table %s: %w", path, err)
	}
	heads, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return heads, nil
}

func walkEntries(entries gjson.Result, path string, heads []Head) ([]Head, error) {
	if !entries.IsArray() {
		return heads, nil
	}
	var err error
	for i, entry := range entries.Array() {
		entryPath := fmt.Sprintf("%s.%d", path, i)
		if entry.Get("name").String() == HeadItem {
			if heads, err = decodeEntry(entry, entryPath, heads); err != nil {
				return heads, err
			}
		}
		if children := entry.Get("children"); children.Exists() {
			if heads, err = walkEntries(children, entryPath+".children", heads); err != nil {
				return heads, err
			}
		}
	}
	return heads, nil
}

func decodeEntry(entry gjson.Result, path string, heads []Head) ([]Head, error) {
	found := false
	for i, fn := range entry.Get("functions").Array() {
		fnPath := fmt.Sprintf("%s.functions.%d", path, i)
		var (
			s   head.Spec
			err error
		)
		switch components, tag := fn.Get("components"), fn.Get("tag"); {
		case components.IsObject():
			m, _ := components.Value().(map[string]any)
			s, err = dialect.DecodeComponents(m, components.Raw)
		case tag.Type == gjson.String:
			s, err = dialect.ExtendedLegacy{}.Decode(tag.String())
		default:
			continue
		}
		if err != nil {
			return heads, fmt.Errorf("%s: %w", fnPath, err)
		}
		found = true
		heads = append(heads, Head{Spec: s, Path: fnPath})
	}
	if !found {
		return heads, head.Errorf("decode loot entry", entry.Raw, head.ErrMalformedDialectText,
			"%s: player head without tag or components", path)
	}
	return heads, nil
}
