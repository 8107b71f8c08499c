package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"head-hunter/internal/dialect"
	"head-hunter/internal/loottable"

	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// LootTableParser finds player heads in loot-table JSON files.
type LootTableParser struct{}

func NewLootTableParser() *LootTableParser { return &LootTableParser{} }

func (p *LootTableParser) CanParse(ext string) bool {
	return ext == ".json"
}

func (p *LootTableParser) Parse(filePath string) (*ParseResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read loot table: %w", err)
	}
	return p.ParseBytes(data, filePath)
}

// ParseBytes decodes an in-memory loot table.
func (p *LootTableParser) ParseBytes(data []byte, filePath string) (*ParseResult, error) {
	heads, err := loottable.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode loot table %s: %w", filePath, err)
	}

	result := &ParseResult{
		FilePath: filePath,
		FileType: "loot_table",
		RawLines: strings.Split(string(data), "\n"),
	}
	for _, h := range heads {
		result.Heads = append(result.Heads, HeadEntry{
			Spec: h.Spec,
			File: filePath,
			Line: -1,
			Path: h.Path,
		})
	}
	return result, nil
}

// Reconstruct rewrites every head function of the table for packFormat:
// `set_components` with a components object for the modern dialect,
// `set_nbt` with a tag string otherwise. Comments in the source are not
// preserved.
func (p *LootTableParser) Reconstruct(result *ParseResult, packFormat int) ([]byte, error) {
	d, err := dialect.ForPackFormat(packFormat)
	if err != nil {
		return nil, err
	}

	data := jsonc.ToJSON([]byte(strings.Join(result.RawLines, "\n")))
	for _, h := range result.Heads {
		if h.Path == "" {
			continue
		}
		if data, err = rewriteFunction(data, h, d); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", h.Path, err)
		}
	}
	return pretty.Pretty(data), nil
}

func rewriteFunction(data []byte, h HeadEntry, d dialect.Dialect) ([]byte, error) {
	var err error
	if _, modern := d.(dialect.Modern); modern {
		values, verr := dialect.ComponentValues(h.Spec)
		if verr != nil {
			return nil, verr
		}
		raw, merr := json.Marshal(values)
		if merr != nil {
			return nil, fmt.Errorf("marshal components: %w", merr)
		}
		if data, err = sjson.SetBytes(data, h.Path+".function", "minecraft:set_components"); err != nil {
			return nil, err
		}
		if data, err = sjson.DeleteBytes(data, h.Path+".tag"); err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(data, h.Path+".components", raw)
	}

	body, err := d.Encode(h.Spec)
	if err != nil {
		return nil, err
	}
	if data, err = sjson.SetBytes(data, h.Path+".function", "minecraft:set_nbt"); err != nil {
		return nil, err
	}
	if data, err = sjson.DeleteBytes(data, h.Path+".components"); err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, h.Path+".tag", "{"+body+"}")
}
