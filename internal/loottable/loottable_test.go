package loottable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"head-hunter/internal/head"
)

const modernTable = `{
  // wandering trader drop table
  "type": "minecraft:chest",
  "pools": [
    {
      "rolls": 1,
      "entries": [
        {"type": "minecraft:item", "name": "minecraft:stone"},
        {
          "type": "minecraft:item",
          "name": "minecraft:player_head",
          "functions": [
            {"function": "minecraft:set_count", "count": 2},
            {
              "function": "minecraft:set_components",
              "components": {
                "minecraft:item_name": "{\"text\":\"Oak Log\",\"color\":\"gold\"}",
                "minecraft:profile": {"properties": [{"name": "textures", "value": "abc"}]},
                "minecraft:rarity": "rare",
              }
            }
          ]
        }
      ]
    }
  ]
}`

const legacyTable = `{
  "pools": [
    {
      "entries": [
        {
          "type": "minecraft:alternatives",
          "children": [
            {
              "type": "minecraft:item",
              "name": "minecraft:player_head",
              "functions": [
                {
                  "function": "minecraft:set_nbt",
                  "tag": "{display:{Name:'{\"text\":\"Creeper\",\"italic\":false}'},SkullOwner:{Properties:{textures:[{Value:\"xyz\"}]}},BlockEntityTag:{note_block_sound:\"minecraft:entity.creeper.primed\"}}"
                }
              ]
            },
            {
              "type": "minecraft:item",
              "name": "minecraft:player_head",
              "functions": [
                {"function": "minecraft:set_nbt", "tag": "{SkullOwner:Notch}"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []Head
	}{
		{
			"modern components",
			modernTable,
			[]Head{{
				Spec: head.Spec{Name: "Oak Log", Texture: "abc", Rarity: head.RarityRare, Color: "gold"},
				Path: "pools.0.entries.1.functions.1",
			}},
		},
		{
			"legacy tags via children",
			legacyTable,
			[]Head{
				{
					Spec: head.Spec{Name: "Creeper", Texture: "xyz", NoteBlockSound: "minecraft:entity.creeper.primed"},
					Path: "pools.0.entries.0.children.0.functions.0",
				},
				{
					Spec: head.Spec{Name: "Notch", PlayerName: "Notch"},
					Path: "pools.0.entries.0.children.1.functions.0",
				},
			},
		},
		{
			"head carrying children",
			`{"pools":[{"entries":[{"name":"minecraft:player_head","functions":[{"tag":"{SkullOwner:Grian}"}],` +
				`"children":[{"name":"minecraft:player_head","functions":[{"tag":"{SkullOwner:Notch}"}]}]}]}]}`,
			[]Head{
				{Spec: head.Spec{Name: "Grian", PlayerName: "Grian"}, Path: "pools.0.entries.0.functions.0"},
				{Spec: head.Spec{Name: "Notch", PlayerName: "Notch"}, Path: "pools.0.entries.0.children.0.functions.0"},
			},
		},
		{
			"no heads",
			`{"pools":[{"entries":[{"type":"minecraft:empty"}]}]}`,
			nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Decode() returned %d heads, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("head %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `pools: nope`, head.ErrMalformedDialectText},
		{"no pools", `{"type":"minecraft:chest"}`, head.ErrMalformedDialectText},
		{
			"head without payload",
			`{"pools":[{"entries":[{"name":"minecraft:player_head","functions":[{"function":"minecraft:set_count","count":1}]}]}]}`,
			head.ErrMalformedDialectText,
		},
		{
			"bad rarity",
			`{"pools":[{"entries":[{"name":"minecraft:player_head","functions":[{"components":{"minecraft:item_name":"\"X\"","minecraft:rarity":"legendary"}}]}]}]}`,
			head.ErrInvalidRarity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "heads.json")
	if err := os.WriteFile(path, []byte(modernTable), 0o644); err != nil {
		t.Fatal(err)
	}
	heads, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(heads) != 1 || heads[0].Spec.Name != "Oak Log" {
		t.Errorf("ReadFile() = %+v", heads)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile(missing) error = nil")
	}
}
