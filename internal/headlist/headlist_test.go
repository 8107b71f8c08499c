package headlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"head-hunter/internal/head"
)

var corpus = []head.Spec{
	{Name: "Grian", PlayerName: "Grian"},
	{Name: "Zombie Villager"},
	{Name: "Notch"},
	{Name: "Cactus", Texture: "e3RleHR1cmVz", Comment: "desert set"},
	{Name: "Oak Log", Texture: "abc=", Rarity: head.RarityRare, Color: "gold", Bold: true},
	{Name: `Quote "me", now`, PlayerName: "Bob_123", Italic: true, Underlined: true, Strikethrough: true, Obfuscated: true},
	{Name: "Creeper", PlayerName: "MHF_Creeper", NoteBlockSound: "minecraft:entity.creeper.primed"},
	{Name: "Grian", PlayerName: "Grian", Comment: "hermit"},
	{Name: "Steve", Comment: "just a name"},
	{Name: `color="red"`, Comment: "looks like fields"},
	{Name: `bold=true`},
	{Name: "Ünïcode Head ✓", Texture: "x", Comment: "  spaced comment  "},
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for n := 0; n <= len(corpus); n++ {
		in := corpus[:n]
		text, err := Dumps(in)
		if err != nil {
			t.Fatalf("Dumps(%d) error = %v", n, err)
		}
		out, err := Loads(text)
		if err != nil {
			t.Fatalf("Loads(Dumps(%d)) error = %v\n%s", n, err, text)
		}
		if len(out) != len(in) {
			t.Fatalf("Loads(Dumps(%d)) returned %d heads\n%s", n, len(out), text)
		}
		for i := range in {
			if out[i] != in[i] {
				t.Errorf("n=%d head %d = %+v, want %+v\n%s", n, i, out[i], in[i], text)
			}
		}
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec head.Spec
		want string
	}{
		{"shorthand", head.Spec{Name: "Grian", PlayerName: "Grian"}, "Grian"},
		{"name only", head.Spec{Name: "Zombie Villager"}, "Zombie Villager"},
		{"username shaped name", head.Spec{Name: "Notch"}, "Notch\n" + `player_name=""`},
		{
			"comment and fields",
			head.Spec{Name: "Cactus", Texture: "abc", Bold: true, Comment: "desert"},
			"desert\nCactus\n" + `texture="abc", bold=true`,
		},
		{
			"field order",
			head.Spec{Name: "X", Obfuscated: true, Color: "red", Rarity: head.RarityEpic, PlayerName: "Grian"},
			"X\n" + `player_name="Grian", rarity="epic", color="red", obfuscated=true`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Dump(tt.spec)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Dump() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestLoads(t *testing.T) {
	t.Parallel()

	text := "Grian\r\n\r\n\r\nZombie Head\n\nhermit set\nXisuma\nplayer_name=\"xisumavoid\", rarity=\"uncommon\"\n"
	got, err := Loads(text)
	if err != nil {
		t.Fatalf("Loads() error = %v", err)
	}
	want := []head.Spec{
		{Name: "Grian", PlayerName: "Grian"},
		{Name: "Zombie Head"},
		{Name: "Xisuma", PlayerName: "xisumavoid", Rarity: head.RarityUncommon, Comment: "hermit set"},
	}
	if len(got) != len(want) {
		t.Fatalf("Loads() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("head %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	empty, err := Loads("")
	if err != nil || len(empty) != 0 {
		t.Errorf("Loads(\"\") = %v, %v", empty, err)
	}
}

func TestLoadsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want error
		line int
	}{
		{"too many lines", "Grian\n\na\nb\nc\nd", head.ErrMalformedDialectText, 2},
		{"unknown rarity", "x\nName\nrarity=\"legendary\"", head.ErrInvalidRarity, 0},
		{"unknown key", "x\nName\nsize=\"big\"", head.ErrMalformedDialectText, 0},
		{"bad bool", "x\nName\nbold=yes", head.ErrMalformedDialectText, 0},
		{"bad username", "Name\nplayer_name=\"no spaces allowed\"", head.ErrInvalidIdentifier, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Loads(tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Loads() error = %v, want %v", err, tt.want)
			}
			var te *head.TextError
			if !errors.As(err, &te) {
				t.Fatalf("error %T is not a *head.TextError", err)
			}
			if te.Line != tt.line {
				t.Errorf("error line = %d, want %d", te.Line, tt.line)
			}
		})
	}
}

func TestDumpsRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := Dumps([]head.Spec{{Name: "ok"}, {Name: "bad", Rarity: "legendary"}})
	if !errors.Is(err, head.ErrInvalidRarity) {
		t.Errorf("Dumps() error = %v, want ErrInvalidRarity", err)
	}
	if err != nil && !strings.Contains(err.Error(), "entry 1") {
		t.Errorf("Dumps() error %q does not name the entry", err)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	var js bytes.Buffer
	if err := ExportJSON(&js, corpus[:2]); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	var doc struct {
		Heads []map[string]any `json:"heads"`
	}
	if err := json.Unmarshal(js.Bytes(), &doc); err != nil {
		t.Fatalf("ExportJSON() wrote invalid JSON: %v", err)
	}
	if len(doc.Heads) != 2 || doc.Heads[0]["player_name"] != "Grian" {
		t.Errorf("ExportJSON() = %s", js.String())
	}
	if _, ok := doc.Heads[1]["texture"]; ok {
		t.Errorf("ExportJSON() wrote an empty texture: %s", js.String())
	}

	var y bytes.Buffer
	if err := ExportYAML(&y, corpus); err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}
	back, err := ImportYAML(&y)
	if err != nil {
		t.Fatalf("ImportYAML() error = %v", err)
	}
	if len(back) != len(corpus) {
		t.Fatalf("ImportYAML() returned %d heads", len(back))
	}
	for i := range corpus {
		if back[i] != corpus[i] {
			t.Errorf("yaml head %d = %+v, want %+v", i, back[i], corpus[i])
		}
	}

	var none bytes.Buffer
	if err := ExportJSON(&none, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(none.String(), `"heads": []`) {
		t.Errorf("ExportJSON(nil) = %s", none.String())
	}
}
