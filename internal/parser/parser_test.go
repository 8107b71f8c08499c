package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"head-hunter/internal/dialect"
	"head-hunter/internal/head"
)

const (
	headSaleLine  = `execute if score @s wt_tradeIndex matches 7 run data modify storage wandering_trades:trades Offers append value {buy:{id:"minecraft:emerald",Count:1b},buyB:{id:"minecraft:air",Count:1b},sell:{id:"minecraft:player_head",Count:1b,tag:{display:{Name:"{\"text\":\"Grian\"}"},SkullOwner:Grian}},maxUses:3}`
	blockSaleLine = `execute if score @s wt_tradeIndex matches 7 run data modify storage wandering_trades:trades Offers append value {buy:{id:"minecraft:emerald",Count:1b},buyB:{id:"minecraft:oak_log",Count:8b},sell:{id:"minecraft:player_head",Count:1b,tag:{display:{Name:"\"Log\""},SkullOwner:{Properties:{textures:[{Value:"abc"}]}}}},maxUses:3}`
	modernSale    = `execute if score @s wt_tradeIndex matches 9 run data modify storage wandering_trades:trades Offers append value {buy:{id:"minecraft:emerald",count:1},buyB:{id:"minecraft:air"},sell:{id:"minecraft:player_head",count:1,components:{"minecraft:item_name":'{"text":"Log","color":"gold"}',"minecraft:profile":{name:"Grian",properties:[{name:"textures",value:"abc"}]},"minecraft:rarity":"rare"}},maxUses:3}`
)

func TestTradeParserClassifies(t *testing.T) {
	t.Parallel()

	file := strings.Join([]string{
		"# wandering trader head trades",
		"",
		`execute if score @s wt_tradeIndex matches 1 run data modify storage wandering_trades:trades Offers append value {buy:{id:"minecraft:emerald",Count:1b},sell:{id:"minecraft:oak_log",Count:8b}}`,
		headSaleLine,
		blockSaleLine,
		"   " + modernSale,
	}, "\n")

	result, err := NewTradeParser().ParseReader(strings.NewReader(file), "add_trade.mcfunction")
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if len(result.Heads) != 2 {
		t.Fatalf("got %d head sales, want 2: %+v", len(result.Heads), result.Heads)
	}
	if got := result.Heads[0]; got.Spec != (head.Spec{Name: "Grian", PlayerName: "Grian"}) || got.Line != 3 {
		t.Errorf("head sale 0 = %+v", got)
	}
	wantModern := head.Spec{Name: "Log", PlayerName: "Grian", Texture: "abc", Rarity: head.RarityRare, Color: "gold"}
	if got := result.Heads[1]; got.Spec != wantModern || got.Line != 5 {
		t.Errorf("head sale 1 = %+v, want %+v", got, wantModern)
	}

	if len(result.BlockSales) != 1 {
		t.Fatalf("got %d block sales, want 1", len(result.BlockSales))
	}
	sale := result.BlockSales[0]
	if sale.Index != 7 || sale.Line != 4 {
		t.Errorf("block sale = %+v", sale)
	}
	if want := strings.Replace(blockSaleLine, "matches 7 run", "matches IDX run", 1); sale.Template != want {
		t.Errorf("block template =\n%s\nwant\n%s", sale.Template, want)
	}
	if len(result.RawLines) != 6 {
		t.Errorf("kept %d raw lines, want 6", len(result.RawLines))
	}
}

func TestTradeParserErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want error
	}{
		{
			"block sale without index",
			`data modify storage t Offers append value {buyB:{id:"minecraft:dirt"},sell:{id:"minecraft:player_head",tag:{SkullOwner:Grian}}}`,
			head.ErrMalformedDialectText,
		},
		{
			"no payload",
			`execute if score @s wt_tradeIndex matches 3 run data modify storage t Offers append value {buyB:{id:"minecraft:air"},sell:{id:"minecraft:player_head",Count:1b}}`,
			head.ErrMalformedDialectText,
		},
		{
			"bad username",
			`execute if score @s wt_tradeIndex matches 3 run data modify storage t Offers append value {buyB:{id:"minecraft:air"},sell:{id:"minecraft:player_head",tag:{SkullOwner:"x y"}}}`,
			head.ErrInvalidIdentifier,
		},
		{
			"unbalanced",
			`execute if score @s wt_tradeIndex matches 3 run data modify storage t Offers append value {buyB:{id:"minecraft:air"},sell:{id:"minecraft:player_head",tag:{SkullOwner:Grian}`,
			head.ErrMalformedDialectText,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTradeParser().ParseReader(strings.NewReader("# header\n"+tt.line), "f.mcfunction")
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseReader() error = %v, want %v", err, tt.want)
			}
			var te *head.TextError
			if !errors.As(err, &te) || te.Line != 1 || te.Text != tt.line {
				t.Errorf("error does not locate line 1: %v", err)
			}
		})
	}
}

func TestWriteAndParseTrades(t *testing.T) {
	t.Parallel()

	heads := []head.Spec{
		{Name: "Grian", PlayerName: "Grian"},
		{Name: "Oak Log", Texture: "abc", Rarity: head.RarityRare, Bold: true},
		{Name: `Bob's "Head"`, PlayerName: "Bob_123", NoteBlockSound: "minecraft:block.note_block.bell"},
		{Name: "true", PlayerName: "true"},
	}

	for _, format := range []int{10, 20, 48} {
		var buf bytes.Buffer
		first, last, err := NewTradeWriter(format).WriteHeadTrades(&buf, heads, DefaultHeadTradeStart)
		if err != nil {
			t.Fatalf("WriteHeadTrades(%d) error = %v", format, err)
		}
		if first != 2 || last != 5 {
			t.Errorf("bounds = %d..%d, want 2..5", first, last)
		}

		result, err := NewTradeParser().ParseReader(&buf, "add_trade.mcfunction")
		if err != nil {
			t.Fatalf("ParseReader(format %d) error = %v\n%s", format, err, buf.String())
		}
		d, _ := dialect.ForPackFormat(format)
		if len(result.Heads) != len(heads) || len(result.BlockSales) != 0 {
			t.Fatalf("format %d: %d heads, %d block sales", format, len(result.Heads), len(result.BlockSales))
		}
		for i, s := range heads {
			if got, want := result.Heads[i].Spec, dialect.Project(s, d); got != want {
				t.Errorf("format %d head %d = %+v, want %+v", format, i, got, want)
			}
		}
	}

	var empty bytes.Buffer
	first, last, err := NewTradeWriter(48).WriteHeadTrades(&empty, nil, DefaultHeadTradeStart)
	if err != nil || last >= first || empty.Len() != 0 {
		t.Errorf("empty write = %d..%d, %v, %q", first, last, err, empty.String())
	}
}

func TestWriteBlockTrades(t *testing.T) {
	t.Parallel()

	result, err := NewTradeParser().ParseReader(strings.NewReader(blockSaleLine+"\n"+blockSaleLine), "f.mcfunction")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	first, last, err := WriteBlockTrades(&buf, result.BlockSales, DefaultBlockTradeStart)
	if err != nil {
		t.Fatal(err)
	}
	if first != 1002 || last != 1003 {
		t.Errorf("bounds = %d..%d", first, last)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "matches 1002 run") || !strings.Contains(lines[1], "matches 1003 run") {
		t.Errorf("block trades =\n%s", buf.String())
	}
}

func TestTradeReconstruct(t *testing.T) {
	t.Parallel()

	p := NewTradeParser()
	result, err := p.ParseReader(strings.NewReader("# trades\n"+headSaleLine+"\n"+blockSaleLine), "f.mcfunction")
	if err != nil {
		t.Fatal(err)
	}

	out, err := p.Reconstruct(result, 48)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Reconstruct() wrote %d lines", len(lines))
	}
	if lines[0] != "# trades" || lines[2] != blockSaleLine {
		t.Errorf("untouched lines changed:\n%s", out)
	}
	wantSell := `sell:{id:"minecraft:player_head",count:1,components:{"minecraft:item_name":'"Grian"', "minecraft:profile":{name:"Grian"}}}`
	if !strings.Contains(lines[1], wantSell) {
		t.Errorf("rewritten line =\n%s\nwant it to contain\n%s", lines[1], wantSell)
	}

	again, err := p.ParseReader(bytes.NewReader(out), "f.mcfunction")
	if err != nil {
		t.Fatalf("ParseReader(rewritten) error = %v", err)
	}
	if len(again.Heads) != 1 || again.Heads[0].Spec != result.Heads[0].Spec {
		t.Errorf("rewritten heads = %+v", again.Specs())
	}

	back, err := p.Reconstruct(again, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(back), `sell:{id:"minecraft:player_head",Count:1b,tag:{display:{Name:"\"Grian\""}, SkullOwner:Grian}}`) {
		t.Errorf("legacy rewrite =\n%s", back)
	}

	if _, err := p.Reconstruct(result, 2); !errors.Is(err, head.ErrUnsupportedVersion) {
		t.Errorf("Reconstruct(2) error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLootTableParser(t *testing.T) {
	t.Parallel()

	table := `{
  // heads
  "pools": [{"entries": [{"name": "minecraft:player_head", "functions": [
    {"function": "minecraft:set_nbt", "tag": "{display:{Name:'\"Creeper\"'},SkullOwner:{Properties:{textures:[{Value:\"xyz\"}]}}}"}
  ]}]}]
}`
	path := filepath.Join(t.TempDir(), "creeper.json")
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewLootTableParser()
	if !p.CanParse(".json") || p.CanParse(".mcfunction") {
		t.Error("CanParse() mismatch")
	}
	result, err := p.Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := head.Spec{Name: "Creeper", Texture: "xyz"}
	if len(result.Heads) != 1 || result.Heads[0].Spec != want || result.Heads[0].Line != -1 {
		t.Fatalf("Parse() heads = %+v", result.Heads)
	}

	for _, format := range []int{48, 20} {
		out, err := p.Reconstruct(result, format)
		if err != nil {
			t.Fatalf("Reconstruct(%d) error = %v", format, err)
		}
		again, err := p.ParseBytes(out, path)
		if err != nil {
			t.Fatalf("ParseBytes(rewritten %d) error = %v\n%s", format, err, out)
		}
		if len(again.Heads) != 1 || again.Heads[0].Spec != want {
			t.Errorf("format %d heads = %+v", format, again.Specs())
		}
		wantFn := `"minecraft:set_nbt"`
		if format >= dialect.ModernPackFormat {
			wantFn = `"minecraft:set_components"`
		}
		if !strings.Contains(string(out), wantFn) {
			t.Errorf("format %d output lacks %s:\n%s", format, wantFn, out)
		}
	}
}

func TestForExtension(t *testing.T) {
	t.Parallel()

	parsers := []Parser{NewTradeParser(), NewLootTableParser()}
	if p, ok := ForExtension(".mcfunction", parsers...); !ok {
		t.Error("no parser for .mcfunction")
	} else if _, isTrade := p.(*TradeParser); !isTrade {
		t.Errorf("ForExtension(.mcfunction) = %T", p)
	}
	if _, ok := ForExtension(".txt", parsers...); ok {
		t.Error("unexpected parser for .txt")
	}
}

func TestWriteBlockTradesKeepsNameText(t *testing.T) {
	t.Parallel()

	line := strings.Replace(blockSaleLine, `Name:"\"Log\""`, `Name:"\"IDX\""`, 1)
	result, err := NewTradeParser().ParseReader(strings.NewReader(line), "f.mcfunction")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.BlockSales) != 1 {
		t.Fatalf("block sales = %d, want 1", len(result.BlockSales))
	}

	var buf bytes.Buffer
	if _, _, err := WriteBlockTrades(&buf, result.BlockSales, 1500); err != nil {
		t.Fatal(err)
	}
	want := strings.Replace(line, "matches 7 run", "matches 1500 run", 1) + "\n"
	if buf.String() != want {
		t.Errorf("block trade =\n%s\nwant\n%s", buf.String(), want)
	}
}
