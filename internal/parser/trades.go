package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"head-hunter/internal/dialect"
	"head-hunter/internal/head"
	"head-hunter/internal/interpolation"
	"head-hunter/internal/snbt"
)

var (
	// headSale matches the sell item of a trade that hands out a player head.
	headSale = regexp.MustCompile(`sell:\{id:"?minecraft:player_head"?`)
	// freeSecondCost marks a trade whose second price slot is empty.
	freeSecondCost = regexp.MustCompile(`buyB:\{id:"?minecraft:air"?`)
)

// TradeParser classifies the trade commands of a wandering-trader function
// file. Lines selling a head for a plain price become head sales; lines that
// also ask for a block become block-sale templates.
type TradeParser struct{}

func NewTradeParser() *TradeParser { return &TradeParser{} }

func (p *TradeParser) CanParse(ext string) bool {
	return ext == ".mcfunction"
}

func (p *TradeParser) Parse(filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader classifies every line read from r. Failures carry the 0-based
// line number and the offending line.
func (p *TradeParser) ParseReader(r io.Reader, filePath string) (*ParseResult, error) {
	result := &ParseResult{
		FilePath: filePath,
		FileType: "trades",
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNum := -1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		result.RawLines = append(result.RawLines, line)

		command := strings.TrimSpace(line)
		if command == "" || strings.HasPrefix(command, "#") {
			continue
		}

		loc := headSale.FindStringIndex(line)
		if loc == nil {
			continue
		}

		if !freeSecondCost.MatchString(command) {
			template, m, ok := interpolation.Protect(command)
			if !ok {
				err := head.Errorf("classify trade", command, head.ErrMalformedDialectText, "block sale without a trade index")
				return nil, head.AtLine(err, lineNum, line)
			}
			result.BlockSales = append(result.BlockSales, BlockSale{
				Template: template,
				IndexAt:  m.Offset,
				Index:    m.Index,
				File:     filePath,
				Line:     lineNum,
			})
			continue
		}

		sellAt := loc[0] + len("sell:")
		spec, err := decodeSellItem(line, sellAt)
		if err != nil {
			return nil, head.AtLine(err, lineNum, line)
		}
		result.Heads = append(result.Heads, HeadEntry{
			Spec:   spec,
			File:   filePath,
			Line:   lineNum,
			sellAt: sellAt,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan trade file: %w", err)
	}

	return result, nil
}

// decodeSellItem reads the item compound at pos and decodes its `components`
// or legacy `tag`.
func decodeSellItem(line string, pos int) (head.Spec, error) {
	const op = "decode sell item"
	v, _, err := snbt.ParseAt(line, pos)
	if err != nil {
		return head.Spec{}, head.Errorf(op, line, head.ErrMalformedDialectText, "%v", err)
	}
	item, ok := v.(map[string]any)
	if !ok {
		return head.Spec{}, head.Errorf(op, line, head.ErrMalformedDialectText, "sell item is not a compound")
	}

	switch payload := payloadOf(item).(type) {
	case map[string]any:
		if _, isComponents := item["components"]; isComponents {
			return dialect.DecodeComponents(payload, line)
		}
		return dialect.DecodeLegacyTag(payload, true, line)
	case string:
		return dialect.ExtendedLegacy{}.Decode(payload)
	default:
		return head.Spec{}, head.Errorf(op, line, head.ErrMalformedDialectText, "sell item has no tag or components")
	}
}

func payloadOf(item map[string]any) any {
	if c, ok := item["components"]; ok {
		return c
	}
	return item["tag"]
}

// Reconstruct rewrites every head sale of result in the dialect for
// packFormat, leaving all other lines untouched.
func (p *TradeParser) Reconstruct(result *ParseResult, packFormat int) ([]byte, error) {
	d, err := dialect.ForPackFormat(packFormat)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(result.RawLines))
	copy(lines, result.RawLines)

	for _, h := range result.Heads {
		if h.Line < 0 || h.Line >= len(lines) {
			continue
		}
		rewritten, err := rewriteSellItem(lines[h.Line], h.sellAt, h.Spec, d)
		if err != nil {
			return nil, head.AtLine(err, h.Line, lines[h.Line])
		}
		lines[h.Line] = rewritten
	}

	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// edit replaces line[from:to].
type edit struct {
	from, to int
	text     string
}

func rewriteSellItem(line string, sellAt int, s head.Spec, d dialect.Dialect) (string, error) {
	spans, _, err := snbt.EntrySpans(line, sellAt)
	if err != nil {
		return "", head.Errorf("rewrite sell item", line, head.ErrMalformedDialectText, "%v", err)
	}

	payload, err := ItemPayload(s, d)
	if err != nil {
		return "", err
	}

	var edits []edit
	switch {
	case hasSpan(spans, "components"):
		edits = append(edits, edit{spans["components"].From, spans["components"].To, payload})
		if tag, ok := spans["tag"]; ok {
			edits = append(edits, removal(line, tag))
		}
	case hasSpan(spans, "tag"):
		edits = append(edits, edit{spans["tag"].From, spans["tag"].To, payload})
	}

	_, modern := d.(dialect.Modern)
	if count, ok := spans["Count"]; ok && modern {
		edits = append(edits, edit{count.From, count.To, "count:" + countValue(line, count)})
	}
	if count, ok := spans["count"]; ok && !modern {
		edits = append(edits, edit{count.From, count.To, "Count:" + countValue(line, count) + "b"})
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].from > edits[j].from })
	for _, e := range edits {
		line = line[:e.from] + e.text + line[e.to:]
	}
	return line, nil
}

func hasSpan(spans map[string]snbt.Span, key string) bool {
	_, ok := spans[key]
	return ok
}

// removal drops an entry together with the comma that follows or precedes it.
func removal(line string, span snbt.Span) edit {
	to := span.To
	rest := strings.TrimLeft(line[to:], " ")
	if strings.HasPrefix(rest, ",") {
		return edit{span.From, len(line) - len(rest) + 1, ""}
	}
	from := strings.LastIndexByte(line[:span.From], ',')
	if from < 0 {
		from = span.From
	}
	return edit{from, to, ""}
}

// countValue strips the key and any numeric type suffix from a count entry.
func countValue(line string, span snbt.Span) string {
	entry := line[span.From:span.To]
	value := strings.TrimSpace(entry[strings.IndexByte(entry, ':')+1:])
	return strings.TrimRight(value, "bBsSlL")
}

// ItemPayload renders the item data entry for a trade's sell item:
// `tag:{...}` for the legacy dialects, `components:{...}` for modern.
func ItemPayload(s head.Spec, d dialect.Dialect) (string, error) {
	if _, modern := d.(dialect.Modern); modern {
		dict, err := dialect.ToComponentDict(s)
		if err != nil {
			return "", err
		}
		return "components:{" + dict + "}", nil
	}
	body, err := d.Encode(s)
	if err != nil {
		return "", err
	}
	return "tag:{" + body + "}", nil
}
