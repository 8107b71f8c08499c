package parser

import "head-hunter/internal/head"

// HeadEntry is a player head found in a content file.
type HeadEntry struct {
	Spec head.Spec
	// File is the source file path.
	File string
	// Line is the 0-based line of a trade command, -1 for loot tables.
	Line int
	// Path locates the loot-table function the head came from. Empty for trades.
	Path string

	// sellAt is the offset of the sell item compound within the raw line.
	sellAt int
}

// BlockSale is a trade that sells a head for something other than a plain
// price. It is kept as a template with its trade index protected so it can be
// re-emitted in a separate block of trades.
type BlockSale struct {
	// Template is the trimmed command with the trade index replaced by
	// interpolation.IndexPlaceholder.
	Template string
	// IndexAt is the byte offset of the placeholder within Template.
	IndexAt int
	// Index is the trade index the command originally carried.
	Index int
	File  string
	Line  int
}

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the path of the parsed file.
	FilePath string
	// FileType is "trades" or "loot_table".
	FileType string
	// Heads are the head sales or loot entries, in file order.
	Heads []HeadEntry
	// BlockSales are trade commands that were set aside, in file order.
	BlockSales []BlockSale
	// RawLines preserves the original file content for Reconstruct.
	RawLines []string
}

// Specs returns the head models of the result, in file order.
func (r *ParseResult) Specs() []head.Spec {
	specs := make([]head.Spec, 0, len(r.Heads))
	for _, h := range r.Heads {
		specs = append(specs, h.Spec)
	}
	return specs
}

// Parser is the interface for all content file parsers.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse extracts player heads from a file.
	Parse(filePath string) (*ParseResult, error)
}

// ForExtension returns the first parser that handles ext.
func ForExtension(ext string, parsers ...Parser) (Parser, bool) {
	for _, p := range parsers {
		if p.CanParse(ext) {
			return p, true
		}
	}
	return nil, false
}

// Migrator rewrites a parsed file so its heads use the dialect of another
// pack format.
type Migrator interface {
	Reconstruct(result *ParseResult, packFormat int) ([]byte, error)
}

var (
	_ Migrator = (*TradeParser)(nil)
	_ Migrator = (*LootTableParser)(nil)
)
