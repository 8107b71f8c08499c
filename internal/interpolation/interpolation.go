// Package interpolation swaps the variable parts of trade commands for
// placeholders, so commands can be stored as templates and re-emitted at a
// new position.
package interpolation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Placeholders understood by Expand.
const (
	IndexPlaceholder    = "IDX"
	HeadPlaceholder     = "HEAD_SPEC"
	CostItemPlaceholder = "COST_ITEM"
	CostQtyPlaceholder  = "COST_QTY"
	LimitPlaceholder    = "PURCHASE_LIMIT"
	XPPlaceholder       = "XP_BONUS"
)

// Mapping records what Protect replaced.
type Mapping struct {
	Original string
	// Offset is the byte offset of IndexPlaceholder in the template.
	Offset int
	// Index is the numeric trade index that was removed.
	Index int
}

// tradeIndex captures the trade slot a command is guarded by.
var tradeIndex = regexp.MustCompile(`wt_tradeIndex matches ([0-9]+) run`)

// Protect replaces the trade index of command with IndexPlaceholder. It
// reports false when command is not guarded by a trade index.
func Protect(command string) (string, Mapping, bool) {
	loc := tradeIndex.FindStringSubmatchIndex(command)
	if loc == nil {
		return command, Mapping{}, false
	}
	original := command[loc[2]:loc[3]]
	n, err := strconv.Atoi(original)
	if err != nil {
		return command, Mapping{}, false
	}
	template := command[:loc[2]] + IndexPlaceholder + command[loc[3]:]
	return template, Mapping{Original: original, Offset: loc[2], Index: n}, true
}

// FillIndex places trade index n at offset at of a template produced by
// Protect. Text elsewhere that happens to read IDX is left alone. A template
// without the placeholder at that offset is returned unchanged.
func FillIndex(template string, at, n int) string {
	end := at + len(IndexPlaceholder)
	if at < 0 || end > len(template) || template[at:end] != IndexPlaceholder {
		return template
	}
	return template[:at] + strconv.Itoa(n) + template[end:]
}

// Expand substitutes every placeholder in values. Longer placeholders are
// replaced first so that none is clobbered by a shorter one it contains.
func Expand(template string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, values[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
