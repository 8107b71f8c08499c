package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"head-hunter/internal/dialect"
	"head-hunter/internal/head"
	"head-hunter/internal/interpolation"
)

// Trade command templates. The guard line selects the trade slot, the rest
// appends the offer.
const (
	legacyTradeTemplate = `execute if score @s wt_tradeIndex matches IDX run data modify storage wandering_trades:trades Offers append value {buy:{id:COST_ITEM,Count:COST_QTYb},buyB:{id:"minecraft:air",Count:1b},sell:{id:"minecraft:player_head",Count:1b,HEAD_SPEC},maxUses:PURCHASE_LIMIT,xp:XP_BONUS,rewardExp:0b}`
	modernTradeTemplate = `execute if score @s wt_tradeIndex matches IDX run data modify storage wandering_trades:trades Offers append value {buy:{id:COST_ITEM,count:COST_QTY},buyB:{id:"minecraft:air",count:1},sell:{id:"minecraft:player_head",count:1,HEAD_SPEC},maxUses:PURCHASE_LIMIT,xp:XP_BONUS,rewardExp:false}`
)

// Default trade slots: head trades start right after the built-in ones and
// block trades are kept well clear of them.
const (
	DefaultHeadTradeStart  = 2
	DefaultBlockTradeStart = 1002
)

// TradeWriter renders trade commands for a target pack format.
type TradeWriter struct {
	PackFormat    int
	CostItem      string
	CostQty       int
	PurchaseLimit int
	XPBonus       int
}

// NewTradeWriter returns a writer pricing every head at one emerald, three
// per trader, with no experience reward.
func NewTradeWriter(packFormat int) *TradeWriter {
	return &TradeWriter{
		PackFormat:    packFormat,
		CostItem:      `"minecraft:emerald"`,
		CostQty:       1,
		PurchaseLimit: 3,
		XPBonus:       0,
	}
}

// WriteHeadTrades writes one trade command per head, numbering trade slots
// from startAt. It returns the inclusive slot bounds; last < first means
// nothing was written.
func (tw *TradeWriter) WriteHeadTrades(w io.Writer, heads []head.Spec, startAt int) (first, last int, err error) {
	d, err := dialect.ForPackFormat(tw.PackFormat)
	if err != nil {
		return 0, 0, err
	}
	template := legacyTradeTemplate
	if _, modern := d.(dialect.Modern); modern {
		template = modernTradeTemplate
	}

	bw := bufio.NewWriter(w)
	idx := startAt - 1
	for i, s := range heads {
		payload, err := ItemPayload(s, d)
		if err != nil {
			return 0, 0, fmt.Errorf("render head %d: %w", i, err)
		}
		idx++
		line := interpolation.Expand(template, map[string]string{
			interpolation.IndexPlaceholder:    strconv.Itoa(idx),
			interpolation.HeadPlaceholder:     payload,
			interpolation.CostItemPlaceholder: tw.CostItem,
			interpolation.CostQtyPlaceholder:  strconv.Itoa(tw.CostQty),
			interpolation.LimitPlaceholder:    strconv.Itoa(tw.PurchaseLimit),
			interpolation.XPPlaceholder:       strconv.Itoa(tw.XPBonus),
		})
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return 0, 0, fmt.Errorf("write head trade: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, 0, fmt.Errorf("flush head trades: %w", err)
	}
	return startAt, idx, nil
}

// WriteBlockTrades re-emits block-sale templates in order, numbering trade
// slots from startAt.
func WriteBlockTrades(w io.Writer, sales []BlockSale, startAt int) (first, last int, err error) {
	bw := bufio.NewWriter(w)
	idx := startAt - 1
	for _, sale := range sales {
		idx++
		if _, err := fmt.Fprintln(bw, interpolation.FillIndex(sale.Template, sale.IndexAt, idx)); err != nil {
			return 0, 0, fmt.Errorf("write block trade: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, 0, fmt.Errorf("flush block trades: %w", err)
	}
	return startAt, idx, nil
}
