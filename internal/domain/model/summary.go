package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopItemsLimit is how many rows Summary.TopByQty keeps.
const TopItemsLimit = 10

// QtyGroup is the summed Qty of one location or unit.
type QtyGroup struct {
	Key string          `json:"key"`
	Qty decimal.Decimal `json:"qty"`
}

type TopItem struct {
	Description string              `json:"description"`
	Qty         decimal.NullDecimal `json:"qty"`
}

// Summary aggregates a (possibly filtered) set of records.
type Summary struct {
	Products      int             `json:"products"`
	Locations     int             `json:"locations"`
	Units         int             `json:"units"`
	TotalIn       decimal.Decimal `json:"total_in"`
	TotalOut      decimal.Decimal `json:"total_out"`
	TotalQty      decimal.Decimal `json:"total_qty"`
	QtyByLocation []QtyGroup      `json:"qty_by_location"`
	QtyByUnit     []QtyGroup      `json:"qty_by_unit"`
	TopByQty      []TopItem       `json:"top_by_qty"`
}

// Summarize computes totals, groupings and the top items by Qty.
// Missing numeric values are skipped in sums; rows with an empty
// location or unit are left out of that grouping.
func Summarize(records []StockRecord) Summary {
	s := Summary{
		Products: len(records),
		TotalIn:  decimal.Zero,
		TotalOut: decimal.Zero,
		TotalQty: decimal.Zero,
	}

	t := &StockTable{records: records}
	s.Locations = len(t.Locations())
	s.Units = len(t.Units())

	byLocation := make(map[string]decimal.Decimal)
	byUnit := make(map[string]decimal.Decimal)
	for _, r := range records {
		s.TotalIn = s.TotalIn.Add(valueOrZero(r.QuantityIn))
		s.TotalOut = s.TotalOut.Add(valueOrZero(r.QuantityOut))
		s.TotalQty = s.TotalQty.Add(valueOrZero(r.Qty))
		if r.Location != "" {
			byLocation[r.Location] = byLocation[r.Location].Add(valueOrZero(r.Qty))
		}
		if r.Unit != "" {
			byUnit[r.Unit] = byUnit[r.Unit].Add(valueOrZero(r.Qty))
		}
	}
	s.QtyByLocation = sortedGroups(byLocation)
	s.QtyByUnit = sortedGroups(byUnit)
	s.TopByQty = topByQty(records, TopItemsLimit)
	return s
}

func sortedGroups(m map[string]decimal.Decimal) []QtyGroup {
	out := make([]QtyGroup, 0, len(m))
	for k, v := range m {
		out = append(out, QtyGroup{Key: k, Qty: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// missing Qty sorts last; ties keep table order
func topByQty(records []StockRecord, n int) []TopItem {
	sorted := make([]StockRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Qty, sorted[j].Qty
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return a.Decimal.GreaterThan(b.Decimal)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]TopItem, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, TopItem{Description: r.Description, Qty: r.Qty})
	}
	return out
}
