package repository

import (
	"fmt"
	"strings"
	"time"

	"stockscan/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// rawSheet keeps a sheet this package does not own, so it survives a rewrite.
type rawSheet struct {
	name string
	rows [][]string
}

// header positions keyed by trimmed lower-case column name
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		// first occurrence wins on duplicate headers
		if _, ok := h[key]; !ok {
			h[key] = i
		}
	}
	return h
}

func (h header) cell(row []string, col string) string {
	i, ok := h[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber coerces a cell to a decimal; blank or non-numeric is missing.
func parseNumber(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func decodeStockRows(rows [][]string) []model.StockRecord {
	if len(rows) == 0 {
		return nil
	}
	h := newHeader(rows[0])
	out := make([]model.StockRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// current_balance is derived and never read back
		rec := model.StockRecord{
			StockCode:   h.cell(row, model.ColStockCode),
			Description: h.cell(row, model.ColDescription),
			Barcode:     h.cell(row, model.ColBarcode),
			QuantityIn:  parseNumber(h.cell(row, model.ColIn)),
			QuantityOut: parseNumber(h.cell(row, model.ColOut)),
			Unit:        h.cell(row, model.ColUnit),
			Qty:         parseNumber(h.cell(row, model.ColQty)),
			Location:    h.cell(row, model.ColLocation),
		}
		rec.Recompute()
		out = append(out, rec)
	}
	return out
}

func decodeLogRows(rows [][]string) []model.LogEntry {
	if len(rows) == 0 {
		return nil
	}
	h := newHeader(rows[0])
	out := make([]model.LogEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		e := model.LogEntry{
			Barcode:     h.cell(row, model.ColLogBarcode),
			Description: h.cell(row, model.ColLogDescription),
			Operation:   model.Operation(h.cell(row, model.ColLogOperation)),
		}
		if op, err := model.ParseOperation(string(e.Operation)); err == nil {
			e.Operation = op
		}
		if ts, err := time.ParseInLocation(model.LogTimeLayout, h.cell(row, model.ColLogTimestamp), time.Local); err == nil {
			e.Timestamp = ts
		}
		if q := parseNumber(h.cell(row, model.ColLogQuantity)); q.Valid {
			e.Quantity = q.Decimal
		}
		out = append(out, e)
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func numberCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func writeStockSheet(f *excelize.File, sheet string, records []model.StockRecord) error {
	head := make([]interface{}, 0, len(model.StockColumns)+1)
	for _, c := range model.StockColumns {
		head = append(head, c)
	}
	head = append(head, model.ColCurrentBalance)
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}

	for i, r := range records {
		row := []interface{}{
			r.StockCode,
			r.Description,
			r.Barcode,
			numberCell(r.QuantityIn),
			numberCell(r.QuantityOut),
			r.Unit,
			numberCell(r.Qty),
			r.Location,
			r.Balance().InexactFloat64(),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeLogSheet(f *excelize.File, sheet string, entries []model.LogEntry) error {
	head := make([]interface{}, 0, len(model.LogColumns))
	for _, c := range model.LogColumns {
		head = append(head, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}

	for i, e := range entries {
		row := []interface{}{
			e.Timestamp.Format(model.LogTimeLayout),
			e.Barcode,
			e.Description,
			string(e.Operation),
			e.Quantity.InexactFloat64(),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRawSheet(f *excelize.File, s rawSheet) error {
	for i, cells := range s.rows {
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		if err := setRow(f, s.name, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("sheet %q row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// newSheetFile returns an empty workbook whose only sheet is named first.
func newSheetFile(first string) (*excelize.File, error) {
	f := excelize.NewFile()
	def := f.GetSheetName(0)
	if def != first {
		if err := f.SetSheetName(def, first); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}
