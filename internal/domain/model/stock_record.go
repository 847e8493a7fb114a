package model

import "github.com/shopspring/decimal"

// Column headers of the stock sheet.
const (
	ColStockCode      = "Stock Code"
	ColDescription    = "Description"
	ColBarcode        = "code num"
	ColIn             = "in"
	ColOut            = "out"
	ColUnit           = "Unit"
	ColQty            = "Qty"
	ColLocation       = "LOCATION"
	ColCurrentBalance = "current_balance"
)

// StockColumns is the fixed schema of the stock sheet, in write order.
var StockColumns = []string{
	ColStockCode,
	ColDescription,
	ColBarcode,
	ColIn,
	ColOut,
	ColUnit,
	ColQty,
	ColLocation,
}

// StockRecord is one row of the product table.
// Numeric columns keep the raw "missing" state; arithmetic treats missing as 0.
type StockRecord struct {
	StockCode   string              `json:"stock_code"`
	Description string              `json:"description"`
	Barcode     string              `json:"barcode"`
	QuantityIn  decimal.NullDecimal `json:"in"`
	QuantityOut decimal.NullDecimal `json:"out"`
	Unit        string              `json:"unit"`
	Qty         decimal.NullDecimal `json:"qty"`
	Location    string              `json:"location"`

	// derived, never loaded from storage
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Balance is in - out with missing values counted as zero.
func (r StockRecord) Balance() decimal.Decimal {
	return valueOrZero(r.QuantityIn).Sub(valueOrZero(r.QuantityOut))
}

// Recompute refreshes CurrentBalance from the accumulators.
func (r *StockRecord) Recompute() {
	r.CurrentBalance = r.Balance()
}

// AddMovement returns a copy with qty added to the in or out accumulator.
func (r StockRecord) AddMovement(op Operation, qty decimal.Decimal) StockRecord {
	switch op {
	case OperationIn:
		r.QuantityIn = decimal.NewNullDecimal(valueOrZero(r.QuantityIn).Add(qty))
	case OperationOut:
		r.QuantityOut = decimal.NewNullDecimal(valueOrZero(r.QuantityOut).Add(qty))
	}
	r.Recompute()
	return r
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
