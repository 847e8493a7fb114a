package model

// StockTable is the in-memory product table. Row order is insertion order.
type StockTable struct {
	records []StockRecord
}

// NewStockTable copies records into a table and recomputes every balance.
func NewStockTable(records []StockRecord) *StockTable {
	t := &StockTable{records: make([]StockRecord, 0, len(records))}
	for _, r := range records {
		r.Recompute()
		t.records = append(t.records, r)
	}
	return t
}

func (t *StockTable) Len() int {
	return len(t.records)
}

// Records returns a copy of all rows.
func (t *StockTable) Records() []StockRecord {
	out := make([]StockRecord, len(t.records))
	copy(out, t.records)
	return out
}

func (t *StockTable) At(i int) StockRecord {
	return t.records[i]
}

// FindByBarcode returns every row whose barcode equals code. The caller trims code.
func (t *StockTable) FindByBarcode(code string) []StockRecord {
	var out []StockRecord
	for _, r := range t.records {
		if r.Barcode == code {
			out = append(out, r)
		}
	}
	return out
}

// IndexOf returns the first row index for code, or -1.
func (t *StockTable) IndexOf(code string) int {
	for i, r := range t.records {
		if r.Barcode == code {
			return i
		}
	}
	return -1
}

// Upsert replaces the first row with the same barcode, or appends.
func (t *StockTable) Upsert(rec StockRecord) (int, bool) {
	rec.Recompute()
	if i := t.IndexOf(rec.Barcode); i >= 0 {
		t.records[i] = rec
		return i, false
	}
	t.records = append(t.records, rec)
	return len(t.records) - 1, true
}

func (t *StockTable) Clone() *StockTable {
	return &StockTable{records: t.Records()}
}

// Filter keeps rows matching every non-empty field of f.
func (t *StockTable) Filter(f Filter) []StockRecord {
	out := make([]StockRecord, 0, len(t.records))
	for _, r := range t.records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Locations lists distinct non-empty locations in first-seen order.
func (t *StockTable) Locations() []string {
	return distinct(t.records, func(r StockRecord) string { return r.Location })
}

// Units lists distinct non-empty units in first-seen order.
func (t *StockTable) Units() []string {
	return distinct(t.records, func(r StockRecord) string { return r.Unit })
}

func distinct(records []StockRecord, key func(StockRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Filter narrows the table by location and unit. Empty fields match all.
type Filter struct {
	Location string `json:"location,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

func (f Filter) IsZero() bool {
	return f.Location == "" && f.Unit == ""
}

func (f Filter) Match(r StockRecord) bool {
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if f.Unit != "" && r.Unit != f.Unit {
		return false
	}
	return true
}
