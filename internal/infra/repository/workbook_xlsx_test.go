package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// writeFixture builds an xlsx file from raw rows per sheet, in order.
func writeFixture(t *testing.T, path string, sheets []rawSheet) {
	t.Helper()
	f, err := newSheetFile(sheets[0].name)
	require.NoError(t, err)
	defer f.Close()
	for i, s := range sheets {
		if i > 0 {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		require.NoError(t, writeRawSheet(f, s))
	}
	require.NoError(t, f.SaveAs(path))
}

func commit(t *testing.T, w *Workbook, rec model.StockRecord, entry model.LogEntry) {
	t.Helper()
	err := w.WithinTx(context.Background(), func(r repo.TxRepos) error {
		if _, err := r.Stocks().Upsert(context.Background(), rec); err != nil {
			return err
		}
		return r.Logs().Append(context.Background(), entry)
	})
	require.NoError(t, err)
}

func TestOpenWorkbook_MissingFileCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	assert.NoError(t, w.Recovered())
	assert.Equal(t, "stock.xlsx", w.Name())
	assert.False(t, w.ReadOnly())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{DefaultStockSheet, DefaultLogSheet}, f.GetSheetList())

	head, err := f.GetRows(DefaultStockSheet)
	require.NoError(t, err)
	require.Len(t, head, 1)
	assert.Equal(t, append(append([]string{}, model.StockColumns...), model.ColCurrentBalance), head[0])

	logHead, err := f.GetRows(DefaultLogSheet)
	require.NoError(t, err)
	require.Len(t, logHead, 1)
	assert.Equal(t, model.LogColumns, logHead[0])
}

func TestOpenWorkbook_CoercesNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeFixture(t, path, []rawSheet{{
		name: "Stock",
		rows: [][]string{
			{" Stock Code ", "Description", "code num", "in", "out", "Unit", "Qty", "LOCATION", "current_balance"},
			{"SC1", "Widget", " 123 ", "5", "abc", "pcs", "", "A1", "999"},
			{},
			{"SC2", "Gadget", "456", "1.5", "0.5", "box", "3", "B2", ""},
		},
	}})

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)

	records, err := w.Stocks().List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "123", first.Barcode)
	assert.True(t, first.QuantityIn.Valid)
	assert.False(t, first.QuantityOut.Valid)
	assert.False(t, first.Qty.Valid)
	assert.True(t, first.CurrentBalance.Equal(decimal.NewFromInt(5)), "stored current_balance is ignored")

	assert.True(t, records[1].CurrentBalance.Equal(decimal.NewFromInt(1)))

	// the log sheet was missing and has been added
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), DefaultLogSheet)
}

func TestWorkbook_PersistIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)

	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	commit(t, w, model.StockRecord{
		StockCode: "SC1", Description: "Widget", Barcode: "123",
		QuantityIn: nd("0"), QuantityOut: nd("0"), Unit: "pcs", Qty: nd("10"), Location: "A1",
	}, model.LogEntry{Timestamp: ts, Barcode: "123", Description: "Widget", Operation: model.OperationCreate, Quantity: decimal.NewFromInt(10)})

	first, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	require.NoError(t, first.persist(first.stock, first.log))
	second, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	r1, _ := first.Stocks().List(ctx)
	r2, _ := second.Stocks().List(ctx)
	if diff := cmp.Diff(r1, r2, decimalEqual); diff != "" {
		t.Fatalf("records changed across save/load (-first +second):\n%s", diff)
	}
	l1, _ := first.Logs().List(ctx)
	l2, _ := second.Logs().List(ctx)
	if diff := cmp.Diff(l1, l2, decimalEqual); diff != "" {
		t.Fatalf("log changed across save/load (-first +second):\n%s", diff)
	}

	require.Len(t, l2, 1)
	assert.True(t, l2[0].Timestamp.Equal(ts))
	assert.Equal(t, model.OperationCreate, l2[0].Operation)
}

func TestWorkbook_CommitKeepsBothSectionsAndForeignSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeFixture(t, path, []rawSheet{
		{name: "Stock", rows: [][]string{
			{"Stock Code", "Description", "code num", "in", "out", "Unit", "Qty", "LOCATION"},
			{"SC1", "Widget", "123", "5", "2", "pcs", "3", "A1"},
		}},
		{name: "Log", rows: [][]string{
			{"timestamp", "code num", "Description", "operation", "quantity"},
			{"2024-01-01 08:00:00", "123", "Widget", "IN", "5"},
		}},
		{name: "Notes", rows: [][]string{{"keep me"}}},
	})

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)

	commit(t, w, model.StockRecord{Barcode: "456", Description: "Gadget"},
		model.LogEntry{Timestamp: time.Now(), Barcode: "456", Description: "Gadget", Operation: model.OperationCreate})

	reopened, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	records, _ := reopened.Stocks().List(context.Background())
	entries, _ := reopened.Logs().List(context.Background())
	assert.Len(t, records, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, model.OperationIn, entries[0].Operation)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Stock", "Log", "Notes"}, f.GetSheetList())
	v, err := f.GetCellValue("Notes", "A1")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)
}

func TestOpenWorkbook_StockOnFirstForeignSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeFixture(t, path, []rawSheet{{
		name: "Sheet1",
		rows: [][]string{
			{"Stock Code", "Description", "code num", "in", "out", "Unit", "Qty", "LOCATION"},
			{"SC1", "Widget", "123", "1", "", "pcs", "1", "A1"},
		},
	}})

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	found, _ := w.Stocks().FindByBarcode(context.Background(), "123")
	require.Len(t, found, 1)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1", DefaultLogSheet}, f.GetSheetList())
}

func TestOpenWorkbook_UnreadableFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	assert.True(t, errors.Is(w.Recovered(), repo.ErrStorageUnavailable))

	records, _ := w.Stocks().List(context.Background())
	assert.Empty(t, records)

	// the corrupt file is left alone until something is committed
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not a zip", string(raw))

	commit(t, w, model.StockRecord{Barcode: "1"}, model.LogEntry{Barcode: "1", Operation: model.OperationCreate})
	assert.NoError(t, w.Recovered())

	reopened, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	assert.NoError(t, reopened.Recovered())
}

func TestWorkbook_PersistFailureLeavesStateUntouched(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "stock.xlsx")

	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	commit(t, w, model.StockRecord{Barcode: "1", QuantityIn: nd("5")}, model.LogEntry{Barcode: "1", Operation: model.OperationCreate})

	require.NoError(t, os.RemoveAll(dir))

	err = w.WithinTx(context.Background(), func(r repo.TxRepos) error {
		found, _ := r.Stocks().FindByBarcode(context.Background(), "1")
		if _, err := r.Stocks().Upsert(context.Background(), found[0].AddMovement(model.OperationOut, decimal.NewFromInt(2))); err != nil {
			return err
		}
		return r.Logs().Append(context.Background(), model.LogEntry{Barcode: "1", Operation: model.OperationOut})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repo.ErrPersistFailure))

	records, _ := w.Stocks().List(context.Background())
	entries, _ := w.Logs().List(context.Background())
	require.Len(t, records, 1)
	assert.False(t, records[0].QuantityOut.Valid)
	assert.Len(t, entries, 1)
}

func TestWorkbook_FnErrorRollsBack(t *testing.T) {
	w, err := OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"), WorkbookOptions{})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = w.WithinTx(context.Background(), func(r repo.TxRepos) error {
		_, _ = r.Stocks().Upsert(context.Background(), model.StockRecord{Barcode: "1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, _ := w.Stocks().List(context.Background())
	assert.Empty(t, records)
}

func TestWorkbook_LiveWritesCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	w, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	rec, err := w.Stocks().Upsert(ctx, model.StockRecord{Barcode: "9", QuantityIn: nd("3")})
	require.NoError(t, err)
	assert.True(t, rec.CurrentBalance.Equal(decimal.NewFromInt(3)))
	require.NoError(t, w.Logs().Append(ctx, model.LogEntry{Barcode: "9", Operation: model.OperationIn}))

	reopened, err := OpenWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	records, _ := reopened.Stocks().List(ctx)
	entries, _ := reopened.Logs().List(ctx)
	assert.Len(t, records, 1)
	assert.Len(t, entries, 1)
}

func TestOpenSnapshot_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeFixture(t, path, []rawSheet{{
		name: "Stock",
		rows: [][]string{
			{"Stock Code", "Description", "code num", "in", "out", "Unit", "Qty", "LOCATION"},
			{"SC1", "Widget", "123", "1", "", "pcs", "1", "A1"},
		},
	}})
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	snap, err := OpenSnapshot(bytes.NewReader(raw), "upload.xlsx", WorkbookOptions{})
	require.NoError(t, err)
	assert.True(t, snap.ReadOnly())
	assert.Equal(t, "upload.xlsx", snap.Name())

	commit(t, snap, model.StockRecord{Barcode: "456"}, model.LogEntry{Barcode: "456", Operation: model.OperationCreate})
	records, _ := snap.Stocks().List(context.Background())
	assert.Len(t, records, 2)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}

func TestOpenSnapshot_Invalid(t *testing.T) {
	_, err := OpenSnapshot(bytes.NewReader([]byte("garbage")), "x.xlsx", WorkbookOptions{})
	assert.ErrorIs(t, err, repo.ErrStorageUnavailable)
}

func TestXLSXExporter_Readable(t *testing.T) {
	var buf bytes.Buffer
	records := []model.StockRecord{
		{StockCode: "SC1", Description: "Widget", Barcode: "123", QuantityIn: nd("5"), QuantityOut: nd("2"), Unit: "pcs", Qty: nd("3"), Location: "A1"},
	}
	require.NoError(t, NewXLSXExporter("").Export(context.Background(), &buf, records))

	snap, err := OpenSnapshot(&buf, "export.xlsx", WorkbookOptions{})
	require.NoError(t, err)
	got, _ := snap.Stocks().List(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "123", got[0].Barcode)
	assert.Equal(t, "A1", got[0].Location)
	assert.True(t, got[0].CurrentBalance.Equal(decimal.NewFromInt(3)))
}
