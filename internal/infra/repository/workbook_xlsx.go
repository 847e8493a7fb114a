package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	DefaultStockSheet = "Stock"
	DefaultLogSheet   = "Log"
)

type WorkbookOptions struct {
	StockSheet string
	LogSheet   string
	Logger     *zap.Logger
}

func (o WorkbookOptions) withDefaults() WorkbookOptions {
	if o.StockSheet == "" {
		o.StockSheet = DefaultStockSheet
	}
	if o.LogSheet == "" {
		o.LogSheet = DefaultLogSheet
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Workbook is an xlsx container holding the stock table and the operation log
// as two sheets. The in-memory state is the source of truth: every commit
// rewrites the whole file from memory and never reads it back first.
type Workbook struct {
	mu sync.RWMutex

	path     string
	name     string
	readOnly bool
	opts     WorkbookOptions
	logger   *zap.Logger

	stockSheet string
	stock      *model.StockTable
	log        model.OperationLog
	extras     []rawSheet

	// set when the file could not be read and an empty schema was used
	recovered error
}

// OpenWorkbook loads the canonical workbook at path. A missing file, or a
// file without one of the two sheets, is initialised with the fixed schema
// and written immediately. An unreadable file falls back to an empty
// in-memory schema; see Recovered.
func OpenWorkbook(path string, opts WorkbookOptions) (*Workbook, error) {
	opts = opts.withDefaults()
	w := &Workbook{
		path:       path,
		name:       filepath.Base(path),
		opts:       opts,
		logger:     opts.Logger.With(zap.String("workbook", path)),
		stockSheet: opts.StockSheet,
		stock:      model.NewStockTable(nil),
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		w.logger.Info("workbook not found, creating empty schema")
		if err := w.persist(w.stock, w.log); err != nil {
			return nil, err
		}
		return w, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		w.fallback(err)
		return w, nil
	}
	defer f.Close()

	missing, err := w.decode(f)
	if err != nil {
		w.fallback(err)
		return w, nil
	}
	if missing {
		w.logger.Info("initialising missing sheets")
		if err := w.persist(w.stock, w.log); err != nil {
			return nil, err
		}
	}

	w.logger.Info("workbook loaded",
		zap.String("stock_sheet", w.stockSheet),
		zap.Int("records", w.stock.Len()),
		zap.Int("log_entries", w.log.Len()))
	return w, nil
}

// OpenSnapshot loads an uploaded workbook as a read-only source.
// Commits against it are kept in memory and never written anywhere.
func OpenSnapshot(r io.Reader, name string, opts WorkbookOptions) (*Workbook, error) {
	opts = opts.withDefaults()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
	}
	defer f.Close()

	w := &Workbook{
		name:       name,
		readOnly:   true,
		opts:       opts,
		logger:     opts.Logger.With(zap.String("snapshot", name)),
		stockSheet: opts.StockSheet,
		stock:      model.NewStockTable(nil),
	}
	if _, err := w.decode(f); err != nil {
		return nil, fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
	}
	return w, nil
}

func (w *Workbook) fallback(err error) {
	w.recovered = fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
	w.stock = model.NewStockTable(nil)
	w.log = model.OperationLog{}
	w.extras = nil
	w.logger.Error("workbook unreadable, using empty schema", zap.Error(err))
}

// decode fills w from f and reports whether a sheet had to be created.
func (w *Workbook) decode(f *excelize.File) (bool, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return true, nil
	}

	stockSheet := ""
	hasLog := false
	for _, s := range sheets {
		switch s {
		case w.opts.StockSheet:
			stockSheet = s
		case w.opts.LogSheet:
			hasLog = true
		}
	}
	// files written by other tools keep their stock data on the first sheet
	if stockSheet == "" {
		for _, s := range sheets {
			if s != w.opts.LogSheet {
				stockSheet = s
				break
			}
		}
	}

	var extras []rawSheet
	for _, s := range sheets {
		rows, err := f.GetRows(s, excelize.Options{RawCellValue: true})
		if err != nil {
			return false, fmt.Errorf("read sheet %q: %w", s, err)
		}
		switch s {
		case stockSheet:
			w.stock = model.NewStockTable(decodeStockRows(rows))
		case w.opts.LogSheet:
			w.log = model.NewOperationLog(decodeLogRows(rows))
		default:
			extras = append(extras, rawSheet{name: s, rows: rows})
		}
	}

	if stockSheet != "" {
		w.stockSheet = stockSheet
	}
	w.extras = extras
	return stockSheet == "" || !hasLog, nil
}

// persist writes both sections and any foreign sheets to a temp file next to
// the target, then renames it into place.
func (w *Workbook) persist(stock *model.StockTable, log model.OperationLog) error {
	f, err := newSheetFile(w.stockSheet)
	if err != nil {
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	defer f.Close()

	if err := writeStockSheet(f, w.stockSheet, stock.Records()); err != nil {
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	if _, err := f.NewSheet(w.opts.LogSheet); err != nil {
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	if err := writeLogSheet(f, w.opts.LogSheet, log.Entries()); err != nil {
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	for _, s := range w.extras {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
		}
		if err := writeRawSheet(f, s); err != nil {
			return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
		}
	}
	f.SetActiveSheet(0)

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".stockscan-*.xlsx")
	if err != nil {
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	tmpName := tmp.Name()
	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", repo.ErrPersistFailure, err)
	}
	return nil
}

func (w *Workbook) Name() string   { return w.name }
func (w *Workbook) Path() string   { return w.path }
func (w *Workbook) ReadOnly() bool { return w.readOnly }

// Recovered returns ErrStorageUnavailable (wrapped) when the file could not
// be read at open time and nothing has been committed since.
func (w *Workbook) Recovered() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.recovered
}

func (w *Workbook) Stocks() repo.StockRepository      { return &liveStocks{w: w} }
func (w *Workbook) Logs() repo.OperationLogRepository { return &liveLogs{w: w} }

// WithinTx runs fn against staged copies of both sections. When fn succeeds
// the staged sections are written together (unless read-only) and then
// become the live state. On any error the live state is untouched.
func (w *Workbook) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	staged := &txState{stock: w.stock.Clone(), log: w.log}
	if err := fn(staged); err != nil {
		return err
	}

	if !w.readOnly {
		if err := w.persist(staged.stock, staged.log); err != nil {
			w.logger.Error("commit not saved", zap.Error(err))
			return err
		}
		w.recovered = nil
	}

	w.stock = staged.stock
	w.log = staged.log
	return nil
}

var _ repo.Source = (*Workbook)(nil)
