package repository

import (
	"context"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"
)

// txState holds the staged copies a transaction works on.
type txState struct {
	stock *model.StockTable
	log   model.OperationLog
}

func (s *txState) Stocks() repo.StockRepository      { return &stagedStocks{s: s} }
func (s *txState) Logs() repo.OperationLogRepository { return &stagedLogs{s: s} }

type stagedStocks struct{ s *txState }

func (r *stagedStocks) List(ctx context.Context) ([]model.StockRecord, error) {
	return r.s.stock.Records(), nil
}

func (r *stagedStocks) FindByBarcode(ctx context.Context, code string) ([]model.StockRecord, error) {
	return r.s.stock.FindByBarcode(code), nil
}

func (r *stagedStocks) Upsert(ctx context.Context, rec model.StockRecord) (model.StockRecord, error) {
	i, _ := r.s.stock.Upsert(rec)
	return r.s.stock.At(i), nil
}

type stagedLogs struct{ s *txState }

func (r *stagedLogs) Append(ctx context.Context, entry model.LogEntry) error {
	r.s.log = r.s.log.Append(entry)
	return nil
}

func (r *stagedLogs) List(ctx context.Context) ([]model.LogEntry, error) {
	return r.s.log.Entries(), nil
}

// live views read committed state; writes go through a one-shot transaction

type liveStocks struct{ w *Workbook }

func (r *liveStocks) List(ctx context.Context) ([]model.StockRecord, error) {
	r.w.mu.RLock()
	defer r.w.mu.RUnlock()
	return r.w.stock.Records(), nil
}

func (r *liveStocks) FindByBarcode(ctx context.Context, code string) ([]model.StockRecord, error) {
	r.w.mu.RLock()
	defer r.w.mu.RUnlock()
	return r.w.stock.FindByBarcode(code), nil
}

func (r *liveStocks) Upsert(ctx context.Context, rec model.StockRecord) (model.StockRecord, error) {
	var out model.StockRecord
	err := r.w.WithinTx(ctx, func(tx repo.TxRepos) error {
		var err error
		out, err = tx.Stocks().Upsert(ctx, rec)
		return err
	})
	return out, err
}

type liveLogs struct{ w *Workbook }

func (r *liveLogs) Append(ctx context.Context, entry model.LogEntry) error {
	return r.w.WithinTx(ctx, func(tx repo.TxRepos) error {
		return tx.Logs().Append(ctx, entry)
	})
}

func (r *liveLogs) List(ctx context.Context) ([]model.LogEntry, error) {
	r.w.mu.RLock()
	defer r.w.mu.RUnlock()
	return r.w.log.Entries(), nil
}
