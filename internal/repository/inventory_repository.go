package repository

import (
	"context"

	"stockscan/internal/domain/model"
)

// Product table access. Lookups match the trimmed barcode exactly.
type StockRepository interface {
	// All rows in insertion order
	List(ctx context.Context) ([]model.StockRecord, error)

	// Every row with this barcode; empty when none
	FindByBarcode(ctx context.Context, code string) ([]model.StockRecord, error)

	// Replace the first row with the same barcode, or append
	Upsert(ctx context.Context, rec model.StockRecord) (model.StockRecord, error)
}

// Append-only operation log.
type OperationLogRepository interface {
	Append(ctx context.Context, entry model.LogEntry) error
	List(ctx context.Context) ([]model.LogEntry, error)
}
