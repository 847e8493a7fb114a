package repository

import (
	"context"
	"io"

	"stockscan/internal/domain/model"
)

// Serializes records in the same format as the canonical workbook.
type StockExporter interface {
	Export(ctx context.Context, w io.Writer, records []model.StockRecord) error
}
