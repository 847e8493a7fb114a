package repository

import (
	"context"
	"fmt"
	"io"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"
)

// XLSXExporter renders records with the same sheet writer as the workbook.
type XLSXExporter struct {
	sheet string
}

func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = DefaultStockSheet
	}
	return &XLSXExporter{sheet: sheet}
}

func (e *XLSXExporter) Export(ctx context.Context, w io.Writer, records []model.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := newSheetFile(e.sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeStockSheet(f, e.sheet, records); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

var _ repo.StockExporter = (*XLSXExporter)(nil)
