package usecase

import (
	"bytes"
	"context"
	"fmt"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"

	"golang.org/x/sync/singleflight"
)

const (
	ExportAllName      = "all_warehouse_data.xlsx"
	ExportFilteredName = "filtered_warehouse_data.xlsx"
)

type SourceProvider interface {
	Source() repo.Source
}

type FilterOptions struct {
	Locations []string `json:"locations"`
	Units     []string `json:"units"`
}

type ExportFile struct {
	Name string
	Data []byte
}

// ReportUsecase serves read-only views of the current source.
type ReportUsecase struct {
	sources  SourceProvider
	exporter repo.StockExporter
	group    singleflight.Group
}

func NewReportUsecase(sources SourceProvider, exporter repo.StockExporter) *ReportUsecase {
	return &ReportUsecase{sources: sources, exporter: exporter}
}

func (u *ReportUsecase) table(ctx context.Context) (*model.StockTable, error) {
	records, err := u.sources.Source().Stocks().List(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewStockTable(records), nil
}

func (u *ReportUsecase) List(ctx context.Context, f model.Filter) ([]model.StockRecord, error) {
	t, err := u.table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Filter(f), nil
}

func (u *ReportUsecase) FilterOptions(ctx context.Context) (FilterOptions, error) {
	t, err := u.table(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	return FilterOptions{Locations: t.Locations(), Units: t.Units()}, nil
}

func (u *ReportUsecase) Summary(ctx context.Context, f model.Filter) (model.Summary, error) {
	records, err := u.List(ctx, f)
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summarize(records), nil
}

// Export renders the filtered table as xlsx. Identical concurrent requests
// share one render.
func (u *ReportUsecase) Export(ctx context.Context, f model.Filter) (ExportFile, error) {
	name := ExportAllName
	if !f.IsZero() {
		name = ExportFilteredName
	}

	src := u.sources.Source()
	key := fmt.Sprintf("%s\x00%s\x00%s", src.Name(), f.Location, f.Unit)
	v, err, _ := u.group.Do(key, func() (interface{}, error) {
		// detached so one caller's cancellation does not fail the others
		rctx := context.WithoutCancel(ctx)
		records, err := u.List(rctx, f)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := u.exporter.Export(rctx, &buf, records); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return ExportFile{}, fmt.Errorf("export: %w", err)
	}
	return ExportFile{Name: name, Data: v.([]byte)}, nil
}
