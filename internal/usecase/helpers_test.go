package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stockscan/internal/domain/model"
	infraRepo "stockscan/internal/infra/repository"
	repo "stockscan/internal/repository"
	"stockscan/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 1, 9, 30, 15, 500, time.Local)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nd(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(dec(v)) }

func newWorkbook(t *testing.T) *infraRepo.Workbook {
	t.Helper()
	w, err := infraRepo.OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"), infraRepo.WorkbookOptions{})
	require.NoError(t, err)
	return w
}

func seed(t *testing.T, src repo.Source, records ...model.StockRecord) {
	t.Helper()
	err := src.WithinTx(context.Background(), func(r repo.TxRepos) error {
		for _, rec := range records {
			if _, err := r.Stocks().Upsert(context.Background(), rec); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func newEngine(src repo.Source, mirror repo.AuditMirror) *usecase.InventoryUsecase {
	return usecase.NewInventoryUsecase(src, usecase.NewTxGuard(), mirror, fixedClock{t: testNow}, nil)
}

// =====================
// Mocks
// =====================

type AuditMirrorMock struct{ mock.Mock }

func (m *AuditMirrorMock) Record(ctx context.Context, entry model.LogEntry, source string) error {
	args := m.Called(ctx, entry, source)
	return args.Error(0)
}

type StockRepoMock struct{ mock.Mock }

func (m *StockRepoMock) List(ctx context.Context) ([]model.StockRecord, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.StockRecord)
	return items, args.Error(1)
}

func (m *StockRepoMock) FindByBarcode(ctx context.Context, code string) ([]model.StockRecord, error) {
	args := m.Called(ctx, code)
	items, _ := args.Get(0).([]model.StockRecord)
	return items, args.Error(1)
}

func (m *StockRepoMock) Upsert(ctx context.Context, rec model.StockRecord) (model.StockRecord, error) {
	panic("not used in InventoryUsecase tests")
}

type SourceMock struct {
	mock.Mock
	stocks *StockRepoMock
}

func (m *SourceMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *SourceMock) Stocks() repo.StockRepository { return m.stocks }

func (m *SourceMock) Logs() repo.OperationLogRepository {
	panic("not used in InventoryUsecase tests")
}

func (m *SourceMock) ReadOnly() bool { return false }
func (m *SourceMock) Name() string   { return "mock.xlsx" }

type DecoderMock struct{ mock.Mock }

func (m *DecoderMock) Decode(ctx context.Context, frame []byte) ([]string, error) {
	args := m.Called(ctx, frame)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

type DebouncerMock struct{ mock.Mock }

func (m *DebouncerMock) Allow(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
