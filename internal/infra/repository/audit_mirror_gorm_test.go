package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"stockscan/internal/domain/model"
	"stockscan/internal/infra/db"
	infraRepo "stockscan/internal/infra/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// needs a reachable postgres; skipped otherwise
func TestAuditLogGormRepository_Record(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gdb, err := db.Connect(dsn)
	require.NoError(t, err)

	barcode := "audit-" + time.Now().Format("150405.000000")
	mirror := infraRepo.NewAuditLogGormRepository(gdb)
	err = mirror.Record(context.Background(), model.LogEntry{
		Timestamp:   time.Now().Truncate(time.Second),
		Barcode:     barcode,
		Description: "Widget",
		Operation:   model.OperationOut,
		Quantity:    decimal.RequireFromString("2.5"),
	}, "stock.xlsx")
	require.NoError(t, err)

	var row infraRepo.OperationLogRow
	require.NoError(t, gdb.Where("barcode = ?", barcode).First(&row).Error)
	assert.Equal(t, "OUT", row.Operation)
	assert.Equal(t, "stock.xlsx", row.Source)
	assert.True(t, row.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "operation_logs", row.TableName())
}
