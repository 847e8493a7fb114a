package repository

import (
	"context"
	"time"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OperationLogRow is the database copy of a committed LogEntry.
type OperationLogRow struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	LoggedAt    time.Time       `gorm:"not null;index"`
	Barcode     string          `gorm:"type:varchar(255);not null;index"`
	Description string          `gorm:"type:text"`
	Operation   string          `gorm:"type:varchar(20);not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null"`
	Source      string          `gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime"`
}

func (OperationLogRow) TableName() string { return "operation_logs" }

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditMirror {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Record(ctx context.Context, entry model.LogEntry, source string) error {
	row := OperationLogRow{
		LoggedAt:    entry.Timestamp,
		Barcode:     entry.Barcode,
		Description: entry.Description,
		Operation:   string(entry.Operation),
		Quantity:    entry.Quantity,
		Source:      source,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	return nil
}
