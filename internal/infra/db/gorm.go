package db

import (
	"fmt"

	infraRepo "stockscan/internal/infra/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the audit mirror database and migrates its table.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := gdb.AutoMigrate(&infraRepo.OperationLogRow{}); err != nil {
		return nil, fmt.Errorf("migrate operation_logs: %w", err)
	}
	return gdb, nil
}
