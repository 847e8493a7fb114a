package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockscan/internal/config"
	"stockscan/internal/debounce"
	"stockscan/internal/handler"
	"stockscan/internal/infra/db"
	"stockscan/internal/infra/decoder"
	infraRepo "stockscan/internal/infra/repository"
	"stockscan/internal/logging"
	repo "stockscan/internal/repository"
	"stockscan/internal/server"
	"stockscan/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	opts := infraRepo.WorkbookOptions{
		StockSheet: cfg.StockSheet,
		LogSheet:   cfg.LogSheet,
		Logger:     logger,
	}

	//Workbook（canonical）
	wb, err := infraRepo.OpenWorkbook(cfg.WorkbookPath, opts)
	if err != nil {
		return err
	}
	if err := wb.Recovered(); err != nil {
		logger.Warn("working on an empty table until the next commit", zap.Error(err))
	}

	//audit mirror (optional)
	var mirror repo.AuditMirror
	if cfg.DatabaseURL != "" {
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		mirror = infraRepo.NewAuditLogGormRepository(gdb)
	}

	debouncer, err := debounce.New(cfg.ScanDebounce)
	if err != nil {
		return err
	}

	//Usecase生成
	inventoryUC := usecase.NewInventoryUsecase(wb, usecase.NewTxGuard(), mirror, &realClock{}, logger)
	reportUC := usecase.NewReportUsecase(inventoryUC, infraRepo.NewXLSXExporter(cfg.StockSheet))
	scanUC := usecase.NewScanUsecase(decoder.NewTextDecoder(), debouncer, inventoryUC, logger)

	openSnapshot := func(r io.Reader, name string) (repo.Source, error) {
		snap, err := infraRepo.OpenSnapshot(r, name, opts)
		if err != nil {
			return nil, err
		}
		return snap, nil
	}

	//Handler生成
	e := server.New(logger,
		handler.NewSourceHandler(inventoryUC, wb, openSnapshot),
		handler.NewStockHandler(inventoryUC, reportUC),
		handler.NewMovementHandler(inventoryUC),
		handler.NewScanHandler(inventoryUC, scanUC),
		handler.NewLogHandler(inventoryUC),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), logger)
}
