package main

import (
	"fmt"
	"os"
	"time"

	"stockscan/internal/config"
	"stockscan/internal/infra/db"
	infraRepo "stockscan/internal/infra/repository"
	"stockscan/internal/logging"
	repo "stockscan/internal/repository"
	"stockscan/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// app is what every subcommand works against; filled by PersistentPreRunE.
type app struct {
	workbookPath string
	verbose      bool

	logger    *zap.Logger
	inventory *usecase.InventoryUsecase
	reports   *usecase.ReportUsecase
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Inspect and update the warehouse stock workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.workbookPath, "workbook", "w", "", "Workbook path (default: WORKBOOK_PATH)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSummaryCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newLogCmd(a),
		newMoveCmd(a),
		newCreateCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.workbookPath != "" {
		cfg.WorkbookPath = a.workbookPath
	}

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	// CLI output goes to stdout; logs stay on stderr at warn unless asked
	if !a.verbose && level == "info" {
		level = "warn"
	}
	a.logger, err = logging.New(level, cfg.GoEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	wb, err := infraRepo.OpenWorkbook(cfg.WorkbookPath, infraRepo.WorkbookOptions{
		StockSheet: cfg.StockSheet,
		LogSheet:   cfg.LogSheet,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	if err := wb.Recovered(); err != nil {
		a.logger.Warn("workbook could not be read, starting from an empty table", zap.Error(err))
	}

	var mirror repo.AuditMirror
	if cfg.DatabaseURL != "" {
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		mirror = infraRepo.NewAuditLogGormRepository(gdb)
	}

	a.inventory = usecase.NewInventoryUsecase(wb, usecase.NewTxGuard(), mirror, &realClock{}, a.logger)
	a.reports = usecase.NewReportUsecase(a.inventory, infraRepo.NewXLSXExporter(cfg.StockSheet))
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
