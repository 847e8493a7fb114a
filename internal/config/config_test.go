package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STOCK_CONFIG_FILE", "PORT", "WORKBOOK_PATH", "STOCK_SHEET", "LOG_SHEET",
		"SCAN_DEBOUNCE", "DATABASE_URL", "LOG_LEVEL", "GO_ENV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Updated_Stock_Data.xlsx", cfg.WorkbookPath)
	assert.Equal(t, "Stock", cfg.StockSheet)
	assert.Equal(t, "Log", cfg.LogSheet)
	assert.Equal(t, 3*time.Second, cfg.ScanDebounce)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "stock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"9090\"\nworkbook_path: /data/wh.xlsx\nscan_debounce: 5s\nlog_sheet: Journal\n"), 0o600))

	t.Setenv("STOCK_CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/data/wh.xlsx", cfg.WorkbookPath)
	assert.Equal(t, "Journal", cfg.LogSheet)
	assert.Equal(t, 5*time.Second, cfg.ScanDebounce)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCK_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"port":         {"PORT", "http"},
		"debounce":     {"SCAN_DEBOUNCE", "soon"},
		"neg debounce": {"SCAN_DEBOUNCE", "-1s"},
		"same sheets":  {"LOG_SHEET", "Stock"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
