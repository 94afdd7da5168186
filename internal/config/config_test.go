package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, "mandos", cfg.SurrealDBNamespace)
	assert.Equal(t, ".tsv", cfg.TableSuffix)
	assert.Equal(t, 512, cfg.SearchCacheSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MANDOS_CHEMBL_URL", "http://localhost:9000")
	t.Setenv("MANDOS_WORKERS", "4")
	t.Setenv("MANDOS_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "http://localhost:9000", cfg.ChemblBaseURL)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("MANDOS_WORKERS", "many")
	cfg := Load()
	assert.Equal(t, 0, cfg.Workers)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("computing matrix", "compounds", 3)

	assert.Contains(t, stderr.String(), "computing matrix")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "computing matrix", entry["msg"])
	assert.EqualValues(t, 3, entry["compounds"])
}
