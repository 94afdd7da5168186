// Package config loads mandos configuration from the environment and sets
// up logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB hit cache connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// External annotation databases
	ChemblBaseURL  string
	PubchemBaseURL string

	// Per-client REST record cache capacity
	SearchCacheSize int

	// Matrix calculation workers; 0 means one per CPU
	Workers int

	// Suffix for generated hit tables
	TableSuffix string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "mandos"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "hits"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		ChemblBaseURL:  getEnv("MANDOS_CHEMBL_URL", "https://www.ebi.ac.uk/chembl/api/data"),
		PubchemBaseURL: getEnv("MANDOS_PUBCHEM_URL", "https://pubchem.ncbi.nlm.nih.gov/rest/pug"),

		SearchCacheSize: getEnvInt("MANDOS_SEARCH_CACHE_SIZE", 512),
		Workers:         getEnvInt("MANDOS_WORKERS", 0),

		TableSuffix: getEnv("MANDOS_TABLE_SUFFIX", ".tsv"),

		LogFile:  getEnv("MANDOS_LOG_FILE", "/tmp/mandos.log"),
		LogLevel: parseLogLevel(getEnv("MANDOS_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
