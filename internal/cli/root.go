// Package cli provides the command-line interface for mandos.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openssl-sg-insights/mandos/internal/config"
	"github.com/openssl-sg-insights/mandos/internal/metrics"
	"github.com/openssl-sg-insights/mandos/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger, and metrics
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector

	// Lazy-initialized hit store
	storeClient *store.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mandos",
	Short: "Concordance analysis of compound annotations",
	Long: `Mandos fetches annotations for chemical compounds from public databases,
caches them as hits, and scores how concordantly pairs of compounds are
annotated across independent data sources.

Fetch annotations with 'search', then compute the pairwise concordance
matrix with 'concord'.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)

		collector = metrics.NewCollector()

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Debug("run statistics", "metrics", collector.Snapshot())
		}
		if storeClient != nil {
			if err := storeClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close hit store: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getStore connects to the hit store on first use.
func getStore(ctx context.Context) (*store.Client, error) {
	if storeClient != nil {
		return storeClient, nil
	}

	storeCfg := store.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	client, err := store.NewClient(ctx, storeCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to hit store: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	storeClient = client
	return storeClient, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(concordCmd)
	rootCmd.AddCommand(filterCmd)
}
