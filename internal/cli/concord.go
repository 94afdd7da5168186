package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openssl-sg-insights/mandos/internal/analysis"
	"github.com/openssl-sg-insights/mandos/internal/model"
	"github.com/openssl-sg-insights/mandos/internal/service"
)

var (
	concordFromDB     bool
	concordRules      string
	concordTo         string
	concordWorkers    int
	concordNoProgress bool
)

var concordCmd = &cobra.Command{
	Use:   "concord [hits.tsv]",
	Short: "Compute the pairwise concordance matrix",
	Long: `Compute the pairwise concordance matrix over all compounds in the
given hit table, or over every cached hit with --from-db.

Each cell scores how concordantly two compounds are annotated across the
data sources they share; cells with no shared evidence are left empty.

Examples:
  mandos concord compounds-output/atc.tsv
  mandos concord --from-db --to matrix.csv
  mandos concord hits.tsv --rules rules.toml --workers 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConcord,
}

func init() {
	concordCmd.Flags().BoolVar(&concordFromDB, "from-db", false, "read hits from the store instead of a file")
	concordCmd.Flags().StringVar(&concordRules, "rules", "", "filtration rule file (TOML or YAML)")
	concordCmd.Flags().StringVar(&concordTo, "to", "", "output CSV path")
	concordCmd.Flags().IntVar(&concordWorkers, "workers", 0, "parallel workers (0 = one per CPU)")
	concordCmd.Flags().BoolVar(&concordNoProgress, "no-progress", false, "disable the interactive progress bar")
}

func runConcord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if concordFromDB == (len(args) == 1) {
		return fmt.Errorf("pass either a hit table or --from-db")
	}

	svc := service.NewConcordService(nil, collector, logger)

	var hits []model.Hit
	var err error
	if concordFromDB {
		st, storeErr := getStore(ctx)
		if storeErr != nil {
			return storeErr
		}
		svc = service.NewConcordService(st, collector, logger)
		hits, err = svc.LoadHits(ctx)
	} else {
		hits, err = svc.LoadHitsFile(args[0])
	}
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no hits to score")
	}

	var rules *analysis.Filtration
	if concordRules != "" {
		rules, err = analysis.LoadFiltration(concordRules)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}

	workers := concordWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	var m *analysis.Matrix
	if concordNoProgress {
		m, err = svc.Calc(ctx, hits, service.ConcordOptions{
			Rules:   rules,
			Workers: workers,
		})
	} else {
		m, err = runWithProgress(ctx, func(ctx context.Context, progress func(done, total int)) (*analysis.Matrix, error) {
			return svc.Calc(ctx, hits, service.ConcordOptions{
				Rules:    rules,
				Workers:  workers,
				Progress: progress,
			})
		})
	}
	if err != nil {
		return err
	}

	outPath := concordOutputPath(args)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := m.WriteCSVFile(outPath); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}

	fmt.Printf("Wrote %dx%d concordance matrix to %s\n", m.Len(), m.Len(), outPath)
	return nil
}

// concordOutputPath defaults to <input stem>-concordance.csv next to the
// input, or concordance.csv in the working directory for --from-db.
func concordOutputPath(args []string) string {
	if concordTo != "" {
		return concordTo
	}
	if len(args) == 1 {
		input := args[0]
		stem := strings.TrimSuffix(input, filepath.Ext(input))
		return stem + "-concordance.csv"
	}
	return "concordance.csv"
}
