package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openssl-sg-insights/mandos/internal/analysis"
	"github.com/openssl-sg-insights/mandos/internal/model"
)

var (
	filterRules string
	filterTo    string
)

var filterCmd = &cobra.Command{
	Use:   "filter <hits.tsv>",
	Short: "Apply filtration rules to a hit table",
	Long: `Apply a filtration rule file to a hit table and write the surviving
hits to a new table.

Examples:
  mandos filter atc.tsv --rules rules.toml
  mandos filter atc.tsv --rules rules.yaml --to kept.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterRules, "rules", "", "filtration rule file (TOML or YAML)")
	filterCmd.Flags().StringVar(&filterTo, "to", "", "output path")
	_ = filterCmd.MarkFlagRequired("rules")
}

func runFilter(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	hits, err := model.ReadHitsFile(inputPath)
	if err != nil {
		return fmt.Errorf("read hit table: %w", err)
	}

	rules, err := analysis.LoadFiltration(filterRules)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	kept := rules.Apply(hits)

	outPath := filterTo
	if outPath == "" {
		stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = stem + "-filtered" + cfg.TableSuffix
	}
	if err := model.WriteHitsFile(outPath, kept); err != nil {
		return fmt.Errorf("write hit table: %w", err)
	}

	fmt.Printf("Kept %d of %d hits -> %s\n", len(kept), len(hits), outPath)
	return nil
}
