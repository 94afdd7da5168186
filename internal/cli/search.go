package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openssl-sg-insights/mandos/internal/model"
	"github.com/openssl-sg-insights/mandos/internal/search"
	"github.com/openssl-sg-insights/mandos/internal/service"
	"github.com/openssl-sg-insights/mandos/internal/store"
)

var (
	searchAtcLevels []int
	searchSkipAtc   bool
	searchSkipProps bool
	searchTo        string
	searchNoDB      bool
	searchReplace   bool
	searchContinue  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <compounds-file>",
	Short: "Fetch annotations for a list of compounds",
	Long: `Fetch annotations for every compound listed in the input file, one
lookup ID per line (ChEMBL ID or InChIKey; blank lines and lines starting
with # are skipped).

Each search writes a hit table next to the input file and, unless --no-db
is given, caches the hits in the store for later 'concord' runs.

Examples:
  mandos search compounds.txt
  mandos search compounds.txt --atc-levels 3,4,5
  mandos search compounds.txt --skip-props --to hits.tsv
  mandos search compounds.txt --replace --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntSliceVar(&searchAtcLevels, "atc-levels", []int{3, 4}, "ATC classification levels to expand")
	searchCmd.Flags().BoolVar(&searchSkipAtc, "skip-atc", false, "skip the ChEMBL ATC search")
	searchCmd.Flags().BoolVar(&searchSkipProps, "skip-props", false, "skip the PubChem property search")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "output path, or a .suffix to change only the extension")
	searchCmd.Flags().BoolVar(&searchNoDB, "no-db", false, "do not cache hits in the store")
	searchCmd.Flags().BoolVar(&searchReplace, "replace", false, "replace previously cached hits for each search")
	searchCmd.Flags().BoolVar(&searchContinue, "continue-on-error", false, "keep going when a lookup fails")
}

func runSearch(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := cmd.Context()

	lookups, err := readLookups(inputPath)
	if err != nil {
		return err
	}
	if len(lookups) == 0 {
		return fmt.Errorf("no lookup IDs in %s", inputPath)
	}

	searches, err := buildSearches()
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		return fmt.Errorf("all searches skipped")
	}

	var st *store.Client
	if !searchNoDB {
		st, err = getStore(ctx)
		if err != nil {
			return err
		}
	}

	svc := service.NewSearchService(st, collector, logger)
	opts := service.SearchOptions{
		Persist:  !searchNoDB,
		Replace:  searchReplace,
		Continue: searchContinue,
	}

	for _, src := range searches {
		result, err := svc.Run(ctx, src, lookups, opts)
		if err != nil {
			return fmt.Errorf("search %s: %w", src.Key(), err)
		}

		outPath := OutputPath(src.Key(), inputPath, searchTo, cfg.TableSuffix)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := model.WriteHitsFile(outPath, result.Hits); err != nil {
			return fmt.Errorf("write hit table: %w", err)
		}

		fmt.Printf("%s: %d hits for %d compounds -> %s\n",
			src.Key(), len(result.Hits), len(lookups)-len(result.Skipped), outPath)
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	return nil
}

// buildSearches assembles the configured searches with their REST clients.
func buildSearches() ([]search.Search, error) {
	var searches []search.Search

	if !searchSkipAtc {
		client, err := search.NewChemblClient(cfg.ChemblBaseURL, cfg.SearchCacheSize)
		if err != nil {
			return nil, fmt.Errorf("init chembl client: %w", err)
		}
		atc, err := search.NewAtcSearch("atc", searchAtcLevels, client)
		if err != nil {
			return nil, err
		}
		searches = append(searches, atc)
	}

	if !searchSkipProps {
		client, err := search.NewPubchemClient(cfg.PubchemBaseURL, cfg.SearchCacheSize)
		if err != nil {
			return nil, fmt.Errorf("init pubchem client: %w", err)
		}
		searches = append(searches, search.NewPropertySearch("props", client))
	}

	return searches, nil
}

// readLookups reads one lookup ID per line, skipping blanks and comments.
func readLookups(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open compounds file: %w", err)
	}
	defer f.Close()

	var lookups []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lookups = append(lookups, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read compounds file: %w", err)
	}
	return lookups, nil
}
