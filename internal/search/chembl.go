package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// chemblMolecule is the slice of a ChEMBL molecule record mandos consumes.
type chemblMolecule struct {
	MoleculeChemblID   string `json:"molecule_chembl_id"`
	PrefName           string `json:"pref_name"`
	MoleculeStructures struct {
		StandardInchiKey string `json:"standard_inchi_key"`
	} `json:"molecule_structures"`
	AtcClassifications []string `json:"atc_classifications"`
}

// chemblAtcClass is an ATC class record: per-level codes and descriptions.
type chemblAtcClass struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Level3 string `json:"level3"`
	Level4 string `json:"level4"`
	Level5 string `json:"level5"`

	Level1Description string `json:"level1_description"`
	Level2Description string `json:"level2_description"`
	Level3Description string `json:"level3_description"`
	Level4Description string `json:"level4_description"`
}

func (a chemblAtcClass) code(level int) string {
	switch level {
	case 1:
		return a.Level1
	case 2:
		return a.Level2
	case 3:
		return a.Level3
	case 4:
		return a.Level4
	case 5:
		return a.Level5
	}
	return ""
}

func (a chemblAtcClass) description(level int) string {
	switch level {
	case 1:
		return a.Level1Description
	case 2:
		return a.Level2Description
	case 3:
		return a.Level3Description
	case 4:
		return a.Level4Description
	}
	return ""
}

// ChemblClient fetches records from the ChEMBL REST API, memoizing responses
// in an LRU cache so repeated lookups across searches stay cheap.
type ChemblClient struct {
	base      string
	http      *http.Client
	molecules *lru.Cache[string, chemblMolecule]
	atc       *lru.Cache[string, chemblAtcClass]
}

// NewChemblClient creates a client for the given API base URL with the given
// cache capacity per record kind.
func NewChemblClient(base string, cacheSize int) (*ChemblClient, error) {
	molecules, err := lru.New[string, chemblMolecule](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("molecule cache: %w", err)
	}
	atc, err := lru.New[string, chemblAtcClass](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("atc cache: %w", err)
	}
	return &ChemblClient{
		base:      strings.TrimSuffix(base, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		molecules: molecules,
		atc:       atc,
	}, nil
}

// Molecule fetches one molecule record by ChEMBL ID or InChIKey.
func (c *ChemblClient) Molecule(ctx context.Context, lookup string) (chemblMolecule, error) {
	if rec, ok := c.molecules.Get(lookup); ok {
		return rec, nil
	}
	var rec chemblMolecule
	path := fmt.Sprintf("%s/molecule/%s.json", c.base, url.PathEscape(lookup))
	if err := c.getJSON(ctx, path, &rec); err != nil {
		return chemblMolecule{}, fmt.Errorf("fetch molecule %s: %w", lookup, err)
	}
	c.molecules.Add(lookup, rec)
	return rec, nil
}

// AtcClass fetches one ATC class record by level-5 code.
func (c *ChemblClient) AtcClass(ctx context.Context, code string) (chemblAtcClass, error) {
	if rec, ok := c.atc.Get(code); ok {
		return rec, nil
	}
	var rec chemblAtcClass
	path := fmt.Sprintf("%s/atc_class/%s.json", c.base, url.PathEscape(code))
	if err := c.getJSON(ctx, path, &rec); err != nil {
		return chemblAtcClass{}, fmt.Errorf("fetch atc class %s: %w", code, err)
	}
	c.atc.Add(code, rec)
	return rec, nil
}

func (c *ChemblClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AtcSearch finds the WHO ATC codes ChEMBL assigns to a compound, one hit
// per requested classification level.
type AtcSearch struct {
	key    string
	levels []int
	client *ChemblClient
}

var _ Search = (*AtcSearch)(nil)

// NewAtcSearch creates an ATC search for the given levels (1 through 5).
func NewAtcSearch(key string, levels []int, client *ChemblClient) (*AtcSearch, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("atc search %s: no levels requested", key)
	}
	for _, l := range levels {
		if l < 1 || l > 5 {
			return nil, fmt.Errorf("atc search %s: level %d out of range", key, l)
		}
	}
	sorted := append([]int(nil), levels...)
	sort.Ints(sorted)
	return &AtcSearch{key: key, levels: sorted, client: client}, nil
}

func (s *AtcSearch) Key() string {
	return s.key
}

func (s *AtcSearch) DataSource() string {
	return "ChEMBL :: ATC codes"
}

// Find expands the compound's ATC classifications into hits, one per
// requested level per classification.
func (s *AtcSearch) Find(ctx context.Context, lookup string) ([]model.Hit, error) {
	mol, err := s.client.Molecule(ctx, lookup)
	if err != nil {
		return nil, err
	}

	var hits []model.Hit
	for _, code := range mol.AtcClassifications {
		class, err := s.client.AtcClass(ctx, code)
		if err != nil {
			return nil, err
		}
		for _, level := range s.levels {
			objectID := class.code(level)
			if objectID == "" {
				continue
			}
			// ChEMBL has no exact compound names at level 5; fall back
			// to the molecule's preferred name.
			objectName := class.description(level)
			if level == 5 {
				objectName = strings.ToLower(mol.PrefName)
			}
			hits = append(hits, model.Hit{
				OriginID:     lookup,
				CompoundID:   mol.MoleculeChemblID,
				CompoundName: mol.PrefName,
				Predicate:    fmt.Sprintf("atc:level%d", level),
				ObjectID:     objectID,
				ObjectName:   objectName,
				DataSource:   s.DataSource(),
				SearchKey:    s.key,
				Weight:       1,
			})
		}
	}
	return hits, nil
}
