package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// pubchemProperties is the property slice of a PubChem compound record.
type pubchemProperties struct {
	CID            int64   `json:"CID"`
	Title          string  `json:"Title"`
	XLogP          float64 `json:"XLogP"`
	TPSA           float64 `json:"TPSA"`
	HBondDonors    int     `json:"HBondDonorCount"`
	HBondAcceptors int     `json:"HBondAcceptorCount"`
}

type pubchemPropertyTable struct {
	PropertyTable struct {
		Properties []pubchemProperties `json:"Properties"`
	} `json:"PropertyTable"`
}

// PubchemClient fetches compound property records from PubChem PUG REST,
// memoizing responses in an LRU cache.
type PubchemClient struct {
	base    string
	http    *http.Client
	records *lru.Cache[string, pubchemProperties]
}

// NewPubchemClient creates a client for the given PUG REST base URL.
func NewPubchemClient(base string, cacheSize int) (*PubchemClient, error) {
	records, err := lru.New[string, pubchemProperties](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("record cache: %w", err)
	}
	return &PubchemClient{
		base:    strings.TrimSuffix(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		records: records,
	}, nil
}

// Properties fetches the computed properties for a compound by InChIKey.
func (c *PubchemClient) Properties(ctx context.Context, inchikey string) (pubchemProperties, error) {
	if rec, ok := c.records.Get(inchikey); ok {
		return rec, nil
	}

	rawURL := fmt.Sprintf(
		"%s/compound/inchikey/%s/property/Title,XLogP,TPSA,HBondDonorCount,HBondAcceptorCount/JSON",
		c.base, url.PathEscape(inchikey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pubchemProperties{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pubchemProperties{}, fmt.Errorf("fetch properties %s: %w", inchikey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pubchemProperties{}, fmt.Errorf("fetch properties %s: unexpected status %s", inchikey, resp.Status)
	}

	var table pubchemPropertyTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return pubchemProperties{}, fmt.Errorf("decode properties %s: %w", inchikey, err)
	}
	if len(table.PropertyTable.Properties) == 0 {
		return pubchemProperties{}, fmt.Errorf("fetch properties %s: empty property table", inchikey)
	}

	rec := table.PropertyTable.Properties[0]
	c.records.Add(inchikey, rec)
	return rec, nil
}

// PropertySearch annotates compounds with PubChem computed properties.
// Property hits let compounds with no shared curated annotations still be
// compared on physicochemical grounds.
type PropertySearch struct {
	key    string
	client *PubchemClient
}

var _ Search = (*PropertySearch)(nil)

// NewPropertySearch creates a computed-property search.
func NewPropertySearch(key string, client *PubchemClient) *PropertySearch {
	return &PropertySearch{key: key, client: client}
}

func (s *PropertySearch) Key() string {
	return s.key
}

func (s *PropertySearch) DataSource() string {
	return "PubChem :: computed properties"
}

// Find returns one hit per computed property. Property values become claim
// objects after coarse rounding, so near-identical compounds agree.
func (s *PropertySearch) Find(ctx context.Context, lookup string) ([]model.Hit, error) {
	rec, err := s.client.Properties(ctx, lookup)
	if err != nil {
		return nil, err
	}

	properties := []struct {
		name  string
		value string
	}{
		{"XLogP", strconv.FormatFloat(rec.XLogP, 'f', 1, 64)},
		{"TPSA", strconv.FormatFloat(rec.TPSA, 'f', 0, 64)},
		{"HBondDonorCount", strconv.Itoa(rec.HBondDonors)},
		{"HBondAcceptorCount", strconv.Itoa(rec.HBondAcceptors)},
	}

	hits := make([]model.Hit, 0, len(properties))
	for _, p := range properties {
		hits = append(hits, model.Hit{
			OriginID:     lookup,
			CompoundID:   strconv.FormatInt(rec.CID, 10),
			CompoundName: rec.Title,
			Predicate:    "property:" + p.name,
			ObjectID:     p.value,
			ObjectName:   p.value,
			DataSource:   s.DataSource(),
			SearchKey:    s.key,
			Weight:       1,
		})
	}
	return hits, nil
}
