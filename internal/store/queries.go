// Package store provides SurrealDB query functions for hit operations.
package store

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// hitRecord is the stored shape of a hit.
type hitRecord struct {
	RunID        string  `json:"run_id"`
	OriginID     string  `json:"origin_id"`
	CompoundID   string  `json:"compound_id"`
	CompoundName string  `json:"compound_name"`
	Predicate    string  `json:"predicate"`
	ObjectID     string  `json:"object_id"`
	ObjectName   string  `json:"object_name"`
	DataSource   string  `json:"data_source"`
	SearchKey    string  `json:"search_key"`
	Weight       float64 `json:"weight"`
}

func toRecord(h model.Hit) hitRecord {
	return hitRecord{
		RunID:        h.RunID,
		OriginID:     h.OriginID,
		CompoundID:   h.CompoundID,
		CompoundName: h.CompoundName,
		Predicate:    h.Predicate,
		ObjectID:     h.ObjectID,
		ObjectName:   h.ObjectName,
		DataSource:   h.DataSource,
		SearchKey:    h.SearchKey,
		Weight:       h.Weight,
	}
}

func toHit(r hitRecord) model.Hit {
	return model.Hit{
		RunID:        r.RunID,
		OriginID:     r.OriginID,
		CompoundID:   r.CompoundID,
		CompoundName: r.CompoundName,
		Predicate:    r.Predicate,
		ObjectID:     r.ObjectID,
		ObjectName:   r.ObjectName,
		DataSource:   r.DataSource,
		SearchKey:    r.SearchKey,
		Weight:       r.Weight,
	}
}

func toHits(records []hitRecord) []model.Hit {
	hits := make([]model.Hit, len(records))
	for i, r := range records {
		hits[i] = toHit(r)
	}
	return hits
}

// InsertHits stores a batch of hits.
func (c *Client) InsertHits(ctx context.Context, hits []model.Hit) error {
	if len(hits) == 0 {
		return nil
	}
	records := make([]hitRecord, len(hits))
	for i, h := range hits {
		records[i] = toRecord(h)
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		INSERT INTO hit $records
	`, map[string]any{"records": records})
	if err != nil {
		return fmt.Errorf("insert hits: %w", wrapQueryError(err))
	}
	return nil
}

// ListHits returns every stored hit.
func (c *Client) ListHits(ctx context.Context) ([]model.Hit, error) {
	results, err := surrealdb.Query[[]hitRecord](ctx, c.db, `
		SELECT * FROM hit ORDER BY origin_id, data_source
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list hits: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return toHits((*results)[0].Result), nil
}

// ListHitsByOrigin returns the hits stored for one origin identifier.
func (c *Client) ListHitsByOrigin(ctx context.Context, originID string) ([]model.Hit, error) {
	results, err := surrealdb.Query[[]hitRecord](ctx, c.db, `
		SELECT * FROM hit WHERE origin_id = $origin ORDER BY data_source
	`, map[string]any{"origin": originID})
	if err != nil {
		return nil, fmt.Errorf("list hits by origin: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return toHits((*results)[0].Result), nil
}

// ListOrigins returns the distinct origin identifiers with stored hits.
func (c *Client) ListOrigins(ctx context.Context) ([]string, error) {
	type originRow struct {
		OriginID string `json:"origin_id"`
	}
	results, err := surrealdb.Query[[]originRow](ctx, c.db, `
		SELECT origin_id FROM hit GROUP BY origin_id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	rows := (*results)[0].Result
	origins := make([]string, len(rows))
	for i, r := range rows {
		origins[i] = r.OriginID
	}
	return origins, nil
}

// DeleteBySearchKey removes every hit produced by one configured search,
// typically before re-running it.
func (c *Client) DeleteBySearchKey(ctx context.Context, searchKey string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE hit WHERE search_key = $key
	`, map[string]any{"key": searchKey})
	if err != nil {
		return fmt.Errorf("delete by search key: %w", wrapQueryError(err))
	}
	return nil
}

// CountHits returns the number of stored hits.
func (c *Client) CountHits(ctx context.Context) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM hit GROUP ALL
	`, nil)
	if err != nil {
		return 0, fmt.Errorf("count hits: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}
