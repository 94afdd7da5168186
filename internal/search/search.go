// Package search finds annotations for compounds in external chemistry
// databases and turns them into hits.
package search

import (
	"context"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// Search finds annotations for one compound lookup. Implementations are
// stateless apart from their REST clients and safe for concurrent use.
type Search interface {
	// Key names this configured search; it tags hits and output tables.
	Key() string

	// DataSource labels the evidence channel, e.g. "ChEMBL :: ATC codes".
	DataSource() string

	// Find returns the hits for one lookup identifier. A lookup with no
	// annotations yields an empty slice, not an error.
	Find(ctx context.Context, lookup string) ([]model.Hit, error)
}
