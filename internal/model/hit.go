// Package model defines the annotation data model shared across mandos.
package model

// Hit is one piece of evidence linking a queried compound to an annotated
// claim. Hits are immutable facts: searches produce them, the store and the
// analysis layer only read them.
type Hit struct {
	// RunID identifies the search run that produced the hit.
	RunID string `json:"run_id"`

	// OriginID is the identifier the search was queried with (an InChIKey).
	// It is the grouping key for all per-compound operations.
	OriginID string `json:"origin_id"`

	// CompoundID and CompoundName describe the matched database record,
	// which may differ from the queried form (salts, parents).
	CompoundID   string `json:"compound_id"`
	CompoundName string `json:"compound_name"`

	// Predicate and ObjectID identify the claim itself, e.g.
	// predicate "atc:level3" with object "N05C". Two hits from different
	// compounds that agree on both refer to the same underlying claim.
	Predicate  string `json:"predicate"`
	ObjectID   string `json:"object_id"`
	ObjectName string `json:"object_name"`

	// DataSource names the evidence channel that produced the hit,
	// e.g. "ChEMBL :: ATC codes". Only like-for-like sources are compared.
	DataSource string `json:"data_source"`

	// SearchKey is the user-chosen name of the configured search.
	SearchKey string `json:"search_key"`

	// Weight is the non-negative confidence assigned by the search.
	Weight float64 `json:"weight"`
}

// HitGroups is an ordered grouping of hits under string keys. Key order is
// first-seen order, so grouping the same hits listed differently yields the
// same sets per key.
type HitGroups struct {
	keys   []string
	groups map[string][]Hit
}

// Add appends a hit under key, registering the key on first use.
func (g *HitGroups) Add(key string, h Hit) {
	if g.groups == nil {
		g.groups = make(map[string][]Hit)
	}
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], h)
}

// Keys returns the group keys in first-seen order.
func (g *HitGroups) Keys() []string {
	return g.keys
}

// Get returns the hits grouped under key.
func (g *HitGroups) Get(key string) []Hit {
	return g.groups[key]
}

// Len returns the number of distinct keys.
func (g *HitGroups) Len() int {
	return len(g.keys)
}

// ByOrigin groups hits by origin identifier in a single pass.
func ByOrigin(hits []Hit) *HitGroups {
	g := &HitGroups{}
	for _, h := range hits {
		g.Add(h.OriginID, h)
	}
	return g
}

// BySource groups hits by data source in a single pass.
func BySource(hits []Hit) *HitGroups {
	g := &HitGroups{}
	for _, h := range hits {
		g.Add(h.DataSource, h)
	}
	return g
}
