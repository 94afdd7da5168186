// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Item metrics (hits fetched, cells computed)
	TotalItems int64
	MinItems   int64
	MaxItems   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// Item stats (nil if not applicable)
	TotalItems *int64
	AvgItems   *float64
	MinItems   *int64
	MaxItems   *int64
}

// Snapshot represents the full run statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	SearchFetch   *OperationSnapshot
	StoreQuery    *OperationSnapshot
	StoreInsert   *OperationSnapshot
	MatrixCalc    *OperationSnapshot
}

// Operation names for the collector.
const (
	OpSearchFetch = "search_fetch"
	OpStoreQuery  = "store_query"
	OpStoreInsert = "store_insert"
	OpMatrixCalc  = "matrix_calc"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:  time.Duration(math.MaxInt64),
			MinItems: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordBatch records timing and item count for an operation that
// processes a batch of items, such as a search fetch or a matrix run.
func (c *Collector) RecordBatch(op string, duration time.Duration, items int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	m.TotalItems += items

	if items < m.MinItems {
		m.MinItems = items
	}
	if items > m.MaxItems {
		m.MaxItems = items
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeItems bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeItems && m.TotalItems > 0 {
		total := m.TotalItems
		avg := float64(m.TotalItems) / float64(m.Count)
		min := m.MinItems
		max := m.MaxItems

		// Reset sentinel values for display
		if min == math.MaxInt64 {
			min = 0
		}

		snap.TotalItems = &total
		snap.AvgItems = &avg
		snap.MinItems = &min
		snap.MaxItems = &max
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		SearchFetch:   snapshotOp(c.ops[OpSearchFetch], true),
		StoreQuery:    snapshotOp(c.ops[OpStoreQuery], false),
		StoreInsert:   snapshotOp(c.ops[OpStoreInsert], true),
		MatrixCalc:    snapshotOp(c.ops[OpMatrixCalc], true),
	}
}
