package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpStoreQuery, 10*time.Millisecond)
	c.RecordTiming(OpStoreQuery, 30*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.StoreQuery)
	assert.Equal(t, int64(2), snap.StoreQuery.Count)
	assert.Equal(t, int64(40), snap.StoreQuery.TotalTimeMs)
	assert.Equal(t, int64(10), snap.StoreQuery.MinTimeMs)
	assert.Equal(t, int64(30), snap.StoreQuery.MaxTimeMs)
	assert.InDelta(t, 20, snap.StoreQuery.AvgTimeMs, 0.001)
	assert.Nil(t, snap.StoreQuery.TotalItems)
}

func TestRecordBatch(t *testing.T) {
	c := NewCollector()

	c.RecordBatch(OpSearchFetch, 100*time.Millisecond, 12)
	c.RecordBatch(OpSearchFetch, 200*time.Millisecond, 4)

	snap := c.Snapshot()
	require.NotNil(t, snap.SearchFetch)
	assert.Equal(t, int64(2), snap.SearchFetch.Count)
	require.NotNil(t, snap.SearchFetch.TotalItems)
	assert.Equal(t, int64(16), *snap.SearchFetch.TotalItems)
	assert.Equal(t, int64(4), *snap.SearchFetch.MinItems)
	assert.Equal(t, int64(12), *snap.SearchFetch.MaxItems)
	assert.InDelta(t, 8, *snap.SearchFetch.AvgItems, 0.001)
}

func TestSnapshotEmptyOps(t *testing.T) {
	c := NewCollector()

	snap := c.Snapshot()
	assert.Nil(t, snap.SearchFetch)
	assert.Nil(t, snap.StoreQuery)
	assert.Nil(t, snap.StoreInsert)
	assert.Nil(t, snap.MatrixCalc)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.RecordBatch(OpMatrixCalc, time.Millisecond, 1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	snap := c.Snapshot()
	require.NotNil(t, snap.MatrixCalc)
	assert.Equal(t, int64(800), snap.MatrixCalc.Count)
	assert.Equal(t, int64(800), *snap.MatrixCalc.TotalItems)
}
