package intel

import (
	"fmt"
	"sync"
	"testing"

	"ctiscope/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecentOrderAndLimit(t *testing.T) {
	store := NewHistoryStore()
	for i := 0; i < 7; i++ {
		store.Append(core.IOCTypeDomain, fmt.Sprintf("host%d.example.com", i), &core.Lookup{})
	}

	recent := store.Recent(5)
	require.Len(t, recent, 5)
	assert.Equal(t, "host6.example.com", recent[0].Value)
	assert.Equal(t, "host2.example.com", recent[4].Value)

	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].CreatedAt.After(recent[i-1].CreatedAt),
			"entries must be ordered most recent first")
	}

	// Repeated reads of an unmutated store are identical
	assert.Equal(t, recent, store.Recent(5))

	// Asking for more than exists returns everything
	assert.Len(t, store.Recent(50), 7)
}

func TestHistoryStatsLiteralCountingRule(t *testing.T) {
	store := NewHistoryStore()
	store.Append(core.IOCTypeIP, "1.2.3.4", &core.Lookup{Malicious: 2})
	store.Append(core.IOCTypeDomain, "example.com", &core.Lookup{Suspicious: 1})
	store.Append(core.IOCTypeHash, "deadbeef", nil)

	stats := store.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Malicious)
	assert.Equal(t, 1, stats.Harmless)
	assert.Equal(t, 1, stats.Suspicious)
}

func TestHistoryStatsEmptyStore(t *testing.T) {
	stats := NewHistoryStore().Stats()
	assert.Equal(t, core.HistoryStats{}, stats)
}

func TestHistoryMapPointsFiltering(t *testing.T) {
	store := NewHistoryStore()
	// Projects: known country, IP type
	store.Append(core.IOCTypeIP, "1.2.3.4", &core.Lookup{Value: "1.2.3.4", Country: "us", Malicious: 1})
	// Excluded: unknown country
	store.Append(core.IOCTypeIP, "5.6.7.8", &core.Lookup{Value: "5.6.7.8", Country: "ZZ"})
	// Excluded: not an IP even though the country is known
	store.Append(core.IOCTypeDomain, "example.de", &core.Lookup{Value: "example.de", Country: "DE"})
	// Excluded: failed lookup
	store.Append(core.IOCTypeIP, "9.9.9.9", nil)
	// Projects: suspicious severity
	store.Append(core.IOCTypeIP, "8.8.8.8", &core.Lookup{Value: "8.8.8.8", Country: "SG", Suspicious: 3})

	points := store.MapPoints()
	require.Len(t, points, 2)

	assert.Equal(t, "1.2.3.4", points[0].Value)
	assert.Equal(t, "US", points[0].Country)
	assert.Equal(t, core.SeverityMalicious, points[0].Severity)
	assert.InDelta(t, 37.0902, points[0].Lat, 0.001)
	assert.InDelta(t, -95.7129, points[0].Lon, 0.001)

	assert.Equal(t, "8.8.8.8", points[1].Value)
	assert.Equal(t, core.SeveritySuspicious, points[1].Severity)
}

func TestHistoryConcurrentAppends(t *testing.T) {
	store := NewHistoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Append(core.IOCTypeIP, fmt.Sprintf("10.0.%d.%d", n, j), &core.Lookup{Country: "US"})
				store.Stats()
				store.Recent(5)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1000, store.Stats().Total)
	assert.Len(t, store.MapPoints(), 1000)
}
