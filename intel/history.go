package intel

import (
	"sort"
	"strings"
	"sync"
	"time"

	"ctiscope/core"
)

// HistoryStore is the append-only in-memory log of completed lookups. It is
// shared by every request handler, so all access goes through the mutex.
// Entries live for the duration of the process; nothing is persisted.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []core.HistoryEntry
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append records one completed lookup attempt. Record may be nil when the
// provider response carried no data. Entries are never updated or deleted,
// and there is no deduplication or capacity bound.
func (h *HistoryStore) Append(iocType core.IOCType, value string, record *core.Lookup) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, core.HistoryEntry{
		Type:      iocType,
		Value:     value,
		Record:    record,
		CreatedAt: time.Now().UTC(),
	})
}

// Recent returns up to n entries, most recently created first. Entries with
// equal timestamps keep their insertion order.
func (h *HistoryStore) Recent(n int) []core.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	recent := make([]core.HistoryEntry, len(h.entries))
	copy(recent, h.entries)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if n < len(recent) {
		recent = recent[:n]
	}
	return recent
}

// Stats derives aggregate counts from the accumulated history. Malicious and
// harmless are counted independently over entries that carry a record;
// entries whose record is absent (failed normalization) count only toward
// the total.
func (h *HistoryStore) Stats() core.HistoryStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := core.HistoryStats{Total: len(h.entries)}
	for _, e := range h.entries {
		if e.Record == nil {
			continue
		}
		if e.Record.Malicious > 0 {
			stats.Malicious++
		}
		if e.Record.Malicious == 0 {
			stats.Harmless++
		}
		if e.Record.Suspicious > 0 {
			stats.Suspicious++
		}
	}
	return stats
}

// MapPoints derives globe markers from the history. Only IP lookups whose
// country code projects onto the static coordinate table produce a point;
// everything else is silently excluded.
func (h *HistoryStore) MapPoints() []core.MapPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	points := make([]core.MapPoint, 0, len(h.entries))
	for _, e := range h.entries {
		if e.Type != core.IOCTypeIP || e.Record == nil {
			continue
		}

		country := strings.ToUpper(e.Record.Country)
		lat, lon, ok := CountryCoords(country)
		if !ok {
			continue
		}

		points = append(points, core.MapPoint{
			Lat:      lat,
			Lon:      lon,
			Severity: e.Record.Severity(),
			Value:    e.Record.Value,
			Country:  country,
		})
	}
	return points
}
