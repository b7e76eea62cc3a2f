package core

import (
	"time"
)

// IOCType represents the type of indicator of compromise
type IOCType string

const (
	IOCTypeIP     IOCType = "ip"
	IOCTypeDomain IOCType = "domain"
	IOCTypeURL    IOCType = "url"
	IOCTypeHash   IOCType = "hash"
)

// AllIOCTypes returns all valid IOC types for validation
var AllIOCTypes = []IOCType{
	IOCTypeIP, IOCTypeDomain, IOCTypeURL, IOCTypeHash,
}

// IsValid checks if the IOC type is valid
func (t IOCType) IsValid() bool {
	for _, valid := range AllIOCTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// Severity classifies a lookup result for display purposes
type Severity string

const (
	SeverityMalicious  Severity = "malicious"
	SeveritySuspicious Severity = "suspicious"
	SeverityHarmless   Severity = "harmless"
)

// Lookup is the canonical record produced by normalizing a provider
// response. It is created once at normalization time and never mutated.
type Lookup struct {
	Type  IOCType `json:"ioc_type"`
	Value string  `json:"value"`

	// Detection counters from the provider's last analysis. Each counter
	// is independently meaningful; suspicious does not imply malicious.
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`

	// LastAnalysisDate is a display-ready UTC timestamp, or empty when the
	// provider reported none.
	LastAnalysisDate string `json:"last_analysis_date,omitempty"`
	Reputation       *int   `json:"reputation,omitempty"`

	// IP-specific
	Country string `json:"country,omitempty"`
	ASOwner string `json:"as_owner,omitempty"`

	// Domain/URL/file-specific
	Categories      map[string]string `json:"categories,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	TypeDescription string            `json:"type_description,omitempty"`
	MeaningfulName  string            `json:"meaningful_name,omitempty"`
}

// Severity derives the display severity from the detection counters.
func (l *Lookup) Severity() Severity {
	switch {
	case l.Malicious > 0:
		return SeverityMalicious
	case l.Suspicious > 0:
		return SeveritySuspicious
	default:
		return SeverityHarmless
	}
}

// HistoryEntry wraps one completed lookup attempt. Record is nil when the
// provider response carried no data container.
type HistoryEntry struct {
	Type      IOCType   `json:"ioc_type"`
	Value     string    `json:"value"`
	Record    *Lookup   `json:"record,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStats holds aggregate counts over the lookup history.
// Malicious and Harmless are computed independently over entries that have
// a record; entries without one count only toward Total.
type HistoryStats struct {
	Total      int `json:"total_iocs"`
	Malicious  int `json:"malicious"`
	Harmless   int `json:"harmless"`
	Suspicious int `json:"suspicious"`
}

// MapPoint is a globe marker derived from an IP lookup whose country code
// projects onto the static coordinate table.
type MapPoint struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lng"`
	Severity Severity `json:"severity"`
	Value    string   `json:"value"`
	Country  string   `json:"country"`
	City     string   `json:"city,omitempty"`
}

// FeedItem is the uniform shape every feed source adapter maps into.
// Items are produced fresh per aggregation call and never stored.
type FeedItem struct {
	Source      string `json:"source"`
	Type        string `json:"type"`
	Indicator   string `json:"indicator"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// MapThreat is one blacklist-derived point for the threat map endpoint.
type MapThreat struct {
	IP      string   `json:"ip"`
	Country string   `json:"country"`
	Risk    string   `json:"risk"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}
