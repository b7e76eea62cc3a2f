package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ctiscope/core"
)

const abuseIPDBBlacklistLimit = 10

// AbuseIPDBSource pulls the AbuseIPDB blacklist. The same adapter also
// backs the threat-map endpoint with a confidence-filtered query.
type AbuseIPDBSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAbuseIPDBSource creates an AbuseIPDB adapter. An empty apiKey disables
// the source.
func NewAbuseIPDBSource(apiKey string, timeout time.Duration) *AbuseIPDBSource {
	return &AbuseIPDBSource{
		apiKey:  apiKey,
		baseURL: "https://api.abuseipdb.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source name.
func (s *AbuseIPDBSource) Name() string {
	return "AbuseIPDB"
}

type abuseIPDBEntry struct {
	IPAddress            string   `json:"ipAddress"`
	CountryCode          string   `json:"countryCode"`
	AbuseConfidenceScore int      `json:"abuseConfidenceScore"`
	ISP                  string   `json:"isp"`
	Latitude             *float64 `json:"latitude"`
	Longitude            *float64 `json:"longitude"`
}

// Fetch returns up to abuseIPDBBlacklistLimit blacklisted IPs as feed items.
func (s *AbuseIPDBSource) Fetch(ctx context.Context) ([]core.FeedItem, error) {
	if s.apiKey == "" {
		return []core.FeedItem{}, nil
	}

	entries, err := s.blacklist(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(entries) > abuseIPDBBlacklistLimit {
		entries = entries[:abuseIPDBBlacklistLimit]
	}

	items := make([]core.FeedItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, core.FeedItem{
			Source:      "AbuseIPDB",
			Type:        "IP",
			Indicator:   e.IPAddress,
			Severity:    "high",
			Description: fmt.Sprintf("Abuse score: %d / ISP: %s", e.AbuseConfidenceScore, e.ISP),
		})
	}
	return items, nil
}

// MapThreats returns blacklist entries shaped for the threat map, filtered
// by minimum confidence and capped at limit. A missing key or a failed call
// yields an empty slice; the map endpoint never errors to the client.
func (s *AbuseIPDBSource) MapThreats(ctx context.Context, confidenceMinimum, limit int) []core.MapThreat {
	if s.apiKey == "" {
		return []core.MapThreat{}
	}

	params := url.Values{}
	params.Set("confidenceMinimum", strconv.Itoa(confidenceMinimum))
	params.Set("limit", strconv.Itoa(limit))

	entries, err := s.blacklist(ctx, params)
	if err != nil {
		return []core.MapThreat{}
	}

	threats := make([]core.MapThreat, 0, len(entries))
	for _, e := range entries {
		threats = append(threats, core.MapThreat{
			IP:      e.IPAddress,
			Country: e.CountryCode,
			Risk:    string(core.SeverityMalicious),
			Lat:     e.Latitude,
			Lon:     e.Longitude,
		})
	}
	return threats
}

func (s *AbuseIPDBSource) blacklist(ctx context.Context, params url.Values) ([]abuseIPDBEntry, error) {
	endpoint := s.baseURL + "/api/v2/blacklist"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AbuseIPDB: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AbuseIPDB returned status %d", resp.StatusCode)
	}

	var body struct {
		Data []abuseIPDBEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode AbuseIPDB response: %w", err)
	}
	return body.Data, nil
}
