package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ctiscope/core"
)

const (
	shodanMatchLimit = 5
	// Exposed RDP is a useful always-on sample query for the feed page.
	shodanQuery = "port:3389"
)

// ShodanSource surfaces exposed services from a fixed Shodan search.
type ShodanSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewShodanSource creates a Shodan adapter. An empty apiKey disables the
// source.
func NewShodanSource(apiKey string, timeout time.Duration) *ShodanSource {
	return &ShodanSource{
		apiKey:  apiKey,
		baseURL: "https://api.shodan.io",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source name.
func (s *ShodanSource) Name() string {
	return "Shodan"
}

// Fetch returns up to shodanMatchLimit exposed-service matches.
func (s *ShodanSource) Fetch(ctx context.Context) ([]core.FeedItem, error) {
	if s.apiKey == "" {
		return []core.FeedItem{}, nil
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("query", shodanQuery)
	endpoint := s.baseURL + "/shodan/host/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Shodan: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Shodan returned status %d", resp.StatusCode)
	}

	var body struct {
		Matches []struct {
			IPStr string `json:"ip_str"`
			Port  int    `json:"port"`
			Org   string `json:"org"`
		} `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode Shodan response: %w", err)
	}

	matches := body.Matches
	if len(matches) > shodanMatchLimit {
		matches = matches[:shodanMatchLimit]
	}

	items := make([]core.FeedItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, core.FeedItem{
			Source:      "Shodan",
			Type:        "IP",
			Indicator:   fmt.Sprintf("%s:%d", m.IPStr, m.Port),
			Severity:    "medium",
			Description: fmt.Sprintf("Exposed service detected. Org: %s", m.Org),
		})
	}
	return items, nil
}
