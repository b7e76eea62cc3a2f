package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ctiscope/core"
)

const otxPulseLimit = 5

// OTXSource pulls the caller's subscribed pulses from AlienVault OTX and
// maps each pulse's first indicator into a feed item.
type OTXSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOTXSource creates an OTX adapter. An empty apiKey disables the source.
func NewOTXSource(apiKey string, timeout time.Duration) *OTXSource {
	return &OTXSource{
		apiKey:  apiKey,
		baseURL: "https://otx.alienvault.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source name.
func (s *OTXSource) Name() string {
	return "OTX"
}

// Fetch returns up to otxPulseLimit items from subscribed pulses.
func (s *OTXSource) Fetch(ctx context.Context) ([]core.FeedItem, error) {
	if s.apiKey == "" {
		return []core.FeedItem{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/pulses/subscribed", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-OTX-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query OTX: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OTX returned status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Name       string `json:"name"`
			Indicators []struct {
				Type      string `json:"type"`
				Indicator string `json:"indicator"`
			} `json:"indicators"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode OTX response: %w", err)
	}

	pulses := body.Results
	if len(pulses) > otxPulseLimit {
		pulses = pulses[:otxPulseLimit]
	}

	items := make([]core.FeedItem, 0, len(pulses))
	for _, pulse := range pulses {
		if len(pulse.Indicators) == 0 {
			continue
		}
		ind := pulse.Indicators[0]
		items = append(items, core.FeedItem{
			Source:      "OTX",
			Type:        ind.Type,
			Indicator:   ind.Indicator,
			Severity:    "high",
			Description: pulse.Name,
		})
	}
	return items, nil
}
