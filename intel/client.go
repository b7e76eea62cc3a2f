// Package intel implements the IOC lookup pipeline: the VirusTotal client,
// response normalization, geographic projection and the in-memory lookup
// history.
package intel

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ctiscope/core"

	"go.uber.org/zap"
)

// Response is the typed subset of a VirusTotal v3 object response that the
// normalizer consumes. The provider payload is schema-uniform across
// indicator types; fields irrelevant to a given type simply stay zero.
type Response struct {
	Data *ResponseData `json:"data"`
}

// ResponseData is the top-level data container of a provider response.
type ResponseData struct {
	ID         string             `json:"id"`
	Attributes ResponseAttributes `json:"attributes"`
}

// ResponseAttributes is the provider-uniform attribute bag.
type ResponseAttributes struct {
	LastAnalysisStats AnalysisStats     `json:"last_analysis_stats"`
	LastAnalysisDate  json.Number       `json:"last_analysis_date"`
	Reputation        *int              `json:"reputation"`
	Country           string            `json:"country"`
	ASOwner           string            `json:"as_owner"`
	Categories        map[string]string `json:"categories"`
	Tags              []string          `json:"tags"`
	TypeDescription   string            `json:"type_description"`
	MeaningfulName    string            `json:"meaningful_name"`
}

// AnalysisStats holds the detection counters. Missing counters decode to 0.
type AnalysisStats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
}

// Client queries the VirusTotal v3 API for indicator reputation.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewClient creates a new VirusTotal client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Query performs one reputation lookup for the given indicator. The value is
// treated as opaque; it is not validated for syntax. Transport errors,
// non-2xx statuses and malformed bodies all collapse into a single error
// value meaning "lookup unavailable". No retries.
func (c *Client) Query(ctx context.Context, iocType core.IOCType, value string) (*Response, error) {
	endpoint, err := c.endpointFor(iocType, value)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warnw("VirusTotal request failed", "type", iocType, "error", err)
		return nil, fmt.Errorf("lookup unavailable: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnw("VirusTotal returned non-OK status", "type", iocType, "status", resp.StatusCode)
		return nil, fmt.Errorf("lookup unavailable: provider status %d", resp.StatusCode)
	}

	var vtResponse Response
	if err := json.NewDecoder(resp.Body).Decode(&vtResponse); err != nil {
		c.logger.Warnw("VirusTotal response decode failed", "type", iocType, "error", err)
		return nil, fmt.Errorf("lookup unavailable: %w", err)
	}

	return &vtResponse, nil
}

// endpointFor resolves the provider path for an indicator type. URL lookups
// use the URL-safe base64 form of the raw URL, padding stripped, as the id.
func (c *Client) endpointFor(iocType core.IOCType, value string) (string, error) {
	switch iocType {
	case core.IOCTypeIP:
		return fmt.Sprintf("%s/ip_addresses/%s", c.baseURL, value), nil
	case core.IOCTypeDomain:
		return fmt.Sprintf("%s/domains/%s", c.baseURL, value), nil
	case core.IOCTypeHash:
		return fmt.Sprintf("%s/files/%s", c.baseURL, value), nil
	case core.IOCTypeURL:
		return fmt.Sprintf("%s/urls/%s", c.baseURL, URLIdentifier(value)), nil
	default:
		return "", fmt.Errorf("unsupported IOC type: %s", iocType)
	}
}

// URLIdentifier computes the provider's identifier for a URL indicator:
// URL-safe base64 of the exact input with '=' padding stripped.
func URLIdentifier(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rawURL))
}
