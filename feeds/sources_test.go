package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTXFetchMapsPulses(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-OTX-API-KEY")
		assert.Equal(t, "/api/v1/pulses/subscribed", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[
			{"name":"Pulse A","indicators":[{"type":"domain","indicator":"evil.example.com"}]},
			{"name":"No indicators","indicators":[]},
			{"name":"Pulse B","indicators":[{"type":"IPv4","indicator":"1.2.3.4"},{"type":"IPv4","indicator":"ignored"}]}
		]}`))
	}))
	defer server.Close()

	src := NewOTXSource("otx-key", 5*time.Second)
	src.baseURL = server.URL

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "otx-key", gotHeader)

	require.Len(t, items, 2)
	assert.Equal(t, "OTX", items[0].Source)
	assert.Equal(t, "domain", items[0].Type)
	assert.Equal(t, "evil.example.com", items[0].Indicator)
	assert.Equal(t, "high", items[0].Severity)
	assert.Equal(t, "Pulse A", items[0].Description)
	// Only the first indicator of a pulse is surfaced
	assert.Equal(t, "1.2.3.4", items[1].Indicator)
}

func TestOTXFetchCapsPulses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`)
		for i := 0; i < 8; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name":"p%d","indicators":[{"type":"domain","indicator":"d%d.example.com"}]}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer server.Close()

	src := NewOTXSource("otx-key", 5*time.Second)
	src.baseURL = server.URL

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, otxPulseLimit)
}

func TestOTXFetchWithoutKeyReturnsEmpty(t *testing.T) {
	src := NewOTXSource("", time.Second)
	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAbuseIPDBFetchMapsBlacklist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abuse-key", r.Header.Get("Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":[
			{"ipAddress":"1.2.3.4","abuseConfidenceScore":100,"isp":"BadNet","countryCode":"RU"},
			{"ipAddress":"5.6.7.8","abuseConfidenceScore":92,"isp":"WorseNet","countryCode":"CN"}
		]}`))
	}))
	defer server.Close()

	src := NewAbuseIPDBSource("abuse-key", 5*time.Second)
	src.baseURL = server.URL

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "AbuseIPDB", items[0].Source)
	assert.Equal(t, "IP", items[0].Type)
	assert.Equal(t, "1.2.3.4", items[0].Indicator)
	assert.Equal(t, "high", items[0].Severity)
	assert.Equal(t, "Abuse score: 100 / ISP: BadNet", items[0].Description)
}

func TestAbuseIPDBFetchFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewAbuseIPDBSource("abuse-key", 5*time.Second)
	src.baseURL = server.URL

	_, err := src.Fetch(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

func TestAbuseIPDBMapThreats(t *testing.T) {
	lat, lon := 55.75, 37.61
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "85", r.URL.Query().Get("confidenceMinimum"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `{"data":[{"ipAddress":"1.2.3.4","countryCode":"RU","latitude":%g,"longitude":%g}]}`, lat, lon)
	}))
	defer server.Close()

	src := NewAbuseIPDBSource("abuse-key", 5*time.Second)
	src.baseURL = server.URL

	threats := src.MapThreats(context.Background(), 85, 20)
	require.Len(t, threats, 1)
	assert.Equal(t, "1.2.3.4", threats[0].IP)
	assert.Equal(t, "RU", threats[0].Country)
	assert.Equal(t, "malicious", threats[0].Risk)
	require.NotNil(t, threats[0].Lat)
	assert.InDelta(t, lat, *threats[0].Lat, 0.001)
}

func TestAbuseIPDBMapThreatsDegradesToEmpty(t *testing.T) {
	// No key
	assert.Empty(t, NewAbuseIPDBSource("", time.Second).MapThreats(context.Background(), 85, 20))

	// Upstream failure
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	src := NewAbuseIPDBSource("abuse-key", 5*time.Second)
	src.baseURL = server.URL
	assert.Empty(t, src.MapThreats(context.Background(), 85, 20))
}

func TestShodanFetchMapsMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shodan-key", r.URL.Query().Get("key"))
		assert.Equal(t, "port:3389", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"matches":[
			{"ip_str":"9.9.9.9","port":3389,"org":"ExampleCorp"}
		]}`))
	}))
	defer server.Close()

	src := NewShodanSource("shodan-key", 5*time.Second)
	src.baseURL = server.URL

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Shodan", items[0].Source)
	assert.Equal(t, "9.9.9.9:3389", items[0].Indicator)
	assert.Equal(t, "medium", items[0].Severity)
	assert.Equal(t, "Exposed service detected. Org: ExampleCorp", items[0].Description)
}

func TestShodanFetchWithoutKeyReturnsEmpty(t *testing.T) {
	items, err := NewShodanSource("", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
