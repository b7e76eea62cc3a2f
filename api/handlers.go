package api

import (
	"net/http"

	"ctiscope/core"
	"ctiscope/intel"
	"ctiscope/metrics"
)

const recentLookupLimit = 5

// health reports liveness.
func (a *API) health(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

type lookupRequest struct {
	Type  string `json:"ioc_type" validate:"required,oneof=ip domain url hash"`
	Value string `json:"value" validate:"required"`
}

type lookupResponse struct {
	Type   core.IOCType `json:"ioc_type"`
	Value  string       `json:"value"`
	Record *core.Lookup `json:"record"`
}

// lookupIOC runs the lookup pipeline: query the provider, normalize the
// response and append the outcome to the in-memory history. A provider
// failure surfaces as a generic unavailable message and records nothing;
// a response without data still appends an entry with an absent record.
func (a *API) lookupIOC(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	iocType := core.IOCType(req.Type)

	raw, err := a.lookups.Query(r.Context(), iocType, req.Value)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(req.Type, "unavailable").Inc()
		a.respondError(w, http.StatusBadGateway,
			"error contacting the reputation provider; check the API key and network", err)
		return
	}

	record := intel.Normalize(raw, iocType)
	a.history.Append(iocType, req.Value, record)

	outcome := "no_data"
	if record != nil {
		outcome = string(record.Severity())
	}
	metrics.LookupsTotal.WithLabelValues(req.Type, outcome).Inc()

	a.respondJSON(w, lookupResponse{Type: iocType, Value: req.Value, Record: record}, http.StatusOK)
}

type dashboardResponse struct {
	Stats       core.HistoryStats   `json:"stats"`
	Recent      []core.HistoryEntry `json:"recent"`
	GlobePoints []core.MapPoint     `json:"globe_points"`
}

// getDashboard returns the derived read views over the lookup history.
func (a *API) getDashboard(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, dashboardResponse{
		Stats:       a.history.Stats(),
		Recent:      a.history.Recent(recentLookupLimit),
		GlobePoints: a.history.MapPoints(),
	}, http.StatusOK)
}

// getFeeds aggregates all configured threat feed sources.
func (a *API) getFeeds(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, a.feeds.Aggregate(r.Context()), http.StatusOK)
}

// getThreatMap returns blacklist-derived map points. Failures and a missing
// source key both yield an empty array.
func (a *API) getThreatMap(w http.ResponseWriter, r *http.Request) {
	threats := a.threatMap.MapThreats(r.Context(),
		a.config.ThreatMap.ConfidenceMinimum, a.config.ThreatMap.Limit)
	a.respondJSON(w, threats, http.StatusOK)
}
