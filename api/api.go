// Package api serves the ctiscope JSON API: authentication, IOC lookups,
// dashboard views, threat feeds, tickets and the audit trail.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ctiscope/config"
	"ctiscope/core"
	"ctiscope/intel"
	"ctiscope/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// LookupClient performs one provider reputation query.
type LookupClient interface {
	Query(ctx context.Context, iocType core.IOCType, value string) (*intel.Response, error)
}

// FeedAggregator merges items from all configured feed sources.
type FeedAggregator interface {
	Aggregate(ctx context.Context) []core.FeedItem
}

// ThreatMapSource provides blacklist-derived points for the threat map.
type ThreatMapSource interface {
	MapThreats(ctx context.Context, confidenceMinimum, limit int) []core.MapThreat
}

// API holds the HTTP server and its collaborators.
type API struct {
	router    *mux.Router
	server    *http.Server
	config    *config.Config
	logger    *zap.SugaredLogger
	validate  *validator.Validate
	users     *storage.UserStore
	tickets   *storage.TicketStore
	audit     *storage.AuditStore
	history   *intel.HistoryStore
	lookups   LookupClient
	feeds     FeedAggregator
	threatMap ThreatMapSource
}

// NewAPI creates the API server and registers all routes.
func NewAPI(
	cfg *config.Config,
	logger *zap.SugaredLogger,
	users *storage.UserStore,
	tickets *storage.TicketStore,
	audit *storage.AuditStore,
	history *intel.HistoryStore,
	lookups LookupClient,
	feeds FeedAggregator,
	threatMap ThreatMapSource,
) *API {
	a := &API{
		router:    mux.NewRouter(),
		config:    cfg,
		logger:    logger,
		validate:  validator.New(),
		users:     users,
		tickets:   tickets,
		audit:     audit,
		history:   history,
		lookups:   lookups,
		feeds:     feeds,
		threatMap: threatMap,
	}
	a.setupRoutes()
	return a
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.corsMiddleware)
	a.router.Use(a.requestLoggingMiddleware)

	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	a.router.HandleFunc("/api/health", a.health).Methods("GET")
	a.router.HandleFunc("/api/auth/login", a.login).Methods("POST")

	// Everything below requires a valid session token
	authed := a.router.PathPrefix("/api").Subrouter()
	authed.Use(a.authMiddleware)

	authed.HandleFunc("/auth/password", a.changeOwnPassword).Methods("POST")

	authed.HandleFunc("/ioc/lookup", a.lookupIOC).Methods("POST")
	authed.HandleFunc("/dashboard", a.getDashboard).Methods("GET")
	authed.HandleFunc("/feeds", a.getFeeds).Methods("GET")
	authed.HandleFunc("/threat-map", a.getThreatMap).Methods("GET")

	authed.HandleFunc("/tickets", a.listTickets).Methods("GET")
	authed.HandleFunc("/tickets", a.createTicket).Methods("POST")
	authed.HandleFunc("/tickets/{id}", a.getTicket).Methods("GET")
	authed.HandleFunc("/tickets/{id}/status", a.updateTicketStatus).Methods("POST")

	admin := authed.PathPrefix("").Subrouter()
	admin.Use(a.adminOnlyMiddleware)
	admin.HandleFunc("/admin/users", a.listUsers).Methods("GET")
	admin.HandleFunc("/admin/users", a.createUser).Methods("POST")
	admin.HandleFunc("/admin/users/{id}", a.deleteUser).Methods("DELETE")
	admin.HandleFunc("/admin/users/{id}/password", a.resetUserPassword).Methods("POST")
	admin.HandleFunc("/audit", a.getAuditLog).Methods("GET")
}

// Start begins serving on the configured host and port.
func (a *API) Start() error {
	addr := fmt.Sprintf("%s:%d", a.config.API.Host, a.config.API.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.logger.Infow("API server starting", "addr", addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (a *API) Handler() http.Handler {
	return a.router
}
