package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ctiscope/api"
	"ctiscope/config"
	"ctiscope/feeds"
	"ctiscope/intel"
	"ctiscope/storage"

	"go.uber.org/zap"
)

// App represents the application with all its components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Users   *storage.UserStore
	Tickets *storage.TicketStore
	Audit   *storage.AuditStore
	History *intel.HistoryStore

	IntelClient *intel.Client
	Aggregator  *feeds.Aggregator
	ThreatMap   *feeds.AbuseIPDBSource

	APIServer *api.API

	serviceWg *sync.WaitGroup
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{
		serviceWg: &sync.WaitGroup{},
	}

	logger, sugar, err := InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("CTIScope starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if err := EnsureDataDirectory(cfg.DataDir, sugar); err != nil {
		return nil, fmt.Errorf("pre-flight check failed: %w", err)
	}

	app.Users = storage.NewUserStore(cfg.DataDir, cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, cfg.Auth.BcryptCost)
	app.Tickets = storage.NewTicketStore(cfg.DataDir)
	app.Audit = storage.NewAuditStore(cfg.DataDir)
	app.History = intel.NewHistoryStore()

	app.IntelClient = intel.NewClient(cfg.VirusTotal.APIKey, cfg.VirusTotal.BaseURL, cfg.VirusTotal.Timeout, sugar)

	app.Aggregator = buildAggregator(cfg, sugar)
	app.ThreatMap = feeds.NewAbuseIPDBSource(cfg.Feeds.AbuseIPDBAPIKey, cfg.Feeds.Timeout)

	return app, nil
}

// buildAggregator wires up every feed source that has an API key configured.
// Sources without a key are silently skipped so a partial deployment still works.
func buildAggregator(cfg *config.Config, sugar *zap.SugaredLogger) *feeds.Aggregator {
	var sources []feeds.Source

	if cfg.Feeds.OTXAPIKey != "" {
		sources = append(sources, feeds.NewOTXSource(cfg.Feeds.OTXAPIKey, cfg.Feeds.Timeout))
	} else {
		sugar.Info("OTX feed disabled: no API key configured")
	}

	if cfg.Feeds.AbuseIPDBAPIKey != "" {
		sources = append(sources, feeds.NewAbuseIPDBSource(cfg.Feeds.AbuseIPDBAPIKey, cfg.Feeds.Timeout))
	} else {
		sugar.Info("AbuseIPDB feed disabled: no API key configured")
	}

	if cfg.Feeds.ShodanAPIKey != "" {
		sources = append(sources, feeds.NewShodanSource(cfg.Feeds.ShodanAPIKey, cfg.Feeds.Timeout))
	} else {
		sugar.Info("Shodan feed disabled: no API key configured")
	}

	return feeds.NewAggregator(sugar, sources...)
}

// Start starts the API server.
func (a *App) Start(ctx context.Context) error {
	a.APIServer = api.NewAPI(
		a.Config,
		a.Sugar,
		a.Users,
		a.Tickets,
		a.Audit,
		a.History,
		a.IntelClient,
		a.Aggregator,
		a.ThreatMap,
	)

	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		a.Sugar.Infof("API server started on %s:%d", a.Config.API.Host, a.Config.API.Port)
		if err := a.APIServer.Start(); err != nil && err.Error() != "http: Server closed" {
			a.Sugar.Errorf("API server error: %v", err)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(10 * time.Second):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	a.Sugar.Info("Shutdown complete")
	a.Logger.Sync()
}
