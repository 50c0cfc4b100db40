package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/uwillc/netposture/internal/adapters/cve"
	"github.com/uwillc/netposture/internal/adapters/enrichment"
	"github.com/uwillc/netposture/internal/adapters/storage"
	webserver "github.com/uwillc/netposture/internal/adapters/web/server"
	"github.com/uwillc/netposture/internal/config"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
	"github.com/uwillc/netposture/internal/telemetry"
)

// Application holds the core components of the application. It acts as the
// facade for the system, wiring stores, the scoring pipeline and servers.
type Application struct {
	Config *config.Config

	RecordStore ports.RecordStore
	Profiles    ports.ProfileRepository
	Matcher     ports.Matcher
	Enricher    ports.Enricher

	Orchestrator *scoring.Orchestrator
	WebServer    *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	app.Matcher = cve.NewMatcher(app.RecordStore)
	app.initEnrichment()

	clock := ports.SystemClock()
	aggregator := scoring.NewAggregator(nil)
	app.Orchestrator = scoring.NewOrchestrator(app.Matcher, app.Enricher, aggregator, clock)

	if app.Config.SeedDir != "" {
		loader := cve.NewSeedLoader(app.RecordStore)
		n, err := loader.LoadFromDir(context.Background(), app.Config.SeedDir)
		if err != nil {
			log.Printf("Warning: seed loading incomplete: %v", err)
		} else {
			slog.Info("seed records loaded", "count", n, "dir", app.Config.SeedDir)
		}
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, app.Profiles, app.RecordStore, app.Matcher, app.Enricher, app.Orchestrator, aggregator, clock)
	return nil
}

func (app *Application) initStorage() error {
	for _, path := range []string{app.Config.RecordDBPath, app.Config.ProfileDBPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	records, err := cve.NewSQLiteRepository(app.Config.RecordDBPath)
	if err != nil {
		return fmt.Errorf("failed to init record store: %w", err)
	}
	app.RecordStore = records

	profiles, err := storage.NewSQLiteProfileRepository(app.Config.ProfileDBPath)
	if err != nil {
		return fmt.Errorf("failed to init profile store: %w", err)
	}
	app.Profiles = profiles
	return nil
}

// initEnrichment wires the external feed behind the TTL cache. Without a
// feed URL scoring runs from local records only.
func (app *Application) initEnrichment() {
	if app.Config.FeedURL == "" {
		slog.Info("enrichment disabled, no feed URL configured")
		return
	}

	client, err := enrichment.NewNVDClient(app.Config.FeedURL, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		log.Printf("Warning: invalid feed URL, enrichment disabled: %v", err)
		return
	}
	app.Enricher = enrichment.NewCache(client, ports.SystemClock(), app.Config.EnrichTTL)
}

// Run starts the application components and blocks until ctx cancels or a
// component fails.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting netposture components...")

	errChan := make(chan error, 1)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("netposture ready", "addr", app.Config.Addr)

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		app.cleanup()
		return err
	}

	return app.cleanup()
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	if app.RecordStore != nil {
		if err := app.RecordStore.Close(); err != nil {
			log.Printf("Error closing record store: %v", err)
		}
	}
	if app.Profiles != nil {
		if err := app.Profiles.Close(); err != nil {
			log.Printf("Error closing profile store: %v", err)
		}
	}
	return nil
}
