package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/uwillc/netposture/internal/adapters/reporting"
	"github.com/uwillc/netposture/internal/adapters/web/handlers"
	"github.com/uwillc/netposture/internal/adapters/web/websocket"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr      string
	WSManager *websocket.WSManager

	ScoreHandler     *handlers.ScoreHandler
	ProfileHandler   *handlers.ProfileHandler
	CVEHandler       *handlers.CVEHandler
	GeneratorHandler *handlers.GeneratorHandler
	ReportHandler    *handlers.ReportHandler

	srv *http.Server
}

// NewServer wires the handlers over the scoring pipeline and stores.
func NewServer(addr string, profiles ports.ProfileRepository, store ports.RecordStore, matcher ports.Matcher, enricher ports.Enricher, orchestrator *scoring.Orchestrator, aggregator *scoring.Aggregator, clock ports.Clock) *Server {
	wsManager := websocket.NewWSManager()

	return &Server{
		Addr:      addr,
		WSManager: wsManager,

		ScoreHandler:     handlers.NewScoreHandler(profiles, orchestrator, wsManager),
		ProfileHandler:   handlers.NewProfileHandler(profiles),
		CVEHandler:       handlers.NewCVEHandler(store, matcher, enricher, aggregator, clock),
		GeneratorHandler: handlers.NewGeneratorHandler(),
		ReportHandler:    handlers.NewReportHandler(profiles, orchestrator, reporting.NewPDFExporter()),
	}
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "netposture-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// BroadcastLog sends a log message to all connected clients
func (s *Server) BroadcastLog(message string, level string) {
	s.WSManager.BroadcastLog(message, level)
}
