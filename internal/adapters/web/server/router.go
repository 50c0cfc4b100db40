package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uwillc/netposture/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Scoring runs match+enrich for every profile; keep it from being
	// hammered.
	scoreLimiter := middleware.NewRateLimiter(10, 1*time.Minute)
	limit := middleware.RateLimitMiddleware(scoreLimiter)

	// Batch scoring and vulnerability status. Registered before the
	// {name} routes so the fixed paths win.
	r.Handle("/api/profiles/security-scores", limit(http.HandlerFunc(s.ScoreHandler.HandleSecurityScores))).Methods(http.MethodGet)
	r.Handle("/api/profiles/vulnerabilities", limit(http.HandlerFunc(s.ScoreHandler.HandleVulnerabilities))).Methods(http.MethodGet)

	// Profile CRUD
	r.HandleFunc("/api/profiles", s.ProfileHandler.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles", s.ProfileHandler.HandleSave).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles/{name}", s.ProfileHandler.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles/{name}", s.ProfileHandler.HandleDelete).Methods(http.MethodDelete)

	// Ad-hoc CVE analysis and record lookup
	r.HandleFunc("/api/cve/analyze", s.CVEHandler.HandleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/cve/stats", s.CVEHandler.HandleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cve/{id}", s.CVEHandler.HandleGet).Methods(http.MethodGet)

	// Hardening config generators
	r.HandleFunc("/api/generate/snmpv3", s.GeneratorHandler.HandleSNMPv3).Methods(http.MethodPost)
	r.HandleFunc("/api/generate/ntp", s.GeneratorHandler.HandleNTP).Methods(http.MethodPost)
	r.HandleFunc("/api/generate/aaa", s.GeneratorHandler.HandleAAA).Methods(http.MethodPost)

	// Reports
	r.Handle("/api/reports/security-scores", limit(http.HandlerFunc(s.ReportHandler.HandleScoreReport))).Methods(http.MethodGet)

	// WebSocket endpoint
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
