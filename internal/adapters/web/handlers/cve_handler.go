package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
)

// CVEHandler serves ad-hoc CVE analysis and record lookup endpoints.
type CVEHandler struct {
	Store      ports.RecordStore
	Matcher    ports.Matcher
	Enricher   ports.Enricher
	Aggregator *scoring.Aggregator
	Clock      ports.Clock
}

// NewCVEHandler creates a new CVEHandler.
func NewCVEHandler(store ports.RecordStore, matcher ports.Matcher, enricher ports.Enricher, aggregator *scoring.Aggregator, clock ports.Clock) *CVEHandler {
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &CVEHandler{
		Store:      store,
		Matcher:    matcher,
		Enricher:   enricher,
		Aggregator: aggregator,
		Clock:      clock,
	}
}

// AnalyzeRequest is an ad-hoc platform/version pair to check without
// creating a profile.
type AnalyzeRequest struct {
	Platform string `json:"platform"`
	Version  string `json:"version"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// AnalyzeResponse carries the matched records and a score preview.
type AnalyzeResponse struct {
	Platform string `json:"platform"`
	Version  string `json:"version"`

	CVECount int                          `json:"cve_count"`
	CVEs     []domain.VulnerabilityRecord `json:"cves"`

	SeverityCounts     map[string]int `json:"severity_counts"`
	RecommendedUpgrade string         `json:"recommended_upgrade,omitempty"`

	Score *domain.ProfileSecurityScore `json:"score,omitempty"`
}

// HandleAnalyze matches an ad-hoc platform/version pair against the record
// store and returns the records plus a score preview.
func (h *CVEHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Platform = strings.TrimSpace(req.Platform)
	req.Version = strings.TrimSpace(req.Version)
	if req.Platform == "" || req.Version == "" {
		http.Error(w, "platform and version are required", http.StatusBadRequest)
		return
	}

	profile := domain.DeviceProfile{
		Name:     "adhoc",
		Platform: req.Platform,
		Version:  req.Version,
	}

	matched, err := h.Matcher.Match(r.Context(), profile)
	if err != nil {
		log.Printf("CVE match failed: %v", err)
		http.Error(w, "Record lookup failed", http.StatusInternalServerError)
		return
	}

	if h.Enricher != nil {
		for i := range matched {
			matched[i] = h.Enricher.Enrich(r.Context(), matched[i], req.Refresh)
		}
	}

	resp := AnalyzeResponse{
		Platform:           req.Platform,
		Version:            req.Version,
		CVECount:           len(matched),
		CVEs:               matched,
		SeverityCounts:     severityCounts(matched),
		RecommendedUpgrade: domain.RecommendedUpgrade(matched),
	}

	if h.Aggregator != nil {
		score, err := h.Aggregator.Score(profile, matched, h.Clock.Now())
		if err != nil {
			log.Printf("Score preview failed: %v", err)
		} else {
			resp.Score = &score
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleGet returns a single record by CVE identifier, enriched when an
// external source is configured.
func (h *CVEHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cveID := strings.ToUpper(mux.Vars(r)["id"])

	rec, err := h.Store.GetByID(r.Context(), cveID)
	if err != nil {
		log.Printf("Record lookup failed: %v", err)
		http.Error(w, "Record lookup failed", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "CVE not found", http.StatusNotFound)
		return
	}

	out := *rec
	if h.Enricher != nil {
		out = h.Enricher.Enrich(r.Context(), out, r.URL.Query().Get("refresh") == "1")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// HandleStats reports record store totals.
func (h *CVEHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.GetTotalCount(r.Context())
	if err != nil {
		log.Printf("Record count failed: %v", err)
		http.Error(w, "Record count failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"total_records": total})
}

func severityCounts(records []domain.VulnerabilityRecord) map[string]int {
	counts := map[string]int{}
	for i := range records {
		sev := records[i].Severity
		if sev == "" {
			sev = domain.SeverityUnknown
		}
		counts[string(sev)]++
	}
	return counts
}
