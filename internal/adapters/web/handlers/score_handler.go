package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
)

// EventSink receives completed batch results for push notification.
// Implementations must not block.
type EventSink interface {
	BroadcastBatchScored(batch *domain.BatchScoreResult)
}

// ScoreHandler serves the batch scoring and vulnerability check endpoints.
type ScoreHandler struct {
	Profiles     ports.ProfileRepository
	Orchestrator *scoring.Orchestrator
	Events       EventSink
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(profiles ports.ProfileRepository, orchestrator *scoring.Orchestrator, events EventSink) *ScoreHandler {
	return &ScoreHandler{
		Profiles:     profiles,
		Orchestrator: orchestrator,
		Events:       events,
	}
}

// HandleSecurityScores calculates security scores (0-100) for all profiles.
// ?refresh=1 forces an enrichment cache bypass.
func (h *ScoreHandler) HandleSecurityScores(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		log.Printf("Profile listing failed: %v", err)
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	opts := scoring.BatchOptions{
		ForceRefresh: r.URL.Query().Get("refresh") == "1",
	}

	batch, err := h.Orchestrator.ScoreBatch(r.Context(), profiles, opts)
	if err != nil {
		log.Printf("Batch scoring failed: %v", err)
		http.Error(w, "Scoring failed", http.StatusInternalServerError)
		return
	}

	if h.Events != nil {
		h.Events.BroadcastBatchScored(batch)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}

// HandleVulnerabilities checks all profiles against the record store and
// returns per-profile status without penalty detail.
func (h *ScoreHandler) HandleVulnerabilities(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		log.Printf("Profile listing failed: %v", err)
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	batch, err := h.Orchestrator.CheckBatch(r.Context(), profiles)
	if err != nil {
		log.Printf("Vulnerability check failed: %v", err)
		http.Error(w, "Vulnerability check failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}
