package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/uwillc/netposture/internal/adapters/reporting"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
)

// ReportHandler serves downloadable PDF score reports.
type ReportHandler struct {
	Profiles     ports.ProfileRepository
	Orchestrator *scoring.Orchestrator
	Exporter     *reporting.PDFExporter
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(profiles ports.ProfileRepository, orchestrator *scoring.Orchestrator, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{
		Profiles:     profiles,
		Orchestrator: orchestrator,
		Exporter:     exporter,
	}
}

// HandleScoreReport scores all profiles and streams the result as PDF.
func (h *ReportHandler) HandleScoreReport(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		log.Printf("Profile listing failed: %v", err)
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	batch, err := h.Orchestrator.ScoreBatch(r.Context(), profiles, scoring.BatchOptions{})
	if err != nil {
		log.Printf("Batch scoring failed: %v", err)
		http.Error(w, "Scoring failed", http.StatusInternalServerError)
		return
	}

	data, err := h.Exporter.ExportBatchScores(batch)
	if err != nil {
		log.Printf("PDF export failed: %v", err)
		http.Error(w, "Report generation failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("security-scores-%s.pdf", batch.Timestamp.Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
