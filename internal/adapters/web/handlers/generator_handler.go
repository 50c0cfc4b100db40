package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/uwillc/netposture/internal/core/services/generator"
)

// GeneratorHandler serves the hardening-config generator endpoints.
type GeneratorHandler struct{}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler() *GeneratorHandler {
	return &GeneratorHandler{}
}

// GeneratedConfig is the common response envelope for generated snippets.
type GeneratedConfig struct {
	Device string `json:"device,omitempty"`
	Config string `json:"config"`
	Format string `json:"format"`
}

// HandleSNMPv3 generates an SNMPv3 monitoring configuration.
func (h *GeneratorHandler) HandleSNMPv3(w http.ResponseWriter, r *http.Request) {
	var req generator.SNMPv3Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg, err := generator.GenerateSNMPv3(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeGenerated(w, req.Device, cfg, req.OutputFormat)
}

// HandleNTP generates an NTP time-sync configuration.
func (h *GeneratorHandler) HandleNTP(w http.ResponseWriter, r *http.Request) {
	var req generator.NTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg, err := generator.GenerateNTP(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeGenerated(w, req.Device, cfg, req.OutputFormat)
}

// HandleAAA generates an AAA/TACACS+ configuration.
func (h *GeneratorHandler) HandleAAA(w http.ResponseWriter, r *http.Request) {
	var req generator.AAARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg, err := generator.GenerateAAA(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeGenerated(w, req.Device, cfg, req.OutputFormat)
}

func writeGenerated(w http.ResponseWriter, device, cfg, format string) {
	if format != generator.FormatOneline {
		format = generator.FormatCLI
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GeneratedConfig{
		Device: device,
		Config: cfg,
		Format: format,
	})
}
