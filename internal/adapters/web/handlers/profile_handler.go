package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
)

// ProfileHandler serves device profile CRUD endpoints.
type ProfileHandler struct {
	Profiles ports.ProfileRepository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ports.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// HandleList returns all stored profiles.
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		log.Printf("Profile listing failed: %v", err)
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// HandleGet returns a single profile by name.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	profile, err := h.Profiles.Get(r.Context(), name)
	if errors.Is(err, ports.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Profile lookup failed: %v", err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// HandleSave creates or updates a profile.
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var profile domain.DeviceProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		http.Error(w, "Profile name is required", http.StatusBadRequest)
		return
	}

	if err := h.Profiles.Save(r.Context(), profile); err != nil {
		log.Printf("Profile save failed: %v", err)
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "saved",
		"name":   profile.Name,
	})
}

// HandleDelete removes a profile by name.
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := h.Profiles.Delete(r.Context(), name)
	if errors.Is(err, ports.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Profile delete failed: %v", err)
		http.Error(w, "Failed to delete profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "deleted",
		"name":   name,
	})
}
