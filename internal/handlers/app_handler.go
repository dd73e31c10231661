package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// RefreshBody is the optional body of POST /refresh
type RefreshBody struct {
	ForceFull bool   `json:"force_full"`
	Reason    string `json:"reason"`
}

// AppHandler serves the station status API
type AppHandler struct {
	events   *EventHandler
	station  Station
	profiles *models.ProfileRegistry
	logger   *zap.Logger
}

// NewAppHandler creates a new app handler
func NewAppHandler(events *EventHandler, station Station, profiles *models.ProfileRegistry, logger *zap.Logger) *AppHandler {
	return &AppHandler{
		events:   events,
		station:  station,
		profiles: profiles,
		logger:   logger,
	}
}

// RegisterRoutes registers the status routes
func (h *AppHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/frame.png", h.handleFrame)
	mux.HandleFunc("/snapshot", h.handleSnapshot)
	mux.HandleFunc("/cycle", h.handleCycle)
	mux.HandleFunc("/refresh", h.handleRefresh)
	mux.HandleFunc("/profiles", h.handleProfiles)
	mux.HandleFunc("/profiles/validate", h.handleValidateProfile)
	mux.HandleFunc("/profiles/", h.handleProfileDetails)
}

// handleHealth handles GET /health - returns service health status
func (h *AppHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, cycled := h.station.LastReport()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "epaper-weather",
		"version": "1.0.0",
		"cycled":  cycled,
	})
}

// handleFrame handles GET /frame.png - returns the last rendered frame
func (h *AppHandler) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, ok := h.station.LastFrame()
	if !ok {
		http.Error(w, "No frame rendered yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(frame); err != nil {
		h.logger.Debug("Failed to write frame", zap.Error(err))
	}
}

// handleSnapshot handles GET /snapshot - returns the data record of the last cycle
func (h *AppHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, ok := h.station.LastSnapshot()
	if !ok {
		http.Error(w, "No snapshot yet", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}

// handleCycle handles GET /cycle - returns the last cycle report
func (h *AppHandler) handleCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, ok := h.station.LastReport()
	if !ok {
		http.Error(w, "No cycle yet", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// handleRefresh handles POST /refresh - runs a wake cycle now
func (h *AppHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body RefreshBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	report, err := h.events.Handle(r.Context(), &models.RefreshRequest{
		Type:      RefreshRequestType,
		ForceFull: body.ForceFull,
		Reason:    body.Reason,
	})
	if err != nil {
		if report == nil {
			http.Error(w, "Refresh failed", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"status": "panel_error",
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// handleProfiles handles GET /profiles - returns all panel profiles
func (h *AppHandler) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profiles := h.profiles.GetProfilesList()
	h.writeJSON(w, http.StatusOK, profiles)

	h.logger.Debug("Served profiles list", zap.Int("count", len(profiles)))
}

// handleProfileDetails handles GET /profiles/{id}
func (h *AppHandler) handleProfileDetails(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/profiles/"), "/")
	if id == "" {
		http.Error(w, "Profile ID required", http.StatusBadRequest)
		return
	}
	if strings.Contains(id, "/") {
		http.Error(w, "Endpoint not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profile, ok := h.profiles.GetProfile(id)
	if !ok {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

func (h *AppHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
