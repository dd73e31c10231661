package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const maxProfileBody = 64 << 10

// ProfileValidationResponse is returned by POST /profiles/validate
type ProfileValidationResponse struct {
	Valid   bool                     `json:"valid"`
	Errors  []models.ValidationError `json:"errors,omitempty"`
	Profile *models.PanelProfile     `json:"profile,omitempty"`
}

// DecodeProfile parses a profile body as JSON or YAML depending on contentType.
// Anything that is not JSON is read as YAML, which also accepts JSON.
func DecodeProfile(contentType string, body []byte) (*models.PanelProfile, error) {
	var profile models.PanelProfile

	if strings.HasPrefix(contentType, "application/json") {
		if err := json.Unmarshal(body, &profile); err != nil {
			return nil, fmt.Errorf("invalid JSON profile: %w", err)
		}
		return &profile, nil
	}

	if err := yaml.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("invalid YAML profile: %w", err)
	}
	return &profile, nil
}

// handleValidateProfile handles POST /profiles/validate - checks a profile without loading it
func (h *AppHandler) handleValidateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProfileBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	profile, err := DecodeProfile(r.Header.Get("Content-Type"), body)
	if err != nil {
		h.logger.Debug("Rejected profile body", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	errs := profile.Validate()
	response := ProfileValidationResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
	if response.Valid {
		response.Profile = profile
	}

	h.writeJSON(w, http.StatusOK, response)
}
