package handlers

import (
	"context"
	"fmt"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// RefreshRequestType is the only request type accepted from the refresh channel
const RefreshRequestType = "refresh_request"

// Station runs wake cycles and remembers the most recent one
type Station interface {
	RunCycle(ctx context.Context, forceFull bool) (*models.CycleReport, error)
	LastReport() (*models.CycleReport, bool)
	LastSnapshot() (*models.DashboardSnapshot, bool)
	LastFrame() ([]byte, bool)
}

// EventHandler turns refresh requests into wake cycles
type EventHandler struct {
	station Station
	logger  *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(station Station, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		station: station,
		logger:  logger,
	}
}

// Handle processes a refresh request event
func (h *EventHandler) Handle(ctx context.Context, request *models.RefreshRequest) (*models.CycleReport, error) {
	h.logger.Info("Processing refresh request",
		zap.String("type", request.Type),
		zap.Bool("force_full", request.ForceFull),
		zap.String("reason", request.Reason))

	// Validate request
	if request.Type != "" && request.Type != RefreshRequestType {
		h.logger.Error("Invalid request type", zap.String("type", request.Type))
		return nil, fmt.Errorf("invalid request type: %s", request.Type)
	}

	report, err := h.station.RunCycle(ctx, request.ForceFull)
	if err != nil {
		h.logger.Error("Refresh request failed",
			zap.Error(err),
			zap.String("reason", request.Reason))
		return report, err
	}

	h.logger.Info("Refresh request completed successfully",
		zap.Int("counter", report.Counter),
		zap.String("mode", report.Mode))

	return report, nil
}
