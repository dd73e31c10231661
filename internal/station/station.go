// Package station runs wake cycles: counter, refresh mode, fetch, render, power off.
package station

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/koios/epaper-weather/internal/canvas"
	"github.com/koios/epaper-weather/internal/icons"
	"github.com/koios/epaper-weather/internal/refresh"
	"github.com/koios/epaper-weather/internal/render"
	"github.com/koios/epaper-weather/internal/wake"
	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// Fetcher supplies the snapshot of one cycle; it never fails
type Fetcher interface {
	Fetch(ctx context.Context) models.DashboardSnapshot
}

// Publisher receives the report of every cycle
type Publisher interface {
	PublishCycleReport(ctx context.Context, report *models.CycleReport) error
}

// Station owns the panel for the lifetime of the process
type Station struct {
	deviceID string
	counter  *wake.Counter
	selector refresh.Selector
	fetcher  Fetcher
	renderer *render.Renderer
	resolver *icons.Resolver
	fb       *canvas.Framebuffer
	panel    canvas.Panel
	logger   *zap.Logger

	publisher Publisher

	mu           sync.Mutex // serializes cycles
	lastMu       sync.RWMutex
	lastReport   *models.CycleReport
	lastSnapshot *models.DashboardSnapshot
	lastFrame    []byte

	now func() time.Time
}

// Options carries the collaborators of a Station
type Options struct {
	DeviceID         string
	Counter          *wake.Counter
	FullRefreshEvery int
	Fetcher          Fetcher
	Renderer         *render.Renderer
	Resolver         *icons.Resolver
	Panel            canvas.Panel
	PageHeight       int
	Publisher        Publisher
}

// New creates a station drawing into a framebuffer on opts.Panel
func New(opts Options, logger *zap.Logger) (*Station, error) {
	switch {
	case opts.Counter == nil:
		return nil, fmt.Errorf("station requires a wake counter")
	case opts.Fetcher == nil:
		return nil, fmt.Errorf("station requires a fetcher")
	case opts.Renderer == nil:
		return nil, fmt.Errorf("station requires a renderer")
	case opts.Panel == nil:
		return nil, fmt.Errorf("station requires a panel")
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = icons.NewDefaultResolver()
	}

	return &Station{
		deviceID:  opts.DeviceID,
		counter:   opts.Counter,
		selector:  refresh.Selector{Every: opts.FullRefreshEvery},
		fetcher:   opts.Fetcher,
		renderer:  opts.Renderer,
		resolver:  resolver,
		fb:        canvas.NewFramebuffer(opts.Panel, opts.PageHeight),
		panel:     opts.Panel,
		logger:    logger,
		publisher: opts.Publisher,
		now:       time.Now,
	}, nil
}

// RunCycle runs one wake cycle. forceFull overrides the selected mode.
// Data problems only degrade the render; the returned error reports panel
// failures, and the report is returned either way.
func (s *Station) RunCycle(ctx context.Context, forceFull bool) (*models.CycleReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, fresh := s.counter.Load(ctx)
	mode := s.selector.Select(state.Counter, fresh)
	if forceFull {
		mode = refresh.Full
	}
	refresh.Apply(s.fb, mode)

	s.logger.Info("Wake cycle started",
		zap.Int("counter", state.Counter),
		zap.Bool("fresh_boot", fresh),
		zap.String("mode", mode.String()))

	snap := s.fetcher.Fetch(ctx)
	s.logUnknownConditions(&snap)

	passes := s.renderer.Draw(s.fb, &snap)
	cycleErr := s.fb.Err()

	if err := s.panel.PowerOff(); err != nil && cycleErr == nil {
		cycleErr = fmt.Errorf("failed to power off panel: %w", err)
	}

	report := &models.CycleReport{
		Type:         "cycle_report",
		DeviceID:     s.deviceID,
		Counter:      state.Counter,
		FreshBoot:    fresh,
		Mode:         mode.String(),
		DataReceived: snap.Received,
		Pages:        passes,
		RenderedAt:   s.now(),
	}

	frame, err := encodeFrame(s.fb)
	if err != nil {
		s.logger.Warn("Failed to encode frame", zap.Error(err))
	} else {
		report.RenderOutput = base64.StdEncoding.EncodeToString(frame)
	}

	s.lastMu.Lock()
	s.lastReport = report
	s.lastSnapshot = &snap
	s.lastFrame = frame
	s.lastMu.Unlock()

	if cycleErr != nil {
		s.logger.Error("Wake cycle failed to reach the panel",
			zap.Int("counter", state.Counter),
			zap.Error(cycleErr))
	} else {
		s.logger.Info("Wake cycle completed",
			zap.Int("counter", state.Counter),
			zap.String("mode", report.Mode),
			zap.Bool("data_received", report.DataReceived),
			zap.Int("pages", passes))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCycleReport(ctx, report); err != nil {
			s.logger.Warn("Failed to publish cycle report", zap.Error(err))
		}
	}

	return report, cycleErr
}

// Run cycles every interval until ctx is done. The first cycle runs immediately.
func (s *Station) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("wake interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunCycle(ctx, false); err != nil {
			s.logger.Warn("Cycle error, continuing", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// LastReport returns the report of the most recent cycle, if any
func (s *Station) LastReport() (*models.CycleReport, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastReport, s.lastReport != nil
}

// LastSnapshot returns the data record of the most recent cycle, if any
func (s *Station) LastSnapshot() (*models.DashboardSnapshot, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastSnapshot, s.lastSnapshot != nil
}

// LastFrame returns the PNG of the most recent frame, if any
func (s *Station) LastFrame() ([]byte, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastFrame, s.lastFrame != nil
}

func (s *Station) logUnknownConditions(snap *models.DashboardSnapshot) {
	if !s.resolver.Known(snap.ForecastNow, icons.Large) {
		s.logger.Debug("Unknown condition, using fallback icon",
			zap.String("condition", string(snap.ForecastNow)),
			zap.String("slot", "now"))
	}
	for i, fc := range snap.Forecasts {
		if !s.resolver.Known(fc.Condition, icons.Small) {
			s.logger.Debug("Unknown condition, using fallback icon",
				zap.String("condition", string(fc.Condition)),
				zap.Int("offset_hours", models.ForecastOffsets[i]))
		}
	}
}

func encodeFrame(fb *canvas.Framebuffer) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fb.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
