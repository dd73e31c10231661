package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koios/epaper-weather/internal/canvas"
	"github.com/koios/epaper-weather/internal/config"
	"github.com/koios/epaper-weather/internal/epd"
	"github.com/koios/epaper-weather/internal/fonts"
	"github.com/koios/epaper-weather/internal/handlers"
	"github.com/koios/epaper-weather/internal/hass"
	"github.com/koios/epaper-weather/internal/icons"
	"github.com/koios/epaper-weather/internal/redis"
	"github.com/koios/epaper-weather/internal/render"
	"github.com/koios/epaper-weather/internal/secrets"
	"github.com/koios/epaper-weather/internal/station"
	"github.com/koios/epaper-weather/internal/wake"
	"github.com/koios/epaper-weather/pkg/models"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Panel profile
	registry := models.NewProfileRegistry()
	if err := registry.LoadProfiles(cfg.Display.ProfilesPath); err != nil {
		logger.Warn("Failed to load panel profiles, using built-in profile",
			zap.String("path", cfg.Display.ProfilesPath),
			zap.Error(err))
	}
	for _, skipped := range registry.Skipped() {
		logger.Warn("Skipped invalid panel profile",
			zap.String("file", skipped.Path),
			zap.Error(skipped.Err))
	}
	profile, ok := registry.GetProfile(cfg.Display.Profile)
	if !ok {
		logger.Warn("Unknown panel profile, using built-in profile",
			zap.String("profile", cfg.Display.Profile))
		profile, _ = registry.GetProfile(models.DefaultProfileID)
	}

	// Home Assistant client
	token, err := secrets.ResolveToken(cfg.Hass, cfg.Secrets)
	if err != nil {
		logger.Fatal("Failed to resolve Home Assistant token", zap.Error(err))
	}
	hassClient, err := hass.NewClient(cfg.Hass.Endpoint, token, logger,
		hass.WithTimeout(cfg.Hass.Timeout),
		hass.WithMaxResponseSize(cfg.Hass.MaxResponseSize))
	if err != nil {
		logger.Fatal("Failed to create Home Assistant client", zap.Error(err))
	}

	// Fonts and glyphs
	faces, err := fonts.Load(cfg.Display.FontBookPath, cfg.Display.FontBoldPath, cfg.Display.FontDPI)
	if err != nil {
		logger.Fatal("Failed to load fonts", zap.Error(err))
	}
	resolver := icons.NewDefaultResolver()
	glyphs, err := icons.LoadGlyphs(os.DirFS(cfg.Display.GlyphsPath), resolver.Handles(), logger)
	if err != nil {
		logger.Fatal("Failed to load glyphs", zap.Error(err))
	}
	logger.Info("Loaded glyphs",
		zap.String("path", cfg.Display.GlyphsPath),
		zap.Int("count", glyphs.Len()))

	// Redis is optional unless it backs the wake store
	var redisClient *redis.Client
	if cfg.Redis.Publish || cfg.Wake.Store == "redis" || cfg.Mode == config.ModeDaemon {
		redisClient, err = redis.NewClient(cfg.Redis, logger)
		if err != nil {
			if cfg.Wake.Store == "redis" {
				logger.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			logger.Warn("Redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Wake counter
	store, err := wake.NewStore(cfg.Wake, redisCmdable(redisClient), logger)
	if err != nil {
		logger.Fatal("Failed to create wake store", zap.Error(err))
	}

	// Panel
	panel, closer, err := openPanel(cfg.Display, profile, logger)
	if err != nil {
		logger.Fatal("Failed to open panel", zap.Error(err))
	}
	if closer != nil {
		defer closer.Close()
	}

	pageHeight := profile.PageHeight
	if cfg.Display.PageHeight > 0 {
		pageHeight = cfg.Display.PageHeight
	}

	opts := station.Options{
		DeviceID:         cfg.DeviceID,
		Counter:          wake.NewCounter(store, logger),
		FullRefreshEvery: cfg.Wake.FullRefreshEvery,
		Fetcher:          hassClient,
		Renderer:         render.NewRenderer(render.LayoutFromProfile(profile, cfg.Display.Title), faces, resolver, glyphs),
		Resolver:         resolver,
		Panel:            panel,
		PageHeight:       pageHeight,
	}
	if redisClient != nil && cfg.Redis.Publish {
		opts.Publisher = redisClient
	}

	st, err := station.New(opts, logger)
	if err != nil {
		logger.Fatal("Failed to create station", zap.Error(err))
	}

	logger.Info("Station ready",
		zap.String("device_id", cfg.DeviceID),
		zap.String("mode", cfg.Mode),
		zap.String("profile", profile.ID),
		zap.String("driver", cfg.Display.Driver))

	if cfg.Mode != config.ModeDaemon {
		if _, err := st.RunCycle(context.Background(), false); err != nil {
			logger.Fatal("Wake cycle failed", zap.Error(err))
		}
		return
	}

	runDaemon(cfg, st, registry, redisClient, logger)
}

func runDaemon(cfg *config.Config, st *station.Station, registry *models.ProfileRegistry, redisClient *redis.Client, logger *zap.Logger) {
	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventHandler := handlers.NewEventHandler(st, logger)

	// Refresh requests over Redis
	var consumer *redis.Consumer
	if redisClient != nil {
		consumer = redis.NewConsumer(redisClient, eventHandler, cfg.DeviceID, logger)
		go func() {
			if err := consumer.Start(); err != nil {
				logger.Error("Redis consumer failed", zap.Error(err))
			}
		}()
	}

	// Status API
	var httpServer *http.Server
	if cfg.Server.Enabled {
		mux := http.NewServeMux()
		appHandler := handlers.NewAppHandler(eventHandler, st, registry, logger)
		appHandler.RegisterRoutes(mux)

		httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		}

		go func() {
			logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server failed", zap.Error(err))
				cancel()
			}
		}()
	}

	// Wake cycles
	cycles := make(chan struct{})
	go func() {
		defer close(cycles)
		if err := st.Run(ctx, cfg.Wake.Interval); err != nil {
			logger.Error("Wake loop failed", zap.Error(err))
			cancel()
		}
	}()

	logger.Info("Daemon started", zap.Duration("interval", cfg.Wake.Interval))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down station...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}

	if consumer != nil {
		consumer.Stop()
	}

	// Cancel the main context to stop the cycle loop
	cancel()

	select {
	case <-cycles:
		logger.Info("Station shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout exceeded")
	}
}

// openPanel returns the configured panel and, for hardware, its closer
func openPanel(cfg config.DisplayConfig, profile *models.PanelProfile, logger *zap.Logger) (canvas.Panel, io.Closer, error) {
	switch cfg.Driver {
	case "png", "":
		return canvas.NewPNGPanel(cfg.OutputPath, profile.Width, profile.Height, profile.Rotation), nil, nil
	case "waveshare2in13v4":
		hat, err := epd.OpenWaveshare2in13v4(cfg.SPIPort, logger)
		if err != nil {
			return nil, nil, err
		}
		if b := hat.Bounds(); b.Dx() != profile.Width || b.Dy() != profile.Height {
			logger.Warn("Panel size differs from profile, drawing will be clipped",
				zap.String("panel", b.String()),
				zap.Int("profile_width", profile.Width),
				zap.Int("profile_height", profile.Height))
		}
		return hat, hat, nil
	default:
		return nil, nil, fmt.Errorf("unknown display driver %q", cfg.Driver)
	}
}

// redisCmdable keeps a missing client an untyped nil
func redisCmdable(c *redis.Client) goredis.Cmdable {
	if c == nil {
		return nil
	}
	return c.Cmdable()
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}
