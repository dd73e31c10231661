package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/koios/epaper-weather/internal/config"
	"github.com/koios/epaper-weather/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps the Redis client for pub/sub operations
type Client struct {
	client *redis.Client
	config config.RedisConfig
	logger *zap.Logger
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
		PoolTimeout:  30 * time.Second,
	})

	// Test the connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return &Client{
		client: rdb,
		config: cfg,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Cmdable exposes the underlying client for key/value stores
func (c *Client) Cmdable() redis.Cmdable {
	return c.client
}

// ReportChannel is the channel cycle reports of a device are published on
func ReportChannel(deviceID string) string {
	return fmt.Sprintf("device:%s", deviceID)
}

// RefreshChannel is the channel a device listens on for refresh requests
func RefreshChannel(deviceID string) string {
	return fmt.Sprintf("device:%s:refresh", deviceID)
}

// PublishCycleReport publishes a cycle report to the device-specific channel
func (c *Client) PublishCycleReport(ctx context.Context, report *models.CycleReport) error {
	return publishCycleReport(ctx, c.client, c.logger, report)
}

func publishCycleReport(ctx context.Context, rdb redis.Cmdable, logger *zap.Logger, report *models.CycleReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle report: %w", err)
	}

	channel := ReportChannel(report.DeviceID)

	if err := rdb.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}

	logger.Debug("Published cycle report",
		zap.String("channel", channel),
		zap.String("device_id", report.DeviceID),
		zap.Int("counter", report.Counter),
		zap.String("mode", report.Mode))

	return nil
}

// IsHealthy checks if Redis connection is healthy
func (c *Client) IsHealthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
