package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/koios/epaper-weather/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RefreshHandler runs a wake cycle on request
type RefreshHandler interface {
	Handle(ctx context.Context, request *models.RefreshRequest) (*models.CycleReport, error)
}

// Consumer listens for refresh requests on the device refresh channel
type Consumer struct {
	client   *Client
	handler  RefreshHandler
	deviceID string
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewConsumer creates a new Redis consumer
func NewConsumer(client *Client, handler RefreshHandler, deviceID string, logger *zap.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		client:   client,
		handler:  handler,
		deviceID: deviceID,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start consumes refresh requests until Stop is called
func (c *Consumer) Start() error {
	channel := RefreshChannel(c.deviceID)
	c.logger.Info("Starting Redis consumer for refresh requests", zap.String("channel", channel))

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("Redis consumer stopped")
			return nil
		default:
			if err := c.consume(channel); err != nil {
				c.logger.Error("Error consuming messages, will retry",
					zap.Error(err),
					zap.Duration("retry_delay", 5*time.Second))
				select {
				case <-c.ctx.Done():
				case <-time.After(5 * time.Second):
				}
			}
		}
	}
}

// Stop stops the consumer
func (c *Consumer) Stop() {
	c.logger.Info("Stopping Redis consumer")
	c.cancel()
}

// consume subscribes and dispatches messages until the subscription breaks
func (c *Consumer) consume(channel string) error {
	sub := c.client.client.Subscribe(c.ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(c.ctx); err != nil {
		if c.ctx.Err() != nil {
			return nil
		}
		return err
	}

	messages := sub.Channel()
	for {
		select {
		case <-c.ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handleMessage(msg)
		}
	}
}

// handleMessage processes a single refresh request
func (c *Consumer) handleMessage(msg *redis.Message) {
	c.logger.Debug("Received refresh request", zap.String("channel", msg.Channel))

	var request models.RefreshRequest
	if err := json.Unmarshal([]byte(msg.Payload), &request); err != nil {
		c.logger.Error("Failed to unmarshal refresh request",
			zap.Error(err),
			zap.String("payload", msg.Payload))
		return
	}

	report, err := c.handler.Handle(c.ctx, &request)
	if err != nil {
		c.logger.Error("Failed to handle refresh request",
			zap.Error(err),
			zap.String("reason", request.Reason))
		return
	}

	c.logger.Debug("Refresh request processed",
		zap.Int("counter", report.Counter),
		zap.String("mode", report.Mode))
}
