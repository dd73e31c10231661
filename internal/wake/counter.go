// Package wake keeps the wake-cycle counter that survives deep sleep.
package wake

import (
	"context"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// Store is a persisted WakeState slot
type Store interface {
	// Begin reads the persisted state and reports whether it was valid.
	Begin(ctx context.Context) bool
	// Data returns the in-memory state; mutations are persisted by Save.
	Data() *models.WakeState
	Save(ctx context.Context) error
}

// Counter loads and advances the wake counter once per cycle
type Counter struct {
	store  Store
	logger *zap.Logger
}

// NewCounter creates a counter backed by store
func NewCounter(store Store, logger *zap.Logger) *Counter {
	return &Counter{store: store, logger: logger}
}

// Load returns the counter for this wake and whether this is a fresh boot.
// Valid prior state yields counter+1; anything else resets to 0. The returned
// value is persisted immediately.
func (c *Counter) Load(ctx context.Context) (models.WakeState, bool) {
	state := c.store.Data()

	fresh := !c.store.Begin(ctx)
	if fresh {
		state.Counter = 0
		c.logger.Info("No valid wake state, starting fresh")
	} else {
		state.Counter++
	}

	if err := c.store.Save(ctx); err != nil {
		c.logger.Warn("Failed to persist wake state",
			zap.Int("counter", state.Counter),
			zap.Error(err))
	}

	return *state, fresh
}
