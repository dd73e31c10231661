package wake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/koios/epaper-weather/internal/config"
	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// failingStore reports valid state but cannot persist
type failingStore struct {
	state models.WakeState
	saves int
}

func (s *failingStore) Begin(ctx context.Context) bool { return true }
func (s *failingStore) Data() *models.WakeState        { return &s.state }
func (s *failingStore) Save(ctx context.Context) error {
	s.saves++
	return errors.New("flash worn out")
}

func TestCounter_FreshBootThenIncrements(t *testing.T) {
	ctx := context.Background()
	counter := NewCounter(NewMemoryStore(), zap.NewNop())

	state, fresh := counter.Load(ctx)
	if !fresh || state.Counter != 0 {
		t.Fatalf("first load = (%d, %v), want (0, true)", state.Counter, fresh)
	}

	for want := 1; want <= 3; want++ {
		state, fresh = counter.Load(ctx)
		if fresh {
			t.Fatalf("load %d reported fresh boot", want)
		}
		if state.Counter != want {
			t.Errorf("counter = %d, want %d", state.Counter, want)
		}
	}
}

func TestCounter_InvalidatedStateResets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	counter := NewCounter(store, zap.NewNop())

	counter.Load(ctx)
	counter.Load(ctx)
	store.Invalidate()

	state, fresh := counter.Load(ctx)
	if !fresh || state.Counter != 0 {
		t.Errorf("after invalidate = (%d, %v), want (0, true)", state.Counter, fresh)
	}
}

func TestCounter_SaveFailureIsNotEscalated(t *testing.T) {
	store := &failingStore{state: models.WakeState{Counter: 4}}
	counter := NewCounter(store, zap.NewNop())

	state, fresh := counter.Load(context.Background())
	if fresh || state.Counter != 5 {
		t.Errorf("load = (%d, %v), want (5, false)", state.Counter, fresh)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("missing file is fresh boot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "wake.json")
		counter := NewCounter(NewFileStore(path, logger), logger)

		state, fresh := counter.Load(ctx)
		if !fresh || state.Counter != 0 {
			t.Fatalf("load = (%d, %v), want (0, true)", state.Counter, fresh)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("state file not written: %v", err)
		}
	})

	t.Run("survives a new process", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wake.json")

		first := NewCounter(NewFileStore(path, logger), logger)
		first.Load(ctx)
		first.Load(ctx)

		// A new store instance stands in for the next wake.
		second := NewCounter(NewFileStore(path, logger), logger)
		state, fresh := second.Load(ctx)
		if fresh || state.Counter != 2 {
			t.Errorf("load = (%d, %v), want (2, false)", state.Counter, fresh)
		}
	})

	t.Run("corrupt file is fresh boot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wake.json")
		os.WriteFile(path, []byte(`{"counter": 7, "checksum": 1}`), 0644)

		store := NewFileStore(path, logger)
		if store.Begin(ctx) {
			t.Error("Begin() = true for checksum mismatch")
		}
		if store.Data().Counter != 0 {
			t.Errorf("counter = %d after invalid load, want 0", store.Data().Counter)
		}
	})

	t.Run("garbage is fresh boot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wake.json")
		os.WriteFile(path, []byte("\x00\xff\x13"), 0644)

		if NewFileStore(path, logger).Begin(ctx) {
			t.Error("Begin() = true for garbage")
		}
	})
}

func TestNewStore(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		cfg     config.WakeConfig
		wantErr bool
	}{
		{"file", config.WakeConfig{Store: "file", StatePath: filepath.Join(t.TempDir(), "w.json")}, false},
		{"memory", config.WakeConfig{Store: "memory"}, false},
		{"redis without client", config.WakeConfig{Store: "redis", RedisKey: "k"}, true},
		{"unknown", config.WakeConfig{Store: "eeprom"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.cfg, nil, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && store == nil {
				t.Error("expected a store")
			}
		})
	}
}
