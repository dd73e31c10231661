package wake

import (
	"context"
	"sync"

	"github.com/koios/epaper-weather/pkg/models"
)

// MemoryStore keeps the state in process memory.
// It is valid once it has been saved at least once.
type MemoryStore struct {
	mu    sync.Mutex
	state models.WakeState
	saved *models.WakeState
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Begin restores the last saved state
func (s *MemoryStore) Begin(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved == nil {
		s.state = models.WakeState{}
		return false
	}
	s.state = *s.saved
	return true
}

// Data returns the working state
func (s *MemoryStore) Data() *models.WakeState {
	return &s.state
}

// Save snapshots the working state
func (s *MemoryStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.state
	s.saved = &saved
	return nil
}

// Invalidate drops the saved state, as a power loss would
func (s *MemoryStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
}
