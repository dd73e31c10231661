package wake

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strconv"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

// fileRecord is the on-disk layout; Checksum guards against torn or edited files
type fileRecord struct {
	Counter  int    `json:"counter"`
	Checksum uint32 `json:"checksum"`
}

func checksum(counter int) uint32 {
	return crc32.ChecksumIEEE([]byte(strconv.Itoa(counter)))
}

// FileStore persists the state as a small JSON file
type FileStore struct {
	path   string
	state  models.WakeState
	logger *zap.Logger
}

// NewFileStore creates a store at path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Begin loads the file; a missing, unreadable or corrupt file is not valid state
func (s *FileStore) Begin(ctx context.Context) bool {
	s.state = models.WakeState{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read wake state", zap.String("path", s.path), zap.Error(err))
		}
		return false
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("Corrupt wake state", zap.String("path", s.path), zap.Error(err))
		return false
	}
	if rec.Counter < 0 || rec.Checksum != checksum(rec.Counter) {
		s.logger.Warn("Wake state checksum mismatch", zap.String("path", s.path))
		return false
	}

	s.state.Counter = rec.Counter
	return true
}

// Data returns the working state
func (s *FileStore) Data() *models.WakeState {
	return &s.state
}

// Save writes the state through a temp file and rename
func (s *FileStore) Save(ctx context.Context) error {
	data, err := json.Marshal(fileRecord{Counter: s.state.Counter, Checksum: checksum(s.state.Counter)})
	if err != nil {
		return fmt.Errorf("failed to marshal wake state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".wake-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write wake state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace wake state: %w", err)
	}

	return nil
}
