package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/security"
)

// FileWeightStore keeps the configuration in a single JSON or YAML file.
// Writes go to a temporary file that is renamed over the target. Update
// compares the blake3 revision of the file before replacing it, so
// writers in other processes are detected.
type FileWeightStore struct {
	path   string
	format Format
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileWeightStore creates a store for path. The encoding follows the
// file extension.
func NewFileWeightStore(path string, logger *slog.Logger) (*FileWeightStore, error) {
	clean, err := security.ValidateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid weights path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWeightStore{
		path:   clean,
		format: FormatForPath(clean),
		logger: logger,
	}, nil
}

// Path returns the resolved file path.
func (s *FileWeightStore) Path() string {
	return s.path
}

// Load reads and decodes the file.
func (s *FileWeightStore) Load(_ context.Context) (domain.WeightConfig, error) {
	cfg, _, err := s.read()
	return cfg, err
}

// Save encodes cfg and atomically replaces the file.
func (s *FileWeightStore) Save(_ context.Context, cfg domain.WeightConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := EncodeConfig(cfg, s.format)
	if err != nil {
		return err
	}
	return s.write(data)
}

// Update runs a read-modify-write cycle. A missing or malformed file is
// passed to fn as found=false.
func (s *FileWeightStore) Update(ctx context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.WeightConfig{}, err
		}

		current, revision, err := s.read()
		found := err == nil
		switch {
		case errors.Is(err, domain.ErrConfigNotFound):
		case errors.Is(err, domain.ErrConfigCorrupt):
			s.logger.WarnContext(ctx, "replacing malformed weights file", "path", s.path, "error", err)
		case err != nil:
			return domain.WeightConfig{}, err
		}

		next, err := fn(current, found)
		if err != nil {
			return domain.WeightConfig{}, err
		}
		data, err := EncodeConfig(next, s.format)
		if err != nil {
			return domain.WeightConfig{}, err
		}

		latest, err := s.revision()
		if err != nil {
			return domain.WeightConfig{}, err
		}
		if latest != revision {
			s.logger.DebugContext(ctx, "weights file changed during update, retrying",
				"path", s.path,
				"attempt", attempt,
			)
			continue
		}

		if err := s.write(data); err != nil {
			return domain.WeightConfig{}, err
		}
		return next, nil
	}
	return domain.WeightConfig{}, ErrConcurrentUpdate
}

// Revision returns the blake3 digest of the current file, or "" when the
// file does not exist.
func (s *FileWeightStore) Revision() (string, error) {
	return s.revision()
}

// Ping checks that the file, if present, is readable.
func (s *FileWeightStore) Ping(context.Context) error {
	_, err := s.revision()
	return err
}

func (s *FileWeightStore) read() (domain.WeightConfig, string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.WeightConfig{}, "", domain.ErrConfigNotFound
	}
	if err != nil {
		return domain.WeightConfig{}, "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	revision := Revision(data)
	cfg, err := DecodeConfig(data, s.format)
	if err != nil {
		return domain.WeightConfig{}, revision, err
	}
	return cfg, revision, nil
}

func (s *FileWeightStore) revision() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return Revision(data), nil
}

func (s *FileWeightStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
