package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"portfolio/api/database"
)

// StateStore persists AnalyticsStore counters between restarts.
type StateStore interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
}

// PostgresStateStore keeps the state as a single JSONB row.
type PostgresStateStore struct {
	db *sql.DB
}

func NewPostgresStateStore(client *database.DBClient) *PostgresStateStore {
	return &PostgresStateStore{db: client.DB}
}

func (s *PostgresStateStore) Load(ctx context.Context) (*State, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM analytics_state WHERE id = 1`).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load analytics state: %w", err)
	}

	var st State
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("failed to decode analytics state: %w", err)
	}
	return &st, nil
}

func (s *PostgresStateStore) Save(ctx context.Context, st *State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode analytics state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_state (id, payload, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, payload)
	if err != nil {
		return fmt.Errorf("failed to save analytics state: %w", err)
	}
	return nil
}

// FileStateStore writes the state as JSON next to the binary. Writes go
// through a temp file and rename so a crash never leaves half a file.
type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Load(_ context.Context) (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", s.path, err)
	}
	return &st, nil
}

func (s *FileStateStore) Save(_ context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode analytics state: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// StateSaver periodically flushes AnalyticsStore to a StateStore.
type StateSaver struct {
	store    *AnalyticsStore
	backend  StateStore
	interval time.Duration
	logger   *zap.Logger

	savedVersion uint64
}

func NewStateSaver(s *AnalyticsStore, backend StateStore, interval time.Duration, logger *zap.Logger) *StateSaver {
	return &StateSaver{
		store:    s,
		backend:  backend,
		interval: interval,
		logger:   logger,
	}
}

// Restore loads saved state into the store. Missing state is not an error.
func (w *StateSaver) Restore(ctx context.Context) error {
	st, err := w.backend.Load(ctx)
	if errors.Is(err, ErrStateNotFound) {
		w.logger.Info("no saved analytics state, starting empty")
		return nil
	}
	if err != nil {
		return err
	}

	w.store.RestoreState(st)
	w.savedVersion = w.store.Version()

	total, unique := w.store.Totals()
	w.logger.Info("analytics state restored",
		zap.Time("saved_at", st.SavedAt),
		zap.Int("total_visits", total),
		zap.Int("unique_visitors", unique),
	)
	return nil
}

// Run saves on every tick until ctx is cancelled, then saves once more.
func (w *StateSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := w.Flush(flushCtx); err != nil {
				w.logger.Error("final analytics state save failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.logger.Warn("analytics state save failed", zap.Error(err))
			}
		}
	}
}

// Flush saves the store if it changed since the last successful save.
func (w *StateSaver) Flush(ctx context.Context) error {
	version := w.store.Version()
	if version == w.savedVersion {
		return nil
	}
	if err := w.backend.Save(ctx, w.store.ExportState()); err != nil {
		return err
	}
	w.savedVersion = version
	w.logger.Debug("analytics state saved", zap.Uint64("version", version))
	return nil
}
