package synthcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dubmix/internal/audio"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Old caches must be deleted.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

var (
	// ErrSchemaMismatch indicates the cache was written by an incompatible version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrCorruptEntry marks a cached blob whose length disagrees with its sample count.
	ErrCorruptEntry = errors.New("corrupt cache entry")
)

// Store persists clips in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one cached clip.
type Entry struct {
	Key     string
	Backend string
	Speaker string
	Audio   audio.Buffer
}

// Open creates or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("synthcache: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: cache has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get returns the clip stored under key. The boolean is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (audio.Buffer, bool, error) {
	ctx = ensureContext(ctx)
	var (
		rate  int
		count int
		blob  []byte
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT sample_rate, sample_count, samples FROM clips WHERE key = ?", key,
		).Scan(&rate, &count, &blob)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return audio.Buffer{}, false, nil
	}
	if err != nil {
		return audio.Buffer{}, false, fmt.Errorf("get clip: %w", err)
	}
	samples, err := decodeSamples(blob, count)
	if err != nil {
		return audio.Buffer{}, false, fmt.Errorf("get clip %s: %w", key, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_ = retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, "UPDATE clips SET last_used_at = ? WHERE key = ?", now, key)
		return execErr
	})
	return audio.Buffer{Samples: samples, SampleRate: rate}, true, nil
}

// Put stores or replaces an entry.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	ctx = ensureContext(ctx)
	if entry.Audio.Empty() {
		return fmt.Errorf("put clip %s: %w", entry.Key, audio.ErrDegenerateAudio)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	blob := encodeSamples(entry.Audio.Samples)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO clips (key, backend, speaker, sample_rate, sample_count, samples, created_at, last_used_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(key) DO UPDATE SET
                 sample_rate = excluded.sample_rate,
                 sample_count = excluded.sample_count,
                 samples = excluded.samples,
                 last_used_at = excluded.last_used_at`,
			entry.Key, entry.Backend, entry.Speaker,
			entry.Audio.SampleRate, len(entry.Audio.Samples), blob, now, now,
		)
		if err != nil {
			return fmt.Errorf("put clip: %w", err)
		}
		return nil
	})
}

// Count returns the number of cached clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM clips").Scan(&n); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return n, nil
}

// Prune removes entries not used since cutoff and returns how many were deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM clips WHERE last_used_at < ?", cutoff.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune clips: %w", err)
	}
	return affected, nil
}

func encodeSamples(samples []float32) []byte {
	blob := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeSamples(blob []byte, count int) ([]float32, error) {
	if count <= 0 || len(blob) != 4*count {
		return nil, fmt.Errorf("%w: %d bytes for %d samples", ErrCorruptEntry, len(blob), count)
	}
	samples := make([]float32, count)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return samples, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
