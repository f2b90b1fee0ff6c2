// Package telemetry keeps a local usage ledger for provider calls.
// Records are written asynchronously and failures never propagate into
// the request path.
package telemetry

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Usage is one provider-call record.
type Usage struct {
	ID               string
	Provider         string
	Model            string
	Pipeline         string
	UserID           string
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	Duration         time.Duration
	CreatedAt        time.Time
}

// Recorder accepts usage records without blocking the caller.
type Recorder interface {
	RecordAsync(u Usage)
}

// Nop is a Recorder that drops everything. Used when telemetry is
// disabled by configuration.
type Nop struct{}

// RecordAsync implements Recorder.
func (Nop) RecordAsync(Usage) {}

// Store persists usage records in a local SQLite database.
type Store struct {
	db      *sql.DB
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	wg      sync.WaitGroup
	now     func() time.Time
}

// Open opens (and if necessary creates) the usage ledger at path, with
// WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS usage_records (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	model TEXT,
	pipeline TEXT,
	user_id TEXT,
	prompt_tokens INTEGER DEFAULT 0,
	completion_tokens INTEGER DEFAULT 0,
	cost_usd REAL DEFAULT 0,
	duration_ms INTEGER DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
CREATE INDEX IF NOT EXISTS idx_usage_created ON usage_records(created_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Record writes one usage record synchronously.
func (s *Store) Record(ctx context.Context, u Usage) error {
	if u.ID == "" {
		s.mu.Lock()
		u.ID = ulid.MustNew(ulid.Now(), s.entropy).String()
		s.mu.Unlock()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO usage_records
	(id, provider, model, pipeline, user_id, prompt_tokens, completion_tokens, cost_usd, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Provider, u.Model, u.Pipeline, u.UserID,
		u.PromptTokens, u.CompletionTokens, u.CostUSD,
		u.Duration.Milliseconds(), u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// RecordAsync writes a usage record on its own goroutine. Errors are
// logged to stderr and swallowed: a broken ledger must never fail an
// analysis request.
func (s *Store) RecordAsync(u Usage) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Record(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry record failed: %v\n", err)
		}
	}()
}

// Count returns the number of stored usage records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records").Scan(&n)
	return n, err
}

// Close flushes in-flight async writes and closes the database.
func (s *Store) Close() error {
	s.wg.Wait()
	return s.db.Close()
}
