package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Snapshot is one persisted analysis run.
type Snapshot struct {
	ID         int64           `json:"id"`
	Symbol     string          `json:"symbol"`
	AsOf       string          `json:"as_of"` // latest bar date
	Signals    json.RawMessage `json:"signals"`
	Outlook    json.RawMessage `json:"outlook"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Repository persists analysis snapshots to postgres. The engine never
// touches it; the API server calls it best-effort after each run.
type Repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT NOT NULL,
	as_of      TEXT NOT NULL,
	signals    JSONB NOT NULL,
	outlook    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_snapshots_symbol ON analysis_snapshots (symbol, as_of);
`

// NewRepository connects to postgres and ensures the schema exists.
func NewRepository(ctx context.Context, url string, logger zerolog.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return &Repository{
		pool:   pool,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// SaveSnapshot inserts one analysis run.
func (r *Repository) SaveSnapshot(ctx context.Context, symbol, asOf string, signals, outlook interface{}) error {
	sigJSON, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}
	outJSON, err := json.Marshal(outlook)
	if err != nil {
		return fmt.Errorf("failed to marshal outlook: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO analysis_snapshots (symbol, as_of, signals, outlook) VALUES ($1, $2, $3, $4)`,
		symbol, asOf, sigJSON, outJSON)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshots returns the most recent runs for a symbol, newest
// first.
func (r *Repository) LatestSnapshots(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, as_of, signals, outlook, created_at
		 FROM analysis_snapshots WHERE symbol = $1
		 ORDER BY created_at DESC LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Symbol, &s.AsOf, &s.Signals, &s.Outlook, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
