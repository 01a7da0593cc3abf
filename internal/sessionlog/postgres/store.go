// Package postgres implements the session log (spec §6's "persisted state
// (consumed but not defined here): session log (append-only list of
// Segments)") as a PostgreSQL-backed append-only store.
//
// Grounded on the teacher's pkg/memory/postgres.Store/SessionStoreImpl: one
// pgxpool.Pool, a migration step run at construction, and a GIN full-text
// index mirroring session_entries — reduced to the single Segment table
// this spec actually needs (no L2 semantic index, no L3 knowledge graph;
// see DESIGN.md for why those layers were dropped).
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nullshift/vocalops/pkg/types"
)

const ddlSegments = `
CREATE TABLE IF NOT EXISTS segments (
    id         TEXT         PRIMARY KEY,
    text       TEXT         NOT NULL,
    start_ms   BIGINT       NOT NULL,
    end_ms     BIGINT       NOT NULL,
    speaker_id TEXT         NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_segments_created_at ON segments (created_at);

CREATE INDEX IF NOT EXISTS idx_segments_fts
    ON segments USING GIN (to_tsvector('english', text));
`

// Store is the append-only PostgreSQL session log. All methods are safe
// for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the PostgreSQL database at dsn and runs the segment
// table migration.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("sessionlog: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sessionlog: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ddlSegments); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sessionlog: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Append writes seg to the session log. Segment.ID must be unique; a
// repeated ID is an upsert (same segment re-observed), not an error —
// matching the transcriber's Segment.ID stability guarantee (derived from
// the utterance's time range).
func (s *Store) Append(ctx context.Context, seg types.Segment) error {
	const q = `
		INSERT INTO segments (id, text, start_ms, end_ms, speaker_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET text = EXCLUDED.text, start_ms = EXCLUDED.start_ms, end_ms = EXCLUDED.end_ms, speaker_id = EXCLUDED.speaker_id`

	_, err := s.pool.Exec(ctx, q, seg.ID, seg.Text, seg.StartMs, seg.EndMs, seg.SpeakerID)
	if err != nil {
		return fmt.Errorf("sessionlog: append: %w", err)
	}
	return nil
}

// Recent returns every segment created within the last window, ordered
// oldest first.
func (s *Store) Recent(ctx context.Context, window time.Duration) ([]types.Segment, error) {
	const q = `
		SELECT id, text, start_ms, end_ms, speaker_id
		FROM   segments
		WHERE  created_at >= now() - ($1::bigint * interval '1 microsecond')
		ORDER  BY created_at`

	rows, err := s.pool.Query(ctx, q, window.Microseconds())
	if err != nil {
		return nil, fmt.Errorf("sessionlog: recent: %w", err)
	}
	return collectSegments(rows)
}

// Search performs a full-text search over committed segment text.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.Segment, error) {
	q := `
		SELECT id, text, start_ms, end_ms, speaker_id
		FROM   segments
		WHERE  to_tsvector('english', text) @@ plainto_tsquery('english', $1)
		ORDER  BY created_at`
	args := []any{query}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sessionlog: search: %w", err)
	}
	return collectSegments(rows)
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func collectSegments(rows pgx.Rows) ([]types.Segment, error) {
	segs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Segment, error) {
		var seg types.Segment
		if err := row.Scan(&seg.ID, &seg.Text, &seg.StartMs, &seg.EndMs, &seg.SpeakerID); err != nil {
			return types.Segment{}, err
		}
		seg.Final = true
		return seg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sessionlog: scan rows: %w", err)
	}
	if segs == nil {
		segs = []types.Segment{}
	}
	return segs, nil
}
