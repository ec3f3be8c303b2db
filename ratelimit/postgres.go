package ratelimit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps fixed-window counters in the shared database, so the
// limit holds across server instances.
type PostgresStore struct {
	db      *pgxpool.Pool
	nowFunc func() time.Time
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, nowFunc: time.Now}
}

func (s *PostgresStore) Allow(ctx context.Context, key string, limit Limit) bool {
	windowStart := s.nowFunc().Truncate(limit.Window)

	query := `
		INSERT INTO rate_limits (key, window_start, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (key, window_start) DO UPDATE SET count = rate_limits.count + 1
		RETURNING count`

	var count int
	if err := s.db.QueryRow(ctx, query, key, windowStart).Scan(&count); err != nil {
		// Fail open: a broken counter backend must not take logins down.
		log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable, allowing request")
		return true
	}
	return count <= limit.Requests
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM rate_limits`)
	return err
}

// Cleanup removes windows older than keep. Intended for periodic maintenance.
func (s *PostgresStore) Cleanup(ctx context.Context, keep time.Duration) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < $1`, s.nowFunc().Add(-keep))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
