package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a SummaryStore backed by the file_summaries table
// (see migrations/). Backend errors fail open and are logged at debug,
// never returned to the pipeline.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, path string) (*FileSummary, error) {
	if s.db == nil {
		return nil, nil
	}

	var entry FileSummary
	err := s.db.QueryRow(ctx, `
		SELECT content, cached_at
		FROM file_summaries
		WHERE path = $1
	`, path).Scan(&entry.Content, &entry.CachedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Debug("file summary lookup failed", "path", path, "error", err)
		}
		return nil, nil
	}
	return &entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, path, content string) error {
	if s.db == nil {
		return nil
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO file_summaries (path, content, cached_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE SET content = $2, cached_at = $3
	`, path, content, time.Now())
	if err != nil {
		slog.Debug("file summary write failed", "path", path, "error", err)
	}
	return nil
}
