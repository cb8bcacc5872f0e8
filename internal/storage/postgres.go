package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/sitesimilarity/internal/domain"
)

const createMatchesTable = `CREATE TABLE IF NOT EXISTS site_matches (
	id         BIGSERIAL PRIMARY KEY,
	url_a      TEXT NOT NULL,
	url_b      TEXT NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	found_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (url_a, url_b)
)`

// PostgresStore records matches in the site_matches table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// EnsureSchema creates the matches table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createMatchesTable); err != nil {
		return fmt.Errorf("creating site_matches: %w", err)
	}
	return nil
}

// Report upserts the match; a pair seen again refreshes score and timestamp.
func (s *PostgresStore) Report(ctx context.Context, m domain.Match) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO site_matches (url_a, url_b, score, found_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (url_a, url_b) DO UPDATE SET
		   score = EXCLUDED.score, found_at = EXCLUDED.found_at`,
		m.URLA, m.URLB, m.Score, m.FoundAt,
	)
	if err != nil {
		return fmt.Errorf("saving match: %w", err)
	}
	return nil
}

// CountMatches returns how many distinct pairs are stored.
func (s *PostgresStore) CountMatches(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM site_matches`).Scan(&n)
	return n, err
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
