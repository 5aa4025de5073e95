package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps processed records in PostgreSQL
type PostgresStore struct {
	db       *sql.DB
	ttlHours int
}

// NewPostgresStore connects, pings and initializes the schema
func NewPostgresStore(ctx context.Context, connectionString string, ttlHours int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := newPostgresStore(ctx, db, ttlHours)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("PostgreSQL store connected")
	return store, nil
}

func newPostgresStore(ctx context.Context, db *sql.DB, ttlHours int) (*PostgresStore, error) {
	store := &PostgresStore{
		db:       db,
		ttlHours: ttlHours,
	}
	if err := store.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS processed_news (
		id SERIAL PRIMARY KEY,
		hash VARCHAR(64) UNIQUE NOT NULL,
		link TEXT NOT NULL,
		title TEXT NOT NULL,
		source VARCHAR(200),
		summary TEXT NOT NULL,
		main_genre VARCHAR(100) NOT NULL,
		subgenre VARCHAR(100) NOT NULL,
		display_subgenre VARCHAR(100) NOT NULL,
		image_key VARCHAR(100) NOT NULL,
		published_at TIMESTAMP,
		processed_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_processed_news_processed_at ON processed_news(processed_at);
	CREATE INDEX IF NOT EXISTS idx_processed_news_main_genre ON processed_news(main_genre);
	`

// initSchema creates the necessary tables if they don't exist
func (ps *PostgresStore) initSchema(ctx context.Context) error {
	if _, err := ps.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Has checks if an article was processed within the TTL window
func (ps *PostgresStore) Has(ctx context.Context, hash string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM processed_news WHERE hash = $1 AND processed_at > $2`
	if err := ps.db.QueryRowContext(ctx, query, hash, ps.cutoff()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check record: %w", err)
	}
	return count > 0, nil
}

// Save upserts a processed article
func (ps *PostgresStore) Save(ctx context.Context, rec Record) error {
	if rec.Hash == "" {
		rec.Hash = Hash(rec.Link)
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	var published sql.NullTime
	if !rec.Published.IsZero() {
		published = sql.NullTime{Time: rec.Published, Valid: true}
	}

	query := `
		INSERT INTO processed_news (hash, link, title, source, summary, main_genre, subgenre, display_subgenre, image_key, published_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (hash) DO UPDATE SET
			summary = EXCLUDED.summary,
			subgenre = EXCLUDED.subgenre,
			display_subgenre = EXCLUDED.display_subgenre,
			image_key = EXCLUDED.image_key,
			processed_at = EXCLUDED.processed_at
	`

	_, err := ps.db.ExecContext(ctx, query,
		rec.Hash, rec.Link, rec.Title, rec.Source, rec.Summary,
		rec.MainGenre, rec.Subgenre, rec.DisplaySubgenre, rec.ImageKey,
		published, rec.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Recent returns recently processed records, newest first
func (ps *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT hash, link, title, source, summary, main_genre, subgenre, display_subgenre, image_key, published_at, processed_at
		FROM processed_news
		ORDER BY processed_at DESC
		LIMIT $1
	`

	rows, err := ps.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			source    sql.NullString
			published sql.NullTime
		)
		err := rows.Scan(&rec.Hash, &rec.Link, &rec.Title, &source, &rec.Summary,
			&rec.MainGenre, &rec.Subgenre, &rec.DisplaySubgenre, &rec.ImageKey,
			&published, &rec.ProcessedAt)
		if err != nil {
			slog.Warn("error scanning row", "error", err)
			continue
		}
		rec.Source = source.String
		if published.Valid {
			rec.Published = published.Time
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Cleanup removes expired records
func (ps *PostgresStore) Cleanup(ctx context.Context) error {
	query := `DELETE FROM processed_news WHERE processed_at < $1`
	result, err := ps.db.ExecContext(ctx, query, ps.cutoff())
	if err != nil {
		return fmt.Errorf("failed to cleanup: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		slog.Info("cleaned up old records", "rows", rows)
	}
	return nil
}

// GetStats returns record counts, overall and per main genre within the TTL
func (ps *PostgresStore) GetStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	if err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_news`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total_items"] = total

	rows, err := ps.db.QueryContext(ctx, `
		SELECT main_genre, COUNT(*)
		FROM processed_news
		WHERE processed_at > $1
		GROUP BY main_genre
	`, ps.cutoff())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var genre string
		var count int
		if err := rows.Scan(&genre, &count); err == nil {
			stats["genre_"+genre] = count
		}
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func (ps *PostgresStore) cutoff() time.Time {
	return time.Now().Add(-time.Duration(ps.ttlHours) * time.Hour)
}
