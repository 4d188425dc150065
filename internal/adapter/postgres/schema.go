package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scrape_history (
		id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL UNIQUE,
		search_key TEXT,
		location_key TEXT,
		results_scraped INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS entities (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		place_id TEXT UNIQUE,
		address TEXT,
		google_rating INT,
		review_count INT,
		entity_categories TEXT[],
		website TEXT,
		phone TEXT,
		google_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the service writes to if they do not
// exist. Idempotent; run once at startup. The UNIQUE constraints on
// entities.place_id and scrape_history.source are load-bearing: without
// them the ON CONFLICT upserts cannot resolve and duplicates accumulate.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	slog.Info("Database schema checked")
	return nil
}
