package repository

import (
	"context"

	"github.com/sladedigital/places-service/internal/entity"
)

// HistoryRepository defines the interface for the per-run summary rows.
type HistoryRepository interface {
	// Upsert writes run summaries keyed by source. Duplicate sources within
	// the slice are deduplicated first, keeping the last occurrence, because
	// one SQL statement cannot apply two conflicting updates to the same key.
	Upsert(ctx context.Context, records []entity.ScrapeHistory) (int, error)
	// Find returns history rows, newest first, optionally filtered by source.
	Find(ctx context.Context, source string) ([]entity.ScrapeHistoryRow, error)
}
