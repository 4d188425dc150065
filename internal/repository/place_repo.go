package repository

import (
	"context"

	"github.com/sladedigital/places-service/internal/entity"
)

// PlaceRepository defines the interface for persisting scraped places.
type PlaceRepository interface {
	// UpsertBatch bulk-upserts places keyed by place_id, in fixed-size
	// batches with full non-key replacement on conflict. Records without a
	// place_id are dropped. It returns the number of attempted rows
	// (inserted + updated), not rows actually changed. Each batch commits
	// independently; a *BatchError does not roll back earlier batches.
	UpsertBatch(ctx context.Context, places []entity.Place) (int, error)
}
