package repository

import (
	"context"
	"time"
)

// VisitedRepository defines the interface for the recently-scraped query
// guard. A query whose source id is still marked is not re-scraped unless
// the caller forces it.
type VisitedRepository interface {
	// MarkScraped marks a source id as recently scraped with an expiry.
	MarkScraped(ctx context.Context, sourceID string, expiry time.Duration) error
	// IsRecentlyScraped checks whether a source id is still marked.
	IsRecentlyScraped(ctx context.Context, sourceID string) (bool, error)
	// RemoveScraped clears the mark, used for forced re-scrapes.
	RemoveScraped(ctx context.Context, sourceID string) error
}
