package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sladedigital/places-service/pkg/utils"
)

const scrapedKeyPrefix = "scraped:"

// VisitedRepoImpl provides the VisitedRepository implementation using Redis
// keys with TTL.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

func (r *VisitedRepoImpl) key(sourceID string) string {
	return fmt.Sprintf("%s%s", scrapedKeyPrefix, utils.HashKey(sourceID))
}

// MarkScraped marks a source id as recently scraped with an expiry.
func (r *VisitedRepoImpl) MarkScraped(ctx context.Context, sourceID string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.key(sourceID), "1", expiry).Err()
}

// IsRecentlyScraped checks whether the source id's key still exists.
func (r *VisitedRepoImpl) IsRecentlyScraped(ctx context.Context, sourceID string) (bool, error) {
	val, err := r.client.Exists(ctx, r.key(sourceID)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// RemoveScraped clears the mark, used for forced re-scrapes.
func (r *VisitedRepoImpl) RemoveScraped(ctx context.Context, sourceID string) error {
	return r.client.Del(ctx, r.key(sourceID)).Err()
}
