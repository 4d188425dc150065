package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
)

const defaultBatchSize = 250

// PlaceRepoImpl provides the PlaceRepository implementation backed by
// PostgreSQL. The pool is owned by the caller and shared across repos; each
// Exec checks a connection out for the duration of one batch and returns it
// on every exit path.
type PlaceRepoImpl struct {
	db        *pgxpool.Pool
	batchSize int
}

// NewPlaceRepo creates a new PlaceRepoImpl. batchSize <= 0 selects the
// default of 250 rows per statement.
func NewPlaceRepo(db *pgxpool.Pool, batchSize int) *PlaceRepoImpl {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &PlaceRepoImpl{db: db, batchSize: batchSize}
}

// UpsertBatch bulk-upserts places keyed by place_id. Records without a key
// are dropped, and duplicate keys are collapsed to the last occurrence first:
// a single INSERT ... ON CONFLICT statement cannot update the same row twice.
// Each batch is one multi-row statement replacing every non-key column.
// Batches commit independently; on failure the attempted count of prior
// batches is returned together with a *repository.BatchError.
func (r *PlaceRepoImpl) UpsertBatch(ctx context.Context, places []entity.Place) (int, error) {
	keyed := dedupeByPlaceID(places)
	if len(keyed) == 0 {
		return 0, nil
	}

	attempted := 0
	for i, batch := range chunkPlaces(keyed, r.batchSize) {
		args := make([]any, 0, len(batch)*len(entityColumns))
		for _, p := range batch {
			args = append(args, placeRow(p)...)
		}
		if _, err := r.db.Exec(ctx, upsertPlacesSQL(len(batch)), args...); err != nil {
			return attempted, &repository.BatchError{Batch: i, Err: err}
		}
		attempted += len(batch)
	}
	return attempted, nil
}

// dedupeByPlaceID drops keyless records and keeps the last occurrence for
// each place_id, preserving first-seen order.
func dedupeByPlaceID(places []entity.Place) []entity.Place {
	index := make(map[string]int, len(places))
	var out []entity.Place
	for _, p := range places {
		if !p.HasKey() {
			slog.Warn("Dropping place without place_id", "name", p.Name)
			continue
		}
		if i, seen := index[p.PlaceID]; seen {
			out[i] = p
			continue
		}
		index[p.PlaceID] = len(out)
		out = append(out, p)
	}
	return out
}

// upsertPlacesSQL builds the multi-row upsert statement for n records.
func upsertPlacesSQL(n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO entities (")
	sb.WriteString(strings.Join(entityColumns, ", "))
	sb.WriteString(") VALUES ")
	for row := 0; row < n; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for col := 0; col < len(entityColumns); col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", row*len(entityColumns)+col+1)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(` ON CONFLICT (place_id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		google_rating = EXCLUDED.google_rating,
		review_count = EXCLUDED.review_count,
		entity_categories = EXCLUDED.entity_categories,
		website = EXCLUDED.website,
		phone = EXCLUDED.phone,
		google_link = EXCLUDED.google_link`)
	return sb.String()
}
