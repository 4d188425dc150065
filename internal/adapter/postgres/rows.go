package postgres

import (
	"strconv"
	"strings"

	"github.com/sladedigital/places-service/internal/entity"
)

// entityColumns is the column order for the entities upsert.
var entityColumns = []string{
	"name",
	"place_id",
	"address",
	"google_rating",
	"review_count",
	"entity_categories",
	"website",
	"phone",
	"google_link",
}

// placeRow transforms a Place into entities column order. This is the single
// coercion/validation boundary: numeric fields that do not parse are stored
// as NULL instead of failing the batch, and the category list is trimmed to
// non-empty strings or NULL.
func placeRow(p entity.Place) []any {
	return []any{
		nullableText(p.Name),
		p.PlaceID,
		nullableText(p.Address),
		coerceInt(p.Rating),
		coerceInt(p.ReviewCount),
		cleanCategories(p.Categories),
		nullableText(p.Website),
		nullableText(p.Phone),
		nullableText(p.Link),
	}
}

// coerceInt parses an integer out of a scraped string. A fractional value is
// truncated; anything unparseable becomes NULL.
func coerceInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

// cleanCategories trims entries and drops empties, returning nil when
// nothing remains so the column is stored as NULL.
func cleanCategories(raw []string) []string {
	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// chunkPlaces splits records into fixed-size batches, preserving order.
func chunkPlaces(places []entity.Place, size int) [][]entity.Place {
	var batches [][]entity.Place
	for len(places) > size {
		batches = append(batches, places[:size])
		places = places[size:]
	}
	if len(places) > 0 {
		batches = append(batches, places)
	}
	return batches
}
