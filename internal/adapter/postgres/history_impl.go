package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
)

var historyColumns = []string{"source", "search_key", "location_key", "results_scraped"}

// HistoryRepoImpl provides the HistoryRepository implementation backed by
// PostgreSQL.
type HistoryRepoImpl struct {
	db *pgxpool.Pool
}

// NewHistoryRepo creates a new HistoryRepoImpl.
func NewHistoryRepo(db *pgxpool.Pool) *HistoryRepoImpl {
	return &HistoryRepoImpl{db: db}
}

// Upsert writes run summaries keyed by source. Records without a source are
// dropped; duplicate sources keep the last occurrence, since one statement
// cannot apply two conflicting updates to the same key. On conflict all
// non-key columns are replaced.
func (r *HistoryRepoImpl) Upsert(ctx context.Context, records []entity.ScrapeHistory) (int, error) {
	deduped := dedupeBySource(records)
	if len(deduped) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(deduped)*len(historyColumns))
	for _, rec := range deduped {
		args = append(args,
			rec.Source,
			nullableText(rec.SearchKey),
			nullableText(rec.LocationKey),
			rec.ResultsScraped,
		)
	}
	if _, err := r.db.Exec(ctx, upsertHistorySQL(len(deduped)), args...); err != nil {
		return 0, &repository.BatchError{Batch: 0, Err: err}
	}
	return len(deduped), nil
}

// Find retrieves history rows, newest first, optionally filtered by source.
func (r *HistoryRepoImpl) Find(ctx context.Context, source string) ([]entity.ScrapeHistoryRow, error) {
	query := `
		SELECT id, source, COALESCE(search_key, ''), COALESCE(location_key, ''), COALESCE(results_scraped, 0), created_at
		FROM scrape_history`
	args := []any{}
	if source != "" {
		query += ` WHERE source = $1`
		args = append(args, source)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ScrapeHistoryRow
	for rows.Next() {
		var row entity.ScrapeHistoryRow
		if err := rows.Scan(
			&row.ID,
			&row.Source,
			&row.SearchKey,
			&row.LocationKey,
			&row.ResultsScraped,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// dedupeBySource keeps the last record for each non-empty source, preserving
// first-seen order.
func dedupeBySource(records []entity.ScrapeHistory) []entity.ScrapeHistory {
	index := make(map[string]int, len(records))
	var out []entity.ScrapeHistory
	for _, rec := range records {
		if rec.Source == "" {
			continue
		}
		if i, seen := index[rec.Source]; seen {
			out[i] = rec
			continue
		}
		index[rec.Source] = len(out)
		out = append(out, rec)
	}
	return out
}

func upsertHistorySQL(n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO scrape_history (")
	sb.WriteString(strings.Join(historyColumns, ", "))
	sb.WriteString(") VALUES ")
	for row := 0; row < n; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for col := 0; col < len(historyColumns); col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", row*len(historyColumns)+col+1)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(` ON CONFLICT (source) DO UPDATE SET
		search_key = EXCLUDED.search_key,
		location_key = EXCLUDED.location_key,
		results_scraped = EXCLUDED.results_scraped`)
	return sb.String()
}
