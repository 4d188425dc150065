package response

import "github.com/sladedigital/places-service/internal/entity"

// ScrapeResponse wraps a completed run's records.
type ScrapeResponse struct {
	Source  string         `json:"source"`
	Count   int            `json:"count"`
	Results []entity.Place `json:"results"`
}

// HistoryResponse wraps run summaries for GET /api/history.
type HistoryResponse struct {
	Count   int                       `json:"count"`
	History []entity.ScrapeHistoryRow `json:"history"`
}
