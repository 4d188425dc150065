package entity

import "time"

// ScrapeHistory summarizes one completed scrape run. Source is the natural
// key: repeated runs of the same normalized query overwrite the same row.
type ScrapeHistory struct {
	Source         string `json:"source"`
	SearchKey      string `json:"search_key,omitempty"`
	LocationKey    string `json:"location_key,omitempty"`
	ResultsScraped int    `json:"results_scraped"`
}

// ScrapeHistoryRow mirrors the `scrape_history` PostgreSQL table schema.
type ScrapeHistoryRow struct {
	ID             int64     `json:"id"`
	Source         string    `json:"source"`
	SearchKey      string    `json:"search_key,omitempty"`
	LocationKey    string    `json:"location_key,omitempty"`
	ResultsScraped int       `json:"results_scraped"`
	CreatedAt      time.Time `json:"created_at"`
}
