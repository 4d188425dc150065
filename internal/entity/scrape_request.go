package entity

import "time"

// ScrapeRequest is the immutable input to a single scrape run.
// MaxPlaces == 0 means unbounded; Deadline == 0 selects the configured
// default run timeout.
type ScrapeRequest struct {
	Query     string
	MaxPlaces int
	Lang      string
	Headless  bool
	Force     bool
	Deadline  time.Duration
}
