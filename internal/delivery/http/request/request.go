package request

// ScrapeRequest is the JSON body of POST /api/scrape. TimeoutSeconds
// overrides the configured run deadline when > 0.
type ScrapeRequest struct {
	Query          string `json:"query"`
	MaxPlaces      int    `json:"max_places,omitempty"`
	Lang           string `json:"lang,omitempty"`
	Headless       *bool  `json:"headless,omitempty"`
	Force          bool   `json:"force,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}
