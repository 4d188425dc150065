package repository

import "context"

// Browser defines the contract for the headless-browser capability that a
// scrape run drives. All operations for one run execute sequentially; no two
// browser operations are ever in flight at the same time.
type Browser interface {
	// OpenSearch navigates to the results page for a query and dismisses any
	// consent form that appears.
	OpenSearch(ctx context.Context, query, lang string) error
	// CurrentURL returns the URL the page currently shows.
	CurrentURL(ctx context.Context) (string, error)
	// WaitFeed blocks until the scrollable results feed is visible or the
	// wait times out.
	WaitFeed(ctx context.Context) error
	// ScrollFeed scrolls the results feed to its current bottom.
	ScrollFeed(ctx context.Context) error
	// FeedHeight returns the feed's scroll height, a monotonic progress
	// measure for convergence detection.
	FeedHeight(ctx context.Context) (int64, error)
	// PlaceLinks returns the hrefs of all place links currently in the feed.
	PlaceLinks(ctx context.Context) ([]string, error)
	// EndOfListVisible reports whether the explicit end-of-results marker is
	// present.
	EndOfListVisible(ctx context.Context) (bool, error)
	// Navigate opens an individual place page.
	Navigate(ctx context.Context, url string) error
	// Content returns the raw markup of the current page.
	Content(ctx context.Context) (string, error)
	// Close releases the browser.
	Close() error
}
