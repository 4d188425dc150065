package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedNotFound is returned when the results feed never becomes
	// visible and the page is not a single-place fallback. It aborts the run.
	ErrFeedNotFound = errors.New("results feed not found, no results or page structure changed")

	// ErrRunTimeout is returned when the overall run deadline elapses.
	// Work gathered before the deadline is discarded.
	ErrRunTimeout = errors.New("scrape run timed out")
)

// BatchError reports a database failure for one upsert batch. Batches already
// committed before the failing one stay committed.
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upsert batch %d failed: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
