package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
)

// maxStagnantRounds bounds the scroll loop: after this many consecutive
// rounds with no height growth and no new links, the feed is treated as
// exhausted. Upstream UI lag is indistinguishable from a true end, so this
// is convergence, not an error.
const maxStagnantRounds = 5

// Discoverer drives the results feed to a deduplicated, insertion-ordered
// set of place links without knowing the total count in advance.
type Discoverer struct {
	browser     repository.Browser
	scrollPause time.Duration
	maxStagnant int
}

// NewDiscoverer creates a Discoverer over an already-opened search page.
func NewDiscoverer(browser repository.Browser, scrollPause time.Duration) *Discoverer {
	return &Discoverer{
		browser:     browser,
		scrollPause: scrollPause,
		maxStagnant: maxStagnantRounds,
	}
}

// Discover scrolls the feed until it converges and returns the collected
// place links in discovery order. When req.MaxPlaces > 0 the result is
// truncated to exactly that many links, keeping the first-discovered ones.
//
// A feed that never becomes visible falls back to the current page when it
// is itself a place page (single-result search); otherwise the run fails
// with repository.ErrFeedNotFound.
func (d *Discoverer) Discover(ctx context.Context, req entity.ScrapeRequest) ([]string, error) {
	if err := d.browser.WaitFeed(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if loc, uerr := d.browser.CurrentURL(ctx); uerr == nil && strings.Contains(loc, "/maps/place/") {
			slog.Info("Detected single place page", "url", loc)
			return []string{loc}, nil
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrFeedNotFound, err)
	}

	lastHeight, err := d.browser.FeedHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed height: %w", err)
	}

	links := newLinkSet()
	stagnant := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.browser.ScrollFeed(ctx); err != nil {
			return nil, fmt.Errorf("failed to scroll feed: %w", err)
		}
		if err := sleepCtx(ctx, d.scrollPause); err != nil {
			return nil, err
		}

		current, err := d.browser.PlaceLinks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to collect place links: %w", err)
		}
		newFound := links.addAll(current)
		slog.Debug("Collected place links", "total", links.len())

		if req.MaxPlaces > 0 && links.len() >= req.MaxPlaces {
			slog.Info("Reached max places limit", "max", req.MaxPlaces)
			return links.first(req.MaxPlaces), nil
		}

		height, err := d.browser.FeedHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed height: %w", err)
		}
		if height != lastHeight {
			lastHeight = height
			stagnant = 0
			continue
		}

		end, err := d.browser.EndOfListVisible(ctx)
		if err != nil {
			slog.Warn("Failed to check end-of-list marker", "error", err)
		}
		if end {
			slog.Info("Reached the end of the results list", "links", links.len())
			return links.all(), nil
		}
		if newFound {
			stagnant = 0
			continue
		}
		stagnant++
		slog.Debug("Feed stagnant", "round", stagnant, "limit", d.maxStagnant)
		if stagnant >= d.maxStagnant {
			slog.Info("Stopping scroll, feed stopped growing", "links", links.len())
			return links.all(), nil
		}
	}
}

// linkSet is an insertion-ordered string set. Keeping order makes the
// MaxPlaces truncation deterministic: first-discovered links win.
type linkSet struct {
	order []string
	seen  map[string]struct{}
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

// addAll inserts unseen links and reports whether any were new.
func (s *linkSet) addAll(links []string) bool {
	added := false
	for _, link := range links {
		if _, ok := s.seen[link]; ok {
			continue
		}
		s.seen[link] = struct{}{}
		s.order = append(s.order, link)
		added = true
	}
	return added
}

func (s *linkSet) len() int { return len(s.order) }

func (s *linkSet) all() []string { return s.order }

func (s *linkSet) first(n int) []string {
	if n > len(s.order) {
		n = len(s.order)
	}
	return s.order[:n]
}

// sleepCtx pauses for d or until the context ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
