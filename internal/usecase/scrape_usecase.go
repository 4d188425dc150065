package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
	"github.com/sladedigital/places-service/pkg/metrics"
	"github.com/sladedigital/places-service/pkg/utils"
)

var (
	// ErrQueryRecentlyScraped is returned when a query's source id is still
	// inside the deduplication window and the request did not force a rerun.
	ErrQueryRecentlyScraped = errors.New("query has been scraped recently and force is false")
)

// Scraper defines the interface the HTTP delivery layer calls.
type Scraper interface {
	// Run executes one scrape: discovery, extraction, persistence, under the
	// configured deadline. On timeout nothing gathered is persisted and the
	// error wraps repository.ErrRunTimeout.
	Run(ctx context.Context, req entity.ScrapeRequest) ([]entity.Place, error)
	// History returns run summaries, optionally filtered by source.
	History(ctx context.Context, source string) ([]entity.ScrapeHistoryRow, error)
}

// BrowserFactory opens a fresh browser for one run.
type BrowserFactory func(ctx context.Context, headless bool) (repository.Browser, error)

// ExtractFunc converts raw page markup into a place record, or nil when the
// page holds no usable record.
type ExtractFunc func(html string) (*entity.Place, error)

// RunConfig carries the orchestrator's timing knobs.
type RunConfig struct {
	RunTimeout  time.Duration
	ScrollPause time.Duration
	PlacePause  time.Duration
	DedupExpiry time.Duration
}

type scrapeUseCase struct {
	newBrowser  BrowserFactory
	extract     ExtractFunc
	placeRepo   repository.PlaceRepository
	historyRepo repository.HistoryRepository
	visitedRepo repository.VisitedRepository
	pool        *PersistPool
	cfg         RunConfig
}

// NewScrapeUseCase wires the scrape orchestrator.
func NewScrapeUseCase(
	newBrowser BrowserFactory,
	extract ExtractFunc,
	placeRepo repository.PlaceRepository,
	historyRepo repository.HistoryRepository,
	visitedRepo repository.VisitedRepository,
	pool *PersistPool,
	cfg RunConfig,
) Scraper {
	return &scrapeUseCase{
		newBrowser:  newBrowser,
		extract:     extract,
		placeRepo:   placeRepo,
		historyRepo: historyRepo,
		visitedRepo: visitedRepo,
		pool:        pool,
		cfg:         cfg,
	}
}

// runState tracks where a run is in its lifecycle. Exactly one browser
// operation is in flight at any time; transitions happen only at the
// suspension points between stages.
type runState int

const (
	stateIdle runState = iota
	stateNavigating
	stateScrolling
	stateExtracting
	statePersisting
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateNavigating:
		return "navigating"
	case stateScrolling:
		return "scrolling"
	case stateExtracting:
		return "extracting"
	case statePersisting:
		return "persisting"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

func (uc *scrapeUseCase) Run(ctx context.Context, req entity.ScrapeRequest) ([]entity.Place, error) {
	if req.Lang == "" {
		req.Lang = "en"
	}
	sourceID := utils.DeriveSourceID(req.Query)

	if req.Force {
		if err := uc.visitedRepo.RemoveScraped(ctx, sourceID); err != nil {
			slog.Warn("Failed to clear dedup mark for forced run", "source", sourceID, "error", err)
		}
	} else {
		recent, err := uc.visitedRepo.IsRecentlyScraped(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check dedup mark: %w", err)
		}
		if recent {
			return nil, ErrQueryRecentlyScraped
		}
	}

	deadline := uc.cfg.RunTimeout
	if req.Deadline > 0 {
		deadline = req.Deadline
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	places, err := uc.execute(runCtx, req, sourceID)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.ScrapesTotal.WithLabelValues("failure", "timeout").Inc()
			return nil, fmt.Errorf("%w: deadline of %s elapsed", repository.ErrRunTimeout, deadline)
		}
		metrics.ScrapesTotal.WithLabelValues("failure", classify(err)).Inc()
		return nil, err
	}

	metrics.ScrapesTotal.WithLabelValues("success", "").Inc()
	if err := uc.visitedRepo.MarkScraped(ctx, sourceID, uc.cfg.DedupExpiry); err != nil {
		slog.Warn("Failed to mark query as scraped", "source", sourceID, "error", err)
	}
	slog.Info("Scrape run finished", "source", sourceID, "places", len(places), "duration_ms", time.Since(start).Milliseconds())
	return places, nil
}

// execute drives the run through its state machine. The deadline is checked
// between states; in-flight browser work is abandoned, never persisted.
func (uc *scrapeUseCase) execute(ctx context.Context, req entity.ScrapeRequest, sourceID string) ([]entity.Place, error) {
	var (
		browser repository.Browser
		links   []string
		places  []entity.Place
		runErr  error
	)

	state := stateIdle
	fail := func(err error) runState {
		runErr = err
		return stateFailed
	}

	for state != stateDone && state != stateFailed {
		if err := ctx.Err(); err != nil {
			state = fail(err)
			break
		}
		next := state
		switch state {
		case stateIdle:
			next = stateNavigating

		case stateNavigating:
			b, err := uc.newBrowser(ctx, req.Headless)
			if err != nil {
				next = fail(fmt.Errorf("failed to open browser: %w", err))
				break
			}
			browser = b
			defer browser.Close()
			if err := browser.OpenSearch(ctx, req.Query, req.Lang); err != nil {
				next = fail(err)
				break
			}
			next = stateScrolling

		case stateScrolling:
			ls, err := NewDiscoverer(browser, uc.cfg.ScrollPause).Discover(ctx, req)
			if err != nil {
				next = fail(err)
				break
			}
			links = ls
			next = stateExtracting

		case stateExtracting:
			places = uc.extractAll(ctx, browser, links)
			if err := ctx.Err(); err != nil {
				next = fail(err)
				break
			}
			next = statePersisting

		case statePersisting:
			if err := uc.persist(ctx, req, sourceID, places); err != nil {
				next = fail(err)
				break
			}
			next = stateDone
		}
		slog.Debug("Run state transition", "from", state.String(), "to", next.String())
		state = next
	}

	if state == stateFailed {
		return nil, runErr
	}
	return places, nil
}

// extractAll turns each link into at most one place record, sequentially.
// A failing item is logged and skipped; it never aborts the stage. The
// inter-item pause is rate limiting toward the upstream source, not a
// correctness requirement.
func (uc *scrapeUseCase) extractAll(ctx context.Context, browser repository.Browser, links []string) []entity.Place {
	places := make([]entity.Place, 0, len(links))
	for i, link := range links {
		if ctx.Err() != nil {
			return places
		}
		slog.Info("Processing place", "index", i+1, "total", len(links), "link", link)

		place, err := uc.extractOne(ctx, browser, link)
		switch {
		case err != nil:
			slog.Warn("Skipping place after failure", "link", link, "error", err)
		case place == nil:
			slog.Warn("No usable record extracted", "link", link)
		default:
			place.Link = link
			places = append(places, *place)
		}

		if err := sleepCtx(ctx, uc.cfg.PlacePause); err != nil {
			return places
		}
	}
	return places
}

func (uc *scrapeUseCase) extractOne(ctx context.Context, browser repository.Browser, link string) (*entity.Place, error) {
	if err := browser.Navigate(ctx, link); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	html, err := browser.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return uc.extract(html)
}

// persist pushes the batch write onto the worker pool and waits for it. The
// run summary's result count is the attempted-row count of the place upsert.
func (uc *scrapeUseCase) persist(ctx context.Context, req entity.ScrapeRequest, sourceID string, places []entity.Place) error {
	return uc.pool.Do(ctx, func(jobCtx context.Context) error {
		count, err := uc.placeRepo.UpsertBatch(jobCtx, places)
		if err != nil {
			return err
		}
		metrics.PlacesUpserted.Add(float64(count))

		summary := entity.ScrapeHistory{
			Source:         sourceID,
			SearchKey:      req.Query,
			LocationKey:    utils.SplitLocationKey(req.Query),
			ResultsScraped: count,
		}
		_, err = uc.historyRepo.Upsert(jobCtx, []entity.ScrapeHistory{summary})
		return err
	})
}

func (uc *scrapeUseCase) History(ctx context.Context, source string) ([]entity.ScrapeHistoryRow, error) {
	return uc.historyRepo.Find(ctx, source)
}

func classify(err error) string {
	var batchErr *repository.BatchError
	switch {
	case errors.Is(err, repository.ErrFeedNotFound):
		return "discovery"
	case errors.As(err, &batchErr):
		return "persistence"
	default:
		return "run"
	}
}
