package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
	"github.com/sladedigital/places-service/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakePlaceRepo struct {
	mu      sync.Mutex
	calls   int
	places  []entity.Place
	failErr error
}

func (r *fakePlaceRepo) UpsertBatch(ctx context.Context, places []entity.Place) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failErr != nil {
		return 0, r.failErr
	}
	count := 0
	for _, p := range places {
		if p.HasKey() {
			r.places = append(r.places, p)
			count++
		}
	}
	return count, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []entity.ScrapeHistory
}

func (r *fakeHistoryRepo) Upsert(ctx context.Context, records []entity.ScrapeHistory) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return len(records), nil
}

func (r *fakeHistoryRepo) Find(ctx context.Context, source string) ([]entity.ScrapeHistoryRow, error) {
	return nil, nil
}

type fakeVisitedRepo struct {
	mu     sync.Mutex
	marked map[string]bool
}

func newFakeVisitedRepo() *fakeVisitedRepo {
	return &fakeVisitedRepo{marked: make(map[string]bool)}
}

func (r *fakeVisitedRepo) MarkScraped(ctx context.Context, sourceID string, expiry time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked[sourceID] = true
	return nil
}

func (r *fakeVisitedRepo) IsRecentlyScraped(ctx context.Context, sourceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marked[sourceID], nil
}

func (r *fakeVisitedRepo) RemoveScraped(ctx context.Context, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.marked, sourceID)
	return nil
}

// testExtract reads "name|place_id" from the page content.
func testExtract(html string) (*entity.Place, error) {
	if html == "" {
		return nil, nil
	}
	var name, id string
	for i := 0; i < len(html); i++ {
		if html[i] == '|' {
			name, id = html[:i], html[i+1:]
			break
		}
	}
	if name == "" {
		return nil, errors.New("malformed page")
	}
	return &entity.Place{Name: name, PlaceID: id}, nil
}

type fixture struct {
	browser   *fakeBrowser
	placeRepo *fakePlaceRepo
	histRepo  *fakeHistoryRepo
	visited   *fakeVisitedRepo
	pool      *PersistPool
	scraper   Scraper
}

func newFixture(t *testing.T, browser *fakeBrowser, cfg RunConfig) *fixture {
	t.Helper()
	f := &fixture{
		browser:   browser,
		placeRepo: &fakePlaceRepo{},
		histRepo:  &fakeHistoryRepo{},
		visited:   newFakeVisitedRepo(),
		pool:      NewPersistPool(2),
	}
	t.Cleanup(f.pool.Stop)
	factory := func(ctx context.Context, headless bool) (repository.Browser, error) {
		return browser, nil
	}
	f.scraper = NewScrapeUseCase(factory, testExtract, f.placeRepo, f.histRepo, f.visited, f.pool, cfg)
	return f
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		RunTimeout:  5 * time.Second,
		DedupExpiry: time.Hour,
	}
}

func TestRun_QuotaScenario(t *testing.T) {
	// Feed yields a..e over three scroll rounds; quota of 3 keeps the first
	// three discovered, all of which extract successfully.
	browser := &fakeBrowser{
		rounds: []feedRound{
			{height: 100},
			{links: []string{"a", "b"}, height: 200},
			{links: []string{"a", "b", "c"}, height: 300},
			{links: []string{"a", "b", "c", "d", "e"}, height: 400},
		},
		content: map[string]string{
			"a": "Alpha Bakery|p_a",
			"b": "Bravo Bakery|p_b",
			"c": "Crumb & Co|p_c",
		},
	}
	f := newFixture(t, browser, defaultRunConfig())

	places, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{
		Query:     "bakeries in Denver",
		MaxPlaces: 3,
	})
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, "Alpha Bakery", places[0].Name)
	assert.Equal(t, "a", places[0].Link)

	assert.Len(t, f.placeRepo.places, 3)
	require.Len(t, f.histRepo.records, 1)
	summary := f.histRepo.records[0]
	assert.Equal(t, "gmaps_bakeries_in_denver", summary.Source)
	assert.Equal(t, "bakeries in Denver", summary.SearchKey)
	assert.Equal(t, "Denver", summary.LocationKey)
	assert.Equal(t, 3, summary.ResultsScraped)

	assert.True(t, f.visited.marked["gmaps_bakeries_in_denver"])
	assert.True(t, browser.closed)
}

func TestRun_PerItemFailureIsIsolated(t *testing.T) {
	browser := &fakeBrowser{
		rounds: []feedRound{
			{height: 100},
			{links: []string{"a", "b", "c"}, height: 200, end: true},
		},
		content: map[string]string{
			"a": "Alpha|p_a",
			"b": "",            // extractor finds no usable record
			"c": "Crumb|p_c",
		},
		navErr: map[string]error{"b": errors.New("navigation timeout")},
	}
	f := newFixture(t, browser, defaultRunConfig())

	places, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q"})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, 2, f.histRepo.records[0].ResultsScraped)
}

func TestRun_TimeoutDiscardsEverything(t *testing.T) {
	browser := &fakeBrowser{
		// Feed keeps growing so the run only ends via the deadline.
		rounds: func() []feedRound {
			rounds := []feedRound{{height: 0}}
			for i := 1; i < 1000; i++ {
				rounds = append(rounds, feedRound{height: int64(i * 100)})
			}
			return rounds
		}(),
	}
	cfg := defaultRunConfig()
	cfg.RunTimeout = 50 * time.Millisecond
	cfg.ScrollPause = 10 * time.Millisecond
	f := newFixture(t, browser, cfg)

	_, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRunTimeout)

	// No partial persistence and no dedup mark for a failed run.
	assert.Zero(t, f.placeRepo.calls)
	assert.Empty(t, f.histRepo.records)
	assert.False(t, f.visited.marked["gmaps_q"])
}

func TestRun_RecentlyScrapedGuard(t *testing.T) {
	browser := &fakeBrowser{
		rounds: []feedRound{
			{height: 100},
			{links: []string{"a"}, height: 200, end: true},
		},
		content: map[string]string{"a": "Alpha|p_a"},
	}
	f := newFixture(t, browser, defaultRunConfig())
	f.visited.marked["gmaps_q"] = true

	_, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrQueryRecentlyScraped)
	assert.Zero(t, f.placeRepo.calls)

	// Force clears the mark and runs.
	places, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q", Force: true})
	require.NoError(t, err)
	assert.Len(t, places, 1)
}

func TestRun_FeedNotFoundFailsRun(t *testing.T) {
	browser := &fakeBrowser{
		feedErr:    errors.New("wait timed out"),
		currentURL: "https://www.google.com/maps/search/?q=q",
	}
	f := newFixture(t, browser, defaultRunConfig())

	_, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q"})
	assert.ErrorIs(t, err, repository.ErrFeedNotFound)
	assert.Zero(t, f.placeRepo.calls)
}

func TestRun_PersistenceErrorPropagates(t *testing.T) {
	browser := &fakeBrowser{
		rounds: []feedRound{
			{height: 100},
			{links: []string{"a"}, height: 200, end: true},
		},
		content: map[string]string{"a": "Alpha|p_a"},
	}
	f := newFixture(t, browser, defaultRunConfig())
	f.placeRepo.failErr = &repository.BatchError{Batch: 0, Err: errors.New("connection refused")}

	_, err := f.scraper.Run(context.Background(), entity.ScrapeRequest{Query: "q"})
	var batchErr *repository.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 0, batchErr.Batch)
}
