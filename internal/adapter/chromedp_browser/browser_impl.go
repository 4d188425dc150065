package chromedp_browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/sladedigital/places-service/internal/repository"
)

const (
	searchBaseURL = "https://www.google.com/maps/search/"
	feedSelector  = `[role="feed"]`

	consentWait  = 5 * time.Second
	feedWait     = 25 * time.Second
	navTimeout   = 30 * time.Second
	endMarkerJS  = `Array.from(document.querySelectorAll("span")).some(s => s.textContent.includes("You've reached the end of the list."))`
	feedHeightJS = `document.querySelector('[role="feed"]').scrollHeight`
	feedScrollJS = `document.querySelector('[role="feed"]').scrollTop = document.querySelector('[role="feed"]').scrollHeight`
	feedLinksJS  = `Array.from(document.querySelectorAll('[role="feed"] a[href*="/maps/place/"]')).map(a => a.href)`

	consentButtonXPath = `//button[.//span[contains(text(), 'Accept all') or contains(text(), 'Reject all')]]`
)

// Browser drives a single headless Chrome tab via chromedp. One Browser
// serves one scrape run; operations are never issued concurrently.
type Browser struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewBrowser launches a Chrome instance and opens one tab. The caller owns
// the returned Browser and must Close it.
func NewBrowser(parent context.Context, headless bool) (repository.Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36`),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Run an empty task so a launch failure surfaces here, not on first use.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

func (b *Browser) OpenSearch(ctx context.Context, query, lang string) error {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", lang)
	searchURL := searchBaseURL + "?" + params.Encode()

	slog.Info("Navigating to search URL", "url", searchURL)
	if err := b.run(ctx, navTimeout,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to open search page: %w", err)
	}

	b.acceptConsent(ctx)
	return nil
}

// acceptConsent clicks through a consent form when one appears. Absence of
// the form is the normal case and not an error.
func (b *Browser) acceptConsent(ctx context.Context) {
	var nodes []*cdp.Node
	err := b.run(ctx, consentWait,
		chromedp.Nodes(consentButtonXPath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	)
	if err != nil || len(nodes) == 0 {
		slog.Debug("No consent form detected")
		return
	}
	slog.Info("Dismissing consent form")
	if err := b.run(ctx, consentWait, chromedp.MouseClickNode(nodes[0])); err != nil {
		slog.Warn("Failed to click consent button", "error", err)
	}
}

func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	err := b.run(ctx, navTimeout, chromedp.Location(&loc))
	return loc, err
}

func (b *Browser) WaitFeed(ctx context.Context) error {
	return b.run(ctx, feedWait, chromedp.WaitVisible(feedSelector, chromedp.ByQuery))
}

func (b *Browser) ScrollFeed(ctx context.Context) error {
	return b.run(ctx, navTimeout, chromedp.Evaluate(feedScrollJS, nil))
}

func (b *Browser) FeedHeight(ctx context.Context) (int64, error) {
	var height int64
	err := b.run(ctx, navTimeout, chromedp.Evaluate(feedHeightJS, &height))
	return height, err
}

func (b *Browser) PlaceLinks(ctx context.Context) ([]string, error) {
	var links []string
	err := b.run(ctx, navTimeout, chromedp.Evaluate(feedLinksJS, &links))
	return links, err
}

func (b *Browser) EndOfListVisible(ctx context.Context) (bool, error) {
	var visible bool
	err := b.run(ctx, navTimeout, chromedp.Evaluate(endMarkerJS, &visible))
	return visible, err
}

func (b *Browser) Navigate(ctx context.Context, pageURL string) error {
	return b.run(ctx, navTimeout,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (b *Browser) Content(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, navTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (b *Browser) Close() error {
	b.cancelTab()
	b.cancelAlloc()
	return nil
}

// run executes chromedp actions against the tab with a per-operation timeout,
// while still observing the caller's run deadline.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(opCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}
