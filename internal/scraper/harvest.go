package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maltedev/wishlist-mirror/internal/browser"
	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/maltedev/wishlist-mirror/internal/parser"
)

// StaticHarvester fetches the listing once and hands the markup to an
// extractor.
type StaticHarvester struct {
	fetcher   *Fetcher
	extractor parser.Extractor
	url       string
}

func NewStaticHarvester(fetcher *Fetcher, extractor parser.Extractor, url string) *StaticHarvester {
	return &StaticHarvester{
		fetcher:   fetcher,
		extractor: extractor,
		url:       url,
	}
}

func (h *StaticHarvester) Harvest(ctx context.Context) ([]*models.Item, error) {
	markup, err := h.fetcher.Fetch(ctx, h.url)
	if err != nil {
		return nil, err
	}

	items, err := h.extractor.Extract(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to extract items: %w", err)
	}

	return items, nil
}

// BrowserHarvester drives a headless browser to the listing, scrolls until
// lazy loading settles and reads items from the live DOM.
type BrowserHarvester struct {
	browser   *browser.Browser
	extractor *LiveExtractor
	scroll    browser.ScrollOptions
	url       string
	logger    *slog.Logger
}

func NewBrowserHarvester(b *browser.Browser, extractor *LiveExtractor, scroll browser.ScrollOptions, url string) *BrowserHarvester {
	return &BrowserHarvester{
		browser:   b,
		extractor: extractor,
		scroll:    scroll,
		url:       url,
		logger:    slog.Default().With("component", "browser_harvester"),
	}
}

func (h *BrowserHarvester) Harvest(ctx context.Context) ([]*models.Item, error) {
	page, err := h.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	defer page.Close()

	h.logger.Info("opening listing", "url", h.url)
	if err := h.browser.Navigate(page, h.url); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	result, err := browser.ScrollToEnd(ctx, page, h.scroll)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	h.logger.Info("listing loaded", "scrolls", result.Scrolls, "height", result.Height, "converged", result.Converged)

	return h.extractor.Extract(page)
}
