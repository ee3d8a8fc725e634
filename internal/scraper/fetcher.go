package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

type FetchOptions struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "ja,en-US;q=0.7,en;q=0.3",
	}
}

// Fetcher retrieves listing markup with a single GET.
type Fetcher struct {
	client *resty.Client
	logger *slog.Logger
}

func NewFetcher(opts FetchOptions) *Fetcher {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8").
		SetHeader("Accept-Language", opts.AcceptLanguage)

	return &Fetcher{
		client: client,
		logger: slog.Default().With("component", "fetcher"),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.logger.Info("fetching listing", "url", url)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: %s returned status %d", ErrAcquisition, url, resp.StatusCode())
	}

	f.logger.Debug("fetched listing", "bytes", len(resp.Body()), "duration", resp.Time())
	return string(resp.Body()), nil
}
