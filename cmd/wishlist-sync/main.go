package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/wishlist-mirror/internal/assets"
	"github.com/maltedev/wishlist-mirror/internal/browser"
	"github.com/maltedev/wishlist-mirror/internal/config"
	"github.com/maltedev/wishlist-mirror/internal/database"
	"github.com/maltedev/wishlist-mirror/internal/events"
	"github.com/maltedev/wishlist-mirror/internal/logger"
	"github.com/maltedev/wishlist-mirror/internal/manifest"
	"github.com/maltedev/wishlist-mirror/internal/parser"
	"github.com/maltedev/wishlist-mirror/internal/pipeline"
	"github.com/maltedev/wishlist-mirror/internal/publish"
	"github.com/maltedev/wishlist-mirror/internal/scraper"
	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	harvester, closeHarvester, err := newHarvester(cfg)
	if err != nil {
		log.Error("failed to initialize harvester", "mode", cfg.Scraper.Mode, "error", err)
		return 1
	}
	defer closeHarvester()

	sync := assets.NewSynchronizer(assets.Options{
		Dir:       cfg.ImagesDir(),
		Subdir:    cfg.Images.Subdir,
		Timeout:   cfg.Images.Timeout,
		Delay:     cfg.Images.Delay,
		UserAgent: cfg.Images.UserAgent,
	}, log)
	writer := manifest.NewWriter(cfg.ManifestPath())

	var publisher pipeline.Publisher
	if cfg.Publish.Enabled {
		publisher = publish.NewPublisher(publish.NewExecGit(cfg.Site.Dir, cfg.Publish.GitBinary), log)
	}

	p := pipeline.New(harvester, sync, writer, publisher, log)

	if cfg.Database.DSN != "" {
		db, err := database.New(ctx, cfg.Database.DSN)
		if err != nil {
			log.Warn("run ledger unavailable", "error", err)
		} else {
			defer db.Close()
			runs := database.NewRunRepository(db)
			if err := runs.EnsureSchema(ctx); err != nil {
				log.Warn("run ledger unavailable", "error", err)
			} else {
				p.WithRecorder(runs)
			}
		}
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		p.WithNotifier(events.NewNotifier(client, cfg.Redis.Stream, cfg.Site.PagesURL, log))
	}

	log.Info("starting wishlist sync", "url", cfg.Wishlist.URL, "mode", cfg.Scraper.Mode, "site", cfg.Site.Dir)

	report, err := p.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrExtractionEmpty):
			log.Error("no items found, leaving site untouched", "url", cfg.Wishlist.URL)
		case errors.Is(err, scraper.ErrAcquisition), errors.Is(err, browser.ErrCaptcha):
			log.Error("failed to retrieve wishlist", "error", err)
		default:
			log.Error("sync failed", "error", err)
		}
		return 1
	}

	log.Info("sync finished",
		"items", report.Written,
		"downloaded", report.Downloaded,
		"existing", report.Existing,
		"failed", report.Failed,
		"publish", report.Outcome,
		"duration", report.FinishedAt.Sub(report.StartedAt))

	switch {
	case report.PublishErr != nil:
		log.Warn("site files updated locally but not published", "error", report.PublishErr)
	case report.Outcome == publish.OutcomePushed:
		log.Info("site published", "url", cfg.Site.PagesURL)
	}

	return 0
}

// newHarvester builds the acquisition strategy for the configured mode. The
// returned func releases whatever the strategy holds.
func newHarvester(cfg *config.Config) (scraper.Harvester, func(), error) {
	opts := parser.Options{
		BaseURL:      cfg.Wishlist.BaseURL,
		ThumbToken:   cfg.Images.ThumbToken,
		HighResToken: cfg.Images.HighResToken,
	}

	fetcher := func() *scraper.Fetcher {
		return scraper.NewFetcher(scraper.FetchOptions{
			Timeout:        cfg.Scraper.Timeout,
			UserAgent:      cfg.Scraper.UserAgent,
			AcceptLanguage: cfg.Scraper.AcceptLanguage,
		})
	}

	switch cfg.Scraper.Mode {
	case config.ModeDocument:
		return scraper.NewStaticHarvester(fetcher(), parser.NewDocumentExtractor(opts), cfg.Wishlist.URL), func() {}, nil

	case config.ModeBrowser:
		bopts := browser.DefaultOptions()
		bopts.Headless = cfg.Browser.Headless
		bopts.Timeout = cfg.Browser.Timeout
		bopts.UserAgent = cfg.Scraper.UserAgent
		bopts.AcceptLanguage = cfg.Scraper.AcceptLanguage
		bopts.Locale = cfg.Browser.Locale
		bopts.TimezoneID = cfg.Browser.TimezoneID

		b, err := browser.New(bopts)
		if err != nil {
			return nil, nil, err
		}

		scroll := browser.ScrollOptions{
			SettleInterval: cfg.Browser.SettleInterval,
			MaxScrolls:     cfg.Browser.MaxScrolls,
			Deadline:       cfg.Browser.ScrollDeadline,
		}
		closer := func() {
			if err := b.Close(); err != nil {
				slog.Warn("failed to close browser", "error", err)
			}
		}
		return scraper.NewBrowserHarvester(b, scraper.NewLiveExtractor(opts), scroll, cfg.Wishlist.URL), closer, nil

	default:
		return scraper.NewStaticHarvester(fetcher(), parser.NewMarkupExtractor(opts), cfg.Wishlist.URL), func() {}, nil
	}
}
