package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/maltedev/wishlist-mirror/internal/ratelimit"
)

var ErrDownload = errors.New("failed to download image")

type Options struct {
	// Dir is where image files are written.
	Dir string
	// Subdir is Dir relative to the site root, used for LocalImagePath.
	Subdir    string
	Timeout   time.Duration
	Delay     time.Duration
	UserAgent string
}

func DefaultOptions(dir string) Options {
	return Options{
		Dir:       dir,
		Subdir:    "images",
		Timeout:   15 * time.Second,
		Delay:     500 * time.Millisecond,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}
}

type Result struct {
	Items      []*models.Item
	Existing   int
	Downloaded int
	Failed     int
}

// Synchronizer makes sure every item has its image on disk. Files that
// already exist are reused without touching the network.
type Synchronizer struct {
	client   *resty.Client
	opts     Options
	throttle ratelimit.RateLimiter
	logger   *slog.Logger
}

func NewSynchronizer(opts Options, logger *slog.Logger) *Synchronizer {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent)

	return &Synchronizer{
		client:   client,
		opts:     opts,
		throttle: ratelimit.NewThrottle(opts.Delay),
		logger:   logger.With("component", "asset_sync"),
	}
}

// Sync returns the items whose image is present locally, in input order,
// with LocalImagePath set. Items whose download fails are left out.
func (s *Synchronizer) Sync(ctx context.Context, items []*models.Item) (*Result, error) {
	if err := os.MkdirAll(s.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	result := &Result{Items: make([]*models.Item, 0, len(items))}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		filename := models.ImageFilename(item.ID)
		target := filepath.Join(s.opts.Dir, filename)

		if _, err := os.Stat(target); err == nil {
			item.LocalImagePath = models.LocalImagePath(s.opts.Subdir, item.ID)
			result.Items = append(result.Items, item)
			result.Existing++
			s.logger.Debug("image exists", "file", filename)
			continue
		}

		if err := s.throttle.Wait(ctx); err != nil {
			return result, err
		}

		err := s.download(ctx, item.ImageSourceURL, target)
		s.throttle.Done()
		if err != nil {
			result.Failed++
			s.logger.Error("download failed", "file", filename, "url", item.ImageSourceURL, "error", err)
			continue
		}

		item.LocalImagePath = models.LocalImagePath(s.opts.Subdir, item.ID)
		result.Items = append(result.Items, item)
		result.Downloaded++
		s.logger.Info("downloaded image", "file", filename)
	}

	s.logger.Info("images synchronized",
		"downloaded", result.Downloaded,
		"existing", result.Existing,
		"failed", result.Failed)

	return result, nil
}

func (s *Synchronizer) download(ctx context.Context, url, target string) error {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode())
	}

	if err := writeFileAtomic(target, resp.Body()); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	return nil
}

// writeFileAtomic writes to a temp file next to path and renames it into
// place, so a partial download never appears under the final name.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
