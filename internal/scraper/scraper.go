package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/wishlist-mirror/internal/models"
)

var (
	// ErrAcquisition covers network errors, timeouts, non-success statuses
	// and browser failures while loading the listing. It aborts the run.
	ErrAcquisition = errors.New("failed to acquire listing")
)

// Harvester loads the listing and extracts its items in document order.
type Harvester interface {
	Harvest(ctx context.Context) ([]*models.Item, error)
}
