package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/wishlist-mirror/internal/models"
)

var ErrNoElement = errors.New("element not found")

const (
	AnchorSelector    = `[id^="itemName_"]`
	ContainerSelector = "li"
	ImageSelector     = "img"
)

// Element is the slice of a DOM node the item walk needs. It is implemented
// over goquery selections and over live browser element handles.
type Element interface {
	Attribute(name string) (string, error)
	// Closest returns the nearest ancestor (or self) matching selector, or
	// ErrNoElement.
	Closest(selector string) (Element, error)
	// QuerySelector returns the first descendant matching selector, or
	// ErrNoElement.
	QuerySelector(selector string) (Element, error)
}

// ItemFromElement reads one item from its name anchor: the ASIN from the
// anchor's link, the image from the enclosing list entry.
func (o Options) ItemFromElement(anchor Element) (*models.Item, error) {
	href, err := anchor.Attribute("href")
	if err != nil {
		return nil, fmt.Errorf("failed to read href: %w", err)
	}

	asin, ok := ExtractASIN(href)
	if !ok {
		return nil, fmt.Errorf("no catalog identifier in %q", href)
	}

	name, err := anchor.Attribute("title")
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}

	container, err := anchor.Closest(ContainerSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to find list entry for %s: %w", asin, err)
	}

	img, err := container.QuerySelector(ImageSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to find image for %s: %w", asin, err)
	}

	src, err := img.Attribute("src")
	if err != nil {
		return nil, fmt.Errorf("failed to read image source for %s: %w", asin, err)
	}
	if src == "" {
		return nil, fmt.Errorf("empty image source for %s", asin)
	}

	return models.NewItem(asin, strings.TrimSpace(name), o.BaseURL, o.HighRes(src)), nil
}

// ExtractElements walks every anchor. A failing anchor is logged and skipped.
func (o Options) ExtractElements(anchors []Element, logger *slog.Logger) []*models.Item {
	items := make([]*models.Item, 0, len(anchors))

	for i, anchor := range anchors {
		item, err := o.ItemFromElement(anchor)
		if err != nil {
			logger.Warn("skipping item", "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}

	return items
}
