package scraper

import (
	"fmt"
	"log/slog"

	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/maltedev/wishlist-mirror/internal/parser"
	"github.com/playwright-community/playwright-go"
)

// AnchorQuerier is the part of playwright.Page the live extractor uses.
type AnchorQuerier interface {
	QuerySelectorAll(selector string) ([]playwright.ElementHandle, error)
}

// LiveExtractor reads items straight from a rendered page.
type LiveExtractor struct {
	opts   parser.Options
	logger *slog.Logger
}

func NewLiveExtractor(opts parser.Options) *LiveExtractor {
	return &LiveExtractor{
		opts:   opts,
		logger: slog.Default().With("component", "live_extractor"),
	}
}

func (e *LiveExtractor) Extract(page AnchorQuerier) ([]*models.Item, error) {
	handles, err := page.QuerySelectorAll(parser.AnchorSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to query item anchors: %w", err)
	}

	anchors := make([]parser.Element, 0, len(handles))
	for _, h := range handles {
		anchors = append(anchors, handleElement{h: h})
	}

	items := e.opts.ExtractElements(anchors, e.logger)
	e.logger.Info("parsed live listing", "anchors", len(anchors), "items", len(items))

	return items, nil
}

type handleElement struct {
	h playwright.ElementHandle
}

func (e handleElement) Attribute(name string) (string, error) {
	return e.h.GetAttribute(name)
}

func (e handleElement) Closest(selector string) (parser.Element, error) {
	js, err := e.h.EvaluateHandle(`(el, sel) => el.closest(sel)`, selector)
	if err != nil {
		return nil, err
	}

	el := js.AsElement()
	if el == nil {
		return nil, parser.ErrNoElement
	}
	return handleElement{h: el}, nil
}

func (e handleElement) QuerySelector(selector string) (parser.Element, error) {
	el, err := e.h.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, parser.ErrNoElement
	}
	return handleElement{h: el}, nil
}
