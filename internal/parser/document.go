package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/wishlist-mirror/internal/models"
)

// DocumentExtractor applies the DOM walk to static markup parsed with goquery.
type DocumentExtractor struct {
	opts   Options
	logger *slog.Logger
}

func NewDocumentExtractor(opts Options) *DocumentExtractor {
	return &DocumentExtractor{
		opts:   opts,
		logger: slog.Default().With("component", "document_extractor"),
	}
}

func (p *DocumentExtractor) Extract(html string) ([]*models.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var anchors []Element
	doc.Find(AnchorSelector).Each(func(_ int, s *goquery.Selection) {
		anchors = append(anchors, selectionElement{sel: s})
	})

	items := p.opts.ExtractElements(anchors, p.logger)
	p.logger.Info("parsed wishlist document", "anchors", len(anchors), "items", len(items))

	return items, nil
}

type selectionElement struct {
	sel *goquery.Selection
}

func (e selectionElement) Attribute(name string) (string, error) {
	v, _ := e.sel.Attr(name)
	return v, nil
}

func (e selectionElement) Closest(selector string) (Element, error) {
	c := e.sel.Closest(selector)
	if c.Length() == 0 {
		return nil, ErrNoElement
	}
	return selectionElement{sel: c.First()}, nil
}

func (e selectionElement) QuerySelector(selector string) (Element, error) {
	f := e.sel.Find(selector)
	if f.Length() == 0 {
		return nil, ErrNoElement
	}
	return selectionElement{sel: f.First()}, nil
}
