package parser

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/maltedev/wishlist-mirror/internal/models"
)

const (
	// imageWindow is how far before an item anchor a thumbnail may sit and
	// still be attributed to it.
	imageWindow = 2000

	// fallbackOffset skips the thumbnails rendered above the list on the
	// wishlist layout this was tuned against.
	fallbackOffset = 2
)

// MarkupExtractor finds items in raw wishlist markup with regular expressions
// and attributes thumbnails to items by their position in the text.
type MarkupExtractor struct {
	opts         Options
	itemPattern  *regexp.Regexp
	imagePattern *regexp.Regexp
	logger       *slog.Logger
}

func NewMarkupExtractor(opts Options) *MarkupExtractor {
	return &MarkupExtractor{
		opts:         opts,
		itemPattern:  regexp.MustCompile(`(?s)id="itemName_([^"]+)"[^>]*title="([^"]*)"[^>]*href="(/dp/([A-Z0-9]+)/[^"]*)"`),
		imagePattern: regexp.MustCompile(`src="(https://m\.media-amazon\.com/images/I/[^"]+` + regexp.QuoteMeta(opts.ThumbToken) + `jpg)"`),
		logger:       slog.Default().With("component", "markup_extractor"),
	}
}

func (p *MarkupExtractor) Extract(markup string) ([]*models.Item, error) {
	var thumbnails []string
	for _, m := range p.imagePattern.FindAllStringSubmatch(markup, -1) {
		thumbnails = append(thumbnails, m[1])
	}

	var items []*models.Item

	for _, m := range p.itemPattern.FindAllStringSubmatchIndex(markup, -1) {
		title := html.UnescapeString(markup[m[4]:m[5]])
		asin := markup[m[8]:m[9]]

		imageURL := p.resolveImage(markup, thumbnails, m[0], len(items))
		if imageURL == "" {
			p.logger.Debug("no image for item", "asin", asin)
			continue
		}

		items = append(items, models.NewItem(asin, title, p.opts.BaseURL, p.opts.HighRes(imageURL)))
		p.logger.Debug("found item", "asin", asin, "name", truncate(title, 40))
	}

	p.logger.Info("parsed wishlist markup", "items", len(items), "thumbnails", len(thumbnails))
	return items, nil
}

// resolveImage picks the last thumbnail whose first occurrence lies within
// imageWindow characters before the anchor. Failing that it guesses by
// position: thumbnails[ordinal+fallbackOffset], where ordinal counts the
// items accepted so far. The guess only holds for one page layout.
func (p *MarkupExtractor) resolveImage(markup string, thumbnails []string, itemPos, ordinal int) string {
	var found string
	for _, thumb := range thumbnails {
		pos := strings.Index(markup, thumb)
		if pos < itemPos && pos > itemPos-imageWindow {
			found = thumb
		}
	}

	if found != "" {
		return found
	}

	if i := ordinal + fallbackOffset; i < len(thumbnails) {
		return thumbnails[i]
	}

	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
