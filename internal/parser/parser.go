package parser

import (
	"regexp"
	"strings"

	"github.com/maltedev/wishlist-mirror/internal/models"
)

// Extractor turns acquired listing markup into items in document order. An
// empty result is not an error.
type Extractor interface {
	Extract(html string) ([]*models.Item, error)
}

type Options struct {
	BaseURL      string
	ThumbToken   string
	HighResToken string
}

func DefaultOptions() Options {
	return Options{
		BaseURL:      "https://www.amazon.co.jp",
		ThumbToken:   "._SS135_.",
		HighResToken: "._SL500_.",
	}
}

var detailPathPattern = regexp.MustCompile(`/dp/([A-Z0-9]+)`)

// ExtractASIN returns the catalog identifier embedded in a detail-page link.
func ExtractASIN(href string) (string, bool) {
	matches := detailPathPattern.FindStringSubmatch(href)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// HighRes swaps the thumbnail size token of an image URL for the
// high-resolution one.
func (o Options) HighRes(imageURL string) string {
	return strings.ReplaceAll(imageURL, o.ThumbToken, o.HighResToken)
}
