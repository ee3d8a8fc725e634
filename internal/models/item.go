package models

import (
	"path"
	"regexp"
	"strings"
)

// ASINPattern matches the catalog identifiers used as item keys.
var ASINPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// Item is one wishlist entry. It only lives for the duration of a run; the
// downloaded image and manifest row are what persist.
type Item struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DetailURL      string `json:"url"`
	ImageSourceURL string `json:"image_url"`
	LocalImagePath string `json:"image,omitempty"`
}

// ManifestEntry is the projection of an Item consumed by the static site.
type ManifestEntry struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

func NewItem(asin, name, baseURL, imageURL string) *Item {
	return &Item{
		ID:             asin,
		Name:           name,
		DetailURL:      DetailURL(baseURL, asin),
		ImageSourceURL: imageURL,
	}
}

// DetailURL builds the canonical product link for an ASIN.
func DetailURL(baseURL, asin string) string {
	return strings.TrimRight(baseURL, "/") + "/dp/" + asin
}

// ImageFilename is the asset filename for an item id.
func ImageFilename(id string) string {
	return id + ".jpg"
}

// LocalImagePath is the site-relative path of an item's asset.
func LocalImagePath(subdir, id string) string {
	return path.Join(subdir, ImageFilename(id))
}

func (i *Item) Entry() ManifestEntry {
	return ManifestEntry{
		ID:    i.ID,
		Image: i.LocalImagePath,
		URL:   i.DetailURL,
	}
}

func (i *Item) Validate() []string {
	var errors []string

	if i.ID == "" {
		errors = append(errors, "ID is required")
	} else if !ASINPattern.MatchString(i.ID) {
		errors = append(errors, "ID is not a catalog identifier")
	}

	if i.ImageSourceURL == "" {
		errors = append(errors, "image URL is required")
	}

	return errors
}

// Dedupe drops later items that repeat an earlier ID, keeping document order.
func Dedupe(items []*Item) []*Item {
	seen := make(map[string]bool, len(items))
	out := make([]*Item, 0, len(items))

	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}

	return out
}
