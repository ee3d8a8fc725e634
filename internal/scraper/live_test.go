package scraper

import (
	"errors"
	"testing"

	"github.com/maltedev/wishlist-mirror/internal/parser"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle stands in for a browser element. Only the methods the live
// extractor calls are implemented; anything else panics on the nil embed.
type fakeHandle struct {
	playwright.ElementHandle
	attrs  map[string]string
	parent *fakeHandle
	tag    string
	img    *fakeHandle
}

func (f *fakeHandle) GetAttribute(name string) (string, error) {
	return f.attrs[name], nil
}

func (f *fakeHandle) EvaluateHandle(_ string, arg ...interface{}) (playwright.JSHandle, error) {
	selector, _ := arg[0].(string)
	for n := f; n != nil; n = n.parent {
		if n.tag == selector {
			return &fakeJSHandle{el: n}, nil
		}
	}
	return &fakeJSHandle{}, nil
}

func (f *fakeHandle) QuerySelector(selector string) (playwright.ElementHandle, error) {
	if selector == parser.ImageSelector && f.img != nil {
		return f.img, nil
	}
	return nil, nil
}

type fakeJSHandle struct {
	playwright.JSHandle
	el *fakeHandle
}

func (j *fakeJSHandle) AsElement() playwright.ElementHandle {
	if j.el == nil {
		return nil
	}
	return j.el
}

type fakePage struct {
	handles []playwright.ElementHandle
	err     error
}

func (p *fakePage) QuerySelectorAll(string) ([]playwright.ElementHandle, error) {
	return p.handles, p.err
}

func listEntry(asin, title, src string) *fakeHandle {
	li := &fakeHandle{tag: "li"}
	if src != "" {
		li.img = &fakeHandle{tag: "img", attrs: map[string]string{"src": src}}
	}
	return &fakeHandle{
		tag:    "a",
		parent: li,
		attrs:  map[string]string{"href": "/dp/" + asin + "/?coliid=X", "title": title},
	}
}

func TestLiveExtractor_Extract(t *testing.T) {
	orphan := &fakeHandle{tag: "a", attrs: map[string]string{"href": "/dp/B000000009/", "title": "Orphan"}}

	page := &fakePage{handles: []playwright.ElementHandle{
		listEntry("B000000001", "One", "https://m.media-amazon.com/images/I/one._SS135_.jpg"),
		listEntry("B000000002", "No image", ""),
		orphan,
		listEntry("B000000003", " Three ", "https://m.media-amazon.com/images/I/three._SS135_.jpg"),
	}}

	items, err := NewLiveExtractor(parser.DefaultOptions()).Extract(page)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "B000000001", items[0].ID)
	assert.Equal(t, "https://m.media-amazon.com/images/I/one._SL500_.jpg", items[0].ImageSourceURL)
	assert.Equal(t, "B000000003", items[1].ID)
	assert.Equal(t, "Three", items[1].Name)
}

func TestLiveExtractor_QueryError(t *testing.T) {
	_, err := NewLiveExtractor(parser.DefaultOptions()).Extract(&fakePage{err: errors.New("page crashed")})
	assert.ErrorContains(t, err, "page crashed")
}
