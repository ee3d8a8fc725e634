package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maltedev/wishlist-mirror/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `<html><body><ul id="g-items">
<li><img src="https://m.media-amazon.com/images/I/one._SS135_.jpg">
<a id="itemName_I1" title="はじめての本" href="/dp/4065111111/?coliid=I1">はじめての本</a></li>
<li><img src="https://m.media-amazon.com/images/I/two._SS135_.jpg">
<a id="itemName_I2" title="Second" href="/dp/B0C1234XYZ/?coliid=I2">Second</a></li>
</ul></body></html>`

func TestFetcher_Fetch(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	f := NewFetcher(DefaultFetchOptions())

	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, listingFixture, body)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "ja,en-US;q=0.7,en;q=0.3", gotLang)
}

func TestFetcher_Errors(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewFetcher(DefaultFetchOptions()).Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrAcquisition)
		assert.ErrorContains(t, err, "503")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		opts := DefaultFetchOptions()
		opts.Timeout = 50 * time.Millisecond

		_, err := NewFetcher(opts).Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrAcquisition)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewFetcher(DefaultFetchOptions()).Fetch(context.Background(), url)
		assert.ErrorIs(t, err, ErrAcquisition)
	})
}

func TestStaticHarvester(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	extractors := map[string]parser.Extractor{
		"markup":   parser.NewMarkupExtractor(parser.DefaultOptions()),
		"document": parser.NewDocumentExtractor(parser.DefaultOptions()),
	}

	for name, extractor := range extractors {
		t.Run(name, func(t *testing.T) {
			h := NewStaticHarvester(NewFetcher(DefaultFetchOptions()), extractor, server.URL)

			items, err := h.Harvest(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 2)

			assert.Equal(t, "4065111111", items[0].ID)
			assert.Equal(t, "はじめての本", items[0].Name)
			assert.Equal(t, "https://m.media-amazon.com/images/I/one._SL500_.jpg", items[0].ImageSourceURL)
			assert.Equal(t, "B0C1234XYZ", items[1].ID)
		})
	}
}
