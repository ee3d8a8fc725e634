package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[
  {
    "id": "4065111111",
    "image": "images/4065111111.jpg",
    "url": "https://www.amazon.co.jp/dp/4065111111"
  },
  {
    "id": "B0C1234XYZ",
    "image": "images/B0C1234XYZ.jpg",
    "url": "https://www.amazon.co.jp/dp/B0C1234XYZ"
  }
]`

func newSite(t *testing.T, withManifest bool) (string, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "4065111111.jpg"), []byte("jpeg"), 0644))
	if withManifest {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(testManifest), 0644))
	}

	return dir, NewHandlers(dir, "data.json", "images", slog.Default()).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newSite(t, true)

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "manifest_updated_at")
}

func TestHealth_NoManifest(t *testing.T) {
	_, h := newSite(t, false)

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "warning", body["status"])
}

func TestListItems(t *testing.T) {
	_, h := newSite(t, true)

	rec := get(t, h, "/api/v1/items")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ItemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "4065111111", resp.Items[0].ID)
	assert.Equal(t, "B0C1234XYZ", resp.Items[1].ID)
}

func TestListItems_NoManifest(t *testing.T) {
	_, h := newSite(t, false)

	rec := get(t, h, "/api/v1/items")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetItem(t *testing.T) {
	_, h := newSite(t, true)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "found", path: "/api/v1/items/B0C1234XYZ", status: http.StatusOK},
		{name: "unknown", path: "/api/v1/items/B000000000", status: http.StatusNotFound},
		{name: "invalid id", path: "/api/v1/items/not-an-asin", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusOK {
				var entry models.ManifestEntry
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
				assert.Equal(t, "images/B0C1234XYZ.jpg", entry.Image)
			}
		})
	}
}

func TestGetItem_NoManifest(t *testing.T) {
	_, h := newSite(t, false)

	rec := get(t, h, "/api/v1/items/B0C1234XYZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticFiles(t *testing.T) {
	_, h := newSite(t, true)

	rec := get(t, h, "/data.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, testManifest, rec.Body.String())

	rec = get(t, h, "/images/4065111111.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())

	rec = get(t, h, "/images/missing.jpg")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
