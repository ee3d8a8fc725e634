package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/maltedev/wishlist-mirror/internal/manifest"
	"github.com/maltedev/wishlist-mirror/internal/models"
)

// Handlers serve a local copy of the published site.
type Handlers struct {
	siteDir      string
	manifestPath string
	imagesSubdir string
	logger       *slog.Logger
}

func NewHandlers(siteDir, manifestName, imagesSubdir string, logger *slog.Logger) *Handlers {
	return &Handlers{
		siteDir:      siteDir,
		manifestPath: filepath.Join(siteDir, manifestName),
		imagesSubdir: imagesSubdir,
		logger:       logger.With("component", "preview"),
	}
}

// ItemsResponse wraps the manifest for the items endpoint
type ItemsResponse struct {
	Items []models.ManifestEntry `json:"items"`
	Count int                    `json:"count"`
}

// Health reports whether the manifest is readable
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{"status": "ok"}
	status := http.StatusOK

	info, err := os.Stat(h.manifestPath)
	switch {
	case err == nil:
		health["manifest_updated_at"] = info.ModTime().UTC().Format(time.RFC3339)
	case errors.Is(err, fs.ErrNotExist):
		health["status"] = "warning"
		health["message"] = "manifest not generated yet"
	default:
		health["status"] = "error"
		health["message"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	h.respondJSON(w, status, health)
}

// ListItems returns the manifest entries in published order
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	entries, err := manifest.Load(h.manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.respondError(w, http.StatusNotFound, "manifest not found")
			return
		}
		h.logger.Error("failed to load manifest", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load manifest")
		return
	}

	h.respondJSON(w, http.StatusOK, ItemsResponse{Items: entries, Count: len(entries)})
}

// GetItem returns one manifest entry by catalog identifier
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !models.ASINPattern.MatchString(id) {
		h.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	entries, err := manifest.Load(h.manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.respondError(w, http.StatusNotFound, "manifest not found")
			return
		}
		h.logger.Error("failed to load manifest", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load manifest")
		return
	}

	for _, entry := range entries {
		if entry.ID == id {
			h.respondJSON(w, http.StatusOK, entry)
			return
		}
	}

	h.respondError(w, http.StatusNotFound, "item not found")
}

// Router mounts the API next to the static site files.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Get("/items/{id}", h.GetItem)
	})

	r.Get("/"+filepath.Base(h.manifestPath), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, h.manifestPath)
	})

	images := http.StripPrefix("/"+h.imagesSubdir+"/",
		http.FileServer(http.Dir(filepath.Join(h.siteDir, h.imagesSubdir))))
	r.Handle("/"+h.imagesSubdir+"/*", images)

	return r
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
