package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/maltedev/wishlist-mirror/internal/models"
)

// Writer serializes synchronized items to the site's data.json.
type Writer struct {
	path   string
	logger *slog.Logger
}

func NewWriter(path string) *Writer {
	return &Writer{
		path:   path,
		logger: slog.Default().With("component", "manifest"),
	}
}

func (w *Writer) Path() string {
	return w.path
}

// Write replaces the manifest with one {id, image, url} entry per item, in
// order.
func (w *Writer) Write(items []*models.Item) error {
	entries := make([]models.ManifestEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Entry())
	}

	data, err := Encode(entries)
	if err != nil {
		return err
	}

	// Write to temp file first for atomicity
	tmpFile := w.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := os.Rename(tmpFile, w.path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	w.logger.Info("manifest written", "path", w.path, "entries", len(entries))
	return nil
}

// Encode renders entries as indented JSON without escaping HTML characters;
// non-ASCII text is kept as is.
func Encode(entries []models.ManifestEntry) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	return buf.Bytes(), nil
}

func Load(path string) ([]models.ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []models.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return entries, nil
}
