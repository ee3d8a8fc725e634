package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeWishlistUpdated is published after a push changed the site
	EventTypeWishlistUpdated EventType = "WISHLIST_UPDATED"
)

type WishlistUpdatedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	ItemCount int       `json:"item_count"`
	IDs       []string  `json:"ids"`
	PagesURL  string    `json:"pages_url,omitempty"`
	Source    string    `json:"source"`
}

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Notifier appends update events to a Redis stream.
type Notifier struct {
	redis    RedisClient
	stream   string
	pagesURL string
	logger   *slog.Logger
}

func NewNotifier(client RedisClient, stream, pagesURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		redis:    client,
		stream:   stream,
		pagesURL: pagesURL,
		logger:   logger.With("component", "notifier"),
	}
}

func (n *Notifier) NotifyUpdated(ctx context.Context, runID uuid.UUID, items []*models.Item) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	payload := WishlistUpdatedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeWishlistUpdated),
		Timestamp: time.Now().UTC(),
		RunID:     runID.String(),
		ItemCount: len(items),
		IDs:       ids,
		PagesURL:  n.pagesURL,
		Source:    "wishlist-sync",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"type":       payload.EventType,
			"event_id":   payload.EventID,
			"run_id":     payload.RunID,
			"timestamp":  fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
			"item_count": payload.ItemCount,
		},
	}

	id, err := n.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	n.logger.Info("update event published", "stream", n.stream, "stream_id", id, "event_id", payload.EventID)
	return nil
}
