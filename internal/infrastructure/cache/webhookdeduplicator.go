package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	webhookKeyPrefix = "billing:webhook:"
	// DefaultWebhookDedupTTL bounds how long a delivered event is remembered.
	DefaultWebhookDedupTTL = 24 * time.Hour
)

// WebhookDeduplicator remembers provider deliveries in Redis so that a redelivered
// event can be acknowledged without touching the database.
type WebhookDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWebhookDeduplicator creates a new WebhookDeduplicator. A non-positive ttl
// falls back to DefaultWebhookDedupTTL.
func NewWebhookDeduplicator(client *redis.Client, ttl time.Duration) *WebhookDeduplicator {
	if ttl <= 0 {
		ttl = DefaultWebhookDedupTTL
	}
	return &WebhookDeduplicator{client: client, ttl: ttl}
}

// buildKey formats billing:webhook:{event}:{id}
func (d *WebhookDeduplicator) buildKey(event, id string) string {
	return fmt.Sprintf("%s%s:%s", webhookKeyPrefix, event, id)
}

// TryAcquire atomically claims a delivery with SETNX.
// Returns false when another delivery of the same event already holds the key.
func (d *WebhookDeduplicator) TryAcquire(ctx context.Context, event, id string) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(event, id), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire webhook key: %w", err)
	}
	return acquired, nil
}

// Release drops the key so the provider's next retry is processed.
func (d *WebhookDeduplicator) Release(ctx context.Context, event, id string) error {
	if err := d.client.Del(ctx, d.buildKey(event, id)).Err(); err != nil {
		return fmt.Errorf("failed to release webhook key: %w", err)
	}
	return nil
}
