package tutor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultFeedbackTTL = 24 * time.Hour

// FeedbackCache keeps generated quiz feedback in Redis, keyed by (title, score, total).
type FeedbackCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedbackCache creates a cache with the given TTL.
func NewFeedbackCache(client *redis.Client, ttl time.Duration) *FeedbackCache {
	if ttl <= 0 {
		ttl = defaultFeedbackTTL
	}
	return &FeedbackCache{client: client, ttl: ttl}
}

func (c *FeedbackCache) key(title string, score, total int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return fmt.Sprintf("ai:feedback:%s:%d:%d", hex.EncodeToString(sum[:8]), score, total)
}

// Get returns the cached message; ok is false on a miss.
func (c *FeedbackCache) Get(ctx context.Context, title string, score, total int) (string, bool, error) {
	text, err := c.client.Get(ctx, c.key(title, score, total)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

// Set stores a message.
func (c *FeedbackCache) Set(ctx context.Context, title string, score, total int, text string) error {
	return c.client.Set(ctx, c.key(title, score, total), text, c.ttl).Err()
}
