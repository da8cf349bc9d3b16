package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 30 * time.Second

// UnreadCache keeps per-user unread counters in Redis so the badge poll
// doesn't hit PostgreSQL on every request. A nil cache disables caching.
type UnreadCache struct {
	client *redis.Client
}

// NewUnreadCache creates an unread counter cache on the given Redis client.
func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client}
}

func unreadKey(userID uuid.UUID) string {
	return "messaging:unread:" + userID.String()
}

// Get returns the cached count and whether it was present.
func (c *UnreadCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	value, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with a short TTL.
func (c *UnreadCache) Set(ctx context.Context, userID uuid.UUID, count int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, unreadKey(userID), strconv.FormatInt(count, 10), unreadCacheTTL)
}

// Invalidate drops the cached count after a send or a read.
func (c *UnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, unreadKey(userID))
}
