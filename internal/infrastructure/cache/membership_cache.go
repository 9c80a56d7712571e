// Package cache provides the optional Redis read-through cache in front of
// the room repository.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/homeshare/backend/internal/domain/room"
)

// MembershipCache decorates a room.Repository with cached membership
// lookups. Membership never changes through this service, so a short TTL
// bounds staleness from upstream changes. A nil client disables caching and
// every call passes straight through.
type MembershipCache struct {
	next   room.Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewMembershipCache creates a caching wrapper around the given repository
func NewMembershipCache(next room.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *MembershipCache {
	return &MembershipCache{next: next, client: client, ttl: ttl, logger: logger}
}

// IsMember answers from cache when possible, falling back to the repository.
// Cache failures degrade to direct lookups, never to errors.
func (c *MembershipCache) IsMember(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	if c.client == nil {
		return c.next.IsMember(ctx, userID, roomID)
	}

	key := membershipKey(roomID, userID)
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached == "1", nil
	}
	if err != redis.Nil {
		c.logger.Warn("membership cache read failed", zap.Error(err))
	}

	member, err := c.next.IsMember(ctx, userID, roomID)
	if err != nil {
		return false, err
	}

	value := "0"
	if member {
		value = "1"
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("membership cache write failed", zap.Error(err))
	}
	return member, nil
}

// AreMembers checks each user through the cache
func (c *MembershipCache) AreMembers(ctx context.Context, userIDs []uuid.UUID, roomID uuid.UUID) (bool, error) {
	if c.client == nil {
		return c.next.AreMembers(ctx, userIDs, roomID)
	}
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		member, err := c.IsMember(ctx, userID, roomID)
		if err != nil || !member {
			return false, err
		}
	}
	return true, nil
}

// FindByID is not cached
func (c *MembershipCache) FindByID(ctx context.Context, roomID uuid.UUID) (*room.Room, error) {
	return c.next.FindByID(ctx, roomID)
}

// ListMembers is not cached
func (c *MembershipCache) ListMembers(ctx context.Context, roomID uuid.UUID) ([]*room.User, error) {
	return c.next.ListMembers(ctx, roomID)
}

func membershipKey(roomID, userID uuid.UUID) string {
	return fmt.Sprintf("homeshare:membership:%s:%s", roomID, userID)
}
