package storage

import (
	"context"
	"errors"
	"time"

	"footybot/backend/internal/logging"
	"footybot/backend/internal/roster"

	"github.com/redis/go-redis/v9"
)

// CachedRoleLookup remembers group roles in Redis for a short time so that
// repeated admin checks do not hit the Telegram API.
type CachedRoleLookup struct {
	next roster.RoleLookup
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedRoleLookup wraps next. A ttl of zero disables caching.
func NewCachedRoleLookup(next roster.RoleLookup, rdb *redis.Client, ttl time.Duration) *CachedRoleLookup {
	return &CachedRoleLookup{next: next, rdb: rdb, ttl: ttl}
}

// LookupRole serves from the cache when possible. Cache failures fall through
// to the wrapped lookup; lookup failures are never cached.
func (c *CachedRoleLookup) LookupRole(ctx context.Context, chatID, userID int64) (roster.Role, error) {
	if c.rdb == nil || c.ttl <= 0 {
		return c.next.LookupRole(ctx, chatID, userID)
	}

	key := RoleKey(chatID, userID)
	l := logging.Ctx(ctx)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return roster.Role(cached), nil
	case errors.Is(err, redis.Nil):
	default:
		l.Warn().Err(err).Str("key", key).Msg("role cache read failed")
	}

	role, err := c.next.LookupRole(ctx, chatID, userID)
	if err != nil {
		return roster.RoleUnknown, err
	}

	if err := c.rdb.Set(ctx, key, string(role), c.ttl).Err(); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("role cache write failed")
	}
	return role, nil
}
