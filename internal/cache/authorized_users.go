package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// authorizedUsersKey is the single set holding all currently authorized
// user ids. The TTL is refreshed on every mutation.
const authorizedUsersKey = "authorized_users"

// AuthorizedUserCache mirrors the authorized-user directory as a Redis
// set. Membership add/check are atomic on the Redis side, so concurrent
// read-repair writes are safe.
type AuthorizedUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAuthorizedUserCache(client *redis.Client, ttl time.Duration) *AuthorizedUserCache {
	return &AuthorizedUserCache{client: client, ttl: ttl}
}

func (c *AuthorizedUserCache) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, authorizedUsersKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("check cached authorization: %w", err)
	}
	return ok, nil
}

// Add inserts a single user id (read-repair path).
func (c *AuthorizedUserCache) Add(ctx context.Context, userID string) error {
	if err := c.client.SAdd(ctx, authorizedUsersKey, userID).Err(); err != nil {
		return fmt.Errorf("add authorized user to cache: %w", err)
	}
	if err := c.client.Expire(ctx, authorizedUsersKey, c.ttl).Err(); err != nil {
		return fmt.Errorf("refresh authorized users ttl: %w", err)
	}
	return nil
}

// Replace swaps the whole snapshot, used at consumer startup and after
// directory mutations so revocations are observed.
func (c *AuthorizedUserCache) Replace(ctx context.Context, userIDs []string) error {
	if err := c.client.Del(ctx, authorizedUsersKey).Err(); err != nil {
		return fmt.Errorf("clear authorized users cache: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	members := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		members[i] = id
	}

	if err := c.client.SAdd(ctx, authorizedUsersKey, members...).Err(); err != nil {
		return fmt.Errorf("set authorized users cache: %w", err)
	}
	if err := c.client.Expire(ctx, authorizedUsersKey, c.ttl).Err(); err != nil {
		return fmt.Errorf("refresh authorized users ttl: %w", err)
	}
	return nil
}
