package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenCache maps bearer tokens to the id of the user owning them
type TokenCache interface {
	SetUser(ctx context.Context, token string, userID primitive.ObjectID) error
	GetUser(ctx context.Context, token string) (primitive.ObjectID, bool, error)
	Delete(ctx context.Context, token string) error
}

type tokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenCache creates a new token cache
func NewTokenCache(client *redis.Client, ttl time.Duration) TokenCache {
	return &tokenCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *tokenCache) key(token string) string {
	return fmt.Sprintf("token:%s", token)
}

func (c *tokenCache) SetUser(ctx context.Context, token string, userID primitive.ObjectID) error {
	return c.client.Set(ctx, c.key(token), userID.Hex(), c.ttl).Err()
}

// GetUser reports false on a miss
func (c *tokenCache) GetUser(ctx context.Context, token string) (primitive.ObjectID, bool, error) {
	hex, err := c.client.Get(ctx, c.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		// unreadable entry; drop it and treat as a miss
		_ = c.Delete(ctx, token)
		return primitive.NilObjectID, false, nil
	}
	return id, true, nil
}

func (c *tokenCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}
