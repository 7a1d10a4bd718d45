package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formsapi/internal/model"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormCache holds full form documents. Forms never change after creation,
// so entries are only ever written once per id.
type FormCache interface {
	Set(ctx context.Context, form *model.Form) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Form, error)
}

type formCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormCache creates a new form cache
func NewFormCache(client *redis.Client, ttl time.Duration) FormCache {
	return &formCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *formCache) key(id primitive.ObjectID) string {
	return fmt.Sprintf("form:%s", id.Hex())
}

func (c *formCache) Set(ctx context.Context, form *model.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(form.ID), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *formCache) Get(ctx context.Context, id primitive.ObjectID) (*model.Form, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var form model.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, err
	}
	return &form, nil
}
