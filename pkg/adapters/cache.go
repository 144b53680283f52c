package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTreeNotCached is returned when no cached hierarchy exists for an adapter.
var ErrTreeNotCached = errors.New("adapter tree not cached")

const treeKeyPrefix = "flowdesk:adapters:tree:"

// Cache stores fetched adapter hierarchies in redis so the tree picker does
// not hit slow external adapters on every open.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, adapterID string) (*Tree, error) {
	payload, err := c.client.Get(ctx, treeKeyPrefix+adapterID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTreeNotCached
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cached tree for adapter %s: %w", adapterID, err)
	}

	tree := &Tree{}
	if err := json.Unmarshal(payload, tree); err != nil {
		return nil, fmt.Errorf("corrupt cached tree for adapter %s: %w", adapterID, err)
	}

	return tree, nil
}

func (c *Cache) Set(ctx context.Context, adapterID string, tree *Tree) error {
	payload, err := json.Marshal(tree)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, treeKeyPrefix+adapterID, payload, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, adapterID string) error {
	return c.client.Del(ctx, treeKeyPrefix+adapterID).Err()
}
