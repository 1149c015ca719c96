// Package draft holds in-progress checkout form state in Redis, scoped by
// resource id, with a bounded TTL. It is UI convenience only: nothing in
// the booking lifecycle reads from it.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TTL bounds how long an abandoned draft survives.
const TTL = 24 * time.Hour

// Cache stores drafts keyed by scope.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: TTL}
}

func draftKey(scope string) string {
	return fmt.Sprintf("draft:%s", scope)
}

// Put merges incoming fields into the stored draft and resets the TTL.
// Incoming fields win over stored ones; fields present only in the stored
// draft are preserved, so a client running an older form schema never
// clobbers fields written by a newer one.
func (c *Cache) Put(ctx context.Context, scope string, fields map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	stored, err := c.Get(ctx, scope)
	if err != nil && err != redis.Nil {
		return nil, err
	}

	merged := MergeFields(stored, fields)

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := c.client.Set(ctx, draftKey(scope), data, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store draft %s: %w", scope, err)
	}
	return merged, nil
}

// Get returns the stored draft, or redis.Nil when none exists.
func (c *Cache) Get(ctx context.Context, scope string) (map[string]json.RawMessage, error) {
	data, err := c.client.Get(ctx, draftKey(scope)).Result()
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", scope, err)
	}
	return fields, nil
}

// Delete discards the draft.
func (c *Cache) Delete(ctx context.Context, scope string) error {
	return c.client.Del(ctx, draftKey(scope)).Err()
}

// MergeFields applies the draft merge precedence: incoming fields override
// stored ones, stored-only fields survive.
func MergeFields(stored, incoming map[string]json.RawMessage) map[string]json.RawMessage {
	merged := make(map[string]json.RawMessage, len(stored)+len(incoming))
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
