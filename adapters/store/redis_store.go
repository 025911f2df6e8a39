package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// consumeScript deletes the nonce record only if it still holds the expected
// nonce, making lookup and delete one atomic step on the Redis side.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
	return 0
end
local rec = cjson.decode(v)
if rec.nonce ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisStore is a Redis implementation of the NonceStore interface.
// Records carry a server-side TTL, so Sweep is a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis nonce store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "faucet:nonce:",
		ttl:    ttl,
	}
}

// Put stores or overwrites the nonce record for the address
func (s *RedisStore) Put(ctx context.Context, address, nonce string) error {
	rec := ports.NonceRecord{
		Nonce:    nonce,
		IssuedAt: time.Now(),
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal nonce record: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+address, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Get returns the nonce record for the address
func (s *RedisStore) Get(ctx context.Context, address string) (ports.NonceRecord, error) {
	payload, err := s.client.Get(ctx, s.prefix+address).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ports.NonceRecord{}, core.ErrUnknownNonce
		}
		return ports.NonceRecord{}, fmt.Errorf("failed to read nonce: %w", err)
	}

	var rec ports.NonceRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return ports.NonceRecord{}, fmt.Errorf("failed to unmarshal nonce record: %w", err)
	}
	return rec, nil
}

// Remove deletes the nonce record for the address
func (s *RedisStore) Remove(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, s.prefix+address).Err(); err != nil {
		return fmt.Errorf("failed to delete nonce: %w", err)
	}
	return nil
}

// Consume atomically deletes the record if it still holds the given nonce
func (s *RedisStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + address}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return res == 1, nil
}

// Sweep is a no-op: records expire server-side via their TTL
func (s *RedisStore) Sweep(ctx context.Context, ttl time.Duration) error {
	return nil
}
