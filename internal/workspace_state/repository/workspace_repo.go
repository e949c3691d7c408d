package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/stateboard/stateboard-backend/internal/workspace_state/domain"
)

const keyPrefix = "workspace:"

// Repository stores dashboard workspace entries as opaque JSON in
// Redis. No TTL: the workspace survives until explicitly cleared.
type Repository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Set marshals and stores one workspace entry.
func (r *Repository) Set(ctx context.Context, key string, value any) error {
	if !domain.Known(key) {
		return domain.ErrUnknownKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, data, 0).Err()
}

// SetRaw stores a pre-encoded JSON document unchanged.
func (r *Repository) SetRaw(ctx context.Context, key string, raw json.RawMessage) error {
	if !domain.Known(key) {
		return domain.ErrUnknownKey
	}
	return r.client.Set(ctx, keyPrefix+key, []byte(raw), 0).Err()
}

// Get returns one entry as raw JSON. A missing key and an undecodable
// value both report absence; stale garbage never reaches the client.
func (r *Repository) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !json.Valid(data) {
		return nil, false, nil
	}
	return json.RawMessage(data), true, nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if !domain.Known(key) {
		return domain.ErrUnknownKey
	}
	return r.client.Del(ctx, keyPrefix+key).Err()
}

// All returns every present workspace entry.
func (r *Repository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	for _, key := range domain.Keys() {
		raw, ok, err := r.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = raw
		}
	}
	return out, nil
}

// LastProjectPath reports the project the dashboard used last. The
// value is a JSON string written by the client on every scan.
func (r *Repository) LastProjectPath(ctx context.Context) (string, bool) {
	raw, ok, err := r.Get(ctx, domain.KeyLastProjectPath)
	if err != nil || !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
