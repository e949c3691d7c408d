package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

const (
	resultKeyPrefix = "stateboard:discovery:" // Cached scan per project: stateboard:discovery:{projectPath}
	eventChannel    = "discovery:events"      // Pub/Sub channel for scan lifecycle events
	resultTTL       = 7 * 24 * time.Hour
)

// ScanRepository caches discovery results and fans out scan events
// through Redis.
type ScanRepository struct {
	client *redis.Client
}

func NewScanRepository(client *redis.Client) *ScanRepository {
	return &ScanRepository{client: client}
}

// SaveResult stores the latest scan for its project.
func (r *ScanRepository) SaveResult(ctx context.Context, result *domain.DiscoveryResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal discovery result: %w", err)
	}

	if err := r.client.Set(ctx, r.resultKey(result.ProjectPath), data, resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to save discovery result: %w", err)
	}
	return nil
}

// GetResult returns the cached scan for a project, or ErrNoDiscovery.
func (r *ScanRepository) GetResult(ctx context.Context, projectPath string) (*domain.DiscoveryResult, error) {
	data, err := r.client.Get(ctx, r.resultKey(projectPath)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNoDiscovery
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery result: %w", err)
	}

	var result domain.DiscoveryResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discovery result: %w", err)
	}
	return &result, nil
}

// DeleteResult drops the cached scan for a project.
func (r *ScanRepository) DeleteResult(ctx context.Context, projectPath string) error {
	if err := r.client.Del(ctx, r.resultKey(projectPath)).Err(); err != nil {
		return fmt.Errorf("failed to delete discovery result: %w", err)
	}
	return nil
}

// PublishEvent broadcasts a scan lifecycle event.
func (r *ScanRepository) PublishEvent(ctx context.Context, ev domain.ScanEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}
	if err := r.client.Publish(ctx, eventChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish scan event: %w", err)
	}
	return nil
}

// SubscribeEvents subscribes to the scan event channel. The caller owns
// the returned subscription and must Close it.
func (r *ScanRepository) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, eventChannel)
}

func (r *ScanRepository) resultKey(projectPath string) string {
	return fmt.Sprintf("%s%s", resultKeyPrefix, projectPath)
}
