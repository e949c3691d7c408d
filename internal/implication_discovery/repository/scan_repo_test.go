package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

func testRepo(t *testing.T) (*ScanRepository, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewScanRepository(client), s
}

func sampleResult(project string) *domain.DiscoveryResult {
	return &domain.DiscoveryResult{
		ProjectPath: project,
		ScanID:      "scan-abc1234567",
		ScannedAt:   time.Now().UTC().Truncate(time.Second),
		Files: domain.DiscoveredFiles{Implications: []domain.ImplicationFile{{
			Path:     project + "/created.implication.yaml",
			Metadata: domain.ImplicationMetadata{ClassName: "CreatedImplications", Status: "created", HasXStateConfig: true},
		}}},
		Transitions: []domain.Transition{{From: "created", To: "pending", Event: "REQUEST"}},
	}
}

func TestScanRepositoryRoundTrip(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()
	result := sampleResult("/projects/booking")

	require.NoError(t, repo.SaveResult(ctx, result))

	got, err := repo.GetResult(ctx, "/projects/booking")
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestScanRepositoryMissing(t *testing.T) {
	repo, _ := testRepo(t)

	_, err := repo.GetResult(context.Background(), "/projects/absent")
	assert.ErrorIs(t, err, domain.ErrNoDiscovery)
}

func TestScanRepositoryResultTTL(t *testing.T) {
	repo, s := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveResult(ctx, sampleResult("/projects/booking")))
	ttl := s.TTL("stateboard:discovery:/projects/booking")
	assert.Greater(t, ttl, time.Duration(0), "cached scans expire instead of accumulating")

	s.FastForward(ttl + time.Second)
	_, err := repo.GetResult(ctx, "/projects/booking")
	assert.ErrorIs(t, err, domain.ErrNoDiscovery)
}

func TestScanRepositoryDelete(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveResult(ctx, sampleResult("/projects/booking")))
	require.NoError(t, repo.DeleteResult(ctx, "/projects/booking"))

	_, err := repo.GetResult(ctx, "/projects/booking")
	assert.ErrorIs(t, err, domain.ErrNoDiscovery)
}

func TestScanRepositoryEvents(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	sub := repo.SubscribeEvents(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "subscription confirmation")

	require.NoError(t, repo.PublishEvent(ctx, domain.ScanEvent{
		Type:        domain.EventScanCompleted,
		ProjectPath: "/projects/booking",
		ScanID:      "scan-abc1234567",
	}))

	select {
	case msg := <-sub.Channel():
		var ev domain.ScanEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, domain.EventScanCompleted, ev.Type)
		assert.Equal(t, "/projects/booking", ev.ProjectPath)
		assert.False(t, ev.At.IsZero(), "publishing stamps the event time")
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
