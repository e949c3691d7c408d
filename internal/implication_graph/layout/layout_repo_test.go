package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func sampleLayout() map[string]domain.Position {
	return map[string]domain.Position{
		"created": {X: 120, Y: 100},
		"pending": {X: 380, Y: 100},
	}
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo := NewRepository(testRedis(t), false)
	ctx := context.Background()
	project := t.TempDir()

	require.NoError(t, repo.Save(ctx, project, sampleLayout()))

	got, err := repo.Get(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, sampleLayout(), got)
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := NewRepository(testRedis(t), false)

	_, err := repo.Get(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoLayout)
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(testRedis(t), false)
	ctx := context.Background()
	project := t.TempDir()

	require.NoError(t, repo.Save(ctx, project, sampleLayout()))
	require.NoError(t, repo.Delete(ctx, project))

	_, err := repo.Get(ctx, project)
	assert.ErrorIs(t, err, domain.ErrNoLayout)

	assert.NoError(t, repo.Delete(ctx, project), "deleting an absent layout is not an error")
}

func TestRepositoryFileMirror(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewRepository(client, true)
	ctx := context.Background()
	project := t.TempDir()

	require.NoError(t, repo.Save(ctx, project, sampleLayout()))

	mirror := filepath.Join(project, ".stateboard", "layout.json")
	_, err := os.Stat(mirror)
	require.NoError(t, err, "save writes the project-local mirror")

	t.Run("redis loss falls back to the mirror", func(t *testing.T) {
		s.FlushAll()
		got, err := repo.Get(ctx, project)
		require.NoError(t, err)
		assert.Equal(t, sampleLayout(), got)
	})

	t.Run("delete removes the mirror too", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, project))
		_, err := os.Stat(mirror)
		assert.True(t, os.IsNotExist(err))

		_, err = repo.Get(ctx, project)
		assert.ErrorIs(t, err, domain.ErrNoLayout)
	})
}

func TestRepositoryLastWriteWins(t *testing.T) {
	repo := NewRepository(testRedis(t), false)
	ctx := context.Background()
	project := t.TempDir()

	require.NoError(t, repo.Save(ctx, project, sampleLayout()))
	moved := map[string]domain.Position{"created": {X: 1, Y: 2}}
	require.NoError(t, repo.Save(ctx, project, moved))

	got, err := repo.Get(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, moved, got)
}
