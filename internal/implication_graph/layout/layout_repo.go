package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

const (
	layoutKeyPrefix = "graphLayout:" // One layout per project: graphLayout:{projectPath}
	layoutDirName   = ".stateboard"
	layoutFileName  = "layout.json"
)

// Repository persists node positions per project. Redis is the
// primary store; a project-local file mirror survives Redis resets and
// travels with the repository. Last write wins, no versioning.
type Repository struct {
	client     *redis.Client
	mirrorFile bool
}

func NewRepository(client *redis.Client, mirrorFile bool) *Repository {
	return &Repository{client: client, mirrorFile: mirrorFile}
}

// Save stores the layout, overwriting whatever was there.
func (r *Repository) Save(ctx context.Context, projectPath string, layout map[string]domain.Position) error {
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := r.client.Set(ctx, r.key(projectPath), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}

	if r.mirrorFile {
		if err := writeMirror(projectPath, data); err != nil {
			// The mirror is best effort; Redis already has the layout.
			log.Printf("[layout] mirror write for %s: %v", projectPath, err)
		}
	}
	return nil
}

// Get returns the saved layout, preferring Redis and falling back to
// the file mirror. ErrNoLayout when neither exists.
func (r *Repository) Get(ctx context.Context, projectPath string) (map[string]domain.Position, error) {
	data, err := r.client.Get(ctx, r.key(projectPath)).Result()
	if err == nil {
		return decodeLayout([]byte(data))
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	if r.mirrorFile {
		b, ferr := os.ReadFile(mirrorPath(projectPath))
		if ferr == nil {
			return decodeLayout(b)
		}
	}
	return nil, domain.ErrNoLayout
}

// Delete removes the layout from both stores.
func (r *Repository) Delete(ctx context.Context, projectPath string) error {
	if err := r.client.Del(ctx, r.key(projectPath)).Err(); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	if r.mirrorFile {
		if err := os.Remove(mirrorPath(projectPath)); err != nil && !os.IsNotExist(err) {
			log.Printf("[layout] mirror delete for %s: %v", projectPath, err)
		}
	}
	return nil
}

func (r *Repository) key(projectPath string) string {
	return fmt.Sprintf("%s%s", layoutKeyPrefix, projectPath)
}

func decodeLayout(data []byte) (map[string]domain.Position, error) {
	var layout map[string]domain.Position
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	return layout, nil
}

func mirrorPath(projectPath string) string {
	return filepath.Join(projectPath, layoutDirName, layoutFileName)
}

// writeMirror writes atomically: temp file in the target dir, then
// rename.
func writeMirror(projectPath string, data []byte) error {
	dir := filepath.Join(projectPath, layoutDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, layoutFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, layoutFileName))
}
