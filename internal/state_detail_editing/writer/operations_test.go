package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
)

type recordingPublisher struct {
	events []discovery.ScanEvent
}

func (r *recordingPublisher) PublishEvent(ctx context.Context, ev discovery.ScanEvent) error {
	r.events = append(r.events, ev)
	return nil
}

type recordingInvalidator struct {
	paths []string
}

func (r *recordingInvalidator) Invalidate(path string) {
	r.paths = append(r.paths, path)
}

// writeBookingProject lays out two definition files on disk and returns
// the matching discovery result.
func writeBookingProject(t *testing.T) (*discovery.DiscoveryResult, string, string) {
	t.Helper()
	project := t.TempDir()

	createdPath := filepath.Join(project, "created.implication.yaml")
	created := `className: CreatedBookingImplications
status: created
hasXStateConfig: true
customTooling: keep-me
transitions:
  - to: pending
    event: REQUEST
    requires: auth
`
	require.NoError(t, os.WriteFile(createdPath, []byte(created), 0o644))

	pendingPath := filepath.Join(project, "pending.implication.yaml")
	pending := `className: PendingBookingImplications
status: pending
hasXStateConfig: true
`
	require.NoError(t, os.WriteFile(pendingPath, []byte(pending), 0o644))

	result := &discovery.DiscoveryResult{
		ProjectPath: project,
		Files: discovery.DiscoveredFiles{Implications: []discovery.ImplicationFile{
			{Path: createdPath, Metadata: discovery.ImplicationMetadata{
				ClassName: "CreatedBookingImplications", Status: "created", HasXStateConfig: true,
			}},
			{Path: pendingPath, Metadata: discovery.ImplicationMetadata{
				ClassName: "PendingBookingImplications", Status: "pending", HasXStateConfig: true,
			}},
		}},
		Transitions: []discovery.Transition{
			{From: "CreatedBookingImplications", To: "pending", Event: "REQUEST", Requires: "auth", SourcePath: createdPath},
		},
	}
	return result, createdPath, pendingPath
}

func loadYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	return doc
}

func TestUpdateMetadata(t *testing.T) {
	result, createdPath, _ := writeBookingProject(t)
	events := &recordingPublisher{}
	cache := &recordingInvalidator{}
	w := New(events, cache)

	meta := result.Files.Implications[0].Metadata
	meta.Status = "confirmed"
	meta.Tags = []string{"flow:booking"}

	path, err := w.UpdateMetadata(context.Background(), result, "created_booking", meta)
	require.NoError(t, err)
	assert.Equal(t, createdPath, path)

	doc := loadYAML(t, createdPath)
	assert.Equal(t, "confirmed", doc["status"])
	assert.Equal(t, []any{"flow:booking"}, doc["tags"])
	assert.Equal(t, "keep-me", doc["customTooling"], "keys this tool does not own survive")
	assert.NotNil(t, doc["transitions"], "a metadata write never touches transitions")

	assert.Equal(t, []string{createdPath}, cache.paths)
	require.Len(t, events.events, 1)
	assert.Equal(t, discovery.EventRescanRequested, events.events[0].Type)
	assert.Equal(t, result.ProjectPath, events.events[0].ProjectPath)
}

func TestUpdateMetadataValidation(t *testing.T) {
	result, _, _ := writeBookingProject(t)
	w := New(nil, nil)

	_, err := w.UpdateMetadata(context.Background(), result, "created_booking", discovery.ImplicationMetadata{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "className", verr.Field)

	_, err = w.UpdateMetadata(context.Background(), result, "ghost", discovery.ImplicationMetadata{ClassName: "X"})
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestUpdateContext(t *testing.T) {
	result, createdPath, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	_, err := w.UpdateContext(ctx, result, "created_booking", []discovery.ContextField{
		{Name: "bookingId", Type: "string", Required: true},
	})
	require.NoError(t, err)

	doc := loadYAML(t, createdPath)
	fields, ok := doc["context"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "keep-me", doc["customTooling"])

	t.Run("empty schema removes the block", func(t *testing.T) {
		_, err := w.UpdateContext(ctx, result, "created_booking", nil)
		require.NoError(t, err)
		_, present := loadYAML(t, createdPath)["context"]
		assert.False(t, present)
	})

	t.Run("nameless field is rejected", func(t *testing.T) {
		_, err := w.UpdateContext(ctx, result, "created_booking", []discovery.ContextField{{Type: "string"}})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAddTransition(t *testing.T) {
	result, _, pendingPath := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	path, err := w.AddTransition(ctx, result, discovery.Transition{
		From:      "pending_booking",
		To:        "created_booking",
		Event:     "RETRY",
		Platforms: []string{"web"},
	})
	require.NoError(t, err)
	assert.Equal(t, pendingPath, path, "the transition lands in its source state's file")

	doc := loadYAML(t, pendingPath)
	items, ok := doc["transitions"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "RETRY", item["event"])
	assert.Equal(t, []any{"web"}, item["platforms"])
}

func TestAddTransitionValidation(t *testing.T) {
	result, _, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		tr    discovery.Transition
		field string
	}{
		{"lowercase event", discovery.Transition{From: "created_booking", To: "pending_booking", Event: "request"}, "event"},
		{"empty event", discovery.Transition{From: "created_booking", To: "pending_booking"}, "event"},
		{"unknown source", discovery.Transition{From: "ghost", To: "pending_booking", Event: "GO"}, "from"},
		{"unknown target", discovery.Transition{From: "created_booking", To: "ghost", Event: "GO"}, "to"},
		{"duplicate triple", discovery.Transition{From: "created_booking", To: "pending_booking", Event: "REQUEST"}, "transition"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.AddTransition(ctx, result, tc.tr)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestUpdateTransition(t *testing.T) {
	result, createdPath, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	newEvent := "REQUEST_V2"
	clearRequires := ""
	path, err := w.UpdateTransition(ctx, result, "created_booking", "pending_booking", "REQUEST", domain.TransitionPatch{
		Event:    &newEvent,
		Requires: &clearRequires,
	})
	require.NoError(t, err)
	assert.Equal(t, createdPath, path)

	doc := loadYAML(t, createdPath)
	items := doc["transitions"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "REQUEST_V2", item["event"])
	_, hasRequires := item["requires"]
	assert.False(t, hasRequires, "an empty requires patch clears the guard")
	assert.Equal(t, "pending", item["to"], "unpatched fields keep their written form")
}

func TestUpdateTransitionValidation(t *testing.T) {
	result, _, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	t.Run("empty patch", func(t *testing.T) {
		_, err := w.UpdateTransition(ctx, result, "created_booking", "pending_booking", "REQUEST", domain.TransitionPatch{})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("bad event name", func(t *testing.T) {
		bad := "not_upper"
		_, err := w.UpdateTransition(ctx, result, "created_booking", "pending_booking", "REQUEST", domain.TransitionPatch{Event: &bad})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("retarget to unknown state", func(t *testing.T) {
		ghost := "ghost"
		_, err := w.UpdateTransition(ctx, result, "created_booking", "pending_booking", "REQUEST", domain.TransitionPatch{To: &ghost})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown triple", func(t *testing.T) {
		ev := "NEW"
		_, err := w.UpdateTransition(ctx, result, "created_booking", "pending_booking", "NOPE", domain.TransitionPatch{Event: &ev})
		assert.ErrorIs(t, err, domain.ErrTransitionNotFound)
	})
}

func TestDeleteTransition(t *testing.T) {
	result, createdPath, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	path, err := w.DeleteTransition(ctx, result, "created_booking", "pending_booking", "REQUEST")
	require.NoError(t, err)
	assert.Equal(t, createdPath, path)

	doc := loadYAML(t, createdPath)
	_, present := doc["transitions"]
	assert.False(t, present, "an emptied transitions list is removed entirely")
	assert.Equal(t, "keep-me", doc["customTooling"])

	_, err = w.DeleteTransition(ctx, result, "created_booking", "pending_booking", "REQUEST")
	assert.ErrorIs(t, err, domain.ErrTransitionNotFound)
}

func TestCreateState(t *testing.T) {
	result, _, _ := writeBookingProject(t)
	events := &recordingPublisher{}
	w := New(events, nil)
	ctx := context.Background()

	path, err := w.CreateState(ctx, result, "cancelled_booking", &discovery.ImplicationMetadata{
		Status: "cancelled",
		Tags:   []string{"flow:booking"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(result.ProjectPath, "cancelled_booking.implication.yaml"), path)

	doc := loadYAML(t, path)
	assert.Equal(t, "CancelledBookingImplications", doc["className"], "the class name derives from the state name")
	assert.Equal(t, "cancelled", doc["status"])
	assert.Equal(t, true, doc["hasXStateConfig"])

	require.Len(t, events.events, 1)
	assert.Equal(t, discovery.EventRescanRequested, events.events[0].Type)
}

func TestCreateStateValidation(t *testing.T) {
	result, _, _ := writeBookingProject(t)
	w := New(nil, nil)
	ctx := context.Background()

	t.Run("bad names", func(t *testing.T) {
		for _, name := range []string{"", "Created", "1state", "state-name", "state name"} {
			_, err := w.CreateState(ctx, result, name, nil)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr, "name %q must be rejected", name)
			assert.Equal(t, "name", verr.Field)
		}
	})

	t.Run("existing state", func(t *testing.T) {
		_, err := w.CreateState(ctx, result, "created_booking", nil)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "already exists")
	})

	t.Run("existing file", func(t *testing.T) {
		clash := filepath.Join(result.ProjectPath, "new_state.implication.yaml")
		require.NoError(t, os.WriteFile(clash, []byte("className: Stray\n"), 0o644))

		_, err := w.CreateState(ctx, result, "new_state", nil)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "file already exists")
	})
}
