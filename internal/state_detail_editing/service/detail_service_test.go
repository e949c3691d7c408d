package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/writer"
)

type stubNotes struct {
	count int
	err   error
}

func (s *stubNotes) CountFor(ctx context.Context, targetType, targetKey string) (int, error) {
	return s.count, s.err
}

type stubLocks struct {
	locked bool
	err    error
}

func (s *stubLocks) IsLocked(ctx context.Context, testFile string) (bool, error) {
	return s.locked, s.err
}

func bookingResult(project string) *discovery.DiscoveryResult {
	return &discovery.DiscoveryResult{
		ProjectPath: project,
		Files: discovery.DiscoveredFiles{Implications: []discovery.ImplicationFile{
			{
				Path: filepath.Join(project, "created.implication.yaml"),
				Metadata: discovery.ImplicationMetadata{
					ClassName:       "CreatedBookingImplications",
					Status:          "created",
					HasXStateConfig: true,
				},
			},
			{
				Path: filepath.Join(project, "pending.implication.yaml"),
				Metadata: discovery.ImplicationMetadata{
					ClassName:       "PendingBookingImplications",
					Status:          "pending",
					HasXStateConfig: true,
				},
			},
		}},
		Transitions: []discovery.Transition{
			{From: "CreatedBookingImplications", To: "pending", Event: "REQUEST"},
		},
	}
}

func TestResolve(t *testing.T) {
	result := bookingResult("/projects/booking")
	svc := New(writer.New(nil, nil), &stubNotes{count: 3}, &stubLocks{locked: true})
	ctx := context.Background()

	detail, err := svc.Resolve(ctx, result, "created_booking")
	require.NoError(t, err)

	assert.Equal(t, "created_booking", detail.ID)
	assert.Equal(t, "CreatedBookingImplications", detail.ClassName)
	assert.Equal(t, filepath.Join("/projects/booking", "created.implication.yaml"), detail.FilePath)
	assert.Equal(t, "created_booking.generated.test.ts", detail.TestFile)
	assert.Equal(t, 3, detail.NotesCount)
	assert.True(t, detail.Locked)

	require.Len(t, detail.TransitionsOut, 1)
	assert.Equal(t, "REQUEST", detail.TransitionsOut[0].Event)
	assert.Empty(t, detail.TransitionsIn)

	t.Run("incoming side of the same edge", func(t *testing.T) {
		pending, err := svc.Resolve(ctx, result, "pending_booking")
		require.NoError(t, err)
		require.Len(t, pending.TransitionsIn, 1)
		assert.Equal(t, "created_booking", pending.TransitionsIn[0].Source)
		assert.Empty(t, pending.TransitionsOut)
	})

	t.Run("resolves through aliases", func(t *testing.T) {
		byClass, err := svc.Resolve(ctx, result, "CreatedBookingImplications")
		require.NoError(t, err)
		assert.Equal(t, "created_booking", byClass.ID)
	})
}

func TestResolveUnknownState(t *testing.T) {
	svc := New(writer.New(nil, nil), nil, nil)
	_, err := svc.Resolve(context.Background(), bookingResult("/p"), "ghost")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestResolveAnnotationFailuresDegrade(t *testing.T) {
	svc := New(writer.New(nil, nil), &stubNotes{err: errors.New("db down")}, &stubLocks{err: errors.New("db down")})

	detail, err := svc.Resolve(context.Background(), bookingResult("/p"), "created_booking")
	require.NoError(t, err, "annotation lookups never fail the detail")
	assert.Zero(t, detail.NotesCount)
	assert.False(t, detail.Locked)
}

func TestSaveWritesOnlyTheDiff(t *testing.T) {
	project := t.TempDir()
	path := filepath.Join(project, "created.implication.yaml")
	original := "className: CreatedBookingImplications\nstatus: created\nhasXStateConfig: true\n" +
		"customTooling: keep-me\ncontext:\n  - name: bookingId\n    type: string\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	result := bookingResult(project)
	svc := New(writer.New(nil, nil), nil, nil)
	ctx := context.Background()

	detail, err := svc.Resolve(ctx, result, "created_booking")
	require.NoError(t, err)

	sn := svc.Begin(detail)
	meta := sn.Scratch.Metadata
	meta.Status = "confirmed"
	sn.ApplyMetadata(meta)

	require.NoError(t, svc.Save(ctx, result, sn))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(b, &doc))

	assert.Equal(t, "confirmed", doc["status"])
	assert.Equal(t, "keep-me", doc["customTooling"], "unknown keys survive a metadata rewrite")
	assert.NotNil(t, doc["context"], "an unedited context block stays in place")

	assert.False(t, sn.HasChanges(), "a successful save commits the session")
	assert.True(t, sn.Diff().Empty())
}

func TestSaveNoChangesIsNoop(t *testing.T) {
	svc := New(writer.New(nil, nil), nil, nil)
	result := bookingResult(t.TempDir())

	assert.NoError(t, svc.Save(context.Background(), result, nil))

	sn := svc.Begin(&domain.StateDetail{ID: "created_booking"})
	assert.NoError(t, svc.Save(context.Background(), result, sn), "no writes happen for an untouched session")
}

func TestSaveFailureKeepsScratch(t *testing.T) {
	// The session points at a file that does not exist, so the metadata
	// write fails before anything lands.
	result := bookingResult(filepath.Join(t.TempDir(), "gone"))
	svc := New(writer.New(nil, nil), nil, nil)

	sn := svc.Begin(&domain.StateDetail{
		ID:       "created_booking",
		FilePath: result.Files.Implications[0].Path,
		Metadata: result.Files.Implications[0].Metadata,
	})
	meta := sn.Scratch.Metadata
	meta.Status = "confirmed"
	sn.ApplyMetadata(meta)

	err := svc.Save(context.Background(), result, sn)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPartialSave, "nothing was written before the failure")

	assert.True(t, sn.HasChanges(), "the scratch survives a failed save")
	assert.Equal(t, "confirmed", sn.Scratch.Metadata.Status)
}
