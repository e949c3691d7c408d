package service

import (
	"context"
	"log"
	"sync"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	graph "github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/writer"
	generation "github.com/stateboard/stateboard-backend/internal/test_generation/domain"
)

// NotesCounter reports how many notes are attached to a target.
type NotesCounter interface {
	CountFor(ctx context.Context, targetType, targetKey string) (int, error)
}

// LockChecker reports whether a generated test file is locked.
type LockChecker interface {
	IsLocked(ctx context.Context, testFile string) (bool, error)
}

// DetailService resolves per-state detail and runs the edit flow:
// scratch sessions, diff-only saves, per-state in-flight gating.
type DetailService struct {
	writer *writer.Writer
	notes  NotesCounter
	locks  LockChecker

	mu     sync.Mutex
	saving map[string]bool
}

func New(w *writer.Writer, notes NotesCounter, locks LockChecker) *DetailService {
	return &DetailService{
		writer: w,
		notes:  notes,
		locks:  locks,
		saving: map[string]bool{},
	}
}

// Resolve assembles the full detail for one state: metadata from its
// file, transitions in both directions from the graph, the note count
// and lock state. Annotation lookups degrade to zero values with a
// warning; the detail itself never fails on them.
func (s *DetailService) Resolve(ctx context.Context, result *discovery.DiscoveryResult, nodeID string) (*domain.StateDetail, error) {
	id, ok := build.Aliases(result).Resolve(nodeID)
	if !ok {
		return nil, domain.ErrStateNotFound
	}

	g := build.FromDiscovery(result)
	node := g.Node(id)
	if node == nil {
		return nil, domain.ErrStateNotFound
	}
	file := result.FindImplication(node.ClassName)
	if file == nil {
		return nil, domain.ErrStateNotFound
	}

	detail := &domain.StateDetail{
		ID:             id,
		ClassName:      node.ClassName,
		FilePath:       file.Path,
		Metadata:       cloneMetadata(file.Metadata),
		TransitionsIn:  edgeValues(g.In[id]),
		TransitionsOut: edgeValues(g.Out[id]),
		TestFile:       generation.TestFileName(id),
	}

	if s.notes != nil {
		n, err := s.notes.CountFor(ctx, "state", id)
		if err != nil {
			log.Printf("[detail] notes count for %s: %v", id, err)
		} else {
			detail.NotesCount = n
		}
	}
	if s.locks != nil {
		locked, err := s.locks.IsLocked(ctx, detail.TestFile)
		if err != nil {
			log.Printf("[detail] lock state for %s: %v", detail.TestFile, err)
		} else {
			detail.Locked = locked
		}
	}

	return detail, nil
}

// Begin opens an edit session with a deep-cloned scratch copy.
func (s *DetailService) Begin(detail *domain.StateDetail) *Session {
	clone := cloneDetail(*detail)
	return &Session{
		StateID:  detail.ID,
		Scratch:  &clone,
		original: cloneDetail(*detail),
	}
}

// Save writes the session's changes: metadata first, then context,
// two sequential file writes. Overlapping saves against the same state
// are rejected with ErrSaveInFlight. A failure after the metadata
// write returns ErrPartialSave naming what landed; the scratch copy
// survives either way so edits are not lost. Transition edits go
// through the writer's transition operations, not this path.
func (s *DetailService) Save(ctx context.Context, result *discovery.DiscoveryResult, sn *Session) error {
	if sn == nil || !sn.HasChanges() {
		return nil
	}

	s.mu.Lock()
	if s.saving[sn.StateID] {
		s.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	s.saving[sn.StateID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.saving, sn.StateID)
		s.mu.Unlock()
	}()

	cs := sn.Diff()
	if cs.Empty() {
		sn.commit()
		return nil
	}

	projectPath := ""
	if result != nil {
		projectPath = result.ProjectPath
	}

	var written []string
	if cs.Metadata != nil {
		if err := s.writer.WriteMetadata(ctx, projectPath, sn.Scratch.FilePath, *cs.Metadata); err != nil {
			return err
		}
		written = append(written, "metadata")
	}
	if cs.Context != nil {
		if err := s.writer.WriteContext(ctx, projectPath, sn.Scratch.FilePath, *cs.Context); err != nil {
			if len(written) > 0 {
				return &domain.PartialSaveError{
					State:   sn.StateID,
					Written: written,
					Failed:  "context",
					Err:     err,
				}
			}
			return err
		}
	}

	sn.commit()
	return nil
}

func edgeValues(es []*graph.Edge) []graph.Edge {
	out := make([]graph.Edge, 0, len(es))
	for _, e := range es {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
