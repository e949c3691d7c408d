package service

import (
	"reflect"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	graph "github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
)

// Session holds a scratch copy of one state's detail. Mutations go to
// the scratch; the original stays untouched until a successful save
// commits it, so cancel and failed saves never lose or leak edits.
type Session struct {
	StateID  string
	Scratch  *domain.StateDetail
	original domain.StateDetail
	changed  bool
}

func (s *Session) HasChanges() bool { return s.changed }

// ApplyMetadata replaces the scratch metadata. The context schema is
// its own sub-object; a metadata edit never touches it.
func (s *Session) ApplyMetadata(meta discovery.ImplicationMetadata) {
	meta.Context = s.Scratch.Metadata.Context
	s.Scratch.Metadata = cloneMetadata(meta)
	s.changed = true
}

func (s *Session) ApplyContext(fields []discovery.ContextField) {
	s.Scratch.Metadata.Context = append([]discovery.ContextField(nil), fields...)
	s.changed = true
}

func (s *Session) ApplyTransitions(out []graph.Edge) {
	s.Scratch.TransitionsOut = cloneEdges(out)
	s.changed = true
}

// Cancel discards the scratch copy. Callers confirm with the user
// first when HasChanges is set.
func (s *Session) Cancel() {
	clone := cloneDetail(s.original)
	s.Scratch = &clone
	s.changed = false
}

// Diff returns only the sub-objects that differ from the original, so
// a save never rewrites parts the user did not edit.
func (s *Session) Diff() domain.ChangeSet {
	var cs domain.ChangeSet

	origMeta := s.original.Metadata
	origMeta.Context = nil
	scratchMeta := s.Scratch.Metadata
	scratchMeta.Context = nil
	if !reflect.DeepEqual(origMeta, scratchMeta) {
		m := scratchMeta
		cs.Metadata = &m
	}

	if !reflect.DeepEqual(s.original.Metadata.Context, s.Scratch.Metadata.Context) {
		fields := append([]discovery.ContextField(nil), s.Scratch.Metadata.Context...)
		cs.Context = &fields
	}

	if !reflect.DeepEqual(s.original.TransitionsOut, s.Scratch.TransitionsOut) {
		cs.Transitions = cloneEdges(s.Scratch.TransitionsOut)
	}

	return cs
}

// commit makes the scratch the new original after a successful save.
func (s *Session) commit() {
	s.original = cloneDetail(*s.Scratch)
	s.changed = false
}

func cloneDetail(d domain.StateDetail) domain.StateDetail {
	d.Metadata = cloneMetadata(d.Metadata)
	d.TransitionsIn = cloneEdges(d.TransitionsIn)
	d.TransitionsOut = cloneEdges(d.TransitionsOut)
	return d
}

func cloneMetadata(m discovery.ImplicationMetadata) discovery.ImplicationMetadata {
	m.Platforms = append([]string(nil), m.Platforms...)
	m.RequiredFields = append([]string(nil), m.RequiredFields...)
	m.UICoverage = append([]string(nil), m.UICoverage...)
	m.Tags = append([]string(nil), m.Tags...)
	m.Setup = append([]discovery.SetupEntry(nil), m.Setup...)
	m.Context = append([]discovery.ContextField(nil), m.Context...)
	return m
}

func cloneEdges(es []graph.Edge) []graph.Edge {
	if es == nil {
		return nil
	}
	out := make([]graph.Edge, len(es))
	copy(out, es)
	for i := range out {
		out[i].Platforms = append([]string(nil), out[i].Platforms...)
	}
	return out
}
