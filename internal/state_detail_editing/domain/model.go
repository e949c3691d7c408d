package domain

import (
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	graph "github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

// StateDetail is everything the detail panel shows for one state:
// the parsed metadata, resolved transitions in both directions, and
// the annotation/lock state attached to it.
type StateDetail struct {
	ID             string                        `json:"id"`
	ClassName      string                        `json:"className"`
	FilePath       string                        `json:"filePath"`
	Metadata       discovery.ImplicationMetadata `json:"metadata"`
	TransitionsIn  []graph.Edge                  `json:"transitionsIn"`
	TransitionsOut []graph.Edge                  `json:"transitionsOut"`
	NotesCount     int                           `json:"notesCount"`
	TestFile       string                        `json:"testFile"`
	Locked         bool                          `json:"locked"`
}

// ChangeSet names the sub-objects an edit session actually changed.
// Nil pointer means untouched, so a save never rewrites parts of the
// file the user did not edit.
type ChangeSet struct {
	Metadata    *discovery.ImplicationMetadata `json:"metadata,omitempty"`
	Context     *[]discovery.ContextField      `json:"context,omitempty"`
	Transitions []graph.Edge                   `json:"transitions,omitempty"`
}

func (c ChangeSet) Empty() bool {
	return c.Metadata == nil && c.Context == nil && len(c.Transitions) == 0
}

// TransitionPatch is a partial update for one transition. Nil fields
// keep the current value.
type TransitionPatch struct {
	To            *string  `json:"to,omitempty"`
	Event         *string  `json:"event,omitempty"`
	Platforms     []string `json:"platforms,omitempty"`
	Requires      *string  `json:"requires,omitempty"`
	Conditions    []string `json:"conditions,omitempty"`
	ActionDetails []string `json:"actionDetails,omitempty"`
}

func (p TransitionPatch) Empty() bool {
	return p.To == nil && p.Event == nil && p.Platforms == nil &&
		p.Requires == nil && p.Conditions == nil && p.ActionDetails == nil
}
