package domain

import (
	"errors"
	"time"
)

const (
	TargetState      = "state"
	TargetTransition = "transition"

	StatusDraft = "draft"
)

var ErrNotFound = errors.New("note not found")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Note is a free-form annotation pinned to a state or a transition.
// The target key is the state id or the canonical edge key.
type Note struct {
	ID         string    `json:"id"`
	TargetType string    `json:"targetType"`
	TargetKey  string    `json:"targetKey"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	Category   string    `json:"category,omitempty"`
	Ticket     string    `json:"ticket,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ValidTargetType(t string) bool {
	return t == TargetState || t == TargetTransition
}
