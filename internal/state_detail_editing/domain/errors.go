package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStateNotFound      = errors.New("state not found")
	ErrTransitionNotFound = errors.New("transition not found")
	ErrSaveInFlight       = errors.New("save already in flight for this state")

	// ErrPartialSave is the errors.Is target for PartialSaveError.
	ErrPartialSave = errors.New("partial save")
)

// ValidationError rejects an edit before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PartialSaveError reports a save that failed after some writes had
// already landed, so the caller knows what is on disk and what is not.
type PartialSaveError struct {
	State   string
	Written []string
	Failed  string
	Err     error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("partial save for %s: wrote %s, failed writing %s: %v",
		e.State, strings.Join(e.Written, ", "), e.Failed, e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }

func (e *PartialSaveError) Is(target error) bool { return target == ErrPartialSave }
