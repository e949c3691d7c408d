package writer

import (
	"regexp"

	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
)

var (
	eventNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	stateNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

func validateEventName(event string) error {
	if !eventNameRe.MatchString(event) {
		return &domain.ValidationError{
			Field:   "event",
			Message: "must match ^[A-Z][A-Z0-9_]*$",
		}
	}
	return nil
}

func validateStateName(name string) error {
	if !stateNameRe.MatchString(name) {
		return &domain.ValidationError{
			Field:   "name",
			Message: "must match ^[a-z][a-z0-9_]*$",
		}
	}
	return nil
}
