package domain

import "errors"

var (
	ErrNoLayout     = errors.New("no saved layout for project")
	ErrSaveInFlight = errors.New("a save is already in flight")
	ErrUnknownNode  = errors.New("unknown node")
)
