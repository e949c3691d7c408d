package domain

import "errors"

var (
	ErrNotFound = errors.New("lock not found")
	ErrLocked   = errors.New("test file is locked")
)
