package domain

import "errors"

var (
	ErrProjectNotFound    = errors.New("project path not found")
	ErrFileNotFound       = errors.New("implication file not found")
	ErrInvalidImplication = errors.New("invalid implication file")
	ErrScanThrottled      = errors.New("scan throttled, try again shortly")
	ErrNoDiscovery        = errors.New("no discovery result for project")
)
