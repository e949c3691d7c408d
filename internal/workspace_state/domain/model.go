package domain

import "errors"

// Workspace keys the dashboard persists between reloads. Values are
// opaque JSON blobs; the backend never interprets them beyond decoding
// on read.
const (
	KeyLastProjectPath     = "lastProjectPath"
	KeyLastDiscoveryResult = "lastDiscoveryResult"
	KeyLastAnalysisResult  = "lastAnalysisResult"
	KeyLastStateRegistry   = "lastStateRegistry"
	KeyLastGraphData       = "lastGraphData"
)

var ErrUnknownKey = errors.New("unknown workspace key")

// Keys returns the full key set in declaration order.
func Keys() []string {
	return []string{
		KeyLastProjectPath,
		KeyLastDiscoveryResult,
		KeyLastAnalysisResult,
		KeyLastStateRegistry,
		KeyLastGraphData,
	}
}

// Known reports whether key is one of the fixed workspace keys.
func Known(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
