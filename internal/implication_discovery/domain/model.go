package domain

import "time"

// DiscoveryResult is the full output of one project scan. It is the
// read-only input every downstream consumer (graph build, analysis,
// detail resolution) works from.
type DiscoveryResult struct {
	ProjectPath string          `json:"projectPath"`
	ScanID      string          `json:"scanId"`
	ScannedAt   time.Time       `json:"scannedAt"`
	Files       DiscoveredFiles `json:"files"`
	Transitions []Transition    `json:"transitions"`
	Warnings    []string        `json:"warnings,omitempty"`
}

type DiscoveredFiles struct {
	Implications []ImplicationFile `json:"implications"`
}

// ImplicationFile is one parsed state-definition file.
type ImplicationFile struct {
	Path     string              `json:"path"`
	Metadata ImplicationMetadata `json:"metadata"`
}

type ImplicationMetadata struct {
	ClassName       string         `json:"className"`
	Status          string         `json:"status,omitempty"`
	HasXStateConfig bool           `json:"hasXStateConfig"`
	Platform        string         `json:"platform,omitempty"`
	Platforms       []string       `json:"platforms,omitempty"`
	TriggerButton   string         `json:"triggerButton,omitempty"`
	RequiredFields  []string       `json:"requiredFields,omitempty"`
	UICoverage      []string       `json:"uiCoverage,omitempty"`
	Screen          string         `json:"screen,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Setup           []SetupEntry   `json:"setup,omitempty"`
	Context         []ContextField `json:"context,omitempty"`
	Initial         bool           `json:"initial,omitempty"`
}

// SetupEntry records which test file and action establishes this state
// before a test runs.
type SetupEntry struct {
	TestFile string `json:"testFile,omitempty"`
	Action   string `json:"action,omitempty"`
	Platform string `json:"platform,omitempty"`
}

type ContextField struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Transition is a directed, event-labeled edge between two states.
// Identity is the (from, to, event) triple; duplicates of the same pair
// with different events are expected.
type Transition struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	Event         string   `json:"event"`
	Platforms     []string `json:"platforms,omitempty"`
	Requires      string   `json:"requires,omitempty"`
	Conditions    []string `json:"conditions,omitempty"`
	ActionDetails []string `json:"actionDetails,omitempty"`
	SourcePath    string   `json:"sourcePath,omitempty"`
}

// ScanEvent is published on every scan lifecycle change so connected
// dashboards can re-render.
type ScanEvent struct {
	Type        string    `json:"type"` // scan.completed | scan.file_updated | scan.rescan_requested
	ProjectPath string    `json:"projectPath"`
	ScanID      string    `json:"scanId,omitempty"`
	Path        string    `json:"path,omitempty"`
	At          time.Time `json:"at"`
}

const (
	EventScanCompleted   = "scan.completed"
	EventFileUpdated     = "scan.file_updated"
	EventRescanRequested = "scan.rescan_requested"
)

// FileCount returns the number of parsed implication files.
func (r *DiscoveryResult) FileCount() int {
	if r == nil {
		return 0
	}
	return len(r.Files.Implications)
}

// FindImplication returns the implication whose metadata class name
// matches, or nil.
func (r *DiscoveryResult) FindImplication(className string) *ImplicationFile {
	if r == nil {
		return nil
	}
	for i := range r.Files.Implications {
		if r.Files.Implications[i].Metadata.ClassName == className {
			return &r.Files.Implications[i]
		}
	}
	return nil
}
