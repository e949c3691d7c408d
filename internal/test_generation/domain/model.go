package domain

import "time"

// Lock marks one generated test file as hand-edited so regeneration
// leaves it alone.
type Lock struct {
	TestFile  string     `json:"testFile"`
	Locked    bool       `json:"locked"`
	Reason    string     `json:"reason,omitempty"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// GenerationSummary reports one generation run: which files were
// written and which were skipped because of a lock.
type GenerationSummary struct {
	Generated []string `json:"generated"`
	Skipped   []string `json:"skipped"`
}

// TestFileName derives the generated test filename for a state ID.
func TestFileName(stateID string) string {
	return stateID + ".generated.test.ts"
}
