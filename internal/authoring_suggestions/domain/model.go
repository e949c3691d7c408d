package domain

import "time"

// Suggestion is one frequency observation proposed to the authoring UI.
// Nothing is ever auto-applied; Apply only marks values frequent enough
// to offer as a one-click default.
type Suggestion struct {
	Analyzer  string  `json:"analyzer"`
	Field     string  `json:"field"`
	Value     string  `json:"value"`
	Count     int     `json:"count"`
	Total     int     `json:"total"`
	Frequency float64 `json:"frequency"`
	Apply     bool    `json:"apply"`
}

// AnalysisResult aggregates the output of every registered analyzer
// over one discovery result.
type AnalysisResult struct {
	ProjectPath   string       `json:"projectPath"`
	AnalyzedAt    time.Time    `json:"analyzedAt"`
	StatefulCount int          `json:"statefulCount"`
	Suggestions   []Suggestion `json:"suggestions"`
}
