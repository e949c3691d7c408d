package analyzer

import (
	"sort"
	"time"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

// Analyzer computes frequency suggestions from one discovery result.
// Implementations are pure and read-only; nothing they propose is ever
// applied automatically.
type Analyzer interface {
	Name() string
	Analyze(result *discovery.DiscoveryResult) []domain.Suggestion
}

var registered = map[string]Analyzer{}

func Register(a Analyzer) {
	if a == nil {
		return
	}
	registered[a.Name()] = a
}

// All returns the registered analyzers sorted by name.
func All() []Analyzer {
	out := make([]Analyzer, 0, len(registered))
	for _, a := range registered {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Run executes every registered analyzer and aggregates the output.
func Run(result *discovery.DiscoveryResult) *domain.AnalysisResult {
	res := &domain.AnalysisResult{
		AnalyzedAt:  time.Now().UTC(),
		Suggestions: []domain.Suggestion{},
	}
	if result == nil {
		return res
	}
	res.ProjectPath = result.ProjectPath
	res.StatefulCount = len(stateful(result))
	for _, a := range All() {
		res.Suggestions = append(res.Suggestions, a.Analyze(result)...)
	}
	return res
}
