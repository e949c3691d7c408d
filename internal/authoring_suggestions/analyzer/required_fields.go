package analyzer

import (
	"strings"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

type requiredFields struct{}

func (requiredFields) Name() string { return "required_fields" }

// Analyze counts how many states require each field. A field listed
// twice in one file counts once.
func (requiredFields) Analyze(result *discovery.DiscoveryResult) []domain.Suggestion {
	files := stateful(result)
	counts := map[string]int{}
	for _, f := range files {
		seen := map[string]bool{}
		for _, field := range f.Metadata.RequiredFields {
			field = strings.TrimSpace(field)
			if field == "" || seen[field] {
				continue
			}
			seen[field] = true
			counts[field]++
		}
	}
	return tabulate("required_fields", "requiredFields", counts, len(files), 0.5)
}

func init() { Register(requiredFields{}) }
