package analyzer

import (
	"strings"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

type setupActions struct{}

func (setupActions) Name() string { return "setup_actions" }

// Analyze counts setup actions across the implications that declare
// setup at all. The higher apply threshold keeps rarely shared setup
// from being offered as a default.
func (setupActions) Analyze(result *discovery.DiscoveryResult) []domain.Suggestion {
	counts := map[string]int{}
	total := 0
	for _, f := range stateful(result) {
		if len(f.Metadata.Setup) == 0 {
			continue
		}
		total++
		seen := map[string]bool{}
		for _, s := range f.Metadata.Setup {
			action := strings.TrimSpace(s.Action)
			if action == "" || seen[action] {
				continue
			}
			seen[action] = true
			counts[action]++
		}
	}
	return tabulate("setup_actions", "setup.action", counts, total, 0.6)
}

func init() { Register(setupActions{}) }
