package analyzer

import (
	"strings"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

type platformDistribution struct{}

func (platformDistribution) Name() string { return "platform_distribution" }

// Analyze reports how states split across platforms. Informational
// only, so Apply is never set.
func (platformDistribution) Analyze(result *discovery.DiscoveryResult) []domain.Suggestion {
	files := stateful(result)
	counts := map[string]int{}
	for _, f := range files {
		for _, p := range platformsOf(&f.Metadata) {
			counts[p]++
		}
	}
	return tabulate("platform_distribution", "platforms", counts, len(files), 0)
}

func platformsOf(m *discovery.ImplicationMetadata) []string {
	if len(m.Platforms) > 0 {
		seen := map[string]bool{}
		var out []string
		for _, p := range m.Platforms {
			p = strings.TrimSpace(p)
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		return out
	}
	if p := strings.TrimSpace(m.Platform); p != "" {
		return []string{p}
	}
	return nil
}

func init() { Register(platformDistribution{}) }
