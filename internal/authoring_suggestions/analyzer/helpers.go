package analyzer

import (
	"sort"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

// stateful filters the implications down to the ones that define a
// state machine; purely informational files carry no authoring signal.
func stateful(result *discovery.DiscoveryResult) []*discovery.ImplicationFile {
	var out []*discovery.ImplicationFile
	for i := range result.Files.Implications {
		if result.Files.Implications[i].Metadata.HasXStateConfig {
			out = append(out, &result.Files.Implications[i])
		}
	}
	return out
}

// tabulate turns value counts into suggestions ordered by count, then
// value. Apply is set when the frequency strictly exceeds the
// threshold; a zero threshold marks the analyzer as informational.
func tabulate(analyzer, field string, counts map[string]int, total int, threshold float64) []domain.Suggestion {
	if total == 0 || len(counts) == 0 {
		return nil
	}
	out := make([]domain.Suggestion, 0, len(counts))
	for value, count := range counts {
		freq := float64(count) / float64(total)
		out = append(out, domain.Suggestion{
			Analyzer:  analyzer,
			Field:     field,
			Value:     value,
			Count:     count,
			Total:     total,
			Frequency: freq,
			Apply:     threshold > 0 && freq > threshold,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
