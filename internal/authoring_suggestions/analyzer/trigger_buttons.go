package analyzer

import (
	"strings"
	"unicode"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

type triggerButtons struct{}

func (triggerButtons) Name() string { return "trigger_buttons" }

// Analyze tallies the naming convention of declared trigger buttons so
// the authoring form can default a new button to the dominant style.
// The total is the number of implications that declare one at all.
func (triggerButtons) Analyze(result *discovery.DiscoveryResult) []domain.Suggestion {
	counts := map[string]int{}
	total := 0
	for _, f := range stateful(result) {
		btn := strings.TrimSpace(f.Metadata.TriggerButton)
		if btn == "" {
			continue
		}
		total++
		counts[namingConvention(btn)]++
	}
	return tabulate("trigger_buttons", "triggerButton", counts, total, 0.5)
}

func namingConvention(s string) string {
	if s == "" {
		return "lowercase"
	}
	switch {
	case strings.Contains(s, "-"):
		return "kebab-case"
	case strings.Contains(s, "_"):
		return "snake_case"
	}
	r := []rune(s)
	switch {
	case unicode.IsUpper(r[0]):
		return "PascalCase"
	case s != strings.ToLower(s):
		return "camelCase"
	default:
		return "lowercase"
	}
}

func init() { Register(triggerButtons{}) }
