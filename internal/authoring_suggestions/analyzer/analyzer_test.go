package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

func statefulMeta(className string) discovery.ImplicationMetadata {
	return discovery.ImplicationMetadata{ClassName: className, HasXStateConfig: true}
}

func resultOf(metas ...discovery.ImplicationMetadata) *discovery.DiscoveryResult {
	files := make([]discovery.ImplicationFile, 0, len(metas))
	for i, m := range metas {
		files = append(files, discovery.ImplicationFile{
			Path:     "states/" + string(rune('a'+i)) + ".implication.yaml",
			Metadata: m,
		})
	}
	return &discovery.DiscoveryResult{
		ProjectPath: "/projects/demo",
		Files:       discovery.DiscoveredFiles{Implications: files},
	}
}

func suggestionFor(ss []domain.Suggestion, value string) *domain.Suggestion {
	for i := range ss {
		if ss[i].Value == value {
			return &ss[i]
		}
	}
	return nil
}

func TestRequiredFieldsThresholdIsStrict(t *testing.T) {
	withFields := func(className string, fields ...string) discovery.ImplicationMetadata {
		m := statefulMeta(className)
		m.RequiredFields = fields
		return m
	}

	t.Run("exactly at threshold does not apply", func(t *testing.T) {
		// 2 of 4 states -> frequency 0.5, not above it.
		result := resultOf(
			withFields("A", "email"),
			withFields("B", "email"),
			withFields("C", "phone"),
			statefulMeta("D"),
		)
		ss := requiredFields{}.Analyze(result)

		email := suggestionFor(ss, "email")
		require.NotNil(t, email)
		assert.Equal(t, 2, email.Count)
		assert.Equal(t, 4, email.Total)
		assert.InDelta(t, 0.5, email.Frequency, 1e-9)
		assert.False(t, email.Apply)
	})

	t.Run("above threshold applies", func(t *testing.T) {
		result := resultOf(
			withFields("A", "email"),
			withFields("B", "email"),
			withFields("C", "email"),
			statefulMeta("D"),
		)
		email := suggestionFor(requiredFields{}.Analyze(result), "email")
		require.NotNil(t, email)
		assert.InDelta(t, 0.75, email.Frequency, 1e-9)
		assert.True(t, email.Apply)
	})

	t.Run("duplicates within one state count once", func(t *testing.T) {
		result := resultOf(withFields("A", "email", "email", " email "))
		ss := requiredFields{}.Analyze(result)
		require.Len(t, ss, 1)
		assert.Equal(t, 1, ss[0].Count)
	})

	t.Run("stateless files are excluded from the total", func(t *testing.T) {
		stateless := discovery.ImplicationMetadata{ClassName: "Helper"}
		result := resultOf(withFields("A", "email"), stateless)
		email := suggestionFor(requiredFields{}.Analyze(result), "email")
		require.NotNil(t, email)
		assert.Equal(t, 1, email.Total)
	})
}

func TestSetupActionsTotalIsDeclaringStates(t *testing.T) {
	withSetup := func(className string, actions ...string) discovery.ImplicationMetadata {
		m := statefulMeta(className)
		for _, a := range actions {
			m.Setup = append(m.Setup, discovery.SetupEntry{Action: a})
		}
		return m
	}

	// 3 states declare setup; login appears in 2 of those 3. The state
	// without setup does not dilute the denominator.
	result := resultOf(
		withSetup("A", "login"),
		withSetup("B", "login", "seedCart"),
		withSetup("C", "logout"),
		statefulMeta("D"),
	)

	ss := setupActions{}.Analyze(result)
	login := suggestionFor(ss, "login")
	require.NotNil(t, login)
	assert.Equal(t, 2, login.Count)
	assert.Equal(t, 3, login.Total)
	assert.True(t, login.Apply, "2/3 clears the 0.6 threshold")

	seed := suggestionFor(ss, "seedCart")
	require.NotNil(t, seed)
	assert.Equal(t, 1, seed.Count)
	assert.False(t, seed.Apply)
}

func TestTriggerButtonNamingConventions(t *testing.T) {
	withButton := func(className, btn string) discovery.ImplicationMetadata {
		m := statefulMeta(className)
		m.TriggerButton = btn
		return m
	}

	result := resultOf(
		withButton("A", "submit-booking"),
		withButton("B", "cancel-booking"),
		withButton("C", "confirmBooking"),
		withButton("D", "Retry"),
		withButton("E", "retry_now"),
		withButton("F", "ok"),
		statefulMeta("G"),
	)

	ss := triggerButtons{}.Analyze(result)

	kebab := suggestionFor(ss, "kebab-case")
	require.NotNil(t, kebab)
	assert.Equal(t, 2, kebab.Count)
	assert.Equal(t, 6, kebab.Total, "states without a trigger button do not count")

	for _, value := range []string{"camelCase", "PascalCase", "snake_case", "lowercase"} {
		s := suggestionFor(ss, value)
		require.NotNil(t, s, "convention %s", value)
		assert.Equal(t, 1, s.Count)
		assert.False(t, s.Apply)
	}
}

func TestPlatformDistributionNeverApplies(t *testing.T) {
	withPlatforms := func(className string, single string, multi ...string) discovery.ImplicationMetadata {
		m := statefulMeta(className)
		m.Platform = single
		m.Platforms = multi
		return m
	}

	result := resultOf(
		withPlatforms("A", "web"),
		withPlatforms("B", "", "web", "ios", "web"),
		withPlatforms("C", "web"),
		withPlatforms("D", "web"),
	)

	ss := platformDistribution{}.Analyze(result)
	web := suggestionFor(ss, "web")
	require.NotNil(t, web)
	assert.Equal(t, 4, web.Count, "the platforms list deduplicates per state")
	assert.InDelta(t, 1.0, web.Frequency, 1e-9)
	assert.False(t, web.Apply, "the distribution is informational only")

	ios := suggestionFor(ss, "ios")
	require.NotNil(t, ios)
	assert.Equal(t, 1, ios.Count)
}

func TestTabulateOrdering(t *testing.T) {
	ss := tabulate("x", "f", map[string]int{"b": 2, "c": 5, "a": 2}, 10, 0)
	require.Len(t, ss, 3)
	assert.Equal(t, "c", ss[0].Value, "highest count first")
	assert.Equal(t, "a", ss[1].Value, "ties break by value")
	assert.Equal(t, "b", ss[2].Value)

	assert.Nil(t, tabulate("x", "f", nil, 10, 0))
	assert.Nil(t, tabulate("x", "f", map[string]int{"a": 1}, 0, 0))
}

func TestRunAggregatesRegisteredAnalyzers(t *testing.T) {
	m := statefulMeta("A")
	m.RequiredFields = []string{"email"}
	m.TriggerButton = "submit"
	m.Platform = "web"
	m.Setup = []discovery.SetupEntry{{Action: "login"}}

	result := resultOf(m, discovery.ImplicationMetadata{ClassName: "Helper"})

	out := Run(result)
	assert.Equal(t, "/projects/demo", out.ProjectPath)
	assert.Equal(t, 1, out.StatefulCount)
	assert.False(t, out.AnalyzedAt.IsZero())

	analyzers := map[string]bool{}
	for _, s := range out.Suggestions {
		analyzers[s.Analyzer] = true
	}
	for _, name := range []string{"required_fields", "setup_actions", "trigger_buttons", "platform_distribution"} {
		assert.True(t, analyzers[name], "analyzer %s contributed", name)
	}
}

func TestRunNilResult(t *testing.T) {
	out := Run(nil)
	assert.NotNil(t, out.Suggestions)
	assert.Empty(t, out.Suggestions)
	assert.Zero(t, out.StatefulCount)
}
