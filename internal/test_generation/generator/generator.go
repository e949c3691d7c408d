package generator

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	"github.com/stateboard/stateboard-backend/internal/test_generation/domain"
)

const defaultOutDirName = "generated-tests"

// testTemplate is the skeleton rendered per stateful implication. The
// TODO markers are left for the test author to fill in.
const testTemplate = `// {{ .TestFile }}
// Generated from {{ .ClassName }}. Regenerating overwrites this file
// unless it is locked in the dashboard.
import { test, expect } from '@playwright/test';

test.describe('{{ .ClassName }}', () => {
{{- if .Setup }}
  test.beforeEach(async ({ page }) => {
{{- range .Setup }}
    // setup: {{ .Action }}{{ if .Platform }} [{{ .Platform }}]{{ end }}
{{- end }}
  });
{{- end }}

  test('reaches {{ .StateID }}', async ({ page }) => {
{{- range .RequiredFields }}
    // TODO fill required field: {{ . }}
{{- end }}
    expect(page).toBeDefined();
  });
{{- range .Transitions }}

  test('{{ .Event }} leads to {{ .To }}', async ({ page }) => {
    // TODO drive {{ .Event }} and assert {{ .To }} is reached
  });
{{- end }}
});
`

// LockChecker reports whether a test file is locked against
// regeneration.
type LockChecker interface {
	IsLocked(ctx context.Context, testFile string) (bool, error)
}

type testSpec struct {
	StateID        string
	TestFile       string
	ClassName      string
	Setup          []discovery.SetupEntry
	RequiredFields []string
	Transitions    []transitionSpec
}

type transitionSpec struct {
	Event string
	To    string
}

type Generator struct {
	locks LockChecker
	tmpl  *template.Template
}

func New(locks LockChecker) *Generator {
	return &Generator{
		locks: locks,
		tmpl:  template.Must(template.New("test").Parse(testTemplate)),
	}
}

// Generate renders a test skeleton for every stateful implication in
// the result. Locked files are reported in Skipped and generation
// continues; a failed lock check also skips, never overwrites. Output
// goes to outDir, defaulting to <projectPath>/generated-tests.
func (g *Generator) Generate(ctx context.Context, result *discovery.DiscoveryResult, outDir string) (*domain.GenerationSummary, error) {
	summary := &domain.GenerationSummary{Generated: []string{}, Skipped: []string{}}
	if result == nil {
		return summary, nil
	}
	if outDir == "" {
		outDir = filepath.Join(result.ProjectPath, defaultOutDirName)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	for _, spec := range g.specs(result) {
		if g.locks != nil {
			locked, err := g.locks.IsLocked(ctx, spec.TestFile)
			if err != nil {
				log.Printf("[generation] lock check %s: %v, skipping", spec.TestFile, err)
				summary.Skipped = append(summary.Skipped, spec.TestFile)
				continue
			}
			if locked {
				summary.Skipped = append(summary.Skipped, spec.TestFile)
				continue
			}
		}

		var buf bytes.Buffer
		if err := g.tmpl.Execute(&buf, spec); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(outDir, spec.TestFile), buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		summary.Generated = append(summary.Generated, spec.TestFile)
	}

	return summary, nil
}

// specs derives one render input per stateful implication, sorted by
// state id for stable output.
func (g *Generator) specs(result *discovery.DiscoveryResult) []testSpec {
	aliases := build.Aliases(result)

	var out []testSpec
	for i := range result.Files.Implications {
		meta := &result.Files.Implications[i].Metadata
		if !meta.HasXStateConfig {
			continue
		}
		id, ok := aliases.Resolve(meta.ClassName)
		if !ok {
			continue
		}

		spec := testSpec{
			StateID:        id,
			TestFile:       domain.TestFileName(id),
			ClassName:      meta.ClassName,
			Setup:          meta.Setup,
			RequiredFields: meta.RequiredFields,
		}
		for _, t := range result.Transitions {
			from, ok := aliases.Resolve(t.From)
			if !ok || from != id {
				continue
			}
			to, ok := aliases.Resolve(t.To)
			if !ok {
				continue
			}
			spec.Transitions = append(spec.Transitions, transitionSpec{Event: t.Event, To: to})
		}
		sort.Slice(spec.Transitions, func(a, b int) bool {
			if spec.Transitions[a].To != spec.Transitions[b].To {
				return spec.Transitions[a].To < spec.Transitions[b].To
			}
			return spec.Transitions[a].Event < spec.Transitions[b].Event
		})

		out = append(out, spec)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].StateID < out[b].StateID })
	return out
}
