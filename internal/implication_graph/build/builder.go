package build

import (
	"log"
	"strings"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

const defaultPlatform = "web"

// AliasIndex maps every name a transition endpoint may use for a state
// (raw class name, normalized ID, status) to the canonical node ID.
// First registration wins so lookups stay deterministic.
type AliasIndex map[string]string

// Aliases builds the endpoint-name index for a discovery result.
func Aliases(result *discovery.DiscoveryResult) AliasIndex {
	idx := AliasIndex{}
	if result == nil {
		return idx
	}
	register := func(alias, id string) {
		if alias == "" {
			return
		}
		if _, ok := idx[alias]; !ok {
			idx[alias] = id
		}
	}
	for i := range result.Files.Implications {
		meta := &result.Files.Implications[i].Metadata
		if !meta.HasXStateConfig {
			continue
		}
		id := stateID(meta.ClassName)
		register(meta.ClassName, id)
		register(id, id)
		register(meta.Status, id)
	}
	return idx
}

// Resolve maps an endpoint name to a node ID, trying the name as
// written, then its normalized form.
func (a AliasIndex) Resolve(name string) (string, bool) {
	if id, ok := a[name]; ok {
		return id, true
	}
	if id, ok := a[domain.NormalizeStateID(name)]; ok {
		return id, true
	}
	return "", false
}

func stateID(className string) string {
	id := domain.NormalizeStateID(className)
	if id == "" {
		id = "unknown"
	}
	return id
}

// FromDiscovery transforms a discovery result into the renderable
// graph. Pure and deterministic: stateful implications become nodes in
// input order, then transitions become edges. Anything that does not
// resolve degrades (default label/platform, dropped edge) rather than
// erroring.
func FromDiscovery(result *discovery.DiscoveryResult) *domain.Graph {
	g := domain.NewGraph()
	if result == nil {
		return g
	}

	aliases := Aliases(result)

	for i := range result.Files.Implications {
		file := &result.Files.Implications[i]
		meta := &file.Metadata
		if !meta.HasXStateConfig {
			// Stateless implications are a deliberate filter,
			// not an error.
			continue
		}

		id := stateID(meta.ClassName)

		platform := resolvePlatform(meta)
		platforms := meta.Platforms
		if len(platforms) == 0 {
			platforms = []string{platform}
		}

		tags := append([]string{}, meta.Tags...)
		if meta.Screen != "" {
			tags = append(tags, "screen:"+meta.Screen)
		}

		g.AddNode(&domain.Node{
			ID:            id,
			Label:         labelFor(meta.ClassName, id),
			Status:        meta.Status,
			ClassName:     meta.ClassName,
			FilePath:      file.Path,
			Screen:        meta.Screen,
			Platform:      platform,
			Platforms:     platforms,
			MultiPlatform: len(platforms) > 1,
			Tags:          tags,
			Initial:       meta.Initial,
		})

		if meta.Screen != "" {
			g.ScreenGroups[meta.Screen] = append(g.ScreenGroups[meta.Screen], id)
		}
	}

	for _, t := range result.Transitions {
		source, ok := aliases.Resolve(t.From)
		if !ok {
			log.Printf("[graph] dropping transition %s-[%s]->%s: unknown source", t.From, t.Event, t.To)
			continue
		}
		target, ok := aliases.Resolve(t.To)
		if !ok {
			log.Printf("[graph] dropping transition %s-[%s]->%s: unknown target", t.From, t.Event, t.To)
			continue
		}

		platforms := t.Platforms
		if len(platforms) == 0 {
			if n := g.Node(source); n != nil {
				platforms = []string{n.Platform}
			}
		}

		g.AddEdge(&domain.Edge{
			Source:        source,
			Target:        target,
			Event:         t.Event,
			Platforms:     platforms,
			HasRequires:   t.Requires != "",
			HasConditions: len(t.Conditions) > 0,
			ActionCount:   len(t.ActionDetails),
		})
	}

	return g
}

// resolvePlatform applies the platform precedence: the first setup
// entry that names one, then the metadata platform, then "web".
func resolvePlatform(meta *discovery.ImplicationMetadata) string {
	for _, s := range meta.Setup {
		if s.Platform != "" {
			return s.Platform
		}
	}
	if meta.Platform != "" {
		return meta.Platform
	}
	return defaultPlatform
}

func labelFor(className, id string) string {
	if strings.TrimSpace(className) == "" {
		return "Unknown"
	}
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	label := strings.Join(parts, " ")
	if label == "" {
		return "Unknown"
	}
	return label
}
