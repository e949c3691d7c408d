package scene

import (
	"log"
	"strings"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

// Options are the full inputs to Compute. The rendered scene is a pure
// function of (graph, filters, theme, layout, selection, path target):
// identical inputs produce an identical scene.
type Options struct {
	Theme      *theme.Theme               `json:"-"`
	Filters    []string                   `json:"filters,omitempty"`
	Layout     map[string]domain.Position `json:"layout,omitempty"`
	Selection  string                     `json:"selection,omitempty"`
	PathTarget string                     `json:"pathTarget,omitempty"`
	SkipGroups bool                       `json:"-"`
}

type SceneNode struct {
	domain.Node
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	BorderStyle string  `json:"borderStyle"`
	Dimmed      bool    `json:"dimmed,omitempty"`
}

type SceneEdge struct {
	domain.Edge
	Color     string `json:"color"`
	LineStyle string `json:"lineStyle"`
	Dimmed    bool   `json:"dimmed,omitempty"`
}

type Scene struct {
	Nodes     []SceneNode `json:"nodes"`
	Edges     []SceneEdge `json:"edges"`
	Groups    []GroupBox  `json:"groups,omitempty"`
	Selected  string      `json:"selected,omitempty"`
	PathNodes []string    `json:"pathNodes,omitempty"`
	Viewport  Viewport    `json:"viewport"`
}

type Viewport struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

// DefaultViewport is the identity view.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Compute renders the styled scene for a graph. A zero-node graph
// yields an empty scene, never an error.
func Compute(g *domain.Graph, opts Options) Scene {
	th := opts.Theme
	if th == nil {
		th = theme.Default()
	}

	scene := Scene{Viewport: DefaultViewport(), Selected: opts.Selection}
	if g == nil || len(g.Nodes) == 0 {
		return scene
	}

	include := filterNodes(g, opts.Filters)

	positions := AutoLayout(g, include)
	// Saved positions are applied node-by-node; nodes absent from the
	// saved layout keep their automatic position.
	for id, pos := range opts.Layout {
		if include[id] {
			positions[id] = pos
		}
	}

	// Path search runs over the full directed graph; filters only
	// affect what gets drawn and dimmed.
	var pathNodes []string
	if opts.PathTarget != "" {
		pathNodes = HighlightPath(g, allNodes(g), opts.PathTarget)
	}
	onPath := map[string]bool{}
	for _, id := range pathNodes {
		onPath[id] = true
	}
	pathEdge := map[*domain.Edge]bool{}
	for i := 0; i+1 < len(pathNodes); i++ {
		for _, e := range g.Out[pathNodes[i]] {
			if e.Target == pathNodes[i+1] {
				pathEdge[e] = true
			}
		}
	}

	for _, n := range g.Nodes {
		if !include[n.ID] {
			continue
		}
		style := th.StyleFor(n.Status)
		border := "solid"
		if n.MultiPlatform {
			border = "dashed-thick"
		}
		pos := positions[n.ID]
		scene.Nodes = append(scene.Nodes, SceneNode{
			Node:        *n,
			X:           pos.X,
			Y:           pos.Y,
			Color:       style.Color,
			Icon:        style.Icon,
			BorderStyle: border,
			Dimmed:      len(pathNodes) > 0 && !onPath[n.ID],
		})
	}

	for _, e := range g.Edges {
		if !include[e.Source] || !include[e.Target] {
			continue
		}
		scene.Edges = append(scene.Edges, SceneEdge{
			Edge:      *e,
			Color:     edgeColor(th, g, e),
			LineStyle: edgeLineStyle(e),
			Dimmed:    len(pathNodes) > 0 && !pathEdge[e],
		})
	}

	if !opts.SkipGroups {
		scene.Groups = ComputeGroups(scene.Nodes, th)
	}
	scene.PathNodes = pathNodes
	return scene
}

func allNodes(g *domain.Graph) map[string]bool {
	include := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		include[n.ID] = true
	}
	return include
}

// filterNodes applies active category:value filters: a node survives
// when it carries any matching tag (OR across filters). No filters
// means everything survives.
func filterNodes(g *domain.Graph, filters []string) map[string]bool {
	include := make(map[string]bool, len(g.Nodes))
	if len(filters) == 0 {
		for _, n := range g.Nodes {
			include[n.ID] = true
		}
		return include
	}

	active := make(map[string]bool, len(filters))
	for _, f := range filters {
		active[f] = true
	}
	for _, n := range g.Nodes {
		for _, tag := range n.Tags {
			if active[tag] {
				include[n.ID] = true
				break
			}
		}
	}
	return include
}

// edgeColor takes the transition's own first platform when present,
// else the source node's platform. This lets multi-platform
// transitions be styled independently of the node they originate from.
func edgeColor(th *theme.Theme, g *domain.Graph, e *domain.Edge) string {
	if len(e.Platforms) > 0 {
		return th.PlatformColor(e.Platforms[0])
	}
	if n := g.Node(e.Source); n != nil {
		return th.PlatformColor(n.Platform)
	}
	return th.PlatformColor("")
}

func edgeLineStyle(e *domain.Edge) string {
	if e.HasRequires || e.HasConditions {
		return "dashed"
	}
	return "solid"
}

// HighlightPath resolves the target, resolves the initial node, and
// returns the shortest path between them. A target or path that cannot
// be found logs a warning and returns nil: highlighting is a
// visualization aid, never a correctness check.
func HighlightPath(g *domain.Graph, include map[string]bool, target string) []string {
	targetID := ResolveTarget(g, include, target)
	if targetID == "" {
		log.Printf("[scene] path target %q not found", target)
		return nil
	}
	start := FindInitial(g, include)
	if start == "" {
		log.Printf("[scene] no initial node to start path from")
		return nil
	}
	path := ShortestPath(g, include, start, targetID)
	if path == nil {
		log.Printf("[scene] no path from %s to %s", start, targetID)
		return nil
	}
	return path
}

// ResolveTarget matches a target string against node IDs, lowercased:
// exact match wins, then prefix, then substring, scanning in sorted ID
// order so ties are deterministic.
func ResolveTarget(g *domain.Graph, include map[string]bool, target string) string {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return ""
	}

	ids := sortedIncluded(g, include)
	for _, id := range ids {
		if strings.ToLower(id) == target {
			return id
		}
	}
	for _, id := range ids {
		if strings.HasPrefix(strings.ToLower(id), target) {
			return id
		}
	}
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id), target) {
			return id
		}
	}
	return ""
}
