package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

// ToDOT renders the graph as Graphviz text. Nodes and edges are
// emitted in sorted order so the output is stable across runs.
func ToDOT(g *domain.Graph, th *theme.Theme, title string) string {
	if th == nil {
		th = theme.Default()
	}

	var b strings.Builder
	b.WriteString("digraph stateboard {\n  rankdir=LR;\n  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];\n")
	if title != "" {
		b.WriteString(fmt.Sprintf(`  labelloc="t"; label="%s"; fontname="Helvetica";`, title))
		b.WriteString("\n")
	}

	nodes := make([]*domain.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		style := th.StyleFor(n.Status)
		shape := `style="rounded,filled"`
		if n.MultiPlatform {
			shape = `style="rounded,filled,dashed", penwidth=2`
		}
		b.WriteString(fmt.Sprintf(`  "%s" [label="%s", fillcolor="%s", %s];`+"\n",
			n.ID, n.Label, style.Color, shape))
	}

	edges := make([]*domain.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e != nil {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return domain.EdgeKey(edges[i].Source, edges[i].Target, edges[i].Event) <
			domain.EdgeKey(edges[j].Source, edges[j].Target, edges[j].Event)
	})

	for _, e := range edges {
		color := edgeColor(e, g, th)
		attrs := fmt.Sprintf(`label="%s", color="%s"`, e.Event, color)
		if e.HasRequires || e.HasConditions {
			attrs += `, style=dashed`
		}
		b.WriteString(fmt.Sprintf(`  "%s" -> "%s" [%s];`+"\n", e.Source, e.Target, attrs))
	}

	b.WriteString("}\n")
	return b.String()
}

func edgeColor(e *domain.Edge, g *domain.Graph, th *theme.Theme) string {
	if len(e.Platforms) > 0 {
		return th.PlatformColor(e.Platforms[0])
	}
	if n := g.Node(e.Source); n != nil {
		return th.PlatformColor(n.Platform)
	}
	return th.PlatformColor("")
}
