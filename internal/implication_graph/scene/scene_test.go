package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

func bookingGraph() *domain.Graph {
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "created", Status: "created", Platform: "web", Tags: []string{"flow:booking"}, Initial: true})
	g.AddNode(&domain.Node{ID: "pending", Status: "pending", Platform: "web", Tags: []string{"flow:booking"}})
	g.AddNode(&domain.Node{ID: "settings", Status: "active", Platform: "ios", Tags: []string{"flow:account"}})
	g.AddEdge(&domain.Edge{Source: "created", Target: "pending", Event: "REQUEST", Platforms: []string{"web"}})
	g.AddEdge(&domain.Edge{Source: "pending", Target: "settings", Event: "OPEN", Platforms: []string{"ios"}, HasRequires: true})
	return g
}

func TestComputeEmptyGraph(t *testing.T) {
	s := Compute(domain.NewGraph(), Options{})
	assert.Empty(t, s.Nodes)
	assert.Empty(t, s.Edges)
	assert.Equal(t, DefaultViewport(), s.Viewport)

	s = Compute(nil, Options{})
	assert.Empty(t, s.Nodes)
}

func TestComputeStyling(t *testing.T) {
	th := theme.Default()
	s := Compute(bookingGraph(), Options{Theme: th})

	require.Len(t, s.Nodes, 3)
	require.Len(t, s.Edges, 2)

	byID := map[string]SceneNode{}
	for _, n := range s.Nodes {
		byID[n.ID] = n
	}

	assert.Equal(t, th.StyleFor("created").Color, byID["created"].Color)
	assert.Equal(t, th.StyleFor("created").Icon, byID["created"].Icon)
	assert.Equal(t, "solid", byID["created"].BorderStyle)

	assert.Equal(t, th.PlatformColor("web"), s.Edges[0].Color)
	assert.Equal(t, "solid", s.Edges[0].LineStyle)
	assert.Equal(t, th.PlatformColor("ios"), s.Edges[1].Color)
	assert.Equal(t, "dashed", s.Edges[1].LineStyle, "transitions with requirements render dashed")
}

func TestComputeUnknownStatusFallsBack(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "odd", Status: "weird"})

	th := theme.Default()
	s := Compute(g, Options{Theme: th})
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, th.StyleFor("default").Color, s.Nodes[0].Color)
}

func TestComputeMultiPlatformBorder(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "both", MultiPlatform: true})

	s := Compute(g, Options{})
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "dashed-thick", s.Nodes[0].BorderStyle)
}

func TestComputeFilters(t *testing.T) {
	g := bookingGraph()

	t.Run("single filter keeps the tagged subgraph", func(t *testing.T) {
		s := Compute(g, Options{Filters: []string{"flow:booking"}})
		require.Len(t, s.Nodes, 2)
		require.Len(t, s.Edges, 1, "the edge into the filtered-out node disappears")
		assert.Equal(t, "REQUEST", s.Edges[0].Event)
	})

	t.Run("filters combine as OR", func(t *testing.T) {
		s := Compute(g, Options{Filters: []string{"flow:booking", "flow:account"}})
		assert.Len(t, s.Nodes, 3)
		assert.Len(t, s.Edges, 2)
	})

	t.Run("unmatched filter empties the scene", func(t *testing.T) {
		s := Compute(g, Options{Filters: []string{"flow:nothing"}})
		assert.Empty(t, s.Nodes)
		assert.Empty(t, s.Edges)
	})
}

func TestComputePathDimming(t *testing.T) {
	g := bookingGraph()

	t.Run("off-path elements dim", func(t *testing.T) {
		s := Compute(g, Options{PathTarget: "pending"})
		assert.Equal(t, []string{"created", "pending"}, s.PathNodes)

		for _, n := range s.Nodes {
			switch n.ID {
			case "created", "pending":
				assert.False(t, n.Dimmed, "%s is on the path", n.ID)
			default:
				assert.True(t, n.Dimmed, "%s is off the path", n.ID)
			}
		}
		for _, e := range s.Edges {
			if e.Event == "REQUEST" {
				assert.False(t, e.Dimmed)
			} else {
				assert.True(t, e.Dimmed)
			}
		}
	})

	t.Run("unresolvable target leaves the scene undimmed", func(t *testing.T) {
		s := Compute(g, Options{PathTarget: "nowhere"})
		assert.Empty(t, s.PathNodes)
		for _, n := range s.Nodes {
			assert.False(t, n.Dimmed)
		}
	})

	t.Run("no target means no path state", func(t *testing.T) {
		s := Compute(g, Options{})
		assert.Empty(t, s.PathNodes)
	})
}

func TestComputeSavedLayoutOverridesAuto(t *testing.T) {
	g := bookingGraph()
	saved := map[string]domain.Position{
		"created": {X: 999, Y: 888},
	}

	s := Compute(g, Options{Layout: saved})
	byID := map[string]SceneNode{}
	for _, n := range s.Nodes {
		byID[n.ID] = n
	}

	assert.Equal(t, 999.0, byID["created"].X)
	assert.Equal(t, 888.0, byID["created"].Y)
	assert.NotEqual(t, 0.0, byID["pending"].X, "nodes without a saved position keep the automatic one")
}

func TestComputeDeterminism(t *testing.T) {
	g := bookingGraph()
	opts := Options{Filters: []string{"flow:booking"}, PathTarget: "pending", Selection: "created"}

	first := Compute(g, opts)
	second := Compute(g, opts)
	assert.Equal(t, first, second)
}

func TestComputeSelectionAndGroups(t *testing.T) {
	g := bookingGraph()

	s := Compute(g, Options{Selection: "pending"})
	assert.Equal(t, "pending", s.Selected)
	require.Len(t, s.Groups, 1, "only flow:booking has two members")
	assert.Equal(t, "flow:booking", s.Groups[0].Tag)

	s = Compute(g, Options{SkipGroups: true})
	assert.Empty(t, s.Groups)
}
