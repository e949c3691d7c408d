package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

func chainGraph(edges ...[3]string) *domain.Graph {
	g := domain.NewGraph()
	seen := map[string]bool{}
	for _, e := range edges {
		for _, id := range []string{e[0], e[1]} {
			if !seen[id] {
				seen[id] = true
				g.AddNode(&domain.Node{ID: id})
			}
		}
		g.AddEdge(&domain.Edge{Source: e[0], Target: e[1], Event: e[2]})
	}
	return g
}

func includeAll(g *domain.Graph) map[string]bool {
	include := map[string]bool{}
	for _, n := range g.Nodes {
		include[n.ID] = true
	}
	return include
}

func TestFindInitial(t *testing.T) {
	t.Run("explicit marker wins", func(t *testing.T) {
		g := chainGraph([3]string{"a", "b", "GO"})
		g.AddNode(&domain.Node{ID: "z", Initial: true})
		include := includeAll(g)
		assert.Equal(t, "z", FindInitial(g, include))
	})

	t.Run("initial status next", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(&domain.Node{ID: "b", Status: "created"})
		g.AddNode(&domain.Node{ID: "m", Status: "initial"})
		assert.Equal(t, "m", FindInitial(g, includeAll(g)))
	})

	t.Run("no incoming edges next", func(t *testing.T) {
		g := chainGraph([3]string{"root", "leaf", "GO"}, [3]string{"leaf", "leaf", "LOOP"})
		assert.Equal(t, "root", FindInitial(g, includeAll(g)))
	})

	t.Run("first by id as last resort", func(t *testing.T) {
		g := chainGraph([3]string{"b", "a", "GO"}, [3]string{"a", "b", "BACK"})
		assert.Equal(t, "a", FindInitial(g, includeAll(g)))
	})

	t.Run("empty graph", func(t *testing.T) {
		g := domain.NewGraph()
		assert.Equal(t, "", FindInitial(g, map[string]bool{}))
	})
}

func TestShortestPath(t *testing.T) {
	// a -> b -> d and a -> c -> e -> d: BFS must take the short branch.
	g := chainGraph(
		[3]string{"a", "b", "X"},
		[3]string{"b", "d", "X"},
		[3]string{"a", "c", "X"},
		[3]string{"c", "e", "X"},
		[3]string{"e", "d", "X"},
	)
	include := includeAll(g)

	t.Run("picks the minimal hop count", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "d"}, ShortestPath(g, include, "a", "d"))
	})

	t.Run("start equals end", func(t *testing.T) {
		assert.Equal(t, []string{"a"}, ShortestPath(g, include, "a", "a"))
	})

	t.Run("unreachable returns nil", func(t *testing.T) {
		assert.Nil(t, ShortestPath(g, include, "d", "a"))
	})

	t.Run("excluded endpoint returns nil", func(t *testing.T) {
		partial := includeAll(g)
		delete(partial, "d")
		assert.Nil(t, ShortestPath(g, partial, "a", "d"))
	})

	t.Run("excluded intermediate reroutes", func(t *testing.T) {
		partial := includeAll(g)
		delete(partial, "b")
		assert.Equal(t, []string{"a", "c", "e", "d"}, ShortestPath(g, partial, "a", "d"))
	})
}

func TestResolveTarget(t *testing.T) {
	g := domain.NewGraph()
	for _, id := range []string{"created_booking", "pending_booking", "pending_payment", "done"} {
		g.AddNode(&domain.Node{ID: id})
	}
	include := includeAll(g)

	cases := []struct {
		name   string
		target string
		want   string
	}{
		{"exact match wins over prefix", "done", "done"},
		{"exact is case insensitive", "Pending_Booking", "pending_booking"},
		{"prefix before substring", "pending", "pending_booking"},
		{"substring as last resort", "payment", "pending_payment"},
		{"whitespace is trimmed", "  done  ", "done"},
		{"no match", "refunded", ""},
		{"empty target", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveTarget(g, include, tc.target))
		})
	}
}

func TestHighlightPath(t *testing.T) {
	g := chainGraph(
		[3]string{"start", "middle", "GO"},
		[3]string{"middle", "finish", "GO"},
	)
	require.NotNil(t, g.Node("start"))
	g.Node("start").Initial = true
	include := includeAll(g)

	t.Run("full path from initial", func(t *testing.T) {
		assert.Equal(t, []string{"start", "middle", "finish"}, HighlightPath(g, include, "finish"))
	})

	t.Run("unknown target yields nil", func(t *testing.T) {
		assert.Nil(t, HighlightPath(g, include, "nowhere"))
	})
}
