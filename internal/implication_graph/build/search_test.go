package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

func searchGraph() *domain.Graph {
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "created_booking", ClassName: "CreatedBookingImplications", Status: "created", Label: "Created Booking"})
	g.AddNode(&domain.Node{ID: "pending_booking", ClassName: "PendingBookingImplications", Status: "pending", Screen: "checkout"})
	g.AddNode(&domain.Node{ID: "settings", ClassName: "SettingsImplications", Status: "active"})
	g.AddEdge(&domain.Edge{Source: "created_booking", Target: "pending_booking", Event: "REQUEST"})
	g.AddEdge(&domain.Edge{Source: "pending_booking", Target: "settings", Event: "OPEN_SETTINGS"})
	return g
}

func TestSearch(t *testing.T) {
	g := searchGraph()

	t.Run("matches across node fields", func(t *testing.T) {
		res := Search(g, "booking", 0)
		require.Len(t, res.States, 2)
		assert.Equal(t, "created_booking", res.States[0].ID, "state hits are sorted by id")
		assert.Equal(t, "pending_booking", res.States[1].ID)
	})

	t.Run("matches screens", func(t *testing.T) {
		res := Search(g, "checkout", 0)
		require.Len(t, res.States, 1)
		assert.Equal(t, "pending_booking", res.States[0].ID)
	})

	t.Run("matches transition events and endpoints", func(t *testing.T) {
		res := Search(g, "request", 0)
		require.Len(t, res.Transitions, 1)
		assert.Equal(t, "REQUEST", res.Transitions[0].Event)

		res = Search(g, "settings", 0)
		assert.Len(t, res.Transitions, 2, "both the endpoint and the event name match")
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Len(t, Search(g, "BOOKING", 0).States, 2)
	})

	t.Run("limit caps each kind", func(t *testing.T) {
		res := Search(g, "booking", 1)
		assert.Len(t, res.States, 1)
	})

	t.Run("blank query returns empty, not everything", func(t *testing.T) {
		res := Search(g, "   ", 0)
		assert.Empty(t, res.States)
		assert.Empty(t, res.Transitions)
		assert.NotNil(t, res.States, "slices stay non-nil for JSON rendering")
	})

	t.Run("nil graph", func(t *testing.T) {
		res := Search(nil, "anything", 0)
		assert.Empty(t, res.States)
		assert.Empty(t, res.Transitions)
	})
}
