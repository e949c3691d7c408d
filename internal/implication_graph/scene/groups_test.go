package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

func taggedNode(id string, x, y float64, tags ...string) SceneNode {
	return SceneNode{Node: domain.Node{ID: id, Tags: tags}, X: x, Y: y}
}

func TestComputeGroupsMembership(t *testing.T) {
	th := theme.Default()

	t.Run("needs two members", func(t *testing.T) {
		nodes := []SceneNode{
			taggedNode("a", 0, 0, "flow:booking"),
			taggedNode("b", 100, 0, "flow:account"),
		}
		assert.Empty(t, ComputeGroups(nodes, th))
	})

	t.Run("plain tags are ignored", func(t *testing.T) {
		nodes := []SceneNode{
			taggedNode("a", 0, 0, "smoke"),
			taggedNode("b", 100, 0, "smoke"),
		}
		assert.Empty(t, ComputeGroups(nodes, th), "grouping only applies to category:value tags")
	})

	t.Run("member ids are sorted", func(t *testing.T) {
		nodes := []SceneNode{
			taggedNode("zeta", 0, 0, "flow:booking"),
			taggedNode("alpha", 100, 0, "flow:booking"),
		}
		boxes := ComputeGroups(nodes, th)
		require.Len(t, boxes, 1)
		assert.Equal(t, []string{"alpha", "zeta"}, boxes[0].NodeIDs)
	})
}

func TestComputeGroupsGeometry(t *testing.T) {
	th := theme.Default()
	nodes := []SceneNode{
		taggedNode("a", 100, 100, "flow:booking"),
		taggedNode("b", 400, 300, "flow:booking"),
	}

	boxes := ComputeGroups(nodes, th)
	require.Len(t, boxes, 1)

	box := boxes[0]
	assert.Equal(t, groupBasePadding, box.Padding)
	// Bounding box of the two centers, expanded by the node extent and
	// the padding on every side.
	assert.Equal(t, 100-nodeExtentW/2-box.Padding, box.X)
	assert.Equal(t, 100-nodeExtentH/2-box.Padding, box.Y)
	assert.Equal(t, 300+nodeExtentW+2*box.Padding, box.W)
	assert.Equal(t, 200+nodeExtentH+2*box.Padding, box.H)
}

func TestComputeGroupsLayering(t *testing.T) {
	th := theme.Default()
	// flow:big spans a wide area, flow:small a tight one.
	nodes := []SceneNode{
		taggedNode("a", 0, 0, "flow:big"),
		taggedNode("b", 1000, 600, "flow:big"),
		taggedNode("c", 100, 100, "flow:small"),
		taggedNode("d", 150, 120, "flow:small"),
	}

	boxes := ComputeGroups(nodes, th)
	require.Len(t, boxes, 2)

	assert.Equal(t, "flow:big", boxes[0].Tag, "largest area comes first")
	assert.Equal(t, "flow:small", boxes[1].Tag)
	assert.Greater(t, boxes[0].Padding, boxes[1].Padding, "outer boxes carry more padding")
	assert.Equal(t, groupBasePadding+groupPaddingStep, boxes[0].Padding)
	assert.Equal(t, groupBasePadding, boxes[1].Padding)
}

func TestComputeGroupsColorsCycle(t *testing.T) {
	th := theme.Default()
	var nodes []SceneNode
	tags := []string{"g:a", "g:b", "g:c", "g:d", "g:e", "g:f", "g:g"}
	for i, tag := range tags {
		x := float64(i * 10)
		nodes = append(nodes,
			taggedNode(tag+"-1", x, 0, tag),
			taggedNode(tag+"-2", x+5, 5, tag),
		)
	}

	boxes := ComputeGroups(nodes, th)
	require.Len(t, boxes, len(tags))
	for _, box := range boxes {
		assert.NotEmpty(t, box.Color)
	}
}
