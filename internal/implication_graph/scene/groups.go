package scene

import (
	"sort"
	"strings"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

// Nominal node extent around its center position, used to turn point
// positions into box geometry.
const (
	nodeExtentW = 180.0
	nodeExtentH = 64.0

	groupBasePadding = 16.0
	groupPaddingStep = 8.0
)

// GroupBox is the axis-aligned bounding box drawn behind the nodes
// sharing one category:value tag.
type GroupBox struct {
	Tag     string   `json:"tag"`
	NodeIDs []string `json:"nodeIds"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	W       float64  `json:"w"`
	H       float64  `json:"h"`
	Padding float64  `json:"padding"`
	Color   string   `json:"color"`
}

// ComputeGroups derives the tag-group boxes from current node
// positions. Boxes are returned largest area first, and padding grows
// with area so overlapping groups layer correctly, largest behind.
// A group needs at least two positioned members to draw a box.
func ComputeGroups(nodes []SceneNode, th *theme.Theme) []GroupBox {
	members := map[string][]SceneNode{}
	for _, n := range nodes {
		for _, tag := range n.Tags {
			if !strings.Contains(tag, ":") {
				continue
			}
			members[tag] = append(members[tag], n)
		}
	}

	tags := make([]string, 0, len(members))
	for tag, ns := range members {
		if len(ns) >= 2 {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	boxes := make([]GroupBox, 0, len(tags))
	for i, tag := range tags {
		ns := members[tag]
		minX, minY := ns[0].X, ns[0].Y
		maxX, maxY := ns[0].X, ns[0].Y
		ids := make([]string, 0, len(ns))
		for _, n := range ns {
			if n.X < minX {
				minX = n.X
			}
			if n.Y < minY {
				minY = n.Y
			}
			if n.X > maxX {
				maxX = n.X
			}
			if n.Y > maxY {
				maxY = n.Y
			}
			ids = append(ids, n.ID)
		}
		sort.Strings(ids)

		boxes = append(boxes, GroupBox{
			Tag:     tag,
			NodeIDs: ids,
			X:       minX - nodeExtentW/2,
			Y:       minY - nodeExtentH/2,
			W:       (maxX - minX) + nodeExtentW,
			H:       (maxY - minY) + nodeExtentH,
			Color:   th.GroupColor(i),
		})
	}

	// Largest first; padding staggered by descending area.
	sort.SliceStable(boxes, func(i, j int) bool {
		ai := boxes[i].W * boxes[i].H
		aj := boxes[j].W * boxes[j].H
		if ai != aj {
			return ai > aj
		}
		return boxes[i].Tag < boxes[j].Tag
	})
	for i := range boxes {
		pad := groupBasePadding + float64(len(boxes)-1-i)*groupPaddingStep
		boxes[i].Padding = pad
		boxes[i].X -= pad
		boxes[i].Y -= pad
		boxes[i].W += 2 * pad
		boxes[i].H += 2 * pad
	}
	return boxes
}
