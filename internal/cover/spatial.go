package cover

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/Faultbox/covergen/pkg/math"
)

// entryPad keeps point entries from having zero-width bounds, which the
// tree's strict overlap test would never report.
const entryPad = 0.01

// nodeIndex is an R-tree over a fixed snapshot of node positions. Queries
// return list positions in ascending order.
type nodeIndex struct {
	tree  *rtreego.Rtree
	count int
}

type nodeEntry struct {
	pos  int
	rect rtreego.Rect
}

func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.rect
}

func toPoint(v math.Vec3) rtreego.Point {
	return rtreego.Point{float64(v.X), float64(v.Y), float64(v.Z)}
}

func newNodeIndex(nodes []*Node) *nodeIndex {
	entries := make([]rtreego.Spatial, len(nodes))
	for i, n := range nodes {
		entries[i] = &nodeEntry{pos: i, rect: toPoint(n.Position).ToRect(entryPad)}
	}
	return &nodeIndex{
		tree:  rtreego.NewTree(3, 4, 16, entries...),
		count: len(nodes),
	}
}

// near returns the positions whose node lies in the box around center with
// half sizes rxy on X/Y and rz on Z. The result is a superset; callers apply
// the exact test.
func (x *nodeIndex) near(center math.Vec3, rxy, rz float32) []int {
	pad := float64(entryPad)
	lo := toPoint(center.Sub(math.Vec3{X: rxy, Y: rxy, Z: rz}))
	hi := toPoint(center.Add(math.Vec3{X: rxy, Y: rxy, Z: rz}))
	for i := range lo {
		lo[i] -= pad
		hi[i] += pad
	}

	rect, err := rtreego.NewRectFromPoints(lo, hi)
	if err != nil {
		all := make([]int, x.count)
		for i := range all {
			all[i] = i
		}
		return all
	}

	hits := x.tree.SearchIntersect(rect)
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.(*nodeEntry).pos
	}
	slices.Sort(out)
	return out
}
