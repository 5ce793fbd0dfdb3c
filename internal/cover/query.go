package cover

import (
	"github.com/samber/lo"

	"github.com/Faultbox/covergen/pkg/math"
)

// zReach is the vertical half size of column queries, well past any level.
const zReach = 1e6

func (o *Object) spatialIndex() *nodeIndex {
	if o.index != nil {
		return o.index
	}
	return newNodeIndex(o.nodes)
}

// NodesInRadius returns the nodes within radius of pos, in list order.
func (o *Object) NodesInRadius(pos math.Vec3, radius float32) []*Node {
	if radius < 0 || len(o.nodes) == 0 {
		return nil
	}

	var out []*Node
	for _, i := range o.spatialIndex().near(pos, radius, radius) {
		if n := o.nodes[i]; n.Position.Distance(pos) <= radius {
			out = append(out, n)
		}
	}
	return out
}

// LowestNodeAt returns the lowest node whose planar distance to xy is within
// tol. Ties go to the earlier node.
func (o *Object) LowestNodeAt(xy math.Vec2, tol float32) (*Node, bool) {
	if tol < 0 || len(o.nodes) == 0 {
		return nil, false
	}
	n := o.lowestAt(o.spatialIndex(), xy, tol)
	return n, n != nil
}

func (o *Object) lowestAt(idx *nodeIndex, xy math.Vec2, tol float32) *Node {
	center := math.Vec3{X: xy.X, Y: xy.Y, Z: o.Location.Z}
	var best *Node
	for _, i := range idx.near(center, tol, zReach) {
		n := o.nodes[i]
		if n.Position.XY().Distance(xy) > tol {
			continue
		}
		if best == nil || n.Position.Z < best.Position.Z {
			best = n
		}
	}
	return best
}

// LowestLayer returns the lowest node of every cover column. Columns are the
// distinct planar positions, two positions closer than spacing-1 counting as
// one; a column's lowest node is searched within spacing/2 of it. The result
// follows the order in which columns first appear in the list and holds each
// node once.
func (o *Object) LowestLayer(spacing float32) []*Node {
	if spacing <= 0 || len(o.nodes) == 0 {
		return nil
	}

	var columns []math.Vec2
	for _, n := range o.nodes {
		xy := n.Position.XY()
		if !lo.ContainsBy(columns, func(c math.Vec2) bool { return c.Distance(xy) < spacing-1 }) {
			columns = append(columns, xy)
		}
	}

	idx := o.spatialIndex()
	out := make([]*Node, 0, len(columns))
	for _, c := range columns {
		if n := o.lowestAt(idx, c, spacing/2); n != nil && !lo.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
