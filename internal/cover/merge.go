package cover

import (
	"fmt"
	gomath "math"
)

// MergeProximity keeps the first of every group of nodes within radius of
// each other and removes the rest. With sameNormalOnly, two nodes only merge
// when the dot product of their normals exceeds normalDot. It returns the
// number of removed nodes.
func MergeProximity(obj *Object, radius float32, sameNormalOnly bool, normalDot float32) int {
	return len(mergeProximity(obj, radius, sameNormalOnly, normalDot))
}

// MergeProximity2D merges nodes on the same integer Z level whose planar
// distance is within radius. It returns the number of removed nodes.
func MergeProximity2D(obj *Object, radius float32) int {
	return len(mergeProximity2D(obj, radius))
}

func mergeProximity(obj *Object, radius float32, sameNormalOnly bool, normalDot float32) []*Node {
	return mergeWith(obj, radius, radius, func(a, b *Node) bool {
		if a.Position.Distance(b.Position) > radius {
			return false
		}
		return !sameNormalOnly || a.Normal.Dot(b.Normal) > normalDot
	})
}

func mergeProximity2D(obj *Object, radius float32) []*Node {
	return mergeWith(obj, radius, 1, func(a, b *Node) bool {
		if gomath.Floor(float64(a.Position.Z)) != gomath.Floor(float64(b.Position.Z)) {
			return false
		}
		return a.Position.DistanceXY(b.Position) <= radius
	})
}

// mergeWith visits nodes in list order. Every surviving node claims each
// later, unclaimed node that same reports as a duplicate.
func mergeWith(obj *Object, rxy, rz float32, same func(a, b *Node) bool) []*Node {
	nodes := obj.Nodes()
	if len(nodes) < 2 {
		return nil
	}

	index := newNodeIndex(nodes)
	dup := make([]bool, len(nodes))
	var removed []*Node

	for i, cur := range nodes {
		if dup[i] {
			continue
		}
		for _, j := range index.near(cur.Position, rxy, rz) {
			if j <= i || dup[j] {
				continue
			}
			if same(cur, nodes[j]) {
				dup[j] = true
				removed = append(removed, nodes[j])
			}
		}
	}

	obj.RemoveNodes(removed)
	return removed
}

// mergeNodes runs the merge passes for one sampled object. With
// StrictChecks, a pointer repeated in the merged list is an error.
func mergeNodes(obj *Object, p Params, geometryMode bool) ([]*Node, error) {
	var merged []*Node
	radius := p.Spacing - 1
	if geometryMode {
		radius = p.Spacing / 2
		merged = mergeProximity(obj, radius, true, p.MergeNormalDot)
	} else {
		merged = mergeProximity(obj, radius, false, p.MergeNormalDot)
	}
	if p.MergePlanar {
		merged = append(merged, mergeProximity2D(obj, radius)...)
	}

	if p.StrictChecks {
		if dups := obj.checkDuplicates(); dups > 0 {
			return merged, fmt.Errorf("%s: %w: %d repeated", obj.Name, ErrDuplicateNode, dups)
		}
	}
	return merged, nil
}
