// Package cover generates cover points for tactical AI: it samples obstacle
// surfaces with ray casts, merges and chains the hits, and poses transition
// volumes between connected points.
package cover

import (
	"github.com/samber/lo"

	"github.com/Faultbox/covergen/pkg/math"
)

// Node is a single usable cover position.
type Node struct {
	Index    int       // position in the owning object's list, always 0..N-1
	Position math.Vec3 // hit point on the collision surface
	Normal   math.Vec3 // outward surface normal, unit length

	// Height is the absolute Z of the topmost confirmed hit until the owning
	// object is finalized, then the usable height above Position.
	Height float32

	// Chain state
	ConnectedToNext bool // linked to the node at Index+1
	IsChainRoot     bool // chain growth started or restarted here

	Trigger string // handle of the transition volume, empty when none

	owner *Object
}

// TopZ returns the absolute Z of the top of the cover column.
func (n *Node) TopZ() float32 {
	if n.owner != nil && n.owner.finalized {
		return n.Position.Z + n.Height
	}
	return n.Height
}

// Object holds every cover node generated for one scene obstacle.
type Object struct {
	ID       int
	Name     string
	Location math.Vec3 // bounds center
	Extent   math.Vec3 // bounds size
	Scale    math.Vec3
	Dynamic  bool

	nodes     []*Node
	finalized bool
	index     *nodeIndex // built on finalize, dropped on any list change
}

// NewObject creates an empty cover object.
func NewObject(id int, name string) *Object {
	return &Object{
		ID:    id,
		Name:  name,
		Scale: math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// AddNode appends a node whose height starts at the hit's Z.
func (o *Object) AddNode(pos, normal math.Vec3) *Node {
	n := &Node{
		Index:    len(o.nodes),
		Position: pos,
		Normal:   normal,
		Height:   pos.Z,
		owner:    o,
	}
	o.index = nil
	o.nodes = append(o.nodes, n)
	return n
}

// Nodes returns the ordered node list. Callers must not modify it.
func (o *Object) Nodes() []*Node {
	return o.nodes
}

// Len returns the number of nodes.
func (o *Object) Len() int {
	return len(o.nodes)
}

// Finalized reports whether heights are relative.
func (o *Object) Finalized() bool {
	return o.finalized
}

// RemoveNodes drops exactly the listed instances and re-indexes the rest.
func (o *Object) RemoveNodes(remove []*Node) {
	if len(remove) == 0 {
		return
	}
	drop := make(map[*Node]struct{}, len(remove))
	for _, n := range remove {
		drop[n] = struct{}{}
	}

	kept := o.nodes[:0]
	for _, n := range o.nodes {
		if _, ok := drop[n]; ok {
			n.owner = nil
			continue
		}
		kept = append(kept, n)
	}
	clear(o.nodes[len(kept):])
	o.nodes = kept
	o.reindex()
}

// ReplaceNodes replaces the list with order and re-indexes. Nodes not in
// order are released.
func (o *Object) ReplaceNodes(order []*Node) {
	keep := make(map[*Node]struct{}, len(order))
	for _, n := range order {
		keep[n] = struct{}{}
	}
	for _, n := range o.nodes {
		if _, ok := keep[n]; !ok {
			n.owner = nil
		}
	}

	o.nodes = append([]*Node(nil), order...)
	for _, n := range o.nodes {
		n.owner = o
	}
	o.reindex()
}

// FinalizeHeights converts absolute top heights to heights relative to each
// node's position. A second call does nothing.
func (o *Object) FinalizeHeights() {
	if o.finalized {
		return
	}
	for _, n := range o.nodes {
		n.Height -= n.Position.Z
	}
	o.finalized = true
	o.index = newNodeIndex(o.nodes)
}

// ConnectedCount returns how many nodes are linked to their successor.
func (o *Object) ConnectedCount() int {
	return lo.CountBy(o.nodes, func(n *Node) bool { return n.ConnectedToNext })
}

// RootCount returns how many nodes are chain roots.
func (o *Object) RootCount() int {
	return lo.CountBy(o.nodes, func(n *Node) bool { return n.IsChainRoot })
}

func (o *Object) reindex() {
	o.index = nil
	for i, n := range o.nodes {
		n.Index = i
	}
}

// checkDuplicates counts entries that repeat an earlier pointer.
func (o *Object) checkDuplicates() int {
	seen := make(map[*Node]struct{}, len(o.nodes))
	dups := 0
	for _, n := range o.nodes {
		if _, ok := seen[n]; ok {
			dups++
			continue
		}
		seen[n] = struct{}{}
	}
	return dups
}

// ObjectSet is the result of one generation run.
type ObjectSet struct {
	RunID   string
	Level   int
	Static  []*Object
	Dynamic []*Object
}

// All returns static then dynamic objects.
func (s *ObjectSet) All() []*Object {
	all := make([]*Object, 0, len(s.Static)+len(s.Dynamic))
	all = append(all, s.Static...)
	return append(all, s.Dynamic...)
}

// NodeCount returns the total number of nodes across all objects.
func (s *ObjectSet) NodeCount() int {
	return lo.SumBy(s.All(), func(o *Object) int { return o.Len() })
}

// Find returns the first object with the given name.
func (s *ObjectSet) Find(name string) (*Object, bool) {
	for _, o := range s.All() {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}
