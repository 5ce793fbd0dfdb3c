package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/covergen/pkg/math"
)

// wall has two nodes stacked at the origin and two more along +X.
func wall() (*Object, []*Node) {
	obj := NewObject(0, "Wall")
	obj.Location = math.Vec3{Z: 320}
	face := math.Vec3{Y: -1}
	nodes := []*Node{
		obj.AddNode(math.Vec3{Z: 310}, face),
		obj.AddNode(math.Vec3{Z: 300}, face),
		obj.AddNode(math.Vec3{X: 20, Z: 300}, face),
		obj.AddNode(math.Vec3{X: 40, Z: 350}, face),
	}
	return obj, nodes
}

func TestNodesInRadius(t *testing.T) {
	obj, nodes := wall()
	center := math.Vec3{Z: 300}

	assert.Equal(t, []*Node{nodes[0], nodes[1], nodes[2]}, obj.NodesInRadius(center, 20), "radius is inclusive")
	assert.Equal(t, []*Node{nodes[0], nodes[1]}, obj.NodesInRadius(center, 19.9))
	assert.Equal(t, []*Node{nodes[1]}, obj.NodesInRadius(center, 0))
	assert.Empty(t, obj.NodesInRadius(center, -1))
	assert.Empty(t, NewObject(1, "Empty").NodesInRadius(center, 100))
}

func TestLowestNodeAt(t *testing.T) {
	obj, nodes := wall()

	tests := []struct {
		name string
		xy   math.Vec2
		tol  float32
		want *Node
	}{
		{"stacked column", math.Vec2{}, 1, nodes[1]},
		{"exact position", math.Vec2{}, 0, nodes[1]},
		{"tie keeps earlier", math.Vec2{X: 10}, 10, nodes[1]},
		{"single node", math.Vec2{X: 40}, 1, nodes[3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := obj.LowestNodeAt(tt.xy, tt.tol)
			require.True(t, ok)
			assert.Same(t, tt.want, got)
		})
	}

	_, ok := obj.LowestNodeAt(math.Vec2{X: 100}, 5)
	assert.False(t, ok)
	_, ok = obj.LowestNodeAt(math.Vec2{}, -1)
	assert.False(t, ok)
}

func TestLowestLayer(t *testing.T) {
	obj, nodes := wall()
	assert.Equal(t, []*Node{nodes[1], nodes[2], nodes[3]}, obj.LowestLayer(20))
	assert.Empty(t, obj.LowestLayer(0))

	// Both column windows reach the low middle node; it is listed once.
	obj = NewObject(0, "Step")
	obj.AddNode(math.Vec3{Z: 300}, math.Vec3{Y: -1})
	obj.AddNode(math.Vec3{X: 19, Z: 400}, math.Vec3{Y: -1})
	mid := obj.AddNode(math.Vec3{X: 9.5, Z: 200}, math.Vec3{Y: -1})
	assert.Equal(t, []*Node{mid}, obj.LowestLayer(20))
}

func TestQueriesFollowListChanges(t *testing.T) {
	obj, nodes := wall()
	obj.FinalizeHeights()
	require.NotNil(t, obj.index)

	got, ok := obj.LowestNodeAt(math.Vec2{}, 1)
	require.True(t, ok)
	assert.Same(t, nodes[1], got)

	obj.RemoveNodes([]*Node{nodes[1]})
	assert.Nil(t, obj.index)
	got, ok = obj.LowestNodeAt(math.Vec2{}, 1)
	require.True(t, ok)
	assert.Same(t, nodes[0], got)

	low := obj.AddNode(math.Vec3{X: 0.5, Z: 250}, math.Vec3{Y: -1})
	got, ok = obj.LowestNodeAt(math.Vec2{}, 1)
	require.True(t, ok)
	assert.Same(t, low, got)
}
