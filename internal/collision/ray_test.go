package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/math"
)

func TestIntersectAABB(t *testing.T) {
	box := AABB{Min: math.Vec3{X: -100, Y: -100, Z: 275}, Max: math.Vec3{X: 100, Y: 100, Z: 325}}

	tests := []struct {
		name       string
		ray        Ray
		wantHit    bool
		wantT      float32
		wantNormal math.Vec3
	}{
		{"front face", Ray{math.Vec3{X: -200, Z: 300}, math.Vec3{X: 1}}, true, 100, math.Vec3{X: -1}},
		{"back face", Ray{math.Vec3{X: 200, Z: 300}, math.Vec3{X: -1}}, true, 100, math.Vec3{X: 1}},
		{"side face", Ray{math.Vec3{Y: 250, Z: 300}, math.Vec3{Y: -1}}, true, 150, math.Vec3{Y: 1}},
		{"grazing top", Ray{math.Vec3{X: -200, Y: 100, Z: 325}, math.Vec3{X: 1}}, true, 100, math.Vec3{X: -1}},
		{"above", Ray{math.Vec3{X: -200, Z: 400}, math.Vec3{X: 1}}, false, 0, math.Vec3{}},
		{"pointing away", Ray{math.Vec3{X: -200, Z: 300}, math.Vec3{X: -1}}, false, 0, math.Vec3{}},
		{"starts inside", Ray{math.Vec3{Z: 300}, math.Vec3{X: 1}}, false, 0, math.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, hit := tt.ray.IntersectAABB(box)
			assert.Equal(t, tt.wantHit, hit)
			if !tt.wantHit {
				return
			}
			assert.InDelta(t, tt.wantT, got, 1e-4)
			assert.Equal(t, tt.wantNormal, n)
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	// Quad half facing -X at x=-100.
	tri := geometry.Triangle{
		A: math.Vec3{X: -100, Y: 100, Z: 0},
		B: math.Vec3{X: -100, Y: -100, Z: 0},
		C: math.Vec3{X: -100, Y: -100, Z: 100},
	}

	got, n, hit := Ray{math.Vec3{X: -200, Y: -50, Z: 20}, math.Vec3{X: 1}}.IntersectTriangle(tri)
	assert.True(t, hit)
	assert.InDelta(t, 100, got, 1e-4)
	assert.True(t, n.ApproxEqual(math.Vec3{X: -1}, 1e-6), "expected -X normal, got %v", n)

	// From behind the normal still faces the ray.
	_, n, hit = Ray{math.Vec3{X: 0, Y: -50, Z: 20}, math.Vec3{X: -1}}.IntersectTriangle(tri)
	assert.True(t, hit)
	assert.True(t, n.ApproxEqual(math.Vec3{X: 1}, 1e-6), "expected +X normal, got %v", n)

	_, _, hit = Ray{math.Vec3{X: -200, Y: 50, Z: 90}, math.Vec3{X: 1}}.IntersectTriangle(tri)
	assert.False(t, hit, "outside the triangle")

	_, _, hit = Ray{math.Vec3{X: -200, Y: -50, Z: 20}, math.Vec3{Y: 1}}.IntersectTriangle(tri)
	assert.False(t, hit, "parallel ray")
}

func TestAABBGrow(t *testing.T) {
	b := AABB{}.Grow(math.Vec3{X: 1, Y: -2, Z: 3})
	assert.Equal(t, math.Vec3{X: 0, Y: -2, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 0, Z: 3}, b.Max)
}
