package collision

import (
	gomath "math"

	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/math"
)

// parallelEpsilon is the determinant below which a ray is treated as
// parallel to a triangle.
const parallelEpsilon = 1e-7

// Ray is a half line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Grow returns the box extended to contain p.
func (b AABB) Grow(p math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)},
		Max: math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)},
	}
}

// IntersectAABB tests the ray against box and returns the entry distance and
// the normal of the entry face. A ray starting inside the box does not hit
// it. Faces are inclusive, so grazing rays along a face report a hit.
func (r Ray) IntersectAABB(box AABB) (t float32, normal math.Vec3, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	entryAxis := -1

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, math.Vec3{}, false
			}
			continue
		}

		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis = axis
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmin < 0 || entryAxis < 0 {
		return 0, math.Vec3{}, false
	}

	var n [3]float32
	if dir[entryAxis] > 0 {
		n[entryAxis] = -1
	} else {
		n[entryAxis] = 1
	}
	return tmin, math.V3(n), true
}

// IntersectTriangle tests the ray against tri (Moller-Trumbore) and returns
// the hit distance and the face normal turned towards the ray origin.
func (r Ray) IntersectTriangle(tri geometry.Triangle) (t float32, normal math.Vec3, hit bool) {
	e1 := tri.B.Sub(tri.A)
	e2 := tri.C.Sub(tri.A)

	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -parallelEpsilon && det < parallelEpsilon {
		return 0, math.Vec3{}, false
	}
	inv := 1 / det

	s := r.Origin.Sub(tri.A)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, math.Vec3{}, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, math.Vec3{}, false
	}

	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, math.Vec3{}, false
	}

	normal, ok := tri.Normal()
	if !ok {
		return 0, math.Vec3{}, false
	}
	if normal.Dot(r.Direction) > 0 {
		normal = normal.Negate()
	}
	return t, normal, true
}
