// Package scene holds the plain data records the cover generator reads from a
// level: objects with their tags, bounds, transform and optional mesh.
package scene

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/Faultbox/covergen/pkg/math"
)

// Well-known object tags.
const (
	TagNoCover             = "NoCover"
	TagCoverFromGeometry   = "CoverFromGeometry"
	TagNoCoverOptimization = "NoCoverOptimization"
)

// Mesh errors.
var (
	ErrNoMesh        = errors.New("object has no mesh")
	ErrMalformedMesh = errors.New("malformed mesh")
)

// Bounds is a world-space axis-aligned box given by center and full size.
type Bounds struct {
	Center math.Vec3
	Size   math.Vec3
}

// Min returns the minimum corner.
func (b Bounds) Min() math.Vec3 {
	return b.Center.Sub(b.Size.Scale(0.5))
}

// Max returns the maximum corner.
func (b Bounds) Max() math.Vec3 {
	return b.Center.Add(b.Size.Scale(0.5))
}

// Bottom returns the Z of the box floor.
func (b Bounds) Bottom() float32 {
	return b.Center.Z - b.Size.Z/2
}

// Top returns the Z of the box ceiling.
func (b Bounds) Top() float32 {
	return b.Center.Z + b.Size.Z/2
}

// Transform places an object's local mesh in the world.
type Transform struct {
	Location math.Vec3
	Rotation math.Rotator
	Scale    math.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// Matrix returns location * rotation * scale.
func (t Transform) Matrix() math.Mat4 {
	return math.Translate(t.Location.X, t.Location.Y, t.Location.Z).
		Mul(t.Rotation.Matrix()).
		Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// NegativeAxes returns how many scale components are negative.
func (t Transform) NegativeAxes() int {
	return lo.CountBy([]float32{t.Scale.X, t.Scale.Y, t.Scale.Z}, func(s float32) bool {
		return s < 0
	})
}

// Mesh is an indexed triangle list in local space. Exactly one of Indices16
// and Indices32 is set.
type Mesh struct {
	Vertices  []math.Vec3
	Indices16 []uint16
	Indices32 []uint32
}

// IndexCount returns the number of indices in whichever buffer is set.
func (m *Mesh) IndexCount() int {
	if m.Indices32 != nil {
		return len(m.Indices32)
	}
	return len(m.Indices16)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.IndexCount() / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c int) {
	if m.Indices32 != nil {
		return int(m.Indices32[i*3]), int(m.Indices32[i*3+1]), int(m.Indices32[i*3+2])
	}
	return int(m.Indices16[i*3]), int(m.Indices16[i*3+1]), int(m.Indices16[i*3+2])
}

// Validate checks the index buffers against the vertex buffer.
func (m *Mesh) Validate() error {
	if m == nil {
		return ErrNoMesh
	}
	if (m.Indices16 == nil) == (m.Indices32 == nil) {
		return fmt.Errorf("%w: exactly one index buffer must be set", ErrMalformedMesh)
	}
	if len(m.Vertices) == 0 || m.IndexCount() == 0 {
		return fmt.Errorf("%w: empty vertex or index buffer", ErrMalformedMesh)
	}
	if m.IndexCount()%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrMalformedMesh, m.IndexCount())
	}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		for _, idx := range [3]int{a, b, c} {
			if idx >= len(m.Vertices) {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrMalformedMesh, i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Object is one scene object as seen by the cover generator.
type Object struct {
	Handle           int // position within its level, reported back by ray hits
	Name             string
	Tags             []string
	CollisionEnabled bool
	Movable          bool
	Bounds           Bounds
	Transform        Transform
	Mesh             *Mesh
}

// HasTag reports whether the object carries tag.
func (o *Object) HasTag(tag string) bool {
	return lo.Contains(o.Tags, tag)
}

// Level is an ordered list of objects.
type Level struct {
	Name    string
	Objects []Object
}

// Snapshot is a loaded scene.
type Snapshot struct {
	Levels []Level
}

// Objects returns the objects of the given level.
func (s *Snapshot) Objects(level int) ([]Object, error) {
	if level < 0 || level >= len(s.Levels) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrLevelOutOfRange, level, len(s.Levels))
	}
	return s.Levels[level].Objects, nil
}
