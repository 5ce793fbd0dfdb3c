// Package collision answers ray casts against a static snapshot of a scene
// level. Objects with a valid mesh are tested triangle by triangle, the rest
// by their bounding box.
package collision

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"

	"github.com/Faultbox/covergen/internal/cover"
	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/math"
	"github.com/Faultbox/covergen/pkg/scene"
)

// boundsPad widens every bounding rectangle so flat shapes and axis aligned
// rays still overlap in the R-tree.
const boundsPad = 0.5

// shape is one collidable object.
type shape struct {
	handle int
	box    AABB
	tris   []geometry.Triangle // nil for box shapes
	rect   rtreego.Rect
}

func (s *shape) Bounds() rtreego.Rect {
	return s.rect
}

func (s *shape) intersect(r Ray) (float32, math.Vec3, bool) {
	if s.tris == nil {
		return r.IntersectAABB(s.box)
	}
	var (
		best   float32
		normal math.Vec3
		found  bool
	)
	for _, tri := range s.tris {
		t, n, ok := r.IntersectTriangle(tri)
		if ok && (!found || t < best) {
			best, normal, found = t, n, true
		}
	}
	return best, normal, found
}

// World is a read-only collision scene. Cast is safe for concurrent use.
type World struct {
	tree   *rtreego.Rtree
	shapes int
}

// New builds a world from the collision-enabled objects of a level. Each
// object's handle is reported back by Cast.
func New(objects []scene.Object, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}

	var spatials []rtreego.Spatial
	for _, obj := range objects {
		if !obj.CollisionEnabled {
			continue
		}
		s := &shape{handle: obj.Handle}
		if obj.Mesh != nil {
			verts, tris, err := geometry.WorldMesh(obj)
			if err != nil {
				log.Warn("mesh unusable for collision, using bounds",
					zap.String("object", obj.Name),
					zap.Error(err))
			} else {
				s.tris = tris
				s.box = AABB{Min: verts[0], Max: verts[0]}
				for _, v := range verts[1:] {
					s.box = s.box.Grow(v)
				}
			}
		}
		if s.tris == nil {
			s.box = AABB{Min: obj.Bounds.Min(), Max: obj.Bounds.Max()}
		}
		s.rect = toRect(s.box)
		spatials = append(spatials, s)
	}

	log.Debug("collision world built", zap.Int("shapes", len(spatials)))
	return &World{
		tree:   rtreego.NewTree(3, 4, 16, spatials...),
		shapes: len(spatials),
	}
}

// Len returns the number of collidable shapes.
func (w *World) Len() int {
	return w.shapes
}

// Cast returns the nearest surface hit within maxDist along dir.
func (w *World) Cast(origin, dir math.Vec3, maxDist float32) (cover.Hit, bool) {
	if dir.Length() == 0 || maxDist <= 0 {
		return cover.Hit{}, false
	}
	r := Ray{Origin: origin, Direction: dir.Normalize()}

	segment := AABB{Min: origin, Max: origin}.Grow(r.At(maxDist))
	candidates := w.tree.SearchIntersect(toRect(segment))
	slices.SortFunc(candidates, func(a, b rtreego.Spatial) int {
		return a.(*shape).handle - b.(*shape).handle
	})

	var (
		hit   cover.Hit
		best  float32
		found bool
	)
	for _, c := range candidates {
		s := c.(*shape)
		t, n, ok := s.intersect(r)
		if !ok || t > maxDist || (found && t >= best) {
			continue
		}
		best, found = t, true
		hit = cover.Hit{Point: r.At(t), Normal: n, Object: s.handle}
	}
	return hit, found
}

func padded(b AABB) AABB {
	pad := math.Vec3{X: boundsPad, Y: boundsPad, Z: boundsPad}
	return AABB{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

func toRect(b AABB) rtreego.Rect {
	p := padded(b)
	// Only fails on mismatched dimensions.
	rect, _ := rtreego.NewRectFromPoints(
		rtreego.Point{float64(p.Min.X), float64(p.Min.Y), float64(p.Min.Z)},
		rtreego.Point{float64(p.Max.X), float64(p.Max.Y), float64(p.Max.Z)},
	)
	return rect
}
