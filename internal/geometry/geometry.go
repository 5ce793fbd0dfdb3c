// Package geometry turns an object's render mesh into the world-space edges
// the surface sampler walks along.
package geometry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/Faultbox/covergen/pkg/math"
	"github.com/Faultbox/covergen/pkg/scene"
)

// Extraction errors. Callers fall back to box sampling on either.
var (
	ErrNoMesh        = scene.ErrNoMesh
	ErrMalformedMesh = scene.ErrMalformedMesh
)

// degenerateArea is the cross product length below which a triangle has no
// usable normal.
const degenerateArea = 1e-5

// ExtractParams controls vertex filtering and edge discovery.
type ExtractParams struct {
	MaxCoverHeight float32 // vertices at or above bottom+MaxCoverHeight are dropped
	WeldDistance   float32 // vertices closer than this are the same vertex
	VerticalLimit  float32 // edges whose face normal or direction Z reaches this are dropped
}

// DefaultExtractParams returns the stock extraction parameters.
func DefaultExtractParams() ExtractParams {
	return ExtractParams{
		MaxCoverHeight: 180,
		WeldDistance:   1.0,
		VerticalLimit:  0.8,
	}
}

// Triangle is a world-space triangle.
type Triangle struct {
	A, B, C math.Vec3
}

// Normal returns the unit face normal by the right-hand rule, or false when
// the triangle is degenerate.
func (t Triangle) Normal() (math.Vec3, bool) {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if n.Length() < degenerateArea {
		return math.Vec3{}, false
	}
	return n.Normalize(), true
}

// Edge is a mesh edge between two retained vertices.
type Edge struct {
	P1, P2    math.Vec3
	Normal    math.Vec3 // outward face normal of the owning triangle
	Direction math.Vec3 // unit P2-P1
}

// Length returns the edge length.
func (e Edge) Length() float32 {
	return e.P1.Distance(e.P2)
}

// Middle returns the edge midpoint.
func (e Edge) Middle() math.Vec3 {
	return e.P1.Add(e.Direction.Scale(e.Length() / 2))
}

// Extraction is the result of Extract.
type Extraction struct {
	Vertices  []math.Vec3 // retained vertices, ascending Z, one per column
	Triangles []Triangle  // every world-space triangle of the mesh
	Edges     []Edge
}

// Extract transforms obj's mesh into world space and discovers its low
// edges. bottom is the Z the cover band is measured from.
func Extract(obj scene.Object, bottom float32, p ExtractParams) (*Extraction, error) {
	worldVerts, tris, err := WorldMesh(obj)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", obj.Name, err)
	}

	verts := weld(worldVerts, p.WeldDistance)
	verts = lo.Filter(verts, func(v math.Vec3, _ int) bool {
		return v.Z < bottom+p.MaxCoverHeight
	})
	slices.SortStableFunc(verts, func(a, b math.Vec3) int {
		return cmp.Compare(a.Z, b.Z)
	})
	// Keep the lowest vertex of every integer X/Y column.
	verts = lo.UniqBy(verts, func(v math.Vec3) [2]int {
		return [2]int{int(v.X), int(v.Y)}
	})

	return &Extraction{
		Vertices:  verts,
		Triangles: tris,
		Edges:     Edges(verts, tris, p),
	}, nil
}

// WorldMesh returns obj's vertices and triangles transformed to world space.
func WorldMesh(obj scene.Object) ([]math.Vec3, []Triangle, error) {
	if err := obj.Mesh.Validate(); err != nil {
		return nil, nil, err
	}

	mesh := obj.Mesh
	world := obj.Transform.Matrix()

	verts := make([]math.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = world.TransformPoint(v)
	}

	tris := make([]Triangle, mesh.TriangleCount())
	for i := range tris {
		a, b, c := mesh.Triangle(i)
		tris[i] = Triangle{A: verts[a], B: verts[b], C: verts[c]}
	}
	return verts, tris, nil
}

// weld collapses vertices closer than dist, keeping the first seen.
func weld(verts []math.Vec3, dist float32) []math.Vec3 {
	out := make([]math.Vec3, 0, len(verts))
	for _, v := range verts {
		if !slices.ContainsFunc(out, func(u math.Vec3) bool { return u.Distance(v) < dist }) {
			out = append(out, v)
		}
	}
	return out
}

// Edges links each retained vertex to the next retained vertex that shares a
// triangle with it. Triangle corners are tried in C, B, A order. Near
// vertical faces and edges are dropped; duplicates are kept.
func Edges(vertices []math.Vec3, triangles []Triangle, p ExtractParams) []Edge {
	same := func(a, b math.Vec3) bool {
		return a.Distance(b) < p.WeldDistance
	}

	var edges []Edge
	for i := 0; i < len(vertices)-1; i++ {
		vi := vertices[i]
		for _, tri := range triangles {
			normal, ok := tri.Normal()
			if !ok {
				continue
			}

			var others [2]math.Vec3
			switch {
			case same(vi, tri.C):
				others = [2]math.Vec3{tri.B, tri.A}
			case same(vi, tri.B):
				others = [2]math.Vec3{tri.C, tri.A}
			case same(vi, tri.A):
				others = [2]math.Vec3{tri.C, tri.B}
			default:
				continue
			}

			for j := i + 1; j < len(vertices); j++ {
				vj := vertices[j]
				if !same(vj, others[0]) && !same(vj, others[1]) {
					continue
				}
				dir := vj.Sub(vi).Normalize()
				if absf(normal.Z) < p.VerticalLimit && absf(dir.Z) < p.VerticalLimit {
					edges = append(edges, Edge{P1: vi, P2: vj, Normal: normal, Direction: dir})
				}
				break
			}
		}
	}
	return edges
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
