package cover

import (
	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/math"
	"github.com/Faultbox/covergen/pkg/scene"
)

// sampler casts probe rays at one scene object and records the hits as
// nodes of the matching cover object.
type sampler struct {
	p   Params
	col Collider
	obs Observer

	src scene.Object
	obj *Object

	bottom float32 // band floor, clamped to ground level
	top    float32
}

func newSampler(src scene.Object, obj *Object, col Collider, obs Observer, p Params) *sampler {
	s := &sampler{
		p:      p,
		col:    col,
		obs:    obs,
		src:    src,
		obj:    obj,
		bottom: src.Bounds.Bottom(),
		top:    src.Bounds.Top(),
	}
	if s.bottom < p.GroundLevel {
		s.bottom = p.GroundLevel
	}
	return s
}

// inBand reports whether z lies inside the usable cover band.
func (s *sampler) inBand(z float32) bool {
	return z >= s.bottom+s.p.MinCoverHeight && z <= s.bottom+s.p.MaxCoverHeight
}

// column sweeps one probe column bottom-up. probeAt maps a sweep height to
// the probe origin; dir is the ray direction. The first accepted hit creates
// the column's node, later hits move its top.
func (s *sampler) column(probeAt func(z float32) math.Vec3, dir math.Vec3) {
	var node *Node
	misses := 0

	for h := s.p.MinCoverHeight; s.bottom+h <= s.top; h += s.p.Spacing {
		probe := probeAt(s.bottom + h)
		if !s.inBand(probe.Z) || misses > s.p.MissTolerance {
			break
		}

		reach := s.p.firstRayDistance()
		if node != nil {
			reach = node.Position.Distance(probe) + s.p.Spacing
		}

		hit, ok := s.col.Cast(probe, dir, reach)
		if !ok || hit.Object != s.src.Handle {
			misses++
			s.obs.Observe(Event{
				Kind:   EventProbeMiss,
				Object: s.obj.Name,
				Node:   -1,
				From:   probe,
				To:     probe.Add(dir.Scale(reach)),
			})
			continue
		}

		if node == nil {
			node = s.obj.AddNode(hit.Point, hit.Normal)
			s.obs.Observe(Event{
				Kind:   EventNodeCreated,
				Object: s.obj.Name,
				Node:   node.Index,
				From:   hit.Point,
				Normal: hit.Normal,
			})
		} else {
			node.Height = hit.Point.Z
			s.obs.Observe(Event{
				Kind:   EventNodeExtended,
				Object: s.obj.Name,
				Node:   node.Index,
				From:   node.Position,
				To:     hit.Point,
			})
		}
		misses = 0
	}
}

// sampleEdges probes outward of every mesh edge.
func (s *sampler) sampleEdges(edges []geometry.Edge) {
	// A mirrored transform flips the winding once per negative axis.
	flip := s.src.Transform.NegativeAxes()%2 == 1

	for _, e := range edges {
		middle := e.Middle()
		outward := e.Normal
		if flip {
			outward = outward.Negate()
		}
		s.obs.Observe(Event{
			Kind:   EventEdge,
			Object: s.obj.Name,
			Node:   -1,
			From:   e.P1,
			To:     e.P2,
			Normal: outward,
		})

		p1 := e.P1.Add(e.Direction.Scale(s.p.EdgeInset))
		p2 := e.P2.Sub(e.Direction.Scale(s.p.EdgeInset))
		length := p1.Distance(p2)
		clearance := outward.Scale(s.p.ProbeOffset)
		dir := outward.Negate()

		at := func(x, y float32) func(z float32) math.Vec3 {
			return func(z float32) math.Vec3 {
				return math.Vec3{X: x, Y: y, Z: z}.Add(clearance)
			}
		}

		if length <= s.p.Spacing*2 {
			s.column(at(middle.X, middle.Y), dir)
			continue
		}

		columns := int(length / s.p.Spacing)
		for k := 0; k <= columns; k++ {
			along := float32(k) * s.p.Spacing
			s.column(at(p1.X+e.Direction.X*along, p1.Y+e.Direction.Y*along), dir)
		}
	}
}

// sampleBox probes the four vertical faces of the bounding box.
func (s *sampler) sampleBox() {
	bmin, bmax := s.src.Bounds.Min(), s.src.Bounds.Max()
	step, off := s.p.Spacing, s.p.ProbeOffset

	// front: -X face, walking +Y
	for t := float32(0); bmin.Y+t <= bmax.Y; t += step {
		x, y := bmin.X-off, bmin.Y+t
		s.column(func(z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }, math.Vec3{X: 1})
	}
	// right: +Y face, walking +X
	for t := float32(0); bmin.X+t <= bmax.X; t += step {
		x, y := bmin.X+t, bmax.Y+off
		s.column(func(z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }, math.Vec3{Y: -1})
	}
	// back: +X face, walking -Y
	for t := float32(0); bmin.Y <= bmax.Y-t; t += step {
		x, y := bmax.X+off, bmax.Y-t
		s.column(func(z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }, math.Vec3{X: -1})
	}
	// left: -Y face, walking -X
	for t := float32(0); bmin.X <= bmax.X-t; t += step {
		x, y := bmax.X-t, bmin.Y-off
		s.column(func(z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }, math.Vec3{Y: 1})
	}
}
