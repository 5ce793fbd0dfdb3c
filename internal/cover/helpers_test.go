package cover

import (
	"context"
	"errors"
	"sync"

	"github.com/Faultbox/covergen/pkg/math"
	"github.com/Faultbox/covergen/pkg/scene"
)

type castCall struct {
	origin  math.Vec3
	dir     math.Vec3
	maxDist float32
}

// scriptedCollider answers every cast with script and records the call.
type scriptedCollider struct {
	mu     sync.Mutex
	calls  []castCall
	script func(c castCall) (Hit, bool)
}

func (s *scriptedCollider) Cast(origin, dir math.Vec3, maxDist float32) (Hit, bool) {
	c := castCall{origin: origin, dir: dir, maxDist: maxDist}
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	if s.script == nil {
		return Hit{}, false
	}
	return s.script(c)
}

// planeHit returns a script that hits the x=planeX plane for rays along +X,
// as long as the probe is at or below maxZ.
func planeHit(handle int, planeX, maxZ float32) func(c castCall) (Hit, bool) {
	return func(c castCall) (Hit, bool) {
		if c.origin.Z > maxZ {
			return Hit{}, false
		}
		return Hit{
			Point:  math.Vec3{X: planeX, Y: c.origin.Y, Z: c.origin.Z},
			Normal: math.Vec3{X: -1},
			Object: handle,
		}, true
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingObserver) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

var errPlaceFailed = errors.New("spawn failed")

// recordingMaterializer hands out sequential handles and fails for the node
// indexes listed in failAt.
type recordingMaterializer struct {
	mu     sync.Mutex
	poses  []TransitionPose
	failAt map[int]bool
}

func (m *recordingMaterializer) Place(_ context.Context, pose TransitionPose) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAt[pose.NodeIndex] {
		return "", errPlaceFailed
	}
	m.poses = append(m.poses, pose)
	return pose.Object + "#" + string(rune('a'+len(m.poses)-1)), nil
}

func sceneBox(handle int, center, size math.Vec3) scene.Object {
	return scene.Object{
		Handle:           handle,
		Name:             "Box",
		CollisionEnabled: true,
		Bounds:           scene.Bounds{Center: center, Size: size},
		Transform:        scene.IdentityTransform(),
	}
}

// line builds an object with nodes at the given X positions, all facing -Y
// with the same top.
func line(xs ...float32) *Object {
	obj := NewObject(0, "Line")
	for _, x := range xs {
		n := obj.AddNode(math.Vec3{X: x, Z: 300}, math.Vec3{Y: -1})
		n.Height = 400
	}
	return obj
}

func indexesContiguous(obj *Object) bool {
	for i, n := range obj.Nodes() {
		if n.Index != i {
			return false
		}
	}
	return true
}
