package cover

import (
	"context"

	"github.com/Faultbox/covergen/pkg/math"
	"github.com/Faultbox/covergen/pkg/scene"
)

// SceneSource enumerates the objects of a level.
type SceneSource interface {
	Objects(level int) ([]scene.Object, error)
}

// Hit is a ray cast result.
type Hit struct {
	Point  math.Vec3
	Normal math.Vec3
	Object int // handle of the object that was hit
}

// Collider answers ray casts against the scene. It must be safe for
// concurrent use when more than one worker runs.
type Collider interface {
	Cast(origin, dir math.Vec3, maxDist float32) (Hit, bool)
}

// TransitionPose is the placement of one transition volume.
type TransitionPose struct {
	Object      string
	NodeIndex   int
	Position    math.Vec3
	Orientation math.Quat
	Facing      math.Vec3
	Extents     math.Vec3 // half extents
}

// Materializer creates transition volumes and returns their handles.
type Materializer interface {
	Place(ctx context.Context, pose TransitionPose) (string, error)
}

// Remover is implemented by materializers that can drop volumes they placed.
// Volumes of a replaced or failed run are removed through it.
type Remover interface {
	Remove(handles ...string) int
}

// releaseTriggers removes the volumes of objs when mat supports it and clears
// the nodes' handles.
func releaseTriggers(mat Materializer, objs []*Object) int {
	rm, ok := mat.(Remover)
	if !ok {
		return 0
	}
	var handles []string
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		for _, n := range obj.Nodes() {
			if n.Trigger != "" {
				handles = append(handles, n.Trigger)
				n.Trigger = ""
			}
		}
	}
	if len(handles) == 0 {
		return 0
	}
	return rm.Remove(handles...)
}
