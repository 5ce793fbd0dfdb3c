package cover

import (
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/covergen/pkg/math"
)

// TransitionResult summarizes one PlaceTransitions call.
type TransitionResult struct {
	Placed int
	Failed int
	Poses  []TransitionPose // poses of the placed volumes
}

// TransitionPoseAt returns the pose of the volume between node i and its
// successor. Heights must already be relative.
func TransitionPoseAt(obj *Object, i int, p TransitionParams) TransitionPose {
	nodes := obj.Nodes()
	cur, next := nodes[i], nodes[i+1]

	span := cur.Position.DistanceXY(next.Position)
	dir := next.Position.Sub(cur.Position).Normalize()

	center := cur.Position.Add(dir.Scale(span / 2))
	center.Z += cur.Height / 2

	rot := math.RotatorFromDirection(dir)
	turn := float32(-90)
	if obj.Scale.X < 0 || obj.Scale.Y < 0 {
		turn = 90
	}
	facing := rot.AddYaw(turn).Vector().Normalize()
	center = center.Add(facing.Scale(p.Extent))

	return TransitionPose{
		Object:      obj.Name,
		NodeIndex:   cur.Index,
		Position:    center,
		Orientation: rot.Quat(),
		Facing:      facing,
		Extents:     math.Vec3{X: span / 2, Y: p.Extent, Z: p.Thickness},
	}
}

// PlaceTransitions asks m for a volume between every connected node and its
// successor and stores the returned handle on the node. Failures are logged
// and skipped.
func PlaceTransitions(ctx context.Context, obj *Object, m Materializer, p TransitionParams, log *zap.Logger) TransitionResult {
	if log == nil {
		log = zap.NewNop()
	}

	var res TransitionResult
	nodes := obj.Nodes()
	for i := 0; i < len(nodes)-1; i++ {
		if !nodes[i].ConnectedToNext {
			continue
		}
		if ctx.Err() != nil {
			return res
		}

		pose := TransitionPoseAt(obj, i, p)
		handle, err := m.Place(ctx, pose)
		if err != nil {
			res.Failed++
			log.Error("failed to place transition volume",
				zap.String("object", obj.Name),
				zap.Int("node", nodes[i].Index),
				zap.Error(err))
			continue
		}

		nodes[i].Trigger = handle
		res.Placed++
		res.Poses = append(res.Poses, pose)
	}
	return res
}
