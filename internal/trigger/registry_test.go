package trigger

import (
	"context"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/covergen/internal/cover"
	"github.com/Faultbox/covergen/pkg/math"
)

func pose(object string, node int) cover.TransitionPose {
	return cover.TransitionPose{
		Object:      object,
		NodeIndex:   node,
		Position:    math.Vec3{X: 50, Y: -50, Z: 125},
		Orientation: math.QuatIdentity(),
		Facing:      math.Vec3{Y: -1},
		Extents:     math.Vec3{X: 50, Y: 50, Z: 10},
	}
}

func TestRegistryPlace(t *testing.T) {
	r := NewRegistry(nil)

	h1, err := r.Place(context.Background(), pose("Crate", 1))
	require.NoError(t, err)
	h2, err := r.Place(context.Background(), pose("Crate", 0))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, r.Len())

	v, ok := r.Get(h1)
	require.True(t, ok)
	assert.Equal(t, 1, v.NodeIndex)

	vols := r.Volumes()
	require.Len(t, vols, 2)
	assert.Equal(t, 0, vols[0].NodeIndex)
	assert.Equal(t, h2, vols[0].Handle)

}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(nil)
	h1, err := r.Place(context.Background(), pose("Crate", 0))
	require.NoError(t, err)
	h2, err := r.Place(context.Background(), pose("Crate", 1))
	require.NoError(t, err)

	assert.Equal(t, 1, r.Remove(h1, "unknown"))
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get(h1)
	assert.False(t, ok)

	assert.Equal(t, 0, r.Remove(h1), "second removal finds nothing")
	assert.Equal(t, 1, r.Remove(h2))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRejectsDegenerate(t *testing.T) {
	nan := float32(gomath.NaN())
	tests := []struct {
		name   string
		mutate func(p *cover.TransitionPose)
	}{
		{"zero length", func(p *cover.TransitionPose) { p.Extents.X = 0 }},
		{"negative thickness", func(p *cover.TransitionPose) { p.Extents.Z = -1 }},
		{"nan extent", func(p *cover.TransitionPose) { p.Extents.Y = nan }},
		{"nan position", func(p *cover.TransitionPose) { p.Position.X = nan }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			p := pose("Crate", 0)
			tt.mutate(&p)
			_, err := r.Place(context.Background(), p)
			assert.ErrorIs(t, err, ErrDegenerateVolume)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRegistryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegistry(nil).Place(ctx, pose("Crate", 0))
	assert.ErrorIs(t, err, context.Canceled)
}
