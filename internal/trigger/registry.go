// Package trigger keeps an in-memory registry of placed transition volumes.
package trigger

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/covergen/internal/cover"
	"github.com/Faultbox/covergen/pkg/math"
)

// ErrDegenerateVolume is returned for volumes with a non-positive or
// non-finite extent or position.
var ErrDegenerateVolume = errors.New("degenerate trigger volume")

// Volume is a placed transition volume.
type Volume struct {
	Handle string
	cover.TransitionPose
}

// Registry is a Materializer that stores volumes in memory. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	volumes map[string]Volume
	log     *zap.Logger
}

var (
	_ cover.Materializer = (*Registry)(nil)
	_ cover.Remover      = (*Registry)(nil)
)

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		volumes: make(map[string]Volume),
		log:     log,
	}
}

// Place validates pose and registers it under a fresh handle.
func (r *Registry) Place(ctx context.Context, pose cover.TransitionPose) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validate(pose); err != nil {
		return "", err
	}

	handle := uuid.NewString()
	r.mu.Lock()
	r.volumes[handle] = Volume{Handle: handle, TransitionPose: pose}
	r.mu.Unlock()

	r.log.Debug("trigger volume placed",
		zap.String("handle", handle),
		zap.String("object", pose.Object),
		zap.Int("node", pose.NodeIndex))
	return handle, nil
}

// Get returns the volume with the given handle.
func (r *Registry) Get(handle string) (Volume, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.volumes[handle]
	return v, ok
}

// Len returns the number of registered volumes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.volumes)
}

// Volumes returns all volumes ordered by object name and node index.
func (r *Registry) Volumes() []Volume {
	r.mu.RLock()
	out := make([]Volume, 0, len(r.volumes))
	for _, v := range r.volumes {
		out = append(out, v)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Object != out[j].Object {
			return out[i].Object < out[j].Object
		}
		return out[i].NodeIndex < out[j].NodeIndex
	})
	return out
}

// Remove drops the volumes with the given handles and returns how many were
// registered.
func (r *Registry) Remove(handles ...string) int {
	r.mu.Lock()
	removed := 0
	for _, h := range handles {
		if _, ok := r.volumes[h]; ok {
			delete(r.volumes, h)
			removed++
		}
	}
	r.mu.Unlock()

	r.log.Debug("trigger volumes removed", zap.Int("removed", removed), zap.Int("requested", len(handles)))
	return removed
}

func validate(pose cover.TransitionPose) error {
	e := pose.Extents
	if !finite(e) || e.X <= 0 || e.Y <= 0 || e.Z <= 0 {
		return fmt.Errorf("%w: extents %v", ErrDegenerateVolume, e)
	}
	if !finite(pose.Position) {
		return fmt.Errorf("%w: position %v", ErrDegenerateVolume, pose.Position)
	}
	return nil
}

func finite(v math.Vec3) bool {
	for _, c := range v.Array() {
		f := float64(c)
		if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
			return false
		}
	}
	return true
}
