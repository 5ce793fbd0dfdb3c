package cover

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/scene"
)

// ErrInvalidParams is returned when Params cannot drive a run.
var ErrInvalidParams = errors.New("invalid generation params")

type options struct {
	obs Observer
	log *zap.Logger
}

// Option configures Generate.
type Option func(*options)

// WithObserver routes pipeline events to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.obs = obs
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Generate builds the cover set of one level. Objects are processed
// independently on up to p.Workers goroutines; the result does not depend on
// the worker count. mat may be nil, in which case no transitions are placed.
func Generate(ctx context.Context, src SceneSource, level int, col Collider, mat Materializer, p Params, opts ...Option) (*ObjectSet, error) {
	o := options{obs: nopObserver{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if src == nil {
		return nil, ErrNoSource
	}
	if col == nil {
		return nil, ErrNoCollider
	}
	if p.Spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %v", ErrInvalidParams, p.Spacing)
	}

	objects, err := src.Objects(level)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate level %d: %w", level, err)
	}

	eligible := lo.Filter(objects, func(so scene.Object, _ int) bool {
		return isEligible(so, p)
	})

	set := &ObjectSet{RunID: uuid.NewString(), Level: level}
	log := o.log.With(zap.String("run", set.RunID))
	log.Info("generating cover",
		zap.Int("level", level),
		zap.Int("objects", len(objects)),
		zap.Int("eligible", len(eligible)))

	results := make([]*Object, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for id, so := range eligible {
		g.Go(func() error {
			obj := newCoverObject(id, so)
			results[id] = obj
			return process(gctx, so, obj, col, mat, p, o.obs, log)
		})
	}
	if err := g.Wait(); err != nil {
		if n := releaseTriggers(mat, results); n > 0 {
			log.Debug("removed volumes of failed run", zap.Int("volumes", n))
		}
		return nil, err
	}

	for _, obj := range results {
		if obj.Dynamic {
			set.Dynamic = append(set.Dynamic, obj)
		} else {
			set.Static = append(set.Static, obj)
		}
	}

	log.Info("cover generated",
		zap.Int("static", len(set.Static)),
		zap.Int("dynamic", len(set.Dynamic)),
		zap.Int("nodes", set.NodeCount()))
	return set, nil
}

func isEligible(so scene.Object, p Params) bool {
	return !so.HasTag(p.Tags.NoCover) && so.CollisionEnabled && so.Bounds.Top() >= p.MinObstacleTop
}

func newCoverObject(id int, so scene.Object) *Object {
	obj := NewObject(id, so.Name)
	obj.Location = so.Bounds.Center
	obj.Extent = so.Bounds.Size
	obj.Scale = so.Transform.Scale
	obj.Dynamic = so.Movable
	return obj
}

// process runs the full pipeline for one object.
func process(ctx context.Context, so scene.Object, obj *Object, col Collider, mat Materializer, p Params, obs Observer, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log = log.With(zap.String("object", obj.Name), zap.Int("id", obj.ID))

	s := newSampler(so, obj, col, obs, p)
	geometryMode := false
	if so.HasTag(p.Tags.FromGeometry) {
		ex, err := geometry.Extract(so, s.bottom, p.extractParams())
		if err != nil {
			log.Warn("mesh unusable, sampling bounding box instead", zap.Error(err))
		} else {
			geometryMode = true
			s.sampleEdges(ex.Edges)
			log.Debug("sampled mesh edges",
				zap.Int("edges", len(ex.Edges)),
				zap.Int("nodes", obj.Len()))
		}
	}
	if !geometryMode && s.top < p.MaxBoxTop {
		s.sampleBox()
		log.Debug("sampled bounding box", zap.Int("nodes", obj.Len()))
	}

	merged, err := mergeNodes(obj, p, geometryMode)
	if err != nil {
		return err
	}
	observeNodes(obs, EventNodeMerged, obj.Name, merged)

	observeNodes(obs, EventNodeFiltered, obj.Name, removeUpDown(obj, p.UpDownThreshold))

	if p.Optimize.Enabled && obj.Len() > p.Optimize.MinNodes && !so.HasTag(p.Tags.NoOptimization) {
		op := p.Optimize
		op.Spacing = p.Spacing
		res, err := Optimize(obj, op, log)
		if err != nil && !errors.Is(err, ErrChainAborted) {
			return err
		}
		log.Debug("optimized chain",
			zap.Int("roots", res.Roots),
			zap.Int("accepted", res.Accepted),
			zap.Int("pruned", res.Pruned),
			zap.Int("attempts", res.Attempts),
			zap.Bool("aborted", res.Aborted))
		observeNodes(obs, EventNodePruned, obj.Name, res.pruned)
		for _, n := range obj.Nodes() {
			if n.IsChainRoot {
				obs.Observe(Event{Kind: EventChainRoot, Object: obj.Name, Node: n.Index, From: n.Position, Normal: n.Normal})
			}
		}
	}

	obj.FinalizeHeights()

	if p.Transitions.Enabled && mat != nil {
		res := PlaceTransitions(ctx, obj, mat, p.Transitions, log)
		for _, pose := range res.Poses {
			obs.Observe(Event{
				Kind:   EventTransition,
				Object: obj.Name,
				Node:   pose.NodeIndex,
				From:   obj.Nodes()[pose.NodeIndex].Position,
				To:     pose.Position,
				Normal: pose.Facing,
			})
		}
		if res.Failed > 0 {
			log.Warn("some transition volumes were not placed",
				zap.Int("placed", res.Placed),
				zap.Int("failed", res.Failed))
		}
	}

	return ctx.Err()
}

func observeNodes(obs Observer, kind EventKind, object string, nodes []*Node) {
	for _, n := range nodes {
		obs.Observe(Event{Kind: kind, Object: object, Node: -1, From: n.Position, Normal: n.Normal})
	}
}

// Generator keeps the most recent cover set of a scene and swaps it
// wholesale on every regeneration. When the materializer is a Remover, the
// volumes of the replaced set are removed after the swap.
type Generator struct {
	src    SceneSource
	col    Collider
	mat    Materializer
	params Params
	opts   []Option

	current atomic.Pointer[ObjectSet]
}

// NewGenerator creates a generator with no current set.
func NewGenerator(src SceneSource, col Collider, mat Materializer, p Params, opts ...Option) *Generator {
	return &Generator{src: src, col: col, mat: mat, params: p, opts: opts}
}

// Current returns the last generated set, or nil.
func (g *Generator) Current() *ObjectSet {
	return g.current.Load()
}

// Regenerate builds a fresh set for level and makes it current. On error the
// previous set and its volumes stay current.
func (g *Generator) Regenerate(ctx context.Context, level int) (*ObjectSet, error) {
	set, err := Generate(ctx, g.src, level, g.col, g.mat, g.params, g.opts...)
	if err != nil {
		return nil, err
	}
	if old := g.current.Swap(set); old != nil {
		releaseTriggers(g.mat, old.All())
	}
	return set, nil
}
