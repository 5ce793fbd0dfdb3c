package cover

import (
	"github.com/Faultbox/covergen/internal/geometry"
	"github.com/Faultbox/covergen/pkg/scene"
)

// Params are the tunables of one generation run.
type Params struct {
	// Sampling
	Spacing        float32 // probe grid resolution
	MinCoverHeight float32 // lowest probe above the object floor
	MaxCoverHeight float32 // highest probe above the object floor
	GroundLevel    float32 // floors below this are clamped up to it
	ProbeOffset    float32 // clearance between probe and surface
	MissTolerance  int     // misses allowed before a column stops
	EdgeInset      float32 // shrink applied to both ends of a mesh edge
	RayReach       float32 // extra reach of the first ray in a column
	MaxBoxTop      float32 // box sampling is skipped at or above this top
	MinObstacleTop float32 // objects whose top is below this are ignored

	WeldDistance  float32
	VerticalLimit float32

	// Post-processing
	MergeNormalDot  float32 // same-normal gate for geometry merging
	MergePlanar     bool    // run the planar merge after the main merge
	UpDownThreshold float32

	Optimize    OptimizeParams
	Transitions TransitionParams
	Tags        TagNames

	Workers      int
	StrictChecks bool // duplicate node pointers fail the object
}

// OptimizeParams control chain growth and pruning.
type OptimizeParams struct {
	Enabled  bool
	MinNodes int // objects with this many nodes or fewer are left alone

	Spacing           float32
	SearchStep        float32
	SearchLimitFactor float32
	BaseTolerance     float32
	ToleranceStep     float32
	MaxAttempts       int

	PruneDistanceFactor float32
	PruneMinDot         float32
	PruneHeightDelta    float32
	PruneZDelta         float32
}

// TransitionParams control transition volume placement.
type TransitionParams struct {
	Enabled   bool
	Extent    float32 // half depth of the volume and its outward offset
	Thickness float32
}

// TagNames are the object tags the pipeline reacts to.
type TagNames struct {
	NoCover        string // object is skipped
	FromGeometry   string // sample mesh edges instead of the bounding box
	NoOptimization string // keep nodes unchained
}

// DefaultParams returns the stock generation parameters.
func DefaultParams() Params {
	return Params{
		Spacing:         20,
		MinCoverHeight:  50,
		MaxCoverHeight:  180,
		GroundLevel:     130,
		ProbeOffset:     100,
		MissTolerance:   2,
		EdgeInset:       2,
		RayReach:        200,
		MaxBoxTop:       50000,
		MinObstacleTop:  226,
		WeldDistance:    1.0,
		VerticalLimit:   0.8,
		MergeNormalDot:  0.8,
		UpDownThreshold: 0.9,
		Optimize:        DefaultOptimizeParams(20),
		Transitions: TransitionParams{
			Enabled:   true,
			Extent:    50,
			Thickness: 10,
		},
		Tags: TagNames{
			NoCover:        scene.TagNoCover,
			FromGeometry:   scene.TagCoverFromGeometry,
			NoOptimization: scene.TagNoCoverOptimization,
		},
		Workers: 1,
	}
}

// DefaultOptimizeParams returns the stock optimizer parameters for spacing.
func DefaultOptimizeParams(spacing float32) OptimizeParams {
	return OptimizeParams{
		Enabled:             true,
		MinNodes:            5,
		Spacing:             spacing,
		SearchStep:          0.1,
		SearchLimitFactor:   5,
		BaseTolerance:       0.1,
		ToleranceStep:       0.5,
		MaxAttempts:         5000,
		PruneDistanceFactor: 2,
		PruneMinDot:         0.6,
		PruneHeightDelta:    0.001,
		PruneZDelta:         5,
	}
}

func (p Params) extractParams() geometry.ExtractParams {
	return geometry.ExtractParams{
		MaxCoverHeight: p.MaxCoverHeight,
		WeldDistance:   p.WeldDistance,
		VerticalLimit:  p.VerticalLimit,
	}
}

// firstRayDistance is the reach of a ray when its column has no node yet.
func (p Params) firstRayDistance() float32 {
	return p.ProbeOffset + p.Spacing + p.RayReach
}
