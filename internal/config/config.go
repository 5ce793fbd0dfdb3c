// Package config handles covergen configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/Faultbox/covergen/internal/cover"
	"github.com/Faultbox/covergen/pkg/scene"
)

// ErrInvalidConfig is returned when a loaded config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all covergen settings.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SceneConfig selects the scene snapshot and level to process.
type SceneConfig struct {
	Path  string `yaml:"path" validate:"required"`
	Level int    `yaml:"level" validate:"gte=0"`
}

// GenerationConfig holds the sampling tunables.
type GenerationConfig struct {
	Spacing        float32 `yaml:"spacing" validate:"gt=0"`
	MinCoverHeight float32 `yaml:"min_cover_height" validate:"gt=0"`
	MaxCoverHeight float32 `yaml:"max_cover_height" validate:"gtfield=MinCoverHeight"`
	GroundLevel    float32 `yaml:"ground_level"`
	ProbeOffset    float32 `yaml:"probe_offset" validate:"gt=0"`
	MissTolerance  int     `yaml:"miss_tolerance" validate:"gte=0"`
	EdgeInset      float32 `yaml:"edge_inset" validate:"gte=0"`
	RayReach       float32 `yaml:"ray_reach" validate:"gte=0"`
	MaxBoxTop      float32 `yaml:"max_box_top" validate:"gt=0"`
	MinObstacleTop float32 `yaml:"min_obstacle_top"`
	WeldDistance   float32 `yaml:"weld_distance" validate:"gt=0"`
	VerticalLimit  float32 `yaml:"vertical_limit" validate:"gt=0,lte=1"`
	Workers        int     `yaml:"workers" validate:"gte=1"`
	StrictChecks   bool    `yaml:"strict_checks"`

	Merge       MergeConfig      `yaml:"merge"`
	Optimize    OptimizeConfig   `yaml:"optimize"`
	Transitions TransitionConfig `yaml:"transitions"`
	Tags        TagConfig        `yaml:"tags"`
}

// MergeConfig holds merge and up/down filter settings.
type MergeConfig struct {
	NormalDot       float32 `yaml:"normal_dot" validate:"gte=-1,lte=1"`
	Planar          bool    `yaml:"planar"`
	UpDownThreshold float32 `yaml:"up_down_threshold" validate:"gt=0,lte=1"`
}

// OptimizeConfig holds chain optimizer settings.
type OptimizeConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MinNodes            int     `yaml:"min_nodes" validate:"gte=0"`
	SearchStep          float32 `yaml:"search_step" validate:"gt=0"`
	SearchLimitFactor   float32 `yaml:"search_limit_factor" validate:"gt=0"`
	BaseTolerance       float32 `yaml:"base_tolerance" validate:"gt=0"`
	ToleranceStep       float32 `yaml:"tolerance_step" validate:"gt=0"`
	MaxAttempts         int     `yaml:"max_attempts" validate:"gt=0"`
	PruneDistanceFactor float32 `yaml:"prune_distance_factor" validate:"gte=0"`
	PruneMinDot         float32 `yaml:"prune_min_dot" validate:"gte=-1,lte=1"`
	PruneHeightDelta    float32 `yaml:"prune_height_delta" validate:"gte=0"`
	PruneZDelta         float32 `yaml:"prune_z_delta" validate:"gte=0"`
}

// TransitionConfig holds transition volume settings.
type TransitionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Extent    float32 `yaml:"extent" validate:"gt=0"`
	Thickness float32 `yaml:"thickness" validate:"gt=0"`
}

// TagConfig names the object tags the generator reacts to.
type TagConfig struct {
	NoCover        string `yaml:"no_cover" validate:"required"`
	FromGeometry   string `yaml:"from_geometry" validate:"required"`
	NoOptimization string `yaml:"no_optimization" validate:"required"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock generation parameters.
func Default() *Config {
	p := cover.DefaultParams()
	return &Config{
		Generation: GenerationConfig{
			Spacing:        p.Spacing,
			MinCoverHeight: p.MinCoverHeight,
			MaxCoverHeight: p.MaxCoverHeight,
			GroundLevel:    p.GroundLevel,
			ProbeOffset:    p.ProbeOffset,
			MissTolerance:  p.MissTolerance,
			EdgeInset:      p.EdgeInset,
			RayReach:       p.RayReach,
			MaxBoxTop:      p.MaxBoxTop,
			MinObstacleTop: p.MinObstacleTop,
			WeldDistance:   p.WeldDistance,
			VerticalLimit:  p.VerticalLimit,
			Workers:        p.Workers,
			Merge: MergeConfig{
				NormalDot:       p.MergeNormalDot,
				Planar:          p.MergePlanar,
				UpDownThreshold: p.UpDownThreshold,
			},
			Optimize: OptimizeConfig{
				Enabled:             p.Optimize.Enabled,
				MinNodes:            p.Optimize.MinNodes,
				SearchStep:          p.Optimize.SearchStep,
				SearchLimitFactor:   p.Optimize.SearchLimitFactor,
				BaseTolerance:       p.Optimize.BaseTolerance,
				ToleranceStep:       p.Optimize.ToleranceStep,
				MaxAttempts:         p.Optimize.MaxAttempts,
				PruneDistanceFactor: p.Optimize.PruneDistanceFactor,
				PruneMinDot:         p.Optimize.PruneMinDot,
				PruneHeightDelta:    p.Optimize.PruneHeightDelta,
				PruneZDelta:         p.Optimize.PruneZDelta,
			},
			Transitions: TransitionConfig{
				Enabled:   p.Transitions.Enabled,
				Extent:    p.Transitions.Extent,
				Thickness: p.Transitions.Thickness,
			},
			Tags: TagConfig{
				NoCover:        scene.TagNoCover,
				FromGeometry:   scene.TagCoverFromGeometry,
				NoOptimization: scene.TagNoCoverOptimization,
			},
		},
		Scene: SceneConfig{
			Path: "scene.json",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var errs error
	for _, fe := range fieldErrs {
		errs = multierr.Append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
}

// Params converts the generation section to pipeline parameters.
func (g GenerationConfig) Params() cover.Params {
	return cover.Params{
		Spacing:         g.Spacing,
		MinCoverHeight:  g.MinCoverHeight,
		MaxCoverHeight:  g.MaxCoverHeight,
		GroundLevel:     g.GroundLevel,
		ProbeOffset:     g.ProbeOffset,
		MissTolerance:   g.MissTolerance,
		EdgeInset:       g.EdgeInset,
		RayReach:        g.RayReach,
		MaxBoxTop:       g.MaxBoxTop,
		MinObstacleTop:  g.MinObstacleTop,
		WeldDistance:    g.WeldDistance,
		VerticalLimit:   g.VerticalLimit,
		MergeNormalDot:  g.Merge.NormalDot,
		MergePlanar:     g.Merge.Planar,
		UpDownThreshold: g.Merge.UpDownThreshold,
		Optimize: cover.OptimizeParams{
			Enabled:             g.Optimize.Enabled,
			MinNodes:            g.Optimize.MinNodes,
			Spacing:             g.Spacing,
			SearchStep:          g.Optimize.SearchStep,
			SearchLimitFactor:   g.Optimize.SearchLimitFactor,
			BaseTolerance:       g.Optimize.BaseTolerance,
			ToleranceStep:       g.Optimize.ToleranceStep,
			MaxAttempts:         g.Optimize.MaxAttempts,
			PruneDistanceFactor: g.Optimize.PruneDistanceFactor,
			PruneMinDot:         g.Optimize.PruneMinDot,
			PruneHeightDelta:    g.Optimize.PruneHeightDelta,
			PruneZDelta:         g.Optimize.PruneZDelta,
		},
		Transitions: cover.TransitionParams{
			Enabled:   g.Transitions.Enabled,
			Extent:    g.Transitions.Extent,
			Thickness: g.Transitions.Thickness,
		},
		Tags: cover.TagNames{
			NoCover:        g.Tags.NoCover,
			FromGeometry:   g.Tags.FromGeometry,
			NoOptimization: g.Tags.NoOptimization,
		},
		Workers:      g.Workers,
		StrictChecks: g.StrictChecks,
	}
}
