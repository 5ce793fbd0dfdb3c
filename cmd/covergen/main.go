// covergen precomputes tactical cover points for one level of a scene
// snapshot and prints a per-object report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/covergen/internal/collision"
	"github.com/Faultbox/covergen/internal/config"
	"github.com/Faultbox/covergen/internal/cover"
	"github.com/Faultbox/covergen/internal/logger"
	"github.com/Faultbox/covergen/internal/trigger"
	"github.com/Faultbox/covergen/pkg/scene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.SaveConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("generation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	snap, err := scene.Load(cfg.Scene.Path)
	if err != nil {
		return err
	}
	objects, err := snap.Objects(cfg.Scene.Level)
	if err != nil {
		return err
	}

	world := collision.New(objects, logger.Named("collision"))
	volumes := trigger.NewRegistry(logger.Named("trigger"))
	logger.Info("scene loaded",
		zap.String("path", cfg.Scene.Path),
		zap.Int("level", cfg.Scene.Level),
		zap.Int("objects", len(objects)),
		zap.Int("colliders", world.Len()))

	opts := []cover.Option{cover.WithLogger(logger.Named("cover"))}
	if logger.Log.Core().Enabled(zapcore.DebugLevel) {
		opts = append(opts, cover.WithObserver(eventLogger(logger.Named("events"))))
	}

	gen := cover.NewGenerator(snap, world, volumes, cfg.Generation.Params(), opts...)

	start := time.Now()
	set, err := gen.Regenerate(ctx, cfg.Scene.Level)
	if err != nil {
		return err
	}

	printReport(set, volumes, cfg.Generation.Spacing, time.Since(start))
	return nil
}

// eventLogger traces every pipeline event at debug level.
func eventLogger(log *zap.Logger) cover.Observer {
	return cover.ObserverFunc(func(e cover.Event) {
		log.Debug(e.Kind.String(),
			zap.String("object", e.Object),
			zap.Int("node", e.Node),
			zap.Any("from", e.From),
			zap.Any("to", e.To),
			zap.Any("normal", e.Normal))
	})
}

func printReport(set *cover.ObjectSet, volumes *trigger.Registry, spacing float32, elapsed time.Duration) {
	fmt.Printf("Run:      %s\n", set.RunID)
	fmt.Printf("Level:    %d\n", set.Level)
	fmt.Printf("Objects:  %d static, %d dynamic\n", len(set.Static), len(set.Dynamic))
	fmt.Printf("Nodes:    %d\n", set.NodeCount())
	fmt.Printf("Volumes:  %d\n", volumes.Len())
	fmt.Printf("Elapsed:  %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	fmt.Printf("%-4s %-32s %-8s %6s %6s %6s %6s\n", "ID", "Object", "Kind", "Nodes", "Links", "Roots", "Ground")
	for _, obj := range set.All() {
		kind := "static"
		if obj.Dynamic {
			kind = "dynamic"
		}
		fmt.Printf("%-4d %-32s %-8s %6d %6d %6d %6d\n",
			obj.ID, obj.Name, kind, obj.Len(), obj.ConnectedCount(), obj.RootCount(), len(obj.LowestLayer(spacing)))
	}
}
