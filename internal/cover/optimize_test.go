package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/covergen/pkg/math"
)

// fastOptimize keeps the stock thresholds but steps the search radius by
// whole units so tests converge quickly.
func fastOptimize() OptimizeParams {
	p := DefaultOptimizeParams(20)
	p.SearchStep = 1
	p.MaxAttempts = 300
	return p
}

func noPrune(p OptimizeParams) OptimizeParams {
	p.PruneMinDot = 2
	return p
}

func xs(obj *Object) []float32 {
	out := make([]float32, 0, obj.Len())
	for _, n := range obj.Nodes() {
		out = append(out, n.Position.X)
	}
	return out
}

func TestOptimizeOrdersChain(t *testing.T) {
	obj := line(0, 60, 20, 100, 40, 80)

	res, err := Optimize(obj, noPrune(fastOptimize()), nil)

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 20, 40, 60, 80, 100}, xs(obj))
	assert.True(t, indexesContiguous(obj))
	assert.Equal(t, 1, res.Roots)
	assert.Equal(t, 6, res.Accepted)
	assert.False(t, res.Aborted)
	assert.Equal(t, obj.Len()-obj.RootCount(), obj.ConnectedCount())
	assert.True(t, obj.Nodes()[0].IsChainRoot)
	assert.False(t, obj.Nodes()[5].ConnectedToNext)
}

func TestOptimizePrunesStraightRun(t *testing.T) {
	obj := line(0, 20, 40, 60, 80, 100, 120)

	res, err := Optimize(obj, fastOptimize(), nil)

	require.NoError(t, err)
	assert.Equal(t, 5, res.Pruned)
	assert.Equal(t, []float32{0, 120}, xs(obj))
	assert.Equal(t, obj.Len()-obj.RootCount(), obj.ConnectedCount())
}

func TestOptimizeKeepsHeightSteps(t *testing.T) {
	obj := line(0, 20, 40, 60, 80)
	obj.Nodes()[2].Height = 380

	_, err := Optimize(obj, fastOptimize(), nil)

	require.NoError(t, err)
	// 20 and 60 border the step, 40 is the step.
	assert.Equal(t, []float32{0, 20, 40, 60, 80}, xs(obj))
}

func TestOptimizeKeepsCorners(t *testing.T) {
	obj := NewObject(0, "Corner")
	for _, y := range []float32{0, 20, 40} {
		obj.AddNode(math.Vec3{X: 0, Y: y, Z: 300}, math.Vec3{X: -1}).Height = 400
	}
	for _, x := range []float32{20, 40, 60} {
		obj.AddNode(math.Vec3{X: x, Y: 60, Z: 300}, math.Vec3{Y: 1}).Height = 400
	}

	res, err := Optimize(obj, fastOptimize(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Roots)
	// Middle of each straight run goes, both sides of the corner stay.
	assert.Equal(t, 4, obj.Len())
	assert.Equal(t, math.Vec3{X: 0, Y: 40, Z: 300}, obj.Nodes()[1].Position)
	assert.Equal(t, math.Vec3{X: 20, Y: 60, Z: 300}, obj.Nodes()[2].Position)
}

func TestOptimizeRecoversFromHole(t *testing.T) {
	obj := line(0, 20, 40, 1000, 1020, 1040)

	res, err := Optimize(obj, noPrune(fastOptimize()), nil)

	require.NoError(t, err)
	assert.False(t, res.Aborted)
	assert.Equal(t, 2, res.Roots)
	assert.Equal(t, 6, res.Accepted)
	assert.True(t, obj.Nodes()[3].IsChainRoot)
	assert.False(t, obj.Nodes()[2].ConnectedToNext, "segment tail")
	assert.Equal(t, obj.Len()-obj.RootCount(), obj.ConnectedCount())
}

func TestOptimizePruningSafety(t *testing.T) {
	obj := line(0, 20, 40, 1000, 1020, 1040, 1060)

	_, err := Optimize(obj, fastOptimize(), nil)

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 40, 1000, 1060}, xs(obj))
	assert.True(t, obj.Nodes()[0].IsChainRoot)
	assert.True(t, obj.Nodes()[2].IsChainRoot)
	assert.Equal(t, obj.Len()-obj.RootCount(), obj.ConnectedCount())
}

func TestOptimizeAbortsOnIsolatedNode(t *testing.T) {
	obj := line(0, 1000, 20, 40)
	nodes := append([]*Node(nil), obj.Nodes()...)

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Optimize(obj, fastOptimize(), zap.New(core))

	require.ErrorIs(t, err, ErrChainAborted)
	assert.True(t, res.Aborted)
	assert.Equal(t, 3, res.Accepted)
	assert.Equal(t, 0, res.Pruned, "partial chain is left unpruned")
	assert.Equal(t, []*Node{nodes[0], nodes[2], nodes[3]}, obj.Nodes())
	assert.True(t, indexesContiguous(obj))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Line", entry.ContextMap()["object"])
	assert.Equal(t, int64(1), entry.ContextMap()["dropped"])
}

func TestOptimizeTwoIsolatedNodesTerminates(t *testing.T) {
	obj := line(0, 20, 40, 1000, 5000)

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Optimize(obj, fastOptimize(), zap.New(core))

	require.ErrorIs(t, err, ErrChainAborted)
	assert.Equal(t, 3, res.Accepted)
	assert.Equal(t, 3, obj.Len())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["dropped"])
}

func TestNormalWithin(t *testing.T) {
	tests := []struct {
		name  string
		delta math.Vec3
		tol   float32
		want  bool
	}{
		{"same", math.Vec3{}, 0.1, true},
		{"z only", math.Vec3{Z: 1.6}, 0.1, true},
		{"x over", math.Vec3{X: 0.2}, 0.1, false},
		{"y at bound", math.Vec3{Y: 0.1}, 0.1, false},
		{"relaxed", math.Vec3{X: 1, Y: -1}, 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalWithin(tt.delta, tt.tol))
		})
	}
}
