package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/covergen/pkg/math"
)

const crateScene = `{
  "levels": [{
    "name": "L0",
    "objects": [
      {
        "name": "Crate_1",
        "tags": ["CoverFromGeometry"],
        "collision": true,
        "bounds": {"center": [0, 0, 300], "size": [200, 200, 50]},
        "transform": {"location": [0, 0, 275], "rotation": [0, 90, 0], "scale": [-1, 1, 1]},
        "mesh": {
          "vertices": [[0, 0, 0], [1, 0, 0], [0, 1, 0]],
          "indices16": [0, 1, 2]
        }
      },
      {
        "name": "Door",
        "movable": true,
        "bounds": {"center": [500, 0, 200], "size": [10, 100, 200]}
      }
    ]
  }]
}`

func TestParse(t *testing.T) {
	snap, err := Parse([]byte(crateScene))
	require.NoError(t, err)
	require.Len(t, snap.Levels, 1)

	objs, err := snap.Objects(0)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	crate := objs[0]
	assert.Equal(t, 0, crate.Handle)
	assert.True(t, crate.HasTag(TagCoverFromGeometry))
	assert.False(t, crate.HasTag(TagNoCover))
	assert.True(t, crate.CollisionEnabled)
	assert.Equal(t, float32(275), crate.Bounds.Bottom())
	assert.Equal(t, float32(325), crate.Bounds.Top())
	assert.Equal(t, float32(90), crate.Transform.Rotation.Yaw)
	assert.Equal(t, 1, crate.Transform.NegativeAxes())
	require.NotNil(t, crate.Mesh)
	assert.NoError(t, crate.Mesh.Validate())
	assert.Equal(t, 1, crate.Mesh.TriangleCount())

	door := objs[1]
	assert.Equal(t, 1, door.Handle)
	assert.True(t, door.Movable)
	assert.True(t, door.CollisionEnabled, "collision defaults to enabled")
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, door.Transform.Scale)
	assert.Nil(t, door.Mesh)
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing levels", `{}`},
		{"short vector", `{"levels":[{"objects":[{"name":"a","bounds":{"center":[0,0],"size":[1,1,1]}}]}]}`},
		{"negative index", `{"levels":[{"objects":[{"name":"a","bounds":{"center":[0,0,0],"size":[1,1,1]},"mesh":{"vertices":[],"indices32":[-1]}}]}]}`},
		{"empty name", `{"levels":[{"objects":[{"name":"","bounds":{"center":[0,0,0],"size":[1,1,1]}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestParseIndexWidth(t *testing.T) {
	doc := `{"levels":[{"objects":[{"name":"a","bounds":{"center":[0,0,0],"size":[1,1,1]},"mesh":{"vertices":[[0,0,0]],"indices16":[70000]}}]}]}`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrIndexWidth)
}

func TestObjectsLevelOutOfRange(t *testing.T) {
	snap, err := Parse([]byte(crateScene))
	require.NoError(t, err)

	_, err = snap.Objects(1)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
	_, err = snap.Objects(-1)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(crateScene), 0644))

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, snap.Levels[0].Objects, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMeshValidate(t *testing.T) {
	verts := []math.Vec3{{}, {X: 1}, {Y: 1}}
	tests := []struct {
		name string
		mesh *Mesh
		want error
	}{
		{"nil", nil, ErrNoMesh},
		{"valid 16", &Mesh{Vertices: verts, Indices16: []uint16{0, 1, 2}}, nil},
		{"valid 32", &Mesh{Vertices: verts, Indices32: []uint32{0, 1, 2}}, nil},
		{"both widths", &Mesh{Vertices: verts, Indices16: []uint16{0, 1, 2}, Indices32: []uint32{0, 1, 2}}, ErrMalformedMesh},
		{"no indices", &Mesh{Vertices: verts}, ErrMalformedMesh},
		{"partial triangle", &Mesh{Vertices: verts, Indices32: []uint32{0, 1}}, ErrMalformedMesh},
		{"out of range", &Mesh{Vertices: verts, Indices32: []uint32{0, 1, 3}}, ErrMalformedMesh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := Transform{
		Location: math.Vec3{X: 10, Y: 0, Z: 5},
		Rotation: math.Rotator{Yaw: 90},
		Scale:    math.Vec3{X: 2, Y: 1, Z: 1},
	}
	got := tr.Matrix().TransformPoint(math.Vec3{X: 1})
	want := math.Vec3{X: 10, Y: 2, Z: 5}
	assert.True(t, got.ApproxEqual(want, 1e-4), "expected %v, got %v", want, got)
}
