package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"

	"github.com/Faultbox/covergen/pkg/math"
)

// Loader errors.
var (
	ErrSchema          = errors.New("scene does not match schema")
	ErrLevelOutOfRange = errors.New("level out of range")
	ErrIndexWidth      = errors.New("16-bit index out of range")
)

//go:embed schema.json
var schemaData []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaData)

type fileSnapshot struct {
	Levels []fileLevel `json:"levels"`
}

type fileLevel struct {
	Name    string       `json:"name"`
	Objects []fileObject `json:"objects"`
}

type fileObject struct {
	Name      string         `json:"name"`
	Tags      []string       `json:"tags"`
	Collision *bool          `json:"collision"`
	Movable   bool           `json:"movable"`
	Bounds    fileBounds     `json:"bounds"`
	Transform *fileTransform `json:"transform"`
	Mesh      *fileMesh      `json:"mesh"`
}

type fileBounds struct {
	Center [3]float32 `json:"center"`
	Size   [3]float32 `json:"size"`
}

type fileTransform struct {
	Location [3]float32  `json:"location"`
	Rotation [3]float32  `json:"rotation"` // pitch, yaw, roll in degrees
	Scale    *[3]float32 `json:"scale"`
}

type fileMesh struct {
	Vertices  [][3]float32 `json:"vertices"`
	Indices16 []uint32     `json:"indices16"`
	Indices32 []uint32     `json:"indices32"`
}

// Load reads and parses a scene snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the embedded schema and decodes it.
func Parse(data []byte) (*Snapshot, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var fs fileSnapshot
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}

	snap := &Snapshot{Levels: make([]Level, 0, len(fs.Levels))}
	for li, fl := range fs.Levels {
		level := Level{Name: fl.Name, Objects: make([]Object, 0, len(fl.Objects))}
		for oi, fo := range fl.Objects {
			obj, err := fo.object(oi)
			if err != nil {
				return nil, fmt.Errorf("level %d object %q: %w", li, fo.Name, err)
			}
			level.Objects = append(level.Objects, obj)
		}
		snap.Levels = append(snap.Levels, level)
	}
	return snap, nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if result.Valid() {
		return nil
	}
	var errs error
	for _, desc := range result.Errors() {
		errs = multierr.Append(errs, errors.New(desc.String()))
	}
	return fmt.Errorf("%w: %w", ErrSchema, errs)
}

func (fo fileObject) object(handle int) (Object, error) {
	obj := Object{
		Handle:           handle,
		Name:             fo.Name,
		Tags:             fo.Tags,
		CollisionEnabled: fo.Collision == nil || *fo.Collision,
		Movable:          fo.Movable,
		Bounds: Bounds{
			Center: math.V3(fo.Bounds.Center),
			Size:   math.V3(fo.Bounds.Size),
		},
		Transform: IdentityTransform(),
	}

	if ft := fo.Transform; ft != nil {
		obj.Transform.Location = math.V3(ft.Location)
		obj.Transform.Rotation = math.Rotator{Pitch: ft.Rotation[0], Yaw: ft.Rotation[1], Roll: ft.Rotation[2]}
		if ft.Scale != nil {
			obj.Transform.Scale = math.V3(*ft.Scale)
		}
	}

	if fm := fo.Mesh; fm != nil {
		mesh := &Mesh{Vertices: make([]math.Vec3, len(fm.Vertices))}
		for i, v := range fm.Vertices {
			mesh.Vertices[i] = math.V3(v)
		}
		if fm.Indices16 != nil {
			mesh.Indices16 = make([]uint16, len(fm.Indices16))
			for i, idx := range fm.Indices16 {
				if idx > 0xFFFF {
					return Object{}, fmt.Errorf("%w: %d", ErrIndexWidth, idx)
				}
				mesh.Indices16[i] = uint16(idx)
			}
		}
		mesh.Indices32 = fm.Indices32
		obj.Mesh = mesh
	}
	return obj, nil
}
