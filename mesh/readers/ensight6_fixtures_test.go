package readers

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/ensight6/internal/logging"
	"github.com/notargets/ensight6/mesh"
)

// newTestReader returns a reader logging into the returned buffer
func newTestReader(opts Options) (*Reader, *bytes.Buffer) {
	var buf bytes.Buffer
	opts.Logger = logging.NewLoggerTo(&buf)
	return NewReader(opts), &buf
}

func writeTestFile(t *testing.T, dir, name string, order ByteOrder, fileSet bool, fn func(e *Encoder) error) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, WriteFile(path, order, fileSet, fn))
	return path
}

func writeGeometry(t *testing.T, dir, name string, order ByteOrder, fileSet bool, steps ...*Geometry) string {
	t.Helper()
	return writeTestFile(t, dir, name, order, fileSet, func(e *Encoder) error {
		return e.EncodeGeometry(steps...)
	})
}

func writeField(t *testing.T, dir, name string, order ByteOrder, fileSet bool, steps ...*Field) string {
	t.Helper()
	return writeTestFile(t, dir, name, order, fileSet, func(e *Encoder) error {
		return e.EncodeField(false, steps...)
	})
}

// mixedGeometry has an unstructured part of two tets and a triangle over
// a five point pool, and a blanked 2x2x1 structured part
func mixedGeometry() *Geometry {
	return &Geometry{
		Description: [2]string{"mixed", "fixture"},
		Coords: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
			1, 1, 1,
		},
		Parts: []GeometryPart{
			{Number: 1, Description: "fluid", Sections: []ElementSection{
				{Type: Tetra4, Connectivity: []int{1, 2, 3, 4, 2, 3, 4, 5}},
				{Type: Tria3, Connectivity: []int{1, 2, 3}},
			}},
			{Number: 2, Description: "inlet", Dims: [3]int{2, 2, 1},
				Coords: []float32{
					0, 1, 0, 1, // x
					0, 0, 1, 1, // y
					5, 5, 5, 5, // z
				},
				IBlank: []int{1, 0, 1, 1},
			},
		},
	}
}

// shellGeometry has one part whose triangles are split around its quads,
// so the file order of each type differs from the output cell order
func shellGeometry() *Geometry {
	return &Geometry{
		Description: [2]string{"shell", ""},
		ElementIDs:  "given",
		Coords: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			1, 1, 0,
			2, 0, 0,
			2, 1, 0,
		},
		Parts: []GeometryPart{
			{Number: 1, Description: "shell", Sections: []ElementSection{
				{Type: Tria3, Connectivity: []int{1, 2, 3, 2, 4, 3}},
				{Type: Quad4, Connectivity: []int{2, 5, 6, 4, 1, 2, 4, 3}},
				{Type: Tria3, Connectivity: []int{5, 6, 4}},
			}},
		},
	}
}

func decodeGeometry(t *testing.T, r *Reader, path string, timeStep int) *mesh.MultiBlock {
	t.Helper()
	output := mesh.NewMultiBlock()
	require.NoError(t, r.ReadGeometryFile(path, timeStep, output))
	return output
}
