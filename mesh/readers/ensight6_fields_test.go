package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ensight6/mesh"
)

func TestScalarsPerNodeByPart(t *testing.T) {
	dir := t.TempDir()
	g := &Geometry{
		Parts: []GeometryPart{
			{Number: 1, Description: "a", Dims: [3]int{5, 1, 1}, Coords: make([]float32, 15)},
			{Number: 2, Description: "b", Dims: [3]int{3, 1, 1}, Coords: make([]float32, 9)},
		},
	}
	geo := writeGeometry(t, dir, "lines.geo", BigEndian, false, g)
	scl := writeField(t, dir, "p.scl", BigEndian, false, &Field{
		Description: "pressure",
		Parts: []FieldPart{
			{Number: 1, Block: []float32{1, 2, 3, 4, 5}},
			{Number: 2, Block: []float32{6, 7, 8}},
		},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadScalarsPerNode(scl, "p", 1, output, false, 1, 0))

	var all []float32
	for id := 0; id < output.NumberOfBlocks(); id++ {
		arr := output.Block(id).PointData().Array("p")
		require.NotNil(t, arr)
		all = append(all, arr.Values...)
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, all)
	assert.Same(t, output.Block(1).PointData().Array("p"), output.Block(1).PointData().Active(mesh.Scalars))
}

func TestScalarsPerElementByType(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "shell.geo", LittleEndian, false, shellGeometry())
	// triangle values first, then quads, in the order of each type's list
	scl := writeField(t, dir, "t.ecl", LittleEndian, false, &Field{
		Description: "thickness",
		Parts: []FieldPart{{Number: 1, Sections: []FieldSection{
			{Type: Tria3, Values: []float32{10, 11, 12}},
			{Type: Quad4, Values: []float32{20, 21}},
		}}},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	assert.Equal(t, []int{0, 1, 4}, r.CellIDs(0, Tria3))
	assert.Equal(t, []int{2, 3}, r.CellIDs(0, Quad4))

	require.NoError(t, r.ReadScalarsPerElement(scl, "thickness", 1, output, 1, 0))
	arr := output.Block(0).CellData().Array("thickness")
	require.NotNil(t, arr)
	assert.Equal(t, []float32{10, 11, 20, 21, 12}, arr.Values)
	assert.Same(t, arr, output.Block(0).CellData().Active(mesh.Scalars))
}

func TestScalarsPerElementBlock(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "mixed.geo", LittleEndian, false, mixedGeometry())
	scl := writeField(t, dir, "id.ecl", LittleEndian, false, &Field{
		Description: "cell id",
		Parts: []FieldPart{
			{Number: 1, Block: []float32{1, 2, 3}},
			{Number: 2, Block: []float32{9}},
		},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadScalarsPerElement(scl, "id", 1, output, 1, 0))
	assert.Equal(t, []float32{1, 2, 3}, output.Block(0).CellData().Array("id").Values)
	assert.Equal(t, []float32{9}, output.Block(1).CellData().Array("id").Values)
}

func TestMultiComponentScalarsPerNode(t *testing.T) {
	dir := t.TempDir()
	g := mixedGeometry()
	g.Parts = append(g.Parts, GeometryPart{Number: 7, Description: "wall", Sections: []ElementSection{
		{Type: Tria3, Connectivity: []int{2, 3, 5}},
	}})
	geo := writeGeometry(t, dir, "mixed.geo", LittleEndian, false, g)
	re := writeTestFile(t, dir, "re.scl", LittleEndian, false, func(e *Encoder) error {
		return e.EncodeField(true, &Field{Description: "real", Flat: []float32{1, 2, 3, 4, 5}})
	})
	im := writeField(t, dir, "im.scl", LittleEndian, false, &Field{
		Description: "imaginary", Flat: []float32{-1, -2, -3, -4, -5},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadScalarsPerNode(re, "c", 1, output, false, 2, 0))
	require.NoError(t, r.ReadScalarsPerNode(im, "c", 1, output, false, 2, 1))

	fluid := output.Block(0).PointData().Array("c")
	require.NotNil(t, fluid)
	assert.Equal(t, 2, fluid.NumComponents)
	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}, fluid.Values)
	assert.Same(t, fluid, output.Block(2).PointData().Array("c"), "unstructured parts share the pool array")
	assert.Nil(t, output.Block(1).PointData().Array("c"), "structured parts are not in the pool")
	assert.Same(t, fluid, output.Block(2).PointData().Active(mesh.Scalars))

	// a later component needs component 0 first
	fresh := decodeGeometry(t, r, geo, 1)
	err := r.ReadScalarsPerNode(im, "other", 1, fresh, false, 2, 1)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestMultiComponentScalarsPerElement(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "shell.geo", BigEndian, false, shellGeometry())
	comp := func(name string, shift float32) string {
		return writeField(t, dir, name, BigEndian, false, &Field{
			Description: name,
			Parts: []FieldPart{{Number: 1, Sections: []FieldSection{
				{Type: Tria3, Values: []float32{shift + 1, shift + 2, shift + 5}},
				{Type: Quad4, Values: []float32{shift + 3, shift + 4}},
			}}},
		})
	}
	re, im := comp("re.ecl", 0), comp("im.ecl", 10)

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadScalarsPerElement(re, "z", 1, output, 2, 0))
	require.NoError(t, r.ReadScalarsPerElement(im, "z", 1, output, 2, 1))
	arr := output.Block(0).CellData().Array("z")
	assert.Equal(t, []float32{1, 11, 2, 12, 3, 13, 4, 14, 5, 15}, arr.Values)
}

func TestVectors(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "mixed.geo", LittleEndian, false, mixedGeometry())
	nodeValues := make([]float32, 15)
	for i := range nodeValues {
		nodeValues[i] = float32(i)
	}
	blockValues := make([]float32, 12)
	for i := range blockValues {
		blockValues[i] = float32(100 + i)
	}
	vel := writeField(t, dir, "vel.vec", LittleEndian, false, &Field{
		Description: "velocity",
		Flat:        nodeValues,
		Parts:       []FieldPart{{Number: 2, Block: blockValues}},
	})
	grad := writeField(t, dir, "grad.evec", LittleEndian, false, &Field{
		Description: "gradient",
		Parts: []FieldPart{{Number: 1, Sections: []FieldSection{
			{Type: Tetra4, Values: []float32{1, 1, 1, 2, 2, 2}},
			{Type: Tria3, Values: []float32{3, 3, 3}},
		}}},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadVectorsPerNode(vel, "velocity", 1, output, false))
	require.NoError(t, r.ReadVectorsPerElement(grad, "gradient", 1, output))

	fluid := output.Block(0)
	assert.Equal(t, []float32{3, 4, 5}, fluid.PointData().Array("velocity").Tuple(1))
	assert.NotNil(t, fluid.PointData().Active(mesh.Vectors))
	inlet := output.Block(1).PointData().Array("velocity")
	assert.Equal(t, []float32{109, 110, 111}, inlet.Tuple(3))

	g := fluid.CellData().Array("gradient")
	assert.Equal(t, 3, g.NumComponents)
	assert.Equal(t, []float32{3, 3, 3}, g.Tuple(2))
	assert.Same(t, g, fluid.CellData().Active(mesh.Vectors))
}

func TestTensorsReorder(t *testing.T) {
	dir := t.TempDir()
	g := &Geometry{
		Coords: []float32{0, 0, 0, 1, 0, 0},
		Parts: []GeometryPart{{Number: 1, Description: "bar", Sections: []ElementSection{
			{Type: Bar2, Connectivity: []int{1, 2}},
		}}},
	}
	geo := writeGeometry(t, dir, "bar.geo", LittleEndian, false, g)
	// file order xx yy zz xy yz xz
	stress := writeField(t, dir, "s.ten", LittleEndian, false, &Field{
		Description: "stress",
		Flat:        []float32{1, 2, 3, 4, 5, 6, 11, 12, 13, 14, 15, 16},
	})
	cellStress := writeField(t, dir, "s.eten", LittleEndian, false, &Field{
		Description: "stress",
		Parts: []FieldPart{{Number: 1, Sections: []FieldSection{
			{Type: Bar2, Values: []float32{21, 22, 23, 24, 25, 26}},
		}}},
	})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadTensorsPerNode(stress, "stress", 1, output))
	require.NoError(t, r.ReadTensorsPerElement(cellStress, "stress", 1, output))

	bar := output.Block(0)
	arr := bar.PointData().Array("stress")
	require.NotNil(t, arr)
	assert.Equal(t, 6, arr.NumComponents)
	assert.Equal(t, []float32{1, 2, 3, 4, 6, 5}, arr.Tuple(0))
	assert.Equal(t, []float32{11, 12, 13, 14, 16, 15}, arr.Tuple(1))
	assert.Nil(t, bar.PointData().Active(mesh.Tensors))
	assert.Equal(t, []float32{21, 22, 23, 24, 26, 25}, bar.CellData().Array("stress").Tuple(0))
}

func TestFieldFileSets(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "steps.geo", LittleEndian, true,
		timeStepGeometry(0, true), timeStepGeometry(1, true))
	node := writeField(t, dir, "p.scl", LittleEndian, true,
		&Field{Description: "step 1", Flat: []float32{1, 1, 1, 1},
			Parts: []FieldPart{{Number: 2, Block: []float32{1, 1}}}},
		&Field{Description: "step 2", Flat: []float32{2, 2, 2, 2},
			Parts: []FieldPart{{Number: 2, Block: []float32{2, 3}}}},
	)
	cell := writeField(t, dir, "q.ecl", LittleEndian, true,
		&Field{Description: "step 1", Parts: []FieldPart{
			{Number: 1, Sections: []FieldSection{{Type: Tria3, Values: []float32{1, 1}}}},
			{Number: 2, Block: []float32{1}},
		}},
		&Field{Description: "step 2", Parts: []FieldPart{
			{Number: 1, Sections: []FieldSection{{Type: Tria3, Values: []float32{5, 6}}}},
			{Number: 2, Block: []float32{7}},
		}},
	)

	r, _ := newTestReader(Options{UseFileSets: true})
	output := decodeGeometry(t, r, geo, 2)
	require.NoError(t, r.ReadScalarsPerNode(node, "p", 2, output, false, 1, 0))
	require.NoError(t, r.ReadScalarsPerElement(cell, "q", 2, output, 1, 0))

	assert.Equal(t, []float32{2, 2, 2, 2}, output.Block(0).PointData().Array("p").Values)
	assert.Equal(t, []float32{2, 3}, output.Block(1).PointData().Array("p").Values)
	assert.Equal(t, []float32{5, 6}, output.Block(0).CellData().Array("q").Values)
	assert.Equal(t, []float32{7}, output.Block(1).CellData().Array("q").Values)

	assert.ErrorIs(t, r.ReadScalarsPerNode(node, "p", 3, output, false, 1, 0), ErrNoTimeStep)
}

func TestMeasuredScalars(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "mixed.geo", BigEndian, false, mixedGeometry())
	mgeo := writeTestFile(t, dir, "tracers.mgeo", BigEndian, false, func(e *Encoder) error {
		return e.EncodeMeasured(&Measured{Description: "tracers", IDs: []int{1, 2}, Coords: make([]float32, 6)})
	})
	speed := writeField(t, dir, "speed.mscl", BigEndian, false, &Field{Description: "speed", Flat: []float32{4, 8}})
	dir3 := writeField(t, dir, "dir.mvec", BigEndian, false, &Field{Description: "dir", Flat: []float32{1, 0, 0, 0, 1, 0}})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.NoError(t, r.ReadMeasuredGeometryFile(mgeo, 1, output))
	require.NoError(t, r.ReadScalarsPerNode(speed, "speed", 1, output, true, 1, 0))
	require.NoError(t, r.ReadVectorsPerNode(dir3, "dir", 1, output, true))

	particles := output.Block(2)
	assert.Equal(t, []float32{4, 8}, particles.PointData().Array("speed").Values)
	assert.Equal(t, []float32{0, 1, 0}, particles.PointData().Array("dir").Tuple(1))
	assert.Nil(t, output.Block(0).PointData().Array("speed"))
}

func TestFieldErrors(t *testing.T) {
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "shell.geo", LittleEndian, false, shellGeometry())
	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)

	unknownType := writeTestFile(t, dir, "bad.ecl", LittleEndian, false, func(e *Encoder) error {
		return e.Encode(func() {
			e.Line("bad")
			e.Line("part 1")
			e.Line("hexa99")
		})
	})
	assert.ErrorIs(t, r.ReadScalarsPerElement(unknownType, "bad", 1, output, 1, 0), ErrInvalidElementType)

	noGeometry := writeField(t, dir, "orphan.scl", LittleEndian, false, &Field{
		Description: "orphan",
		Parts:       []FieldPart{{Number: 9, Block: []float32{1}}},
	})
	assert.ErrorIs(t, r.ReadScalarsPerNode(noGeometry, "orphan", 1, output, false, 1, 0), ErrNoOutput)

	short := writeField(t, dir, "short.scl", LittleEndian, false, &Field{
		Description: "short", Flat: []float32{1, 2},
	})
	assert.ErrorIs(t, r.ReadScalarsPerNode(short, "short", 1, output, false, 1, 0), ErrReadFailed)
}

func TestAmbiguousByteOrderCarriesToFields(t *testing.T) {
	// 0x00010100 has the same bytes in either order
	const n = 0x00010100
	g := &Geometry{
		Coords: make([]float32, 3*n),
		Parts: []GeometryPart{{Number: 1, Description: "cloud", Sections: []ElementSection{
			{Type: Point, Connectivity: []int{1}},
		}}},
	}
	dir := t.TempDir()
	geo := writeGeometry(t, dir, "cloud.geo", LittleEndian, false, g)
	flat := make([]float32, n)
	flat[n-1] = 2.5
	scl := writeField(t, dir, "cloud.scl", LittleEndian, false, &Field{Description: "temperature", Flat: flat})

	r, _ := newTestReader(Options{})
	output := decodeGeometry(t, r, geo, 1)
	require.True(t, r.ByteOrderAmbiguous())

	require.NoError(t, r.ReadScalarsPerNode(scl, "t", 1, output, false, 1, 0))
	assert.True(t, r.ByteOrderAmbiguous(), "a field file reusing a guessed order is still a guess")
	assert.Equal(t, LittleEndian, r.ByteOrder())
	assert.Equal(t, float32(2.5), output.Block(0).PointData().Array("t").Values[n-1])

	// a geometry with a clear count resets it
	decodeGeometry(t, r, writeGeometry(t, dir, "mixed.geo", LittleEndian, false, mixedGeometry()), 1)
	assert.False(t, r.ByteOrderAmbiguous())
}
