package mesh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"
)

// PrintStatistics prints per-block mesh statistics
func (mb *MultiBlock) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Blocks: %d\n", mb.NumberOfBlocks())
	for id, ds := range mb.blocks {
		if ds == nil {
			continue
		}
		fmt.Fprintf(w, "Block %d [%s] %q\n", id, ds.Kind(), ds.Name())
		fmt.Fprintf(w, "  Points: %d\n", ds.NumberOfPoints())
		fmt.Fprintf(w, "  Cells: %d\n", ds.NumberOfCells())

		switch g := ds.(type) {
		case *UnstructuredGrid:
			typeCounts := make([]int, NumElementTypes)
			for _, t := range g.Types {
				typeCounts[t]++
			}
			fmt.Fprintf(w, "  Element types:\n")
			for t, count := range typeCounts {
				if count > 0 {
					fmt.Fprintf(w, "    %s: %d\n", ElementType(t), count)
				}
			}
			fmt.Fprintf(w, "  Boundary faces: %d\n", g.BuildConnectivity().BoundaryFaces())
		case *StructuredGrid:
			fmt.Fprintf(w, "  Dimensions: %d x %d x %d\n", g.Dims[0], g.Dims[1], g.Dims[2])
			fmt.Fprintf(w, "  Blanked points: %d\n", g.NumberOfBlanked())
		}

		printFields(w, "Point", ds.PointData())
		printFields(w, "Cell", ds.CellData())
	}
}

func printFields(w io.Writer, where string, fd *FieldData) {
	for _, arr := range fd.Arrays() {
		lo, hi, mean := arrayRange(arr)
		fmt.Fprintf(w, "  %s field %q (%d comp): min %g max %g mean %g\n",
			where, arr.Name, arr.NumComponents, lo, hi, mean)
	}
}

// arrayRange returns min, max and mean over all components of arr
func arrayRange(arr *FieldArray) (lo, hi, mean float64) {
	if len(arr.Values) == 0 {
		return 0, 0, 0
	}
	vals := make([]float64, len(arr.Values))
	for i, v := range arr.Values {
		vals[i] = float64(v)
	}
	return floats.Min(vals), floats.Max(vals), floats.Sum(vals) / float64(len(vals))
}

// Fingerprint digests every block's points, cells and field arrays. Two
// outputs decoded from the same input produce the same value.
func (mb *MultiBlock) Fingerprint() uint64 {
	d := xxhash.New()
	var word [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(word[:], uint64(int64(v)))
		_, _ = d.Write(word[:])
	}
	putFloats := func(vs []float32) {
		putInt(len(vs))
		for _, v := range vs {
			binary.LittleEndian.PutUint32(word[:4], math.Float32bits(v))
			_, _ = d.Write(word[:4])
		}
	}
	putFields := func(fd *FieldData) {
		putInt(fd.NumberOfArrays())
		for _, arr := range fd.Arrays() {
			_, _ = d.WriteString(arr.Name)
			putInt(arr.NumComponents)
			putFloats(arr.Values)
		}
	}

	putInt(mb.NumberOfBlocks())
	for id, ds := range mb.blocks {
		putInt(id)
		if ds == nil {
			putInt(-1)
			continue
		}
		putInt(int(ds.Kind()))
		_, _ = d.WriteString(ds.Name())
		switch g := ds.(type) {
		case *UnstructuredGrid:
			putFloats(g.Points.coords())
			putInt(len(g.Elements))
			for i, cell := range g.Elements {
				putInt(int(g.Types[i]))
				putInt(len(cell))
				for _, v := range cell {
					putInt(v)
				}
			}
		case *StructuredGrid:
			for _, dim := range g.Dims {
				putInt(dim)
			}
			putFloats(g.Points.coords())
			putInt(g.NumberOfBlanked())
			if g.Blanked != nil {
				for _, v := range g.Blanked.ToArray() {
					putInt(int(v))
				}
			}
		case *PolyData:
			putFloats(g.Points.coords())
			putInt(len(g.Verts))
			for _, v := range g.Verts {
				putInt(v)
			}
		}
		putFields(ds.PointData())
		putFields(ds.CellData())
	}
	return d.Sum64()
}

func (p *Points) coords() []float32 {
	if p == nil {
		return nil
	}
	return p.Coords
}
