package readers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/batchatco/go-thrower"

	"github.com/notargets/ensight6/internal/source"
)

// Encoder writes EnSight6 binary files. It builds test inputs and the
// sample case of the command line tool.
type Encoder struct {
	w       io.Writer
	engine  EndianEngine
	FileSet bool // wrap each step in BEGIN TIME STEP / END TIME STEP
	word    []byte
}

func NewEncoder(w io.Writer, order ByteOrder) *Encoder {
	return &Encoder{w: w, engine: order.Engine(), word: make([]byte, 0, 4)}
}

// ElementSection is one element type block of an unstructured part.
// Connectivity holds NodesPerElement 1-based node references per element.
type ElementSection struct {
	Type         ElementType
	IDs          []int // element ids, written when the geometry lists them
	Connectivity []int
}

func (e *ElementSection) Count() int {
	return len(e.Connectivity) / e.Type.NodesPerElement()
}

// GeometryPart is an unstructured part when Sections is set, otherwise
// a structured block of Dims points
type GeometryPart struct {
	Number      int // 1-based part number
	Description string
	Sections    []ElementSection

	Dims   [3]int
	Coords []float32 // plane-major: all x, then all y, then all z
	IBlank []int     // optional, 0 blanks a point
}

// Geometry is one time step of a geometry file
type Geometry struct {
	Description [2]string
	NodeIDs     string    // "given", "ignore" or "off"
	ElementIDs  string    // "given", "ignore" or "off"
	PointIDs    []int     // written when NodeIDs is given or ignore
	Coords      []float32 // x,y,z per point
	Parts       []GeometryPart
}

// Measured is one time step of a measured particle file
type Measured struct {
	Description string
	IDs         []int
	Coords      []float32 // x,y,z per particle
}

// FieldSection is one element type block of a per-element variable
type FieldSection struct {
	Type   ElementType
	Values []float32
}

// FieldPart holds the values of one part. Block values are written after
// a "block" line, otherwise Sections are written per element type.
type FieldPart struct {
	Number   int
	Block    []float32
	Sections []FieldSection
}

// Field is one time step of a variable file. Flat, when set, covers the
// whole unstructured point pool and precedes the parts.
type Field struct {
	Description string
	Flat        []float32
	Parts       []FieldPart
}

// Encode runs fn and returns the first write error it raised
func (e *Encoder) Encode(fn func()) (err error) {
	defer thrower.RecoverError(&err)
	fn()
	return nil
}

// Line writes text padded with NULs to one 80 byte record
func (e *Encoder) Line(text string) {
	var rec [LineLength]byte
	copy(rec[:], text)
	e.write(rec[:])
}

func (e *Encoder) write(b []byte) {
	_, err := e.w.Write(b)
	thrower.ThrowIfError(err)
}

func (e *Encoder) Int(v int) {
	e.word = e.engine.AppendUint32(e.word[:0], uint32(int32(v)))
	e.write(e.word)
}

func (e *Encoder) Ints(vs []int) {
	for _, v := range vs {
		e.Int(v)
	}
}

func (e *Encoder) Floats(vs []float32) {
	for _, v := range vs {
		e.word = e.engine.AppendUint32(e.word[:0], math.Float32bits(v))
		e.write(e.word)
	}
}

func (e *Encoder) beginStep() {
	if e.FileSet {
		e.Line(beginTimeStep)
	}
}

func (e *Encoder) endStep() {
	if e.FileSet {
		e.Line(endTimeStep)
	}
}

func listsIDs(mode string) bool {
	return mode == "given" || mode == "ignore"
}

// EncodeGeometry writes a "C Binary" header and the given steps
func (e *Encoder) EncodeGeometry(steps ...*Geometry) error {
	return e.Encode(func() {
		e.Line("C Binary")
		for _, g := range steps {
			e.beginStep()
			e.geometry(g)
			e.endStep()
		}
	})
}

func (e *Encoder) geometry(g *Geometry) {
	e.Line(g.Description[0])
	e.Line(g.Description[1])
	e.Line("node id " + orOff(g.NodeIDs))
	e.Line("element id " + orOff(g.ElementIDs))
	e.Line("coordinates")
	n := len(g.Coords) / 3
	e.Int(n)
	if listsIDs(g.NodeIDs) {
		e.Ints(sequentialIfMissing(g.PointIDs, n))
	}
	e.Floats(g.Coords)
	for i := range g.Parts {
		e.part(&g.Parts[i], listsIDs(g.ElementIDs))
	}
}

func (e *Encoder) part(p *GeometryPart, elementIDs bool) {
	e.Line(fmt.Sprintf("part %d", p.Number))
	e.Line(p.Description)
	if p.Sections == nil {
		if p.IBlank != nil {
			e.Line("block iblanked")
		} else {
			e.Line("block")
		}
		e.Ints(p.Dims[:])
		e.Floats(p.Coords)
		e.Ints(p.IBlank)
		return
	}
	for _, sec := range p.Sections {
		e.Line(sec.Type.String())
		n := sec.Count()
		e.Int(n)
		if elementIDs {
			e.Ints(sequentialIfMissing(sec.IDs, n))
		}
		e.Ints(sec.Connectivity)
	}
}

// EncodeMeasured writes a "C Binary" header and the given particle steps
func (e *Encoder) EncodeMeasured(steps ...*Measured) error {
	return e.Encode(func() {
		e.Line("C Binary")
		for _, m := range steps {
			e.beginStep()
			e.Line(m.Description)
			e.Line("particle coordinates")
			e.Int(len(m.IDs))
			e.Ints(m.IDs)
			e.Floats(m.Coords)
			e.endStep()
		}
	})
}

// EncodeField writes variable steps. header adds the optional "C Binary"
// first record.
func (e *Encoder) EncodeField(header bool, steps ...*Field) error {
	return e.Encode(func() {
		if header {
			e.Line("C Binary")
		}
		for _, f := range steps {
			e.beginStep()
			e.Line(f.Description)
			e.Floats(f.Flat)
			for _, p := range f.Parts {
				e.Line(fmt.Sprintf("part %d", p.Number))
				if p.Sections == nil {
					e.Line("block")
					e.Floats(p.Block)
					continue
				}
				for _, sec := range p.Sections {
					e.Line(sec.Type.String())
					e.Floats(sec.Values)
				}
			}
			e.endStep()
		}
	})
}

// WriteFile encodes with fn into fileName, compressed as its extension
// asks
func WriteFile(fileName string, order ByteOrder, fileSet bool, fn func(e *Encoder) error) (err error) {
	defer thrower.RecoverError(&err)
	comp := source.Detect(fileName)
	f, err := os.Create(fileName)
	thrower.ThrowIfError(err)
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if comp == source.None {
		w := bufio.NewWriter(f)
		e := NewEncoder(w, order)
		e.FileSet = fileSet
		thrower.ThrowIfError(fn(e))
		thrower.ThrowIfError(w.Flush())
		return nil
	}
	var buf bytes.Buffer
	e := NewEncoder(&buf, order)
	e.FileSet = fileSet
	thrower.ThrowIfError(fn(e))
	packed, err := source.Compress(buf.Bytes(), comp)
	thrower.ThrowIfError(err)
	_, err = f.Write(packed)
	thrower.ThrowIfError(err)
	return nil
}

func orOff(mode string) string {
	if mode == "" {
		return "off"
	}
	return mode
}

func sequentialIfMissing(ids []int, n int) []int {
	if len(ids) == n {
		return ids
	}
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i + 1
	}
	return seq
}
