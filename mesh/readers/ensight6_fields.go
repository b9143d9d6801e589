package readers

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/ensight6/mesh"
)

type fieldKind int

const (
	scalarField fieldKind = iota
	vectorField
	tensorField
)

// file tensor order is xx yy zz xy yz xz, output order is xx yy zz xy xz yz
var tensorOrder = [6]int{0, 1, 2, 3, 5, 4}

// width is the number of floats per tuple in the file
func (k fieldKind) width() int {
	return [...]int{1, 3, 6}[k]
}

func (k fieldKind) attribute() mesh.Attribute {
	return [...]mesh.Attribute{mesh.Scalars, mesh.Vectors, mesh.Tensors}[k]
}

// field is one variable being decoded, possibly a single component of a
// multi-component scalar
type field struct {
	kind          fieldKind
	name          string
	numComponents int
	component     int
}

func (f *field) components() int {
	if f.kind == scalarField {
		return f.numComponents
	}
	return f.kind.width()
}

// array returns the array to fill on fd. Component 0 starts a new array,
// later components continue the one already attached.
func (f *field) array(fd *mesh.FieldData, nTuples int) (*mesh.FieldArray, error) {
	if f.component == 0 {
		return mesh.NewFieldArray(f.name, nTuples, f.components()), nil
	}
	arr := fd.Array(f.name)
	if arr == nil {
		return nil, errors.Wrapf(ErrNoOutput, "component %d of %q has no component 0", f.component, f.name)
	}
	return arr, nil
}

// store writes file tuple i of values into tuple of arr
func (f *field) store(arr *mesh.FieldArray, tuple int, values []float32, i int) {
	switch f.kind {
	case scalarField:
		arr.SetComponent(tuple, f.component, values[i])
	case vectorField:
		for c := 0; c < 3; c++ {
			arr.SetComponent(tuple, c, values[3*i+c])
		}
	case tensorField:
		for c, src := range tensorOrder {
			arr.SetComponent(tuple, c, values[6*i+src])
		}
	}
}

func (f *field) attach(fd *mesh.FieldData, arr *mesh.FieldArray) {
	fd.AddArray(arr)
	if f.kind != tensorField {
		fd.SetActiveIfUnset(f.kind.attribute(), arr.Name)
	}
}

// isVariableHeader matches the optional "C Binary" first record of a
// variable file
func isVariableHeader(line string) bool {
	f := strings.Fields(line)
	return len(f) == 2 && (f[1] == "Binary" || f[1] == "binary")
}

// openVariable opens a variable file positioned on the description line
// of timeStep
func (r *Reader) openVariable(fileName string) (*Session, error) {
	s, err := r.open(fileName, true)
	if err != nil {
		return nil, err
	}
	line, err := s.ReadLine()
	if err == nil && !isVariableHeader(line) {
		err = s.SeekTo(0)
	}
	if err != nil && err != io.EOF {
		r.finish(s)
		return nil, err
	}
	return s, nil
}

// partBlock parses a "part" line and returns the output block it names
func (r *Reader) partBlock(s *Session, line string, output *mesh.MultiBlock) (int, mesh.DataSet, error) {
	var raw int
	if _, err := fmt.Sscanf(line, "part %d", &raw); err != nil {
		return 0, nil, errors.Wrapf(ErrInvalidPart, "%s: %q", s.name, line)
	}
	id := r.parts.Resolve(raw - 1)
	ds := output.Block(id)
	if ds == nil {
		return 0, nil, errors.Wrapf(ErrNoOutput, "%s: part %d has no geometry", s.name, raw)
	}
	return id, ds, nil
}

// flatTargets are the blocks sharing a whole-pool node block
func (r *Reader) flatTargets(output *mesh.MultiBlock, measured bool) ([]mesh.DataSet, int, error) {
	if measured {
		ds := output.Block(r.numberOfGeometryParts)
		if ds == nil {
			return nil, 0, errors.Wrap(ErrNoOutput, "no measured geometry")
		}
		return []mesh.DataSet{ds}, ds.NumberOfPoints(), nil
	}
	targets := make([]mesh.DataSet, 0, len(r.unstructuredParts))
	for _, id := range r.unstructuredParts {
		if ds := output.Block(id); ds != nil {
			targets = append(targets, ds)
		}
	}
	return targets, r.points.Len(), nil
}

// peekPart reads the line after the description. When it is not a part
// line the stream is put back so a flat block can be read. A flat block
// shorter than a line reads as the end of the file.
func peekPart(s *Session) (line string, isPart bool, err error) {
	pos, err := s.Tell()
	if err != nil {
		return "", false, err
	}
	line, err = s.ReadLine()
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if err == nil && strings.HasPrefix(line, "part") {
		return line, true, nil
	}
	return "", false, s.SeekTo(pos)
}

// skipNodeStep skips one per-node time step, starting at its description
func (r *Reader) skipNodeStep(s *Session, f *field, output *mesh.MultiBlock, measured bool) error {
	if _, err := s.requireLine("description"); err != nil {
		return err
	}
	width := int64(f.kind.width())
	line, isPart, err := peekPart(s)
	if err != nil {
		return err
	}
	if !isPart {
		_, n, err := r.flatTargets(output, measured)
		if err != nil {
			return err
		}
		if err = s.Skip(4 * width * int64(n)); err != nil {
			return err
		}
		if line, err = s.ReadLine(); err != nil {
			return err
		}
	}
	for strings.HasPrefix(line, "part") {
		_, ds, err := r.partBlock(s, line, output)
		if err != nil {
			return err
		}
		if _, err = s.requireLine("block"); err != nil {
			return err
		}
		if err = s.Skip(4 * width * int64(ds.NumberOfPoints())); err != nil {
			return err
		}
		if line, err = s.ReadLine(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readPerNode(fileName string, timeStep int, output *mesh.MultiBlock, measured bool, f *field) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.openVariable(fileName)
	if err != nil {
		return err
	}
	defer r.finish(s)

	if r.UseFileSets {
		for i := 0; i < timeStep-1; i++ {
			if err = s.nextTimeStep(); err != nil {
				return err
			}
			if err = r.skipNodeStep(s, f, output, measured); err != nil && err != io.EOF {
				return err
			}
		}
		if err = s.nextTimeStep(); err != nil {
			return err
		}
	}
	if _, err = s.requireLine("description"); err != nil {
		return err
	}
	width := f.kind.width()

	line, isPart, err := peekPart(s)
	if err != nil {
		return err
	}
	if !isPart {
		targets, n, err := r.flatTargets(output, measured)
		if err != nil {
			return err
		}
		values, err := s.ReadFloats(n * width)
		if err != nil {
			return err
		}
		var arr *mesh.FieldArray
		if f.component == 0 {
			arr = mesh.NewFieldArray(f.name, n, f.components())
		} else {
			for _, ds := range targets {
				if arr = ds.PointData().Array(f.name); arr != nil {
					break
				}
			}
			if arr == nil {
				return errors.Wrapf(ErrNoOutput, "%s: component %d of %q has no component 0", s.name, f.component, f.name)
			}
		}
		for i := 0; i < n; i++ {
			f.store(arr, i, values, i)
		}
		for _, ds := range targets {
			f.attach(ds.PointData(), arr)
		}
		if line, err = s.ReadLine(); err != nil {
			return ignoreEOF(err)
		}
	}

	for strings.HasPrefix(line, "part") {
		_, ds, err := r.partBlock(s, line, output)
		if err != nil {
			return err
		}
		if _, err = s.requireLine("block"); err != nil {
			return err
		}
		n := ds.NumberOfPoints()
		values, err := s.ReadFloats(n * width)
		if err != nil {
			return err
		}
		arr, err := f.array(ds.PointData(), n)
		if err != nil {
			return errors.Wrap(err, s.name)
		}
		for i := 0; i < n; i++ {
			f.store(arr, i, values, i)
		}
		f.attach(ds.PointData(), arr)
		if line, err = s.ReadLine(); err != nil {
			return ignoreEOF(err)
		}
	}
	return nil
}

// walkElementSections visits the per-type sections of one part, starting
// at line, until the next part, the end of the step or the file. visit
// gets the recorded cell ids of the section's type.
func (r *Reader) walkElementSections(s *Session, id int, line string, visit func(ids []int) error) (string, error) {
	index := r.unstructuredParts.IndexOf(id)
	for !strings.HasPrefix(line, "part") && !strings.HasPrefix(line, endTimeStep) {
		et, ok := LookupElementType(line)
		if !ok {
			return "", errors.Wrapf(ErrInvalidElementType, "%s: %q", s.name, line)
		}
		var ids []int
		if index >= 0 {
			ids = r.cellIDs.Get(index, et)
		}
		if err := visit(ids); err != nil {
			return "", err
		}
		var err error
		if line, err = s.ReadLine(); err != nil {
			return "", err
		}
	}
	return line, nil
}

// skipElementStep skips one per-element time step, starting at its
// description
func (r *Reader) skipElementStep(s *Session, f *field, output *mesh.MultiBlock) error {
	if _, err := s.requireLine("description"); err != nil {
		return err
	}
	width := 4 * int64(f.kind.width())
	line, err := s.ReadLine()
	for err == nil && strings.HasPrefix(line, "part") {
		var id int
		var ds mesh.DataSet
		if id, ds, err = r.partBlock(s, line, output); err != nil {
			return err
		}
		if line, err = s.requireLine("part type"); err != nil {
			return err
		}
		if strings.HasPrefix(line, "block") {
			if err = s.Skip(width * int64(ds.NumberOfCells())); err != nil {
				return err
			}
			line, err = s.ReadLine()
			continue
		}
		line, err = r.walkElementSections(s, id, line, func(ids []int) error {
			return s.Skip(width * int64(len(ids)))
		})
	}
	return err
}

func (r *Reader) readPerElement(fileName string, timeStep int, output *mesh.MultiBlock, f *field) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.openVariable(fileName)
	if err != nil {
		return err
	}
	defer r.finish(s)

	if r.UseFileSets {
		for i := 0; i < timeStep-1; i++ {
			if err = s.nextTimeStep(); err != nil {
				return err
			}
			if err = r.skipElementStep(s, f, output); err != nil && err != io.EOF {
				return err
			}
		}
		if err = s.nextTimeStep(); err != nil {
			return err
		}
	}
	if _, err = s.requireLine("description"); err != nil {
		return err
	}
	width := f.kind.width()

	line, err := s.ReadLine()
	for err == nil && strings.HasPrefix(line, "part") {
		var id int
		var ds mesh.DataSet
		if id, ds, err = r.partBlock(s, line, output); err != nil {
			return err
		}
		if line, err = s.requireLine("part type"); err != nil {
			return err
		}
		n := ds.NumberOfCells()
		var arr *mesh.FieldArray
		if arr, err = f.array(ds.CellData(), n); err != nil {
			return errors.Wrap(err, s.name)
		}

		if strings.HasPrefix(line, "block") {
			var values []float32
			if values, err = s.ReadFloats(n * width); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				f.store(arr, i, values, i)
			}
			f.attach(ds.CellData(), arr)
			line, err = s.ReadLine()
			continue
		}

		line, err = r.walkElementSections(s, id, line, func(ids []int) error {
			values, err := s.ReadFloats(len(ids) * width)
			if err != nil {
				return err
			}
			for i, cellID := range ids {
				f.store(arr, cellID, values, i)
			}
			return nil
		})
		f.attach(ds.CellData(), arr)
	}
	return ignoreEOF(err)
}

func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

// ReadScalarsPerNode decodes component of a numComponents scalar variable
// given at the points. measured selects the measured particle block.
func (r *Reader) ReadScalarsPerNode(fileName, description string, timeStep int, output *mesh.MultiBlock,
	measured bool, numComponents, component int) error {
	return r.readPerNode(fileName, timeStep, output, measured, &field{
		kind: scalarField, name: description, numComponents: numComponents, component: component,
	})
}

// ReadScalarsPerElement decodes component of a numComponents scalar
// variable given per cell
func (r *Reader) ReadScalarsPerElement(fileName, description string, timeStep int, output *mesh.MultiBlock,
	numComponents, component int) error {
	return r.readPerElement(fileName, timeStep, output, &field{
		kind: scalarField, name: description, numComponents: numComponents, component: component,
	})
}

func (r *Reader) ReadVectorsPerNode(fileName, description string, timeStep int, output *mesh.MultiBlock,
	measured bool) error {
	return r.readPerNode(fileName, timeStep, output, measured, &field{kind: vectorField, name: description})
}

func (r *Reader) ReadVectorsPerElement(fileName, description string, timeStep int, output *mesh.MultiBlock) error {
	return r.readPerElement(fileName, timeStep, output, &field{kind: vectorField, name: description})
}

// ReadTensorsPerNode decodes a symmetric tensor variable given at the
// points. Tensors are attached but never made active.
func (r *Reader) ReadTensorsPerNode(fileName, description string, timeStep int, output *mesh.MultiBlock) error {
	return r.readPerNode(fileName, timeStep, output, false, &field{kind: tensorField, name: description})
}

func (r *Reader) ReadTensorsPerElement(fileName, description string, timeStep int, output *mesh.MultiBlock) error {
	return r.readPerElement(fileName, timeStep, output, &field{kind: tensorField, name: description})
}
