package readers

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/ensight6/mesh"
)

type nodeIDMode int

const (
	noNodeIDs nodeIDMode = iota
	nodeIDsGiven
	nodeIDsIgnored
)

func parseIDMode(line string) nodeIDMode {
	switch token(line, 2) {
	case "given":
		return nodeIDsGiven
	case "ignore":
		return nodeIDsIgnored
	}
	return noNodeIDs
}

// geometrySink receives the sections of one time step. buildSink turns
// them into output blocks, skipSink seeks over them.
type geometrySink interface {
	points(s *Session, n int, ids nodeIDMode) error
	unstructuredPart(s *Session, raw int, name string) error
	elements(s *Session, et ElementType, count int) error
	structuredPart(s *Session, raw int, name string, dims [3]int, iblanked bool) error
}

// walkTimeStep decodes one time step, starting at the description lines
func walkTimeStep(s *Session, sink geometrySink) error {
	for i := 0; i < 2; i++ {
		if _, err := s.requireLine("description"); err != nil {
			return err
		}
	}
	line, err := s.requireLine("node id mode")
	if err != nil {
		return err
	}
	ids := parseIDMode(line)
	if line, err = s.requireLine("element id mode"); err != nil {
		return err
	}
	s.elementIDsListed = parseIDMode(line) != noNodeIDs
	if _, err = s.requireLine("coordinates"); err != nil {
		return err
	}
	n, err := s.ReadInt()
	if err != nil {
		return err
	}
	if err = s.CheckCount(n, "point"); err != nil {
		return err
	}
	if err = sink.points(s, n, ids); err != nil {
		return err
	}

	line, err = s.ReadLine()
	for err == nil && strings.HasPrefix(line, "part") {
		line, err = walkPart(s, sink, line)
	}
	if err == io.EOF {
		return nil
	}
	return err
}

// walkPart decodes one part and returns the first line after it
func walkPart(s *Session, sink geometrySink, line string) (string, error) {
	var raw int
	if _, err := fmt.Sscanf(line, "part %d", &raw); err != nil {
		return "", errors.Wrapf(ErrInvalidPart, "%s: %q", s.name, line)
	}
	raw-- // 1-based in the file
	name, err := s.requireLine("part description")
	if err != nil {
		return "", err
	}
	if line, err = s.requireLine("part type"); err != nil {
		return "", err
	}
	if strings.HasPrefix(line, "block") {
		return walkStructured(s, sink, raw, name, token(line, 1) == "iblanked")
	}
	return walkUnstructured(s, sink, raw, name, line)
}

func walkUnstructured(s *Session, sink geometrySink, raw int, name, line string) (string, error) {
	if err := sink.unstructuredPart(s, raw, name); err != nil {
		return "", err
	}
	for {
		if strings.HasPrefix(line, "part") || strings.HasPrefix(line, endTimeStep) {
			return line, nil
		}
		if et, ok := LookupElementType(line); ok {
			count, err := s.ReadInt()
			if err != nil {
				return "", err
			}
			if err = s.CheckCount(count, et.String()); err != nil {
				return "", err
			}
			if et.HigherOrder() {
				s.noteOnce("higher-order", "mid-side nodes of %s elements are dropped", et)
			}
			if s.elementIDsListed {
				if err = s.Skip(4 * int64(count)); err != nil {
					return "", err
				}
			}
			if err = sink.elements(s, et, count); err != nil {
				return "", err
			}
		}
		var err error
		if line, err = s.ReadLine(); err != nil {
			return "", err
		}
	}
}

func walkStructured(s *Session, sink geometrySink, raw int, name string, iblanked bool) (string, error) {
	var dims [3]int
	limit := s.size / 4
	np := int64(1)
	for i := range dims {
		d, err := s.ReadInt()
		if err != nil {
			return "", err
		}
		if err = s.CheckCount(d, "structured dimension"); err != nil {
			return "", err
		}
		if d > 0 && np > limit/int64(d) {
			return "", errors.Wrapf(ErrInvalidCount, "%s: structured part %d is larger than the file", s.name, raw+1)
		}
		np *= int64(d)
		dims[i] = d
	}
	if err := sink.structuredPart(s, raw, name, dims, iblanked); err != nil {
		return "", err
	}
	return s.ReadLine()
}

// buildSink materializes a time step into a MultiBlock
type buildSink struct {
	r      *Reader
	output *mesh.MultiBlock

	nodeIDs   []int         // file node id - 1 to point index, -1 when unused
	sparseIDs map[int32]int // file node id to point index, for very sparse ids
	grid      *mesh.UnstructuredGrid
	index     int // position of grid in the unstructured part list
}

func (b *buildSink) points(s *Session, n int, ids nodeIDMode) error {
	switch ids {
	case nodeIDsGiven:
		raw, err := s.ReadInts(n)
		if err != nil {
			return err
		}
		var maxID int32
		for _, id := range raw {
			if id < 1 {
				return errors.Wrapf(ErrNodeID, "%s: node id %d", s.name, id)
			}
			maxID = max(maxID, id)
		}
		b.nodeIDs, b.sparseIDs = nil, nil
		if int64(maxID) > 4*s.size {
			b.sparseIDs = make(map[int32]int, len(raw))
			for i, id := range raw {
				b.sparseIDs[id] = i
			}
			s.log.Infof("%s: node ids up to %d, using a sparse table", s.name, maxID)
			break
		}
		b.nodeIDs = make([]int, maxID)
		for i := range b.nodeIDs {
			b.nodeIDs[i] = -1
		}
		for i, id := range raw {
			b.nodeIDs[id-1] = i
		}
	case nodeIDsIgnored:
		if err := s.Skip(4 * int64(n)); err != nil {
			return err
		}
	}
	coords, err := s.ReadFloats(3 * n)
	if err != nil {
		return err
	}
	b.r.points = &mesh.Points{Coords: append([]float32(nil), coords...)}
	return nil
}

func (b *buildSink) unstructuredPart(s *Session, raw int, name string) error {
	id := b.r.parts.Resolve(raw)
	grid, _ := b.output.Unstructured(id)
	grid.SetName(name)
	grid.ResetCells()
	grid.Points = b.r.points
	b.grid = grid
	b.index = b.r.unstructuredParts.Insert(id)
	b.r.cellIDs.Reset(b.index)
	b.r.numberOfGeometryParts++
	s.log.Infof("%s: unstructured part %d %q is block %d", s.name, raw+1, name, id)
	return nil
}

// pointIndex maps a 1-based file node reference to a point index
func (b *buildSink) pointIndex(s *Session, ref int) (int, error) {
	idx := ref - 1
	if b.sparseIDs != nil {
		if ref >= 1 && ref <= math.MaxInt32 {
			if i, ok := b.sparseIDs[int32(ref)]; ok {
				return i, nil
			}
		}
		return 0, errors.Wrapf(ErrNodeID, "%s: node id %d was not listed", s.name, ref)
	}
	if b.nodeIDs != nil {
		if idx < 0 || idx >= len(b.nodeIDs) || b.nodeIDs[idx] < 0 {
			return 0, errors.Wrapf(ErrNodeID, "%s: node id %d was not listed", s.name, ref)
		}
		return b.nodeIDs[idx], nil
	}
	if idx < 0 || idx >= b.r.points.Len() {
		return 0, errors.Wrapf(ErrNodeID, "%s: node %d of %d", s.name, ref, b.r.points.Len())
	}
	return idx, nil
}

func (b *buildSink) elements(s *Session, et ElementType, count int) error {
	nodes := et.NodesPerElement()
	conn, err := s.ReadInts(count * nodes)
	if err != nil {
		return err
	}
	shape := et.Shape()
	for e := 0; e < count; e++ {
		verts := et.Vertices(conn[e*nodes : (e+1)*nodes])
		for k, ref := range verts {
			if verts[k], err = b.pointIndex(s, ref); err != nil {
				return err
			}
		}
		b.r.cellIDs.Append(b.index, et, b.grid.InsertNextCell(shape, verts))
	}
	return nil
}

func (b *buildSink) structuredPart(s *Session, raw int, name string, dims [3]int, iblanked bool) error {
	id := b.r.parts.Resolve(raw)
	grid, _ := b.output.Structured(id)
	grid.SetName(name)
	grid.SetDimensions(dims)
	b.r.numberOfGeometryParts++
	s.log.Infof("%s: structured part %d %q is block %d", s.name, raw+1, name, id)

	np := dims[0] * dims[1] * dims[2]
	coords, err := s.ReadFloats(3 * np)
	if err != nil {
		return err
	}
	grid.Points = mesh.NewPoints(np)
	for i := 0; i < np; i++ {
		grid.Points.SetPoint(i, coords[i], coords[np+i], coords[2*np+i])
	}
	if !iblanked {
		return nil
	}
	flags, err := s.ReadInts(np)
	if err != nil {
		return err
	}
	for i, f := range flags {
		if f == 0 {
			grid.BlankPoint(i)
		}
	}
	return nil
}

// skipSink walks a time step with seeks only
type skipSink struct{}

func (skipSink) points(s *Session, n int, ids nodeIDMode) error {
	width := int64(3)
	if ids != noNodeIDs {
		width++
	}
	return s.Skip(width * 4 * int64(n))
}

func (skipSink) unstructuredPart(*Session, int, string) error { return nil }

func (skipSink) elements(s *Session, et ElementType, count int) error {
	return s.Skip(4 * int64(count) * int64(et.NodesPerElement()))
}

func (skipSink) structuredPart(s *Session, _ int, _ string, dims [3]int, iblanked bool) error {
	width := int64(3)
	if iblanked {
		width++
	}
	return s.Skip(width * 4 * int64(dims[0]) * int64(dims[1]) * int64(dims[2]))
}

// skipTimeStep moves past the next complete time step of a file set
func skipTimeStep(s *Session) error {
	if err := s.nextTimeStep(); err != nil {
		return err
	}
	return walkTimeStep(s, skipSink{})
}

// ReadGeometryFile decodes the geometry of timeStep (1-based, used with
// file sets) into output. The node id table and cell id lists built here
// are used by the field decoders that follow.
func (r *Reader) ReadGeometryFile(fileName string, timeStep int, output *mesh.MultiBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.open(fileName, false)
	if err != nil {
		return err
	}
	defer r.finish(s)

	line, err := s.ReadLine()
	if err != nil && err != io.EOF {
		return err
	}
	if !isBinaryHeader(line) {
		return errors.Wrapf(ErrNotBinary, "%s: header %q", s.name, line)
	}
	if r.UseFileSets {
		for i := 0; i < timeStep-1; i++ {
			if err = skipTimeStep(s); err != nil {
				return errors.Wrapf(err, "skipping time step %d", i+1)
			}
		}
		if err = s.scanTo(beginTimeStep, line); err != nil {
			return err
		}
	}

	r.numberOfGeometryParts = 0
	sink := &buildSink{r: r, output: output}
	return walkTimeStep(s, sink)
}
