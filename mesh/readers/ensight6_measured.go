package readers

import (
	"io"

	"github.com/pkg/errors"

	"github.com/notargets/ensight6/mesh"
)

// readParticles reads the section after the description line: the
// "particle coordinates" line, a count, the particle ids and their xyz
func readParticles(s *Session) (ids []int, coords []float32, err error) {
	if _, err = s.requireLine("particle coordinates"); err != nil {
		return nil, nil, err
	}
	n, err := s.ReadInt()
	if err != nil {
		return nil, nil, err
	}
	if err = s.CheckCount(n, "particle"); err != nil {
		return nil, nil, err
	}
	raw, err := s.ReadInts(n)
	if err != nil {
		return nil, nil, err
	}
	ids = make([]int, n)
	for i, id := range raw {
		ids[i] = int(id)
	}
	xyz, err := s.ReadFloats(3 * n)
	if err != nil {
		return nil, nil, err
	}
	return ids, append([]float32(nil), xyz...), nil
}

func skipParticles(s *Session) error {
	if _, err := s.requireLine("particle coordinates"); err != nil {
		return err
	}
	n, err := s.ReadInt()
	if err != nil {
		return err
	}
	if err = s.CheckCount(n, "particle"); err != nil {
		return err
	}
	return s.Skip(16 * int64(n))
}

// ReadMeasuredGeometryFile decodes measured particles into a PolyData
// stored in the block after the geometry parts, one vertex per particle.
func (r *Reader) ReadMeasuredGeometryFile(fileName string, timeStep int, output *mesh.MultiBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.open(fileName, true)
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
			if err = s.nextTimeStep(); err != nil {
				return err
			}
			if _, err = s.requireLine("description"); err != nil {
				return err
			}
			if err = skipParticles(s); err != nil {
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
	ids, coords, err := readParticles(s)
	if err != nil {
		return err
	}

	n := len(ids)
	poly, _ := output.Poly(r.numberOfGeometryParts)
	poly.SetName("measured")
	poly.Points = &mesh.Points{Coords: coords}
	poly.Verts = make([]int, n)
	for i, id := range ids {
		if r.ParticleCoordinatesByIndex {
			poly.Verts[i] = i
			continue
		}
		if id < 1 || id > n {
			return errors.Wrapf(ErrNodeID, "%s: particle id %d of %d", s.name, id, n)
		}
		poly.Verts[i] = id - 1
	}
	return nil
}
