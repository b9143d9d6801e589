package readers

import (
	"path/filepath"
	"sync"

	"github.com/notargets/ensight6/internal/logging"
	"github.com/notargets/ensight6/internal/pool"
	"github.com/notargets/ensight6/mesh"
)

// Options are the case level settings of a Reader
type Options struct {
	// FilePath is joined in front of every relative file name
	FilePath string
	// UseFileSets selects the time step from files holding several steps
	// between BEGIN TIME STEP and END TIME STEP markers
	UseFileSets bool
	// ParticleCoordinatesByIndex makes measured vertex i use point i
	// instead of the point named by the particle id
	ParticleCoordinatesByIndex bool
	// ByteOrder forces the byte order instead of detecting it
	ByteOrder ByteOrder
	// StrictByteOrder fails a decode whose byte order is ambiguous
	StrictByteOrder bool
	// Logger receives warnings, defaults to stderr
	Logger *logging.Logger
}

// Reader decodes the geometry and variable files of one EnSight6 binary
// case. Field files are scattered onto the topology of the last geometry
// decode, so calls on one Reader are serialized.
type Reader struct {
	Options

	mu      sync.Mutex
	log     *logging.Logger
	scratch *pool.Scratch

	parts             *PartRegistry
	unstructuredParts IDList
	cellIDs           *CellIDStore
	points            *mesh.Points // shared by all unstructured parts

	numberOfGeometryParts int
	byteOrder             ByteOrder
	ambiguous             bool
}

func NewReader(opts Options) *Reader {
	log := opts.Logger
	if log == nil {
		log = logging.NewLogger()
	}
	return &Reader{
		Options: opts,
		log:     log,
		scratch: pool.NewScratch(pool.ScratchDefaultSize),
		parts:   NewPartRegistry(),
		cellIDs: NewCellIDStore(),
	}
}

// ByteOrder returns the byte order of the last decoded file
func (r *Reader) ByteOrder() ByteOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byteOrder
}

// ByteOrderAmbiguous reports whether the byte order in use had to be
// guessed. Files that inherit a guessed order report it too.
func (r *Reader) ByteOrderAmbiguous() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ambiguous
}

// NumberOfGeometryParts is the number of parts of the last geometry
// decode. Measured particles are stored in the block with this id.
func (r *Reader) NumberOfGeometryParts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.numberOfGeometryParts
}

// CellIDs returns the output cell ids recorded for one element type of a
// block, in file order
func (r *Reader) CellIDs(blockID int, et ElementType) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.unstructuredParts.IndexOf(blockID)
	if idx < 0 {
		return nil
	}
	return append([]int(nil), r.cellIDs.Get(idx, et)...)
}

// BlockID returns the output block id of a 1-based file part number
func (r *Reader) BlockID(partNumber int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parts.Lookup(partNumber - 1)
}

func (r *Reader) fullPath(fileName string) string {
	if r.FilePath == "" || filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(r.FilePath, fileName)
}

// open starts a session. Geometry files begin from the forced order only,
// every other file inherits the order found by the last geometry decode.
func (r *Reader) open(fileName string, inherit bool) (*Session, error) {
	order := r.Options.ByteOrder
	inherited := order == UnknownEndian && inherit && r.byteOrder != UnknownEndian
	if inherited {
		order = r.byteOrder
	}
	r.log.Infof("opening %s (%s)", r.fullPath(fileName), order)
	s, err := openSession(r.fullPath(fileName), order, r.StrictByteOrder, r.scratch, r.log)
	if err != nil {
		return nil, err
	}
	// a guessed order stays guessed in every file that reuses it
	if inherited {
		s.ambiguous = r.ambiguous
	}
	return s, nil
}

// finish records what a session learnt about the byte order
func (r *Reader) finish(s *Session) {
	if s.order != UnknownEndian {
		r.byteOrder = s.order
	}
	r.ambiguous = s.ambiguous
	if err := s.Close(); err != nil {
		r.log.Warnf("closing %s: %v", s.name, err)
	}
}
