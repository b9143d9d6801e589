package readers

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/ensight6/internal/logging"
	"github.com/notargets/ensight6/internal/pool"
	"github.com/notargets/ensight6/internal/source"
)

// LineLength is the width of every keyword and description record
const LineLength = 80

var (
	ErrNotBinary          = errors.New("not a binary EnSight6 file")
	ErrByteOrder          = errors.New("byte order could not be determined")
	ErrAmbiguousByteOrder = errors.New("byte order is ambiguous")
	ErrInvalidCount       = errors.New("invalid count")
	ErrReadFailed         = errors.New("read failed")
	ErrInvalidElementType = errors.New("invalid element type")
	ErrNoTimeStep         = errors.New("time step not found")
	ErrNodeID             = errors.New("node id out of range")
	ErrNoOutput           = errors.New("output block missing")
	ErrInvalidPart        = errors.New("invalid part line")
)

// ByteOrder of the numeric blocks in a file
type ByteOrder int

const (
	UnknownEndian ByteOrder = iota
	LittleEndian
	BigEndian
)

func (o ByteOrder) String() string {
	return [...]string{"unknown", "little-endian", "big-endian"}[o]
}

// EndianEngine decodes and appends fixed-width values in one byte order
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Engine returns the codec for o. Unknown decodes big-endian.
func (o ByteOrder) Engine() EndianEngine {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Opposite returns the other concrete byte order
func (o ByteOrder) Opposite() ByteOrder {
	if o == LittleEndian {
		return BigEndian
	}
	return LittleEndian
}

// ParseByteOrder accepts "little", "big" or "" (detect)
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "detect":
		return UnknownEndian, nil
	case "little", "little-endian", "le":
		return LittleEndian, nil
	case "big", "big-endian", "be":
		return BigEndian, nil
	}
	return UnknownEndian, errors.Errorf("unknown byte order %q", s)
}

// DetectByteOrder interprets the first integer of a file both ways. A
// reading is plausible when it is non-negative and fits in fileSize as a
// count of 4 byte words. When both readings are plausible the larger one
// wins and ambiguous is set. Two zero readings leave the order unknown.
func DetectByteOrder(word [4]byte, fileSize int64) (order ByteOrder, value int, ambiguous bool, err error) {
	le := int64(int32(binary.LittleEndian.Uint32(word[:])))
	be := int64(int32(binary.BigEndian.Uint32(word[:])))
	plausible := func(v int64) bool { return v >= 0 && v*4 <= fileSize }
	leOK, beOK := plausible(le), plausible(be)

	switch {
	case leOK && beOK:
		if le == 0 && be == 0 {
			return UnknownEndian, 0, false, nil
		}
		if le == be {
			// palindromic word, either order reads the same
			return LittleEndian, int(le), true, nil
		}
		if le > be {
			return LittleEndian, int(le), true, nil
		}
		return BigEndian, int(be), true, nil
	case leOK:
		return LittleEndian, int(le), false, nil
	case beOK:
		return BigEndian, int(be), false, nil
	}
	return UnknownEndian, 0, false, errors.Wrapf(ErrByteOrder,
		"first integer reads %d (little) or %d (big), file is %d bytes", le, be, fileSize)
}

// Session is one open file being decoded. It owns the stream, the cursor
// and the byte order found for this file.
type Session struct {
	name      string
	file      source.File
	size      int64
	order     ByteOrder
	ambiguous bool
	strict    bool
	scratch   *pool.Scratch
	log       *logging.Logger
	line      [LineLength]byte
	word      [4]byte
	notices   map[string]bool

	// element ids precede every connectivity block in this file
	elementIDsListed bool
}

func newSession(name string, f source.File, size int64, order ByteOrder, strict bool,
	scratch *pool.Scratch, log *logging.Logger) *Session {
	return &Session{
		name:    name,
		file:    f,
		size:    size,
		order:   order,
		strict:  strict,
		scratch: scratch,
		log:     log,
		notices: make(map[string]bool),
	}
}

func openSession(name string, order ByteOrder, strict bool, scratch *pool.Scratch, log *logging.Logger) (*Session, error) {
	f, size, err := source.Open(name)
	if err != nil {
		return nil, err
	}
	return newSession(name, f, size, order, strict, scratch, log), nil
}

// Close returns the scratch buffer and closes the stream
func (s *Session) Close() error {
	s.scratch.Release()
	return s.file.Close()
}

func (s *Session) Name() string         { return s.name }
func (s *Session) Size() int64          { return s.size }
func (s *Session) ByteOrder() ByteOrder { return s.order }
func (s *Session) Ambiguous() bool      { return s.ambiguous }

// noteOnce logs a warning the first time key is seen in this session
func (s *Session) noteOnce(key, format string, v ...any) {
	if s.notices[key] {
		return
	}
	s.notices[key] = true
	s.log.Warnf("%s: "+format, append([]any{s.name}, v...)...)
}

// ReadLine reads one 80 byte record. The text stops at the first NUL and
// trailing blanks are dropped. A short read is io.EOF.
func (s *Session) ReadLine() (string, error) {
	if _, err := io.ReadFull(s.file, s.line[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", io.EOF
		}
		return "", errors.Wrapf(ErrReadFailed, "%s: %v", s.name, err)
	}
	b := s.line[:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " \t\r\n"), nil
}

// requireLine is ReadLine where the end of the file is an error
func (s *Session) requireLine(what string) (string, error) {
	line, err := s.ReadLine()
	if err == io.EOF {
		return "", errors.Wrapf(ErrReadFailed, "%s: unexpected end of file reading %s", s.name, what)
	}
	return line, err
}

// ReadInt reads one integer. The first integer read while the byte order
// is unknown decides it.
func (s *Session) ReadInt() (int, error) {
	if _, err := io.ReadFull(s.file, s.word[:]); err != nil {
		return 0, errors.Wrapf(ErrReadFailed, "%s: reading integer: %v", s.name, err)
	}
	if s.order != UnknownEndian {
		return int(int32(s.order.Engine().Uint32(s.word[:]))), nil
	}
	order, v, ambiguous, err := DetectByteOrder(s.word, s.size)
	if err != nil {
		return 0, errors.Wrap(err, s.name)
	}
	if ambiguous {
		s.ambiguous = true
		if s.strict {
			return 0, errors.Wrapf(ErrAmbiguousByteOrder, "%s: first integer could be %d in either order", s.name, v)
		}
		s.noteOnce("byteorder", "byte order is ambiguous, assuming %s", order)
	}
	s.order = order
	return v, nil
}

// readBlock reads n words. Blocks longer than the rest of the file fail
// before any buffer is grown.
func (s *Session) readBlock(n int, what string) ([]byte, error) {
	pos, err := s.Tell()
	if err != nil {
		return nil, err
	}
	if left := s.size - pos; 4*int64(n) > left {
		return nil, errors.Wrapf(ErrReadFailed, "%s: %d %s need %d bytes, %d left", s.name, n, what, 4*int64(n), left)
	}
	b := s.scratch.Bytes(4 * n)
	if _, err := io.ReadFull(s.file, b); err != nil {
		return nil, errors.Wrapf(ErrReadFailed, "%s: reading %d %s: %v", s.name, n, what, err)
	}
	return b, nil
}

// ReadInts reads n integers into the scratch buffer. The result is valid
// until the next ReadInts on this session.
func (s *Session) ReadInts(n int) ([]int32, error) {
	if n <= 0 {
		return nil, nil
	}
	b, err := s.readBlock(n, "integers")
	if err != nil {
		return nil, err
	}
	engine := s.order.Engine()
	out := s.scratch.Int32s(n)
	for i := range out {
		out[i] = int32(engine.Uint32(b[4*i:]))
	}
	return out, nil
}

// ReadFloats reads n floats into the scratch buffer. The result is valid
// until the next ReadFloats on this session.
func (s *Session) ReadFloats(n int) ([]float32, error) {
	if n <= 0 {
		return nil, nil
	}
	b, err := s.readBlock(n, "floats")
	if err != nil {
		return nil, err
	}
	engine := s.order.Engine()
	out := s.scratch.Float32s(n)
	for i := range out {
		out[i] = math.Float32frombits(engine.Uint32(b[4*i:]))
	}
	return out, nil
}

// Skip seeks forward nbytes without reading
func (s *Session) Skip(nbytes int64) error {
	if nbytes <= 0 {
		return nil
	}
	pos, err := s.Tell()
	if err != nil {
		return err
	}
	if pos+nbytes > s.size {
		return errors.Wrapf(ErrReadFailed, "%s: skipping %d bytes at offset %d passes the end of the file",
			s.name, nbytes, pos)
	}
	_, err = s.file.Seek(nbytes, io.SeekCurrent)
	return errors.Wrap(err, s.name)
}

func (s *Session) Tell() (int64, error) {
	pos, err := s.file.Seek(0, io.SeekCurrent)
	return pos, errors.Wrap(err, s.name)
}

func (s *Session) SeekTo(pos int64) error {
	_, err := s.file.Seek(pos, io.SeekStart)
	return errors.Wrap(err, s.name)
}

// CheckCount rejects counts that are negative or cannot fit in the file
func (s *Session) CheckCount(n int, what string) error {
	if n < 0 || int64(n)*4 > s.size {
		return errors.Wrapf(ErrInvalidCount, "%s: %s count %d for a %d byte file", s.name, what, n, s.size)
	}
	return nil
}

// scanTo reads lines until one starts with prefix. line is checked first.
func (s *Session) scanTo(prefix, line string) error {
	for !strings.HasPrefix(line, prefix) {
		var err error
		if line, err = s.ReadLine(); err != nil {
			if err == io.EOF {
				return errors.Wrapf(ErrNoTimeStep, "%s: no %q marker", s.name, prefix)
			}
			return err
		}
	}
	return nil
}

// nextTimeStep positions the stream just after the next BEGIN TIME STEP
func (s *Session) nextTimeStep() error {
	return s.scanTo(beginTimeStep, "")
}

const (
	beginTimeStep = "BEGIN TIME STEP"
	endTimeStep   = "END TIME STEP"
)

func isBinaryHeader(line string) bool {
	f := strings.Fields(line)
	return len(f) >= 2 && (f[1] == "Binary" || f[1] == "binary")
}

// token returns the i'th blank separated word of line, or ""
func token(line string, i int) string {
	f := strings.Fields(line)
	if i < len(f) {
		return f[i]
	}
	return ""
}
