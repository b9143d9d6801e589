package pool

// Default and retention limits for Scratch buffers.
const (
	ScratchDefaultSize  = 1024 * 16        // 16KiB
	ScratchMaxThreshold = 1024 * 1024 * 64 // 64MiB
)

// Scratch is a growable working buffer reused for every numeric block of
// a decode. Views returned by Bytes, Int32s and Float32s stay valid until
// the next call for the same view or until Release.
type Scratch struct {
	B []byte
	I []int32
	F []float32
}

// NewScratch creates a scratch buffer with defaultSize bytes preallocated.
func NewScratch(defaultSize int) *Scratch {
	return &Scratch{B: make([]byte, 0, defaultSize)}
}

// Bytes returns a byte view of length n, growing the buffer if necessary.
func (s *Scratch) Bytes(n int) []byte {
	if cap(s.B) < n {
		s.B = make([]byte, n, growCap(cap(s.B), n))
	}
	s.B = s.B[:n]
	return s.B
}

// Int32s returns an int32 view of length n.
func (s *Scratch) Int32s(n int) []int32 {
	if cap(s.I) < n {
		s.I = make([]int32, n, growCap(cap(s.I), n))
	}
	s.I = s.I[:n]
	return s.I
}

// Float32s returns a float32 view of length n.
func (s *Scratch) Float32s(n int) []float32 {
	if cap(s.F) < n {
		s.F = make([]float32, n, growCap(cap(s.F), n))
	}
	s.F = s.F[:n]
	return s.F
}

// Cap returns the retained capacity in bytes across all views.
func (s *Scratch) Cap() int {
	return cap(s.B) + 4*cap(s.I) + 4*cap(s.F)
}

// Release empties the views. Storage above ScratchMaxThreshold is dropped
// so that one huge block does not pin memory for the life of the reader.
func (s *Scratch) Release() {
	s.B = s.B[:0]
	s.I = s.I[:0]
	s.F = s.F[:0]
	if cap(s.B) > ScratchMaxThreshold {
		s.B = nil
	}
	if 4*cap(s.I) > ScratchMaxThreshold {
		s.I = nil
	}
	if 4*cap(s.F) > ScratchMaxThreshold {
		s.F = nil
	}
}

func growCap(old, need int) int {
	c := old * 2
	if c < need {
		c = need
	}
	return c
}
