package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScratchGrowAndReuse(t *testing.T) {
	require := require.New(t)

	s := NewScratch(16)
	b := s.Bytes(8)
	require.Len(b, 8)
	require.Equal(16, cap(s.B))

	b = s.Bytes(100)
	require.Len(b, 100)
	require.GreaterOrEqual(cap(s.B), 100)

	capBefore := cap(s.B)
	s.Release()
	require.Len(s.B, 0)
	require.Equal(capBefore, cap(s.B), "release keeps small buffers")

	ints := s.Int32s(5)
	require.Len(ints, 5)
	floats := s.Float32s(7)
	require.Len(floats, 7)
	require.Equal(cap(s.B)+4*cap(s.I)+4*cap(s.F), s.Cap())
}

func TestScratchReleaseDropsHugeBuffers(t *testing.T) {
	s := NewScratch(0)
	s.Bytes(ScratchMaxThreshold + 1)
	s.Release()
	require.Nil(t, s.B)
}
