package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ensight6/InputParameters"
	"github.com/notargets/ensight6/internal/logging"
	"github.com/notargets/ensight6/mesh/readers"
)

func decodeSample(t *testing.T, order readers.ByteOrder, ext string) string {
	t.Helper()
	caseFile, err := WriteSample(t.TempDir(), order, ext)
	require.NoError(t, err)
	cp, err := InputParameters.Load(caseFile)
	require.NoError(t, err)

	var out, logBuf bytes.Buffer
	require.NoError(t, DecodeCase(cp, &out, logging.NewLoggerTo(&logBuf)))
	return out.String()
}

func fingerprint(out string) string {
	i := strings.Index(out, "Fingerprint: ")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(out[i:])
}

func TestDecodeSample(t *testing.T) {
	little := decodeSample(t, readers.LittleEndian, "")
	assert.Contains(t, little, "Byte order: little-endian")
	assert.Contains(t, little, `Block 0 [unstructured] "solid"`)
	assert.Contains(t, little, "Hex: 1")
	assert.Contains(t, little, "Prism: 1")
	assert.Contains(t, little, "Boundary faces: 9")
	assert.Contains(t, little, `Block 1 [structured] "floor"`)
	assert.Contains(t, little, "Blanked points: 1")
	assert.Contains(t, little, `Point field "pressure" (1 comp): min 1 max 3 mean 1.8`)
	assert.Contains(t, little, `Cell field "velocity" (3 comp)`)

	big := decodeSample(t, readers.BigEndian, "")
	assert.Contains(t, big, "Byte order: big-endian")
	require.NotEmpty(t, fingerprint(little))
	assert.Equal(t, fingerprint(little), fingerprint(big), "byte order does not change the decoded case")

	for _, ext := range []string{"gz", "zst", "lz4"} {
		assert.Equal(t, fingerprint(little), fingerprint(decodeSample(t, readers.LittleEndian, ext)), ext)
	}
}

func TestDecodeCaseReportsGuessedByteOrder(t *testing.T) {
	// a point count whose bytes read the same in either order
	const n = 0x00010100
	dir := t.TempDir()
	require.NoError(t, readers.WriteFile(filepath.Join(dir, "cloud.geo"), readers.LittleEndian, false,
		func(e *readers.Encoder) error {
			return e.EncodeGeometry(&readers.Geometry{
				Coords: make([]float32, 3*n),
				Parts: []readers.GeometryPart{{Number: 1, Description: "cloud", Sections: []readers.ElementSection{
					{Type: readers.Point, Connectivity: []int{1}},
				}}},
			})
		}))
	require.NoError(t, readers.WriteFile(filepath.Join(dir, "cloud.scl"), readers.LittleEndian, false,
		func(e *readers.Encoder) error {
			return e.EncodeField(false, &readers.Field{Description: "temperature", Flat: make([]float32, n)})
		}))

	cp := &InputParameters.CaseParameters{
		FilePath:     dir,
		GeometryFile: "cloud.geo",
		TimeStep:     1,
		Variables:    []InputParameters.Variable{{Name: "t", Type: "scalar per node", File: "cloud.scl"}},
	}
	var out, logBuf bytes.Buffer
	require.NoError(t, DecodeCase(cp, &out, logging.NewLoggerTo(&logBuf)))
	assert.Contains(t, out.String(), "Byte order: little-endian (ambiguous)")
	assert.Contains(t, logBuf.String(), "ambiguous")
}

func TestDecodeCaseErrors(t *testing.T) {
	dir := t.TempDir()
	caseFile, err := WriteSample(dir, readers.LittleEndian, "")
	require.NoError(t, err)
	cp, err := InputParameters.Load(caseFile)
	require.NoError(t, err)

	var out, logBuf bytes.Buffer
	cp.Variables = append(cp.Variables, InputParameters.Variable{
		Name: "missing", Type: "scalar per element", File: "missing.escl",
	})
	err = DecodeCase(cp, &out, logging.NewLoggerTo(&logBuf))
	assert.ErrorContains(t, err, `variable "missing"`)

	cp.GeometryFile = filepath.Join(dir, "sample.scl")
	assert.ErrorIs(t, DecodeCase(cp, &out, logging.NewLoggerTo(&logBuf)), readers.ErrNotBinary)
}

func TestProcessDecodeInput(t *testing.T) {
	_, err := processDecodeInput(DecodeCmd)
	assert.Error(t, err)

	require.NoError(t, DecodeCmd.Flags().Set("gridFile", "engine.geo"))
	require.NoError(t, DecodeCmd.Flags().Set("timeStep", "3"))
	require.NoError(t, DecodeCmd.Flags().Set("byte-order", "big"))
	defer func() {
		_ = DecodeCmd.Flags().Set("gridFile", "")
		_ = DecodeCmd.Flags().Set("timeStep", "1")
		_ = DecodeCmd.Flags().Set("byte-order", "")
	}()
	cp, err := processDecodeInput(DecodeCmd)
	require.NoError(t, err)
	assert.Equal(t, "engine.geo", cp.GeometryFile)
	assert.Equal(t, 3, cp.TimeStep)
	assert.Equal(t, "big", cp.ByteOrder)
}
