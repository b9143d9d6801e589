package InputParameters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ensight6/mesh/readers"
)

func TestCaseParameters(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
FilePath: data
GeometryFile: engine.geo
MeasuredFile: tracers.mgeo
UseFileSets: true
ByteOrder: big
Variables:
  - Name: pressure
    Type: scalar per node
    File: engine.scl
  - Name: impedance
    Type: complex scalar per element
    Files: [engine.re, engine.im]
  - Name: speed
    Type: scalar per measured node
    File: tracers.mscl
  - Name: stress
    Type: tensor symm per element
    File: engine.ten
`)
	var input CaseParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Test Case", input.Title)
	assert.Equal(t, 1, input.TimeStep, "time step defaults to the first")
	require.Len(t, input.Variables, 4)
	assert.Equal(t, []string{"engine.re", "engine.im"}, input.Variables[1].ComponentFiles())

	kinds := make([]VariableKind, len(input.Variables))
	for i := range input.Variables {
		var err error
		kinds[i], err = input.Variables[i].Kind()
		require.NoError(t, err)
	}
	assert.Equal(t, VariableKind{Rank: 0}, kinds[0])
	assert.Equal(t, VariableKind{Rank: 0, PerElement: true}, kinds[1])
	assert.Equal(t, VariableKind{Rank: 0, Measured: true}, kinds[2])
	assert.Equal(t, VariableKind{Rank: 2, PerElement: true}, kinds[3])

	opts, err := input.Options()
	require.NoError(t, err)
	assert.Equal(t, readers.BigEndian, opts.ByteOrder)
	assert.True(t, opts.UseFileSets)

	var buf bytes.Buffer
	input.Print(&buf)
	assert.Contains(t, buf.String(), "[engine.geo]\t= GeometryFile")
	assert.Contains(t, buf.String(), "Variables[impedance] = complex scalar per element [engine.re engine.im]")
}

func TestCaseParametersErrors(t *testing.T) {
	var input CaseParameters
	assert.Error(t, input.Parse([]byte("Variables:\n  - Name: v\n    Type: matrix per node\n    File: v.dat\n")))
	assert.Error(t, input.Parse([]byte("Variables:\n  - Name: v\n    Type: scalar per node\n")))
	assert.Error(t, input.Parse([]byte("Variables:\n  - Name: v\n    Type: tensor per measured node\n    File: v\n")))

	input = CaseParameters{ByteOrder: "sideways"}
	_, err := input.Options()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.yaml")
	require.NoError(t, os.WriteFile(path, []byte("GeometryFile: a.geo\nFilePath: out\n"), 0644))
	input, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), input.FilePath)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
