/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/notargets/ensight6/InputParameters"
	"github.com/notargets/ensight6/mesh/readers"
)

// SampleCmd represents the sample command
var SampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a small EnSight6 binary case to try the decoder on",
	Long: `
Writes a geometry file with a hexahedron, a wedge and a blanked structured
block, two variable files and the YAML case file listing them.

ensight6 sample -o /tmp/case && ensight6 decode -I /tmp/case/sample.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("outputDir")
		bo, _ := cmd.Flags().GetString("byte-order")
		ext, _ := cmd.Flags().GetString("compress")
		order, err := readers.ParseByteOrder(bo)
		if err == nil && order == readers.UnknownEndian {
			order = readers.LittleEndian
		}
		var caseFile string
		if err == nil {
			caseFile, err = WriteSample(dir, order, ext)
		}
		if err != nil {
			newLogger().Fatalf("%v", err)
		}
		fmt.Println(caseFile)
	},
}

func init() {
	rootCmd.AddCommand(SampleCmd)
	SampleCmd.Flags().StringP("outputDir", "o", ".", "directory to write the case into")
	SampleCmd.Flags().String("byte-order", "little", "little or big endian")
	SampleCmd.Flags().String("compress", "", "compress the geometry: gz, zst or lz4")
}

var sampleGeometry = &readers.Geometry{
	Description: [2]string{"sample case", "hexahedron, wedge and a structured block"},
	NodeIDs:     "given",
	ElementIDs:  "off",
	PointIDs:    []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	Coords: []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 1,
		1, 1, 1,
		0, 1, 1,
		0.5, 0, 1.5,
		0.5, 1, 1.5,
	},
	Parts: []readers.GeometryPart{
		{Number: 1, Description: "solid", Sections: []readers.ElementSection{
			{Type: readers.Hexa8, Connectivity: []int{1, 2, 3, 4, 5, 6, 7, 8}},
			{Type: readers.Penta6, Connectivity: []int{5, 6, 9, 8, 7, 10}},
		}},
		{Number: 2, Description: "floor", Dims: [3]int{3, 2, 1},
			Coords: []float32{
				0, 1, 2, 0, 1, 2, // x
				0, 0, 0, 1, 1, 1, // y
				-1, -1, -1, -1, -1, -1, // z
			},
			IBlank: []int{1, 1, 1, 1, 1, 0},
		},
	},
}

var samplePressure = &readers.Field{
	Description: "pressure",
	Flat:        []float32{1, 1, 1, 1, 2, 2, 2, 2, 3, 3},
	Parts:       []readers.FieldPart{{Number: 2, Block: []float32{0, 0.5, 1, 0, 0.5, 1}}},
}

var sampleVelocity = &readers.Field{
	Description: "velocity",
	Parts: []readers.FieldPart{
		{Number: 1, Sections: []readers.FieldSection{
			{Type: readers.Hexa8, Values: []float32{1, 0, 0}},
			{Type: readers.Penta6, Values: []float32{0, 0, 1}},
		}},
		{Number: 2, Block: []float32{0, 1, 0, 0, 1, 0}},
	},
}

// WriteSample writes the sample case into dir and returns the case file.
// ext optionally compresses the geometry file.
func WriteSample(dir string, order readers.ByteOrder, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating sample directory")
	}
	geometryFile := "sample.geo"
	if ext != "" {
		geometryFile += "." + ext
	}
	cp := &InputParameters.CaseParameters{
		Title:        "Sample Case",
		FilePath:     ".",
		GeometryFile: geometryFile,
		TimeStep:     1,
		Variables: []InputParameters.Variable{
			{Name: "pressure", Type: "scalar per node", File: "sample.scl"},
			{Name: "velocity", Type: "vector per element", File: "sample.evec"},
		},
	}

	writes := []struct {
		name string
		fn   func(e *readers.Encoder) error
	}{
		{geometryFile, func(e *readers.Encoder) error { return e.EncodeGeometry(sampleGeometry) }},
		{"sample.scl", func(e *readers.Encoder) error { return e.EncodeField(false, samplePressure) }},
		{"sample.evec", func(e *readers.Encoder) error { return e.EncodeField(false, sampleVelocity) }},
	}
	for _, w := range writes {
		if err := readers.WriteFile(filepath.Join(dir, w.name), order, false, w.fn); err != nil {
			return "", errors.Wrapf(err, "writing %s", w.name)
		}
	}

	data, err := yaml.Marshal(cp)
	if err != nil {
		return "", errors.Wrap(err, "encoding sample case")
	}
	caseFile := filepath.Join(dir, "sample.yaml")
	if err = os.WriteFile(caseFile, data, 0644); err != nil {
		return "", errors.Wrap(err, "writing sample case")
	}
	return caseFile, nil
}
