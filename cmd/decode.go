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
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/notargets/ensight6/InputParameters"
	"github.com/notargets/ensight6/internal/logging"
	"github.com/notargets/ensight6/mesh"
	"github.com/notargets/ensight6/mesh/readers"
)

// DecodeCmd represents the decode command
var DecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a geometry file or a whole case and print its statistics",
	Long: `
Decodes a geometry file (-F) or the files listed in a YAML case file (-I)
and prints per block statistics and a fingerprint of the decoded output.

ensight6 decode -F engine.geo -t 2 --file-sets`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		defer startProfile()()
		cp, err := processDecodeInput(cmd)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		log := newLogger()
		if err = DecodeCase(cp, os.Stdout, log); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(DecodeCmd)
	DecodeCmd.Flags().StringP("gridFile", "F", "", "EnSight6 binary geometry file, optionally .gz, .zst or .lz4")
	DecodeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML case file listing geometry and variable files")
	DecodeCmd.Flags().IntP("timeStep", "t", 1, "time step to decode from file sets")
	DecodeCmd.Flags().Bool("file-sets", false, "files hold several time steps")
	DecodeCmd.Flags().String("byte-order", "", "force little or big endian instead of detecting")
	DecodeCmd.Flags().Bool("strict", false, "fail when the byte order is ambiguous")
}

func processDecodeInput(cmd *cobra.Command) (cp *InputParameters.CaseParameters, err error) {
	gridFile, _ := cmd.Flags().GetString("gridFile")
	icFile, _ := cmd.Flags().GetString("inputConditionsFile")
	switch {
	case icFile != "":
		if cp, err = InputParameters.Load(icFile); err != nil {
			return nil, err
		}
	case gridFile != "":
		cp = &InputParameters.CaseParameters{
			Title:        filepath.Base(gridFile),
			GeometryFile: gridFile,
		}
	default:
		return nil, fmt.Errorf("must supply a geometry file (-F, --gridFile) or a case file (-I, --inputConditionsFile)")
	}
	if cmd.Flags().Changed("timeStep") || cp.TimeStep == 0 {
		cp.TimeStep, _ = cmd.Flags().GetInt("timeStep")
	}
	if fs, _ := cmd.Flags().GetBool("file-sets"); fs {
		cp.UseFileSets = true
	}
	if bo, _ := cmd.Flags().GetString("byte-order"); bo != "" {
		cp.ByteOrder = bo
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cp.StrictByteOrder = true
	}
	return cp, nil
}

// DecodeCase decodes the geometry, measured and variable files of cp and
// writes the statistics of the result to w
func DecodeCase(cp *InputParameters.CaseParameters, w io.Writer, log *logging.Logger) error {
	opts, err := cp.Options()
	if err != nil {
		return err
	}
	opts.Logger = log
	r := readers.NewReader(opts)
	output := mesh.NewMultiBlock()

	cp.Print(w)
	if err = r.ReadGeometryFile(cp.GeometryFile, cp.TimeStep, output); err != nil {
		return errors.Wrap(err, "geometry")
	}
	if cp.MeasuredFile != "" {
		if err = r.ReadMeasuredGeometryFile(cp.MeasuredFile, cp.TimeStep, output); err != nil {
			return errors.Wrap(err, "measured geometry")
		}
	}
	for i := range cp.Variables {
		if err = readVariable(r, &cp.Variables[i], cp.TimeStep, output); err != nil {
			return errors.Wrapf(err, "variable %q", cp.Variables[i].Name)
		}
	}

	if r.ByteOrderAmbiguous() {
		fmt.Fprintf(w, "Byte order: %s (ambiguous)\n", r.ByteOrder())
	} else {
		fmt.Fprintf(w, "Byte order: %s\n", r.ByteOrder())
	}
	output.PrintStatistics(w)
	fmt.Fprintf(w, "Fingerprint: %016x\n", output.Fingerprint())
	return nil
}

func readVariable(r *readers.Reader, v *InputParameters.Variable, timeStep int, output *mesh.MultiBlock) error {
	kind, err := v.Kind()
	if err != nil {
		return err
	}
	files := v.ComponentFiles()
	switch {
	case kind.Rank == 0 && kind.PerElement:
		for c, f := range files {
			if err = r.ReadScalarsPerElement(f, v.Name, timeStep, output, len(files), c); err != nil {
				return err
			}
		}
	case kind.Rank == 0:
		for c, f := range files {
			if err = r.ReadScalarsPerNode(f, v.Name, timeStep, output, kind.Measured, len(files), c); err != nil {
				return err
			}
		}
	case kind.Rank == 1 && kind.PerElement:
		return r.ReadVectorsPerElement(files[0], v.Name, timeStep, output)
	case kind.Rank == 1:
		return r.ReadVectorsPerNode(files[0], v.Name, timeStep, output, kind.Measured)
	case kind.PerElement:
		return r.ReadTensorsPerElement(files[0], v.Name, timeStep, output)
	default:
		return r.ReadTensorsPerNode(files[0], v.Name, timeStep, output)
	}
	return nil
}
