package InputParameters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/notargets/ensight6/mesh/readers"
)

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Title                      string     `json:"Title"`
	FilePath                   string     `json:"FilePath"` // relative paths are taken from the case file
	GeometryFile               string     `json:"GeometryFile"`
	MeasuredFile               string     `json:"MeasuredFile"`
	TimeStep                   int        `json:"TimeStep"`
	UseFileSets                bool       `json:"UseFileSets"`
	ParticleCoordinatesByIndex bool       `json:"ParticleCoordinatesByIndex"`
	ByteOrder                  string     `json:"ByteOrder"` // little, big or empty to detect
	StrictByteOrder            bool       `json:"StrictByteOrder"`
	Variables                  []Variable `json:"Variables"`
}

// Variable is one field of the case. Complex scalars list one file per
// component in Files instead of File.
type Variable struct {
	Name  string   `json:"Name"`
	Type  string   `json:"Type"` // e.g. "scalar per node", "tensor symm per element"
	File  string   `json:"File"`
	Files []string `json:"Files"`
}

// VariableKind is the parsed Type of a Variable
type VariableKind struct {
	Rank       int // 0 scalar, 1 vector, 2 tensor
	PerElement bool
	Measured   bool
}

func (ip *CaseParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return errors.Wrap(err, "parsing case parameters")
	}
	if ip.TimeStep == 0 {
		ip.TimeStep = 1
	}
	for i := range ip.Variables {
		if _, err := ip.Variables[i].Kind(); err != nil {
			return err
		}
		if len(ip.Variables[i].ComponentFiles()) == 0 {
			return errors.Errorf("variable %q has no file", ip.Variables[i].Name)
		}
	}
	return nil
}

// Load reads a case file. A relative FilePath is resolved against the
// directory of the case file.
func Load(fileName string) (*CaseParameters, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "reading case parameters")
	}
	ip := &CaseParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	if !filepath.IsAbs(ip.FilePath) {
		ip.FilePath = filepath.Join(filepath.Dir(fileName), ip.FilePath)
	}
	return ip, nil
}

// Options converts the case settings to reader options
func (ip *CaseParameters) Options() (readers.Options, error) {
	order, err := readers.ParseByteOrder(ip.ByteOrder)
	if err != nil {
		return readers.Options{}, err
	}
	return readers.Options{
		FilePath:                   ip.FilePath,
		UseFileSets:                ip.UseFileSets,
		ParticleCoordinatesByIndex: ip.ParticleCoordinatesByIndex,
		ByteOrder:                  order,
		StrictByteOrder:            ip.StrictByteOrder,
	}, nil
}

// Kind parses the variable type, written as in EnSight case files
func (v *Variable) Kind() (VariableKind, error) {
	var k VariableKind
	words := strings.Fields(strings.ToLower(v.Type))
	if len(words) < 3 {
		return k, errors.Errorf("variable %q: bad type %q", v.Name, v.Type)
	}
	switch words[0] {
	case "scalar", "complex":
		k.Rank = 0
	case "vector":
		k.Rank = 1
	case "tensor":
		k.Rank = 2
	default:
		return k, errors.Errorf("variable %q: bad type %q", v.Name, v.Type)
	}
	switch words[len(words)-1] {
	case "node":
		k.Measured = words[len(words)-2] == "measured"
	case "element":
	default:
		return k, errors.Errorf("variable %q: bad type %q", v.Name, v.Type)
	}
	k.PerElement = words[len(words)-1] == "element"
	if k.Measured && k.Rank == 2 {
		return k, errors.Errorf("variable %q: measured tensors are not supported", v.Name)
	}
	return k, nil
}

// ComponentFiles returns the file of each component
func (v *Variable) ComponentFiles() []string {
	if len(v.Files) > 0 {
		return v.Files
	}
	if v.File == "" {
		return nil
	}
	return []string{v.File}
}

func (ip *CaseParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t= GeometryFile\n", ip.GeometryFile)
	if ip.MeasuredFile != "" {
		fmt.Fprintf(w, "[%s]\t= MeasuredFile\n", ip.MeasuredFile)
	}
	fmt.Fprintf(w, "[%d]\t\t\t\t= TimeStep\n", ip.TimeStep)
	fmt.Fprintf(w, "[%v]\t\t\t= UseFileSets\n", ip.UseFileSets)
	if ip.ByteOrder != "" {
		fmt.Fprintf(w, "[%s]\t\t\t= ByteOrder\n", ip.ByteOrder)
	}
	for _, v := range ip.Variables {
		fmt.Fprintf(w, "Variables[%s] = %s %v\n", v.Name, v.Type, v.ComponentFiles())
	}
}
