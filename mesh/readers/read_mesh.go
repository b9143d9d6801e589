package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/ensight6/internal/source"
	"github.com/notargets/ensight6/mesh"
)

// ReadMeshFile reads a geometry file based on extension. Compressed
// files are recognized by their outer extension.
func ReadMeshFile(filename string, opts Options) (*mesh.MultiBlock, *Reader, error) {
	ext := strings.ToLower(filepath.Ext(source.Strip(filename)))

	switch ext {
	case ".geo", ".geom":
		r := NewReader(opts)
		output := mesh.NewMultiBlock()
		if err := r.ReadGeometryFile(filename, 1, output); err != nil {
			return nil, nil, err
		}
		return output, r, nil
	default:
		return nil, nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}
