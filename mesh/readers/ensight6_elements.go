package readers

import (
	"strings"

	"github.com/notargets/ensight6/mesh"
)

// ElementType is an EnSight6 element keyword
type ElementType int

const (
	Point ElementType = iota
	Bar2
	Bar3
	Tria3
	Tria6
	Quad4
	Quad8
	Tetra4
	Tetra10
	Pyramid5
	Pyramid13
	Hexa8
	Hexa20
	Penta6
	Penta15
	NumberOfElementTypes
)

type elementInfo struct {
	keyword  string
	nodes    int              // nodes per element in the file
	shape    mesh.ElementType // output cell shape
	vertices []int            // record positions kept for the output cell
	perm     []int            // output position k takes kept vertex perm[k]
}

// file wedge vertex order to output prism order
var wedgeOrder = []int{0, 2, 1, 3, 5, 4}

func firstN(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

var elementTable = [NumberOfElementTypes]elementInfo{
	Point:     {"point", 1, mesh.Vertex, firstN(1), nil},
	Bar2:      {"bar2", 2, mesh.Line, firstN(2), nil},
	Bar3:      {"bar3", 3, mesh.Line, []int{0, 2}, nil},
	Tria3:     {"tria3", 3, mesh.Triangle, firstN(3), nil},
	Tria6:     {"tria6", 6, mesh.Triangle, firstN(3), nil},
	Quad4:     {"quad4", 4, mesh.Quad, firstN(4), nil},
	Quad8:     {"quad8", 8, mesh.Quad, firstN(4), nil},
	Tetra4:    {"tetra4", 4, mesh.Tet, firstN(4), nil},
	Tetra10:   {"tetra10", 10, mesh.Tet, firstN(4), nil},
	Pyramid5:  {"pyramid5", 5, mesh.Pyramid, firstN(5), nil},
	Pyramid13: {"pyramid13", 13, mesh.Pyramid, firstN(5), nil},
	Hexa8:     {"hexa8", 8, mesh.Hex, firstN(8), nil},
	Hexa20:    {"hexa20", 20, mesh.Hex, firstN(8), nil},
	Penta6:    {"penta6", 6, mesh.Prism, firstN(6), wedgeOrder},
	Penta15:   {"penta15", 15, mesh.Prism, firstN(6), wedgeOrder},
}

func (e ElementType) String() string {
	if e < 0 || e >= NumberOfElementTypes {
		return "unknown"
	}
	return elementTable[e].keyword
}

// NodesPerElement is the record width in the file
func (e ElementType) NodesPerElement() int { return elementTable[e].nodes }

// Shape is the output cell shape
func (e ElementType) Shape() mesh.ElementType { return elementTable[e].shape }

// HigherOrder reports whether mid-side nodes are dropped on decode
func (e ElementType) HigherOrder() bool {
	return len(elementTable[e].vertices) < elementTable[e].nodes
}

// Vertices picks the output vertex nodes out of one file record, in
// output order, still 1-based
func (e ElementType) Vertices(record []int32) []int {
	info := &elementTable[e]
	out := make([]int, len(info.vertices))
	for k := range out {
		src := k
		if info.perm != nil {
			src = info.perm[k]
		}
		out[k] = int(record[info.vertices[src]])
	}
	return out
}

// LookupElementType matches line against the element keywords
func LookupElementType(line string) (ElementType, bool) {
	for e := range elementTable {
		if strings.HasPrefix(line, elementTable[e].keyword) {
			return ElementType(e), true
		}
	}
	return 0, false
}
