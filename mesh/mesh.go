package mesh

import (
	"fmt"

	"github.com/weaviate/sroar"
)

// ElementType is the canonical cell shape stored in an output grid
type ElementType int

const (
	Vertex ElementType = iota
	Line
	Triangle
	Quad
	Tet
	Pyramid
	Hex
	Prism
	NumElementTypes
)

func (e ElementType) String() string {
	return [...]string{"Vertex", "Line", "Triangle", "Quad", "Tet", "Pyramid", "Hex", "Prism"}[e]
}

// NumVertices returns the number of vertices of the shape
func (e ElementType) NumVertices() int {
	return [...]int{1, 2, 3, 4, 4, 5, 8, 6}[e]
}

// Kind tells apart the concrete data set types held by a MultiBlock
type Kind int

const (
	UnstructuredKind Kind = iota
	StructuredKind
	PolyKind
)

func (k Kind) String() string {
	return [...]string{"unstructured", "structured", "poly"}[k]
}

// DataSet is one block of a MultiBlock
type DataSet interface {
	Kind() Kind
	Name() string
	SetName(name string)
	NumberOfPoints() int
	NumberOfCells() int
	PointData() *FieldData
	CellData() *FieldData
}

// Points is a flat x,y,z-per-point coordinate array
type Points struct {
	Coords []float32
}

// NewPoints allocates storage for n points
func NewPoints(n int) *Points {
	return &Points{Coords: make([]float32, 3*n)}
}

func (p *Points) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Coords) / 3
}

func (p *Points) Point(i int) [3]float32 {
	return [3]float32{p.Coords[3*i], p.Coords[3*i+1], p.Coords[3*i+2]}
}

func (p *Points) SetPoint(i int, x, y, z float32) {
	p.Coords[3*i], p.Coords[3*i+1], p.Coords[3*i+2] = x, y, z
}

type dataSetBase struct {
	name      string
	pointData *FieldData
	cellData  *FieldData
}

func newBase() dataSetBase {
	return dataSetBase{pointData: NewFieldData(), cellData: NewFieldData()}
}

func (b *dataSetBase) Name() string          { return b.name }
func (b *dataSetBase) SetName(name string)   { b.name = name }
func (b *dataSetBase) PointData() *FieldData { return b.pointData }
func (b *dataSetBase) CellData() *FieldData  { return b.cellData }

// UnstructuredGrid holds explicit cells over a (usually shared) point pool
type UnstructuredGrid struct {
	dataSetBase
	Points   *Points
	Elements [][]int       // Element to vertex connectivity [ncells][nverts]
	Types    []ElementType // Shape of each cell
}

func NewUnstructuredGrid() *UnstructuredGrid {
	return &UnstructuredGrid{dataSetBase: newBase()}
}

func (g *UnstructuredGrid) Kind() Kind          { return UnstructuredKind }
func (g *UnstructuredGrid) NumberOfPoints() int { return g.Points.Len() }
func (g *UnstructuredGrid) NumberOfCells() int  { return len(g.Elements) }

// InsertNextCell appends a cell and returns its id
func (g *UnstructuredGrid) InsertNextCell(shape ElementType, ids []int) int {
	g.Elements = append(g.Elements, ids)
	g.Types = append(g.Types, shape)
	return len(g.Elements) - 1
}

// ResetCells drops all cells, keeping points and field data
func (g *UnstructuredGrid) ResetCells() {
	g.Elements = g.Elements[:0]
	g.Types = g.Types[:0]
}

// StructuredGrid is an i,j,k curvilinear block with optional point blanking
type StructuredGrid struct {
	dataSetBase
	Dims    [3]int
	Points  *Points
	Blanked *sroar.Bitmap // indices of points excluded from the visible grid
}

func NewStructuredGrid() *StructuredGrid {
	return &StructuredGrid{dataSetBase: newBase()}
}

func (g *StructuredGrid) Kind() Kind          { return StructuredKind }
func (g *StructuredGrid) NumberOfPoints() int { return g.Points.Len() }

// NumberOfCells follows the usual structured convention: every dimension
// larger than one contributes (dim-1) cells, a zero dimension means none.
func (g *StructuredGrid) NumberOfCells() int {
	n := 1
	for _, d := range g.Dims {
		if d <= 0 {
			return 0
		}
		if d > 1 {
			n *= d - 1
		}
	}
	return n
}

func (g *StructuredGrid) SetDimensions(dims [3]int) {
	g.Dims = dims
	g.Blanked = nil
}

// BlankPoint marks point i as excluded
func (g *StructuredGrid) BlankPoint(i int) {
	if g.Blanked == nil {
		g.Blanked = sroar.NewBitmap()
	}
	g.Blanked.Set(uint64(i))
}

// IsVisible reports whether point i is not blanked
func (g *StructuredGrid) IsVisible(i int) bool {
	return g.Blanked == nil || !g.Blanked.Contains(uint64(i))
}

// NumberOfBlanked returns the count of excluded points
func (g *StructuredGrid) NumberOfBlanked() int {
	if g.Blanked == nil {
		return 0
	}
	return g.Blanked.GetCardinality()
}

// PolyData holds vertex cells, one per measured particle
type PolyData struct {
	dataSetBase
	Points *Points
	Verts  []int
}

func NewPolyData() *PolyData {
	return &PolyData{dataSetBase: newBase()}
}

func (p *PolyData) Kind() Kind          { return PolyKind }
func (p *PolyData) NumberOfPoints() int { return p.Points.Len() }
func (p *PolyData) NumberOfCells() int  { return len(p.Verts) }

// MultiBlock is the reader output: one block per internal part id
type MultiBlock struct {
	blocks []DataSet
}

func NewMultiBlock() *MultiBlock {
	return &MultiBlock{}
}

func (mb *MultiBlock) NumberOfBlocks() int { return len(mb.blocks) }

// Block returns the data set stored at id, or nil
func (mb *MultiBlock) Block(id int) DataSet {
	if id < 0 || id >= len(mb.blocks) {
		return nil
	}
	return mb.blocks[id]
}

// SetBlock stores ds at id, growing the block list as needed
func (mb *MultiBlock) SetBlock(id int, ds DataSet) {
	if id < 0 {
		panic(fmt.Sprintf("invalid block id %d", id))
	}
	for len(mb.blocks) <= id {
		mb.blocks = append(mb.blocks, nil)
	}
	mb.blocks[id] = ds
}

// Unstructured fetches the unstructured grid at id, replacing whatever
// else is stored there. created reports whether a new grid was made.
func (mb *MultiBlock) Unstructured(id int) (g *UnstructuredGrid, created bool) {
	if g, ok := mb.Block(id).(*UnstructuredGrid); ok {
		return g, false
	}
	g = NewUnstructuredGrid()
	mb.SetBlock(id, g)
	return g, true
}

// Structured fetches or creates the structured grid at id
func (mb *MultiBlock) Structured(id int) (g *StructuredGrid, created bool) {
	if g, ok := mb.Block(id).(*StructuredGrid); ok {
		return g, false
	}
	g = NewStructuredGrid()
	mb.SetBlock(id, g)
	return g, true
}

// Poly fetches or creates the poly data at id
func (mb *MultiBlock) Poly(id int) (p *PolyData, created bool) {
	if p, ok := mb.Block(id).(*PolyData); ok {
		return p, false
	}
	p = NewPolyData()
	mb.SetBlock(id, p)
	return p, true
}
