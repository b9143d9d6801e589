package mesh

import (
	"sort"
)

// Face represents a face of an element
type Face struct {
	Vertices []int // Sorted vertex indices
	Element  int   // Parent element
	LocalID  int   // Local face ID within element
}

// Connectivity is the face neighbour structure of an unstructured grid.
// Only volume cells have faces; other cells get empty rows.
type Connectivity struct {
	EToE  [][]int // Element to element connectivity, -1 on the boundary
	EToF  [][]int // Element to face connectivity
	Faces []Face  // All unique faces
}

type faceKey [4]int

func makeFaceKey(sorted []int) faceKey {
	k := faceKey{-1, -1, -1, -1}
	copy(k[:], sorted)
	return k
}

// BuildConnectivity builds element-to-element and face connectivity
func (g *UnstructuredGrid) BuildConnectivity() *Connectivity {
	nElem := g.NumberOfCells()
	c := &Connectivity{
		EToE: make([][]int, nElem),
		EToF: make([][]int, nElem),
	}
	faceMap := make(map[faceKey]int)

	for elemID := 0; elemID < nElem; elemID++ {
		faceVertices := GetElementFaces(g.Types[elemID], g.Elements[elemID])

		c.EToE[elemID] = make([]int, len(faceVertices))
		c.EToF[elemID] = make([]int, len(faceVertices))
		for i := range c.EToE[elemID] {
			c.EToE[elemID][i] = -1
			c.EToF[elemID][i] = -1
		}

		for localFaceID, faceVerts := range faceVertices {
			sorted := make([]int, len(faceVerts))
			copy(sorted, faceVerts)
			sort.Ints(sorted)
			key := makeFaceKey(sorted)

			if faceID, exists := faceMap[key]; exists {
				// interior face
				face := &c.Faces[faceID]
				c.EToE[elemID][localFaceID] = face.Element
				c.EToE[face.Element][face.LocalID] = elemID
				c.EToF[elemID][localFaceID] = faceID
				c.EToF[face.Element][face.LocalID] = faceID
			} else {
				faceID := len(c.Faces)
				c.Faces = append(c.Faces, Face{
					Vertices: sorted,
					Element:  elemID,
					LocalID:  localFaceID,
				})
				faceMap[key] = faceID
				c.EToF[elemID][localFaceID] = faceID
			}
		}
	}
	return c
}

// BoundaryFaces counts faces with no neighbour
func (c *Connectivity) BoundaryFaces() int {
	n := 0
	for _, row := range c.EToE {
		for _, neighbor := range row {
			if neighbor < 0 {
				n++
			}
		}
	}
	return n
}

// GetElementFaces returns the face vertices for each element type
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	case Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},              // Face 0 (bottom tri)
			{vertices[3], vertices[4], vertices[5]},              // Face 1 (top tri)
			{vertices[0], vertices[1], vertices[4], vertices[3]}, // Face 2 (quad)
			{vertices[1], vertices[2], vertices[5], vertices[4]}, // Face 3 (quad)
			{vertices[2], vertices[0], vertices[3], vertices[5]}, // Face 4 (quad)
		}
	case Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (base quad)
			{vertices[0], vertices[1], vertices[4]},              // Face 1 (tri)
			{vertices[1], vertices[2], vertices[4]},              // Face 2 (tri)
			{vertices[2], vertices[3], vertices[4]},              // Face 3 (tri)
			{vertices[3], vertices[0], vertices[4]},              // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}
