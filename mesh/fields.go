package mesh

// Attribute selects which active slot of a FieldData an array can fill
type Attribute int

const (
	NoAttribute Attribute = iota
	Scalars
	Vectors
	Tensors
)

// FieldArray is a named tuple array, NumComponents values per tuple
type FieldArray struct {
	Name          string
	NumComponents int
	Values        []float32
}

// NewFieldArray allocates nTuples zeroed tuples
func NewFieldArray(name string, nTuples, nComponents int) *FieldArray {
	return &FieldArray{
		Name:          name,
		NumComponents: nComponents,
		Values:        make([]float32, nTuples*nComponents),
	}
}

func (a *FieldArray) NumberOfTuples() int {
	if a.NumComponents == 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

// SetComponent writes one component, growing the array if tuple is past the end
func (a *FieldArray) SetComponent(tuple, comp int, v float32) {
	idx := tuple*a.NumComponents + comp
	if idx >= len(a.Values) {
		grown := make([]float32, (tuple+1)*a.NumComponents)
		copy(grown, a.Values)
		a.Values = grown
	}
	a.Values[idx] = v
}

func (a *FieldArray) Component(tuple, comp int) float32 {
	return a.Values[tuple*a.NumComponents+comp]
}

// SetTuple writes a whole tuple
func (a *FieldArray) SetTuple(tuple int, values []float32) {
	for c, v := range values {
		a.SetComponent(tuple, c, v)
	}
}

func (a *FieldArray) Tuple(tuple int) []float32 {
	return a.Values[tuple*a.NumComponents : (tuple+1)*a.NumComponents]
}

// FieldData is an ordered set of arrays with optional active attributes
type FieldData struct {
	arrays []*FieldArray
	active map[Attribute]string
}

func NewFieldData() *FieldData {
	return &FieldData{active: make(map[Attribute]string)}
}

// AddArray stores arr, replacing any array with the same name
func (fd *FieldData) AddArray(arr *FieldArray) {
	for i, a := range fd.arrays {
		if a.Name == arr.Name {
			fd.arrays[i] = arr
			return
		}
	}
	fd.arrays = append(fd.arrays, arr)
}

// Array returns the array with the given name, or nil
func (fd *FieldData) Array(name string) *FieldArray {
	for _, a := range fd.arrays {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (fd *FieldData) Arrays() []*FieldArray { return fd.arrays }

func (fd *FieldData) NumberOfArrays() int { return len(fd.arrays) }

// Active returns the active array for attr, or nil
func (fd *FieldData) Active(attr Attribute) *FieldArray {
	name, ok := fd.active[attr]
	if !ok {
		return nil
	}
	return fd.Array(name)
}

// SetActiveIfUnset makes name the active array for attr when none is set
func (fd *FieldData) SetActiveIfUnset(attr Attribute, name string) {
	if fd.Active(attr) == nil {
		fd.active[attr] = name
	}
}
