package readers

// PartRegistry maps 0-based file part numbers to dense output block ids,
// handed out in first-seen order
type PartRegistry struct {
	ids map[int]int
}

func NewPartRegistry() *PartRegistry {
	return &PartRegistry{ids: make(map[int]int)}
}

// Resolve returns the block id for raw, assigning the next free id the
// first time raw is seen
func (r *PartRegistry) Resolve(raw int) int {
	if id, ok := r.ids[raw]; ok {
		return id
	}
	id := len(r.ids)
	r.ids[raw] = id
	return id
}

// Lookup returns the block id for raw without assigning one
func (r *PartRegistry) Lookup(raw int) (int, bool) {
	id, ok := r.ids[raw]
	return id, ok
}

func (r *PartRegistry) Len() int { return len(r.ids) }

// IDList is an ordered list of block ids
type IDList []int

// IndexOf returns the position of id, or -1
func (l IDList) IndexOf(id int) int {
	for i, v := range l {
		if v == id {
			return i
		}
	}
	return -1
}

// Insert appends id unless present and returns its position
func (l *IDList) Insert(id int) int {
	if i := l.IndexOf(id); i >= 0 {
		return i
	}
	*l = append(*l, id)
	return len(*l) - 1
}

// CellIDStore records, per unstructured part index and element type, the
// output cell ids in the order their elements appeared in the file
type CellIDStore struct {
	lists map[int]*[NumberOfElementTypes][]int
}

func NewCellIDStore() *CellIDStore {
	return &CellIDStore{lists: make(map[int]*[NumberOfElementTypes][]int)}
}

func (c *CellIDStore) part(index int) *[NumberOfElementTypes][]int {
	l, ok := c.lists[index]
	if !ok {
		l = new([NumberOfElementTypes][]int)
		c.lists[index] = l
	}
	return l
}

// Get returns the list for (index, et); nil when nothing was recorded
func (c *CellIDStore) Get(index int, et ElementType) []int {
	if l, ok := c.lists[index]; ok {
		return l[et]
	}
	return nil
}

func (c *CellIDStore) Append(index int, et ElementType, cellID int) {
	l := c.part(index)
	l[et] = append(l[et], cellID)
}

// Reset empties every list of one part
func (c *CellIDStore) Reset(index int) {
	if l, ok := c.lists[index]; ok {
		for et := range l {
			l[et] = l[et][:0]
		}
	}
}
