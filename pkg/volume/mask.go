package volume

// Mask is a 3D binary occupancy grid indexed (slice, row, col), with the
// column index varying fastest. Its shape always matches the stack it was
// built for.
type Mask struct {
	Data   []bool
	Slices int
	Rows   int
	Cols   int
}

// NewMask returns an all-zero mask of the given shape.
func NewMask(slices, rows, cols int) *Mask {
	return &Mask{
		Data:   make([]bool, slices*rows*cols),
		Slices: slices,
		Rows:   rows,
		Cols:   cols,
	}
}

func (m *Mask) index(slice, row, col int) int {
	return slice*m.Rows*m.Cols + row*m.Cols + col
}

// At reports whether the given cell is occupied.
func (m *Mask) At(slice, row, col int) bool {
	return m.Data[m.index(slice, row, col)]
}

// Set marks the given cell occupied.
func (m *Mask) Set(slice, row, col int) {
	m.Data[m.index(slice, row, col)] = true
}

// Or marks every cell of the given slice occupied where plane is true.
// Occupied cells are never cleared, so repeated contours on one slice
// combine by union.
func (m *Mask) Or(slice int, plane []bool) {
	base := slice * m.Rows * m.Cols
	for i, v := range plane {
		if v {
			m.Data[base+i] = true
		}
	}
}

// Count returns the number of occupied cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Floats returns the mask as a 0/1 scalar field in the same layout, the
// form the isosurface extractor consumes.
func (m *Mask) Floats() []float64 {
	out := make([]float64, len(m.Data))
	for i, v := range m.Data {
		if v {
			out[i] = 1
		}
	}
	return out
}
