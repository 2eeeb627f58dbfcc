package gridmap

// Snapshot is a read-only copy of a GridMap taken at a point in time.
// It satisfies gonum/plot's plotter.GridXYZ so it can be drawn as a heat map.
type Snapshot struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Resolution float64   `json:"resolution"`
	LeftLowerX float64   `json:"left_lower_x"`
	LeftLowerY float64   `json:"left_lower_y"`
	Values     []float64 `json:"values"` // row-major, len = Width*Height
}

// Snapshot copies the current cell values.
func (g *GridMap) Snapshot() *Snapshot {
	vals := make([]float64, len(g.data))
	copy(vals, g.data)
	return &Snapshot{
		Width:      g.width,
		Height:     g.height,
		Resolution: g.resolution,
		LeftLowerX: g.leftLowerX,
		LeftLowerY: g.leftLowerY,
		Values:     vals,
	}
}

// At returns the value of cell (xi, yi). It panics out of bounds.
func (s *Snapshot) At(xi, yi int) float64 {
	return s.Values[yi*s.Width+xi]
}

// Dims returns the number of columns and rows.
func (s *Snapshot) Dims() (c, r int) { return s.Width, s.Height }

// Z returns the value at column c, row r.
func (s *Snapshot) Z(c, r int) float64 { return s.At(c, r) }

// X returns the centre x coordinate of column c.
func (s *Snapshot) X(c int) float64 {
	return s.LeftLowerX + float64(c)*s.Resolution + s.Resolution/2.0
}

// Y returns the centre y coordinate of row r.
func (s *Snapshot) Y(r int) float64 {
	return s.LeftLowerY + float64(r)*s.Resolution + s.Resolution/2.0
}

// Counts tallies free, visited and occupied cells.
func (s *Snapshot) Counts() (free, visited, occupied int) {
	for _, v := range s.Values {
		switch {
		case v >= OccupiedValue:
			occupied++
		case v >= VisitedValue:
			visited++
		default:
			free++
		}
	}
	return free, visited, occupied
}
