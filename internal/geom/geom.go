package geom

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D position in either the world or the local frame.
type Point = r2.Vec

// Boundary is an ordered sequence of polygon vertices in the world frame.
// The closing edge from the last vertex back to the first is implicit.
type Boundary []Point

// NewBoundary builds a Boundary from parallel x and y coordinate slices.
// Extra coordinates in the longer slice are ignored.
func NewBoundary(xs, ys []float64) Boundary {
	n := min(len(xs), len(ys))
	b := make(Boundary, n)
	for i := 0; i < n; i++ {
		b[i] = Point{X: xs[i], Y: ys[i]}
	}
	return b
}

// XY splits the boundary into separate x and y slices.
func (b Boundary) XY() (xs, ys []float64) {
	return Split(b)
}

// IsClosed reports whether the last vertex repeats the first.
func (b Boundary) IsClosed() bool {
	return len(b) > 1 && b[0] == b[len(b)-1]
}

// Split returns the x and y coordinates of pts as two slices.
func Split(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// Pairs returns pts as [x, y] pairs, the layout used in JSON documents.
func Pairs(pts []Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

// FromPairs is the inverse of Pairs.
func FromPairs(pairs [][2]float64) []Point {
	out := make([]Point, len(pairs))
	for i, v := range pairs {
		out[i] = Point{X: v[0], Y: v[1]}
	}
	return out
}
