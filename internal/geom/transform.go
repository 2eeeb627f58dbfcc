package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// SweepFrame defines the local frame: its x-axis runs along Vector and its
// origin is Start, both in world coordinates.
type SweepFrame struct {
	Vector Point // displacement of the longest boundary edge
	Start  Point // first vertex of that edge
}

// Theta returns the rotation angle of the frame relative to the world x-axis.
func (f SweepFrame) Theta() float64 {
	return math.Atan2(f.Vector.Y, f.Vector.X)
}

// FindSweepDirectionAndStartPosition scans consecutive vertex pairs of the
// boundary as an open polyline (the implicit closing edge is not considered)
// and returns the frame of the longest edge. Ties keep the first maximum.
// A boundary with fewer than two vertices yields the zero frame.
func FindSweepDirectionAndStartPosition(b Boundary) SweepFrame {
	var (
		maxDist float64
		frame   SweepFrame
	)
	for i := 0; i < len(b)-1; i++ {
		d := r2.Sub(b[i+1], b[i])
		if dist := r2.Norm(d); dist > maxDist {
			maxDist = dist
			frame = SweepFrame{Vector: d, Start: b[i]}
		}
	}
	return frame
}

// ToLocal translates pts by -Start and then rotates them by -Theta.
func (f SweepFrame) ToLocal(pts []Point) []Point {
	shifted := make([]Point, len(pts))
	for i, p := range pts {
		shifted[i] = r2.Sub(p, f.Start)
	}
	return rotate(shifted, -f.Theta())
}

// ToWorld rotates pts by +Theta and then translates them by +Start. It
// inverts ToLocal up to floating point error.
func (f SweepFrame) ToWorld(pts []Point) []Point {
	out := rotate(pts, f.Theta())
	for i := range out {
		out[i] = r2.Add(out[i], f.Start)
	}
	return out
}

// rotate applies the 2D rotation by th to every point. Points are stacked
// as rows of an n×2 matrix so the rotation is a single product P·Rᵀ.
func rotate(pts []Point, th float64) []Point {
	if len(pts) == 0 {
		return []Point{}
	}
	c, s := math.Cos(th), math.Sin(th)
	rot := mat.NewDense(2, 2, []float64{
		c, -s,
		s, c,
	})

	data := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		data = append(data, p.X, p.Y)
	}
	src := mat.NewDense(len(pts), 2, data)

	var dst mat.Dense
	dst.Mul(src, rot.T())

	out := make([]Point, len(pts))
	for i := range out {
		out[i] = Point{X: dst.At(i, 0), Y: dst.At(i, 1)}
	}
	return out
}
