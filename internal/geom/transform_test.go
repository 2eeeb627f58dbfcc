package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestFindSweepDirectionAndStartPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		boundary Boundary
		want     SweepFrame
	}{
		{
			name:     "rectangle tie keeps first longest edge",
			boundary: NewBoundary([]float64{0, 50, 50, 0, 0}, []float64{0, 0, 30, 30, 0}),
			want:     SweepFrame{Vector: Point{X: 50, Y: 0}, Start: Point{X: 0, Y: 0}},
		},
		{
			name:     "unique longest edge",
			boundary: NewBoundary([]float64{0, 20, 50, 100, 130, 40, 0}, []float64{0, -20, 0, 30, 60, 80, 0}),
			want:     SweepFrame{Vector: Point{X: -90, Y: 20}, Start: Point{X: 130, Y: 60}},
		},
		{
			name:     "closing edge ignored for open input",
			boundary: Boundary{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 10}},
			want:     SweepFrame{Vector: Point{X: -1, Y: 9}, Start: Point{X: 1, Y: 1}},
		},
		{
			name:     "single vertex",
			boundary: Boundary{{X: 3, Y: 4}},
			want:     SweepFrame{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FindSweepDirectionAndStartPosition(tt.boundary)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClosedAndOpenBoundaryDiffer(t *testing.T) {
	t.Parallel()

	open := Boundary{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: -5, Y: 1}}
	closed := append(append(Boundary{}, open...), open[0])
	require.False(t, open.IsClosed())
	require.True(t, closed.IsClosed())

	// The closing edge (-5,1)->(0,0) is shorter than (2,1)->(-5,1) so both agree here.
	assert.Equal(t, FindSweepDirectionAndStartPosition(open), FindSweepDirectionAndStartPosition(closed))

	longClose := Boundary{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 20, Y: 1}, {X: 20, Y: 40}}
	closedLong := append(append(Boundary{}, longClose...), longClose[0])
	assert.NotEqual(t, FindSweepDirectionAndStartPosition(longClose), FindSweepDirectionAndStartPosition(closedLong))
}

func TestToLocalAlignsSweepVectorWithXAxis(t *testing.T) {
	t.Parallel()

	b := NewBoundary([]float64{1, 4, 4, 1}, []float64{1, 5, 9, 5})
	f := FindSweepDirectionAndStartPosition(b)
	local := f.ToLocal(b)

	require.Len(t, local, len(b))
	assert.InDelta(t, 0, local[0].X, 1e-9)
	assert.InDelta(t, 0, local[0].Y, 1e-9)
	// The sweep edge (1,1)->(4,5) has length 5 and must lie on +x.
	assert.InDelta(t, 5, local[1].X, 1e-9)
	assert.InDelta(t, 0, local[1].Y, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	pts := []Point{{X: 0, Y: 0}, {X: 12.5, Y: -3}, {X: -100, Y: 42.25}, {X: 1e3, Y: 1e-3}}
	frames := []SweepFrame{
		{Vector: Point{X: 1, Y: 0}},
		{Vector: Point{X: 0, Y: 1}, Start: Point{X: 5, Y: 5}},
		{Vector: Point{X: -3, Y: 4}, Start: Point{X: -7.5, Y: 2}},
		{Vector: Point{X: -1, Y: -1e-6}, Start: Point{X: 130, Y: 60}},
	}

	for _, f := range frames {
		got := f.ToWorld(f.ToLocal(pts))
		if diff := cmp.Diff(pts, got, approx); diff != "" {
			t.Errorf("round trip through %+v (-want +got):\n%s", f, diff)
		}
	}
}

func TestRotationPreservesDistances(t *testing.T) {
	t.Parallel()

	f := SweepFrame{Vector: Point{X: 1, Y: 1}, Start: Point{X: 2, Y: 3}}
	a, b := Point{X: 10, Y: -4}, Point{X: -2, Y: 7}
	local := f.ToLocal([]Point{a, b})

	want := math.Hypot(a.X-b.X, a.Y-b.Y)
	got := math.Hypot(local[0].X-local[1].X, local[0].Y-local[1].Y)
	assert.InDelta(t, want, got, 1e-9)
	assert.InDelta(t, math.Pi/4, f.Theta(), 1e-12)
}

func TestEmptyPointSet(t *testing.T) {
	t.Parallel()

	f := SweepFrame{Vector: Point{X: 1, Y: 2}}
	assert.Empty(t, f.ToLocal(nil))
	assert.Empty(t, f.ToWorld([]Point{}))
}

func TestNewBoundaryAndSplit(t *testing.T) {
	t.Parallel()

	b := NewBoundary([]float64{1, 2, 3}, []float64{4, 5})
	require.Len(t, b, 2)
	xs, ys := b.XY()
	assert.Equal(t, []float64{1, 2}, xs)
	assert.Equal(t, []float64{4, 5}, ys)
}

func TestPairsRoundTrip(t *testing.T) {
	pts := []Point{{X: 1, Y: 2}, {X: -3.5, Y: 0}}
	pairs := Pairs(pts)
	if diff := cmp.Diff([][2]float64{{1, 2}, {-3.5, 0}}, pairs); diff != "" {
		t.Errorf("Pairs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pts, FromPairs(pairs)); diff != "" {
		t.Errorf("FromPairs mismatch (-want +got):\n%s", diff)
	}
	if got := Pairs(nil); len(got) != 0 {
		t.Errorf("Pairs(nil) = %v, want empty", got)
	}
}
