package cube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/adsgrid/pkg/lj"
	"github.com/kpotier/adsgrid/pkg/unitcell"
)

func testCell(t *testing.T) *unitcell.Cell {
	t.Helper()
	c, err := unitcell.New([3][3]float64{
		{10, 0, 0},
		{0, 10, 0},
		{0, 0, 10},
	})
	require.NoError(t, err)
	return c
}

func testAtoms() []lj.Atom {
	return []lj.Atom{{Pos: [3]float64{0.25, 0.25, 0.25}, Epsilon: 148, Sigma: 3.73}}
}

// synthetic builds a grid whose node values come from f, bypassing the
// energy evaluation.
func synthetic(nx, ny, nz int, f func(x, y, z float64) float64) *Grid {
	g := &Grid{
		nx: nx, ny: ny, nz: nz,
		dx: 1 / float64(nx-1),
		dy: 1 / float64(ny-1),
		dz: 1 / float64(nz-1),
	}
	g.data = make([]float64, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				c := g.FracCoord(i, j, k)
				g.data[(i*ny+j)*nz+k] = f(c[0], c[1], c[2])
			}
		}
	}
	return g
}

func TestGenerate_Dims(t *testing.T) {
	t.Parallel()

	cell := testCell(t)

	g := Generate(cell, testAtoms(), 3, 8)
	nx, ny, nz := g.Dims()
	assert.Equal(t, [3]int{4, 4, 4}, [3]int{nx, ny, nz}) // floor(10/3)+1

	// A spacing wider than the cell still yields the two boundary faces.
	g = Generate(cell, testAtoms(), 11, 8)
	nx, ny, nz = g.Dims()
	assert.Equal(t, [3]int{2, 2, 2}, [3]int{nx, ny, nz})
}

func TestGenerate_Values(t *testing.T) {
	t.Parallel()

	cell := testCell(t)
	atoms := testAtoms()
	const (
		spacing = 5.0
		cutoff  = 12.5
	)

	g := Generate(cell, atoms, spacing, cutoff)
	nx, ny, nz := g.Dims()
	require.Equal(t, [3]int{3, 3, 3}, [3]int{nx, ny, nz})

	// Every node is the evaluator's output converted from Kelvin to kJ/mol.
	reps := cell.Replications(cutoff)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				want := lj.Energy(g.FracCoord(i, j, k), cell, atoms, reps, cutoff) * 8.314 / 1000
				assert.Equal(t, want, g.At(i, j, k), "node (%d %d %d)", i, j, k)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	cell := testCell(t)
	a := Generate(cell, testAtoms(), 4, 9)
	b := Generate(cell, testAtoms(), 4, 9)
	assert.Equal(t, a.data, b.data)
}

func TestGenerate_PeriodicFaces(t *testing.T) {
	t.Parallel()

	// The two boundary faces along each axis are the same physical plane.
	cell := testCell(t)
	g := Generate(cell, testAtoms(), 5, 9)
	nx, ny, nz := g.Dims()

	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			lo, hi := g.At(0, j, k), g.At(nx-1, j, k)
			assert.InDelta(t, lo, hi, math.Abs(lo)*1e-9, "face x, (%d %d)", j, k)
		}
	}
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			lo, hi := g.At(i, 0, k), g.At(i, ny-1, k)
			assert.InDelta(t, lo, hi, math.Abs(lo)*1e-9, "face y, (%d %d)", i, k)
		}
	}
}

func TestFracCoord(t *testing.T) {
	t.Parallel()

	g := synthetic(3, 5, 2, func(x, y, z float64) float64 { return 0 })
	assert.Equal(t, [3]float64{0, 0, 0}, g.FracCoord(0, 0, 0))
	assert.Equal(t, [3]float64{1, 1, 1}, g.FracCoord(2, 4, 1))
	assert.Equal(t, [3]float64{0.5, 0.25, 0}, g.FracCoord(1, 1, 0))
}

func TestMinimum_FirstOccurrence(t *testing.T) {
	t.Parallel()

	g := synthetic(3, 3, 3, func(x, y, z float64) float64 { return 1 })
	// Two nodes share the global minimum; the first in iteration order wins.
	g.data[(1*3+0)*3+2] = -4.5 // (1, 0, 2)
	g.data[(2*3+1)*3+1] = -4.5 // (2, 1, 1)

	idx, e, frac := g.Minimum()
	assert.Equal(t, [3]int{1, 0, 2}, idx)
	assert.Equal(t, -4.5, e)
	assert.Equal(t, [3]float64{0.5, 0, 1}, frac)
}

func TestMinimum_MatchesScan(t *testing.T) {
	t.Parallel()

	cell := testCell(t)
	g := Generate(cell, testAtoms(), 4, 9)

	nx, ny, nz := g.Dims()
	bestE := math.Inf(1)
	var best [3]int
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				if g.At(i, j, k) < bestE {
					bestE = g.At(i, j, k)
					best = [3]int{i, j, k}
				}
			}
		}
	}

	idx, e, _ := g.Minimum()
	assert.Equal(t, best, idx)
	assert.Equal(t, bestE, e)
}

func TestEnergyAt_ExactAtNodes(t *testing.T) {
	t.Parallel()

	g := synthetic(4, 7, 10, func(x, y, z float64) float64 {
		return math.Sin(13*x) + math.Cos(7*y)*z
	})

	nx, ny, nz := g.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				c := g.FracCoord(i, j, k)
				got, err := g.EnergyAt(c[0], c[1], c[2])
				require.NoError(t, err)
				assert.Equal(t, g.At(i, j, k), got, "node (%d %d %d)", i, j, k)
			}
		}
	}
}

func TestEnergyAt_AffineField(t *testing.T) {
	t.Parallel()

	// Trilinear interpolation reproduces affine fields exactly.
	f := func(x, y, z float64) float64 { return 3.2*x - 1.7*y + 0.9*z + 42 }
	g := synthetic(4, 5, 6, f)

	points := [][3]float64{
		{0.15, 0.7, 0.33},
		{0.01, 0.99, 0.5},
		{0.333, 0.667, 0.9},
		{0, 0, 0},
		{1, 1, 1},
	}
	for _, p := range points {
		got, err := g.EnergyAt(p[0], p[1], p[2])
		require.NoError(t, err)
		assert.InDelta(t, f(p[0], p[1], p[2]), got, 1e-9, "point %v", p)
	}
}

func TestEnergyAt_UpperBoundary(t *testing.T) {
	t.Parallel()

	g := synthetic(3, 3, 3, func(x, y, z float64) float64 {
		return x + 10*y + 100*z
	})

	// Exactly on the maximal face the upper corner wraps periodically; its
	// weight is zero so the stored boundary value comes back untouched.
	got, err := g.EnergyAt(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, g.At(2, 2, 2), got)

	got, err = g.EnergyAt(1, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, g.At(2, 1, 0), got)
}

func TestEnergyAt_Domain(t *testing.T) {
	t.Parallel()

	g := synthetic(3, 3, 3, func(x, y, z float64) float64 { return 0 })

	for _, p := range [][3]float64{
		{-0.1, 0.5, 0.5},
		{0.5, 1.0001, 0.5},
		{0.5, 0.5, -1e-9},
		{2, 0, 0},
	} {
		_, err := g.EnergyAt(p[0], p[1], p[2])
		assert.ErrorIs(t, err, ErrDomain, "point %v", p)
	}
}
