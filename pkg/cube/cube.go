// Package cube generates, serializes and queries dense three dimensional
// grids of adsorption energies. A grid discretizes the unit cell of a host
// structure into a regular fractional-coordinate lattice, stores the
// Lennard-Jones energy of the guest particle at every node in kJ/mol, and is
// written to disk in the Gaussian cube volumetric text format.
package cube

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/kpotier/adsgrid/pkg/lj"
	"github.com/kpotier/adsgrid/pkg/unitcell"
)

// gasConstant is R in J/(mol.K). Energies coming out of the evaluator are in
// Kelvin (epsilon/kB units) and are stored as e*gasConstant/1000 (kJ/mol).
const gasConstant = 8.314

// ErrFormat is returned when a grid file cannot be parsed: missing header
// fields, values that are not numbers, or a number of values that does not
// match the dimensions announced by the header.
var ErrFormat = errors.New("malformed energy grid file")

// ErrDomain is returned by EnergyAt when a fractional coordinate falls
// outside the closed interval [0, 1].
var ErrDomain = errors.New("fractional coordinate outside the unit cell")

// Grid is a dense grid of energies over one unit cell. Node (i, j, k)
// represents the fractional coordinate (i*dx, j*dy, k*dz) with dx = 1/(nx-1)
// and so on; both boundary faces along each axis are stored, so the first
// and last planes of an axis are periodic duplicates of each other. A Grid
// is immutable after construction and safe for concurrent queries.
type Grid struct {
	nx, ny, nz int
	dx, dy, dz float64       // fractional spacing per axis
	axis       [3][3]float64 // Cartesian step vector per axis (one voxel)
	data       []float64     // kJ/mol; i outer, j middle, k inner
}

// Generate computes the energy grid of a guest particle inside the given
// cell. The number of nodes per axis is floor(length/spacing)+1 with a
// minimum of 2. The replication factors are derived once from the cell and
// the cutoff; every node is then evaluated independently, so the work is
// spread over the available threads. Generation is deterministic for fixed
// inputs.
func Generate(cell *unitcell.Cell, atoms []lj.Atom, spacing, cutoff float64) *Grid {
	lns := cell.Lengths()
	var n [3]int
	for d := 0; d < 3; d++ {
		n[d] = int(lns[d]/spacing) + 1
		if n[d] < 2 {
			n[d] = 2
		}
	}

	g := &Grid{
		nx: n[0], ny: n[1], nz: n[2],
		dx: 1 / float64(n[0]-1),
		dy: 1 / float64(n[1]-1),
		dz: 1 / float64(n[2]-1),
	}
	for d := 0; d < 3; d++ {
		v := cell.Vector(d)
		for k := 0; k < 3; k++ {
			g.axis[d][k] = v[k] / float64(n[d]-1)
		}
	}
	g.data = make([]float64, g.nx*g.ny*g.nz)

	reps := cell.Replications(cutoff)

	// Nodes only depend on the immutable inputs, so the x slabs are handed
	// out to workers and written into disjoint parts of the buffer.
	var (
		mux  sync.Mutex
		wg   sync.WaitGroup
		next int
	)
	worker := func() {
		defer wg.Done()
		for {
			mux.Lock()
			i := next
			next++
			mux.Unlock()
			if i >= g.nx {
				return
			}

			for j := 0; j < g.ny; j++ {
				for k := 0; k < g.nz; k++ {
					frac := g.FracCoord(i, j, k)
					e := lj.Energy(frac, cell, atoms, reps, cutoff)
					g.data[(i*g.ny+j)*g.nz+k] = e * gasConstant / 1000
				}
			}
		}
	}

	for t := 0; t < runtime.NumCPU(); t++ {
		wg.Add(1)
		go worker()
	}
	wg.Wait()

	return g
}

// Dims returns the number of nodes along each axis.
func (g *Grid) Dims() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

// At returns the stored energy (kJ/mol) at the node (i, j, k). The indices
// must satisfy 0 <= i < nx, 0 <= j < ny, 0 <= k < nz.
func (g *Grid) At(i, j, k int) float64 {
	return g.data[(i*g.ny+j)*g.nz+k]
}

// FracCoord returns the fractional coordinate of the node (i, j, k). The
// indices must be within the grid dimensions.
func (g *Grid) FracCoord(i, j, k int) [3]float64 {
	return [3]float64{float64(i) * g.dx, float64(j) * g.dy, float64(k) * g.dz}
}

// Minimum scans the whole grid and returns the index, energy and fractional
// coordinate of the global minimum. Ties are broken by iteration order (i
// outer, j middle, k inner): the first occurrence wins.
func (g *Grid) Minimum() (idx [3]int, e float64, frac [3]float64) {
	min := 0
	for n := 1; n < len(g.data); n++ {
		if g.data[n] < g.data[min] {
			min = n
		}
	}

	idx[0] = min / (g.ny * g.nz)
	idx[1] = (min / g.nz) % g.ny
	idx[2] = min % g.nz
	return idx, g.data[min], g.FracCoord(idx[0], idx[1], idx[2])
}

// EnergyAt interpolates the energy at the fractional coordinate (xf, yf,
// zf) from the eight surrounding nodes (trilinear interpolation, blending
// along x, then y, then z). Each coordinate must lie in [0, 1]; anything
// else returns ErrDomain. A query that coincides with a node returns the
// stored value exactly, the interpolation weights degenerate to 0 and 1.
//
// Boundary policy: when a coordinate sits exactly on the upper face of an
// axis, the upper interpolation corner wraps around to index 0. Both faces
// store the same physical plane, so the wrap is the periodic continuation
// of the grid.
func (g *Grid) EnergyAt(xf, yf, zf float64) (float64, error) {
	if xf < 0 || xf > 1 || yf < 0 || yf > 1 || zf < 0 || zf > 1 {
		return 0, ErrDomain
	}

	i, xd := g.corner(xf, g.dx, g.nx)
	j, yd := g.corner(yf, g.dy, g.ny)
	k, zd := g.corner(zf, g.dz, g.nz)

	i1 := g.wrap(i+1, g.nx)
	j1 := g.wrap(j+1, g.ny)
	k1 := g.wrap(k+1, g.nz)

	// Four edge blends along x.
	c00 := g.At(i, j, k)*(1-xd) + g.At(i1, j, k)*xd
	c10 := g.At(i, j1, k)*(1-xd) + g.At(i1, j1, k)*xd
	c01 := g.At(i, j, k1)*(1-xd) + g.At(i1, j, k1)*xd
	c11 := g.At(i, j1, k1)*(1-xd) + g.At(i1, j1, k1)*xd

	// Two face blends along y, final blend along z.
	c0 := c00*(1-yd) + c10*yd
	c1 := c01*(1-yd) + c11*yd
	return c0*(1-zd) + c1*zd, nil
}

// nodeEps is the offset, as a fraction of one voxel, under which a query is
// considered to sit on a node plane. Snapping at this scale keeps the
// interpolation weights exactly 0 and 1 on nodes, which would otherwise be
// lost to rounding in the index arithmetic.
const nodeEps = 1e-12

// corner returns the lower-corner index of the voxel containing the
// fractional coordinate f and the offset of f within that voxel, in [0, 1).
func (g *Grid) corner(f, spacing float64, n int) (int, float64) {
	i := int(math.Floor(f / spacing))
	if i > n-1 {
		i = n - 1
	}

	d := (f - float64(i)*spacing) / spacing
	if d < nodeEps {
		d = 0
	} else if d > 1-nodeEps {
		i++
		d = 0
	}
	return i, d
}

// wrap maps the upper interpolation corner back to the first plane of the
// axis when it falls past the last stored one.
func (g *Grid) wrap(i, n int) int {
	if i >= n {
		return 0
	}
	return i
}
