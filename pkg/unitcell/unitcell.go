// Package unitcell describes the periodic unit cell of a crystalline host
// structure. It converts fractional coordinates into Cartesian coordinates
// and computes how many periodic images of the cell must be considered so
// that no pair interaction within a given cutoff radius is missed.
package unitcell

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when the three lattice vectors do not span a
// volume (zero or numerically negligible determinant).
var ErrDegenerate = errors.New("degenerate unit cell: lattice vectors span no volume")

// volEps is the volume (in cubic angstroms) under which a cell is considered
// degenerate.
const volEps = 1e-10

// Cell is a periodic unit cell. It may be triclinic. A Cell is immutable
// once built and is safe for concurrent use.
type Cell struct {
	vec [3][3]float64 // lattice vectors a, b, c in Cartesian coordinates
	lns [3]float64    // lengths of the lattice vectors
	vol float64
}

// New returns an instance of the Cell structure from the three lattice
// vectors given in Cartesian coordinates (one vector per row). It returns
// ErrDegenerate if the vectors span no volume.
func New(vectors [3][3]float64) (*Cell, error) {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			// Column i of the fractional to Cartesian transform is the
			// lattice vector i.
			m.Set(k, i, vectors[i][k])
		}
	}

	vol := math.Abs(mat.Det(m))
	if vol < volEps {
		return nil, ErrDegenerate
	}

	c := &Cell{vec: vectors, vol: vol}
	for i := 0; i < 3; i++ {
		c.lns[i] = math.Sqrt(dot(vectors[i], vectors[i]))
	}

	return c, nil
}

// Vector returns the lattice vector for the axis d (0, 1 or 2) in Cartesian
// coordinates.
func (c *Cell) Vector(d int) [3]float64 {
	return c.vec[d]
}

// Lengths returns the lengths of the three lattice vectors.
func (c *Cell) Lengths() [3]float64 {
	return c.lns
}

// Volume returns the volume of the cell.
func (c *Cell) Volume() float64 {
	return c.vol
}

// Cart converts a fractional coordinate into a Cartesian coordinate.
func (c *Cell) Cart(frac [3]float64) [3]float64 {
	var cart [3]float64
	for k := 0; k < 3; k++ {
		cart[k] = frac[0]*c.vec[0][k] + frac[1]*c.vec[1][k] + frac[2]*c.vec[2][k]
	}
	return cart
}

// PerpWidths returns, for each axis, the perpendicular distance between the
// two parallel faces of the cell spanned by the other two lattice vectors.
// For a non-orthogonal cell this distance, not the lattice vector length, is
// the quantity that decides how far a periodic image can reach.
func (c *Cell) PerpWidths() [3]float64 {
	var w [3]float64
	for d := 0; d < 3; d++ {
		n := cross(c.vec[(d+1)%3], c.vec[(d+2)%3])
		w[d] = c.vol / math.Sqrt(dot(n, n))
	}
	return w
}

// Replications returns the number of periodic images of the cell that must
// be considered on either side of the origin along each lattice direction so
// that every host atom within cutoff of any point inside the base cell lies
// within the replicated supercell. The triple is a bounding box of images
// and is therefore slightly conservative for oblique cells.
func (c *Cell) Replications(cutoff float64) [3]int {
	w := c.PerpWidths()
	var n [3]int
	for d := 0; d < 3; d++ {
		if cutoff > 0 {
			n[d] = int(math.Ceil(cutoff / w[d]))
		}
	}
	return n
}

func dot(u, v [3]float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}

func cross(u, v [3]float64) [3]float64 {
	return [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}
