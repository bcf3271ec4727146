// Package lj evaluates the 12-6 Lennard-Jones interaction energy between a
// guest particle and the atoms of a periodic host structure. The summation
// runs over the periodic images of every host atom and uses a hard cutoff:
// pairs beyond the cutoff contribute nothing, pairs within it contribute the
// full, unsmoothed pair term.
package lj

import (
	"github.com/kpotier/adsgrid/pkg/unitcell"
	"github.com/kpotier/adsgrid/pkg/util"
)

// Atom is a host atom. Its Lennard-Jones parameters must already be mixed
// with those of the guest particle (the combining rule is applied upstream).
// Epsilon is expressed in Kelvin (epsilon/kB) and Sigma in angstroms.
type Atom struct {
	Pos     [3]float64 // fractional position inside the unit cell
	Epsilon float64
	Sigma   float64
}

// Energy returns the Lennard-Jones energy of a guest particle placed at the
// fractional coordinate frac, summed over every host atom and every periodic
// image inside the [-reps, reps] box along each lattice direction. The
// result keeps the units of Epsilon; converting to kJ/mol is the caller's
// job. A guest sitting on top of a host atom legitimately yields an extreme
// repulsive value; no clamping is applied.
func Energy(frac [3]float64, cell *unitcell.Cell, atoms []Atom, reps [3]int, cutoff float64) float64 {
	p := cell.Cart(frac)
	cutoff2 := util.Pow(cutoff, 2)

	var e float64
	for _, at := range atoms {
		for dx := -reps[0]; dx <= reps[0]; dx++ {
			for dy := -reps[1]; dy <= reps[1]; dy++ {
				for dz := -reps[2]; dz <= reps[2]; dz++ {
					img := cell.Cart([3]float64{
						at.Pos[0] + float64(dx),
						at.Pos[1] + float64(dy),
						at.Pos[2] + float64(dz),
					})

					var r2 float64
					for k := 0; k < 3; k++ {
						d := p[k] - img[k]
						r2 += d * d
					}

					if r2 > cutoff2 {
						continue
					}

					sr2 := util.Pow(at.Sigma, 2) / r2
					sr6 := util.Pow(sr2, 3)
					e += 4 * at.Epsilon * (util.Pow(sr6, 2) - sr6)
				}
			}
		}
	}

	return e
}
