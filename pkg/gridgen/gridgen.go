// Package gridgen computes the adsorption energy grid of a guest particle
// inside a periodic host structure and serializes it as a Gaussian cube
// file. The host atoms must carry Lennard-Jones parameters already mixed
// with those of the guest.
package gridgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kpotier/adsgrid/pkg/cube"
	"github.com/kpotier/adsgrid/pkg/lj"
	"github.com/kpotier/adsgrid/pkg/unitcell"

	"github.com/pelletier/go-toml"
)

// Type is the type of calculation.
var Type = "gridgen"

// GridGen is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the New
// method. Cutoff and Spacing are in angstroms; Cell holds the three lattice
// vectors in Cartesian coordinates; AtomsPos, AtomsEpsilon and AtomsSigma
// are aligned by atom index, epsilon in Kelvin and sigma in angstroms.
type GridGen struct {
	Structure  string `toml:"gridgen.structure"`
	ForceField string `toml:"gridgen.forcefield"`
	Adsorbate  string `toml:"gridgen.adsorbate"`
	DirOut     string `toml:"gridgen.dir_out"`

	Cutoff  float64 `toml:"gridgen.cutoff"`
	Spacing float64 `toml:"gridgen.spacing"`

	Cell [][]float64 `toml:"gridgen.cell"`

	AtomsPos     [][]float64 `toml:"gridgen.atoms_pos"`
	AtomsEpsilon []float64   `toml:"gridgen.atoms_epsilon"`
	AtomsSigma   []float64   `toml:"gridgen.atoms_sigma"`

	cell  *unitcell.Cell
	atoms []lj.Atom
}

// New returns an instance of the GridGen structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*GridGen, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var gen GridGen
	dec := toml.NewDecoder(f)
	err = dec.Decode(&gen)
	if err != nil {
		return nil, err
	}

	if gen.Cutoff <= 0 {
		return nil, errors.New("Cutoff must be greater than 0")
	}
	if gen.Spacing <= 0 {
		return nil, errors.New("Spacing must be greater than 0")
	}

	if len(gen.Cell) != 3 {
		return nil, fmt.Errorf("Cell must contain 3 lattice vectors (got %d)", len(gen.Cell))
	}
	var vec [3][3]float64
	for d, v := range gen.Cell {
		if len(v) != 3 {
			return nil, fmt.Errorf("lattice vector %d must have 3 components (got %d)", d, len(v))
		}
		copy(vec[d][:], v)
	}

	gen.cell, err = unitcell.New(vec)
	if err != nil {
		return nil, err
	}

	if len(gen.AtomsPos) == 0 {
		return nil, errors.New("AtomsPos is empty")
	}
	if len(gen.AtomsEpsilon) != len(gen.AtomsPos) || len(gen.AtomsSigma) != len(gen.AtomsPos) {
		return nil, fmt.Errorf("length of AtomsEpsilon and AtomsSigma must match AtomsPos (%d and %d vs %d)",
			len(gen.AtomsEpsilon), len(gen.AtomsSigma), len(gen.AtomsPos))
	}

	gen.atoms = make([]lj.Atom, len(gen.AtomsPos))
	for i, pos := range gen.AtomsPos {
		if len(pos) != 3 {
			return nil, fmt.Errorf("atom position %d must have 3 components (got %d)", i, len(pos))
		}
		gen.atoms[i] = lj.Atom{
			Pos:     [3]float64{pos[0], pos[1], pos[2]},
			Epsilon: gen.AtomsEpsilon[i],
			Sigma:   gen.AtomsSigma[i],
		}
	}

	return &gen, nil
}

// FileOut returns the path of the cube file this calculation writes: one
// grid per (adsorbate, structure, force field) combination under DirOut.
func (g *GridGen) FileOut() string {
	name := fmt.Sprintf("%s_%s_%s.cube", g.Adsorbate, g.Structure, g.ForceField)
	return filepath.Join(g.DirOut, name)
}

// Start performs the calculation. It is a thread blocking method. The grid
// generation spreads the nodes over all the threads available; the file is
// written afterwards, in node order.
func (g *GridGen) Start() error {
	err := os.MkdirAll(g.DirOut, 0755)
	if err != nil {
		return err
	}

	grid := cube.Generate(g.cell, g.atoms, g.Spacing, g.Cutoff)

	comment1 := fmt.Sprintf("Adsorption energy grid: %s in %s (%s), kJ/mol",
		g.Adsorbate, g.Structure, g.ForceField)
	comment2 := fmt.Sprintf("cutoff %g A, spacing %g A", g.Cutoff, g.Spacing)

	err = grid.WriteFile(g.FileOut(), comment1, comment2)
	if err != nil {
		return fmt.Errorf("WriteFile: %w", err)
	}

	return nil
}
