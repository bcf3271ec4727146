// Package gridquery loads a serialized adsorption energy grid and reports
// its global minimum together with interpolated energies at a list of
// fractional coordinates.
package gridquery

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kpotier/adsgrid/pkg/cube"
	"github.com/kpotier/adsgrid/pkg/util"

	"github.com/pelletier/go-toml"
)

// Type is the type of calculation.
var Type = "gridquery"

// GridQuery is a structure containing the parameters that can be parsed from
// a TOML configuration file. This structure can be instanced through the New
// method. Points are fractional coordinates; every component must be inside
// [0, 1].
type GridQuery struct {
	FileIn  string `toml:"gridquery.file_in"`
	FileOut string `toml:"gridquery.file_out"`

	Points [][]float64 `toml:"gridquery.points"`
}

// New returns an instance of the GridQuery structure. It reads and parses
// the configuration file given in argument. The file must be a TOML file.
func New(path string) (*GridQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var q GridQuery
	dec := toml.NewDecoder(f)
	err = dec.Decode(&q)
	if err != nil {
		return nil, err
	}

	if q.FileIn == "" {
		return nil, errors.New("FileIn must not be empty")
	}

	for i, p := range q.Points {
		if len(p) != 3 {
			return nil, fmt.Errorf("point %d must have 3 components (got %d)", i, len(p))
		}
		for _, v := range p {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("point %d is outside the unit cell: %v", i, p)
			}
		}
	}

	return &q, nil
}

// Start performs the calculation. It is a thread blocking method. It loads
// the grid, locates its global minimum and interpolates the energy at every
// configured point.
func (q *GridQuery) Start() error {
	grid, err := cube.Load(q.FileIn)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	out, err := util.Write(q.FileOut, q)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	return q.write(out, grid)
}

// write writes the results of this calculation into a file.
func (q *GridQuery) write(w io.Writer, grid *cube.Grid) error {
	idx, min, frac := grid.Minimum()
	fmt.Fprintf(w, "minimum: node (%d %d %d) frac (%g %g %g) energy %.5E kJ/mol\n",
		idx[0], idx[1], idx[2], frac[0], frac[1], frac[2], min)

	if len(q.Points) == 0 {
		return nil
	}

	fmt.Fprintln(w, "x y z energy(kJ/mol)")
	for i, p := range q.Points {
		e, err := grid.EnergyAt(p[0], p[1], p[2])
		if err != nil {
			return fmt.Errorf("EnergyAt (point %d): %w", i, err)
		}
		fmt.Fprintf(w, "%g %g %g %.5E\n", p[0], p[1], p[2], e)
	}

	return nil
}
