package cube

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// perLine is the number of energy values printed per line within one z run.
const perLine = 6

// WriteFile writes the grid to path in the Gaussian cube text format. The
// two comment strings become the two free-text header lines. The file is
// closed on every path; a write failure is reported rather than leaving a
// half-written file pass for a complete one silently.
func (g *Grid) WriteFile(path, comment1, comment2 string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = g.Write(f, comment1, comment2)
	cerr := f.Close()
	if err != nil {
		return err
	}
	return cerr
}

// Write writes the grid to w in the Gaussian cube text format:
//
//	line 1-2   free-text comments
//	line 3     natoms (always 0 here) and the Cartesian origin
//	line 4-6   nodes per axis and the Cartesian vector of one voxel step
//	rest       energies in scientific notation, z fastest, 6 per line,
//	           each (i, j) z run starting on a fresh line
func (g *Grid) Write(w io.Writer, comment1, comment2 string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, comment1)
	fmt.Fprintln(bw, comment2)
	fmt.Fprintf(bw, "%5d %11.6f %11.6f %11.6f\n", 0, 0.0, 0.0, 0.0)

	n := [3]int{g.nx, g.ny, g.nz}
	for d := 0; d < 3; d++ {
		fmt.Fprintf(bw, "%5d %11.6f %11.6f %11.6f\n",
			n[d], g.axis[d][0], g.axis[d][1], g.axis[d][2])
	}

	for i := 0; i < g.nx; i++ {
		for j := 0; j < g.ny; j++ {
			col := 0
			for k := 0; k < g.nz; k++ {
				fmt.Fprintf(bw, "%13.5E", g.At(i, j, k))
				col++
				if col == perLine {
					bw.WriteByte('\n')
					col = 0
				}
			}
			if col != 0 {
				bw.WriteByte('\n')
			}
		}
	}

	return bw.Flush()
}
