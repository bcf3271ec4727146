package cube

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a grid from the cube file at path. The returned grid is
// read-only; concurrent queries against it are safe.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Read parses a grid from the cube text format described in Write. The
// dimensions are taken from the first field of the three axis lines; the
// number of values that follows must match them exactly, otherwise ErrFormat
// is returned and no grid at all.
func Read(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)

	for l := 0; l < 2; l++ {
		if _, err := readLine(br); err != nil {
			return nil, fmt.Errorf("%w: missing comment line %d", ErrFormat, l+1)
		}
	}

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("%w: missing atom count line", ErrFormat)
	}
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: atom count line has %d fields (expected 4)", ErrFormat, len(fields))
	}
	natoms, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: atom count: %v", ErrFormat, err)
	}

	g := new(Grid)
	var n [3]int
	for d := 0; d < 3; d++ {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("%w: missing axis line %d", ErrFormat, d+1)
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: axis line %d has %d fields (expected 4)", ErrFormat, d+1, len(fields))
		}

		n[d], err = strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: axis line %d: %v", ErrFormat, d+1, err)
		}
		if n[d] < 2 {
			return nil, fmt.Errorf("%w: axis line %d: %d nodes (at least 2)", ErrFormat, d+1, n[d])
		}

		for k := 0; k < 3; k++ {
			g.axis[d][k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: axis line %d: %v", ErrFormat, d+1, err)
			}
		}
	}

	// This tool always writes natoms as 0, but cube files produced elsewhere
	// may carry an atom listing; skip it.
	for a := 0; a < natoms; a++ {
		if _, err := readLine(br); err != nil {
			return nil, fmt.Errorf("%w: missing atom line %d", ErrFormat, a+1)
		}
	}

	g.nx, g.ny, g.nz = n[0], n[1], n[2]
	g.dx = 1 / float64(g.nx-1)
	g.dy = 1 / float64(g.ny-1)
	g.dz = 1 / float64(g.nz-1)
	g.data = make([]float64, g.nx*g.ny*g.nz)

	idx := 0
	for {
		line, err := readLine(br)
		if err != nil {
			break
		}
		for _, field := range strings.Fields(line) {
			if idx >= len(g.data) {
				return nil, fmt.Errorf("%w: more values than the %dx%dx%d header announces",
					ErrFormat, g.nx, g.ny, g.nz)
			}
			g.data[idx], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: value %d: %v", ErrFormat, idx+1, err)
			}
			idx++
		}
	}

	if idx != len(g.data) {
		return nil, fmt.Errorf("%w: %d values for a %dx%dx%d grid",
			ErrFormat, idx, g.nx, g.ny, g.nz)
	}

	return g, nil
}

// readLine returns the next line without its terminator. A non-empty last
// line without a trailing newline is still returned.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
