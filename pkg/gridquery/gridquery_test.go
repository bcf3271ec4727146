package gridquery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/adsgrid/pkg/cube"
	"github.com/kpotier/adsgrid/pkg/lj"
	"github.com/kpotier/adsgrid/pkg/unitcell"
)

// writeGrid generates a small grid and writes it into dir as a cube file.
func writeGrid(t *testing.T, dir string) string {
	t.Helper()

	cell, err := unitcell.New([3][3]float64{
		{10, 0, 0},
		{0, 10, 0},
		{0, 0, 10},
	})
	require.NoError(t, err)

	atoms := []lj.Atom{{Pos: [3]float64{0.25, 0.25, 0.25}, Epsilon: 148, Sigma: 3.73}}
	g := cube.Generate(cell, atoms, 5, 12.5)

	path := filepath.Join(dir, "grid.cube")
	require.NoError(t, g.WriteFile(path, "test grid", "kJ/mol"))
	return path
}

func writeCfg(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "gridquery.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("empty file_in", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, err := New(writeCfg(t, dir, "[gridquery]\nfile_out = \"out\"\n"))
		assert.Error(t, err)
	})

	t.Run("point with four components", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		body := "[gridquery]\nfile_in = \"g.cube\"\nfile_out = \"out\"\npoints = [[0.1, 0.2, 0.3, 0.4]]\n"
		_, err := New(writeCfg(t, dir, body))
		assert.Error(t, err)
	})

	t.Run("point outside the cell", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		body := "[gridquery]\nfile_in = \"g.cube\"\nfile_out = \"out\"\npoints = [[0.1, 1.2, 0.3]]\n"
		_, err := New(writeCfg(t, dir, body))
		assert.Error(t, err)
	})
}

func TestStart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	grid := writeGrid(t, dir)
	out := filepath.Join(dir, "report.toml")

	body := fmt.Sprintf(`[gridquery]
file_in = %q
file_out = %q
points = [[0.5, 0.5, 0.5], [0.0, 0.0, 0.0], [1.0, 1.0, 1.0]]
`, grid, out)

	q, err := New(writeCfg(t, dir, body))
	require.NoError(t, err)
	require.NoError(t, q.Start())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	report := string(b)

	assert.Contains(t, report, "Date: ")
	assert.Contains(t, report, "minimum: node (")
	assert.Contains(t, report, "x y z energy(kJ/mol)")

	// One result row per configured point.
	assert.Equal(t, 3, strings.Count(report, "\n0")+strings.Count(report, "\n1 "))
}

func TestStart_MissingGrid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := fmt.Sprintf("[gridquery]\nfile_in = %q\nfile_out = %q\n",
		filepath.Join(dir, "nope.cube"), filepath.Join(dir, "out"))

	q, err := New(writeCfg(t, dir, body))
	require.NoError(t, err)
	assert.Error(t, q.Start())
}
