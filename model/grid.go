package model

import (
	"crypto/md5"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/agelife/rules"
)

// ErrOutOfBounds is returned for coordinates outside the grid
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Grid is a fixed-size toroidal board of aging cells.
// A 0x0 grid is the empty grid.
type Grid struct {
	width  int
	height int
	cells  [][]int // ages indexed [y][x]
}

// NewGrid creates a new grid with the specified dimensions. Non-positive
// dimensions produce the empty grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Reset(width, height)
	return g
}

// GetWidth returns the width of the grid
func (g *Grid) GetWidth() int {
	return g.width
}

// GetHeight returns the height of the grid
func (g *Grid) GetHeight() int {
	return g.height
}

// Empty reports whether the grid holds no cells
func (g *Grid) Empty() bool {
	return g.width == 0 || g.height == 0
}

// Reset resets the grid to new dimensions with every cell dead
func (g *Grid) Reset(width, height int) {
	if width <= 0 || height <= 0 {
		g.width, g.height, g.cells = 0, 0, nil
		return
	}
	g.width = width
	g.height = height

	// Resize cells if needed
	if len(g.cells) != height {
		g.cells = make([][]int, height)
	}
	for i := range g.cells {
		if len(g.cells[i]) != width {
			g.cells[i] = make([]int, width)
		} else {
			clear(g.cells[i])
		}
	}
}

// Clear kills all cells
func (g *Grid) Clear() {
	for y := range g.height {
		clear(g.cells[y])
	}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) checkBounds(x, y int) error {
	if !g.inBounds(x, y) {
		return errors.Wrapf(ErrOutOfBounds, "(%d,%d) not in %dx%d grid", x, y, g.width, g.height)
	}
	return nil
}

// Age returns the age of a cell
func (g *Grid) Age(x, y int) (int, error) {
	if err := g.checkBounds(x, y); err != nil {
		return 0, errors.Wrap(err, "[Age]")
	}
	return g.cells[y][x], nil
}

// Cell returns the cell at (x, y)
func (g *Grid) Cell(x, y int) (Cell, error) {
	if err := g.checkBounds(x, y); err != nil {
		return Cell{}, errors.Wrap(err, "[Cell]")
	}
	return Cell{X: x, Y: y, Age: g.cells[y][x]}, nil
}

// SetAge sets the age of a cell; negative ages are stored as 0
func (g *Grid) SetAge(x, y, age int) error {
	if err := g.checkBounds(x, y); err != nil {
		return errors.Wrap(err, "[SetAge]")
	}
	g.cells[y][x] = max(age, 0)
	return nil
}

// wrap maps a neighbor index that stepped one past either edge back onto the torus
func wrap(i, size int) int {
	switch i {
	case -1:
		return size - 1
	case size:
		return 0
	}
	return i
}

// neighborOffsets lists the Moore neighborhood in lookup order
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// NeighborsOf returns the 8 toroidally wrapped neighbors of (x, y)
func (g *Grid) NeighborsOf(x, y int) ([]Cell, error) {
	if err := g.checkBounds(x, y); err != nil {
		return nil, errors.Wrap(err, "[NeighborsOf]")
	}
	neighbors := make([]Cell, 0, len(neighborOffsets))
	for _, o := range neighborOffsets {
		nx, ny := wrap(x+o[0], g.width), wrap(y+o[1], g.height)
		neighbors = append(neighbors, Cell{X: nx, Y: ny, Age: g.cells[ny][nx]})
	}
	return neighbors, nil
}

// CountAliveNeighbors counts the live cells around (x, y). The caller guarantees bounds.
func (g *Grid) CountAliveNeighbors(x, y int) int {
	count := 0
	for _, o := range neighborOffsets {
		if g.cells[wrap(y+o[1], g.height)][wrap(x+o[0], g.width)] != 0 {
			count++
		}
	}
	return count
}

func (g *Grid) nextRows(next *Grid, startRow, endRow int, threshold rules.Threshold) {
	for y := startRow; y < endRow; y++ {
		for x := range g.width {
			next.cells[y][x] = rules.NextAge(g.CountAliveNeighbors(x, y), g.cells[y][x], threshold)
		}
	}
}

// NextGeneration builds the next generation into a new grid. The receiver is
// only read, so every neighbor count sees the pre-step state.
func (g *Grid) NextGeneration(threshold rules.Threshold, parallel bool, pool *GridPool) *Grid {
	var next *Grid
	if pool != nil {
		next = pool.Get(g.width, g.height)
	} else {
		next = NewGrid(g.width, g.height)
	}
	if g.Empty() {
		return next
	}
	if !parallel {
		g.nextRows(next, 0, g.height, threshold)
		return next
	}

	var (
		eg            errgroup.Group
		numWorkers    = runtime.NumCPU()
		rowsPerWorker = (g.height + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.height)
		)
		if startRow >= g.height {
			break
		}

		eg.Go(func() error {
			g.nextRows(next, startRow, endRow, threshold)
			return nil
		})
	}

	// workers never fail
	_ = eg.Wait()

	return next
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for y := range g.height {
		for x := range g.width {
			if g.cells[y][x] != 0 {
				count++
			}
		}
	}
	return
}

// GetGridHash returns an MD5 hash of which cells are alive. Ages are
// ignored so a still life hashes the same every generation.
func (g *Grid) GetGridHash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.width, g.height)
	for y := range g.height {
		for x := range g.width {
			if g.cells[y][x] != 0 {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Randomize sets every cell to age 1 with probability liveProbability, otherwise to 0
func (g *Grid) Randomize(rng *rand.Rand, liveProbability float64) {
	for y := range g.height {
		for x := range g.width {
			if rng.Float64() >= 1-liveProbability {
				g.cells[y][x] = 1
			} else {
				g.cells[y][x] = 0
			}
		}
	}
}

// Cells enumerates every cell in row-major order
func (g *Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.width*g.height)
	for y := range g.height {
		for x := range g.width {
			cells = append(cells, Cell{X: x, Y: y, Age: g.cells[y][x]})
		}
	}
	return cells
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.width, g.height)
	for y := range g.height {
		copy(c.cells[y], g.cells[y])
	}
	return c
}

// Equal reports whether both grids have the same dimensions and ages
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for y := range g.height {
		for x := range g.width {
			if g.cells[y][x] != other.cells[y][x] {
				return false
			}
		}
	}
	return true
}

// place sets the given offsets alive relative to (startX, startY), wrapping around the edges
func (g *Grid) place(startX, startY int, offsets [][2]int) {
	if g.Empty() {
		return
	}
	for _, o := range offsets {
		x := ((startX+o[0])%g.width + g.width) % g.width
		y := ((startY+o[1])%g.height + g.height) % g.height
		g.cells[y][x] = 1
	}
}

// AddGlider adds a glider pattern at the specified position
func (g *Grid) AddGlider(startX, startY int) {
	g.place(startX, startY, [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}})
}

// AddBlinker adds a horizontal blinker oscillator pattern
func (g *Grid) AddBlinker(startX, startY int) {
	g.place(startX, startY, [][2]int{{0, 0}, {1, 0}, {2, 0}})
}
