// Package engine holds the simulation state of an aging Game of Life on a torus.
//
// GridEngine exposes plain query and command methods and never notifies anyone:
// a driver decides when to step and when to re-render.
package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/agelife/model"
	"github.com/sheikhrachel/agelife/rules"
)

var (
	ErrInvalidDimensions  = errors.New("grid dimensions must be positive")
	ErrInvalidProbability = errors.New("live probability must be within [0, 1]")
	ErrInvalidInterval    = errors.New("tick interval must be positive")
)

// Default options, matching the 50x50 board seeded at 10% that steps every 100ms
const (
	DefWidth           = 50
	DefHeight          = 50
	DefLiveProbability = 0.1
	DefTickIntervalMs  = 100
)

// Options configures a GridEngine
type Options struct {
	Width           int
	Height          int
	LiveProbability float64
	TickIntervalMs  int
	Running         bool
	Threshold       rules.Threshold
	Parallel        bool
	Pool            *model.GridPool
	Seed            int64
}

// DefaultOptions returns the standard configuration
func DefaultOptions() Options {
	return Options{
		Width:           DefWidth,
		Height:          DefHeight,
		LiveProbability: DefLiveProbability,
		TickIntervalMs:  DefTickIntervalMs,
		Running:         true,
		Threshold:       rules.ThresholdExact,
		Seed:            time.Now().UnixNano(),
	}
}

// State is a point-in-time summary for status text
type State struct {
	Generation     int
	Running        bool
	TickIntervalMs int
	Width          int
	Height         int
	LiveCells      int
}

// GridEngine owns the grid and applies one generation per Step.
// It is safe for concurrent use; a Step replaces the whole grid at once.
type GridEngine struct {
	mu sync.RWMutex

	grid         *model.Grid
	generation   int
	running      bool
	tickInterval time.Duration

	width           int
	height          int
	liveProbability float64
	threshold       rules.Threshold
	parallel        bool
	pool            *model.GridPool
	rng             *rand.Rand
}

// New validates the options and seeds the first grid
func New(o Options) (*GridEngine, error) {
	if err := validateSeed(o.Width, o.Height, o.LiveProbability); err != nil {
		return nil, errors.Wrap(err, "[New]")
	}
	if o.TickIntervalMs <= 0 {
		return nil, errors.Wrapf(ErrInvalidInterval, "[New] got %dms", o.TickIntervalMs)
	}

	e := &GridEngine{
		running:      o.Running,
		tickInterval: time.Duration(o.TickIntervalMs) * time.Millisecond,
		threshold:    o.Threshold,
		parallel:     o.Parallel,
		pool:         o.Pool,
		rng:          rand.New(rand.NewPCG(uint64(o.Seed), uint64(o.Seed)>>1)),
	}
	e.seed(o.Width, o.Height, o.LiveProbability)
	return e, nil
}

func validateSeed(width, height int, liveProbability float64) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "got %dx%d", width, height)
	}
	if !(liveProbability >= 0 && liveProbability <= 1) {
		return errors.Wrapf(ErrInvalidProbability, "got %v", liveProbability)
	}
	return nil
}

// seed requires e.mu to be held (or e to be unpublished)
func (e *GridEngine) seed(width, height int, liveProbability float64) {
	g := model.NewGrid(width, height)
	g.Randomize(e.rng, liveProbability)

	e.replace(g)
	e.width, e.height, e.liveProbability = width, height, liveProbability
	e.generation = 0
}

// replace swaps in a new grid and recycles the old one
func (e *GridEngine) replace(g *model.Grid) {
	old := e.grid
	e.grid = g
	if old != nil && old != g {
		model.GridToPool(old, e.pool)
	}
}

// NeighborsOf returns the 8 toroidally wrapped neighbors of (x, y) from the current grid
func (e *GridEngine) NeighborsOf(x, y int) ([]model.Cell, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.NeighborsOf(x, y)
}

// Step applies the transition rule to every cell and bumps the generation.
// Stepping the empty grid does nothing.
func (e *GridEngine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grid.Empty() {
		return
	}
	next := e.grid.NextGeneration(e.threshold, e.parallel, e.pool)
	e.replace(next)
	e.generation++
}

// Seed replaces the grid with a fresh random one and resets the generation
func (e *GridEngine) Seed(width, height int, liveProbability float64) error {
	if err := validateSeed(width, height, liveProbability); err != nil {
		return errors.Wrap(err, "[Seed]")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed(width, height, liveProbability)
	return nil
}

// Restart pauses the simulation and reseeds it with the last seeded dimensions
// and probability. The caller resumes it explicitly.
func (e *GridEngine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.seed(e.width, e.height, e.liveProbability)
}

// Toggle flips a cell between dead and freshly born
func (e *GridEngine) Toggle(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	age, err := e.grid.Age(x, y)
	if err != nil {
		return errors.Wrap(err, "[Toggle]")
	}
	next := 0
	if age == 0 {
		next = 1
	}
	return e.grid.SetAge(x, y, next)
}

// Clear empties the grid, resets the generation and pauses
func (e *GridEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replace(model.NewGrid(0, 0))
	e.generation = 0
	e.running = false
}

// ToggleRunning flips between running and paused
func (e *GridEngine) ToggleRunning() {
	e.mu.Lock()
	e.running = !e.running
	e.mu.Unlock()
}

// SetRunning sets the running gate
func (e *GridEngine) SetRunning(running bool) {
	e.mu.Lock()
	e.running = running
	e.mu.Unlock()
}

// Running reports whether automatic stepping is allowed
func (e *GridEngine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// SetTickIntervalMs changes the period between automatic steps
func (e *GridEngine) SetTickIntervalMs(ms int) error {
	if ms <= 0 {
		return errors.Wrapf(ErrInvalidInterval, "[SetTickIntervalMs] got %dms", ms)
	}
	e.mu.Lock()
	e.tickInterval = time.Duration(ms) * time.Millisecond
	e.mu.Unlock()
	return nil
}

// TickInterval returns the period between automatic steps
func (e *GridEngine) TickInterval() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickInterval
}

// TickIntervalMs returns the period between automatic steps in milliseconds
func (e *GridEngine) TickIntervalMs() int {
	return int(e.TickInterval() / time.Millisecond)
}

// Threshold returns the crowding threshold used by Step
func (e *GridEngine) Threshold() rules.Threshold {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// Generation returns the number of steps since the last seed or clear
func (e *GridEngine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Width returns the current grid width, 0 once cleared
func (e *GridEngine) Width() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.GetWidth()
}

// Height returns the current grid height, 0 once cleared
func (e *GridEngine) Height() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.GetHeight()
}

// Age returns the age of the cell at (x, y)
func (e *GridEngine) Age(x, y int) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Age(x, y)
}

// Cells enumerates a copy of every cell
func (e *GridEngine) Cells() []model.Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Cells()
}

// Snapshot returns a deep copy of the current grid
func (e *GridEngine) Snapshot() *model.Grid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Clone()
}

// Hash returns a digest of which cells are alive, ignoring ages
func (e *GridEngine) Hash() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.GetGridHash()
}

// State returns a consistent summary of the engine
func (e *GridEngine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{
		Generation:     e.generation,
		Running:        e.running,
		TickIntervalMs: int(e.tickInterval / time.Millisecond),
		Width:          e.grid.GetWidth(),
		Height:         e.grid.GetHeight(),
		LiveCells:      e.grid.CountLivingCells(),
	}
}
