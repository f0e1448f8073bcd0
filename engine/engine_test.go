package engine

import (
	"slices"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/agelife/model"
	"github.com/sheikhrachel/agelife/rules"
)

func newBlankEngine(t *testing.T, w, h int) *GridEngine {
	t.Helper()
	o := DefaultOptions()
	o.Width, o.Height = w, h
	o.LiveProbability = 0
	o.Running = false
	o.Seed = 1
	e, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustToggle(t *testing.T, e *GridEngine, cells ...[2]int) {
	t.Helper()
	for _, c := range cells {
		if err := e.Toggle(c[0], c[1]); err != nil {
			t.Fatalf("Toggle%v: %v", c, err)
		}
	}
}

func mustAge(t *testing.T, e *GridEngine, x, y int) int {
	t.Helper()
	age, err := e.Age(x, y)
	if err != nil {
		t.Fatalf("Age(%d,%d): %v", x, y, err)
	}
	return age
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		want   error
	}{
		{"zero width", func(o *Options) { o.Width = 0 }, ErrInvalidDimensions},
		{"negative height", func(o *Options) { o.Height = -2 }, ErrInvalidDimensions},
		{"probability above one", func(o *Options) { o.LiveProbability = 1.5 }, ErrInvalidProbability},
		{"negative probability", func(o *Options) { o.LiveProbability = -0.1 }, ErrInvalidProbability},
		{"zero interval", func(o *Options) { o.TickIntervalMs = 0 }, ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			if _, err := New(o); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewUsesOptions(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height = 7, 5
	o.TickIntervalMs = 250
	o.Running = false
	o.Threshold = rules.ThresholdAtLeast
	e, err := New(o)
	if err != nil {
		t.Fatal(err)
	}

	st := e.State()
	if st.Width != 7 || st.Height != 5 || st.TickIntervalMs != 250 || st.Running || st.Generation != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
	if e.Threshold() != rules.ThresholdAtLeast {
		t.Fatalf("threshold %v", e.Threshold())
	}
	if len(e.Cells()) != 35 {
		t.Fatalf("expected 35 cells, got %d", len(e.Cells()))
	}
}

func TestStepIncrementsGenerationAndKeepsSize(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height, o.Seed = 12, 9, 5
	o.LiveProbability = 0.2
	e, err := New(o)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		e.Step()
		if e.Generation() != i {
			t.Fatalf("generation %d after %d steps", e.Generation(), i)
		}
		if e.Width() != 12 || e.Height() != 9 {
			t.Fatalf("grid resized to %dx%d", e.Width(), e.Height())
		}
	}
}

func TestBirthAndAging(t *testing.T) {
	e := newBlankEngine(t, 5, 5)
	// horizontal blinker
	mustToggle(t, e, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})

	e.Step()
	if got := mustAge(t, e, 2, 1); got != 1 {
		t.Fatalf("born cell age %d, want 1", got)
	}
	if got := mustAge(t, e, 2, 2); got != 2 {
		t.Fatalf("surviving centre age %d, want 2", got)
	}
	if got := mustAge(t, e, 1, 2); got != 0 {
		t.Fatalf("under-populated end age %d, want 0", got)
	}

	e.Step()
	if got := mustAge(t, e, 1, 2); got != 1 {
		t.Fatalf("reborn end age %d, want 1", got)
	}
	if got := mustAge(t, e, 2, 2); got != 3 {
		t.Fatalf("centre age %d, want 3", got)
	}
	if e.Generation() != 2 {
		t.Fatalf("generation %d, want 2", e.Generation())
	}
}

func TestToggle(t *testing.T) {
	e := newBlankEngine(t, 4, 4)
	e.Step()
	before := e.Snapshot()

	if err := e.Toggle(1, 2); err != nil {
		t.Fatal(err)
	}
	if got := mustAge(t, e, 1, 2); got == 0 {
		t.Fatal("toggled dead cell should be alive")
	}
	if e.Generation() != 1 {
		t.Fatalf("toggle changed generation to %d", e.Generation())
	}
	for _, c := range e.Cells() {
		if c.X == 1 && c.Y == 2 {
			continue
		}
		if age, _ := before.Age(c.X, c.Y); age != c.Age {
			t.Fatalf("toggle changed cell (%d,%d)", c.X, c.Y)
		}
	}

	if err := e.Toggle(1, 2); err != nil {
		t.Fatal(err)
	}
	if got := mustAge(t, e, 1, 2); got != 0 {
		t.Fatalf("toggled live cell age %d, want 0", got)
	}
}

func TestToggleOldCellKills(t *testing.T) {
	e := newBlankEngine(t, 5, 5)
	mustToggle(t, e, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})
	e.Step()
	if mustAge(t, e, 2, 2) != 2 {
		t.Fatal("setup: centre should be age 2")
	}
	mustToggle(t, e, [2]int{2, 2})
	if got := mustAge(t, e, 2, 2); got != 0 {
		t.Fatalf("toggling an old cell should kill it, got age %d", got)
	}
}

func TestOutOfBounds(t *testing.T) {
	e := newBlankEngine(t, 3, 3)
	for _, c := range [][2]int{{3, 0}, {0, 3}, {-1, 1}, {1, -1}} {
		if err := e.Toggle(c[0], c[1]); !errors.Is(err, model.ErrOutOfBounds) {
			t.Fatalf("Toggle%v: expected ErrOutOfBounds, got %v", c, err)
		}
		if _, err := e.NeighborsOf(c[0], c[1]); !errors.Is(err, model.ErrOutOfBounds) {
			t.Fatalf("NeighborsOf%v: expected ErrOutOfBounds, got %v", c, err)
		}
		if _, err := e.Age(c[0], c[1]); !errors.Is(err, model.ErrOutOfBounds) {
			t.Fatalf("Age%v: expected ErrOutOfBounds, got %v", c, err)
		}
	}
}

func TestNeighborsOfCorner(t *testing.T) {
	e := newBlankEngine(t, 6, 4)
	neighbors, err := e.NeighborsOf(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Cell{
		{X: 5, Y: 3}, {X: 5, Y: 0}, {X: 5, Y: 1},
		{X: 0, Y: 3}, {X: 0, Y: 1},
		{X: 1, Y: 3}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}
	if !slices.Equal(neighbors, want) {
		t.Fatalf("neighbors of (0,0) = %v, want %v", neighbors, want)
	}
}

func TestClearThenStep(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height, o.LiveProbability = 10, 10, 0.5
	e, err := New(o)
	if err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Clear()
	e.Step()

	st := e.State()
	if st.Generation != 0 || st.Running || st.Width != 0 || st.Height != 0 || st.LiveCells != 0 {
		t.Fatalf("unexpected state after clear+step: %+v", st)
	}
	if len(e.Cells()) != 0 {
		t.Fatal("cleared engine still has cells")
	}
	if err := e.Toggle(0, 0); !errors.Is(err, model.ErrOutOfBounds) {
		t.Fatalf("toggle on cleared grid: %v", err)
	}
}

func TestRestartPausesAndReseeds(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height, o.LiveProbability = 8, 6, 1
	e, err := New(o)
	if err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Clear()
	e.Restart()

	st := e.State()
	if st.Running {
		t.Fatal("restart must leave the engine paused")
	}
	if st.Generation != 0 || st.Width != 8 || st.Height != 6 {
		t.Fatalf("unexpected state after restart: %+v", st)
	}
	if st.LiveCells != 48 {
		t.Fatalf("probability 1 reseed left %d live cells", st.LiveCells)
	}
}

func TestSeed(t *testing.T) {
	e := newBlankEngine(t, 4, 4)
	e.Step()

	if err := e.Seed(9, 3, 1); err != nil {
		t.Fatal(err)
	}
	st := e.State()
	if st.Width != 9 || st.Height != 3 || st.Generation != 0 || st.LiveCells != 27 {
		t.Fatalf("unexpected state after seed: %+v", st)
	}
	for _, c := range e.Cells() {
		if c.Age != 1 {
			t.Fatalf("seeded cell (%d,%d) age %d, want 1", c.X, c.Y, c.Age)
		}
	}

	if err := e.Seed(0, 3, 0.1); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	if err := e.Seed(3, 3, 2); !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("expected ErrInvalidProbability, got %v", err)
	}

	// Restart follows the last seeded dimensions
	e.Restart()
	if e.Width() != 9 || e.Height() != 3 {
		t.Fatalf("restart used %dx%d", e.Width(), e.Height())
	}
}

func TestRunningState(t *testing.T) {
	e := newBlankEngine(t, 3, 3)
	if e.Running() {
		t.Fatal("expected paused")
	}
	e.ToggleRunning()
	if !e.Running() {
		t.Fatal("expected running")
	}
	e.ToggleRunning()
	if e.Running() {
		t.Fatal("expected paused again")
	}
	e.SetRunning(true)
	if !e.Running() {
		t.Fatal("SetRunning(true) ignored")
	}
}

func TestTickInterval(t *testing.T) {
	e := newBlankEngine(t, 3, 3)
	if err := e.SetTickIntervalMs(250); err != nil {
		t.Fatal(err)
	}
	if e.TickIntervalMs() != 250 || e.TickInterval().Milliseconds() != 250 {
		t.Fatalf("interval %v", e.TickInterval())
	}
	if err := e.SetTickIntervalMs(0); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if e.TickIntervalMs() != 250 {
		t.Fatal("rejected interval must not be applied")
	}
}

func TestSameSeedSameHistory(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height, o.Seed = 20, 20, 77
	o.LiveProbability = 0.2

	a, err := New(o)
	if err != nil {
		t.Fatal(err)
	}
	o.Parallel = true
	o.Pool = model.NewGridPool()
	b, err := New(o)
	if err != nil {
		t.Fatal(err)
	}

	for range 15 {
		if !slices.Equal(a.Cells(), b.Cells()) {
			t.Fatalf("engines diverged at generation %d", a.Generation())
		}
		a.Step()
		b.Step()
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	e := newBlankEngine(t, 4, 4)
	snap := e.Snapshot()
	mustToggle(t, e, [2]int{0, 0})
	if age, _ := snap.Age(0, 0); age != 0 {
		t.Fatal("snapshot shares storage with the engine")
	}
}

func TestConcurrentReadersSeeWholeGrids(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height, o.Seed = 30, 20, 3
	o.LiveProbability = 0.3
	o.Parallel = true
	o.Pool = model.NewGridPool()
	e, err := New(o)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := e.Snapshot()
				if g.GetWidth() != 30 || g.GetHeight() != 20 {
					t.Errorf("reader saw a %dx%d grid", g.GetWidth(), g.GetHeight())
					return
				}
				_ = e.State()
			}
		}()
	}

	for range 50 {
		e.Step()
	}
	close(stop)
	wg.Wait()

	if e.Generation() != 50 {
		t.Fatalf("generation %d, want 50", e.Generation())
	}
}

func BenchmarkStep(b *testing.B) {
	for _, parallel := range []bool{false, true} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			o := DefaultOptions()
			o.Width, o.Height, o.Seed = 200, 200, 1
			o.LiveProbability = 0.2
			o.Parallel = parallel
			o.Pool = model.NewGridPool()
			e, err := New(o)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e.Step()
			}
		})
	}
}
