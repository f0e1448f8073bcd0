// Package driver advances a GridEngine on a timer and reports each tick to the caller.
package driver

import (
	"context"
	"time"

	"github.com/sheikhrachel/agelife/engine"
	"github.com/sheikhrachel/agelife/utils"
)

// Status describes the simulation after a tick
type Status string

const (
	StatusActive   Status = "Active"
	StatusStagnant Status = "Stagnant"
	StatusExtinct  Status = "Extinct"
	StatusPaused   Status = "Paused"
)

// Restart reasons
const (
	ReasonExtinction = "extinction"
	ReasonStagnation = "stagnation detected"
)

// historySize is how many grid hashes are kept for cycle detection
const historySize = 5

// Options configures a Driver
type Options struct {
	// MaxGenerations stops Run after this many steps; 0 means no limit
	MaxGenerations int
	// AutoRestart reseeds and resumes the engine on extinction or stagnation
	AutoRestart bool
	// StagnationThreshold is the number of consecutive stagnant ticks before a restart
	StagnationThreshold int
	// OnFrame is called after every tick
	OnFrame func(Frame)
}

// Frame is what the driver reports after a tick
type Frame struct {
	State     engine.State
	Stats     *utils.Stats
	Status    Status
	Stepped   bool
	Restarted bool
	Reason    string
}

// Driver owns cadence for a GridEngine. It is not safe for concurrent use;
// the engine it drives is.
type Driver struct {
	engine *engine.GridEngine
	opts   Options
	stats  *utils.Stats

	history       []string
	stagnantCount int
	steps         int
	lastTick      time.Time
}

// New creates a driver for the engine
func New(e *engine.GridEngine, opts Options) *Driver {
	return &Driver{
		engine:   e,
		opts:     opts,
		stats:    utils.NewStats(),
		lastTick: time.Now(),
	}
}

// Stats returns the running statistics
func (d *Driver) Stats() *utils.Stats {
	return d.stats
}

// Steps returns the number of steps the driver has performed, across restarts
func (d *Driver) Steps() int {
	return d.steps
}

// Done reports whether MaxGenerations has been reached
func (d *Driver) Done() bool {
	return d.opts.MaxGenerations > 0 && d.steps >= d.opts.MaxGenerations
}

// Run ticks at the engine's interval until ctx is done or MaxGenerations is reached.
// Interval changes made through the engine take effect on the next tick.
func (d *Driver) Run(ctx context.Context) error {
	interval := d.engine.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !d.Done() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		d.Tick()

		if next := d.engine.TickInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
	return nil
}

// Tick performs one driver iteration: step if running, then update stats,
// stagnation tracking and restart conditions
func (d *Driver) Tick() Frame {
	if !d.engine.Running() {
		frame := Frame{State: d.engine.State(), Stats: d.stats, Status: StatusPaused}
		d.emit(frame)
		return frame
	}

	d.engine.Step()
	d.steps++

	frame := d.updateGameState()
	frame.Stepped = true

	if restart, reason := d.checkRestartConditions(frame.State.LiveCells); restart {
		d.engine.Restart()
		d.engine.SetRunning(true)
		d.history = nil
		d.stagnantCount = 0

		frame.Restarted = true
		frame.Reason = reason
		frame.State = d.engine.State()
	}

	d.emit(frame)
	return frame
}

func (d *Driver) emit(frame Frame) {
	if d.opts.OnFrame != nil {
		d.opts.OnFrame(frame)
	}
}

// updateGameState records stats and stagnation for the grid that was just stepped
func (d *Driver) updateGameState() Frame {
	now := time.Now()
	st := d.engine.State()
	d.stats.Update(st.Generation, st.LiveCells, st.Width*st.Height, now.Sub(d.lastTick))
	d.lastTick = now

	if d.updateHistory(d.engine.Hash()) {
		d.stagnantCount++
	} else {
		d.stagnantCount = 0
	}

	status := StatusActive
	if d.stagnantCount > 0 {
		status = StatusStagnant
	}
	if st.LiveCells == 0 {
		status = StatusExtinct
	}
	return Frame{State: st, Stats: d.stats, Status: status}
}

// updateHistory reports whether hash repeats one of the last three grids
// (a still life or a period 2 or 3 oscillator), then records it
func (d *Driver) updateHistory(hash string) bool {
	stagnant := false
	for i := len(d.history) - 1; i >= 0 && i >= len(d.history)-3; i-- {
		if d.history[i] == hash {
			stagnant = true
			break
		}
	}

	d.history = append(d.history, hash)
	// Keep only the last few states to detect cycles
	if len(d.history) > historySize {
		d.history = d.history[1:]
	}
	return stagnant
}

// checkRestartConditions determines if the simulation should restart
func (d *Driver) checkRestartConditions(liveCells int) (bool, string) {
	if !d.opts.AutoRestart {
		return false, ""
	}
	if liveCells == 0 {
		return true, ReasonExtinction
	}
	if d.opts.StagnationThreshold > 0 && d.stagnantCount >= d.opts.StagnationThreshold {
		return true, ReasonStagnation
	}
	return false, ""
}
