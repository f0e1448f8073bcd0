package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/integrii/flaggy"

	"github.com/sheikhrachel/agelife/driver"
	"github.com/sheikhrachel/agelife/engine"
	"github.com/sheikhrachel/agelife/model"
	"github.com/sheikhrachel/agelife/rules"
	"github.com/sheikhrachel/agelife/utils"
)

const version = "0.1.0"

// cliFlags holds command line overrides. Zero values mean "not given".
type cliFlags struct {
	configPath  string
	width       int
	height      int
	probability float64
	intervalMs  int
	threshold   string
	generations int
	seed        int64
	running     bool
	paused      bool
	serial      bool
	noColor     bool
	autoRestart bool
	chartPath   string
}

// parseFlags reads the command line
func parseFlags() cliFlags {
	f := cliFlags{probability: -1, generations: -1}

	flaggy.SetName("agelife")
	flaggy.SetDescription("Conway's Game of Life on a torus, with cells that age")
	flaggy.SetVersion(version)
	flaggy.DefaultParser.ShowHelpOnUnexpected = true

	flaggy.String(&f.configPath, "c", "config", "Path to a JSON config file")
	flaggy.Int(&f.width, "x", "width", "Width of the grid")
	flaggy.Int(&f.height, "y", "height", "Height of the grid")
	flaggy.Float64(&f.probability, "p", "probability", "Chance that a cell starts alive, within [0, 1]")
	flaggy.Int(&f.intervalMs, "i", "interval", "Milliseconds between generations")
	flaggy.String(&f.threshold, "t", "threshold", "Crowding threshold ["+rules.ThresholdExact.String()+"|"+rules.ThresholdAtLeast.String()+"]")
	flaggy.Int(&f.generations, "g", "generations", "Stop after this many generations, 0 for no limit")
	flaggy.Int64(&f.seed, "s", "seed", "Random seed, 0 for time based")
	flaggy.Bool(&f.running, "r", "running", "Start running")
	flaggy.Bool(&f.paused, "", "paused", "Start paused")
	flaggy.Bool(&f.serial, "", "serial", "Compute generations on one goroutine")
	flaggy.Bool(&f.noColor, "", "no-color", "Disable coloured output")
	flaggy.Bool(&f.autoRestart, "a", "auto-restart", "Reseed on extinction or stagnation")
	flaggy.String(&f.chartPath, "", "chart", "Write a population chart PNG here on exit")

	flaggy.Parse()
	return f
}

// loadConfig builds the config from defaults, an optional file and the flags
func loadConfig(f cliFlags) (utils.Config, error) {
	config := utils.DefaultConfig()
	if f.configPath != "" {
		var err error
		if config, err = utils.LoadConfig(f.configPath); err != nil {
			return config, err
		}
	}
	applyFlags(&config, f)
	return config, config.Validate()
}

func applyFlags(c *utils.Config, f cliFlags) {
	if f.width != 0 {
		c.Width = f.width
	}
	if f.height != 0 {
		c.Height = f.height
	}
	if f.probability >= 0 {
		c.LiveProbability = f.probability
	}
	if f.intervalMs != 0 {
		c.TickIntervalMs = f.intervalMs
	}
	if f.threshold != "" {
		c.Threshold = f.threshold
	}
	if f.generations >= 0 {
		c.MaxGenerations = f.generations
	}
	if f.seed != 0 {
		c.Seed = f.seed
	}
	if f.running {
		c.Running = true
	}
	if f.paused {
		c.Running = false
	}
	if f.serial {
		c.UseParallel = false
	}
	if f.noColor {
		c.Color = false
	}
	if f.autoRestart {
		c.AutoRestart = true
	}
	if f.chartPath != "" {
		c.ChartPath = f.chartPath
	}
}

// initializeEngine sets up the initial simulation state
func initializeEngine(config utils.Config) (*engine.GridEngine, error) {
	threshold, err := rules.ParseThreshold(config.Threshold)
	if err != nil {
		return nil, err
	}

	o := engine.DefaultOptions()
	o.Width = config.Width
	o.Height = config.Height
	o.LiveProbability = config.LiveProbability
	o.TickIntervalMs = config.TickIntervalMs
	o.Running = config.Running
	o.Threshold = threshold
	o.Parallel = config.UseParallel
	if config.Seed != 0 {
		o.Seed = config.Seed
	}
	if config.UseMemoryPool {
		o.Pool = model.NewGridPool()
	}
	return engine.New(o)
}

// displayGameInfo shows the initial simulation information
func displayGameInfo(config utils.Config, e *engine.GridEngine) {
	st := e.State()
	fmt.Printf("Features: Memory Pool: %v, Parallel: %v, Threshold: %s\n",
		config.UseMemoryPool, config.UseParallel, e.Threshold())
	fmt.Printf("Grid: %dx%d | Initial living cells: %d | Interval: %dms\n",
		st.Width, st.Height, st.LiveCells, st.TickIntervalMs)
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// frameRenderer redraws the grid and status after each tick
func frameRenderer(e *engine.GridEngine, r *model.TerminalRenderer) func(driver.Frame) {
	return func(f driver.Frame) {
		r.Clear()
		if err := r.Display(e.Snapshot()); err != nil {
			fmt.Println("Error rendering grid:", err)
			return
		}
		r.Status("%s", statusLine(f))
	}
}

// statusLine formats the text shown under the grid
func statusLine(f driver.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gen: %d | Living: %d | Status: %s", f.State.Generation, f.State.LiveCells, f.Status)
	if f.Stats != nil && f.Stepped {
		fmt.Fprintf(&b, " | Density: %.1f%% | %.1f gen/sec | Avg Pop: %.1f",
			f.Stats.Density, f.Stats.GenerationsPerSecond, f.Stats.AveragePopulation)
	}
	if f.Restarted {
		fmt.Fprintf(&b, " | 🔄 Restarted due to %s", f.Reason)
	}
	return b.String()
}

// displayFinalStats prints the summary at exit
func displayFinalStats(stats *utils.Stats, steps int) {
	fmt.Printf("Final stats: %d generations in %.1f seconds\n",
		steps, stats.Runtime().Round(time.Millisecond).Seconds())
	fmt.Printf("Average: %.1f gen/sec, %.1f avg population\n",
		stats.GenerationsPerSecond, stats.AveragePopulation)
}

func writeChart(stats *utils.Stats, path string) error {
	return utils.WritePopulationChart(stats.Population, path)
}
