package rules

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownThreshold is returned when a threshold name cannot be parsed
var ErrUnknownThreshold = errors.New("unknown threshold")

// Threshold selects how a crowded neighborhood is compared when deciding
// whether a cell is born or keeps aging.
type Threshold int

const (
	// ThresholdExact fires on exactly 3 live neighbors. This is standard Conway Life (B3/S23).
	ThresholdExact Threshold = iota
	// ThresholdAtLeast fires on more than 2 live neighbors, so 4..8 neighbors also
	// give birth or survival. It is not standard Life.
	ThresholdAtLeast
)

const (
	thresholdExactName   = "exact"
	thresholdAtLeastName = "at-least"
)

// String returns the config name of the threshold
func (t Threshold) String() string {
	switch t {
	case ThresholdAtLeast:
		return thresholdAtLeastName
	default:
		return thresholdExactName
	}
}

// ParseThreshold maps a config name to a Threshold. An empty name selects ThresholdExact.
func ParseThreshold(name string) (Threshold, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", thresholdExactName, "==3":
		return ThresholdExact, nil
	case thresholdAtLeastName, ">2":
		return ThresholdAtLeast, nil
	}
	return ThresholdExact, errors.Wrapf(ErrUnknownThreshold, "[ParseThreshold] %q", name)
}

func (t Threshold) crowded(neighbors int) bool {
	if t == ThresholdAtLeast {
		return neighbors > 2
	}
	return neighbors == 3
}

/*
NextAge applies Conway's Game of Life rules to a cell that carries an age instead of
an alive flag.

A cell is born or keeps aging when the crowding threshold fires, or when it is alive
and has exactly 2 live neighbors; its age then grows by one. Otherwise it dies and
its age drops to 0.
*/
func NextAge(neighbors, age int, threshold Threshold) int {
	if threshold.crowded(neighbors) || (neighbors == 2 && age > 0) {
		return age + 1
	}
	return 0
}

// ApplyConwayRules reports whether a cell is alive in the next generation
func ApplyConwayRules(neighbors int, alive bool, threshold Threshold) bool {
	age := 0
	if alive {
		age = 1
	}
	return NextAge(neighbors, age, threshold) > 0
}
