package model

// CellClass groups cells by age for display
type CellClass int

const (
	ClassDead CellClass = iota
	// ClassBorn is a cell alive for exactly one generation
	ClassBorn
	// ClassStable is a cell that has survived more than one generation
	ClassStable
)

// Cell is one grid position and the number of consecutive generations it has been alive
type Cell struct {
	X   int
	Y   int
	Age int
}

// Alive reports whether the cell is alive
func (c Cell) Alive() bool { return c.Age != 0 }

// Class returns the display class of the cell
func (c Cell) Class() CellClass {
	return ClassOf(c.Age)
}

// ClassOf returns the display class for an age
func ClassOf(age int) CellClass {
	switch {
	case age <= 0:
		return ClassDead
	case age == 1:
		return ClassBorn
	default:
		return ClassStable
	}
}

func (c CellClass) String() string {
	switch c {
	case ClassBorn:
		return "alive"
	case ClassStable:
		return "alive stable"
	default:
		return "dead"
	}
}
