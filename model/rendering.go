package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/logrusorgru/aurora"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	macosClearCmd = "clear"
)

// TerminalRenderer draws a grid as text, colouring cells by age class
type TerminalRenderer struct {
	out io.Writer
	au  aurora.Aurora
}

// NewTerminalRenderer creates a renderer writing to out; colors toggles ANSI colouring
func NewTerminalRenderer(out io.Writer, colors bool) *TerminalRenderer {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalRenderer{out: out, au: aurora.NewAurora(colors)}
}

func (r *TerminalRenderer) cell(age int) string {
	switch ClassOf(age) {
	case ClassBorn:
		return r.au.BrightGreen(gridPosBlock).String()
	case ClassStable:
		return r.au.Green(gridPosBlock).String()
	default:
		return gridPosEmpty
	}
}

// Display renders the grid
func (r *TerminalRenderer) Display(g *Grid) error {
	w := bufio.NewWriter(r.out)
	for y := range g.height {
		for x := range g.width {
			if _, err := w.WriteString(r.cell(g.cells[y][x])); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Status prints a one-line summary under the grid
func (r *TerminalRenderer) Status(format string, args ...any) {
	fmt.Fprintln(r.out, r.au.Cyan(fmt.Sprintf(format, args...)).String())
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	cmd := exec.Command(macosClearCmd)
	cmd.Stdout = r.out
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(r.out, "Error clearing terminal:", err)
	}
}
