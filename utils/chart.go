package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotEnoughData is returned when fewer than two ticks were recorded
var ErrNotEnoughData = errors.New("need at least two recorded ticks to chart")

const (
	chartWidth  = 900
	chartHeight = 300
)

// RenderPopulationChart draws live cells per tick as a PNG line chart
func RenderPopulationChart(population []int, w io.Writer) error {
	if len(population) < 2 {
		return errors.Wrapf(ErrNotEnoughData, "[RenderPopulationChart] got %d", len(population))
	}

	xs := make([]float64, len(population))
	ys := make([]float64, len(population))
	peak := 0
	for i, p := range population {
		xs[i] = float64(i + 1)
		ys[i] = float64(p)
		peak = max(peak, p)
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name:  "Tick",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Live cells",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak + 1)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Population",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 46, G: 125, B: 50, A: 255}, StrokeWidth: 2.0},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return errors.Wrap(err, "[RenderPopulationChart] failed to render")
	}
	return nil
}

// WritePopulationChart renders the chart into a file
func WritePopulationChart(population []int, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "[WritePopulationChart] failed to create file: %+v", filename)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "[WritePopulationChart] failed to close file: %+v", filename)
		}
	}()
	return RenderPopulationChart(population, f)
}
