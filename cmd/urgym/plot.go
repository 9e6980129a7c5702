package main

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// mean returns the mean of data, or 0 if data is empty
func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// plotReturns saves a line plot of episodic returns to filename. The
// image format is determined by the file extension.
func plotReturns(filename, title string, returns []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	points := make(plotter.XYs, len(returns))
	for i, r := range returns {
		points[i].X = float64(i + 1)
		points[i].Y = r
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "plotReturns")
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrap(err, "plotReturns")
	}
	return nil
}
