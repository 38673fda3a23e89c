// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package hist implements a command to plot
// the distribution of the distances
// of a distance matrix.
package hist

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/unifrac/dist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `hist [-p|--plot <image-file>] [--bins <number>]
	<matrix-file>`,
	Short: "plot a histogram of a distance matrix",
	Long: `
Command hist reads a distance matrix, as produced by the matrix command, and
plots a histogram of the distances between all sample pairs, printing a small
summary of the distance distribution in the standard output.

The argument of the command is the name of the matrix file.

By default, the histogram will be saved as 'hist.png'. Use the flag --plot,
or -p, to set a different file name; the extension of the file defines the
image format (for example, .png, .svg, or .pdf).

By default, 20 bins will be used for the histogram. Use the flag --bins to
set a different number of bins.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var plotFile string
var bins int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&plotFile, "plot", "hist.png", "")
	c.Flags().StringVar(&plotFile, "p", "hist.png", "")
	c.Flags().IntVar(&bins, "bins", 20, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting matrix file")
	}

	m, err := readMatrix(args[0])
	if err != nil {
		return err
	}

	vals := make(plotter.Values, 0, m.Len()*(m.Len()-1)/2)
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			vals = append(vals, m.Of(i, j))
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("on matrix file %q: no sample pairs", args[0])
	}

	fmt.Fprintf(c.Stdout(), "samples: %d\n", m.Len())
	fmt.Fprintf(c.Stdout(), "pairs: %d\n", len(vals))
	fmt.Fprintf(c.Stdout(), "min: %.6f\n", floats.Min(vals))
	fmt.Fprintf(c.Stdout(), "max: %.6f\n", floats.Max(vals))
	fmt.Fprintf(c.Stdout(), "mean: %.6f\n", stat.Mean(vals, nil))
	fmt.Fprintf(c.Stdout(), "stdev: %.6f\n", stat.StdDev(vals, nil))

	if err := makePlot(vals); err != nil {
		return err
	}
	return nil
}

func readMatrix(name string) (*dist.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := dist.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return m, nil
}

func makePlot(vals plotter.Values) error {
	p := plot.New()
	p.X.Label.Text = "UniFrac distance"
	p.Y.Label.Text = "pairs"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("while building histogram: %v", err)
	}
	p.Add(h)

	if err := p.Save(5*vg.Inch, 3*vg.Inch, plotFile); err != nil {
		return err
	}
	return nil
}
