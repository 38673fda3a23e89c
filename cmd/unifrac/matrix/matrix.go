// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package matrix implements a command to calculate
// the matrix of unweighted UniFrac distances
// between all samples of a sample-feature table.
package matrix

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"github.com/js-arias/unifrac"
	"github.com/js-arias/unifrac/dist"
	"github.com/js-arias/unifrac/otu"
)

var Command = &command.Command{
	Usage: `matrix -t|--tree <tree-file> -i|--input <table-file>
	-o|--output <file> [--norm] [--cpu <number>]`,
	Short: "calculate an unweighted UniFrac distance matrix",
	Long: `
Command matrix reads a phylogenetic tree and a sample-feature table, and
calculates the unweighted UniFrac distance between every pair of samples of
the table, writing the resulting distance matrix as a tab-delimited file.

The flag --tree, or -t, is required and sets the tree file. The tree must be
rooted, and in newick (parenthetical) format. If the file contains multiple
trees, only the first tree will be used.

The flag --input, or -i, is required and sets the sample-feature table, a
whitespace delimited file in which the first row contains the sample names,
and each following row contains a taxon name and its abundance on each
sample. Any abundance greater than zero is taken as a presence, as the
unweighted UniFrac distance ignores abundances. Taxa of the table that are
not terminals of the tree are ignored; the number of ignored taxa is reported
in the standard error.

The flag --output, or -o, is required and sets the output file. The output is
a tab-delimited file with a row and a column per sample, in the order of the
table; each cell is the distance between two samples with six decimal
digits.

By default, the distance is the sum of the lengths of the branches that lead
to taxa present in only one of the two samples, in the branch length units of
the tree file. If the flag --norm is set, each distance will be divided by
the total branch length of the tree, so all distances will be scaled between
0 and 1.

By default, all available CPUs will be used for the calculation. Set the flag
--cpu to use a different number of CPUs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFile string
var tableFile string
var output string
var normFlag bool
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "tree", "", "")
	c.Flags().StringVar(&treeFile, "t", "", "")
	c.Flags().StringVar(&tableFile, "input", "", "")
	c.Flags().StringVar(&tableFile, "i", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&normFlag, "norm", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
}

func run(c *command.Command, args []string) error {
	if treeFile == "" {
		return c.UsageError("expecting tree file, flag --tree")
	}
	if tableFile == "" {
		return c.UsageError("expecting sample-feature table, flag --input")
	}
	if output == "" {
		return c.UsageError("expecting output file, flag --output")
	}

	st, err := readNewick(treeFile)
	if err != nil {
		return err
	}
	t, err := unifrac.NewTree(st)
	if err != nil {
		return fmt.Errorf("on tree file %q: %v", treeFile, err)
	}

	tab, err := readTable(tableFile)
	if err != nil {
		return err
	}
	if tab.Cols() == 0 {
		return fmt.Errorf("on table file %q: no samples in table", tableFile)
	}
	tab.Normalize()

	if u := t.Unmatched(tab); u > 0 {
		fmt.Fprintf(c.Stderr(), "matrix: %d table taxa not in tree %q\n", u, t.Name())
	}

	m := t.Matrix(unifrac.Param{
		Table: tab,
		Norm:  normFlag,
		CPU:   numCPU,
	})
	if err := writeMatrix(m); err != nil {
		return err
	}
	return nil
}

// ReadNewick reads the first tree
// of a newick tree file.
func readNewick(name string) (*timetree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tn := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	c, err := timetree.Newick(f, tn, 0)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	ns := c.Names()
	if len(ns) == 0 {
		return nil, fmt.Errorf("while reading file %q: no trees in file", name)
	}
	return c.Tree(ns[0]), nil
}

func readTable(name string) (*otu.Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tab, err := otu.Read(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return tab, nil
}

func writeMatrix(m *dist.Matrix) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := m.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
