// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of terminal taxa of a tree file.
package terms

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"github.com/js-arias/unifrac"
)

var Command = &command.Command{
	Usage: "terms <tree-file>",
	Short: "print a list of tree terminals",
	Long: `
Command terms reads a phylogenetic tree in newick (parenthetical) format and
prints the name of its terminal taxa in the standard output, sorted
alphabetically. If the file contains multiple trees, only the first tree
will be used.

The argument of the command is the name of the tree file.

Only the taxa printed by this command can be matched with the taxa of a
sample-feature table; any other table taxon will be ignored when calculating
distances.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}

	t, err := readNewick(args[0])
	if err != nil {
		return err
	}
	ft, err := unifrac.NewTree(t)
	if err != nil {
		return fmt.Errorf("on tree file %q: %v", args[0], err)
	}

	for _, term := range ft.Terms() {
		fmt.Fprintf(c.Stdout(), "%s\n", term)
	}
	return nil
}

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
