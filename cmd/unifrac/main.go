// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// UniFrac is a tool to calculate unweighted UniFrac distances
// between biological samples.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/unifrac/cmd/unifrac/hist"
	"github.com/js-arias/unifrac/cmd/unifrac/matrix"
	"github.com/js-arias/unifrac/cmd/unifrac/terms"
)

var app = &command.Command{
	Usage: "unifrac <command> [<argument>...]",
	Short: "a tool to calculate unweighted UniFrac distances",
}

func init() {
	app.Add(hist.Command)
	app.Add(matrix.Command)
	app.Add(terms.Command)
}

func main() {
	app.Main()
}
