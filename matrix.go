// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac

import (
	"runtime"
	"sync"

	"github.com/js-arias/unifrac/dist"
	"github.com/js-arias/unifrac/otu"
)

// Param is a collection of parameters
// for the calculation of a distance matrix.
type Param struct {
	// Table is a sample-feature presence table
	Table *otu.Table

	// Norm divides each distance
	// by the total branch length of the tree,
	// scaling it to [0, 1]
	Norm bool

	// CPU is the number of goroutines
	// used for the calculation.
	// Any value smaller than one
	// uses all available CPUs.
	CPU int
}

// Matrix returns the distance matrix
// between every pair of samples of a table.
// Each pair is independent of any other pair,
// so all pairs are calculated concurrently,
// each one writing its own cell of the matrix.
// The diagonal is always zero
// and is never calculated.
func (t *Tree) Matrix(p Param) *dist.Matrix {
	cpu := p.CPU
	if cpu < 1 {
		cpu = runtime.GOMAXPROCS(0)
	}

	samples := p.Table.Samples()
	m := dist.New(samples)
	pos := t.tablePos(p.Table)
	sums := t.matchedSums(pos, p.Table)

	scale := 1.0
	if p.Norm && t.total > 0 {
		scale = 1 / t.total
	}

	type pairType struct {
		i, j int
	}
	pairChan := make(chan pairType, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		go func() {
			for pr := range pairChan {
				m.Set(pr.i, pr.j, t.pair(pos, sums, p.Table, pr.i, pr.j)*scale)
				wg.Done()
			}
		}()
	}
	for i := range samples {
		for j := i + 1; j < len(samples); j++ {
			wg.Add(1)
			pairChan <- pairType{i: i, j: j}
		}
	}
	close(pairChan)
	wg.Wait()

	return m
}
