// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac

import (
	"math"

	"github.com/js-arias/unifrac/otu"
)

// DiffTol is the minimum difference
// between two sample frequencies of a taxon
// to be taken into account.
// Smaller differences are floating point noise
// and their contribution to the distance is zero.
const diffTol = 1e-14

// Pair returns the unweighted UniFrac distance
// between samples i and j of a presence table.
// The distance is the sum,
// over every branch of the tree,
// of the branch length
// multiplied by the absolute frequency imbalance
// that crosses the branch.
// The frequencies of each sample are normalized
// over the table taxa that are terminals of the tree,
// so any taxon outside the tree
// never affects the distance.
func (t *Tree) Pair(tab *otu.Table, i, j int) float64 {
	pos := t.tablePos(tab)
	return t.pair(pos, t.matchedSums(pos, tab), tab, i, j)
}

// Pair makes the up-pass of the EMDUniFrac algorithm:
// the frequency differences are set at the terminals
// and then propagated towards the root,
// position by position,
// so each branch is visited only once.
// The pos slice aligns table rows with tree positions
// (a negative position is a taxon outside the tree),
// and the sums slice is the normalization factor
// of each sample.
func (t *Tree) pair(pos []int, sums []float64, tab *otu.Table, i, j int) float64 {
	partial := make([]float64, len(t.tint))
	for tx, p := range pos {
		if p < 0 {
			continue
		}
		var fi, fj float64
		if sums[i] > 0 {
			fi = tab.Value(tx, i) / sums[i]
		}
		if sums[j] > 0 {
			fj = tab.Value(tx, j) / sums[j]
		}
		d := fi - fj
		if math.Abs(d) > diffTol {
			partial[p] = d
		}
	}

	var z float64
	for p := range partial {
		if t.tint[p] == p {
			// the root has no parent branch
			continue
		}
		v := partial[p]
		partial[t.tint[p]] += v
		z += t.lint[p] * math.Abs(v)
	}
	return z
}

// TablePos returns the tree position
// of each taxon of the table,
// using -1 for table taxa
// that are not terminals of the tree.
func (t *Tree) tablePos(tab *otu.Table) []int {
	taxa := tab.Taxa()
	pos := make([]int, len(taxa))
	for tx, tax := range taxa {
		p, ok := t.terms[canon(tax)]
		if !ok {
			p = -1
		}
		pos[tx] = p
	}
	return pos
}

// MatchedSums returns, for each sample of the table,
// the sum of the frequencies of the taxa
// that are terminals of the tree.
// Dividing a sample by its sum
// removes any frequency mass
// of taxa outside the tree,
// so a sample keeps the same distribution
// whether the off-tree taxa are in the table or not.
func (t *Tree) matchedSums(pos []int, tab *otu.Table) []float64 {
	sums := make([]float64, tab.Cols())
	for tx, p := range pos {
		if p < 0 {
			continue
		}
		for s := range sums {
			sums[s] += tab.Value(tx, s)
		}
	}
	return sums
}

// Unmatched returns the number of table taxa
// that are not terminals of the tree.
// Such taxa do not contribute to any distance.
func (t *Tree) Unmatched(tab *otu.Table) int {
	var u int
	for _, p := range t.tablePos(tab) {
		if p < 0 {
			u++
		}
	}
	return u
}
