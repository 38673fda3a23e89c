// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package unifrac implements the unweighted UniFrac distance
// between biological samples,
// using the EMDUniFrac formulation,
// in which the distance is calculated
// with a single up-pass over the tree
// instead of an explicit transport optimization.
package unifrac

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/js-arias/timetree"
	"gonum.org/v1/gonum/floats"
)

const millionYears = 1_000_000

// A Tree is a rooted phylogenetic tree
// flattened into arrays indexed by post-order position,
// so that any node position is larger
// than the position of all of its descendants.
// The flattening replaces pointer chasing
// with index arithmetic during the distance calculation.
//
// A Tree is immutable after creation
// and can be shared freely between goroutines.
type Tree struct {
	name string

	tint  []int     // position of the parent of each node
	lint  []float64 // branch length between each node and its parent
	taxon []string  // taxon name at terminal positions

	terms map[string]int // canonical taxon name -> position
	total float64        // sum of all branch lengths
}

// NewTree creates a flattened tree
// from a source time tree.
// It returns an error
// if the tree is empty,
// or a node different from the root
// has an unresolvable parent.
func NewTree(t *timetree.Tree) (*Tree, error) {
	if t == nil {
		return nil, errors.New("undefined source tree")
	}
	nodes := t.Nodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("tree %q: empty tree", t.Name())
	}

	post := make([]int, 0, len(nodes))
	var walk func(n int)
	walk = func(n int) {
		for _, c := range t.Children(n) {
			walk(c)
		}
		post = append(post, n)
	}
	walk(t.Root())
	if len(post) != len(nodes) {
		return nil, fmt.Errorf("tree %q: %d nodes, only %d reachable from the root", t.Name(), len(nodes), len(post))
	}

	pos := make(map[int]int, len(post))
	for i, id := range post {
		pos[id] = i
	}

	ft := &Tree{
		name:  t.Name(),
		tint:  make([]int, len(post)),
		lint:  make([]float64, len(post)),
		taxon: make([]string, len(post)),
		terms: make(map[string]int),
	}
	for i, id := range post {
		if t.IsRoot(id) {
			ft.tint[i] = i
			continue
		}
		p, ok := pos[t.Parent(id)]
		if !ok {
			return nil, fmt.Errorf("tree %q: node %d: parent not in tree", t.Name(), id)
		}
		ft.tint[i] = p
		ft.lint[i] = float64(t.Age(t.Parent(id))-t.Age(id)) / millionYears
	}
	for _, tax := range t.Terms() {
		id, ok := t.TaxNode(tax)
		if !ok {
			continue
		}
		ft.taxon[pos[id]] = tax
		ft.terms[canon(tax)] = pos[id]
	}
	ft.total = floats.Sum(ft.lint)

	return ft, nil
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.tint)
}

// Parent returns the position of the parent
// of the node at the given position.
// The root is the only node
// that is its own parent.
func (t *Tree) Parent(p int) int {
	return t.tint[p]
}

// BranchLen returns the length of the branch
// between the node at the given position
// and its parent,
// in million years.
// The branch of the root is always 0.
func (t *Tree) BranchLen(p int) float64 {
	return t.lint[p]
}

// Taxon returns the taxon name
// of the node at the given position,
// or an empty string
// if the node is not a named terminal.
func (t *Tree) Taxon(p int) string {
	return t.taxon[p]
}

// TaxPos returns the position of a terminal taxon,
// false if the taxon is not a terminal of the tree.
// The match ignores case
// and treats underscores as spaces.
func (t *Tree) TaxPos(name string) (int, bool) {
	p, ok := t.terms[canon(name)]
	return p, ok
}

// Terms returns the name of the terminal taxa of the tree,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	terms := make([]string, 0, len(t.terms))
	for _, tax := range t.taxon {
		if tax != "" {
			terms = append(terms, tax)
		}
	}
	slices.Sort(terms)
	return terms
}

// TotalLength returns the sum of all branch lengths
// of the tree,
// in million years.
func (t *Tree) TotalLength() float64 {
	return t.total
}

// Canon returns the canonical form of a taxon name
// used for the match between tree and table:
// lowercase,
// with underscores treated as spaces,
// and any run of spaces collapsed.
func canon(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
