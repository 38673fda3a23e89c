// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/js-arias/timetree"
	"github.com/js-arias/unifrac"
	"github.com/js-arias/unifrac/otu"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// A tree with three terminals:
//
//	          +--1--A
//	    +--1--+
//	----+     +--1--B
//	    |
//	    +--2--C
const smallTree = "((A:1,B:1):1,C:2);"

const smallTable = `
taxon	S1	S2	S3	S4	S5
A	1	0	4	0	2
B	0	1	0	0	0
C	0	0	2	9	1
`

func TestTree(t *testing.T) {
	ft := newTree(t, smallTree)

	if ft.Len() != 5 {
		t.Fatalf("tree %q: got %d nodes, want %d", ft.Name(), ft.Len(), 5)
	}

	var roots int
	for p := 0; p < ft.Len(); p++ {
		pp := ft.Parent(p)
		if pp == p {
			roots++
			if l := ft.BranchLen(p); l != 0 {
				t.Errorf("tree %q: root branch length: got %.6f, want 0", ft.Name(), l)
			}
			continue
		}
		if pp < p {
			t.Errorf("tree %q: position %d: parent at %d, want a larger position", ft.Name(), p, pp)
		}
		if l := ft.BranchLen(p); l < 0 {
			t.Errorf("tree %q: position %d: negative branch length %.6f", ft.Name(), p, l)
		}
	}
	if roots != 1 {
		t.Errorf("tree %q: got %d root positions, want 1", ft.Name(), roots)
	}
	if p := ft.Parent(ft.Len() - 1); p != ft.Len()-1 {
		t.Errorf("tree %q: last position parent: got %d, want %d", ft.Name(), p, ft.Len()-1)
	}

	if tot := ft.TotalLength(); math.Abs(tot-5) > 1e-6 {
		t.Errorf("tree %q: total branch length: got %.6f, want %.6f", ft.Name(), tot, 5.0)
	}

	terms := ft.Terms()
	if len(terms) != 3 {
		t.Fatalf("tree %q: got %d terminals, want %d", ft.Name(), len(terms), 3)
	}
	for _, tax := range terms {
		p, ok := ft.TaxPos(tax)
		if !ok {
			t.Errorf("tree %q: terminal %q without a position", ft.Name(), tax)
			continue
		}
		if got := ft.Taxon(p); !strings.EqualFold(got, tax) {
			t.Errorf("tree %q: position %d: got taxon %q, want %q", ft.Name(), p, got, tax)
		}
	}
	if _, ok := ft.TaxPos("not a taxon"); ok {
		t.Errorf("tree %q: unexpected position for an undefined taxon", ft.Name())
	}
}

func TestPair(t *testing.T) {
	ft := newTree(t, smallTree)
	tab := newTable(t, smallTable)

	// S1 and S2 are single,
	// non-shared terminals:
	// the distance is the path between them.
	if d := ft.Pair(tab, 0, 1); math.Abs(d-2) > 1e-6 {
		t.Errorf("pair S1-S2: got %.6f, want %.6f", d, 2.0)
	}
	if d12, d21 := ft.Pair(tab, 0, 1), ft.Pair(tab, 1, 0); d12 != d21 {
		t.Errorf("pair S1-S2: got %.6f, pair S2-S1 %.6f", d12, d21)
	}

	// the engine normalizes the samples by itself,
	// so a raw presence table gives the same distances
	raw, err := otu.Read(strings.NewReader(strings.TrimLeft(smallTable, "\n")))
	if err != nil {
		t.Fatalf("error when reading table: %v", err)
	}
	if d := ft.Pair(raw, 0, 1); math.Abs(d-2) > 1e-6 {
		t.Errorf("pair S1-S2, raw table: got %.6f, want %.6f", d, 2.0)
	}

	// S3 and S5 have the same terminals
	// with different abundances;
	// the unweighted distance must be zero.
	if d := ft.Pair(tab, 2, 4); d != 0 {
		t.Errorf("pair S3-S5: got %.6f, want 0", d)
	}

	for i := range 5 {
		if d := ft.Pair(tab, i, i); d != 0 {
			t.Errorf("pair S%d-S%d: got %.6f, want 0", i+1, i+1, d)
		}
	}
}

func TestMatrix(t *testing.T) {
	ft := newTree(t, smallTree)
	tab := newTable(t, smallTable)

	m := ft.Matrix(unifrac.Param{Table: tab})
	if m.Len() != 5 {
		t.Fatalf("matrix: got %d samples, want %d", m.Len(), 5)
	}
	for i := 0; i < m.Len(); i++ {
		if d := m.Of(i, i); d != 0 {
			t.Errorf("matrix: diagonal %d: got %.6f, want 0", i, d)
		}
		for j := i + 1; j < m.Len(); j++ {
			if m.Of(i, j) != m.Of(j, i) {
				t.Errorf("matrix: cell %d-%d: got %.6f, reverse %.6f", i, j, m.Of(i, j), m.Of(j, i))
			}
			if want := ft.Pair(tab, i, j); math.Abs(m.Of(i, j)-want) > 1e-12 {
				t.Errorf("matrix: cell %d-%d: got %.6f, want %.6f", i, j, m.Of(i, j), want)
			}
		}
	}

	// any CPU value smaller than one
	// uses the default
	for _, cpu := range []int{1, -1} {
		mc := ft.Matrix(unifrac.Param{Table: tab, CPU: cpu})
		for i := 0; i < m.Len(); i++ {
			for j := i + 1; j < m.Len(); j++ {
				if mc.Of(i, j) != m.Of(i, j) {
					t.Errorf("matrix, %d cpu: cell %d-%d: got %.6f, want %.6f", cpu, i, j, mc.Of(i, j), m.Of(i, j))
				}
			}
		}
	}

	// normalized by the total branch length
	norm := ft.Matrix(unifrac.Param{Table: tab, Norm: true})
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			want := m.Of(i, j) / ft.TotalLength()
			if math.Abs(norm.Of(i, j)-want) > 1e-12 {
				t.Errorf("matrix, norm: cell %d-%d: got %.6f, want %.6f", i, j, norm.Of(i, j), want)
			}
			if norm.Of(i, j) < 0 || norm.Of(i, j) > 1 {
				t.Errorf("matrix, norm: cell %d-%d: %.6f out of [0,1]", i, j, norm.Of(i, j))
			}
		}
	}
}

func TestUnmatched(t *testing.T) {
	ft := newTree(t, smallTree)

	tab := newTable(t, smallTable)
	if u := ft.Unmatched(tab); u != 0 {
		t.Errorf("unmatched: got %d, want 0", u)
	}

	// Xenops is not a terminal of the tree:
	// it must be ignored,
	// and the distances must be the same
	// as in a table without it.
	extra := newTable(t, smallTable+"Xenops	1	1	0	1	0\n")
	if u := ft.Unmatched(extra); u != 1 {
		t.Errorf("unmatched: got %d, want 1", u)
	}

	// Xenops is present in S1 and S2,
	// but it must not dilute the frequencies
	// of the tree terminals:
	// the S1-S2 distance is still the full A-B path.
	if d := ft.Pair(extra, 0, 1); math.Abs(d-2) > 1e-6 {
		t.Errorf("pair S1-S2 with unmatched taxon: got %.6f, want %.6f", d, 2.0)
	}

	m := ft.Matrix(unifrac.Param{Table: tab})
	me := ft.Matrix(unifrac.Param{Table: extra})
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if math.Abs(m.Of(i, j)-me.Of(i, j)) > 1e-12 {
				t.Errorf("matrix with unmatched taxon: cell %d-%d: got %.6f, want %.6f", i, j, me.Of(i, j), m.Of(i, j))
			}
		}
	}
}

// TestTriangle checks that the distance is a true metric:
// for any three samples a, b, c,
// dist(a,c) <= dist(a,b) + dist(b,c).
func TestTriangle(t *testing.T) {
	ft := newTree(t, "(((A:1,B:2):1,(C:1,D:1):2):1,E:3);")
	taxa := []string{"A", "B", "C", "D", "E"}

	b := distuv.Bernoulli{
		P:   0.5,
		Src: rand.NewSource(71),
	}

	samples := 6
	for trial := range 10 {
		var sb strings.Builder
		sb.WriteString("taxon")
		for s := range samples {
			fmt.Fprintf(&sb, "\tsample-%d", s)
		}
		sb.WriteString("\n")
		for _, tax := range taxa {
			sb.WriteString(tax)
			for range samples {
				fmt.Fprintf(&sb, "\t%.0f", b.Rand())
			}
			sb.WriteString("\n")
		}

		tab := newTable(t, sb.String())
		m := ft.Matrix(unifrac.Param{Table: tab})
		for a := 0; a < samples; a++ {
			for c := a + 1; c < samples; c++ {
				for x := 0; x < samples; x++ {
					if m.Of(a, c) > m.Of(a, x)+m.Of(x, c)+1e-9 {
						t.Errorf("trial %d: triangle inequality: d(%d,%d) = %.6f > %.6f + %.6f", trial, a, c, m.Of(a, c), m.Of(a, x), m.Of(x, c))
					}
				}
			}
		}
	}
}

func newTree(t testing.TB, nw string) *unifrac.Tree {
	t.Helper()

	c, err := timetree.Newick(strings.NewReader(nw), "test", 0)
	if err != nil {
		t.Fatalf("error when reading newick tree: %v", err)
	}
	ns := c.Names()
	if len(ns) == 0 {
		t.Fatalf("no trees in newick data")
	}
	ft, err := unifrac.NewTree(c.Tree(ns[0]))
	if err != nil {
		t.Fatalf("error when flattening tree: %v", err)
	}
	return ft
}

func newTable(t testing.TB, text string) *otu.Table {
	t.Helper()

	tab, err := otu.Read(strings.NewReader(strings.TrimLeft(text, "\n")))
	if err != nil {
		t.Fatalf("error when reading table: %v", err)
	}
	tab.Normalize()
	return tab
}
