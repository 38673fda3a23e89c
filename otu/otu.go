// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package otu handles sample-feature tables
// (usually called OTU tables),
// in which rows are taxa,
// columns are samples,
// and each cell is the abundance
// of a taxon in a sample.
//
// As the unweighted UniFrac distance
// uses only the presence or absence of a taxon,
// abundances are stored as presence (1) or absence (0),
// and any other abundance information is discarded.
package otu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// A Table is a sample-feature presence table.
// Taxa and samples keep the order of the source file.
type Table struct {
	samples []string
	taxa    []string
	vals    [][]float64 // rows per taxon, aligned to samples
}

// Read reads a sample-feature table
// from a whitespace delimited file.
//
// The first line is the header:
// its first field is ignored,
// and the remaining fields are the sample names.
// Any other line contains a taxon name
// in its first field,
// and then the abundance of the taxon
// on each sample,
// in the order of the header.
// Abundance fields that cannot be read as numbers,
// as well as missing fields at the end of a line,
// are taken as zero abundances.
//
// For example,
// the table:
//
//	taxon	sample-1	sample-2	sample-3
//	Rhea	1	0	0
//	Struthio	3	0	1
//	Apteryx	0	2	1
//
// defines a table with three taxa and three samples,
// in which sample-1 contains Rhea and Struthio.
func Read(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("while reading header: %v", err)
		}
		return nil, errors.New("while reading header: empty table file")
	}
	header := strings.Fields(sc.Text())
	if len(header) == 0 {
		return nil, errors.New("while reading header: empty header")
	}
	tab := &Table{
		samples: header[1:],
	}

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		tab.taxa = append(tab.taxa, fields[0])

		row := make([]float64, len(tab.samples))
		for i := range row {
			if i+1 >= len(fields) {
				break
			}
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil || v <= 0 {
				continue
			}
			row[i] = 1
		}
		tab.vals = append(tab.vals, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("while reading table: %v", err)
	}

	return tab, nil
}

// Normalize scales each sample
// so its presences form a probability distribution
// (i.e., each column sums to one).
// A sample without any taxon is left as all zeros.
func (t *Table) Normalize() {
	for s := range t.samples {
		var sum float64
		for _, row := range t.vals {
			sum += row[s]
		}
		if sum == 0 {
			continue
		}
		for _, row := range t.vals {
			row[s] /= sum
		}
	}
}

// Len returns the number of taxa in the table.
func (t *Table) Len() int {
	return len(t.taxa)
}

// Cols returns the number of samples in the table.
func (t *Table) Cols() int {
	return len(t.samples)
}

// Taxa returns the taxa of the table,
// in the order of the source file.
func (t *Table) Taxa() []string {
	return slices.Clone(t.taxa)
}

// Samples returns the sample names of the table,
// in the order of the source file.
func (t *Table) Samples() []string {
	return slices.Clone(t.samples)
}

// Value returns the frequency of the taxon at row tx
// in the sample at column s.
func (t *Table) Value(tx, s int) float64 {
	return t.vals[tx][s]
}
