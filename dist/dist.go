// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dist handles symmetric distance matrices
// between named samples.
package dist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// A Matrix is a symmetric distance matrix
// with a zero diagonal,
// between a set of named samples.
type Matrix struct {
	names []string
	d     *mat.SymDense
}

// New creates a new zero valued matrix
// for the given samples.
// New panics if samples is empty.
func New(samples []string) *Matrix {
	return &Matrix{
		names: slices.Clone(samples),
		d:     mat.NewSymDense(len(samples), nil),
	}
}

// Len returns the number of samples in the matrix.
func (m *Matrix) Len() int {
	return len(m.names)
}

// Names returns the sample names of the matrix,
// in matrix order.
func (m *Matrix) Names() []string {
	return slices.Clone(m.names)
}

// Of returns the distance between two samples.
func (m *Matrix) Of(i, j int) float64 {
	return m.d.At(i, j)
}

// Set sets the distance between samples i and j,
// both as [i][j] and [j][i].
// The diagonal is always zero
// and cannot be set.
// Concurrent calls are safe
// as long as each pair is set by a single goroutine.
func (m *Matrix) Set(i, j int, v float64) {
	if i == j {
		return
	}
	m.d.SetSym(i, j, v)
}

// TSV writes the matrix as a tab-delimited file:
// a header with the word "Sample"
// followed by the sample names,
// and a row per sample
// with its name
// and the distance to every sample,
// with six decimal digits.
func (m *Matrix) TSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'

	header := append([]string{"Sample"}, m.names...)
	if err := tsv.Write(header); err != nil {
		return err
	}
	row := make([]string, len(m.names)+1)
	for i, sn := range m.names {
		row[0] = sn
		for j := range m.names {
			row[j+1] = strconv.FormatFloat(m.d.At(i, j), 'f', 6, 64)
		}
		if err := tsv.Write(row); err != nil {
			return err
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadTSV reads a distance matrix
// from a tab-delimited file,
// in the format written by the TSV method.
// The rows must be in the order of the header,
// the matrix must be symmetric,
// and the diagonal must be zero.
func ReadTSV(r io.Reader) (*Matrix, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	header, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	if len(header) < 1 || !strings.EqualFold(header[0], "sample") {
		return nil, errors.New("while reading header: expecting \"Sample\" field")
	}
	if len(header) < 2 {
		return nil, errors.New("while reading header: no samples in matrix")
	}
	m := New(header[1:])

	for i := 0; ; i++ {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			if i != len(m.names) {
				return nil, fmt.Errorf("got %d rows, want %d", i, len(m.names))
			}
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if i >= len(m.names) {
			return nil, fmt.Errorf("on row %d: unexpected row", ln)
		}
		if len(row) != len(m.names)+1 {
			return nil, fmt.Errorf("on row %d: got %d fields, want %d", ln, len(row), len(m.names)+1)
		}
		if row[0] != m.names[i] {
			return nil, fmt.Errorf("on row %d: got sample %q, want %q", ln, row[0], m.names[i])
		}
		for j := range m.names {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %d: %v", ln, j+2, err)
			}
			if j == i {
				if v != 0 {
					return nil, fmt.Errorf("on row %d: sample %q: diagonal distance %.6f, want 0", ln, row[0], v)
				}
				continue
			}
			if j < i {
				if v != m.d.At(i, j) {
					return nil, fmt.Errorf("on row %d: distance %q-%q is not symmetric", ln, row[0], m.names[j])
				}
				continue
			}
			m.d.SetSym(i, j, v)
		}
	}

	return m, nil
}
