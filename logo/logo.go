// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package logo builds the matrices of sequence logos
// from the terminals of a clade.
package logo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/msa"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Residues are the amino acids used in a logo.
// Any other character
// (gaps, stop codons, or ambiguous residues)
// is ignored.
const Residues = "ACDEFGHIKLMNPQRSTVWY"

// MaxInfo is the maximum information content
// (in bits)
// of a column.
var MaxInfo = math.Log2(float64(len(Residues)))

// ErrNoSeqs is returned when a clade
// does not have sequences in the alignment.
var ErrNoSeqs = errors.New("no sequences")

var resIndex = func() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(Residues); i++ {
		idx[Residues[i]] = i
		idx[strings.ToLower(Residues)[i]] = i
	}
	return idx
}()

// A Column is a column of a logo.
type Column struct {
	// Col is the alignment column.
	Col int

	// Pos is the position in the reference sequence,
	// or -1 if the column is not aligned to the reference.
	Pos int

	// Counts and probabilities of each residue,
	// in the order of Residues.
	Counts []float64
	Prob   []float64

	// Info is the information content,
	// in bits.
	Info float64

	// Highlight is the color used to highlight the column.
	Highlight string
}

// Height returns the height of each residue
// in the logo.
func (c Column) Height() []float64 {
	h := make([]float64, len(c.Prob))
	floats.ScaleTo(h, c.Info, c.Prob)
	return h
}

// A Matrix is the data of a sequence logo.
type Matrix struct {
	Name    string
	Seqs    int
	Columns []Column
}

// New builds a logo matrix
// using the indicated alignment columns
// of a set of sequences.
func New(name string, seqs [][]byte, cols []int) (*Matrix, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("logo %q: %w", name, ErrNoSeqs)
	}

	m := &Matrix{
		Name:    name,
		Seqs:    len(seqs),
		Columns: make([]Column, 0, len(cols)),
	}
	for _, col := range cols {
		c := Column{
			Col:    col,
			Pos:    -1,
			Counts: make([]float64, len(Residues)),
			Prob:   make([]float64, len(Residues)),
		}
		for _, s := range seqs {
			if col < 0 || col >= len(s) {
				continue
			}
			if i := resIndex[s[col]]; i >= 0 {
				c.Counts[i]++
			}
		}
		if sum := floats.Sum(c.Counts); sum > 0 {
			floats.ScaleTo(c.Prob, 1/sum, c.Counts)
			c.Info = MaxInfo - stat.Entropy(c.Prob)/math.Ln2
		}
		m.Columns = append(m.Columns, c)
	}
	return m, nil
}

// SetPositions sets the reference positions of the columns.
func (m *Matrix) SetPositions(pos func(col int) int) {
	for i, c := range m.Columns {
		m.Columns[i].Pos = pos(c.Col)
	}
}

// Highlight sets the highlight color
// of the i-th column of the matrix.
// Columns outside the matrix are ignored.
func (m *Matrix) Highlight(i int, color string) {
	if i < 0 || i >= len(m.Columns) {
		return
	}
	m.Columns[i].Highlight = color
}

// Clades builds a logo matrix for each clade,
// using the sequences of the terminals of the clade.
// If a matrix can not be built,
// the error is stored,
// and the next clade is processed.
func Clades(t *cladetree.Tree, cs []clade.Clade, aln *msa.Alignment, cols []int) ([]*Matrix, []error) {
	var ms []*Matrix
	var errs []error
	for _, c := range cs {
		if c.Root < 0 {
			errs = append(errs, fmt.Errorf("clade %q: root undefined", c.Name))
			continue
		}
		var seqs [][]byte
		for _, l := range t.Leaves(c.Root) {
			s := aln.Seq(t.Label(l))
			if s == nil {
				continue
			}
			seqs = append(seqs, s)
		}
		m, err := New(c.Name, seqs, cols)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ms = append(ms, m)
	}
	return ms, errs
}
