// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package refseq

import (
	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// A Mapper maps the positions of a reference sequence
// into the columns of an alignment row.
type Mapper struct {
	cols []int
	pos  []int
}

// NewMapper returns a mapper between the residues
// of a reference sequence
// and the columns of an aligned sequence.
// Both sequences are aligned
// with a global (Needleman-Wunsch) alignment
// after removing their gaps.
func NewMapper(ref, row []byte) (*Mapper, error) {
	ref, _ = ungap(ref)
	query, qCols := ungap(row)

	m := &Mapper{
		cols: make([]int, len(ref)),
		pos:  make([]int, len(row)),
	}
	for i := range m.cols {
		m.cols[i] = -1
	}
	for i := range m.pos {
		m.pos[i] = -1
	}
	if len(ref) == 0 || len(query) == 0 {
		return m, nil
	}

	rs := linear.NewSeq("reference", letters(ref), alphabet.Protein)
	qs := linear.NewSeq("query", letters(query), alphabet.Protein)
	aln, err := scoring().Align(rs, qs)
	if err != nil {
		return nil, err
	}

	for _, p := range aln {
		f := p.Features()
		rf, qf := f[0], f[1]
		n := rf.End() - rf.Start()
		if n == 0 || qf.End()-qf.Start() != n {
			continue
		}
		for k := 0; k < n; k++ {
			r := rf.Start() + k
			col := qCols[qf.Start()+k]
			m.cols[r] = col
			m.pos[col] = r + 1
		}
	}
	return m, nil
}

// Column returns the column (0-indexed)
// of a reference position (1-indexed).
// It returns -1 if the position is not aligned
// or is outside of the reference.
func (m *Mapper) Column(pos int) int {
	if pos < 1 || pos > len(m.cols) {
		return -1
	}
	return m.cols[pos-1]
}

// Position returns the reference position (1-indexed)
// of a column (0-indexed).
// It returns -1 if the column is not aligned
// to a residue of the reference.
func (m *Mapper) Position(col int) int {
	if col < 0 || col >= len(m.pos) {
		return -1
	}
	return m.pos[col]
}

// Len returns the length of the ungapped reference.
func (m *Mapper) Len() int {
	return len(m.cols)
}

// Scoring returns a scoring matrix for the protein alphabet
// with matches scored as 1,
// and mismatches and gaps scored as 0.
func scoring() align.NW {
	n := alphabet.Protein.Len()
	nw := make(align.NW, n)
	for i := range nw {
		nw[i] = make([]int, n)
		if i > 0 {
			nw[i][i] = 1
		}
	}
	return nw
}

func isGap(c byte) bool {
	return c == '-' || c == '.'
}

func ungap(s []byte) ([]byte, []int) {
	u := make([]byte, 0, len(s))
	cols := make([]int, 0, len(s))
	for i, c := range s {
		if isGap(c) {
			continue
		}
		u = append(u, c)
		cols = append(cols, i)
	}
	return u, cols
}

// Letters returns the sequence as letters
// of the protein alphabet,
// unknown residues are set as 'x'.
func letters(s []byte) []alphabet.Letter {
	ls := alphabet.BytesToLetters(s)
	for i, l := range ls {
		if !alphabet.Protein.IsValid(l) {
			ls[i] = 'x'
		}
	}
	return ls
}
