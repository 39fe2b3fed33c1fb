// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package refseq maps the positions of a reference sequence
// into the columns of a multiple sequence alignment.
package refseq

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/msa"
)

// Reference errors.
var (
	ErrNoSeq = errors.New("reference sequence not found")
	ErrNoRow = errors.New("reference not found in alignment")
)

// A Reference is a reference sequence
// mapped into an alignment.
type Reference struct {
	Config

	// ID is the identifier of the reference sequence.
	ID string

	// Row is the name of the alignment row
	// used as the reference.
	Row string

	// Special is the column of the special amino acid.
	Special int

	// Columns of the interesting
	// and highlighted positions.
	Interesting []int
	Highlight   []int

	mapper *Mapper
}

// New reads the reference sequence of a configuration
// and maps it into the indicated alignment.
func New(cfg Config, aln *msa.Alignment) (*Reference, error) {
	f, err := os.Open(cfg.SeqFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	id, seq, err := readRef(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", cfg.SeqFile, err)
	}
	return FromSeq(cfg, id, seq, aln)
}

func readRef(r io.Reader) (string, []byte, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein))
	s, err := fr.Read()
	if errors.Is(err, io.EOF) {
		return "", nil, ErrNoSeq
	}
	if err != nil {
		return "", nil, err
	}
	ls, ok := s.(*linear.Seq)
	if !ok {
		return "", nil, fmt.Errorf("%w: unexpected type %T", ErrNoSeq, s)
	}
	if ls.Name() == "" {
		return "", nil, fmt.Errorf("%w: sequence without identifier", ErrNoSeq)
	}
	seq := make([]byte, len(ls.Seq))
	copy(seq, alphabet.LettersToBytes(ls.Seq))
	return ls.Name(), seq, nil
}

// FromSeq maps a reference sequence
// into an alignment.
// The alignment row used for the mapping
// is the first one that contains the reference ID.
func FromSeq(cfg Config, id string, seq []byte, aln *msa.Alignment) (*Reference, error) {
	row, ok := aln.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRow, id)
	}

	m, err := NewMapper(seq, aln.Seq(row))
	if err != nil {
		return nil, fmt.Errorf("reference %s: %v", id, err)
	}

	ref := &Reference{
		Config:  cfg,
		ID:      id,
		Row:     row,
		Special: m.Column(cfg.Pos),
		mapper:  m,
	}
	for _, p := range cfg.Interesting {
		ref.Interesting = append(ref.Interesting, m.Column(p))
	}
	for _, p := range cfg.Highlight {
		ref.Highlight = append(ref.Highlight, m.Column(p))
	}
	return ref, nil
}

// Column returns the alignment column
// of a reference position.
func (ref *Reference) Column(pos int) int {
	return ref.mapper.Column(pos)
}

// Position returns the reference position
// of an alignment column.
func (ref *Reference) Position(col int) int {
	return ref.mapper.Position(col)
}

// Len returns the number of residues
// of the reference sequence.
func (ref *Reference) Len() int {
	return ref.mapper.Len()
}

// HighlightColor returns the color
// of the i-th highlighted position.
// If there are more positions than colors,
// the last color is used.
func (ref *Reference) HighlightColor(i int) string {
	if len(ref.Colors) == 0 {
		return ""
	}
	if i >= len(ref.Colors) {
		i = len(ref.Colors) - 1
	}
	return ref.Colors[i]
}

// SpecialAA returns the amino acid
// at the special column
// for each terminal of the tree
// found in the alignment.
func (ref *Reference) SpecialAA(t *cladetree.Tree, aln *msa.Alignment) map[string]string {
	aa := make(map[string]string)
	if ref.Special < 0 {
		return aa
	}
	for _, term := range t.Terms() {
		r := aln.Residue(term, ref.Special)
		if r == 0 {
			continue
		}
		aa[term] = strings.ToUpper(string(r))
	}
	return aa
}
