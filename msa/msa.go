// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package msa implements multiple sequence alignments.
package msa

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Alignment errors.
var (
	ErrRepeated = errors.New("repeated sequence name")
	ErrLength   = errors.New("invalid sequence length")
	ErrNoName   = errors.New("sequence without name")
)

// Gap is the character used for gaps in an alignment.
const Gap = '-'

// An Alignment is a multiple sequence alignment.
type Alignment struct {
	names []string
	seqs  map[string][]byte
	cols  int
}

// New returns a new empty alignment.
func New() *Alignment {
	return &Alignment{
		seqs: make(map[string][]byte),
		cols: -1,
	}
}

// Add adds a sequence to the alignment.
// All the sequences of an alignment must have the same length.
func (a *Alignment) Add(name string, seq []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoName
	}
	if _, dup := a.seqs[name]; dup {
		return fmt.Errorf("%w: %s", ErrRepeated, name)
	}
	if a.cols >= 0 && len(seq) != a.cols {
		return fmt.Errorf("%w: sequence %q: got %d, want %d", ErrLength, name, len(seq), a.cols)
	}
	if a.cols < 0 {
		a.cols = len(seq)
	}

	s := make([]byte, len(seq))
	copy(s, seq)
	a.seqs[name] = s
	a.names = append(a.names, name)
	return nil
}

// Find returns the name of the first sequence
// that contains the given string.
func (a *Alignment) Find(s string) (string, bool) {
	for _, nm := range a.names {
		if strings.Contains(nm, s) {
			return nm, true
		}
	}
	return "", false
}

// Len returns the number of columns of the alignment.
func (a *Alignment) Len() int {
	if a.cols < 0 {
		return 0
	}
	return a.cols
}

// Names returns the names of the sequences
// in the order in which they were added.
func (a *Alignment) Names() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// Seq returns the sequence with the given name.
func (a *Alignment) Seq(name string) []byte {
	return a.seqs[name]
}

// Residue returns the residue at a column of a sequence,
// or 0 if the sequence is not in the alignment
// or the column is out of range.
func (a *Alignment) Residue(name string, col int) byte {
	s, ok := a.seqs[name]
	if !ok || col < 0 || col >= len(s) {
		return 0
	}
	return s[col]
}

// Read reads an alignment
// in FASTA or relaxed PHYLIP format.
// The format is detected from the first character of the input.
func Read(r io.Reader) (*Alignment, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("empty alignment: %v", err)
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		br.UnreadByte()
		if b == '>' {
			return ReadFasta(br)
		}
		return ReadPhylip(br)
	}
}

// ReadFasta reads an aligned FASTA file.
// The name of each sequence is the first word of its header.
// Residues are stored in upper case.
func ReadFasta(r io.Reader) (*Alignment, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein))

	a := New()
	for {
		s, err := fr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ls, ok := s.(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("sequence %q: unexpected type %T", s.Name(), s)
		}
		seq := bytes.ToUpper(alphabet.LettersToBytes(ls.Seq))
		if err := a.Add(ls.Name(), seq); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WriteSorted writes the sequences of the alignment
// in FASTA format,
// in the order given by names.
// Names not in the alignment are ignored.
// Sequences are written in a single line.
func (a *Alignment) WriteSorted(w io.Writer, names []string) error {
	bw := bufio.NewWriter(w)
	fw := fasta.NewWriter(bw, max(a.Len(), 1))
	for _, nm := range names {
		s, ok := a.seqs[nm]
		if !ok {
			continue
		}
		ls := linear.NewSeq(nm, alphabet.BytesToLetters(s), alphabet.Protein)
		if _, err := fw.Write(ls); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DefaultPath returns the path of the alignment
// used to build a tree.
// For a tree file,
// it is the name of the tree file without its extension,
// and for a file with clade trees
// it is the name of the clade trees file
// without its last three extensions.
func DefaultPath(treeFile, cladeTrees string) string {
	if cladeTrees == "" {
		return trimExt(treeFile)
	}
	p := cladeTrees
	for i := 0; i < 3; i++ {
		p = trimExt(p)
	}
	return p
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
