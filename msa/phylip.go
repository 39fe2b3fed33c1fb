// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package msa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrPhylip is returned when the input
// is not a valid PHYLIP file.
var ErrPhylip = errors.New("invalid phylip file")

// ReadPhylip reads an alignment
// in relaxed PHYLIP format.
//
// The first line contains the number of sequences
// and the number of columns.
// In the first block,
// each line starts with the name of the sequence
// (that can be of any length,
// but without spaces),
// followed by the sequence.
// If the sequences are interleaved,
// the following blocks contain only sequence data,
// in the same order of the first block.
// Spaces inside sequences are ignored,
// and residues are stored in upper case.
func ReadPhylip(r io.Reader) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	ln := 0
	var ntax, nchar int
	for sc.Scan() {
		ln++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) < 2 {
			return nil, fmt.Errorf("%w: on line %d: expecting number of sequences and columns", ErrPhylip, ln)
		}
		var err error
		ntax, err = strconv.Atoi(f[0])
		if err != nil {
			return nil, fmt.Errorf("%w: on line %d: number of sequences: %v", ErrPhylip, ln, err)
		}
		nchar, err = strconv.Atoi(f[1])
		if err != nil {
			return nil, fmt.Errorf("%w: on line %d: number of columns: %v", ErrPhylip, ln, err)
		}
		break
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if ntax <= 0 {
		return nil, fmt.Errorf("%w: header not found", ErrPhylip)
	}

	names := make([]string, 0, ntax)
	seqs := make([][]byte, 0, ntax)
	next := 0
	for sc.Scan() {
		ln++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}

		if len(names) < ntax {
			names = append(names, f[0])
			seqs = append(seqs, []byte(strings.ToUpper(strings.Join(f[1:], ""))))
			continue
		}

		seqs[next] = append(seqs[next], strings.ToUpper(strings.Join(f, ""))...)
		next = (next + 1) % ntax
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(names) != ntax {
		return nil, fmt.Errorf("%w: got %d sequences, want %d", ErrPhylip, len(names), ntax)
	}

	a := New()
	for i, nm := range names {
		if len(seqs[i]) != nchar {
			return nil, fmt.Errorf("%w: sequence %q: got %d, want %d", ErrLength, nm, len(seqs[i]), nchar)
		}
		if err := a.Add(nm, seqs[i]); err != nil {
			return nil, err
		}
	}
	return a, nil
}
