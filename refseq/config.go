// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package refseq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the configuration of a reference sequence.
type Config struct {
	// SeqFile is the FASTA file with the reference sequence.
	SeqFile string

	// Pos is the position (1-indexed)
	// of the special amino acid
	// in the reference sequence.
	Pos int

	// Lower and Upper are the number of residues
	// before and after the special amino acid
	// included in the logo window.
	Lower int
	Upper int

	// Interesting are the positions
	// used for the single position logo.
	Interesting []int

	// Highlight are the positions highlighted in the logo,
	// with the colors in Colors.
	Highlight []int
	Colors    []string
}

// NewConfig returns an empty configuration.
func NewConfig() Config {
	return Config{
		Pos:   -1,
		Lower: -1,
		Upper: -1,
	}
}

// ReadConfig reads a configuration file.
// The sequence file is relative
// to the directory of the configuration file.
func ReadConfig(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return NewConfig(), err
	}
	defer f.Close()

	cfg, err := Parse(f, filepath.Dir(name))
	if err != nil {
		return NewConfig(), fmt.Errorf("on file %q: %v", name, err)
	}
	return cfg, nil
}

// Parse reads a configuration
// from a tab-delimited file
// with keys and values.
// Valid keys are:
//
//	seqfile                 the reference sequence file
//	aapos                   position of the special amino acid
//	tolowerlimit            residues before the special amino acid
//	toupperlimit            residues after the special amino acid
//	interestingaapositions  positions of the single position logo
//	aatohighlight           positions to highlight
//	highlightcolors         colors of the highlighted positions
//
// Keys are case insensitive,
// and unknown keys are ignored.
func Parse(r io.Reader, dir string) (Config, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'
	tab.FieldsPerRecord = -1

	cfg := NewConfig()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return cfg, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) < 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(row[0]))
		vals := values(row[1:])
		if len(vals) == 0 {
			continue
		}
		switch key {
		case "seqfile":
			cfg.SeqFile = filepath.Join(dir, vals[0])
		case "aapos":
			cfg.Pos, err = strconv.Atoi(vals[0])
		case "tolowerlimit":
			cfg.Lower, err = strconv.Atoi(vals[0])
		case "toupperlimit":
			cfg.Upper, err = strconv.Atoi(vals[0])
		case "interestingaapositions":
			cfg.Interesting, err = atoiAll(vals)
		case "aatohighlight":
			cfg.Highlight, err = atoiAll(vals)
		case "highlightcolors":
			cfg.Colors = append([]string{}, vals...)
		}
		if err != nil {
			return cfg, fmt.Errorf("on row %d: key %q: %v", ln, key, err)
		}
	}
	return cfg, nil
}

func values(fields []string) []string {
	var vs []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		vs = append(vs, f)
	}
	return vs
}

func atoiAll(vals []string) ([]int, error) {
	ns := make([]int, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, nil
}
