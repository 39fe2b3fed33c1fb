// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mappos implements a command to map
// positions of a reference sequence
// into the columns of an alignment.
package mappos

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/js-arias/cladetree/msa"
	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/cladetree/refseq"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `mappos --aln <alignment-file> [--all]
	[-o|--output <file>] <config-file> [<position>...]`,
	Short: "map reference positions into alignment columns",
	Long: `
Command mappos reads the configuration of a reference sequence and an
alignment, aligns the reference sequence with the alignment row that contains
the reference identifier, and prints the alignment column of each reference
position.

The first argument is the reference configuration file. The flag --aln is
required and defines the alignment file, in FASTA or relaxed PHYLIP format.

Additional arguments are the positions (1-based) to be mapped. If no
position is given, the special, interesting, and highlighted positions of
the configuration are mapped. Use the flag --all to map all the positions of
the reference sequence.

The output is a tab-delimited table with the following columns:

	- position  the position in the reference sequence
	- column    the column in the alignment (0-based), empty if the
	            position is not mapped
	- residue   the residue of the reference row at the column

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var alnFile string
var allFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&alnFile, "aln", "", "")
	c.Flags().BoolVar(&allFlag, "all", false, "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting reference configuration file")
	}
	if alnFile == "" {
		return c.UsageError("flag --aln must be defined")
	}

	cfg, err := refseq.ReadConfig(args[0])
	if err != nil {
		return err
	}
	aln, err := pipeline.ReadAlignment(alnFile)
	if err != nil {
		return err
	}
	ref, err := refseq.New(cfg, aln)
	if err != nil {
		return err
	}

	pos, err := positions(ref, args[1:])
	if err != nil {
		return err
	}

	w := c.Stdout()
	if output != "" {
		var f *os.File
		f, err = os.Create(output)
		if err != nil {
			return err
		}
		w = f
		defer func() {
			e := f.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
	} else {
		output = "stdout"
	}

	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write([]string{"position", "column", "residue"}); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	for _, p := range pos {
		col := ref.Column(p)
		row := []string{strconv.Itoa(p), "", ""}
		if col >= 0 {
			row[1] = strconv.Itoa(col)
			if r := aln.Residue(ref.Row, col); r != 0 && r != msa.Gap {
				row[2] = string(r)
			}
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing to %q: %v", output, err)
		}
	}
	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}

func positions(ref *refseq.Reference, args []string) ([]int, error) {
	if allFlag {
		pos := make([]int, 0, ref.Len())
		for i := 1; i <= ref.Len(); i++ {
			pos = append(pos, i)
		}
		return pos, nil
	}

	if len(args) == 0 {
		var pos []int
		if ref.Pos > 0 {
			pos = append(pos, ref.Pos)
		}
		pos = append(pos, ref.Config.Interesting...)
		pos = append(pos, ref.Config.Highlight...)
		return pos, nil
	}

	pos := make([]int, 0, len(args))
	for _, a := range args {
		p, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %v", a, err)
		}
		pos = append(pos, p)
	}
	return pos, nil
}
