// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sortaln implements a command to sort
// the sequences of an alignment
// in the order of the terminals of a tree.
package sortaln

import (
	"fmt"
	"os"

	"github.com/js-arias/cladetree/msa"
	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `sortaln [--aln <alignment-file>] [-o|--output <file>]
	<tree-file>`,
	Short: "sort an alignment in the order of a tree",
	Long: `
Command sortaln reads a tree and an alignment and writes the sequences of the
alignment, in FASTA format, in the order of the terminals of the tree.
Terminals without sequence in the alignment are ignored.

The argument of the command is the tree file, in newick or nexus format.

By default, the alignment file is the name of the tree file without its
extension (e.g., "rho.phy" for the tree "rho.phy.treefile"). Use the flag
--aln to define a different file. The alignment can be in FASTA or relaxed
PHYLIP format.

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var alnFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&alnFile, "aln", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}

	t, err := pipeline.ReadTree(args[0])
	if err != nil {
		return err
	}
	if alnFile == "" {
		alnFile = msa.DefaultPath(args[0], "")
	}
	aln, err := pipeline.ReadAlignment(alnFile)
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

	if err := aln.WriteSorted(w, t.Terms()); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
