// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package logo implements a command to build
// the sequence logos of the clades of a tree.
package logo

import (
	"fmt"
	"os"

	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `logo --ref <config-file> [--aln <alignment-file>]
	[--trees <clade-trees-file>] [--single]
	[-o|--output <file>] <tree-file> <clade-file>`,
	Short: "build the sequence logos of the clades",
	Long: `
Command logo reads a tree, a clade file, an alignment, and the configuration
of a reference sequence, and writes a tab-delimited table with the residue
counts and the information content (in bits) of each alignment column of each
clade.

The flag --ref is required and defines the configuration of the reference
sequence. The columns are defined by the window around the special position
of the reference sequence (see the tolowerlimit and toupperlimit keys of the
configuration). Use the flag --single to use instead the interesting
positions of the configuration.

By default, the alignment file is the name of the tree file without its
extension. Use the flag --aln to define a different file.

The flag --trees defines a file with clade trees, used to locate clades
whose type sequence is not in the tree.

Clades are written in the order of the tree. The table contains the
following columns:

	- clade        the name of the clade
	- index        the index of the column in the logo
	- sequences    the number of sequences in the clade
	- column       the column in the alignment (0-based)
	- position     the position in the reference sequence
	- highlight    the highlight color of the column
	- information  the information content of the column
	- A...Y        the counts of each amino acid

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var alnFile string
var refFile string
var cladeTrees string
var single bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&alnFile, "aln", "", "")
	c.Flags().StringVar(&refFile, "ref", "", "")
	c.Flags().StringVar(&cladeTrees, "trees", "", "")
	c.Flags().BoolVar(&single, "single", false, "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 2 {
		return c.UsageError("expecting tree file and clade file")
	}
	if refFile == "" {
		return c.UsageError("flag --ref must be defined")
	}

	r, err := pipeline.Run(pipeline.Options{
		Tree:       args[0],
		Clades:     args[1],
		CladeTrees: cladeTrees,
		Alignment:  alnFile,
		RefConfig:  refFile,
		Logos:      true,
		Warn:       c.Stderr(),
	})
	if err != nil {
		return err
	}
	if r.Ref == nil {
		return fmt.Errorf("reference %q: undefined reference sequence", refFile)
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

	write := r.WriteLogo
	if single {
		write = r.WriteSingleLogo
	}
	if err := write(w); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
