// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// a list of trees in a tree file.
package list

import (
	"fmt"
	"io"
	"os"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "list [--tsv] [<tree-file>...]",
	Short: "print a list of trees from a file",
	Long: `
Command list reads a tree file in newick or nexus format and print the list
of the tree names in that file, with the number of terminals, and the label of
the root of each tree. For a file with clade trees, the label of the root is
the name of the clade.

One or more tree files can be given as arguments. If no file is given, the
trees will be read from the standard input. Use the flag --tsv if the trees
are in TSV format.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var tsvFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&tsvFlag, "tsv", false, "")
}

func run(c *command.Command, args []string) error {
	coll := cladetree.NewCollection()

	if len(args) == 0 {
		args = append(args, "-")
	}
	for _, a := range args {
		nc, err := readCollection(c.Stdin(), a)
		if err != nil {
			return err
		}

		for _, t := range nc.Trees() {
			if err := coll.Add(t); err != nil {
				return fmt.Errorf("when adding trees from %q: %v", a, err)
			}
		}
	}

	for _, t := range coll.Trees() {
		fmt.Fprintf(c.Stdout(), "%s\t%d\t%s\n", t.Name(), len(t.Terms()), t.Label(t.Root()))
	}
	return nil
}

func readCollection(r io.Reader, name string) (*cladetree.Collection, error) {
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	var c *cladetree.Collection
	var err error
	if tsvFlag {
		c, err = cladetree.ReadTSV(r)
	} else {
		c, err = cladetree.ReadTrees(r, name)
	}
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
