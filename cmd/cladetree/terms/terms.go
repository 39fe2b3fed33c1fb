// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of terminals in a tree file.
package terms

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/command"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--tsv] [<tree-file>...]",
	Short: "print a list of tree terminals from a file",
	Long: `
Command terms reads a tree file in newick or nexus format and print the list
of the terminals of each tree in the file.

One or more tree files can be given as arguments. If no file is given, the
trees will be read from the standard input. Use the flag --tsv if the trees
are in TSV format.

By default all terminals will be printed, sorted alphabetically. If the flag
--tree is set, only the terminals of the indicated tree will be printed, in
the order of the tree.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var tsvFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
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

		for _, tn := range nc.Names() {
			t := nc.Tree(tn)
			if err := coll.Add(t); err != nil {
				return fmt.Errorf("when adding trees from %q: %v", a, err)
			}
		}
	}

	ls := makeList(coll)
	for _, term := range ls {
		fmt.Fprintf(c.Stdout(), "%s\n", term)
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
		c, err = cladetree.ReadTrees(r, filepath.Base(name))
	}
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}

func makeList(c *cladetree.Collection) []string {
	if treeName != "" {
		t := c.Tree(treeName)
		if t == nil {
			return nil
		}
		return t.Terms()
	}

	terms := make(map[string]bool)
	for _, tn := range c.Names() {
		t := c.Tree(tn)
		for _, tax := range t.Terms() {
			terms[tax] = true
		}
	}

	termList := make([]string, 0, len(terms))
	for tax := range terms {
		termList = append(termList, tax)
	}
	slices.Sort(termList)

	return termList
}
