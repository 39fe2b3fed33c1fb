// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package newick implements a command to output a phylogenetic tree
// from a TSV file into an equivalent Newick file.
package newick

import (
	"fmt"
	"io"
	"os"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/support"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `newick [--tree <tree>] [--support <kind>]
	[-o|--output <file>] [<tree-file>...]`,
	Short: "writes a tree in newick format",
	Long: `
Command newick reads a tree in TSV format and write it into a newick
(parenthetical) text format. Labels of internal nodes and branch lengths are
preserved.

One or more tree files in TSV format can be given as arguments. If no file is
given, the trees will be read from the standard input.

By default, all trees will be printed in the output. If the flag --tree is
set, only the indicated tree will be exported.

Some tree viewers require a single support value for each node. The flag
--support sets the kind of support value that will be kept from the labels
of the internal nodes. Valid kinds are:

	- sh-alrt, the SH-aLRT value of a composite label.
	- abayes, the aBayes value of a composite label.
	- ufboot, the ultrafast bootstrap value.

Internal labels that do not have a value of the indicated kind are removed.

By default the output will be printed in the standard output. To define an
output file use the flag --output, or -o.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var supFlag string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&supFlag, "support", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	var kind support.Kind
	if supFlag != "" {
		kind, err = support.ParseKind(supFlag)
		if err != nil {
			return c.UsageError(err.Error())
		}
	}

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

	var trees []*cladetree.Tree
	if treeName != "" {
		t := coll.Tree(treeName)
		if t == nil {
			return fmt.Errorf("tree %q not found", treeName)
		}
		trees = []*cladetree.Tree{t}
	} else {
		trees = coll.Trees()
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

	for _, t := range trees {
		if supFlag != "" {
			t = singleSupport(t, kind)
		}
		if err := t.Newick(w); err != nil {
			return fmt.Errorf("while writing to %q: %v", output, err)
		}
	}
	return nil
}

// SingleSupport returns a copy of a tree
// in which the labels of internal nodes
// only keep the support value of the indicated kind.
func singleSupport(t *cladetree.Tree, kind support.Kind) *cladetree.Tree {
	t = t.Copy()
	for _, id := range t.Nodes() {
		if t.IsTerm(id) {
			continue
		}
		lb := ""
		if v, err := support.Select(t.Label(id), kind); err == nil {
			lb = v.Label()
		}
		t.SetLabel(id, lb)
	}
	return t
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

	c, err := cladetree.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
