// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package clades implements a command to print
// the clades found in a tree.
package clades

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `clades [--trees <file>] [--write-trees]
	[-o|--output <file>] <tree-file> <clade-file>`,
	Short: "print the clades of a tree",
	Long: `
Command clades reads a tree and a clade file, roots the tree with the last
clade as the outgroup, and prints a tab-delimited table with the clades found
in the tree, in the order of the tree.

The table contains the following columns:

	- clade   the name of the clade
	- type    the type sequence of the clade
	- node    the ID of the root of the clade in the rooted tree
	- label   the label of the root of the clade
	- leaves  the number of terminals of the clade
	- center  the terminal at the center of the clade

The flag --trees defines a file with clade trees, used to locate clades
whose type sequence is not in the tree.

If the flag --write-trees is set, instead of the table, it writes the tree of
each clade, in newick format, with the name of the clade as the label of the
root. Clades with a single terminal are not written.

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var cladeTrees string
var writeTrees bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&cladeTrees, "trees", "", "")
	c.Flags().BoolVar(&writeTrees, "write-trees", false, "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 2 {
		return c.UsageError("expecting tree file and clade file")
	}

	r, err := pipeline.Run(pipeline.Options{
		Tree:        args[0],
		Clades:      args[1],
		CladeTrees:  cladeTrees,
		NoAlignment: true,
		Warn:        c.Stderr(),
	})
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

	if writeTrees {
		if err := clade.WriteTrees(w, r.Tree, r.Sorted); err != nil {
			return fmt.Errorf("while writing to %q: %v", output, err)
		}
		return nil
	}

	if err := writeTable(w, r.Tree, r.Sorted); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}

func writeTable(w io.Writer, t *cladetree.Tree, cs []clade.Clade) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write([]string{"clade", "type", "node", "label", "leaves", "center"}); err != nil {
		return err
	}
	for _, cl := range cs {
		center := ""
		if id := clade.CenterLeaf(t, cl.Root); id >= 0 {
			center = t.Label(id)
		}
		row := []string{
			cl.Name,
			cl.Leaf,
			strconv.Itoa(cl.Root),
			t.Label(cl.Root),
			strconv.Itoa(t.NumLeaves(cl.Root)),
			center,
		}
		if err := tab.Write(row); err != nil {
			return err
		}
	}

	tab.Flush()
	return tab.Error()
}
