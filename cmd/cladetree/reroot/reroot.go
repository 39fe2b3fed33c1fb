// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package reroot implements a command to root a tree
// using an outgroup.
package reroot

import (
	"fmt"
	"os"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `reroot [--clades <clade-file>] [--outgroup <terminal>,...]
	[-o|--output <file>] <tree-file>`,
	Short: "root a tree with an outgroup",
	Long: `
Command reroot reads a tree in newick or nexus format and roots it at the
branch of an outgroup. The rooted tree is written in newick format, with all
internal labels and branch lengths.

The outgroup can be defined with the flag --outgroup, with a list of
terminals separated by commas. The outgroup will be the most recent common
ancestor of the terminals.

Alternatively, the flag --clades defines a file with named clades. The tree
will be rooted at the node that separates the last clade from the other
clades. Unlabeled clade roots are labeled with the support value of its
first labeled child, followed by "/*".

Support values are attributes of the branches, so labels of internal nodes
are moved with their branch when the direction of the branch is reversed.

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var cladeFile string
var outgroup string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&cladeFile, "clades", "", "")
	c.Flags().StringVar(&outgroup, "outgroup", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}
	if (cladeFile == "") == (outgroup == "") {
		return c.UsageError("either flag --clades or --outgroup must be defined")
	}

	t, err := pipeline.ReadTree(args[0])
	if err != nil {
		return err
	}

	if outgroup != "" {
		if err := setOutgroup(t); err != nil {
			return err
		}
	} else {
		if err := rootClades(c, t); err != nil {
			return err
		}
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

	if err := t.Newick(w); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}

func setOutgroup(t *cladetree.Tree) error {
	var names []string
	for _, n := range strings.Split(outgroup, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := t.TaxNode(n); !ok {
			return fmt.Errorf("flag --outgroup: terminal %q not in tree", n)
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return fmt.Errorf("flag --outgroup: expecting terminal names")
	}

	id := t.MRCA(names...)
	if err := t.SetOutgroup(id); err != nil {
		return fmt.Errorf("flag --outgroup: %v", err)
	}
	return nil
}

func rootClades(c *command.Command, t *cladetree.Tree) error {
	f, err := os.Open(cladeFile)
	if err != nil {
		return err
	}
	defer f.Close()

	cs, err := clade.Read(f)
	if err != nil {
		return fmt.Errorf("on file %q: %v", cladeFile, err)
	}

	cs, missing := clade.Locate(t, cs, nil)
	for _, m := range missing {
		fmt.Fprintf(c.Stderr(), "WARNING: clade %q: type sequence %q not found\n", m.Name, m.Type)
	}
	if len(cs) == 0 {
		return clade.ErrNoClades
	}

	if err := clade.InitialReroot(t, cs); err != nil {
		return err
	}
	counts := clade.Membership(t, cs)
	if err := clade.RerootToOutgroup(t, cs, counts); err != nil {
		return err
	}
	counts = clade.Membership(t, cs)
	clade.NameRoots(t, cs, counts)
	return nil
}
