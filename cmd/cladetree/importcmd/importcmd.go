// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package importcmd implements a command to import phylogenetic trees
// from newick or nexus files into tsv files.
package importcmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/support"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `import [--name <tree-name>] [--strict]
	[-o|--output <file>]
	[<tree-file>...]`,
	Short: "import trees with support values",
	Long: `
Command import reads one or more files with phylogenetic trees, for example
the consensus trees produced by IQ-TREE, and stores them in a TSV file.

One or more tree files can be given as arguments. If no file is given the
input will be read from the standard input. The format of each file is
detected automatically: files starting with '#nexus' are read as nexus files,
any other file is read as a newick (parenthetical) file. In nexus files,
terminals are translated with the translate table of the trees block, and
support values stored as node annotations (as written by FigTree, e.g.
'[&label=95]') are used as labels of unlabeled internal nodes.

Nexus files already have named trees. Trees in newick files are named with
the flag --name, or with the name of the file (without extension) if the
flag is not defined. If multiple trees are found, the name will be append
with sequential numbers.

Labels of internal nodes are checked as support values, either an ultrafast
bootstrap integer (e.g. '98') or a composite SH-aLRT/aBayes/UFBoot label
(e.g. '80.3/0.97/95'). The number of internal nodes without a valid support
is reported in the standard error. If the flag --strict is defined, an
invalid support label is an error.

By default the output will be printed in the standard output. To define an
output file use the flag --output, or -o. If the file already exists, imported
trees will be added to the file.

The output TSV file will contain the following fields:

	- tree, for the name of the tree
	- node, for the ID of the node
	- parent, for the ID of the parent node
	    (-1 is used for the root)
	- length, the length of the branch to the parent
	- label, the name of a terminal, or the label of an internal node
	    (for example, a support value)
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var nameFlag string
var strict bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&nameFlag, "name", "", "")
	c.Flags().BoolVar(&strict, "strict", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		if nameFlag == "" {
			return c.UsageError("flag --name undefined")
		}
		args = append(args, "-")
	}

	coll, err := newTreeCollection()
	if err != nil {
		return err
	}

	for i, a := range args {
		nm := treeName(a, i)
		nc, err := readTrees(c.Stdin(), a, nm)
		if err != nil {
			return err
		}

		for _, t := range nc.Trees() {
			if err := checkSupports(c.Stderr(), t); err != nil {
				return fmt.Errorf("on file %q: %v", a, err)
			}
			if err := coll.Add(t); err != nil {
				return fmt.Errorf("when adding trees from %q: %v", a, err)
			}
		}
	}

	if err := writeTrees(c.Stdout(), coll); err != nil {
		return err
	}
	return nil
}

// TreeName returns the name used for the trees
// of a newick file.
func treeName(file string, i int) string {
	if nameFlag == "" {
		base := filepath.Base(file)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if i == 0 {
		return nameFlag
	}
	return fmt.Sprintf("%s.%d", nameFlag, i)
}

// CheckSupports reports the internal nodes
// of a tree without a valid support label.
func checkSupports(w io.Writer, t *cladetree.Tree) error {
	var internal, missing, invalid int
	for _, id := range t.Nodes() {
		if id == t.Root() || t.IsTerm(id) {
			continue
		}
		internal++
		lb := t.Label(id)
		if lb == "" {
			missing++
			continue
		}
		if _, err := support.Parse(lb); err != nil {
			if strict {
				return fmt.Errorf("tree %q: node %d: %v", t.Name(), id, err)
			}
			invalid++
		}
	}
	if missing+invalid == 0 {
		return nil
	}
	fmt.Fprintf(w, "tree %q: %d of %d internal nodes without support (%d invalid labels)\n", t.Name(), missing+invalid, internal, invalid)
	return nil
}

func newTreeCollection() (*cladetree.Collection, error) {
	if output == "" {
		return cladetree.NewCollection(), nil
	}

	f, err := os.Open(output)
	if errors.Is(err, os.ErrNotExist) {
		return cladetree.NewCollection(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := cladetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", output, err)
	}
	return c, nil
}

func readTrees(r io.Reader, treeFile, name string) (*cladetree.Collection, error) {
	if treeFile != "-" {
		f, err := os.Open(treeFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		treeFile = "stdin"
	}

	c, err := cladetree.ReadTrees(r, name)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", treeFile, err)
	}
	return c, nil
}

func writeTrees(w io.Writer, c *cladetree.Collection) (err error) {
	outName := "stdout"
	if output != "" {
		outName = output
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			e := f.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
		w = f
	}

	if err := c.TSV(w); err != nil {
		return fmt.Errorf("while writing to %q: %v", outName, err)
	}
	return nil
}
