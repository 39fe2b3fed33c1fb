// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to simulate
// a phylogenetic tree.
package sim

import (
	"fmt"
	"os"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/simulate"
	"github.com/js-arias/command"
	"gonum.org/v1/gonum/stat/distuv"
)

var Command = &command.Command{
	Usage: `sim [-o|--output <file>] [--name <tree-name>]
	[--trees <tree-number>]
	[--coalescent <number>] [--rate <value>]
	[--support] [--ufboot]
	--terms <term-number>`,
	Short: "simulate trees",
	Long: `
Command sim creates one on more random trees, and writes them in newick
format.

By default, the output will be printed in the standard output. Use the flag
--output, or -o, to define an output file. It will replace any previous file.

By default, the trees will be named "random-tree" with a number. Use the flag
--name to modify the prefix name of the tree.

By default, a single tree will be created. Use the flag --trees to define a
different number of trees.

The flag --terms is required and indicates the number of terms that the tree
should have.

By default, it creates random trees, adding terminals at random branches,
with branch lengths taken from an exponential distribution. Use the flag
--rate to set the rate of the distribution (default 10). Use the flag
--coalescent with the "size of the population" to create an ultrametric
coalescent tree.

If the flag --support is set, internal nodes will be labeled with random
support values in the form "SH-aLRT/aBayes/UFBoot". Use the flag --ufboot to
label internal nodes only with ultrafast bootstrap values.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var nameFlag string
var numTrees int
var numTerms int
var coalescent float64
var rate float64
var supportFlag bool
var ufbootFlag bool

func setFlags(c *command.Command) {
	c.Flags().IntVar(&numTrees, "trees", 1, "")
	c.Flags().IntVar(&numTerms, "terms", 0, "")
	c.Flags().Float64Var(&coalescent, "coalescent", 0, "")
	c.Flags().Float64Var(&rate, "rate", 10, "")
	c.Flags().BoolVar(&supportFlag, "support", false, "")
	c.Flags().BoolVar(&ufbootFlag, "ufboot", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&nameFlag, "name", "random-tree", "")
}

func run(c *command.Command, args []string) (err error) {
	if numTerms < 2 {
		return c.UsageError("flag --terms must be defined (at least two terminals)")
	}
	if rate <= 0 {
		return c.UsageError(fmt.Sprintf("flag --rate: invalid value %.6f", rate))
	}

	brLen := distuv.Exponential{Rate: rate}

	coll := cladetree.NewCollection()
	for i := 0; i < numTrees; i++ {
		name := fmt.Sprintf("%s-%d", nameFlag, i)

		var t *cladetree.Tree
		if coalescent > 0 {
			t = simulate.Coalescent(name, coalescent, numTerms)
		} else {
			t = simulate.Random(name, numTerms, brLen)
		}
		if supportFlag || ufbootFlag {
			simulate.Supports(t, !ufbootFlag)
		}
		if err := coll.Add(t); err != nil {
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

	for _, t := range coll.Trees() {
		if err := t.Newick(w); err != nil {
			return fmt.Errorf("while writing to %q: %v", output, err)
		}
	}

	return nil
}
