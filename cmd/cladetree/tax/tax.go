// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tax implements a command to validate the genera
// of the terminal names of a tree.
package tax

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
	"github.com/js-arias/gbifer/taxonomy"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: `tax [--taxonomy <file>] [--set]
	[-o|--output <file>] <tree-file>`,
	Short: "validate the genera of the terminals of a tree",
	Long: `
Command tax reads a tree in newick or nexus format and uses a taxonomy to
validate the genus of each terminal. The genus is the first part of the name
of the terminal, separated by underscores (e.g., "Homo" in
"Homo_sapiens_RHO").

The taxonomy file can be defined either with the flag --taxonomy or provided
in the standard input. This file is a TSV file with the following columns:

	- name      the name of the taxon
	- taxonKey  a numeric identifier for the taxon (e.g., a GBIF ID)
	- rank      the taxonomic rank of the taxon. Valid ranks are: kingdom,
	            phylum, class, order, family, genus, species, and
		    unranked.
	- status    the taxonomic status of the taxon
	- parent    the ID of the parent taxon

To be valid, a genus must have "accepted" status, and with a valid rank
(different from unranked).

By default, genera that are synonyms, ambiguous, or absent from the taxonomy
are reported in the standard error. Use the flag --set to change the genus of
the terminals to the accepted name from the taxonomy. The resulting tree will
be printed in newick format in the standard output. Use the --output, or -o
flag, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var setFlag bool
var taxFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&setFlag, "set", false, "")
	c.Flags().StringVar(&taxFile, "taxonomy", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		return c.UsageError("expecting a tree file")
	}

	t, err := pipeline.ReadTree(args[0])
	if err != nil {
		return err
	}

	tx, err := readTaxonomy(c.Stdin())
	if err != nil {
		return err
	}

	if err := validateTree(c.Stderr(), t, tx); err != nil {
		return err
	}

	if setFlag {
		if err := writeTree(c.Stdout(), t); err != nil {
			return err
		}
	}

	return nil
}

func readTaxonomy(r io.Reader) (*taxonomy.Taxonomy, error) {
	if taxFile != "" {
		f, err := os.Open(taxFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		taxFile = "stdin"
	}

	tx, err := taxonomy.Read(r)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", taxFile, err)
	}
	return tx, nil
}

func genus(term string) (string, string) {
	g, rest, _ := strings.Cut(term, "_")
	return g, rest
}

func validateTree(w io.Writer, t *cladetree.Tree, tx *taxonomy.Taxonomy) error {
	// terminals of each genus
	genera := make(map[string][]string)
	for _, term := range t.Terms() {
		g, _ := genus(term)
		genera[g] = append(genera[g], term)
	}
	names := make([]string, 0, len(genera))
	for g := range genera {
		names = append(names, g)
	}
	slices.Sort(names)

	var absent []string
	ambiguous := make(map[string][]int64)
	synonym := make(map[string]string)

	for _, g := range names {
		ids := tx.ByName(g)
		if len(ids) == 0 {
			absent = append(absent, g)
			continue
		}
		id := tx.AcceptedAndRanked(ids[0]).ID

		if len(ids) > 1 {
			var amb []int64
			for _, v := range ids {
				x := tx.AcceptedAndRanked(v).ID
				if x != id {
					amb = append(amb, v)
				}
			}
			if len(amb) > 0 {
				ambiguous[g] = append([]int64{id}, amb...)
				continue
			}
		}

		tax := tx.Taxon(id)
		if tax.Name != taxonomy.Canon(g) {
			synonym[g] = tax.Name
		}
	}

	if len(synonym) > 0 && !setFlag {
		fmt.Fprintf(w, "%s: Match with different name:\n", t.Name())
		for _, g := range names {
			acc, ok := synonym[g]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "\tin tree %q [%d terminals],\n\t\tin taxonomy %q\n", g, len(genera[g]), acc)
		}
	}
	if setFlag {
		for _, g := range names {
			acc, ok := synonym[g]
			if !ok {
				continue
			}
			for _, term := range genera[g] {
				_, rest := genus(term)
				nm := acc
				if rest != "" {
					nm = acc + "_" + rest
				}
				id, _ := t.TaxNode(term)
				if err := t.SetLabel(id, nm); err != nil {
					return err
				}
			}
		}
	}

	if len(ambiguous) > 0 {
		fmt.Fprintf(w, "%s: Ambiguos names:\n", t.Name())
		for _, g := range names {
			ids, ok := ambiguous[g]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "\t%s [%d terminals]\n", g, len(genera[g]))
			for _, id := range ids {
				fmt.Fprintf(w, "\t\ttax:%d\n", id)
			}
		}
	}

	if len(absent) > 0 {
		fmt.Fprintf(w, "%s: Not in taxonomy:\n", t.Name())
		for _, g := range absent {
			fmt.Fprintf(w, "\t%s [%d terminals]\n", g, len(genera[g]))
		}
	}

	return nil
}

func writeTree(w io.Writer, t *cladetree.Tree) (err error) {
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

	if err := t.Newick(w); err != nil {
		return fmt.Errorf("while writing to %q: %v", outName, err)
	}
	return nil
}
