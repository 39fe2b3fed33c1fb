// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package annotate implements a command to annotate a tree
// with named clades.
package annotate

import (
	"fmt"
	"io"

	"github.com/js-arias/cladetree/pipeline"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `annotate [-v|--verbose] [-o|--output <prefix>]
	[--trees <clade-trees-file>] [--aln <alignment-file>]
	[--ref <config-file>] [--aa <color-map>]
	[--taxa <color-map>] [--genus <file>] [--lineage <file>]
	[--taxonomy <file>] [--logos]
	<tree-file> <clade-file>`,
	Short: "annotate a tree with named clades",
	Long: `
Command annotate reads a phylogenetic tree and a file with named clades, roots
the tree with the last clade as outgroup, finds the root of each clade, and
writes a set of tab-delimited files with the annotated tree, the collapsed
tree, and the sequence logos of each clade.

The first argument is the tree file, in newick or nexus format. Only the first
tree of the file is used. Internal node labels are read as support values,
either in the form "SH-aLRT/aBayes/UFBoot" (e.g., "80.2/0.95/97") or as a
single ultrafast bootstrap value.

The second argument is the clade file, a tab-delimited file without header
and the following columns:

	- the name of the type sequence of the clade
	- the name of the clade
	- the foreground color
	- the background color

Colors are CSS color names. The last clade is used as the outgroup.

If a type sequence is not in the tree, the flag --trees can be used to define
a file with clade trees (one newick tree for each clade, with the name of
the clade as the label of the root). In that case the terminal at the middle
of the clade tree that is also in the tree is used as the type sequence.
Clades without a type sequence in the tree are ignored with a warning.

By default, the alignment is searched using the name of the tree file (e.g.,
"rho.phy" for the tree "rho.phy.treefile"), or the name of the clade trees
file without three extensions. Use the flag --aln to define a different file.
The alignment can be in FASTA or relaxed PHYLIP format.

The flag --ref defines the configuration of a reference sequence. It is a
tab-delimited file with the following keys:

	- seqfile                 a FASTA file with the reference sequence
	- aapos                   the position of the special amino acid
	- tolowerlimit            positions before the special amino acid
	                          included in the sequence logos
	- toupperlimit            positions after the special amino acid
	- interestingaapositions  positions for the single position logo
	- aatohighlight           positions highlighted in the logos
	- highlightcolors         colors of the highlighted positions

Positions are 1-based positions in the reference sequence. The amino acid
at the special position of each terminal is colored with a color map. By
default a color map based on amino acid properties is used. Use the flag --aa
to define a different color map. A color map is a tab-delimited file with
a key (the amino acid) and a color.

The flag --taxa defines a color map with taxa of interest. The genus of each
terminal (the first part of the name, separated by underscores) is searched
in a genus database (flag --genus, by default "SpeciesDatabase/GenusLinage.csv"),
in a lineage file (flag --lineage), or in a taxonomy (flag --taxonomy) to
assign the taxon of interest. In the taxa color map, a third column can be
used to define the type of the entry (regular, legendonly, title, total,
ingroup, outgroup, or unknown), and a fourth column the rank, used to indent
the legend.

The flag --logos builds the sequence logos of each clade.

The output files will use as prefix the name of the tree file and the base
name of the clade file. Use the flag --output, or -o, to define a different
prefix.

Use the flag --verbose, or -v, to print the progress of the analysis.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var verbose bool
var logos bool
var output string
var cladeTrees string
var alnFile string
var refFile string
var aaFile string
var taxaFile string
var genusFile string
var lineageFile string
var taxFile string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&verbose, "verbose", false, "")
	c.Flags().BoolVar(&verbose, "v", false, "")
	c.Flags().BoolVar(&logos, "logos", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&cladeTrees, "trees", "", "")
	c.Flags().StringVar(&alnFile, "aln", "", "")
	c.Flags().StringVar(&refFile, "ref", "", "")
	c.Flags().StringVar(&aaFile, "aa", "", "")
	c.Flags().StringVar(&taxaFile, "taxa", "", "")
	c.Flags().StringVar(&genusFile, "genus", pipeline.DefaultGenusDB, "")
	c.Flags().StringVar(&lineageFile, "lineage", "", "")
	c.Flags().StringVar(&taxFile, "taxonomy", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting tree file and clade file")
	}

	var log io.Writer
	if verbose {
		log = c.Stderr()
	}

	r, err := pipeline.Run(pipeline.Options{
		Tree:       args[0],
		Clades:     args[1],
		CladeTrees: cladeTrees,
		Alignment:  alnFile,
		RefConfig:  refFile,
		AAColors:   aaFile,
		Taxa:       taxaFile,
		GenusDB:    genusFile,
		Lineage:    lineageFile,
		Taxonomy:   taxFile,
		Logos:      logos,
		Log:        log,
		Warn:       c.Stderr(),
	})
	if err != nil {
		return err
	}

	prefix := output
	if prefix == "" {
		prefix = pipeline.Prefix(args[0], args[1])
	}
	files, err := r.WriteFiles(prefix)
	if err != nil {
		return err
	}
	if verbose {
		for _, f := range files {
			fmt.Fprintf(c.Stderr(), "written: %s\n", f)
		}
	}
	return nil
}
