// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package pipeline implements the annotation of a tree
// with named clades,
// reference amino acids,
// and taxa of interest.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/colormap"
	"github.com/js-arias/cladetree/msa"
	"github.com/js-arias/cladetree/refseq"
	"github.com/js-arias/cladetree/taxa"
	"github.com/js-arias/gbifer/taxonomy"
)

// DefaultGenusDB is the default genus database file.
const DefaultGenusDB = "SpeciesDatabase/GenusLinage.csv"

// Options are the files used in an annotation.
type Options struct {
	// Tree is the tree file,
	// in newick or nexus format.
	Tree string

	// Clades is the clade file.
	Clades string

	// CladeTrees is an optional file with clade trees.
	CladeTrees string

	// Alignment is the alignment file.
	// If empty,
	// it is derived from the name of the tree file,
	// or the clade trees file.
	Alignment string

	// RefConfig is the configuration of the reference sequence.
	RefConfig string

	// AAColors is a color map for amino acids.
	AAColors string

	// Taxa is a color map with the taxa of interest.
	// GenusDB is a genus database,
	// Lineage is a file with additional genera,
	// and Taxonomy is a taxonomy file.
	Taxa     string
	GenusDB  string
	Lineage  string
	Taxonomy string

	// If set, build the sequence logos.
	Logos bool

	// If set, the alignment is not read.
	NoAlignment bool

	Log  io.Writer
	Warn io.Writer
}

// Prefix returns the prefix of the output files
// of a tree and a clade file.
func Prefix(treeFile, cladeFile string) string {
	base := filepath.Base(cladeFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return treeFile + "." + base
}

// Run reads the files of the options
// and annotates the tree.
func Run(opt Options) (*Result, error) {
	logf(opt.Log, "load tree: %s\n", opt.Tree)
	t, err := ReadTree(opt.Tree)
	if err != nil {
		return nil, err
	}

	cs, err := readClades(opt.Clades)
	if err != nil {
		return nil, err
	}

	var cladeTrees []*cladetree.Tree
	if opt.CladeTrees != "" {
		c, err := readCollection(opt.CladeTrees)
		if err != nil {
			return nil, err
		}
		cladeTrees = c.Trees()
	}

	in := Input{
		Tree:       t,
		Clades:     cs,
		CladeTrees: cladeTrees,
		Logos:      opt.Logos,
		Log:        opt.Log,
		Warn:       opt.Warn,
	}

	if !opt.NoAlignment {
		alnFile := opt.Alignment
		if alnFile == "" {
			alnFile = msa.DefaultPath(opt.Tree, opt.CladeTrees)
		}
		in.Aln, err = ReadAlignment(alnFile)
		if errors.Is(err, os.ErrNotExist) {
			logf(opt.Warn, "WARNING: alignment %q not found\n", alnFile)
		} else if err != nil {
			return nil, err
		}
	}

	if opt.RefConfig != "" {
		in.Ref, err = readReference(opt.RefConfig, in.Aln, opt.Warn)
		if err != nil {
			return nil, err
		}
	}
	if in.Ref != nil {
		if opt.AAColors != "" {
			in.AAColors, err = ReadColorMap(opt.AAColors)
			if err != nil {
				return nil, err
			}
		} else {
			in.AAColors = colormap.AminoAcids()
		}
	}

	if opt.Taxa != "" {
		logf(opt.Log, "load taxa: %s\n", opt.Taxa)
		in.Interest, err = readInterest(opt, t)
		if err != nil {
			return nil, err
		}
	}

	return Annotate(in)
}

// ReadTree reads the first tree
// of a newick or nexus file.
func ReadTree(name string) (*cladetree.Tree, error) {
	c, err := readCollection(name)
	if err != nil {
		return nil, err
	}
	ts := c.Trees()
	return ts[0], nil
}

func readCollection(name string) (*cladetree.Collection, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := cladetree.ReadTrees(f, filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	if len(c.Names()) == 0 {
		return nil, fmt.Errorf("while reading file %q: %w", name, cladetree.ErrNotNewick)
	}
	return c, nil
}

func readClades(name string) ([]clade.Clade, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cs, err := clade.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return cs, nil
}

// ReadAlignment reads an alignment file.
func ReadAlignment(name string) (*msa.Alignment, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	aln, err := msa.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return aln, nil
}

// ReadColorMap reads a color map file.
func ReadColorMap(name string) (*colormap.Map, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cm, err := colormap.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return cm, nil
}

func readReference(name string, aln *msa.Alignment, warn io.Writer) (*refseq.Reference, error) {
	cfg, err := refseq.ReadConfig(name)
	if errors.Is(err, os.ErrNotExist) {
		logf(warn, "WARNING: reference configuration %q not found: special amino acids are not marked\n", name)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if aln == nil {
		logf(warn, "WARNING: reference configuration %q: alignment undefined\n", name)
		return nil, nil
	}
	return refseq.New(cfg, aln)
}

func readInterest(opt Options, t *cladetree.Tree) (*taxa.Interest, error) {
	cm, err := ReadColorMap(opt.Taxa)
	if err != nil {
		return nil, err
	}
	in := taxa.New(cm)

	if opt.GenusDB != "" {
		err := readFile(opt.GenusDB, in.ReadGenusDB)
		if errors.Is(err, os.ErrNotExist) {
			logf(opt.Warn, "WARNING: genus database %q not found\n", opt.GenusDB)
		} else if err != nil {
			return nil, err
		}
	}
	if opt.Lineage != "" {
		if err := readFile(opt.Lineage, in.ReadLineage); err != nil {
			return nil, err
		}
	}
	if opt.Taxonomy != "" {
		f, err := os.Open(opt.Taxonomy)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		tx, err := taxonomy.Read(f)
		if err != nil {
			return nil, fmt.Errorf("on file %q: %v", opt.Taxonomy, err)
		}
		in.AddTaxonomy(tx, t)
	}
	return in, nil
}

func readFile(name string, fn func(io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
