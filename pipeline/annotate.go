// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/colormap"
	"github.com/js-arias/cladetree/logo"
	"github.com/js-arias/cladetree/msa"
	"github.com/js-arias/cladetree/refseq"
	"github.com/js-arias/cladetree/taxa"
)

// Input is the data used to annotate a tree.
type Input struct {
	Tree   *cladetree.Tree
	Clades []clade.Clade

	// CladeTrees are trees with the root labeled
	// with the name of a clade.
	// They are used to locate clades
	// without a type sequence in the tree.
	CladeTrees []*cladetree.Tree

	// Optional data
	Aln      *msa.Alignment
	Ref      *refseq.Reference
	AAColors *colormap.Map
	Interest *taxa.Interest

	// If set, build the sequence logos.
	Logos bool

	// Log receives progress messages
	// and Warn receives warnings.
	// Both can be nil.
	Log  io.Writer
	Warn io.Writer
}

// Result is an annotated tree.
type Result struct {
	Tree *cladetree.Tree

	// Clades found in the tree,
	// in the order of the clade file,
	// and sorted by the position of the clades in the tree.
	Clades []clade.Clade
	Sorted []clade.Clade

	// Clades that were not found in the tree.
	Missing []clade.Clade

	Counts  clade.Counts
	Styles  map[int]clade.Style
	Centers map[int]string

	Aln       *msa.Alignment
	Ref       *refseq.Reference
	AAColors  *colormap.Map
	SpecialAA map[string]string

	Interest *taxa.Interest
	Taxa     map[string]string
	Legend   *taxa.Legend

	Logos  []*logo.Matrix
	Single []*logo.Matrix

	// Full is true if the tree is a full tree
	// (i.e., clade trees were not used).
	Full bool
}

// Annotate annotates a tree
// with the clades and the optional data of an input.
//
// The tree is rooted using the type terminal of the last clade,
// then it is rerooted at the node that separates
// the last clade from the other clades.
func Annotate(in Input) (*Result, error) {
	t := in.Tree
	if err := stripQuotes(t); err != nil {
		return nil, fmt.Errorf("tree %s: %v", t.Name(), err)
	}

	r := &Result{
		Tree:     t,
		Aln:      in.Aln,
		Ref:      in.Ref,
		AAColors: in.AAColors,
		Interest: in.Interest,
		Full:     len(in.CladeTrees) == 0,
	}

	if in.Ref != nil && in.Aln != nil {
		logf(in.Log, "amino acid states: %s\n", t.Name())
		r.SpecialAA = in.Ref.SpecialAA(t, in.Aln)
		if r.AAColors == nil {
			r.AAColors = colormap.AminoAcids()
		}
	}

	logf(in.Log, "load clades: %s\n", t.Name())
	cs, missing := clade.Locate(t, in.Clades, in.CladeTrees)
	for _, c := range missing {
		logf(in.Warn, "WARNING: clade %q: type sequence %q not found\n", c.Name, c.Type)
	}
	r.Missing = missing
	if len(cs) == 0 {
		return nil, fmt.Errorf("tree %s: %w", t.Name(), clade.ErrNoClades)
	}

	logf(in.Log, "initial reroot: %s\n", t.Name())
	if err := clade.InitialReroot(t, cs); err != nil {
		return nil, fmt.Errorf("tree %s: %v", t.Name(), err)
	}
	counts := clade.Membership(t, cs)

	if in.Interest != nil {
		logf(in.Log, "taxa of interest: %s\n", t.Name())
		r.Taxa = in.Interest.Assign(t)
	}

	logf(in.Log, "reroot: %s\n", t.Name())
	if err := clade.RerootToOutgroup(t, cs, counts); err != nil {
		return nil, fmt.Errorf("tree %s: %v", t.Name(), err)
	}
	counts = clade.Membership(t, cs)

	logf(in.Log, "clade roots: %s\n", t.Name())
	clade.NameRoots(t, cs, counts)
	r.Clades = cs
	r.Counts = counts
	r.Styles = clade.Styles(t, cs)
	r.Centers = clade.Centers(t, cs)
	r.Sorted = clade.Sorted(t, cs)

	if in.Interest != nil {
		ingroup, outgroup := sides(t, cs[len(cs)-1].Leaf)
		r.Legend = taxa.NewLegend(t, in.Interest.ColorMap(), r.Taxa, ingroup, outgroup)
	}

	if in.Logos && in.Ref != nil && in.Aln != nil {
		logf(in.Log, "sequence logos: %s\n", t.Name())
		r.buildLogos(in.Warn)
	}
	return r, nil
}

func (r *Result) buildLogos(warn io.Writer) {
	cols := logo.RefWindow(r.Ref, r.Aln.Len())
	if len(cols) == 0 {
		logf(warn, "WARNING: logo: position %d of %q not in alignment\n", r.Ref.Pos, r.Ref.ID)
	} else {
		ms, errs := logo.Clades(r.Tree, r.Sorted, r.Aln, cols)
		for _, err := range errs {
			logf(warn, "WARNING: logo: %v\n", err)
		}
		for _, m := range ms {
			m.SetPositions(r.Ref.Position)
			logo.SetHighlights(m, r.Ref)
		}
		r.Logos = ms
	}

	single := logo.Single(r.Ref)
	if len(single) == 0 {
		return
	}
	ms, errs := logo.Clades(r.Tree, r.Sorted, r.Aln, single)
	for _, err := range errs {
		logf(warn, "WARNING: single position logo: %v\n", err)
	}
	for _, m := range ms {
		m.SetPositions(r.Ref.Position)
	}
	r.Single = ms
}

// StripQuotes removes single quotes
// from the labels of the tree.
func stripQuotes(t *cladetree.Tree) error {
	for _, id := range t.Nodes() {
		lb := t.Label(id)
		if !strings.Contains(lb, "'") {
			continue
		}
		if err := t.SetLabel(id, strings.ReplaceAll(lb, "'", "")); err != nil {
			return err
		}
	}
	return nil
}

// Sides returns the root children
// that are the ingroup and the outgroup.
// The outgroup is the child that contains the given terminal.
func sides(t *cladetree.Tree, outLeaf string) (ingroup, outgroup int) {
	ch := t.Children(t.Root())
	if len(ch) != 2 {
		return -1, -1
	}
	id, ok := t.TaxNode(outLeaf)
	if !ok {
		return ch[0], ch[1]
	}
	for t.Parent(id) != t.Root() {
		id = t.Parent(id)
	}
	if id == ch[0] {
		return ch[1], ch[0]
	}
	return ch[0], ch[1]
}

func logf(w io.Writer, format string, a ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, a...)
}
