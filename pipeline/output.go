// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/colormap"
	"github.com/js-arias/cladetree/logo"
	"github.com/js-arias/cladetree/support"
)

// Output file suffixes.
const (
	FullTreeTab   = ".fullTree.tab"
	FullTreeNwk   = ".fullTree.nwk"
	CollapsedTab  = ".collapsedTree.tab"
	LegendTab     = ".collapsedTreeLegend.tab"
	CladeTrees    = ".cladeTrees"
	SortedFasta   = ".treeSorted.fasta"
	LogoTab       = ".logo.tab"
	LogoSingleTab = ".logoSingle.tab"
)

// unidentified is the taxon shown for terminals
// without a taxon of interest.
const unidentified = "Unidentified"

// WriteFiles writes all output files
// using the indicated prefix.
// It returns the names of the written files.
func (r *Result) WriteFiles(prefix string) ([]string, error) {
	outs := []struct {
		suffix string
		fn     func(io.Writer) error
		ok     bool
	}{
		{FullTreeTab, r.WriteFullTree, true},
		{FullTreeNwk, r.Tree.Newick, true},
		{CollapsedTab, r.WriteCollapsed, true},
		{LegendTab, r.WriteLegend, r.Legend != nil},
		{CladeTrees, r.WriteCladeTrees, r.Full},
		{SortedFasta, r.WriteSorted, r.Full && r.Aln != nil},
		{LogoTab, r.WriteLogo, r.Logos != nil},
		{LogoSingleTab, r.WriteSingleLogo, r.Single != nil},
	}

	var files []string
	for _, o := range outs {
		if !o.ok {
			continue
		}
		name := prefix + o.suffix
		if err := writeFile(name, o.fn); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

func writeFile(name string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}

var fullHeader = []string{
	"node",
	"parent",
	"length",
	"label",
	"fg",
	"bg",
	"labelcolor",
	"supports",
	"aminoacid",
	"aacolor",
	"taxon",
	"taxoncolor",
	"clade",
}

// WriteFullTree writes the annotations of each node
// of the tree
// as a tab-delimited file.
func (r *Result) WriteFullTree(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# tree: %s\n", r.Tree.Name())
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(fullHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	t := r.Tree
	for _, id := range t.Nodes() {
		st := r.Styles[id]
		row := []string{
			strconv.Itoa(id),
			strconv.Itoa(t.Parent(id)),
			strconv.FormatFloat(t.BrLen(id), 'g', -1, 64),
			t.Label(id),
			st.Fg,
			st.Bg,
		}

		var lbColor, pies, aa, aaColor, tax, taxColor string
		if !t.IsTerm(id) {
			lbColor, pies = supports(t.Label(id))
		} else {
			name := t.Label(id)
			aa, aaColor = r.aminoAcid(name)
			tax, taxColor = r.taxon(name)
		}
		row = append(row, lbColor, pies, aa, aaColor, tax, taxColor, r.Centers[id])

		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

var collapsedHeader = []string{
	"node",
	"parent",
	"length",
	"label",
	"labelcolor",
	"clade",
	"leaves",
	"fg",
	"bg",
	"aminoacids",
	"taxa",
}

// WriteCollapsed writes the tree
// with each clade collapsed into its root
// as a tab-delimited file.
// Nodes inside a clade are not written.
func (r *Result) WriteCollapsed(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# tree: %s\n", r.Tree.Name())
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(collapsedHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	t := r.Tree
	collapsed := make(map[int]clade.Summary)
	for _, s := range clade.Collapse(t, r.Clades) {
		collapsed[s.Clade.Root] = s
	}

	hidden := make(map[int]bool)
	for _, id := range t.Nodes() {
		if hidden[id] {
			continue
		}
		p := t.Parent(id)
		if p >= 0 && (hidden[p] || isCollapsed(collapsed, p)) {
			hidden[id] = true
			continue
		}

		row := []string{
			strconv.Itoa(id),
			strconv.Itoa(p),
			strconv.FormatFloat(t.BrLen(id), 'g', -1, 64),
			t.Label(id),
		}
		lbColor := ""
		if !t.IsTerm(id) {
			lbColor, _ = supports(t.Label(id))
		}
		row = append(row, lbColor)

		s, ok := collapsed[id]
		switch {
		case ok:
			row = append(row,
				s.Clade.Name,
				strconv.Itoa(s.Leaves),
				s.Clade.Fg,
				s.Clade.Bg,
				r.shares(id, r.SpecialAA, r.AAColors),
				r.shares(id, r.Taxa, r.taxaColors()),
			)
		case t.IsTerm(id):
			st := r.Styles[id]
			row = append(row,
				"",
				"1",
				st.Fg,
				st.Bg,
				r.shares(id, r.SpecialAA, r.AAColors),
				r.shares(id, r.Taxa, r.taxaColors()),
			)
		default:
			st := r.Styles[id]
			row = append(row, "", "", st.Fg, st.Bg, "", "")
		}

		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

func isCollapsed(collapsed map[int]clade.Summary, id int) bool {
	_, ok := collapsed[id]
	return ok
}

// WriteLegend writes the legend of the taxa of interest.
func (r *Result) WriteLegend(w io.Writer) error {
	if r.Legend == nil {
		return nil
	}
	return r.Legend.Write(w)
}

// WriteCladeTrees writes the trees of the clades.
func (r *Result) WriteCladeTrees(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := clade.WriteTrees(bw, r.Tree, r.Clades); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteSorted writes the alignment
// with the sequences in the order of the terminals in the tree.
func (r *Result) WriteSorted(w io.Writer) error {
	if r.Aln == nil {
		return nil
	}
	return r.Aln.WriteSorted(w, r.Tree.Terms())
}

// WriteLogo writes the matrices of the window logos.
func (r *Result) WriteLogo(w io.Writer) error {
	return logo.Write(w, r.Logos)
}

// WriteSingleLogo writes the matrices
// of the single position logos.
func (r *Result) WriteSingleLogo(w io.Writer) error {
	return logo.Write(w, r.Single)
}

func (r *Result) aminoAcid(name string) (string, string) {
	if r.SpecialAA == nil {
		return "", ""
	}
	aa, ok := r.SpecialAA[name]
	if !ok {
		return "", "Black"
	}
	return aa, r.AAColors.Color(aa)
}

func (r *Result) taxon(name string) (string, string) {
	if r.Interest == nil {
		return "", ""
	}
	tx, ok := r.Taxa[name]
	if !ok {
		return unidentified, "Black"
	}
	return tx, r.Interest.ColorMap().Color(tx)
}

func (r *Result) taxaColors() *colormap.Map {
	if r.Interest == nil {
		return nil
	}
	return r.Interest.ColorMap()
}

// Shares returns the distribution of an attribute
// as a list of <key>:<count>:<percent>:<color>
// separated by semicolons.
func (r *Result) shares(id int, attr map[string]string, cm *colormap.Map) string {
	if attr == nil {
		return ""
	}
	var parts []string
	for _, s := range clade.Attributes(r.Tree, id, attr, cm) {
		parts = append(parts, fmt.Sprintf("%s:%d:%s:%s", s.Key, s.Count, strconv.FormatFloat(s.Percent, 'f', 2, 64), s.Color))
	}
	return strings.Join(parts, ";")
}

// Supports returns the color of a support label
// and its pie charts.
func supports(label string) (string, string) {
	if label == "" {
		return "", ""
	}
	color := support.LabelColor(label)
	pies, err := support.Pies(label)
	if err != nil {
		return color, ""
	}
	ps := make([]string, 0, len(pies))
	for _, p := range pies {
		ps = append(ps, p.String())
	}
	return color, strings.Join(ps, ";")
}
