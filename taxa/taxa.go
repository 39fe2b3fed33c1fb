// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxa assigns the terminals of a tree
// to higher taxa of interest.
package taxa

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/colormap"
	"github.com/js-arias/gbifer/taxonomy"
)

// maxDepth is the maximum number of ancestors
// visited in a taxonomy.
const maxDepth = 100

// Interest stores the genera assigned to each taxon of interest.
type Interest struct {
	cm    *colormap.Map
	genus map[string]string
}

// New returns a new set of taxa of interest
// from a color map.
// Only regular entries of the color map
// are used as taxa of interest.
func New(cm *colormap.Map) *Interest {
	return &Interest{
		cm:    cm,
		genus: make(map[string]string),
	}
}

// ColorMap returns the color map of the taxa of interest.
func (in *Interest) ColorMap() *colormap.Map {
	return in.cm
}

// Genus returns the taxon of interest assigned to a genus.
func (in *Interest) Genus(name string) (string, bool) {
	tx, ok := in.genus[name]
	return tx, ok
}

// Len returns the number of assigned genera.
func (in *Interest) Len() int {
	return len(in.genus)
}

// Set assigns a genus to a taxon.
func (in *Interest) Set(genus, taxon string) {
	in.genus[genus] = taxon
}

func (in *Interest) regular() []string {
	var ts []string
	for _, k := range in.cm.Keys() {
		if k == colormap.Unknown {
			continue
		}
		e, _ := in.cm.Entry(k)
		if e.Type != colormap.Regular {
			continue
		}
		ts = append(ts, k)
	}
	return ts
}

// ReadGenusDB reads a genus database.
// It is a tab-delimited file without header,
// with three columns:
// an identifier,
// the name of the genus,
// and its lineage,
// as a list of taxon names separated by semicolons,
// for example:
//
//	1234	Homo	Eukaryota; Metazoa; Chordata; Mammalia; Primates;
//
// A genus is assigned to a taxon of interest
// if the name of the taxon is part of its lineage.
// If more than one taxon is found,
// the last taxon in the color map is used.
func (in *Interest) ReadGenusDB(r io.Reader) error {
	return in.readLineages(r, 1, 2, func(lineage, taxon string) bool {
		return strings.Contains(lineage, " "+taxon+";")
	})
}

// ReadLineage reads a lineage file.
// It is a tab-delimited file without header,
// with two columns:
// the name of the genus,
// and a lineage.
// A genus is assigned to a taxon of interest
// if the lineage contains the name of the taxon.
// Lines starting with '#' are ignored.
func (in *Interest) ReadLineage(r io.Reader) error {
	return in.readLineages(r, 0, 1, strings.Contains)
}

func (in *Interest) readLineages(r io.Reader, gCol, lCol int, match func(lineage, taxon string) bool) error {
	taxa := in.regular()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		row := strings.Split(line, "\t")
		if len(row) <= lCol {
			return fmt.Errorf("on row %d: expecting %d fields", ln, lCol+1)
		}
		genus := strings.TrimSpace(row[gCol])
		if genus == "" {
			continue
		}
		for _, tx := range taxa {
			if match(row[lCol], tx) {
				in.genus[genus] = tx
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("on row %d: %v", ln, err)
	}
	return nil
}

// AddTaxonomy uses a taxonomy
// to assign the genera in the terminal names of a tree
// that are not already assigned.
// A genus is assigned to a taxon of interest
// if the taxon is the genus itself
// or one of its parents in the taxonomy.
func (in *Interest) AddTaxonomy(tx *taxonomy.Taxonomy, t *cladetree.Tree) {
	taxa := make(map[string]bool)
	for _, k := range in.regular() {
		taxa[k] = true
	}

	for _, term := range t.Terms() {
		for _, g := range strings.Split(term, "_") {
			if g == "" {
				continue
			}
			if _, ok := in.genus[g]; ok {
				continue
			}
			ids := tx.ByName(g)
			if len(ids) == 0 {
				continue
			}
			if name, ok := lineage(tx, ids[0], taxa); ok {
				in.genus[g] = name
			}
		}
	}
}

// Lineage returns the first taxon of interest
// found in the path of a taxon to the root of the taxonomy.
func lineage(tx *taxonomy.Taxonomy, id int64, taxa map[string]bool) (string, bool) {
	id = tx.AcceptedAndRanked(id).ID
	for i := 0; i < maxDepth && id != 0; i++ {
		tax := tx.Taxon(id)
		if tax.ID == 0 {
			break
		}
		if taxa[tax.Name] {
			return tax.Name, true
		}
		id = tax.Parent
	}
	return "", false
}

// Assign returns the taxon of interest
// of each terminal of a tree.
// The terminal name is split in parts
// separated by underscores,
// and the first part assigned to a taxon is used.
func (in *Interest) Assign(t *cladetree.Tree) map[string]string {
	assign := make(map[string]string)
	for _, term := range t.Terms() {
		for _, g := range strings.Split(term, "_") {
			if tx, ok := in.genus[g]; ok {
				assign[term] = tx
				break
			}
		}
	}
	return assign
}
