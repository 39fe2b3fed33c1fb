// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package clade implements named clades of a phylogenetic tree.
//
// A clade is identified by a type terminal,
// and its root is the most inclusive node
// that contains the type terminal
// but no type terminal of any other clade.
package clade

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/cladetree"
)

// ErrNoClades is returned when an operation
// requires at least one clade.
var ErrNoClades = errors.New("no clades defined")

// A Clade is a named clade.
type Clade struct {
	// Type is the name of the type sequence
	// as given in the clade file.
	Type string

	// Name is the name of the clade.
	Name string

	// Foreground and background colors.
	Fg string
	Bg string

	// Leaf is the terminal used as the type node
	// of the clade.
	Leaf string

	// Root is the ID of the clade root,
	// or -1 if not yet defined.
	// As node IDs change with rerooting,
	// it is only valid after the last rerooting.
	Root int
}

// Read reads the clades
// from a tab-delimited file without header.
// Each row has the following fields:
//
//   - the name of the type sequence
//   - the name of the clade
//   - the foreground color
//   - the background color
//
// Rows with less than four fields are ignored,
// as are lines starting with '#'.
func Read(r io.Reader) ([]Clade, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'
	tab.FieldsPerRecord = -1
	tab.LazyQuotes = true

	var cs []Clade
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ln, _ := tab.FieldPos(0)
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) < 4 {
			continue
		}

		cs = append(cs, Clade{
			Type: strings.TrimSpace(row[0]),
			Name: strings.TrimSpace(row[1]),
			Fg:   strings.TrimSpace(row[2]),
			Bg:   strings.TrimSpace(row[3]),
			Root: -1,
		})
	}
	return cs, nil
}

// Locate sets the type node of each clade,
// and returns the clades found in the tree,
// and the clades that can not be located.
//
// The type node is the terminal with the name of the type sequence.
// If there is no such terminal,
// the trees of the clades
// (a list of trees whose root label is a clade name)
// are used:
// the terminals of the first tree with the name of the clade
// that are present in the tree
// are collected,
// and the terminal at the middle
// is used as the type node.
func Locate(t *cladetree.Tree, cs []Clade, trees []*cladetree.Tree) (found, missing []Clade) {
	for _, c := range cs {
		leaf, ok := locate(t, c, trees)
		if !ok {
			missing = append(missing, c)
			continue
		}
		c.Leaf = leaf
		c.Root = -1
		found = append(found, c)
	}
	return found, missing
}

func locate(t *cladetree.Tree, c Clade, trees []*cladetree.Tree) (string, bool) {
	if _, ok := t.TaxNode(c.Type); ok {
		return c.Type, true
	}

	for _, ct := range trees {
		if ct.Label(ct.Root()) != c.Name {
			continue
		}
		var terms []string
		for _, term := range ct.Terms() {
			if _, ok := t.TaxNode(term); ok {
				terms = append(terms, term)
			}
		}
		if len(terms) == 0 {
			continue
		}
		return terms[(len(terms)-1)/2], true
	}
	return "", false
}

// Counts is the number of clade type nodes
// descendant of each node.
type Counts map[int]int

// Membership returns the number of type nodes
// that are descendants of each node of the tree.
// A type node is counted once for each clade that uses it.
func Membership(t *cladetree.Tree, cs []Clade) Counts {
	counts := make(Counts, len(t.Nodes()))
	for _, c := range cs {
		id, ok := t.TaxNode(c.Leaf)
		if !ok {
			continue
		}
		for ; id >= 0; id = t.Parent(id) {
			counts[id]++
		}
	}
	return counts
}

// InitialReroot roots the tree
// using the type node of the last clade
// as the outgroup.
func InitialReroot(t *cladetree.Tree, cs []Clade) error {
	if len(cs) == 0 {
		return ErrNoClades
	}
	last := cs[len(cs)-1]
	id, ok := t.TaxNode(last.Leaf)
	if !ok {
		return fmt.Errorf("clade %q: type node %q not in tree", last.Name, last.Leaf)
	}
	return t.SetOutgroup(id)
}

// RerootToOutgroup roots the tree
// at the node that separates the last clade
// from all other clades.
//
// Starting from the type node of the first clade
// with a name different from the last clade,
// the path to the root is followed
// while the parent has less than
// the number of clades minus one type nodes,
// then the path goes up one more node,
// and this node is used as the outgroup.
// If there is no such clade,
// the tree is unchanged.
//
// Counts must be updated after rerooting.
func RerootToOutgroup(t *cladetree.Tree, cs []Clade, counts Counts) error {
	if len(cs) == 0 {
		return ErrNoClades
	}
	n := counts[t.Root()] - 1
	last := cs[len(cs)-1].Name

	for _, c := range cs {
		if c.Name == last {
			continue
		}
		id, ok := t.TaxNode(c.Leaf)
		if !ok {
			return fmt.Errorf("clade %q: type node %q not in tree", c.Name, c.Leaf)
		}
		for {
			p := t.Parent(id)
			if p < 0 {
				break
			}
			id = p
			if counts[p] >= n {
				break
			}
		}
		if id == t.Root() {
			return nil
		}
		return t.SetOutgroup(id)
	}
	return nil
}

// RootOf returns the root of the clade
// of the indicated type node.
// This is the most inclusive ancestor
// that only contains a single type node.
func RootOf(t *cladetree.Tree, counts Counts, leaf int) int {
	id := leaf
	for {
		p := t.Parent(id)
		if p < 0 || counts[p] != 1 {
			return id
		}
		id = p
	}
}

// NameRoots sets the root of each clade.
// If the root is unlabeled,
// it will be labeled with the label of its first labeled
// internal child,
// followed by "/*".
func NameRoots(t *cladetree.Tree, cs []Clade, counts Counts) {
	for i, c := range cs {
		id, ok := t.TaxNode(c.Leaf)
		if !ok {
			cs[i].Root = -1
			continue
		}
		root := RootOf(t, counts, id)
		cs[i].Root = root

		if t.Label(root) != "" {
			continue
		}
		for _, child := range t.Children(root) {
			if t.IsTerm(child) {
				continue
			}
			if lb := t.Label(child); lb != "" {
				t.SetLabel(root, lb+"/*")
				break
			}
		}
	}
}

// CenterLeaf returns the terminal at the middle
// of the terminals of a node.
func CenterLeaf(t *cladetree.Tree, id int) int {
	leaves := t.Leaves(id)
	if len(leaves) == 0 {
		return -1
	}
	return leaves[len(leaves)/2]
}

// Centers returns the name of the clade
// assigned to the center leaf of each clade.
func Centers(t *cladetree.Tree, cs []Clade) map[int]string {
	centers := make(map[int]string, len(cs))
	for _, c := range cs {
		if c.Root < 0 {
			continue
		}
		centers[CenterLeaf(t, c.Root)] = c.Name
	}
	return centers
}

// A Style is the color style of a node.
type Style struct {
	Fg string
	Bg string
}

// Default style of nodes outside any clade.
var defStyle = Style{Fg: "Black", Bg: "White"}

// Styles returns the style of each node of the tree.
// The nodes of a clade
// (the clade root and all of its descendants)
// use the colors of the clade.
func Styles(t *cladetree.Tree, cs []Clade) map[int]Style {
	st := make(map[int]Style, len(t.Nodes()))
	for _, id := range t.Nodes() {
		st[id] = defStyle
	}
	for _, c := range cs {
		if c.Root < 0 {
			continue
		}
		for _, id := range t.Preorder(c.Root) {
			st[id] = Style{Fg: c.Fg, Bg: c.Bg}
		}
	}
	return st
}

// Sorted returns the clades
// in the order of its center leaves in the tree.
func Sorted(t *cladetree.Tree, cs []Clade) []Clade {
	byName := make(map[string]Clade, len(cs))
	for _, c := range cs {
		byName[c.Name] = c
	}
	centers := Centers(t, cs)

	sorted := make([]Clade, 0, len(cs))
	for _, id := range t.Leaves(t.Root()) {
		nm, ok := centers[id]
		if !ok {
			continue
		}
		sorted = append(sorted, byName[nm])
	}
	return sorted
}

// WriteTrees writes the subtree of each clade
// as a newick tree
// (one per line)
// in which the root is labeled with the name of the clade.
// Clades with a single terminal are not written.
func WriteTrees(w io.Writer, t *cladetree.Tree, cs []Clade) error {
	for _, c := range cs {
		if c.Root < 0 || t.IsTerm(c.Root) {
			continue
		}
		sub := t.SubTree(c.Root, c.Name)
		sub.SetLabel(sub.Root(), c.Name)
		if err := sub.Newick(w); err != nil {
			return fmt.Errorf("clade %q: %v", c.Name, err)
		}
	}
	return nil
}
