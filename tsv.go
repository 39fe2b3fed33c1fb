// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var headerFields = []string{
	"tree",
	"node",
	"parent",
	"length",
	"label",
}

// ReadTSV reads a phylogenetic tree
// from a TSV file.
//
// The TSV must contain the following fields:
//
//	-tree, for the name of the tree
//	-node, for the ID of the node
//	-parent, for of ID of the parent node
//	    (-1 is used for the root)
//	-length, the length of the branch to the parent
//	-label, the name of a terminal,
//	    or the label of an internal node
//
// Branch lengths can be negative.
// Parent nodes should be defined,
// before any children node.
// Terminal nodes should have a unique name.
//
// Here is an example file:
//
//	# phylogenetic trees
//	tree	node	parent	length	label
//	opsins	0	-1	0
//	opsins	1	0	0.12	Bos_taurus_RHO
//	opsins	2	0	0.05	95.2/0.99/98
//	opsins	3	2	0.2	Homo_sapiens_RHO
//	opsins	4	2	0.21	Mus_musculus_Rho
func ReadTSV(r io.Reader) (*Collection, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range headerFields {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	c := NewCollection()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "tree"
		name := strings.Join(strings.Fields(row[fields[f]]), " ")
		if name == "" {
			continue
		}

		t, ok := c.trees[name]
		if !ok {
			t = &Tree{
				name:  name,
				nodes: make(map[int]*node),
				taxa:  make(map[string]*node),
			}
			c.trees[name] = t
			c.order = append(c.order, name)
		}

		f = "node"
		id, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if _, dup := t.nodes[id]; dup {
			return nil, fmt.Errorf("on row %d: field %q: node ID %d already used", ln, f, id)
		}

		f = "parent"
		pID, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		var p *node
		if pID >= 0 {
			var ok bool
			p, ok = t.nodes[pID]
			if !ok {
				return nil, fmt.Errorf("on row %d: field %q: %w: %d", ln, f, ErrAddNoParent, pID)
			}
		} else if t.root != nil {
			return nil, fmt.Errorf("on row %d: field %q: root already defined", ln, f)
		}

		f = "length"
		var brLen float64
		if v := strings.TrimSpace(row[fields[f]]); v != "" {
			brLen, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
			}
			if math.IsNaN(brLen) || math.IsInf(brLen, 0) {
				return nil, fmt.Errorf("on row %d: field %q: %w: %s", ln, f, ErrAddInvalidBrLen, v)
			}
		}

		f = "label"
		label := strings.TrimSpace(row[fields[f]])

		n := &node{
			id:     id,
			parent: p,
			label:  label,
			brLen:  brLen,
		}
		t.nodes[id] = n
		if p != nil {
			p.children = append(p.children, n)
		} else {
			t.root = n
		}
	}

	for _, t := range c.trees {
		if t.root == nil {
			return nil, fmt.Errorf("tree %s: root undefined", t.name)
		}
		for _, n := range t.nodes {
			if !n.isTerm() || n.label == "" {
				continue
			}
			if _, dup := t.taxa[n.label]; dup {
				return nil, fmt.Errorf("tree %s: %w: %s", t.name, ErrAddRepeated, n.label)
			}
			t.taxa[n.label] = n
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tree %s: %w", t.name, err)
		}
		t.sortNodes()
	}

	return c, nil
}

// TSV encodes a collection of phylogenetic trees
// into a TSV file.
func (c *Collection) TSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# phylogenetic trees\n")
	fmt.Fprintf(bw, "# data saved on: %s\n", time.Now().Format(time.RFC3339))
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(headerFields); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for _, nm := range c.Names() {
		if err := c.trees[nm].tsv(tab); err != nil {
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

// TSV encodes a phylogenetic tree
// into a TSV file.
func (t *Tree) tsv(w *csv.Writer) error {
	if err := t.root.tsv(w, t.name); err != nil {
		return err
	}
	return nil
}

func (n *node) tsv(w *csv.Writer, name string) error {
	p := "-1"
	if n.parent != nil {
		p = strconv.Itoa(n.parent.id)
	}
	row := []string{
		name,
		strconv.Itoa(n.id),
		p,
		strconv.FormatFloat(n.brLen, 'g', -1, 64),
		n.label,
	}
	if err := w.Write(row); err != nil {
		return err
	}

	for _, c := range n.children {
		if err := c.tsv(w, name); err != nil {
			return err
		}
	}
	return nil
}
