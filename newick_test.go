// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/cladetree"
)

func TestNewick(t *testing.T) {
	tests := map[string]treeTest{
		"supports": {
			name: "supports",
			in:   "(Bos_taurus_RHO:0.12,(Homo_sapiens_RHO:0.2,'Mus musculus Rho':0.21)95.2/0.99/98:0.05);",
			nodes: []node{
				{id: 0, parent: -1, children: []int{1, 2}},
				{id: 1, parent: 0, label: "Bos_taurus_RHO", brLen: 0.12, depth: 1},
				{id: 2, parent: 0, label: "95.2/0.99/98", brLen: 0.05, children: []int{3, 4}, depth: 1},
				{id: 3, parent: 2, label: "Homo_sapiens_RHO", brLen: 0.2, depth: 2},
				{id: 4, parent: 2, label: "Mus musculus Rho", brLen: 0.21, depth: 2},
			},
			terms: []string{"Bos_taurus_RHO", "Homo_sapiens_RHO", "Mus musculus Rho"},
		},
		"polytomy and comments": {
			name: "polytomy and comments",
			in:   "[a comment] (Eoraptor_lunensis:5, Herrerasaurus:4 [another comment], ((Ceratosaurus_nasicornis:25 'Carnotaurus sastrei':99)'A clade':60,Tyrannosaurus_rex:102)100:5)root;",
			nodes: []node{
				{id: 0, parent: -1, label: "root", children: []int{1, 2, 3}},
				{id: 1, parent: 0, label: "Eoraptor_lunensis", brLen: 5, depth: 1},
				{id: 2, parent: 0, label: "Herrerasaurus", brLen: 4, depth: 1},
				{id: 3, parent: 0, label: "100", brLen: 5, children: []int{4, 7}, depth: 1},
				{id: 4, parent: 3, label: "A clade", brLen: 60, children: []int{5, 6}, depth: 2},
				{id: 5, parent: 4, label: "Ceratosaurus_nasicornis", brLen: 25, depth: 3},
				{id: 6, parent: 4, label: "Carnotaurus sastrei", brLen: 99, depth: 3},
				{id: 7, parent: 3, label: "Tyrannosaurus_rex", brLen: 102, depth: 2},
			},
			terms: []string{
				"Eoraptor_lunensis",
				"Herrerasaurus",
				"Ceratosaurus_nasicornis",
				"Carnotaurus sastrei",
				"Tyrannosaurus_rex",
			},
		},
		"negative length": {
			name: "negative length",
			in:   "(A:0.1,(B:-0.2,C:0.3):0.05);",
			nodes: []node{
				{id: 0, parent: -1, children: []int{1, 2}},
				{id: 1, parent: 0, label: "A", brLen: 0.1, depth: 1},
				{id: 2, parent: 0, brLen: 0.05, children: []int{3, 4}, depth: 1},
				{id: 3, parent: 2, label: "B", brLen: -0.2, depth: 2},
				{id: 4, parent: 2, label: "C", brLen: 0.3, depth: 2},
			},
			terms: []string{"A", "B", "C"},
		},
		"annotations": {
			name: "annotations",
			in:   "(A:1,((B:1,C:1)[&label=95,!color=#ff0000]:1,(D:1,E:1):1[&height_95%_HPD={0.1,0.2},support=\"80.3/0.97/96\"]):1,(F:1,G:1)90[&label=50]:1);",
			nodes: []node{
				{id: 0, parent: -1, children: []int{1, 2, 9}},
				{id: 1, parent: 0, label: "A", brLen: 1, depth: 1},
				{id: 2, parent: 0, brLen: 1, children: []int{3, 6}, depth: 1},
				{id: 3, parent: 2, label: "95", brLen: 1, children: []int{4, 5}, depth: 2},
				{id: 4, parent: 3, label: "B", brLen: 1, depth: 3},
				{id: 5, parent: 3, label: "C", brLen: 1, depth: 3},
				{id: 6, parent: 2, label: "80.3/0.97/96", brLen: 1, children: []int{7, 8}, depth: 2},
				{id: 7, parent: 6, label: "D", brLen: 1, depth: 3},
				{id: 8, parent: 6, label: "E", brLen: 1, depth: 3},
				{id: 9, parent: 0, label: "90", brLen: 1, children: []int{10, 11}, depth: 1},
				{id: 10, parent: 9, label: "F", brLen: 1, depth: 2},
				{id: 11, parent: 9, label: "G", brLen: 1, depth: 2},
			},
			terms: []string{"A", "B", "C", "D", "E", "F", "G"},
		},
		"no lengths": {
			name: "no lengths",
			in:   "(A,(B,C)90);",
			nodes: []node{
				{id: 0, parent: -1, children: []int{1, 2}},
				{id: 1, parent: 0, label: "A", depth: 1},
				{id: 2, parent: 0, label: "90", children: []int{3, 4}, depth: 1},
				{id: 3, parent: 2, label: "B", depth: 2},
				{id: 4, parent: 2, label: "C", depth: 2},
			},
			terms: []string{"A", "B", "C"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := cladetree.Newick(strings.NewReader(test.in), test.name)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			tree := c.Tree(test.name)
			if tree == nil {
				t.Fatalf("%s: tree not found", name)
			}
			testTree(t, tree, test)
		})
	}
}

func TestNewickMultiple(t *testing.T) {
	in := `
	(A:1,(B:1,C:1)80:1);
	(A:1,(B:1,C:1)70:1);
	(A:1,(B:1,C:1)60:1);
	`
	c, err := cladetree.Newick(strings.NewReader(in), "trees")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"trees":   "80",
		"trees.1": "70",
		"trees.2": "60",
	}
	if got := c.Names(); len(got) != len(want) {
		t.Fatalf("got %d trees, want %d", len(got), len(want))
	}
	for nm, w := range want {
		tr := c.Tree(nm)
		if tr == nil {
			t.Errorf("tree %q: not found", nm)
			continue
		}
		if got := tr.Label(2); got != w {
			t.Errorf("tree %q: got label %q, want %q", nm, got, w)
		}
	}
}

func TestNewickWrite(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"supports": {
			in:   "(Bos_taurus_RHO:0.12,(Homo_sapiens_RHO:0.2,'Mus musculus Rho':0.21)95.2/0.99/98:0.05);",
			want: "(Bos_taurus_RHO:0.12,(Homo_sapiens_RHO:0.2,'Mus musculus Rho':0.21)95.2/0.99/98:0.05);",
		},
		"root label": {
			in:   "(A:1, B:2, (C:0.5, D:0.25):1.5)root:3;",
			want: "(A:1,B:2,(C:0.5,D:0.25):1.5)root;",
		},
		"quotes": {
			in:   "('O''Brien':1,'(x)':1);",
			want: "('O''Brien':1,'(x)':1);",
		},
	}

	for name, test := range tests {
		c, err := cladetree.Newick(strings.NewReader(test.in), name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		tr := c.Tree(name)
		if got := tr.NewickString(); got != test.want {
			t.Errorf("%s: got %q, want %q", name, got, test.want)
		}

		var buf bytes.Buffer
		if err := tr.Newick(&buf); err != nil {
			t.Fatalf("%s: while writing tree: %v", name, err)
		}
		if got := buf.String(); got != test.want+"\n" {
			t.Errorf("%s: got %q, want %q", name, got, test.want+"\n")
		}

		nc, err := cladetree.Newick(strings.NewReader(buf.String()), name)
		if err != nil {
			t.Fatalf("%s: while reading written tree: %v", name, err)
		}
		if got := nc.Tree(name).NewickString(); got != test.want {
			t.Errorf("%s: read written tree: got %q, want %q", name, got, test.want)
		}
	}
}

func TestNewickErrors(t *testing.T) {
	tests := map[string]struct {
		in   string
		name string
		err  error
	}{
		"unnamed tree": {
			in:  "(A,B);",
			err: cladetree.ErrTreeNoName,
		},
		"not a tree": {
			in:   "A B C",
			name: "not a tree",
			err:  cladetree.ErrNotNewick,
		},
		"single child": {
			in:   "(((A:1,B));",
			name: "single child",
			err:  cladetree.ErrValSingleChild,
		},
		"empty node": {
			in:   "((),(C,D));",
			name: "empty node",
			err:  cladetree.ErrValSingleChild,
		},
		"missing terminal": {
			in:   "(A,);",
			name: "missing terminal",
			err:  cladetree.ErrValSingleChild,
		},
		"unexpected length": {
			in:   "(A,(:1,C));",
			name: "unexpected length",
			err:  cladetree.ErrUnexpBrLen,
		},
		"invalid terminal length": {
			in:   "(A:b, B:5);",
			name: "invalid terminal length",
			err:  cladetree.ErrAddInvalidBrLen,
		},
		"invalid node length": {
			in:   "(C:5, (A:5, B:5):x);",
			name: "invalid node length",
			err:  cladetree.ErrAddInvalidBrLen,
		},
		"undefined length": {
			in:   "(A:NaN,B:1);",
			name: "undefined length",
			err:  cladetree.ErrAddInvalidBrLen,
		},
		"repeated terminal": {
			in:   "(A, (A, B));",
			name: "repeated terminal",
			err:  cladetree.ErrAddRepeated,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := cladetree.Newick(strings.NewReader(test.in), test.name)
			if !errors.Is(err, test.err) {
				t.Errorf("%s: got error '%v', want '%v'", name, err, test.err)
			}
		})
	}
}
