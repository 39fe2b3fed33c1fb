// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/cladetree"
)

type treeTest struct {
	name string
	in   string

	nodes []node
	terms []string
}

type node struct {
	id       int
	parent   int
	label    string
	brLen    float64
	children []int
	depth    int
}

func getNode(t *cladetree.Tree, id int) node {
	return node{
		id:       id,
		parent:   t.Parent(id),
		label:    t.Label(id),
		brLen:    t.BrLen(id),
		children: t.Children(id),
		depth:    t.Depth(id),
	}
}

func TestTree(t *testing.T) {
	tree := cladetree.New("test")
	tt := treeTest{
		name: "test",
		nodes: []node{
			{id: 0, parent: -1, children: []int{1, 2}},
			{id: 1, parent: 0, label: "Pan_troglodytes", brLen: 6.3, depth: 1},
			{id: 2, parent: 0, label: "98", brLen: 0.5, children: []int{3, 4}, depth: 1},
			{id: 3, parent: 2, label: "Homo_sapiens", brLen: 5.8, depth: 2},
			{id: 4, parent: 2, label: "Homo_neanderthalensis", brLen: 5.75, depth: 2},
		},
		terms: []string{"Pan_troglodytes", "Homo_sapiens", "Homo_neanderthalensis"},
	}

	for _, n := range tt.nodes[1:] {
		id, err := tree.Add(n.parent, n.brLen, n.label)
		if err != nil {
			t.Fatalf("when adding node %d: unexpected error: %v", n.id, err)
		}
		if id != n.id {
			t.Errorf("when adding nodes: got added ID %d, want %d", id, n.id)
		}
	}
	testTree(t, tree, tt)

	if got := tree.Leaves(2); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("leaves of node 2: got %v, want %v", got, []int{3, 4})
	}
	if got := tree.NumLeaves(tree.Root()); got != 3 {
		t.Errorf("leaves of root: got %d, want %d", got, 3)
	}
	if got := tree.Preorder(0); !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("pre-order: got %v, want %v", got, []int{0, 1, 2, 3, 4})
	}

	cp := tree.Copy()
	testTree(t, cp, tt)
	if err := cp.SetLabel(2, "50"); err != nil {
		t.Fatalf("set label: unexpected error: %v", err)
	}
	if tree.Label(2) != "98" {
		t.Errorf("copy: label of source tree changed to %q", tree.Label(2))
	}
}

func TestTreeErrors(t *testing.T) {
	tests := map[string]struct {
		parent int
		brLen  float64
		name   string
		err    error
	}{
		"bad parent": {
			parent: 34545,
			brLen:  5,
			name:   "Rhedosaurus",
			err:    cladetree.ErrAddNoParent,
		},
		"repeated taxon": {
			parent: 0,
			brLen:  1,
			name:   "Homo",
			err:    cladetree.ErrAddRepeated,
		},
		"invalid length": {
			parent: 0,
			brLen:  -1,
			name:   "Pan",
			err:    cladetree.ErrAddInvalidBrLen,
		},
	}
	tree := cladetree.New("test")
	tree.Add(0, 0.5, "Homo")

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tree.Add(test.parent, test.brLen, test.name)
			if !errors.Is(err, test.err) {
				t.Errorf("%s: got error '%v', want '%v'", name, err, test.err)
			}
		})
	}

	// Validation errors
	err := tree.Validate()
	if !errors.Is(err, cladetree.ErrValSingleChild) {
		t.Errorf("single child: got error %v, want %v", err, cladetree.ErrValSingleChild)
	}

	tree.Add(0, 6.3, "")
	err = tree.Validate()
	if !errors.Is(err, cladetree.ErrValUnnamedTerm) {
		t.Errorf("unnamed term: got error %v, want %v", err, cladetree.ErrValUnnamedTerm)
	}

	id, _ := tree.Add(0, 1, "Pan")
	if err := tree.SetLabel(id, "Homo"); !errors.Is(err, cladetree.ErrAddRepeated) {
		t.Errorf("set label: got error %v, want %v", err, cladetree.ErrAddRepeated)
	}
	if err := tree.SetLabel(id, ""); !errors.Is(err, cladetree.ErrValUnnamedTerm) {
		t.Errorf("set label: got error %v, want %v", err, cladetree.ErrValUnnamedTerm)
	}
	if err := tree.SetLabel(1000, "Gorilla"); !errors.Is(err, cladetree.ErrNoNode) {
		t.Errorf("set label: got error %v, want %v", err, cladetree.ErrNoNode)
	}
}

func testTree(t testing.TB, tree *cladetree.Tree, test treeTest) {
	t.Helper()

	if err := tree.Validate(); err != nil {
		t.Fatalf("%s: unexpected error: %v", test.name, err)
	}

	if nm := tree.Name(); nm != test.name {
		t.Errorf("%s: tree name: got %q", test.name, nm)
	}
	if tree.Root() != 0 {
		t.Errorf("%s: tree root ID %d, want %d", test.name, tree.Root(), 0)
	}

	nodes := tree.Nodes()
	if len(nodes) != len(test.nodes) {
		t.Fatalf("%s: got %d nodes, want %d", test.name, len(nodes), len(test.nodes))
	}

	for i, id := range nodes {
		n := getNode(tree, id)
		w := test.nodes[i]
		if !reflect.DeepEqual(n, w) {
			t.Errorf("%s: node %d: got %v, want %v", test.name, id, n, w)
		}

		it := tree.IsTerm(id)
		if it && len(n.children) > 0 {
			t.Errorf("%s: is term (node %d) true", test.name, id)
		}
		if !it && len(n.children) == 0 {
			t.Errorf("%s: is term (node %d) false", test.name, id)
		}

		if !it {
			continue
		}
		term, ok := tree.TaxNode(w.label)
		if !ok {
			t.Errorf("%s: taxon %q: not found", test.name, w.label)
			continue
		}
		if term != id {
			t.Errorf("%s: taxon %q: got ID %d, want %d\n", test.name, w.label, term, id)
		}
	}

	if len(test.terms) > 0 {
		terms := tree.Terms()
		if !reflect.DeepEqual(terms, test.terms) {
			t.Errorf("%s: got %v terminals, want %v", test.name, terms, test.terms)
		}
	}
}

func TestMRCA(t *testing.T) {
	in := "(Eoraptor_lunensis:5,((Ceratosaurus_nasicornis:25,Carnotaurus_sastrei:99):60,(Tyrannosaurus_rex:102,(Archaeopteryx_lithographica:10,Passer_domesticus:160):10):60):5);"
	c, err := cladetree.Newick(strings.NewReader(in), "dinosaurs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tree := c.Tree("dinosaurs")

	tests := map[string]struct {
		terms []string
		want  int
	}{
		"root":        {terms: []string{"Eoraptor_lunensis", "Passer_domesticus"}, want: 0},
		"theropods":   {terms: []string{"Carnotaurus_sastrei", "Passer_domesticus"}, want: 2},
		"birds":       {terms: []string{"Archaeopteryx_lithographica", "Passer_domesticus"}, want: 8},
		"single":      {terms: []string{"Tyrannosaurus_rex"}, want: 7},
		"with absent": {terms: []string{"Tyrannosaurus_rex", "Allosaurus fragilis", "Passer_domesticus"}, want: 6},
		"absent":      {terms: []string{"Allosaurus fragilis"}, want: -1},
	}
	for name, test := range tests {
		if got := tree.MRCA(test.terms...); got != test.want {
			t.Errorf("%s: got %d, want %d", name, got, test.want)
		}
	}

	sub := tree.SubTree(6, "")
	if got, want := sub.Name(), "dinosaurs.6"; got != want {
		t.Errorf("sub-tree name: got %q, want %q", got, want)
	}
	want := "(Tyrannosaurus_rex:102,(Archaeopteryx_lithographica:10,Passer_domesticus:160):10);"
	if got := sub.NewickString(); got != want {
		t.Errorf("sub-tree: got %q, want %q", got, want)
	}
}

func TestAddSister(t *testing.T) {
	c, err := cladetree.Newick(strings.NewReader("(A:1,(B:1,C:1)90:2);"), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := c.Tree("test")

	b, _ := tr.TaxNode("B")
	id, err := tr.AddSister(b, 0.25, 3, "D")
	if err != nil {
		t.Fatalf("add sister: unexpected error: %v", err)
	}
	if got, _ := tr.TaxNode("D"); got != id {
		t.Errorf("add sister: got ID %d, want %d", id, got)
	}
	want := "(A:1,((B:0.25,D:3):0.75,C:1)90:2);"
	if got := tr.NewickString(); got != want {
		t.Errorf("add sister: got %q, want %q", got, want)
	}

	if _, err := tr.AddSister(tr.Root(), 2, 5, "E"); err != nil {
		t.Fatalf("add sister to root: unexpected error: %v", err)
	}
	want = "((A:1,((B:0.25,D:3):0.75,C:1)90:2):2,E:5);"
	if got := tr.NewickString(); got != want {
		t.Errorf("add sister to root: got %q, want %q", got, want)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("add sister: unexpected error: %v", err)
	}

	a, _ := tr.TaxNode("A")
	if _, err := tr.AddSister(a, 0.5, 1, "B"); !errors.Is(err, cladetree.ErrAddRepeated) {
		t.Errorf("repeated name: got error %v, want %v", err, cladetree.ErrAddRepeated)
	}
	if _, err := tr.AddSister(a, 5, 1, "F"); !errors.Is(err, cladetree.ErrAddInvalidBrLen) {
		t.Errorf("invalid distance: got error %v, want %v", err, cladetree.ErrAddInvalidBrLen)
	}
}
