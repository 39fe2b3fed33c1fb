// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/cladetree"
	"golang.org/x/exp/slices"
)

func TestSetOutgroup(t *testing.T) {
	tests := map[string]struct {
		in   string
		out  string
		want string
	}{
		"terminal": {
			in:   "((A:1,B:1)90:2,(C:1,D:1)80:3);",
			out:  "A",
			want: "(A:0.5,(B:1,(C:1,D:1)80:5):0.5);",
		},
		"root child": {
			in:   "((A:1,B:1)90:2,(C:1,D:1)80:3);",
			out:  "C,D",
			want: "((C:1,D:1)80:2.5,(A:1,B:1)90:2.5);",
		},
		"polytomic root": {
			in:   "(A:1,B:2,(C:1,D:1)70:0.5);",
			out:  "A",
			want: "(A:0.5,(B:2,(C:1,D:1)70:0.5):0.5);",
		},
		"deep terminal": {
			in:   "(A:1,B:1,(C:1,(D:1,E:1)60:2)70:3);",
			out:  "D",
			want: "(D:0.5,(E:1,(C:1,(A:1,B:1)70:3)60:2):0.5);",
		},
		"internal node": {
			in:   "(A:1,((B:1,C:1)95:2,D:1)85:1);",
			out:  "B,C",
			want: "((B:1,C:1)95:1,(D:1,A:2)95:1);",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := cladetree.Newick(strings.NewReader(test.in), name)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			tr := c.Tree(name)
			id := tr.MRCA(strings.Split(test.out, ",")...)
			terms := tr.Terms()
			total := totalLength(tr)

			if err := tr.SetOutgroup(id); err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			if err := tr.Validate(); err != nil {
				t.Fatalf("%s: invalid tree: %v", name, err)
			}
			if got := tr.NewickString(); got != test.want {
				t.Errorf("%s: got %q, want %q", name, got, test.want)
			}

			if got := tr.Children(tr.Root()); len(got) != 2 {
				t.Errorf("%s: root with %d children", name, len(got))
			}
			got := tr.Terms()
			slices.Sort(got)
			slices.Sort(terms)
			if !reflect.DeepEqual(got, terms) {
				t.Errorf("%s: terms: got %v, want %v", name, got, terms)
			}
			if nt := totalLength(tr); math.Abs(nt-total) > 1e-9 {
				t.Errorf("%s: total length: got %.6f, want %.6f", name, nt, total)
			}
			for i, id := range tr.Preorder(tr.Root()) {
				if id != i {
					t.Errorf("%s: node %d in pre-order position %d", name, id, i)
				}
			}
		})
	}
}

func TestSetOutgroupErrors(t *testing.T) {
	c, err := cladetree.Newick(strings.NewReader("((A:1,B:1)90:2,(C:1,D:1)80:3);"), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := c.Tree("test")

	if err := tr.SetOutgroup(tr.Root()); !errors.Is(err, cladetree.ErrOutgroupRoot) {
		t.Errorf("root: got error %v, want %v", err, cladetree.ErrOutgroupRoot)
	}
	if err := tr.SetOutgroup(100); !errors.Is(err, cladetree.ErrNoNode) {
		t.Errorf("invalid node: got error %v, want %v", err, cladetree.ErrNoNode)
	}
}

func totalLength(t *cladetree.Tree) float64 {
	var sum float64
	for _, id := range t.Nodes() {
		sum += t.BrLen(id)
	}
	return sum
}
