// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package simulate_test

import (
	"math"
	"testing"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/simulate"
	"github.com/js-arias/cladetree/support"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestRandom(t *testing.T) {
	for _, terms := range []int{2, 3, 10, 50} {
		tr := simulate.Random("random", terms, distuv.Exponential{Rate: 10})
		checkTree(t, tr, terms)
	}
}

func TestCoalescent(t *testing.T) {
	for _, terms := range []int{2, 3, 10, 50} {
		tr := simulate.Coalescent("coalescent", 1000, terms)
		checkTree(t, tr, terms)

		// all terminals are at the same distance from the root
		var dist []float64
		for _, term := range tr.Terms() {
			id, _ := tr.TaxNode(term)
			var d float64
			for ; id != tr.Root(); id = tr.Parent(id) {
				d += tr.BrLen(id)
			}
			dist = append(dist, d)
		}
		for i, d := range dist {
			if math.Abs(d-dist[0]) > 1e-6*dist[0] {
				t.Errorf("coalescent %d: terminal %d: distance to root %.6f, want %.6f", terms, i, d, dist[0])
			}
		}
	}
}

func TestSupports(t *testing.T) {
	tr := simulate.Random("supports", 20, distuv.Exponential{Rate: 10})
	for _, composite := range []bool{false, true} {
		simulate.Supports(tr, composite)
		for _, id := range tr.Nodes() {
			if id == tr.Root() || tr.IsTerm(id) {
				continue
			}
			vs, err := support.Parse(tr.Label(id))
			if err != nil {
				t.Errorf("node %d: label %q: %v", id, tr.Label(id), err)
				continue
			}
			want := 1
			if composite {
				want = 3
			}
			if len(vs) != want {
				t.Errorf("node %d: label %q: got %d values, want %d", id, tr.Label(id), len(vs), want)
			}
			for _, v := range vs {
				if v.Value < 0 || v.Value > 100 {
					t.Errorf("node %d: %s value %.2f out of range", id, v.Kind, v.Value)
				}
			}
		}
	}
}

func checkTree(t *testing.T, tr *cladetree.Tree, terms int) {
	t.Helper()

	if err := tr.Validate(); err != nil {
		t.Errorf("tree with %d terminals: %v", terms, err)
	}
	if got := len(tr.Terms()); got != terms {
		t.Errorf("tree with %d terminals: got %d terminals", terms, got)
	}
	if got := len(tr.Nodes()); got != 2*terms-1 {
		t.Errorf("tree with %d terminals: got %d nodes, want %d", terms, got, 2*terms-1)
	}
	for _, id := range tr.Nodes() {
		if tr.BrLen(id) < 0 {
			t.Errorf("tree with %d terminals: node %d: negative branch length %.6f", terms, id, tr.BrLen(id))
		}
	}
}
