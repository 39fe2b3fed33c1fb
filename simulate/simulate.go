// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package simulate creates random trees
// with random support values.
package simulate

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/js-arias/cladetree"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rander is a distribution that returns
// a random number.
type Rander interface {
	Rand() float64
}

// Random creates a random tree
// by adding terminals
// as sisters of a randomly picked node.
// The new node is inserted at a random point
// of the branch of the picked node,
// and branch lengths of the terminals
// are taken from the given distribution.
// Random panics if terms < 2.
func Random(name string, terms int, brLen Rander) *cladetree.Tree {
	if terms < 2 {
		panic("expecting more than two terminals")
	}

	t := cladetree.New(name)
	t.Add(0, brLen.Rand(), "term0")
	t.Add(0, brLen.Rand(), "term1")

	for i := 2; i < terms; i++ {
		// pick a node, other than the root
		nodes := t.Nodes()
		sis := nodes[rand.Intn(len(nodes)-1)+1]

		// pick position in the branch
		dist := t.BrLen(sis) * rand.Float64()

		term := fmt.Sprintf("term%d", i)
		if _, err := t.AddSister(sis, dist, brLen.Rand(), term); err != nil {
			panic(fmt.Sprintf("unexpected error: %v", err))
		}
	}
	return t
}

// Coalescent creates a random ultrametric tree
// using the Kingman coalescence
// with a population size of n.
// see Felsenstein J. (2004)
// "Inferring Phylogenies", Sinauer, p.456.
// Coalescent panics if terms < 2.
func Coalescent(name string, n float64, terms int) *cladetree.Tree {
	if terms < 2 {
		panic("expecting more than two terminals")
	}

	// coalescent times
	ages := make([]float64, terms-1)
	var age float64
	for i := range ages {
		k := float64(terms - i)
		exp := distuv.Exponential{
			Rate: k * (k - 1) / (4 * n),
		}
		age += exp.Rand()
		ages[i] = age
	}
	slices.SortFunc(ages, func(a, b float64) int {
		return cmp.Compare(b, a)
	})

	added := make([]string, 0, terms)
	t := cladetree.New(name)
	// first node
	term := "term0"
	t.Add(0, ages[0], term)
	added = append(added, term)
	term = "term1"
	t.Add(0, ages[0], term)
	added = append(added, term)

	for i := 2; i < terms; i++ {
		// pick sister
		s := added[rand.Intn(i)]
		sis, _ := t.TaxNode(s)

		// pick age
		age := ages[i-1]

		// search coalescent sister
		for {
			p := t.Parent(sis)
			if p < 0 || height(t, p) > age {
				break
			}
			sis = p
		}

		dist := age - height(t, sis)
		if dist < 0 {
			dist = 0
		}
		if bl := t.BrLen(sis); t.Parent(sis) >= 0 && dist > bl {
			dist = bl
		}

		term := fmt.Sprintf("term%d", i)
		if _, err := t.AddSister(sis, dist, age, term); err != nil {
			panic(fmt.Sprintf("unexpected error: %v", err))
		}
		added = append(added, term)
	}

	return t
}

// Height returns the distance from a node
// to its first terminal.
func height(t *cladetree.Tree, id int) float64 {
	var h float64
	for !t.IsTerm(id) {
		id = t.Children(id)[0]
		h += t.BrLen(id)
	}
	return h
}

// Supports sets random support values
// to the internal nodes of a tree
// (except the root).
// If composite is true,
// the labels will include SH-aLRT,
// aBayes and ultrafast bootstrap values,
// otherwise,
// only an ultrafast bootstrap value will be used.
func Supports(t *cladetree.Tree, composite bool) {
	shalrt := distuv.Uniform{Min: 0, Max: 100}
	abayes := distuv.Beta{Alpha: 5, Beta: 1}
	ufboot := distuv.Uniform{Min: 0, Max: 101}

	for _, id := range t.Nodes() {
		if id == t.Root() || t.IsTerm(id) {
			continue
		}
		boot := int(math.Min(math.Floor(ufboot.Rand()), 100))
		label := fmt.Sprintf("%d", boot)
		if composite {
			label = fmt.Sprintf("%.1f/%.2f/%d", shalrt.Rand(), abayes.Rand(), boot)
		}
		t.SetLabel(id, label)
	}
}
