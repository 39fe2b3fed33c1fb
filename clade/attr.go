// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package clade

import (
	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/colormap"
)

// A Share is the number of terminals of a node
// with a given attribute value.
type Share struct {
	Key     string
	Count   int
	Percent float64
	Color   string
}

// CountAttr counts the values of an attribute
// (a map of terminal names to values)
// in the terminals of a node.
// Terminals without a value are counted
// as colormap.Unknown.
// It returns the counts,
// the keys in order of first appearance,
// and the number of terminals.
func CountAttr(t *cladetree.Tree, id int, attr map[string]string) (counts map[string]int, keys []string, n int) {
	counts = make(map[string]int)
	for _, l := range t.Leaves(id) {
		v, ok := attr[t.Label(l)]
		if !ok {
			v = colormap.Unknown
		}
		if _, ok := counts[v]; !ok {
			keys = append(keys, v)
		}
		counts[v]++
		n++
	}
	return counts, keys, n
}

// Attributes returns the distribution of an attribute
// in the terminals of a node,
// with the colors defined in a color map.
func Attributes(t *cladetree.Tree, id int, attr map[string]string, cm *colormap.Map) []Share {
	counts, keys, n := CountAttr(t, id, attr)
	if n == 0 {
		return nil
	}

	shares := make([]Share, 0, len(keys))
	for _, k := range keys {
		c := "Black"
		if cm != nil {
			c = cm.Color(k)
		}
		shares = append(shares, Share{
			Key:     k,
			Count:   counts[k],
			Percent: float64(counts[k]) / float64(n) * 100,
			Color:   c,
		})
	}
	return shares
}

// A Summary is the summary of a collapsed clade.
type Summary struct {
	Clade  Clade
	Label  string
	Leaves int
}

// Collapse returns the summary of each clade
// when the clade is collapsed into its root.
func Collapse(t *cladetree.Tree, cs []Clade) []Summary {
	sum := make([]Summary, 0, len(cs))
	for _, c := range cs {
		if c.Root < 0 {
			continue
		}
		sum = append(sum, Summary{
			Clade:  c,
			Label:  t.Label(c.Root),
			Leaves: t.NumLeaves(c.Root),
		})
	}
	return sum
}
