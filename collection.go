// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

// Tree collection errors
var (
	ErrTreeNoName   = errors.New("tree without name")
	ErrTreeRepeated = errors.New("repeated tree name")
)

// A Collection is a collection of phylogenetic trees.
type Collection struct {
	trees map[string]*Tree
	order []string
}

// NewCollection returns a new empty collection.
func NewCollection() *Collection {
	return &Collection{
		trees: make(map[string]*Tree),
	}
}

// Add adds a tree to a tree collection.
// It will return an error if a the collection
// has a tree with the name of the added tree
// or the tree name is empty.
func (c *Collection) Add(t *Tree) error {
	name := strings.Join(strings.Fields(t.Name()), " ")
	if name == "" {
		return ErrTreeNoName
	}
	if _, dup := c.trees[name]; dup {
		return fmt.Errorf("%w: %s", ErrTreeRepeated, name)
	}
	c.trees[name] = t
	c.order = append(c.order, name)
	return nil
}

// Names return the names of the trees in the collection.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.trees))
	for _, t := range c.trees {
		names = append(names, t.name)
	}
	slices.Sort(names)
	return names
}

// Tree returns a tree with a given name.
func (c *Collection) Tree(name string) *Tree {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil
	}
	return c.trees[name]
}

// Trees returns the trees of the collection
// in the order in which they were added.
func (c *Collection) Trees() []*Tree {
	ts := make([]*Tree, 0, len(c.order))
	for _, nm := range c.order {
		ts = append(ts, c.trees[nm])
	}
	return ts
}

// ReadTrees reads one or more trees
// from a file in newick or nexus format.
// The format is detected from the first token
// in the file.
// Name is used as the name of the trees
// in newick files.
func ReadTrees(r io.Reader, name string) (*Collection, error) {
	br := bufio.NewReader(r)
	for {
		r1, _, err := br.ReadRune()
		if err != nil {
			return nil, ErrNotNewick
		}
		if unicode.IsSpace(r1) {
			continue
		}
		br.UnreadRune()
		break
	}

	head, _ := br.Peek(len("#nexus"))
	if strings.ToLower(string(head)) == "#nexus" {
		return Nexus(br)
	}
	return Newick(br, name)
}
