// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cladetree provides a representation
// of a phylogenetic tree with labeled internal nodes
// (usually support values)
// and branch lengths
// (usually in substitutions per site).
package cladetree

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	// Tree adding errors
	ErrAddNoParent     = errors.New("parent ID not in tree")
	ErrAddRepeated     = errors.New("repeated terminal name")
	ErrAddInvalidBrLen = errors.New("invalid branch length")

	// Tree validation errors
	ErrValSingleChild = errors.New("node with a single descendant")
	ErrValUnnamedTerm = errors.New("unnamed terminal")

	// Node errors
	ErrNoNode = errors.New("node ID not in tree")
)

// A Tree is a phylogenetic tree,
// a set of phylogenetic nodes
// with a single common ancestor.
type Tree struct {
	name string

	nodes map[int]*node
	taxa  map[string]*node
	root  *node
}

// New returns a new phylogenetic tree
// with a name and a single root node.
func New(name string) *Tree {
	t := &Tree{
		name:  name,
		nodes: make(map[int]*node),
		taxa:  make(map[string]*node),
	}
	root := &node{id: 0}
	t.nodes[root.id] = root
	t.root = root

	return t
}

// Add adds a node as child of the indicated node ID,
// using the indicated branch length,
// and a label for the node
// (that can be empty).
// It returns the ID of the added node
// or -1 and an error.
//
// Terminal names should be unique,
// but as a node is always added as a terminal,
// it is the responsibility of the caller
// to not repeat a label of a node
// that will end as a terminal.
func (t *Tree) Add(id int, brLen float64, label string) (int, error) {
	p, ok := t.nodes[id]
	if !ok {
		return -1, fmt.Errorf("%w: %d", ErrAddNoParent, id)
	}
	if brLen < 0 {
		return -1, fmt.Errorf("%w: %.6f", ErrAddInvalidBrLen, brLen)
	}

	label = strings.TrimSpace(label)
	if label != "" {
		if _, dup := t.taxa[label]; dup {
			return -1, fmt.Errorf("%w: %s", ErrAddRepeated, label)
		}
	}
	if p.isTerm() && p.label != "" {
		// the parent is no longer a terminal
		delete(t.taxa, p.label)
	}

	n := &node{
		id:     t.nextID(),
		parent: p,
		label:  label,
		brLen:  brLen,
	}
	p.children = append(p.children, n)
	t.nodes[n.id] = n
	if label != "" {
		t.taxa[label] = n
	}

	return n.id, nil
}

// AddSister adds a new terminal
// as the sister of the indicated node.
// A new node is inserted in the branch
// that connects the node with its parent,
// at the indicated distance from the node,
// and the new terminal will be attached to it
// with a branch of length brLen.
// If the node is the root,
// the inserted node will be the new root.
//
// It returns the ID of the new terminal.
// Node IDs are renumbered after the addition.
func (t *Tree) AddSister(id int, dist, brLen float64, label string) (int, error) {
	n, ok := t.nodes[id]
	if !ok {
		return -1, fmt.Errorf("%w: %d", ErrNoNode, id)
	}
	if brLen < 0 {
		return -1, fmt.Errorf("%w: %.6f", ErrAddInvalidBrLen, brLen)
	}
	if dist < 0 || (n.parent != nil && dist > n.brLen) {
		return -1, fmt.Errorf("%w: distance %.6f", ErrAddInvalidBrLen, dist)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return -1, ErrValUnnamedTerm
	}
	if _, dup := t.taxa[label]; dup {
		return -1, fmt.Errorf("%w: %s", ErrAddRepeated, label)
	}

	p := &node{
		parent: n.parent,
	}
	if n.parent != nil {
		p.brLen = n.brLen - dist
		n.parent.replaceChild(n, p)
	} else {
		t.root = p
	}
	n.parent = p
	n.brLen = dist

	sis := &node{
		parent: p,
		label:  label,
		brLen:  brLen,
	}
	p.children = []*node{n, sis}

	t.sortNodes()
	return sis.id, nil
}

// BrLen returns the length of the branch
// that connects the indicated node
// with its parent.
func (t *Tree) BrLen(id int) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}
	return n.brLen
}

// Children returns an slice with the IDs
// of the children of a node,
// in the order in which they are stored in the tree.
func (t *Tree) Children(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	if n.isTerm() {
		return nil
	}

	children := make([]int, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c.id)
	}
	return children
}

// Copy returns a deep copy of the tree.
func (t *Tree) Copy() *Tree {
	nt := &Tree{
		name:  t.name,
		nodes: make(map[int]*node, len(t.nodes)),
		taxa:  make(map[string]*node, len(t.taxa)),
	}
	nt.root = nt.copyNode(t.root, nil)
	return nt
}

func (t *Tree) copyNode(n, parent *node) *node {
	c := &node{
		id:     n.id,
		parent: parent,
		label:  n.label,
		brLen:  n.brLen,
	}
	t.nodes[c.id] = c
	if n.isTerm() && c.label != "" {
		t.taxa[c.label] = c
	}
	for _, d := range n.children {
		c.children = append(c.children, t.copyNode(d, c))
	}
	return c
}

// Depth returns the number of nodes
// between a node and the root.
func (t *Tree) Depth(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}

	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsTerm returns true if the indicated node
// is a terminal.
func (t *Tree) IsTerm(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return n.isTerm()
}

// Label returns the label of the node with the indicated ID.
// For terminals,
// the label is the terminal name,
// for internal nodes is usually a support value.
func (t *Tree) Label(id int) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.label
}

// Leaves returns the IDs of the terminals
// descendants of the indicated node,
// in traversal order.
// If the node is a terminal,
// it returns the node itself.
func (t *Tree) Leaves(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}

	var leaves []int
	n.preorder(func(d *node) {
		if d.isTerm() {
			leaves = append(leaves, d.id)
		}
	})
	return leaves
}

// MRCA returns the ID of the most recent common ancestor
// of the indicated terminals.
// It returns -1 if no terminal is found.
func (t *Tree) MRCA(names ...string) int {
	var mrca *node
	for _, nm := range names {
		n, ok := t.taxa[nm]
		if !ok {
			continue
		}
		if mrca == nil {
			mrca = n
			continue
		}
		mrca = mrca.ancestor(n)
	}
	if mrca == nil {
		return -1
	}
	return mrca.id
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Nodes return an slice with IDs
// of the nodes of the tree.
func (t *Tree) Nodes() []int {
	ns := make([]int, 0, len(t.nodes))
	for _, n := range t.nodes {
		ns = append(ns, n.id)
	}
	slices.Sort(ns)
	return ns
}

// NumLeaves returns the number of terminals
// descendant of a node.
func (t *Tree) NumLeaves(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}

	num := 0
	n.preorder(func(d *node) {
		if d.isTerm() {
			num++
		}
	})
	return num
}

// Parent returns the ID of the parent
// of the indicated node.
// It will return -1 for the root or an invalid node.
func (t *Tree) Parent(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}

	if n.parent == nil {
		return -1
	}
	return n.parent.id
}

// Preorder returns the IDs of the nodes
// descendant from the indicated node
// (including the node itself)
// in pre-order traversal.
func (t *Tree) Preorder(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}

	var ids []int
	n.preorder(func(d *node) {
		ids = append(ids, d.id)
	})
	return ids
}

// Root returns the ID of the root node
// which is 0.
func (t *Tree) Root() int {
	return t.root.id
}

// SetLabel sets the label of a node.
// If the node is a terminal,
// the label should be unique and non-empty.
func (t *Tree) SetLabel(id int, label string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoNode, id)
	}
	label = strings.TrimSpace(label)
	if !n.isTerm() {
		n.label = label
		return nil
	}

	if label == "" {
		return fmt.Errorf("%w: %d", ErrValUnnamedTerm, id)
	}
	if label == n.label {
		return nil
	}
	if _, dup := t.taxa[label]; dup {
		return fmt.Errorf("%w: %s", ErrAddRepeated, label)
	}
	delete(t.taxa, n.label)
	n.label = label
	t.taxa[label] = n
	return nil
}

// SetName sets the name of the tree.
func (t *Tree) SetName(name string) {
	t.name = strings.Join(strings.Fields(name), " ")
}

// SubTree returns a new tree
// using the indicated node as root.
// If name is empty,
// the label of the node will be used,
// or the name of the source tree and the node ID.
func (t *Tree) SubTree(id int, name string) *Tree {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	if name == "" {
		name = n.label
	}
	if name == "" {
		name = fmt.Sprintf("%s.%d", t.name, id)
	}

	nt := &Tree{
		name:  name,
		nodes: make(map[int]*node),
		taxa:  make(map[string]*node),
	}
	nt.root = nt.copyNode(n, nil)
	nt.root.brLen = 0
	nt.sortNodes()
	return nt
}

// TaxNode returns the ID of the terminal
// with the given name.
func (t *Tree) TaxNode(name string) (int, bool) {
	n, ok := t.taxa[name]
	if !ok {
		return -1, false
	}
	return n.id, true
}

// Terms returns the names of all terminals of the tree
// in traversal order.
func (t *Tree) Terms() []string {
	terms := make([]string, 0, len(t.taxa))
	t.root.preorder(func(n *node) {
		if n.isTerm() {
			terms = append(terms, n.label)
		}
	})
	return terms
}

// Validate will return an error if the tree is invalid.
// A tree is invalid if it has nodes with a single child,
// or terminal nodes are without a defined name.
func (t *Tree) Validate() error {
	for _, n := range t.nodes {
		if len(n.children) == 1 {
			return fmt.Errorf("%w: %d", ErrValSingleChild, n.id)
		}
		if n.isTerm() && n.label == "" {
			return fmt.Errorf("%w: %d", ErrValUnnamedTerm, n.id)
		}
	}
	return nil
}

func (t *Tree) nextID() int {
	id := len(t.nodes)
	for {
		if _, ok := t.nodes[id]; !ok {
			return id
		}
		id++
	}
}

// SortNodes renumbers the nodes
// in pre-order traversal.
func (t *Tree) sortNodes() {
	t.nodes = make(map[int]*node, len(t.nodes))
	t.taxa = make(map[string]*node, len(t.taxa))
	id := 0
	t.root.preorder(func(n *node) {
		n.id = id
		t.nodes[id] = n
		if n.isTerm() && n.label != "" {
			t.taxa[n.label] = n
		}
		id++
	})
}

// A Node is a node in a phylogenetic tree.
type node struct {
	id     int
	parent *node
	label  string
	brLen  float64

	children []*node
}

// Ancestor returns the most recent common ancestor
// of two nodes.
func (n *node) ancestor(o *node) *node {
	path := make(map[*node]bool)
	for a := n; a != nil; a = a.parent {
		path[a] = true
	}
	for a := o; a != nil; a = a.parent {
		if path[a] {
			return a
		}
	}
	return nil
}

// IsTerm returns true if the node is a terminal
// (i.e. has no children).
func (n *node) isTerm() bool {
	return len(n.children) == 0
}

func (n *node) preorder(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.preorder(fn)
	}
}

func (n *node) removeChild(c *node) {
	i := slices.Index(n.children, c)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
}

func (n *node) replaceChild(old, c *node) {
	i := slices.Index(n.children, old)
	if i < 0 {
		return
	}
	n.children[i] = c
}
