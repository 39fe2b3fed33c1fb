// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree

import (
	"errors"
	"fmt"
)

// ErrOutgroupRoot is returned when the root
// is used as the outgroup of a tree.
var ErrOutgroupRoot = errors.New("root can not be used as outgroup")

// SetOutgroup roots the tree
// at the branch that connects the indicated node
// with its parent.
//
// After rerooting,
// the root will have two children:
// the outgroup
// (always the first child)
// and the rest of the tree.
// The length of the outgroup branch
// is divided equally between both root branches.
// If the old root was bifurcating,
// it is removed,
// and its two branches are merged.
//
// Labels of internal nodes are taken as attributes of the branch
// that connects the node with its parent
// (as is the case with support values),
// so they are moved with their branch
// when the direction of a branch is reversed.
//
// Node IDs are renumbered after rerooting.
func (t *Tree) SetOutgroup(id int) error {
	out, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoNode, id)
	}
	if out == t.root {
		return ErrOutgroupRoot
	}

	old := t.root
	p := out.parent
	p.removeChild(out)
	out.parent = nil

	var outLabel string
	if !out.isTerm() {
		outLabel = out.label
	}

	var down *node
	var downLen float64
	if p == old {
		if len(old.children) == 1 {
			down = old.children[0]
			downLen = down.brLen
		} else {
			// the old root is kept
			// as the connector for the other children.
			down = old
			down.label = outLabel
		}
	} else {
		// reverse the path from the parent of the outgroup
		// to the old root.
		child := p
		up := p.parent
		brLen, label := p.brLen, p.label
		for up != nil {
			next := up.parent
			upLen, upLabel := up.brLen, up.label
			up.removeChild(child)
			child.children = append(child.children, up)
			up.parent = child
			up.brLen = brLen
			up.label = label
			brLen, label = upLen, upLabel
			child = up
			up = next
		}

		// remove the old root if it is a single descendant node
		if len(old.children) == 1 {
			c := old.children[0]
			op := old.parent
			op.replaceChild(old, c)
			c.parent = op
			c.brLen += old.brLen
			if !c.isTerm() && c.label == "" {
				c.label = old.label
			}
		}

		down = p
		p.label = outLabel
	}

	root := &node{}
	out.parent = root
	down.parent = root
	root.children = []*node{out, down}
	half := (out.brLen + downLen) / 2
	out.brLen = half
	down.brLen = half

	t.root = root
	t.sortNodes()
	return nil
}
