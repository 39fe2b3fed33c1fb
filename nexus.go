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
)

var (
	// Nexus errors
	ErrNotNexus   = errors.New("not a nexus file")
	ErrNexusTaxon = errors.New("terminal not in taxa block")
)

// Nexus reads the trees of a nexus file,
// for example the consensus trees written by IQ-TREE
// or the trees saved by FigTree.
//
// Trees are read from the 'tree' or 'utree' commands
// of any trees block,
// and they keep the name used in the file.
// If the trees block has a translate table,
// terminal names are translated,
// and if the file has a taxa block,
// all terminals must be defined in that block.
// Support values stored in node annotations
// (e.g. "[&label=95]")
// are read as labels of the internal nodes.
// Any other block is ignored.
func Nexus(r io.Reader) (*Collection, error) {
	nx := &nexusReader{r: bufio.NewReader(r)}

	head, err := nx.next()
	if err != nil || !strings.EqualFold(head, "#nexus") {
		return nil, ErrNotNexus
	}

	c := NewCollection()
	var taxa map[string]bool
	for {
		tk, err := nx.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("nexus: %v", err)
		}
		if !strings.EqualFold(tk, "begin") {
			return nil, fmt.Errorf("nexus: got %q, expecting 'begin'", tk)
		}

		block, err := nx.next()
		if err != nil {
			return nil, fmt.Errorf("nexus: expecting block name: %v", err)
		}
		if nx.delim != ';' {
			return nil, fmt.Errorf("nexus: block %q: expecting ';'", block)
		}

		switch strings.ToLower(block) {
		case "taxa":
			taxa, err = nx.taxa()
		case "trees":
			err = nx.trees(c, taxa)
		default:
			err = nx.skipBlock()
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, fmt.Errorf("nexus: block %q: %w", block, err)
		}
	}

	if len(c.Names()) == 0 {
		return nil, fmt.Errorf("nexus: file without trees")
	}
	return c, nil
}

// A nexusReader reads the tokens of a nexus file.
type nexusReader struct {
	r   *bufio.Reader
	tok strings.Builder

	// delim is the punctuation that ends the last token,
	// or a space if the token is not followed by a punctuation.
	delim rune
}

// Taxa returns the terminal names defined
// in the taxlabels command of a taxa block.
func (nx *nexusReader) taxa() (map[string]bool, error) {
	taxa := make(map[string]bool)
	for {
		cmd, err := nx.next()
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(cmd) {
		case "end", "endblock":
			return taxa, nx.skipStatement()
		case "taxlabels":
			for nx.delim != ';' {
				tax, err := nx.next()
				if err != nil {
					return nil, err
				}
				tax = strings.Join(strings.Fields(tax), " ")
				if tax == "" {
					continue
				}
				if taxa[tax] {
					return nil, fmt.Errorf("taxlabels: %w: %s", ErrAddRepeated, tax)
				}
				taxa[tax] = true
			}
		default:
			if err := nx.skipStatement(); err != nil {
				return nil, err
			}
		}
	}
}

// Trees adds the trees of a trees block
// to a collection.
func (nx *nexusReader) trees(c *Collection, taxa map[string]bool) error {
	var labels map[string]string
	for {
		cmd, err := nx.next()
		if err != nil {
			return err
		}
		switch strings.ToLower(cmd) {
		case "end", "endblock":
			return nx.skipStatement()
		case "translate":
			labels, err = nx.translate()
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}
		case "tree", "utree":
			t, err := nx.tree()
			if err != nil {
				return err
			}
			if err := t.translate(labels, taxa); err != nil {
				return fmt.Errorf("tree %q: %w", t.name, err)
			}
			if err := c.Add(t); err != nil {
				return err
			}
		default:
			if err := nx.skipStatement(); err != nil {
				return err
			}
		}
	}
}

// Translate reads the pairs of a translate command.
func (nx *nexusReader) translate() (map[string]string, error) {
	labels := make(map[string]string)
	for nx.delim != ';' {
		key, err := nx.next()
		if err != nil {
			return nil, err
		}
		if key == "" && nx.delim == ';' {
			// a trailing comma
			break
		}
		if nx.delim != ' ' {
			return nil, fmt.Errorf("key %q without terminal name", key)
		}

		tax, err := nx.next()
		if err != nil {
			return nil, err
		}
		tax = strings.Join(strings.Fields(tax), " ")
		if tax == "" {
			return nil, fmt.Errorf("key %q: %w", key, ErrValUnnamedTerm)
		}
		if _, dup := labels[key]; dup {
			return nil, fmt.Errorf("key %q: repeated", key)
		}
		labels[key] = tax

		if nx.delim != ',' && nx.delim != ';' {
			return nil, fmt.Errorf("key %q: expecting ',' or ';'", key)
		}
	}
	return labels, nil
}

// Tree reads a tree definition
// in the form: <name> = <newick tree>;
func (nx *nexusReader) tree() (*Tree, error) {
	name, err := nx.next()
	if err != nil {
		return nil, err
	}
	if name == "*" && nx.delim == ' ' {
		// PAUP default tree mark
		if name, err = nx.next(); err != nil {
			return nil, err
		}
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrTreeNoName
	}
	if nx.delim != '=' {
		return nil, fmt.Errorf("tree %q: expecting '='", name)
	}

	t, err := newick(nx.r, name)
	if err != nil {
		return nil, fmt.Errorf("tree %q: %w", name, err)
	}
	if t == nil {
		return nil, fmt.Errorf("tree %q: %w", name, io.ErrUnexpectedEOF)
	}

	tk, err := nx.next()
	if err != nil {
		return nil, fmt.Errorf("tree %q: %w", name, err)
	}
	if tk != "" || nx.delim != ';' {
		return nil, fmt.Errorf("tree %q: got %q, expecting ';'", name, tk)
	}
	return t, nil
}

// Translate renames the terminals of a tree
// using a translation table,
// and checks that all terminals
// are in the set of defined taxa.
func (t *Tree) translate(labels map[string]string, taxa map[string]bool) error {
	if len(labels) == 0 && len(taxa) == 0 {
		return nil
	}

	terms := make(map[string]*node, len(t.taxa))
	for _, n := range t.taxa {
		name := n.label
		if tax, ok := labels[name]; ok {
			name = tax
		}
		if len(taxa) > 0 && !taxa[name] {
			return fmt.Errorf("%w: %s", ErrNexusTaxon, name)
		}
		if _, dup := terms[name]; dup {
			return fmt.Errorf("%w: %s", ErrAddRepeated, name)
		}
		terms[name] = n
	}
	for name, n := range terms {
		n.label = name
	}
	t.taxa = terms
	return nil
}

// SkipBlock skips all the statements of a block,
// including the 'end' statement.
func (nx *nexusReader) skipBlock() error {
	for {
		cmd, err := nx.next()
		if err != nil {
			return err
		}
		if err := nx.skipStatement(); err != nil {
			return err
		}
		if cmd := strings.ToLower(cmd); cmd == "end" || cmd == "endblock" {
			return nil
		}
	}
}

// SkipStatement skips the tokens
// up to the end of the current statement.
func (nx *nexusReader) skipStatement() error {
	for nx.delim != ';' {
		if _, err := nx.next(); err != nil {
			return err
		}
	}
	return nil
}

// Next returns the next token of the file.
// Comments are ignored,
// and quotes of a quoted token are removed.
func (nx *nexusReader) next() (string, error) {
	nx.tok.Reset()
	nx.delim = 0

	if err := nx.spaces(); err != nil {
		return "", err
	}
	r1, _, err := nx.r.ReadRune()
	if err != nil {
		return "", err
	}

	switch {
	case isNexusPunct(r1):
		nx.delim = r1
		return "", nil
	case r1 == '\'' || r1 == '"':
		s, err := readBlock(nx.r, r1)
		if err != nil {
			return "", err
		}
		nx.tok.WriteString(s)
	default:
		nx.tok.WriteRune(r1)
		for {
			r1, _, err := nx.r.ReadRune()
			if errors.Is(err, io.EOF) {
				return nx.tok.String(), nil
			}
			if err != nil {
				return "", err
			}
			if isNexusPunct(r1) {
				nx.delim = r1
				return nx.tok.String(), nil
			}
			if unicode.IsSpace(r1) || r1 == '[' {
				nx.r.UnreadRune()
				break
			}
			nx.tok.WriteRune(r1)
		}
	}

	nx.delim = ' '
	if err := nx.spaces(); err != nil {
		if errors.Is(err, io.EOF) {
			return nx.tok.String(), nil
		}
		return "", err
	}
	r1, _, err = nx.r.ReadRune()
	if err != nil {
		return "", err
	}
	if isNexusPunct(r1) {
		nx.delim = r1
	} else {
		nx.r.UnreadRune()
	}
	return nx.tok.String(), nil
}

// Spaces skips spaces and comments.
func (nx *nexusReader) spaces() error {
	for {
		r1, _, err := nx.r.ReadRune()
		if err != nil {
			return err
		}
		if r1 == '[' {
			if _, err := readComment(nx.r); err != nil {
				return err
			}
			continue
		}
		if !unicode.IsSpace(r1) {
			nx.r.UnreadRune()
			return nil
		}
	}
}

func isNexusPunct(r rune) bool {
	switch r {
	case ';', ',', '=':
		return true
	}
	return false
}
