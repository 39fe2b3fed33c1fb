// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cladetree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	// Newick errors
	ErrNotNewick  = fmt.Errorf("not a newick tree file")
	ErrUnexpBrLen = fmt.Errorf("unexpected branch length")
)

// Newick reads one or more trees in newick (parenthetical) format.
//
// Labels of internal nodes
// (for example support values such as "80.3/0.97/95")
// and branch lengths are preserved.
// Quotes of quoted labels are removed,
// and underscores in terminal names are kept.
// If an internal node is unlabeled,
// the support value of its annotations
// (as in "[&label=95]" or "[&support=80.3/0.97/95]")
// is used as the label.
// Negative branch lengths,
// as found in neighbor-joining trees,
// are accepted.
//
// Name sets the name of the first tree,
// any other tree name will be
// in the form <name>.<number>
// starting from 1.
func Newick(r io.Reader, name string) (*Collection, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrTreeNoName
	}
	c := NewCollection()

	bw := bufio.NewReader(r)

	for i := 0; ; i++ {
		nm := name
		if i > 0 {
			nm = fmt.Sprintf("%s.%d", name, i)
		}
		t, err := newick(bw, nm)
		if err != nil {
			return nil, err
		}
		if t == nil {
			if i > 0 {
				break
			}
			return nil, ErrNotNewick
		}
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newick(r *bufio.Reader, name string) (*Tree, error) {
	// search for the first parenthesis of the tree.
	for {
		r1, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if r1 == '[' {
			if _, err := readComment(r); err != nil {
				return nil, err
			}
			continue
		}
		if r1 == '(' {
			break
		}
	}

	t := &Tree{
		name:  name,
		nodes: make(map[int]*node),
		taxa:  make(map[string]*node),
	}

	last := ""
	root, err := t.readNewick(r, nil, &last)
	if err != nil {
		return nil, err
	}
	t.root = root
	t.sortNodes()

	return t, nil
}

func (t *Tree) readNewick(r *bufio.Reader, parent *node, last *string) (*node, error) {
	n := &node{
		id:     len(t.nodes),
		parent: parent,
	}
	t.nodes[n.id] = n

	for {
		r1, _, err := r.ReadRune()
		if err != nil {
			return nil, fmt.Errorf("%v: last read terminal: %s", err, *last)
		}
		if r1 == ':' {
			return nil, fmt.Errorf("%w: last read terminal: %s", ErrUnexpBrLen, *last)
		}
		if unicode.IsSpace(r1) || r1 == ',' {
			continue
		}
		if r1 == '[' {
			if _, err := readComment(r); err != nil {
				return nil, fmt.Errorf("%v: last read terminal: %s", err, *last)
			}
			continue
		}
		if r1 == '(' {
			// an internal node
			child, err := t.readNewick(r, n, last)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			continue
		}
		if r1 == ')' {
			break
		}
		if r1 == ';' {
			r.UnreadRune()
			break
		}

		// a terminal
		r.UnreadRune()
		term, bl, err := readTerm(r)
		if err != nil {
			if term != "" {
				*last = term
			}
			return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
		}
		if _, dup := t.taxa[term]; dup {
			return nil, fmt.Errorf("%w: %s", ErrAddRepeated, term)
		}
		child := &node{
			id:     len(t.nodes),
			parent: n,
			label:  term,
			brLen:  bl,
		}
		t.nodes[child.id] = child
		n.children = append(n.children, child)
		t.taxa[term] = child
		*last = term
	}

	if len(n.children) < 2 {
		return nil, fmt.Errorf("%w: last read terminal: %s", ErrValSingleChild, *last)
	}

	// annotations can be found before or after
	// the label and the branch length.
	meta, err := readMeta(r, "")
	if err != nil {
		return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
	}
	label, err := readLabel(r)
	if err != nil {
		return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
	}
	if meta, err = readMeta(r, meta); err != nil {
		return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
	}
	bl, err := readBrLen(r)
	if err != nil {
		return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
	}
	if meta, err = readMeta(r, meta); err != nil {
		return nil, fmt.Errorf("%w: last read terminal: %s", err, *last)
	}

	if label == "" {
		label = meta
	}
	n.label = label
	n.brLen = bl

	return n, nil
}

// ReadComment reads a comment
// up to the closing bracket.
// The opening bracket should be already read.
func readComment(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		r1, _, err := r.ReadRune()
		if err != nil {
			return "", err
		}
		if r1 == ']' {
			return b.String(), nil
		}
		b.WriteRune(r1)
	}
}

// SupportKeys are the annotation keys
// that store the support of a node,
// in order of preference.
var supportKeys = []string{"label", "support", "ufboot", "bootstrap"}

// ReadMeta reads the comments that follow a node,
// and returns the support value stored in an annotation
// (e.g. "[&label=95]" as saved by FigTree).
// If sup is not empty,
// it is returned as the support value.
func readMeta(r *bufio.Reader, sup string) (string, error) {
	for {
		r1, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return sup, nil
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 != '[' {
			r.UnreadRune()
			return sup, nil
		}

		c, err := readComment(r)
		if err != nil {
			return "", err
		}
		if sup == "" {
			sup = metaSupport(c)
		}
	}
}

// MetaSupport returns the support value
// of an annotation comment.
func metaSupport(c string) string {
	c = strings.TrimSpace(c)
	if !strings.HasPrefix(c, "&") {
		return ""
	}
	fields := splitMeta(c[1:])
	for _, k := range supportKeys {
		for _, f := range fields {
			key, v, ok := strings.Cut(f, "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), k) {
				continue
			}
			v = strings.Trim(strings.TrimSpace(v), "\"'")
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// SplitMeta splits the fields of an annotation.
// Commas inside braces or quotes
// do not split a field.
func splitMeta(s string) []string {
	var fields []string
	var quote rune
	depth, start := 0, 0
	for i, r1 := range s {
		switch {
		case quote != 0:
			if r1 == quote {
				quote = 0
			}
		case r1 == '"' || r1 == '\'':
			quote = r1
		case r1 == '{':
			depth++
		case r1 == '}':
			depth--
		case r1 == ',' && depth == 0:
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	return append(fields, s[start:])
}

// ReadBlock reads a string
// inside a quoted block.
// A doubled delimiter is read as a single delimiter.
func readBlock(r *bufio.Reader, delim rune) (string, error) {
	var b strings.Builder
	for {
		r1, _, err := r.ReadRune()
		if err != nil {
			return "", err
		}
		if r1 == delim {
			nx, _, err := r.ReadRune()
			if err != nil {
				break
			}
			if nx == delim {
				b.WriteRune(delim)
				continue
			}
			r.UnreadRune()
			break
		}
		b.WriteRune(r1)
	}
	return b.String(), nil
}

// ReadBrLen reads the length of the branch
// connecting the node with its ancestor.
func readBrLen(r *bufio.Reader) (float64, error) {
	for {
		r1, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		if r1 == ':' {
			break
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 == '[' {
			if _, err := readComment(r); err != nil {
				return 0, err
			}
			continue
		}
		r.UnreadRune()
		return 0, nil
	}

	var b strings.Builder
	for {
		r1, _, err := r.ReadRune()
		if err != nil {
			break
		}
		if unicode.IsSpace(r1) {
			if b.Len() == 0 {
				continue
			}
			break
		}
		if isNewickDelim(r1) {
			r.UnreadRune()
			break
		}
		b.WriteRune(r1)
	}
	s := b.String()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid value %q", ErrAddInvalidBrLen, s)
	}
	return v, nil
}

// ReadLabel reads the label of an internal node.
func readLabel(r *bufio.Reader) (string, error) {
	for {
		r1, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 == '\'' || r1 == '"' {
			s, err := readBlock(r, r1)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(s), nil
		}
		r.UnreadRune()
		if isNewickDelim(r1) {
			return "", nil
		}
		break
	}
	return readName(r)
}

// ReadName reads an unquoted label.
func readName(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		r1, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r1) {
			break
		}
		if isNewickDelim(r1) {
			r.UnreadRune()
			break
		}
		if r1 == '\'' {
			// stray quotes are removed
			continue
		}
		b.WriteRune(r1)
	}
	return b.String(), nil
}

// ReadTerm reads a terminal name
// and its branch length
func readTerm(r *bufio.Reader) (string, float64, error) {
	r1, _, _ := r.ReadRune()

	var name string
	var err error
	if r1 == '\'' || r1 == '"' {
		name, err = readBlock(r, r1)
	} else {
		r.UnreadRune()
		name, err = readName(r)
	}
	if err != nil {
		return "", 0, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, ErrValUnnamedTerm
	}

	bl, err := readBrLen(r)
	if err != nil {
		return name, 0, err
	}
	return name, bl, nil
}

func isNewickDelim(r rune) bool {
	switch r {
	case '(', ')', ':', ',', ';', '[':
		return true
	}
	return false
}

// Newick writes a tree in newick format,
// including the labels of all nodes
// and all branch lengths.
func (t *Tree) Newick(w io.Writer) error {
	bw := bufio.NewWriter(w)
	t.root.newick(bw, true)
	fmt.Fprintf(bw, ";\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing tree %q: %v", t.name, err)
	}
	return nil
}

// NewickString returns a tree
// as a single line newick string.
func (t *Tree) NewickString() string {
	var b strings.Builder
	t.root.newick(&b, true)
	b.WriteString(";")
	return b.String()
}

func (n *node) newick(w io.Writer, isRoot bool) {
	if !n.isTerm() {
		fmt.Fprintf(w, "(")
		for i, c := range n.children {
			if i > 0 {
				fmt.Fprintf(w, ",")
			}
			c.newick(w, false)
		}
		fmt.Fprintf(w, ")")
	}
	fmt.Fprintf(w, "%s", quoteLabel(n.label))
	if isRoot {
		return
	}
	fmt.Fprintf(w, ":%s", strconv.FormatFloat(n.brLen, 'g', 6, 64))
}

func quoteLabel(label string) string {
	if !strings.ContainsAny(label, " \t\n()[]:;,'\"") {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}
