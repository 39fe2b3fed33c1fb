// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package logo_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/logo"
	"github.com/js-arias/cladetree/msa"
	"github.com/js-arias/cladetree/refseq"
)

func TestWindow(t *testing.T) {
	tests := map[string]struct {
		special, lower, upper, length int
		want                          []int
	}{
		"inside":         {5, 2, 3, 20, []int{3, 4, 5, 6, 7}},
		"lower clamp":    {1, 3, 2, 20, []int{0, 1, 2}},
		"upper clamp":    {8, 1, 5, 10, []int{7, 8}},
		"no limits":      {5, -1, -1, 10, nil},
		"unmapped":       {-1, 2, 2, 10, nil},
		"only lower":     {4, 2, 0, 10, []int{2, 3}},
		"outside column": {12, 2, 2, 10, nil},
	}
	for name, test := range tests {
		got := logo.Window(test.special, test.lower, test.upper, test.length)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", name, got, test.want)
		}
	}
}

func TestNew(t *testing.T) {
	seqs := [][]byte{
		[]byte("AAC-"),
		[]byte("ACC-"),
		[]byte("AGCX"),
		[]byte("ATc-"),
	}
	m, err := logo.New("test", seqs, []int{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("new: unexpected error: %v", err)
	}
	if m.Seqs != 4 {
		t.Errorf("sequences: got %d, want %d", m.Seqs, 4)
	}

	a := strings.IndexByte(logo.Residues, 'A')
	c := strings.IndexByte(logo.Residues, 'C')
	info := []float64{logo.MaxInfo, logo.MaxInfo - 2, logo.MaxInfo, 0}
	for i, col := range m.Columns {
		if math.Abs(col.Info-info[i]) > 1e-9 {
			t.Errorf("column %d: information %.6f, want %.6f", i, col.Info, info[i])
		}
	}
	if m.Columns[0].Counts[a] != 4 {
		t.Errorf("column 0: count of A: got %.0f, want 4", m.Columns[0].Counts[a])
	}
	if m.Columns[1].Prob[c] != 0.25 {
		t.Errorf("column 1: probability of C: got %.3f, want 0.25", m.Columns[1].Prob[c])
	}
	if m.Columns[2].Counts[c] != 4 {
		t.Errorf("column 2: count of C: got %.0f, want 4", m.Columns[2].Counts[c])
	}
	h := m.Columns[0].Height()
	if math.Abs(h[a]-logo.MaxInfo) > 1e-9 {
		t.Errorf("column 0: height of A: got %.6f, want %.6f", h[a], logo.MaxInfo)
	}

	if _, err := logo.New("empty", nil, []int{0}); !errors.Is(err, logo.ErrNoSeqs) {
		t.Errorf("empty logo: got error %v, want %v", err, logo.ErrNoSeqs)
	}
}

func TestClades(t *testing.T) {
	c, err := cladetree.Newick(strings.NewReader("(((A1:1,A2:1):1,(B1:1,B2:1):1):1,(C1:1,C2:1):1);"), "logo")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	tr := c.Tree("logo")

	aln := msa.New()
	rows := map[string]string{
		"A1": "MKV",
		"A2": "MRV",
		"B1": "MKL",
		"B2": "MKL",
	}
	for _, nm := range []string{"A1", "A2", "B1", "B2"} {
		if err := aln.Add(nm, []byte(rows[nm])); err != nil {
			t.Fatalf("alignment: %v", err)
		}
	}

	mrca := func(names ...string) int {
		return tr.MRCA(names...)
	}
	cs := []clade.Clade{
		{Name: "CladeA", Leaf: "A1", Root: mrca("A1", "A2")},
		{Name: "CladeB", Leaf: "B1", Root: mrca("B1", "B2")},
		{Name: "CladeC", Leaf: "C1", Root: mrca("C1", "C2")},
	}
	ms, errs := logo.Clades(tr, cs, aln, []int{1, 2})
	if len(ms) != 2 {
		t.Fatalf("matrices: got %d, want %d", len(ms), 2)
	}
	if len(errs) != 1 || !errors.Is(errs[0], logo.ErrNoSeqs) {
		t.Errorf("errors: got %v, want %v", errs, logo.ErrNoSeqs)
	}
	if ms[0].Name != "CladeA" || ms[1].Name != "CladeB" {
		t.Errorf("matrices: got %q %q, want %q %q", ms[0].Name, ms[1].Name, "CladeA", "CladeB")
	}
	if got := ms[0].Columns[0].Info; math.Abs(got-(logo.MaxInfo-1)) > 1e-9 {
		t.Errorf("CladeA column 1: information %.6f, want %.6f", got, logo.MaxInfo-1)
	}

	var buf bytes.Buffer
	if err := logo.Write(&buf, ms); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 5 {
		t.Errorf("logo file: got %d lines, want %d", len(lines), 5)
	}
	if !strings.HasPrefix(lines[0], "clade\tindex\tsequences\tcolumn\tposition\thighlight\tinformation\tA\tC") {
		t.Errorf("logo file: header %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "CladeB\t2\t2\t1\t-1\t\t4.321928\t") {
		t.Errorf("logo file: row %q", lines[3])
	}
}

func TestReference(t *testing.T) {
	aln := msa.New()
	if err := aln.Add("Homo_sapiens_RHO", []byte("MN-GTEGPNFY")); err != nil {
		t.Fatalf("alignment: %v", err)
	}
	cfg := refseq.Config{
		Pos:         5,
		Lower:       2,
		Upper:       3,
		Interesting: []int{1, 30, 6},
		Highlight:   []int{3, 5, 6},
		Colors:      []string{"Red", "Blue"},
	}
	ref, err := refseq.FromSeq(cfg, "Homo", []byte("MNGTEGPNFY"), aln)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}

	cols := logo.RefWindow(ref, aln.Len())
	if want := []int{3, 4, 5, 6, 7}; !reflect.DeepEqual(cols, want) {
		t.Errorf("window: got %v, want %v", cols, want)
	}
	if got, want := logo.Single(ref), []int{0, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("single: got %v, want %v", got, want)
	}

	m, err := logo.New("ref", [][]byte{aln.Seq("Homo_sapiens_RHO")}, cols)
	if err != nil {
		t.Fatalf("logo: %v", err)
	}
	m.SetPositions(ref.Position)
	logo.SetHighlights(m, ref)

	var pos []int
	var hl []string
	for _, c := range m.Columns {
		pos = append(pos, c.Pos)
		hl = append(hl, c.Highlight)
	}
	if want := []int{3, 4, 5, 6, 7}; !reflect.DeepEqual(pos, want) {
		t.Errorf("positions: got %v, want %v", pos, want)
	}
	if want := []string{"Red", "", "Blue", "Blue", ""}; !reflect.DeepEqual(hl, want) {
		t.Errorf("highlights: got %v, want %v", hl, want)
	}
}
