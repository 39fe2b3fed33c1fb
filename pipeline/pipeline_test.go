// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/cladetree/pipeline"
)

var files = map[string]string{
	"rho.phy.treefile": "((((A1:1,A2:1)90:1,(B1:1,B2:1)95:1)80:1,(C1:1,(C2:1,C3:1)88:1):1)70:1,(O1:1,'O2':1)100:1);\n",
	"rho.phy": `9 6
A1 MKVLGT
A2 MKVLGT
B1 MRVLGT
B2 MRVLGT
C1 MEVLGT
C2 MEVLGT
C3 MEVLGT
O1 MQVLGT
O2 MQVLGT
`,
	"clades.tab": `# clades
A1	CladeA	Red	Pink
B2	CladeB	Blue	LightBlue
Z9	CladeZ	Red	Pink
C1	CladeC	Green	LightGreen
O1	Outgroup	Black	White
`,
	"ref.conf": `# reference
seqfile	ref.fasta
aapos	2
tolowerlimit	1
toupperlimit	2
interestingaapositions	1	3
aatohighlight	2
highlightcolors	Yellow
`,
	"ref.fasta": ">A1 reference\nMKVLGT\n",
	"taxa.tab": `Taxa	Black	title
Mammalia	Blue
Aves	Red
`,
	"lineage.tab": `A1	Mammalia
B1	Aves
`,
}

func writeFiles(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatalf("while writing %q: %v", name, err)
		}
	}
	return dir
}

func TestPrefix(t *testing.T) {
	got := pipeline.Prefix("data/rho.phy.treefile", "conf/clades.tab")
	if want := "data/rho.phy.treefile.clades"; got != want {
		t.Errorf("prefix: got %q, want %q", got, want)
	}
}

func TestRun(t *testing.T) {
	dir := writeFiles(t)

	var warn bytes.Buffer
	r, err := pipeline.Run(pipeline.Options{
		Tree:      filepath.Join(dir, "rho.phy.treefile"),
		Clades:    filepath.Join(dir, "clades.tab"),
		RefConfig: filepath.Join(dir, "ref.conf"),
		Taxa:      filepath.Join(dir, "taxa.tab"),
		Lineage:   filepath.Join(dir, "lineage.tab"),
		Logos:     true,
		Warn:      &warn,
	})
	if err != nil {
		t.Fatalf("run: unexpected error: %v", err)
	}
	if !strings.Contains(warn.String(), "CladeZ") {
		t.Errorf("warnings: got %q, expecting missing clade %q", warn.String(), "CladeZ")
	}

	var sorted []string
	for _, c := range r.Sorted {
		sorted = append(sorted, c.Name)
	}
	if want := []string{"CladeA", "CladeB", "CladeC", "Outgroup"}; !reflect.DeepEqual(sorted, want) {
		t.Errorf("sorted clades: got %v, want %v", sorted, want)
	}

	wantAA := map[string]string{
		"A1": "K", "A2": "K",
		"B1": "R", "B2": "R",
		"C1": "E", "C2": "E", "C3": "E",
		"O1": "Q", "O2": "Q",
	}
	if !reflect.DeepEqual(r.SpecialAA, wantAA) {
		t.Errorf("special amino acids: got %v, want %v", r.SpecialAA, wantAA)
	}

	prefix := pipeline.Prefix(filepath.Join(dir, "rho.phy.treefile"), "clades.tab")
	names, err := r.WriteFiles(prefix)
	if err != nil {
		t.Fatalf("write files: %v", err)
	}
	suffixes := []string{
		pipeline.FullTreeTab,
		pipeline.FullTreeNwk,
		pipeline.CollapsedTab,
		pipeline.LegendTab,
		pipeline.CladeTrees,
		pipeline.SortedFasta,
		pipeline.LogoTab,
		pipeline.LogoSingleTab,
	}
	if len(names) != len(suffixes) {
		t.Errorf("output files: got %v, want %d files", names, len(suffixes))
	}

	out := make(map[string]string)
	for _, s := range suffixes {
		b, err := os.ReadFile(prefix + s)
		if err != nil {
			t.Errorf("output %q: %v", s, err)
			continue
		}
		out[s] = string(b)
	}

	nwk := "((((A1:1,A2:1)90:1,(B1:1,B2:1)95:1)80:1,(C1:1,(C2:1,C3:1)88:1)88/*:1)70:1,(O2:1,O1:1)70:1);\n"
	if got := out[pipeline.FullTreeNwk]; got != nwk {
		t.Errorf("newick: got %q, want %q", got, nwk)
	}

	full := []string{
		"node\tparent\tlength\tlabel\tfg\tbg\tlabelcolor\tsupports\taminoacid\taacolor\ttaxon\ttaxoncolor\tclade\r\n",
		"4\t3\t1\tA1\tRed\tPink\t\t\tK\tBlue\tMammalia\tBlue\t\r\n",
		"5\t3\t1\tA2\tRed\tPink\t\t\tK\tBlue\tUnidentified\tBlack\tCladeA\r\n",
		"6\t2\t1\t95\tBlue\tLightBlue\tGray\tUFBoot:95:Black\t\t\t\t\t\r\n",
	}
	for _, ln := range full {
		if !strings.Contains(out[pipeline.FullTreeTab], ln) {
			t.Errorf("full tree: line %q not found", ln)
		}
	}

	coll := []string{
		"3\t2\t1\t90\tGray\tCladeA\t2\tRed\tPink\tK:2:100.00:Blue\tMammalia:1:50.00:Blue;_:1:50.00:Black\r\n",
		"9\t1\t1\t88/*\tGray\tCladeC\t3\tGreen\tLightGreen\tE:3:100.00:Red\t_:3:100.00:Black\r\n",
	}
	for _, ln := range coll {
		if !strings.Contains(out[pipeline.CollapsedTab], ln) {
			t.Errorf("collapsed tree: line %q not found", ln)
		}
	}
	if strings.Contains(out[pipeline.CollapsedTab], "\tA1\t") {
		t.Errorf("collapsed tree: terminal %q of a collapsed clade found", "A1")
	}

	legend := []string{
		"Taxa\ttotal\tingroup\toutgroup\tcolor\r\n",
		"Mammalia\t1\t1\t0\tBlue\r\n",
		"Aves\t1\t1\t0\tRed\r\n",
		"_\t7\t5\t2\tBlack\r\n",
		"total\t9\t7\t2\t\r\n",
	}
	for _, ln := range legend {
		if !strings.Contains(out[pipeline.LegendTab], ln) {
			t.Errorf("legend: line %q not found", ln)
		}
	}

	cladeTrees := "(A1:1,A2:1)CladeA;\n(B1:1,B2:1)CladeB;\n(C1:1,(C2:1,C3:1)88:1)CladeC;\n(O2:1,O1:1)Outgroup;\n"
	if got := out[pipeline.CladeTrees]; got != cladeTrees {
		t.Errorf("clade trees: got %q, want %q", got, cladeTrees)
	}

	if !strings.HasPrefix(out[pipeline.SortedFasta], ">A1\nMKVLGT\n>A2\nMKVLGT\n>B1\n") {
		t.Errorf("sorted alignment: got %q", out[pipeline.SortedFasta])
	}
	if !strings.HasSuffix(out[pipeline.SortedFasta], ">O2\nMQVLGT\n>O1\nMQVLGT\n") {
		t.Errorf("sorted alignment: got %q", out[pipeline.SortedFasta])
	}

	if n := strings.Count(out[pipeline.LogoTab], "\n"); n != 13 {
		t.Errorf("logo: got %d lines, want %d", n, 13)
	}
	if !strings.Contains(out[pipeline.LogoTab], "CladeA\t1\t2\t1\t2\tYellow\t4.321928\t") {
		t.Errorf("logo: highlighted column not found")
	}
	if n := strings.Count(out[pipeline.LogoSingleTab], "\n"); n != 9 {
		t.Errorf("single logo: got %d lines, want %d", n, 9)
	}
	if !strings.Contains(out[pipeline.LogoSingleTab], "Outgroup\t4\t2\t2\t3\t\t4.321928\t") {
		t.Errorf("single logo: outgroup column not found")
	}
}

func TestRunCladeTrees(t *testing.T) {
	dir := writeFiles(t)

	// the type sequence of CladeC is not in the tree
	tree := "((((A1:1,A2:1)90:1,(B1:1,B2:1)95:1)80:1,(C4:1,(C2:1,C3:1)88:1):1)70:1,(O1:1,O2:1)100:1);\n"
	cladeTrees := "(C4:1,(C2:1,C3:1)88:1)CladeC;\n"
	alnFile := filepath.Join(dir, "rho.phy")
	treeFile := filepath.Join(dir, "sub.tree")
	ctFile := filepath.Join(dir, "rho.phy.treefile.clades.cladeTrees")
	if err := os.WriteFile(treeFile, []byte(tree), 0644); err != nil {
		t.Fatalf("write tree: %v", err)
	}
	if err := os.WriteFile(ctFile, []byte(cladeTrees), 0644); err != nil {
		t.Fatalf("write clade trees: %v", err)
	}

	var warn bytes.Buffer
	r, err := pipeline.Run(pipeline.Options{
		Tree:       treeFile,
		Clades:     filepath.Join(dir, "clades.tab"),
		CladeTrees: ctFile,
		Warn:       &warn,
	})
	if err != nil {
		t.Fatalf("run: unexpected error: %v", err)
	}
	if r.Full {
		t.Errorf("clade trees: result marked as full tree")
	}
	if r.Aln == nil {
		t.Errorf("alignment %q: not read", alnFile)
	}

	var names []string
	for _, c := range r.Clades {
		names = append(names, c.Name+":"+c.Leaf)
	}
	want := []string{"CladeA:A1", "CladeB:B2", "CladeC:C2", "Outgroup:O1"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("clades: got %v, want %v", names, want)
	}

	prefix := pipeline.Prefix(treeFile, "clades.tab")
	outs, err := r.WriteFiles(prefix)
	if err != nil {
		t.Fatalf("write files: %v", err)
	}
	for _, o := range outs {
		if strings.HasSuffix(o, pipeline.CladeTrees) || strings.HasSuffix(o, pipeline.SortedFasta) {
			t.Errorf("clade trees: unexpected output %q", o)
		}
	}
}

func TestRunNoAlignment(t *testing.T) {
	dir := writeFiles(t)

	var warn bytes.Buffer
	r, err := pipeline.Run(pipeline.Options{
		Tree:        filepath.Join(dir, "rho.phy.treefile"),
		Clades:      filepath.Join(dir, "clades.tab"),
		NoAlignment: true,
		Warn:        &warn,
	})
	if err != nil {
		t.Fatalf("run: unexpected error: %v", err)
	}
	if r.Aln != nil {
		t.Errorf("alignment: got %d sequences, want none", len(r.Aln.Names()))
	}
	if strings.Contains(warn.String(), "alignment") {
		t.Errorf("unexpected warning: %q", warn.String())
	}
	if len(r.Sorted) != 4 {
		t.Errorf("sorted clades: got %d, want %d", len(r.Sorted), 4)
	}
}
