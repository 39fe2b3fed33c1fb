// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package taxa

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/js-arias/cladetree"
	"github.com/js-arias/cladetree/clade"
	"github.com/js-arias/cladetree/colormap"
)

// A Row is a row of a legend.
type Row struct {
	Key   string
	Label string
	Color string
	Type  colormap.Type

	// Number of terminals in the whole tree,
	// the ingroup,
	// and the outgroup.
	// They are -1 in legend only rows.
	All int
	In  int
	Out int
}

// A Legend is a table with the number of terminals
// assigned to each taxon of interest.
type Legend struct {
	Title    string
	Total    string
	Ingroup  string
	Outgroup string

	Rows []Row

	All int
	In  int
	Out int
}

// NewLegend builds the legend of a tree
// with the terminals assigned to the taxa of interest
// of a color map.
// The in and out nodes are the roots of the ingroup
// and the outgroup.
func NewLegend(t *cladetree.Tree, cm *colormap.Map, assign map[string]string, in, out int) *Legend {
	all, _, _ := clade.CountAttr(t, t.Root(), assign)
	inCount := make(map[string]int)
	if in >= 0 {
		inCount, _, _ = clade.CountAttr(t, in, assign)
	}
	outCount := make(map[string]int)
	if out >= 0 {
		outCount, _, _ = clade.CountAttr(t, out, assign)
	}

	l := &Legend{
		Title:    cm.ByType(colormap.Title),
		Total:    cm.ByType(colormap.Total),
		Ingroup:  cm.ByType(colormap.Ingroup),
		Outgroup: cm.ByType(colormap.Outgroup),
	}
	unknown := cm.ByType(colormap.UnknownLabel)

	for _, k := range cm.Keys() {
		e, _ := cm.Entry(k)
		if e.Type != colormap.Regular && e.Type != colormap.LegendOnly {
			continue
		}

		label := k
		if k == colormap.Unknown && unknown != "" {
			label = unknown
		}
		if e.Rank > 0 {
			label = strings.Repeat(".", e.Rank*2) + label
		}

		r := Row{
			Key:   k,
			Label: label,
			Color: e.Color,
			Type:  e.Type,
			All:   -1,
			In:    -1,
			Out:   -1,
		}
		if e.Type == colormap.Regular {
			r.All = all[k]
			r.In = inCount[k]
			r.Out = outCount[k]
			l.All += r.All
			l.In += r.In
			l.Out += r.Out
		}
		l.Rows = append(l.Rows, r)
	}
	return l
}

// Write writes a legend as a tab-delimited file.
func (l *Legend) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	head := []string{
		orDefault(l.Title, "taxon"),
		orDefault(l.Total, "total"),
		orDefault(l.Ingroup, "ingroup"),
		orDefault(l.Outgroup, "outgroup"),
		"color",
	}
	if err := tab.Write(head); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for _, r := range l.Rows {
		row := []string{
			r.Label,
			count(r.All),
			count(r.In),
			count(r.Out),
			r.Color,
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}
	row := []string{
		orDefault(l.Total, "total"),
		strconv.Itoa(l.All),
		strconv.Itoa(l.In),
		strconv.Itoa(l.Out),
		"",
	}
	if err := tab.Write(row); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

func count(n int) string {
	if n < 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
