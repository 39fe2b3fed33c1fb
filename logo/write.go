// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package logo

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Write writes a set of logo matrices
// as a tab-delimited file.
// Each row is a column of a logo,
// with the number of each residue.
func Write(w io.Writer, ms []*Matrix) error {
	bw := bufio.NewWriter(w)
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	head := []string{"clade", "index", "sequences", "column", "position", "highlight", "information"}
	for _, r := range Residues {
		head = append(head, string(r))
	}
	if err := tab.Write(head); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for i, m := range ms {
		for _, c := range m.Columns {
			row := []string{
				m.Name,
				strconv.Itoa(i + 1),
				strconv.Itoa(m.Seqs),
				strconv.Itoa(c.Col),
				strconv.Itoa(c.Pos),
				c.Highlight,
				strconv.FormatFloat(c.Info, 'f', 6, 64),
			}
			for _, v := range c.Counts {
				row = append(row, strconv.Itoa(int(v)))
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("while writing data: %v", err)
			}
		}
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
