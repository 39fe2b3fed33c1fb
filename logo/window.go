// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package logo

import "github.com/js-arias/cladetree/refseq"

// Window returns the alignment columns
// of a logo around a special column.
// The window starts lower columns before the special column,
// and ends before upper columns after it,
// and it is clamped to the alignment
// (the last column of the alignment is never included).
// Negative limits are read as 0.
func Window(special, lower, upper, length int) []int {
	if special < 0 || special >= length {
		return nil
	}
	if lower < 0 {
		lower = 0
	}
	if upper < 0 {
		upper = 0
	}

	lo := special - lower
	if lo < 0 {
		lo = 0
	}
	hi := special + upper
	if hi >= length {
		hi = length - 1
	}

	var cols []int
	for c := lo; c < hi; c++ {
		cols = append(cols, c)
	}
	return cols
}

// RefWindow returns the logo window
// of a reference sequence.
func RefWindow(ref *refseq.Reference, length int) []int {
	return Window(ref.Special, ref.Lower, ref.Upper, length)
}

// Single returns the alignment columns
// of the interesting positions of a reference,
// ignoring positions that are not in the alignment.
func Single(ref *refseq.Reference) []int {
	var cols []int
	for _, c := range ref.Interesting {
		if c < 0 {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// SetHighlights sets the highlighted columns
// of a window logo.
// Highlighted positions are reference positions,
// counted from the first position of the window.
func SetHighlights(m *Matrix, ref *refseq.Reference) {
	lower := ref.Lower
	if lower < 0 {
		lower = 0
	}
	first := ref.Pos - lower
	for i, p := range ref.Config.Highlight {
		m.Highlight(p-first, ref.HighlightColor(i))
	}
}
