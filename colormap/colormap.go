// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package colormap implements color maps
// that associate keys
// (amino acids, taxon names)
// with CSS colors.
package colormap

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Unknown is the key used for elements without a known value.
// It is always defined in a color map read from a file.
const Unknown = "_"

// ErrColor is returned when a color is not a valid color name
// or hexadecimal color.
var ErrColor = errors.New("invalid color")

// Type is the type of an entry in a color map.
type Type int

// Valid entry types.
const (
	Regular Type = iota
	LegendOnly
	Title
	Total
	Ingroup
	Outgroup
	UnknownLabel
)

var typeNames = []string{
	Regular:      "regular",
	LegendOnly:   "legendonly",
	Title:        "title",
	Total:        "total",
	Ingroup:      "ingroup",
	Outgroup:     "outgroup",
	UnknownLabel: "unknown",
}

// ParseType returns the type
// with the given name.
// An unknown name is read as Regular.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == s {
			return Type(i)
		}
	}
	return Regular
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// An Entry is an entry in a color map.
type Entry struct {
	Key   string
	Color string
	Type  Type
	Rank  int
}

// A Map is a color map.
// The order in which the keys are defined is preserved.
type Map struct {
	keys    []string
	entries map[string]Entry
}

// New returns a new empty color map.
func New() *Map {
	return &Map{
		entries: make(map[string]Entry),
	}
}

// Read reads a color map from a tab-delimited file
// without header.
// Each row contains the following columns:
//
//   - key, the name of the element
//   - color, a CSS color name
//     (e.g. "DarkGreen")
//     or an hexadecimal color
//     (e.g. "#006400")
//   - type, an optional entry type.
//     Valid types are regular
//     (the default),
//     legendonly, title, total, ingroup, outgroup,
//     and unknown.
//   - rank, an optional integer,
//     used to indent the entry in a legend.
//
// Lines starting with '#' are ignored.
// After the file is read,
// the Unknown key will be set to Black.
func Read(r io.Reader) (*Map, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'
	tab.FieldsPerRecord = -1

	m := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("on row %d: expecting key and color", ln)
		}

		key := strings.TrimSpace(row[0])
		if key == "" {
			continue
		}
		e := Entry{
			Key:   key,
			Color: strings.TrimSpace(row[1]),
		}
		if _, err := RGB(e.Color); err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %w", ln, "color", err)
		}
		if len(row) > 2 {
			e.Type = ParseType(row[2])
		}
		if len(row) > 3 {
			rank, err := strconv.Atoi(strings.TrimSpace(row[3]))
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, "rank", err)
			}
			e.Rank = rank
		}
		m.Set(e)
	}

	m.Set(Entry{Key: Unknown, Color: "Black"})
	return m, nil
}

// Set adds or replaces an entry of the color map.
// A replaced entry keeps its original position.
func (m *Map) Set(e Entry) {
	if _, ok := m.entries[e.Key]; !ok {
		m.keys = append(m.keys, e.Key)
	}
	m.entries[e.Key] = e
}

// ByType returns the key of the entry
// with the given type.
// If more than one entry has the same type,
// the last one is returned.
func (m *Map) ByType(t Type) string {
	var key string
	for _, k := range m.keys {
		if m.entries[k].Type == t {
			key = k
		}
	}
	return key
}

// Color returns the color of a key.
// If the key is not in the color map,
// it returns "Black".
func (m *Map) Color(key string) string {
	e, ok := m.entries[key]
	if !ok {
		return "Black"
	}
	return e.Color
}

// Entry returns the entry of a key.
func (m *Map) Entry(key string) (Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Keys returns the keys of the color map
// in the order in which they were defined.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of entries in the color map.
func (m *Map) Len() int {
	return len(m.keys)
}

// RGB returns the RGB values of a color
// given as a CSS color name,
// or as an hexadecimal value.
func RGB(c string) (color.RGBA, error) {
	c = strings.TrimSpace(c)
	if v, ok := colornames.Map[strings.ToLower(c)]; ok {
		return v, nil
	}
	if !strings.HasPrefix(c, "#") || len(c) != 7 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrColor, c)
	}
	v, err := strconv.ParseUint(c[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrColor, c)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

//go:embed aminoacids.tab
var aminoAcids string

// AminoAcids returns the default color map
// for amino acids.
func AminoAcids() *Map {
	m, err := Read(strings.NewReader(aminoAcids))
	if err != nil {
		panic(fmt.Sprintf("colormap: invalid amino acid map: %v", err))
	}
	return m
}
