// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package support parses the support values
// stored as labels of internal nodes
// and classifies them using fixed thresholds.
//
// A support label is either a single ultrafast bootstrap value
// (e.g. "98"),
// or a composite label with SH-aLRT, aBayes and ultrafast bootstrap values
// separated by slashes
// (e.g. "80.3/0.97/95"),
// as produced by IQ-TREE.
package support

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a label
// can not be parsed as a support value.
var ErrInvalid = errors.New("invalid support label")

// Kind is the kind of a support value.
type Kind int

// Valid support kinds.
const (
	SHaLRT Kind = iota
	ABayes
	UFBoot
)

var kindNames = map[Kind]string{
	SHaLRT: "SH-aLRT",
	ABayes: "aBayes",
	UFBoot: "UFBoot",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrKind is returned when the name of a support kind
// is unknown.
var ErrKind = errors.New("unknown support kind")

// ParseKind returns the support kind
// with the given name.
// Names are case insensitive
// and hyphens are ignored
// (e.g. "shalrt" is SH-aLRT).
func ParseKind(name string) (Kind, error) {
	n := kindKey(name)
	for k, s := range kindNames {
		if kindKey(s) == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrKind, name)
}

func kindKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
}

// Thresholds returns the thresholds of a support kind,
// from the highest to the lowest.
// Values of aBayes are in percentage.
func (k Kind) Thresholds() [3]float64 {
	switch k {
	case SHaLRT:
		return [3]float64{80, 75, 70}
	case ABayes:
		return [3]float64{95, 90, 85}
	}
	return [3]float64{95, 90, 85}
}

// Palette is the list of colors
// used for each threshold level.
// The last color is used for the empty part
// of a support pie.
var Palette = []string{"Black", "DarkGrey", "DarkGrey", "DarkGrey", "LightGrey"}

// Colors used for labels of internal nodes.
const (
	Strong = "Black"
	Weak   = "Gray"
)

// A Value is a support value.
type Value struct {
	Kind  Kind
	Value float64
}

// Level returns the threshold level of a support value:
// 0 if the value is at or above the first threshold,
// 1 if it is at or above the second,
// 2 if it is at or above the third,
// and 3 otherwise.
func (v Value) Level() int {
	th := v.Kind.Thresholds()
	for i, t := range th {
		if v.Value >= t {
			return i
		}
	}
	return len(th)
}

// Color returns the palette color of a support value.
func (v Value) Color() string {
	return Palette[v.Level()]
}

// Parse parses a support label.
//
// If the label has three or more parts,
// the first three parts are read as SH-aLRT (a float),
// aBayes (a float between 0 and 1,
// that is returned as a percentage),
// and UFBoot (an integer).
// Otherwise the first part is read as an UFBoot integer.
func Parse(label string) ([]Value, error) {
	label = strings.TrimSpace(label)
	parts := strings.Split(label, "/")
	if len(parts) > 2 {
		sh, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalid, label)
		}
		ab, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalid, label)
		}
		uf, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalid, label)
		}
		return []Value{
			{Kind: SHaLRT, Value: sh},
			{Kind: ABayes, Value: math.Round(ab*1e8) / 1e6},
			{Kind: UFBoot, Value: float64(uf)},
		}, nil
	}

	uf, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, label)
	}
	return []Value{{Kind: UFBoot, Value: float64(uf)}}, nil
}

// Select returns the value of the indicated kind
// from a support label.
func Select(label string, k Kind) (Value, error) {
	vs, err := Parse(label)
	if err != nil {
		return Value{}, err
	}
	for _, v := range vs {
		if v.Kind == k {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("%w: %q: without %s value", ErrInvalid, label, k)
}

// Label returns the value
// formatted as in a support label.
// aBayes values are returned as probabilities.
func (v Value) Label() string {
	x := v.Value
	if v.Kind == ABayes {
		x /= 100
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// LabelColor returns the color used to show a support label.
//
// A composite label is shown as Strong
// when all of its values are at or above the first threshold.
// A single value label is shown as Strong
// only if it is strictly greater than the first threshold.
// Any other label,
// including labels that can not be parsed,
// is shown as Weak.
func LabelColor(label string) string {
	vs, err := Parse(label)
	if err != nil {
		return Weak
	}

	if len(vs) == 1 {
		if vs[0].Value > vs[0].Kind.Thresholds()[0] {
			return Strong
		}
		return Weak
	}

	for _, v := range vs {
		if v.Level() > 0 {
			return Weak
		}
	}
	return Strong
}

// A Pie is a two slices pie chart
// for a support value.
type Pie struct {
	Value
	Rest  float64 // 100 - value
	Empty string  // color of the rest of the pie
}

// Pies returns a pie chart for each value of a support label.
func Pies(label string) ([]Pie, error) {
	vs, err := Parse(label)
	if err != nil {
		return nil, err
	}

	pies := make([]Pie, 0, len(vs))
	for _, v := range vs {
		pies = append(pies, Pie{
			Value: v,
			Rest:  100 - v.Value,
			Empty: Palette[len(Palette)-1],
		})
	}
	return pies, nil
}

// String returns the pie as
// <kind>:<value>:<color>.
func (p Pie) String() string {
	return fmt.Sprintf("%s:%s:%s", p.Kind, strconv.FormatFloat(p.Value.Value, 'f', -1, 64), p.Color())
}
