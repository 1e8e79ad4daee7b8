package models

import (
	"fmt"
	"slices"
)

const (
	MinIntensity = 0
	MaxIntensity = 255

	DefaultBandCount = 10
	MinBandCount     = 2
	MaxBandCount     = 10

	// ceilingDepth is how many of the highest breakpoints carry a safety ceiling
	// (b9 <= 254 down to b5 <= 250 with ten bands).
	ceilingDepth = 5
)

// DefaultBreakpoints are the initial slider positions for ten bands.
var DefaultBreakpoints = []int{50, 85, 127, 170, 210, 230, 240, 245, 250}

// BreakpointSet holds the N-1 ordered upper bounds separating N intensity bands.
// Every value held is already corrected: 0 <= b1 <= ... <= b(N-1) <= 254.
type BreakpointSet struct {
	values []int
}

// NewBreakpointSet builds a set for bandCount bands from initial values, correcting them.
func NewBreakpointSet(bandCount int, initial []int) (*BreakpointSet, error) {
	if bandCount < MinBandCount || bandCount > MaxBandCount {
		return nil, fmt.Errorf("band count %d outside [%d, %d]", bandCount, MinBandCount, MaxBandCount)
	}
	if len(initial) != bandCount-1 {
		return nil, fmt.Errorf("%d bands need %d breakpoints, got %d", bandCount, bandCount-1, len(initial))
	}

	return &BreakpointSet{values: Clamp(initial)}, nil
}

// EvenBreakpoints spreads bandCount-1 breakpoints evenly over [0,255].
func EvenBreakpoints(bandCount int) []int {
	out := make([]int, bandCount-1)
	for i := range out {
		out[i] = (i+1)*(MaxIntensity+1)/bandCount - 1
	}
	return Clamp(out)
}

// DefaultBreakpointsFor returns the classic defaults for ten bands and an even spread otherwise.
func DefaultBreakpointsFor(bandCount int) []int {
	if bandCount == DefaultBandCount {
		return slices.Clone(DefaultBreakpoints)
	}
	return EvenBreakpoints(bandCount)
}

// Update replaces the held values with the corrected form of raw and reports whether the
// correction differs from raw, meaning any control showing raw must be resynchronized.
func (bs *BreakpointSet) Update(raw []int) ([]int, bool, error) {
	if len(raw) != len(bs.values) {
		return nil, false, fmt.Errorf("expected %d breakpoints, got %d", len(bs.values), len(raw))
	}

	corrected := Clamp(raw)
	bs.values = corrected
	return slices.Clone(corrected), !slices.Equal(corrected, raw), nil
}

// Values returns a copy of the corrected breakpoints.
func (bs *BreakpointSet) Values() []int {
	return slices.Clone(bs.values)
}

// BandCount is len(Values())+1.
func (bs *BreakpointSet) BandCount() int {
	return len(bs.values) + 1
}

// Ranges derives the inclusive intensity range of every band.
func (bs *BreakpointSet) Ranges() []Range {
	return RangesFromBreakpoints(bs.values)
}

// Clamp corrects an arbitrary breakpoint sequence:
//  1. an inversion b_i > b_(i+1) lowers b_i to b_(i+1)-1, evaluated top-down so the
//     correction cascades through the whole sequence in one pass,
//  2. the top breakpoints are capped at 254, 253, ... so the highest bands keep a value,
//  3. any inversion exposed by a cap is cascaded down again.
//
// Values are kept within [0,255] throughout; the result is idempotent under Clamp.
func Clamp(raw []int) []int {
	b := make([]int, len(raw))
	for i, v := range raw {
		b[i] = clampIntensity(v)
	}

	cascade(b)

	n := len(b)
	for k := 0; k < ceilingDepth && k < n; k++ {
		i := n - 1 - k
		if ceiling := MaxIntensity - 1 - k; b[i] > ceiling {
			b[i] = ceiling
		}
	}

	cascade(b)
	return b
}

func cascade(b []int) {
	for i := len(b) - 2; i >= 0; i-- {
		if b[i] > b[i+1] {
			b[i] = max(b[i+1]-1, MinIntensity)
		}
	}
}

func clampIntensity(v int) int {
	return min(max(v, MinIntensity), MaxIntensity)
}
