package models

import (
	"fmt"
	"slices"
)

// Range is an inclusive intensity interval. Lower > Upper denotes an empty band.
type Range struct {
	Lower int
	Upper int
}

func (r Range) Empty() bool {
	return r.Lower > r.Upper
}

func (r Range) Contains(intensity int) bool {
	return intensity >= r.Lower && intensity <= r.Upper
}

// Width is the number of intensities covered.
func (r Range) Width() int {
	if r.Empty() {
		return 0
	}
	return r.Upper - r.Lower + 1
}

// Key is the persisted form of the range, "(lower, upper)".
func (r Range) Key() string {
	return fmt.Sprintf("(%d, %d)", r.Lower, r.Upper)
}

func (r Range) String() string {
	return r.Key()
}

// RangesFromBreakpoints derives contiguous ranges: band 1 is [0, b1], band i is
// [b(i-1)+1, b(i)], and the last band is [b(N-1)+1, 255].
func RangesFromBreakpoints(breakpoints []int) []Range {
	ranges := make([]Range, len(breakpoints)+1)
	lower := MinIntensity
	for i, b := range breakpoints {
		ranges[i] = Range{Lower: lower, Upper: b}
		lower = b + 1
	}
	ranges[len(breakpoints)] = Range{Lower: lower, Upper: MaxIntensity}
	return ranges
}

// Band is one recoloured intensity range. Index is zero-based.
type Band struct {
	Index int
	Range
	Color Color
}

// Label is the one-based display name used for panes and controls.
func (b Band) Label() string {
	return fmt.Sprintf("Color%02d", b.Index+1)
}

// ColorAssignment maps band index to colour.
type ColorAssignment []Color

// NewColorAssignment returns n black entries.
func NewColorAssignment(n int) ColorAssignment {
	return make(ColorAssignment, n)
}

// Clone returns an independent copy.
func (ca ColorAssignment) Clone() ColorAssignment {
	return slices.Clone(ca)
}

// BuildBands pairs the ranges of bs with colors. Missing colours default to black.
func BuildBands(bs *BreakpointSet, colors ColorAssignment) []Band {
	ranges := bs.Ranges()
	bands := make([]Band, len(ranges))
	for i, r := range ranges {
		bands[i] = Band{Index: i, Range: r}
		if i < len(colors) {
			bands[i].Color = colors[i]
		}
	}
	return bands
}

// BandFor returns the index of the band containing intensity, or -1.
func BandFor(bands []Band, intensity int) int {
	for _, b := range bands {
		if b.Contains(intensity) {
			return b.Index
		}
	}
	return -1
}
