// Package scheme persists band colour schemes and paints them onto images.
//
// Values on disk are [r, g, b]. Files holding OpenCV's [b, g, r] order load with red and blue
// swapped.
package scheme

import (
	"errors"
	"fmt"
	"slices"

	"papercut/internal/models"
)

// DefaultPath is where the scheme is read from and written to when nothing else is configured.
const DefaultPath = "color_scheme.json"

var (
	// ErrMalformed matches every *DecodeError.
	ErrMalformed = errors.New("malformed color scheme")
	// ErrNilScheme is returned by Apply when there is nothing to apply.
	ErrNilScheme = errors.New("color scheme is nil")
)

// DecodeError reports a scheme file that exists but cannot be understood.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformed, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// Entry assigns a colour to an inclusive intensity range.
type Entry struct {
	Range models.Range
	Color models.Color
}

// Scheme is an ordered list of entries. Order matters: on overlap the later entry wins.
type Scheme struct {
	Entries []Entry
}

// FromBands captures the live bands, empty ones included.
func FromBands(bands []models.Band) *Scheme {
	s := &Scheme{Entries: make([]Entry, len(bands))}
	for i, b := range bands {
		s.Entries[i] = Entry{Range: b.Range, Color: b.Color}
	}
	return s
}

func (s *Scheme) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Colors returns the first n entry colours, padded with black.
func (s *Scheme) Colors(n int) models.ColorAssignment {
	colors := models.NewColorAssignment(n)
	for i := 0; i < n && i < s.Len(); i++ {
		colors[i] = s.Entries[i].Color
	}
	return colors
}

// Breakpoints recovers the n-1 breakpoints of an n band partition. It reports false unless the
// entries are exactly the ranges those breakpoints derive, in order.
func (s *Scheme) Breakpoints(n int) ([]int, bool) {
	if n < models.MinBandCount || s.Len() != n {
		return nil, false
	}

	breakpoints := make([]int, n-1)
	for i := range breakpoints {
		breakpoints[i] = s.Entries[i].Range.Upper
	}
	if !slices.Equal(models.Clamp(breakpoints), breakpoints) {
		return nil, false
	}

	for i, r := range models.RangesFromBreakpoints(breakpoints) {
		if s.Entries[i].Range != r {
			return nil, false
		}
	}
	return breakpoints, true
}
