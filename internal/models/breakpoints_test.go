package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp_DefaultsUnchanged(t *testing.T) {
	assert.Equal(t, DefaultBreakpoints, Clamp(DefaultBreakpoints))
}

func TestClamp_InversionCascades(t *testing.T) {
	got := Clamp([]int{120, 100, 80, 60, 40, 30, 20, 10, 5})
	assert.Equal(t, []int{0, 0, 0, 0, 1, 2, 3, 4, 5}, got)
}

func TestClamp_CeilingsOnTopBreakpoints(t *testing.T) {
	got := Clamp([]int{50, 85, 127, 170, 255, 255, 255, 255, 255})
	assert.Equal(t, []int{50, 85, 127, 170, 250, 251, 252, 253, 254}, got)
}

func TestClamp_OutOfRangeInputs(t *testing.T) {
	got := Clamp([]int{-40, 300})
	assert.Equal(t, []int{0, 254}, got)
}

func TestClamp_SingleBreakpoint(t *testing.T) {
	assert.Equal(t, []int{254}, Clamp([]int{255}))
	assert.Equal(t, []int{0}, Clamp([]int{-1}))
}

func TestClamp_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(MaxBandCount-1)
		raw := make([]int, n)
		for i := range raw {
			raw[i] = rng.Intn(400) - 70
		}

		got := Clamp(raw)
		require.Len(t, got, n)

		for i, v := range got {
			assert.GreaterOrEqual(t, v, MinIntensity, "input %v", raw)
			assert.LessOrEqual(t, v, MaxIntensity-1, "input %v", raw)
			if i > 0 {
				assert.LessOrEqual(t, got[i-1], v, "input %v", raw)
			}
		}
		assert.Equal(t, got, Clamp(got), "not idempotent for %v", raw)
	}
}

func TestClamp_RangesPartitionIntensities(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for iter := 0; iter < 200; iter++ {
		raw := make([]int, 9)
		for i := range raw {
			raw[i] = rng.Intn(256)
		}
		ranges := RangesFromBreakpoints(Clamp(raw))

		for v := MinIntensity; v <= MaxIntensity; v++ {
			hits := 0
			for _, r := range ranges {
				if r.Contains(v) {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "intensity %d with breakpoints %v", v, Clamp(raw))
		}
		assert.False(t, ranges[len(ranges)-1].Empty(), "top band must keep a value")
	}
}

func TestNewBreakpointSet(t *testing.T) {
	bs, err := NewBreakpointSet(10, DefaultBreakpoints)
	require.NoError(t, err)
	assert.Equal(t, 10, bs.BandCount())
	assert.Equal(t, DefaultBreakpoints, bs.Values())

	_, err = NewBreakpointSet(1, nil)
	assert.Error(t, err)

	_, err = NewBreakpointSet(11, make([]int, 10))
	assert.Error(t, err)

	_, err = NewBreakpointSet(4, []int{1, 2})
	assert.Error(t, err)
}

func TestBreakpointSet_Update(t *testing.T) {
	bs, err := NewBreakpointSet(10, DefaultBreakpoints)
	require.NoError(t, err)

	corrected, changed, err := bs.Update([]int{50, 85, 127, 170, 210, 230, 240, 245, 251})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 251, corrected[8])

	raw := []int{50, 40, 127, 170, 210, 230, 240, 245, 250}
	corrected, changed, err = bs.Update(raw)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 39, corrected[0])
	assert.Equal(t, corrected, bs.Values())

	corrected[0] = 99
	assert.Equal(t, 39, bs.Values()[0], "Values must not alias caller slices")

	_, _, err = bs.Update([]int{1, 2})
	assert.Error(t, err)
}

func TestEvenBreakpoints(t *testing.T) {
	assert.Equal(t, []int{127}, EvenBreakpoints(2))
	assert.Equal(t, []int{63, 127, 191}, EvenBreakpoints(4))
	assert.Equal(t, DefaultBreakpoints, DefaultBreakpointsFor(10))
	assert.Len(t, DefaultBreakpointsFor(6), 5)
}
