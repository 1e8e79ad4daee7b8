package palette

import (
	"image"

	"papercut/internal/models"

	"gonum.org/v1/gonum/stat"
)

// Histogram counts the pixels of img at each intensity.
func Histogram(img *image.Gray) []float64 {
	hist := make([]float64, models.MaxIntensity+1)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}
	return hist
}

// QuantileBreakpoints places bandCount-1 breakpoints so each band holds about the same share of
// pixels, then corrects them like any slider input.
func QuantileBreakpoints(hist []float64, bandCount int) []int {
	total := 0.0
	for _, w := range hist {
		total += w
	}
	if total == 0 || len(hist) != models.MaxIntensity+1 {
		return models.EvenBreakpoints(bandCount)
	}

	levels := make([]float64, len(hist))
	for i := range levels {
		levels[i] = float64(i)
	}

	raw := make([]int, bandCount-1)
	for i := range raw {
		p := float64(i+1) / float64(bandCount)
		raw[i] = int(stat.Quantile(p, stat.Empirical, levels, hist))
	}
	return models.Clamp(raw)
}

// Share returns the fraction of all pixels that falls in each range.
func Share(hist []float64, ranges []models.Range) []float64 {
	total := 0.0
	for _, w := range hist {
		total += w
	}

	out := make([]float64, len(ranges))
	if total == 0 {
		return out
	}
	for i, r := range ranges {
		if r.Empty() {
			continue
		}
		out[i] = stat.Mean(hist[r.Lower:r.Upper+1], nil) * float64(r.Width()) / total
	}
	return out
}
