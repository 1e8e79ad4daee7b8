// Package palette suggests starting colours and breakpoints from the source photo.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"papercut/internal/models"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type Method int

const (
	MethodNone Method = iota
	MethodDominantColor
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodDominantColor:
		return "dominantcolor"
	case MethodKMeans:
		return "kmeans"
	default:
		return ""
	}
}

// ParseMethod accepts "", "none", "dominantcolor" and "kmeans".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MethodNone, nil
	case "dominantcolor", "dominant":
		return MethodDominantColor, nil
	case "kmeans":
		return MethodKMeans, nil
	default:
		return MethodNone, fmt.Errorf("unknown palette method %q", s)
	}
}

const maxKMeansSamples = 12000

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// Suggest extracts n colours from img, ordered darkest to brightest so that dark bands receive
// dark colours. When the photo has fewer distinct colours than n the gaps are blended in Lab.
func Suggest(img image.Image, n int, method Method) (models.ColorAssignment, error) {
	if img == nil {
		return nil, fmt.Errorf("palette source image is nil")
	}
	if n <= 0 {
		return nil, fmt.Errorf("palette size %d must be positive", n)
	}

	var found []colorful.Color
	switch method {
	case MethodKMeans:
		found = extractKMeans(img, n)
		if len(found) == 0 {
			found = extractDominant(img, n)
		}
	case MethodDominantColor:
		found = extractDominant(img, n)
	default:
		return nil, fmt.Errorf("no palette method selected")
	}

	SortByBrightness(found)
	found = fill(found, n)

	out := models.NewColorAssignment(n)
	for i, c := range found {
		out[i] = models.FromColorful(c)
	}
	return out, nil
}

// SortByBrightness orders colours by relative luminance, darkest first.
func SortByBrightness(p []colorful.Color) {
	slices.SortStableFunc(p, func(a, b colorful.Color) int {
		la, lb := luminance(a), luminance(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		default:
			return 0
		}
	})
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// fill stretches a sorted palette to n entries by blending neighbours in Lab space.
func fill(p []colorful.Color, n int) []colorful.Color {
	switch {
	case len(p) >= n:
		return p[:n]
	case len(p) == 0:
		p = []colorful.Color{{R: 0, G: 0, B: 0}, {R: 1, G: 1, B: 1}}
	case len(p) == 1:
		return slices.Repeat(p, n)
	}

	out := make([]colorful.Color, n)
	for i := range out {
		pos := float64(i) * float64(len(p)-1) / float64(n-1)
		lo := int(math.Floor(pos))
		hi := min(lo+1, len(p)-1)
		out[i] = p[lo].BlendLab(p[hi], pos-float64(lo)).Clamped()
	}
	return out
}

func extractDominant(img image.Image, k int) []colorful.Color {
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: max(c.Weight, 1e-6)})
	}
	return selectDiverse(weighted, k)
}

func extractKMeans(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	step := 1
	if width*height > maxKMeansSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxKMeansSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxKMeansSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse picks up to k colours, seeded with the heaviest and then greedily maximising
// Lab distance to the picks so far, weighted towards common colours.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	labs := make([][3]float64, len(cands))
	maxW, seed := 0.0, 0
	for i, c := range cands {
		l, a, b := c.col.Lab()
		labs[i] = [3]float64{l, a, b}
		if c.weight > maxW {
			maxW, seed = c.weight, i
		}
	}

	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i := range cands {
			if used[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range picked {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, idx := range picked {
		out[i] = cands[idx].col
	}
	return out
}
