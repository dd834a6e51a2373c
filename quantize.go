package vectra

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
)

// Clustering tunables. The iteration budget and the convergence epsilon
// follow the usual k-means termination criteria for image palettes; the
// restart count guards against poor local minima. The seed is fixed so
// that repeated runs over the same input produce the same palette.
const (
	kmeansMaxIter  = 80
	kmeansEps      = 0.25
	kmeansRestarts = 4
	kmeansSeed     = 0x5eed

	// maxSamplePixels bounds the number of pixels fed into the
	// clustering loop; labels are still assigned to every pixel.
	maxSamplePixels = 200000

	// degenerateLabDist marks a K=2 palette as effectively monochrome
	// when its two entries sit closer than this in Lab space.
	degenerateLabDist = 2.0
)

// lab is a color in the CIE Lab space (D65 white point).
type lab [3]float64

// PaletteColor is one representative color of the quantized image,
// kept in Lab space for clustering and in sRGB for rendering.
type PaletteColor struct {
	Lab lab
	RGB color.NRGBA
}

// Luminance returns the relative luminance of the palette entry,
// used for ordering the painted SVG layers.
func (p PaletteColor) Luminance() float64 {
	return 0.2126*float64(p.RGB.R) + 0.7152*float64(p.RGB.G) + 0.0722*float64(p.RGB.B)
}

// Palette is the ordered set of representative colors. No two entries
// are identical; every pixel of the quantized image maps to exactly one
// palette index.
type Palette []PaletteColor

// LabelMap assigns each pixel of the working image a palette index.
type LabelMap struct {
	Width  int
	Height int
	Labels []uint8
}

// At returns the palette index at the given pixel.
func (m *LabelMap) At(x, y int) uint8 {
	return m.Labels[y*m.Width+x]
}

// quantize reduces the image to at most k flat colors by k-means
// clustering in Lab space and repaints every pixel with its palette
// color. The returned palette may be smaller than k when clusters
// collapse onto the same color.
func quantize(img *image.NRGBA, k int) (Palette, *LabelMap) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	pixels := make([]lab, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = rgbToLab(img.NRGBAAt(x, y))
		}
	}

	sample := pixels
	if len(sample) > maxSamplePixels {
		stride := len(pixels)/maxSamplePixels + 1
		sample = make([]lab, 0, len(pixels)/stride+1)
		for i := 0; i < len(pixels); i += stride {
			sample = append(sample, pixels[i])
		}
	}

	var (
		bestCenters []lab
		bestCost    = math.Inf(1)
	)
	for attempt := 0; attempt < kmeansRestarts; attempt++ {
		rng := rand.New(rand.NewSource(kmeansSeed + int64(attempt)))
		centers, cost := kmeansRun(sample, k, rng)
		if cost < bestCost {
			bestCenters, bestCost = centers, cost
		}
	}

	palette := centersToPalette(bestCenters)
	labels := assignLabels(pixels, palette)

	m := &LabelMap{Width: w, Height: h, Labels: labels}
	repaint(img, palette, m)

	return palette, m
}

// kmeansRun performs one seeded clustering attempt and returns the final
// centers together with the total within-cluster distance.
func kmeansRun(pixels []lab, k int, rng *rand.Rand) ([]lab, float64) {
	if k > len(pixels) {
		k = len(pixels)
	}
	centers := seedCenters(pixels, k, rng)
	assign := make([]int, len(pixels))

	for iter := 0; iter < kmeansMaxIter; iter++ {
		for i, px := range pixels {
			assign[i] = nearestCenter(px, centers)
		}

		next := make([]lab, len(centers))
		counts := make([]int, len(centers))
		for i, px := range pixels {
			c := assign[i]
			next[c][0] += px[0]
			next[c][1] += px[1]
			next[c][2] += px[2]
			counts[c]++
		}

		moved := 0.0
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an empty cluster on a random pixel.
				next[c] = pixels[rng.Intn(len(pixels))]
			} else {
				n := float64(counts[c])
				next[c] = lab{next[c][0] / n, next[c][1] / n, next[c][2] / n}
			}
			moved = math.Max(moved, math.Sqrt(labDistSq(centers[c], next[c])))
		}
		centers = next

		if moved < kmeansEps {
			break
		}
	}

	cost := 0.0
	for _, px := range pixels {
		cost += labDistSq(px, centers[nearestCenter(px, centers)])
	}
	return centers, cost
}

// seedCenters picks the initial cluster centers with k-means++ style
// weighting: each next center favors pixels far from the existing ones.
func seedCenters(pixels []lab, k int, rng *rand.Rand) []lab {
	centers := make([]lab, 0, k)
	centers = append(centers, pixels[rng.Intn(len(pixels))])

	dist := make([]float64, len(pixels))
	for len(centers) < k {
		total := 0.0
		for i, px := range pixels {
			d := labDistSq(px, centers[nearestCenter(px, centers)])
			dist[i] = d
			total += d
		}
		if total == 0 {
			// All remaining pixels coincide with a center.
			centers = append(centers, pixels[rng.Intn(len(pixels))])
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		idx := len(pixels) - 1
		for i, d := range dist {
			acc += d
			if acc >= target {
				idx = i
				break
			}
		}
		centers = append(centers, pixels[idx])
	}
	return centers
}

// centersToPalette converts the cluster centers back to the display
// space, dropping duplicates so that the palette invariant holds.
// Channel rounding happens only here, at the rendering boundary.
func centersToPalette(centers []lab) Palette {
	palette := make(Palette, 0, len(centers))
	for _, c := range centers {
		entry := PaletteColor{Lab: c, RGB: labToRGB(c)}
		dup := false
		for _, p := range palette {
			if p.RGB == entry.RGB {
				dup = true
				break
			}
		}
		if !dup {
			palette = append(palette, entry)
		}
	}
	return palette
}

// assignLabels maps every pixel to its nearest palette entry in Lab space.
func assignLabels(pixels []lab, palette Palette) []uint8 {
	labels := make([]uint8, len(pixels))
	for i, px := range pixels {
		best, bestDist := 0, math.Inf(1)
		for j, p := range palette {
			if d := labDistSq(px, p.Lab); d < bestDist {
				best, bestDist = j, d
			}
		}
		labels[i] = uint8(best)
	}
	return labels
}

// snapToPalette re-quantizes the image onto an existing palette with a
// nearest-color snap and no dithering. Snapping an already-snapped image
// onto the same palette is a no-op.
func snapToPalette(img *image.NRGBA, palette Palette) *LabelMap {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pixels := make([]lab, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = rgbToLab(img.NRGBAAt(x, y))
		}
	}

	m := &LabelMap{Width: w, Height: h, Labels: assignLabels(pixels, palette)}
	repaint(img, palette, m)
	return m
}

// repaint writes the palette color of each label back into the image.
func repaint(img *image.NRGBA, palette Palette, m *LabelMap) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetNRGBA(x, y, palette[m.At(x, y)].RGB)
		}
	}
}

// isDegenerate reports whether a two-color palette collapsed onto a
// single effective color, indicating an effectively monochrome input.
func (p Palette) isDegenerate() bool {
	if len(p) < 2 {
		return true
	}
	if len(p) > 2 {
		return false
	}
	return math.Sqrt(labDistSq(p[0].Lab, p[1].Lab)) < degenerateLabDist
}

// estimateDistinctColors quantizes a downscaled thumbnail to a 16-color
// palette and counts the entries that sit far enough from the estimated
// background to be meaningfully distinct.
func estimateDistinctColors(img *image.NRGBA, bg color.NRGBA) int {
	thumb := imgToNRGBA(imaging.Fit(img, 256, 256, imaging.Lanczos))
	palette, _ := quantize(thumb, 16)

	bgLab := rgbToLab(bg)
	distinct := 0
	for _, p := range palette {
		if math.Sqrt(labDistSq(p.Lab, bgLab)) > 12 {
			distinct++
		}
	}
	return distinct
}

// chooseK maps the distinct color estimate to the final palette size via
// a monotonic step function clamped to [2, maxK]. Too small a K merges
// distinct brand colors into one blob; too large a K reintroduces
// quantization noise and multiplies the contour count.
func chooseK(distinct, maxK int) int {
	var k int
	switch {
	case distinct <= 1:
		k = 3
	case distinct == 2:
		k = 4
	case distinct == 3:
		k = 5
	default:
		k = maxK
	}
	if k < 2 {
		k = 2
	}
	if k > maxK {
		k = maxK
	}
	return k
}

// nearestCenter returns the index of the closest center in Lab space.
func nearestCenter(px lab, centers []lab) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		if d := labDistSq(px, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func labDistSq(a, b lab) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// rgbToLab converts an 8-bit sRGB color to CIE Lab (D65 white point).
func rgbToLab(c color.NRGBA) lab {
	r := srgbToLinear(float64(c.R) / 255)
	g := srgbToLinear(float64(c.G) / 255)
	b := srgbToLinear(float64(c.B) / 255)

	x := (0.4124564*r + 0.3575761*g + 0.1804375*b) / 0.95047
	y := 0.2126729*r + 0.7151522*g + 0.0721750*b
	z := (0.0193339*r + 0.1191920*g + 0.9503041*b) / 1.08883

	fx, fy, fz := labF(x), labF(y), labF(z)

	return lab{116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)}
}

// labToRGB converts a Lab color back to 8-bit sRGB, clipping out-of-gamut
// channels.
func labToRGB(l lab) color.NRGBA {
	fy := (l[0] + 16) / 116
	fx := fy + l[1]/500
	fz := fy - l[2]/200

	x := labFInv(fx) * 0.95047
	y := labFInv(fy)
	z := labFInv(fz) * 1.08883

	r := 3.2404542*x - 1.5371385*y - 0.4985314*z
	g := -0.9692660*x + 1.8760108*y + 0.0415560*z
	b := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return color.NRGBA{
		R: linearToSrgb8(r),
		G: linearToSrgb8(g),
		B: linearToSrgb8(b),
		A: 0xff,
	}
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSrgb8(c float64) uint8 {
	var v float64
	if c <= 0.0031308 {
		v = c * 12.92
	} else {
		v = 1.055*math.Pow(c, 1/2.4) - 0.055
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255))
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > 0.008856 {
		return t3
	}
	return (t - 16.0/116) / 7.787
}
