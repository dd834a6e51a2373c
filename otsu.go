package vectra

import (
	"image"
	"image/color"
	"math"
)

// Foreground ratio bounds for the binary mode polarity decision. A
// threshold split where the "ink" side covers almost nothing or almost
// everything picked the wrong side.
const (
	minInkRatio = 0.02
	maxInkRatio = 0.95
)

// rgbToGrayscale converts an image to grayscale mode and returns the
// pixel values as a one dimensional array.
func rgbToGrayscale(src *image.NRGBA) []uint8 {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	gray := make([]uint8, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := src.NRGBAAt(x, y)
			lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			gray[y*width+x] = uint8(lum)
		}
	}

	return gray
}

// otsuThreshold computes the threshold maximizing the between-class
// variance of the grayscale histogram. Returns a level in [0, 255].
func otsuThreshold(gray []uint8) int {
	var hist [256]int
	for _, v := range gray {
		hist[v]++
	}

	total := len(gray)
	sumTotal := 0
	for i, h := range hist {
		sumTotal += i * h
	}

	var (
		sumB, wB   int
		maxBetween = -1.0
		threshold  = 127
	)
	for i := 0; i < 256; i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += i * hist[i]
		mB := float64(sumB) / float64(wB)
		mF := float64(sumTotal-sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)

		if between > maxBetween {
			maxBetween = between
			threshold = i
		}
	}

	return threshold
}

// binarize projects the image to grayscale, applies an Otsu threshold
// and picks the polarity that makes a plausible ink mask: the foreground
// must cover a reasonable share of the canvas and its mean brightness
// should sit away from the image border sample, which is assumed to be
// background. Returns the ink mask (255 = ink) and the mean colors of
// the two sides as a two-entry palette.
func binarize(img *image.NRGBA) (*image.Gray, Palette, bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	gray := rgbToGrayscale(img)
	th := otsuThreshold(gray)

	borderMean := borderBrightness(gray, w, h)

	type split struct {
		dark bool // ink = pixels below the threshold
		n    int
		mean float64
	}
	var candidates []split
	for _, dark := range []bool{true, false} {
		n, sum := 0, 0
		for _, v := range gray {
			if (dark && int(v) < th) || (!dark && int(v) >= th) {
				n++
				sum += int(v)
			}
		}
		if n == 0 {
			continue
		}
		ratio := float64(n) / float64(len(gray))
		if ratio < minInkRatio || ratio > maxInkRatio {
			continue
		}
		candidates = append(candidates, split{dark: dark, n: n, mean: float64(sum) / float64(n)})
	}
	if len(candidates) == 0 {
		return nil, nil, false
	}

	// Prefer the side whose brightness sits farthest from the border.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(c.mean-borderMean) > math.Abs(best.mean-borderMean) {
			best = c
		}
	}

	mask := image.NewGray(img.Bounds())
	var fgR, fgG, fgB, bgR, bgG, bgB, fgN, bgN int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray[y*w+x]
			ink := (best.dark && int(v) < th) || (!best.dark && int(v) >= th)
			c := img.NRGBAAt(x, y)
			if ink {
				mask.SetGray(x, y, color.Gray{Y: 0xff})
				fgR += int(c.R)
				fgG += int(c.G)
				fgB += int(c.B)
				fgN++
			} else {
				bgR += int(c.R)
				bgG += int(c.G)
				bgB += int(c.B)
				bgN++
			}
		}
	}

	bg := color.NRGBA{A: 0xff}
	if bgN > 0 {
		bg = color.NRGBA{R: uint8(bgR / bgN), G: uint8(bgG / bgN), B: uint8(bgB / bgN), A: 0xff}
	}
	fg := color.NRGBA{A: 0xff}
	if fgN > 0 {
		fg = color.NRGBA{R: uint8(fgR / fgN), G: uint8(fgG / fgN), B: uint8(fgB / fgN), A: 0xff}
	}

	palette := Palette{
		{Lab: rgbToLab(bg), RGB: bg},
		{Lab: rgbToLab(fg), RGB: fg},
	}
	return mask, palette, true
}

// borderBrightness samples the one pixel wide image border and returns
// its mean grayscale value.
func borderBrightness(gray []uint8, w, h int) float64 {
	sum, n := 0, 0
	for x := 0; x < w; x++ {
		sum += int(gray[x]) + int(gray[(h-1)*w+x])
		n += 2
	}
	for y := 1; y < h-1; y++ {
		sum += int(gray[y*w]) + int(gray[y*w+w-1])
		n += 2
	}
	if n == 0 {
		return 255
	}
	return float64(sum) / float64(n)
}
