package vectra

import (
	"image"
	"image/color"
)

// Default halo suppression tunables. The squared RGB distance threshold
// decides which pixels count as "near background"; the grow radius pulls
// in partially blended boundary pixels that fall just outside the raw
// threshold.
const (
	dehaloDistLogo = 9 * 9
	dehaloDistSafe = 12 * 12
	dehaloGrowLogo = 1
	dehaloGrowSafe = 3
)

// sampleBackground estimates the background color from a small fixed set
// of near-corner points and returns the modal color. The estimate is
// ambiguous when no color reaches a two-vote majority, in which case ok
// is false and the caller must leave the image untouched.
func sampleBackground(img *image.NRGBA) (bg color.NRGBA, ok bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w < 6 || h < 6 {
		return color.NRGBA{}, false
	}

	corners := []image.Point{
		{2, 2},
		{w - 3, 2},
		{2, h - 3},
		{w - 3, h - 3},
	}

	counts := map[color.NRGBA]int{}
	for _, pt := range corners {
		counts[img.NRGBAAt(pt.X, pt.Y)]++
	}

	best, votes := color.NRGBA{}, 0
	for c, n := range counts {
		if n > votes {
			best, votes = c, n
		}
	}

	// A single contaminated corner is tolerable; total disagreement is not.
	return best, votes >= 2
}

// colorDist returns the squared Euclidean RGB distance between two colors.
func colorDist(a, b color.NRGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// dehalo detects near-background pixels by color distance, grows the
// resulting mask by a small radius and snaps every masked pixel to the
// exact background color. This removes the anti-aliased fringe between
// foreground and background before the quantizer can allocate a palette
// slot to it. When the background estimate is ambiguous the image is
// left unmodified.
func dehalo(img *image.NRGBA, distThresh, growPx int) (color.NRGBA, bool) {
	bg, ok := sampleBackground(img)
	if !ok {
		return backgroundColor, false
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if colorDist(img.NRGBAAt(x, y), bg) <= distThresh {
				mask[y*w+x] = true
			}
		}
	}

	if growPx > 0 {
		mask = growMask(mask, w, h, growPx)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				img.SetNRGBA(x, y, bg)
			}
		}
	}

	return bg, true
}

// growMask dilates a binary mask with a square structuring element
// of the given radius.
func growMask(mask []bool, w, h, radius int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					out[ny*w+nx] = true
				}
			}
		}
	}
	return out
}
