package vectra

import (
	"image"

	"github.com/disintegration/imaging"
)

// regularize cleans the quantized image without leaving the K-color
// palette: a 3x3 morphological open removes isolated speckle pixels, a
// close fills pinhole gaps, and a light Gaussian blur smooths the pixel
// staircasing on diagonals. The blurred result is immediately snapped
// back onto the exact palette; blur alone would reintroduce continuous
// gradients and break the flat-fill output, snapping alone would leave
// the diagonals jagged.
//
// minFeaturePx caps the blur so strokes near the single-pixel width
// survive the smoothing.
func regularize(img *image.NRGBA, palette Palette, sigma float64, minFeaturePx int) (*image.NRGBA, *LabelMap) {
	// Open: erode then dilate.
	out := maxFilter3(minFilter3(img))
	// Close: dilate then erode.
	out = minFilter3(maxFilter3(out))

	if minFeaturePx > 0 {
		if limit := 0.4 * float64(minFeaturePx); sigma > limit {
			sigma = limit
		}
	}
	if sigma > 0 {
		out = imaging.Blur(out, sigma)
	}

	m := snapToPalette(out, palette)
	return out, m
}

// minFilter3 erodes the image with a 3x3 window, per channel.
func minFilter3(img *image.NRGBA) *image.NRGBA {
	return rankFilter3(img, func(a, b uint8) bool { return a < b })
}

// maxFilter3 dilates the image with a 3x3 window, per channel.
func maxFilter3(img *image.NRGBA) *image.NRGBA {
	return rankFilter3(img, func(a, b uint8) bool { return a > b })
}

// rankFilter3 applies a 3x3 per-channel rank filter where better decides
// which of two channel values wins.
func rankFilter3(img *image.NRGBA, better func(a, b uint8) bool) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(img.Bounds())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			di := dst.PixOffset(x, y)
			var best [3]uint8
			first := true
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					si := img.PixOffset(nx, ny)
					if first {
						best[0], best[1], best[2] = img.Pix[si], img.Pix[si+1], img.Pix[si+2]
						first = false
						continue
					}
					for c := 0; c < 3; c++ {
						if better(img.Pix[si+c], best[c]) {
							best[c] = img.Pix[si+c]
						}
					}
				}
			}
			dst.Pix[di+0] = best[0]
			dst.Pix[di+1] = best[1]
			dst.Pix[di+2] = best[2]
			dst.Pix[di+3] = 0xff
		}
	}
	return dst
}
