package vectra

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "github.com/deepteams/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/printready/vectra/imop"
)

// Memory and quality guardrails of the working image. The working copy is
// kept under the pixel budget, while small inputs are upsampled so that
// the contour and curve fitting stages have enough pixels to describe
// smooth diagonals.
const (
	maxWorkPixels = 14e6
	maxSidePx     = 3200
)

// backgroundColor is the neutral backdrop every semi-transparent
// input gets flattened against.
var backgroundColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// raster holds the normalized working image together with the
// information needed to map the emitted coordinates back to the source.
type raster struct {
	img *image.NRGBA

	// origWidth and origHeight are the decoded input dimensions.
	origWidth  int
	origHeight int

	// upsample is the integer resampling factor applied on top of the
	// capped size. The composed SVG viewBox stays in upsampled units.
	upsample int
}

// normalize decodes the input bytes, flattens the alpha channel over a
// neutral white backdrop and applies the size policy: large inputs are
// scaled down under the pixel budget, small inputs are upsampled by an
// integer factor for smoother downstream geometry.
func normalize(data []byte) (*raster, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img := imop.Flatten(imgToNRGBA(src), backgroundColor)

	r := &raster{
		img:        img,
		origWidth:  img.Bounds().Dx(),
		origHeight: img.Bounds().Dy(),
		upsample:   1,
	}

	r.img = capSize(r.img)

	factor := upsampleFactor(r.img)
	if factor > 1 {
		w, h := r.img.Bounds().Dx(), r.img.Bounds().Dy()
		if w*factor <= maxSidePx && h*factor <= maxSidePx {
			r.img = imaging.Resize(r.img, w*factor, h*factor, imaging.Lanczos)
			r.upsample = factor
		}
	}

	return r, nil
}

// capSize scales the image down to stay under the pixel budget
// while preserving the aspect ratio exactly.
func capSize(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w*h <= int(maxWorkPixels) && w <= maxSidePx && h <= maxSidePx {
		return img
	}

	scaleByPixels := math.Sqrt(maxWorkPixels / float64(w*h))
	scaleBySide := float64(maxSidePx) / float64(max(w, h))
	scale := math.Min(math.Min(scaleByPixels, scaleBySide), 1.0)

	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// upsampleFactor chooses a 1x/2x/3x resampling factor based on the
// current size: small images gain the most from extra resolution.
func upsampleFactor(img *image.NRGBA) int {
	mpx := float64(img.Bounds().Dx()*img.Bounds().Dy()) / 1e6
	switch {
	case mpx <= 4:
		return 3
	case mpx <= 9:
		return 2
	default:
		return 1
	}
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := srcBounds.Dx() * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
