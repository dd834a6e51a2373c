// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition
// operations, but the image/draw core package implements only the
// source-over-destination and source. This package carries the subset
// needed by the vectorization pipeline, where every input image is
// flattened over an opaque backdrop before quantization.
package imop

import (
	"image"
	"image/color"

	"github.com/printready/vectra/utils"
)

// The supported composition operations.
const (
	Copy    = "copy"
	SrcOver = "src_over"
	DstOver = "dst_over"
)

// Bitmap holds the destination buffer of a composition operation.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap initializes a new composition buffer of the given size.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp initializes a new composition operation, defaulting to Copy.
func InitOp() *Composite {
	return &Composite{
		current: Copy,
		ops:     []string{Copy, SrcOver, DstOver},
	}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) {
	if utils.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites the source image against the destination image
// into the bitmap buffer using the active operation.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}

	var rn, gn, bn, an float64

	for x := 0; x < dx; x++ {
		for y := 0; y < dy; y++ {
			r1, g1, b1, a1 := src.At(x, y).RGBA()
			r2, g2, b2, a2 := dst.At(x, y).RGBA()

			rsn := float64(r1>>8) / 255
			gsn := float64(g1>>8) / 255
			bsn := float64(b1>>8) / 255
			asn := float64(a1>>8) / 255

			rbn := float64(r2>>8) / 255
			gbn := float64(g2>>8) / 255
			bbn := float64(b2>>8) / 255
			abn := float64(a2>>8) / 255

			// applying the alpha composition formula
			switch op.current {
			case Copy:
				rn, gn, bn, an = asn*rsn, asn*gsn, asn*bsn, asn
			case SrcOver:
				rn = asn*rsn + abn*rbn*(1-asn)
				gn = asn*gsn + abn*gbn*(1-asn)
				bn = asn*bsn + abn*bbn*(1-asn)
				an = asn + abn*(1-asn)
			case DstOver:
				rn = asn*rsn*(1-abn) + abn*rbn
				gn = asn*gsn*(1-abn) + abn*gbn
				bn = asn*bsn*(1-abn) + abn*bbn
				an = asn*(1-abn) + abn
			}

			// unpremultiply the result
			if an > 0 {
				rn, gn, bn = rn/an, gn/an, bn/an
			}

			bitmap.Img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rn * 255),
				G: uint8(gn * 255),
				B: uint8(bn * 255),
				A: uint8(an * 255),
			})
		}
	}
}

// Flatten composites the source image over an opaque background color
// and returns the result. The backdrop is drawn under the artwork with
// the dst-over operation: opaque pixels keep their color and
// semi-transparent pixels blend with the background.
func Flatten(src *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	backdrop := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(backdrop.Pix); i += 4 {
		backdrop.Pix[i+0] = bg.R
		backdrop.Pix[i+1] = bg.G
		backdrop.Pix[i+2] = bg.B
		backdrop.Pix[i+3] = 0xff
	}

	op := InitOp()
	op.Set(DstOver)

	bitmap := NewBitmap(src.Bounds())
	op.Draw(bitmap, backdrop, src)

	return bitmap.Img
}
