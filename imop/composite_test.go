package imop

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompositeOps(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(Copy, op.Get())

	op.Set(SrcOver)
	assert.Equal(SrcOver, op.Get())

	op.Set("bogus")
	assert.Equal(SrcOver, op.Get())
}

func TestDraw_SrcOverOpaque(t *testing.T) {
	src := solid(4, 4, red)
	dst := solid(4, 4, white)

	op := InitOp()
	op.Set(SrcOver)

	bitmap := NewBitmap(src.Bounds())
	op.Draw(bitmap, src, dst)

	got := bitmap.Img.NRGBAAt(1, 1)
	assert.Equal(t, red, got)
}

func TestDraw_DstOverKeepsOpaqueDestination(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	op.Set(DstOver)

	bitmap := NewBitmap(image.Rect(0, 0, 4, 4))
	op.Draw(bitmap, solid(4, 4, white), solid(4, 4, red))
	assert.Equal(red, bitmap.Img.NRGBAAt(1, 1))

	// A transparent destination exposes the source underneath.
	op.Draw(bitmap, solid(4, 4, white), image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	assert.Equal(white, bitmap.Img.NRGBAAt(1, 1))
}

func TestFlatten_OpaqueSourceUnchanged(t *testing.T) {
	src := solid(4, 4, red)
	out := Flatten(src, white)

	assert.Equal(t, red, out.NRGBAAt(2, 2))
}

func TestFlatten_TransparentShowsBackdrop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	out := Flatten(src, white)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, white, out.NRGBAAt(x, y))
		}
	}
}

func TestFlatten_SemiTransparentBlends(t *testing.T) {
	assert := assert.New(t)

	src := solid(4, 4, color.NRGBA{R: 0xff, A: 0x80})
	out := Flatten(src, white)
	got := out.NRGBAAt(0, 0)

	assert.Equal(uint8(0xff), got.A)
	// Every channel lands between the source and the backdrop.
	assert.Greater(got.G, uint8(0))
	assert.Less(got.G, uint8(0xff))
	assert.Equal(got.G, got.B)
	assert.Greater(got.R, got.G)
}
