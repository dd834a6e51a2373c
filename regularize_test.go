package vectra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPalette() Palette {
	return Palette{
		{Lab: rgbToLab(white), RGB: white},
		{Lab: rgbToLab(black), RGB: black},
	}
}

func TestRegularize_RemovesSpeckles(t *testing.T) {
	assert := assert.New(t)
	palette := testPalette()

	img := uniformImage(20, 20, white)
	img.SetNRGBA(10, 10, black)

	out, m := regularize(img, palette, 0, 0)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			assert.Equal(white, out.NRGBAAt(x, y))
			assert.Equal(uint8(0), m.At(x, y))
		}
	}
}

func TestRegularize_StaysOnPalette(t *testing.T) {
	palette := testPalette()

	img := uniformImage(24, 24, white)
	for y := 6; y < 18; y++ {
		for x := 6; x < 18; x++ {
			img.SetNRGBA(x, y, black)
		}
	}

	out, m := regularize(img, palette, 1.1, 0)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			c := out.NRGBAAt(x, y)
			assert.Contains(t, []uint8{0, 1}, m.At(x, y))
			assert.True(t, c == white || c == black, "pixel off palette at %d,%d: %v", x, y, c)
		}
	}

	// The body of the shape survives the smoothing.
	assert.Equal(t, black, out.NRGBAAt(12, 12))
}

func TestRegularize_MinFeatureCapsBlur(t *testing.T) {
	palette := testPalette()

	// A 2 pixel wide vertical stroke.
	img := uniformImage(24, 24, white)
	for y := 2; y < 22; y++ {
		img.SetNRGBA(11, y, black)
		img.SetNRGBA(12, y, black)
	}

	out, _ := regularize(cloneNRGBA(img), palette, 3.0, 2)

	// With the cap the stroke keeps some ink in its middle section.
	kept := 0
	for y := 8; y < 16; y++ {
		if out.NRGBAAt(11, y) == black || out.NRGBAAt(12, y) == black {
			kept++
		}
	}
	assert.Greater(t, kept, 0)
}

func TestRankFilters(t *testing.T) {
	img := uniformImage(5, 5, white)
	img.SetNRGBA(2, 2, black)

	// Erosion spreads the dark pixel, dilation removes it.
	eroded := minFilter3(img)
	assert.Equal(t, black, eroded.NRGBAAt(1, 1))
	assert.Equal(t, black, eroded.NRGBAAt(3, 3))
	assert.Equal(t, white, eroded.NRGBAAt(0, 4))

	dilated := maxFilter3(img)
	assert.Equal(t, white, dilated.NRGBAAt(2, 2))
}
