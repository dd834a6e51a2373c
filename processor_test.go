package vectra

import (
	"bytes"
	"image"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// squareFixture is a black square centered on a white canvas.
func squareFixture(t *testing.T) []byte {
	t.Helper()
	img := uniformImage(60, 60, white)
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.SetNRGBA(x, y, black)
		}
	}
	return encodePNG(t, img)
}

func TestVectorize_BlackSquareOnWhite(t *testing.T) {
	assert := assert.New(t)

	p := &Processor{MaxColors: 2}
	out, met, err := p.Vectorize(squareFixture(t))
	assert.NoError(err)

	svg := string(out)
	assert.Contains(svg, `viewBox="0 0 180 180"`)
	assert.Contains(svg, `fill-rule="evenodd"`)

	assert.Equal(60, met.SourceWidth)
	assert.Equal(3, met.Upsample)
	assert.Equal(180, met.Width)
	assert.Equal(2, met.Colors)
	assert.GreaterOrEqual(met.ShapeCount, 1)
	assert.Greater(met.NodeCount, 0)

	// Both fill colors stay close to the two input colors.
	fills := parseFills(t, svg)
	assert.Len(fills, 2)
	sawDark, sawLight := false, false
	for _, c := range fills {
		switch {
		case colorDist(c, black) <= 3*40*40:
			sawDark = true
		case colorDist(c, white) <= 3*40*40:
			sawLight = true
		}
	}
	assert.True(sawDark, "no fill close to the square color")
	assert.True(sawLight, "no fill close to the background color")
}

// parseFills collects the distinct fill attribute colors of a document.
func parseFills(t *testing.T, svg string) []color.NRGBA {
	t.Helper()

	re := regexp.MustCompile(`fill="#([0-9a-f]{6})"`)
	seen := map[color.NRGBA]bool{}
	var fills []color.NRGBA
	for _, m := range re.FindAllStringSubmatch(svg, -1) {
		v, err := strconv.ParseUint(m[1], 16, 32)
		assert.NoError(t, err)
		c := color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
		if !seen[c] {
			seen[c] = true
			fills = append(fills, c)
		}
	}
	return fills
}

func TestBlackSquareForegroundArea(t *testing.T) {
	assert := assert.New(t)

	ras, err := normalize(squareFixture(t))
	assert.NoError(err)

	dehalo(ras.img, dehaloDistLogo, dehaloGrowLogo)
	palette, labels := quantize(ras.img, 2)
	assert.Len(palette, 2)

	dark := 0
	for i := range palette {
		if palette[i].Luminance() < palette[dark].Luminance() {
			dark = i
		}
	}

	contours := extractContours(maskForLabel(labels, uint8(dark)), 1, false)
	assert.NotEmpty(contours)

	area := 0.0
	for i := range contours {
		if !contours[i].Hole {
			area += contours[i].Area()
		}
	}
	// The 20x20 source square lands at 60x60 working pixels after the
	// 3x upsample; resampling and halo suppression nibble the boundary.
	assert.InDelta(3600, area, 500)
}

func TestVectorize_Deterministic(t *testing.T) {
	data := squareFixture(t)

	p := &Processor{}
	a, _, err := p.Vectorize(data)
	assert.NoError(t, err)
	b, _, err := p.Vectorize(data)
	assert.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestVectorize_BlankImageYieldsEmptyDocument(t *testing.T) {
	assert := assert.New(t)

	p := &Processor{}
	out, met, err := p.Vectorize(encodePNG(t, uniformImage(40, 40, white)))
	assert.NoError(err)

	assert.Equal(0, met.ShapeCount)
	assert.Contains(string(out), "<svg")
	assert.Contains(string(out), "</svg>")
}

func TestVectorize_InputErrors(t *testing.T) {
	p := &Processor{}

	_, _, err := p.Vectorize(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, _, err = p.Vectorize([]byte("garbage"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestVectorize_RingKeepsItsHole(t *testing.T) {
	img := uniformImage(90, 90, white)
	for y := 15; y < 75; y++ {
		for x := 15; x < 75; x++ {
			img.SetNRGBA(x, y, black)
		}
	}
	for y := 35; y < 55; y++ {
		for x := 35; x < 55; x++ {
			img.SetNRGBA(x, y, white)
		}
	}

	p := &Processor{}
	out, met, err := p.Vectorize(encodePNG(t, img))
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, met.ShapeCount, 2)

	// The dark ring renders as one path with a hole subpath.
	assert.Contains(t, string(out), "Z M")
}

func TestVectorize_CustomTracer(t *testing.T) {
	tracer := &countingTracer{}
	p := &Processor{Tracer: tracer}

	_, met, err := p.Vectorize(squareFixture(t))
	assert.NoError(t, err)
	assert.Equal(t, met.Colors, tracer.calls)
}

type countingTracer struct {
	calls int
}

func (t *countingTracer) Trace(mask *image.Gray) ([]Contour, error) {
	t.calls++
	return nil, nil
}

func TestVectorize_StrokeOverlay(t *testing.T) {
	p := &Processor{StrokeOverlay: true}
	out, _, err := p.Vectorize(squareFixture(t))
	assert.NoError(t, err)

	svg := string(out)
	assert.Contains(t, svg, `stroke-linejoin="round"`)
	assert.Contains(t, svg, `stroke-width="2"`)
}

func TestVectorize_LayerOrder(t *testing.T) {
	data := squareFixture(t)

	p := &Processor{LayerOrder: DarkToLight}
	out, _, err := p.Vectorize(data)
	assert.NoError(t, err)

	// The white background stays at the bottom of the stack even when
	// the order paints dark first.
	svg := string(out)
	iWhite := strings.Index(svg, `fill="#ffffff"`)
	assert.GreaterOrEqual(t, iWhite, 0)
}

func TestProcess_RoundTrip(t *testing.T) {
	var out bytes.Buffer
	p := &Processor{}

	err := p.Process(bytes.NewReader(squareFixture(t)), &out)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "<svg")
}

func TestParamsFor(t *testing.T) {
	assert := assert.New(t)

	logo := paramsFor(PresetLogo)
	safe := paramsFor(PresetSafe)
	sign := paramsFor(PresetSign)

	assert.Greater(safe.dehaloDist, logo.dehaloDist)
	assert.Greater(safe.dehaloGrow, logo.dehaloGrow)
	assert.True(safe.secondPass)
	assert.False(logo.secondPass)
	assert.LessOrEqual(sign.maxK, logo.maxK)
}

func TestNearestPaletteIndex(t *testing.T) {
	palette := Palette{
		{Lab: rgbToLab(white), RGB: white},
		{Lab: rgbToLab(black), RGB: black},
	}
	assert.Equal(t, 0, nearestPaletteIndex(palette, white))
	assert.Equal(t, 1, nearestPaletteIndex(palette, black))
}

func TestErodeGray(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	fillRect(mask, image.Rect(2, 2, 8, 8), 0xff)

	out := erodeGray(mask)
	assert.Equal(t, uint8(0xff), out.GrayAt(4, 4).Y)
	assert.Equal(t, uint8(0), out.GrayAt(2, 2).Y)
}

// lowContrastFixture paints four slightly different gray quadrants. The
// corner samples disagree, so halo suppression leaves the image alone,
// and the two Lab clusters sit close enough to collapse into the binary
// threshold mode.
func lowContrastFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 80, 80))
	shades := []color.NRGBA{
		{R: 196, G: 196, B: 196, A: 0xff},
		{R: 198, G: 198, B: 198, A: 0xff},
		{R: 200, G: 200, B: 200, A: 0xff},
		{R: 202, G: 202, B: 202, A: 0xff},
	}
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			q := 0
			if x >= 40 {
				q++
			}
			if y >= 40 {
				q += 2
			}
			img.SetNRGBA(x, y, shades[q])
		}
	}
	return encodePNG(t, img)
}

func TestVectorize_BinaryModeRecordsTraceTime(t *testing.T) {
	assert := assert.New(t)

	p := &Processor{MaxColors: 2}
	out, met, err := p.Vectorize(lowContrastFixture(t))
	assert.NoError(err)

	assert.Equal(2, met.Colors)
	assert.GreaterOrEqual(met.ShapeCount, 1)
	assert.Greater(met.Durations.Trace, time.Duration(0))
	assert.Contains(string(out), "</svg>")
}

func TestProcessorDefaults(t *testing.T) {
	p := &Processor{}
	assert.Equal(t, SmoothMedium, p.smoothness())
	assert.Equal(t, LightToDark, p.layerOrder())
	assert.Equal(t, 0.0003, p.minAreaFraction())
	assert.Equal(t, 2.0, p.strokeWidth())
}
