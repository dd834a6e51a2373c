package vectra

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/printready/vectra/utils"
)

// Preset bundles tuned pipeline parameters for a class of artwork.
type Preset string

// The supported presets. PresetAuto routes between logo and sign based
// on a distinct color estimate of the input.
const (
	PresetAuto Preset = "auto"
	PresetLogo Preset = "logo"
	PresetSign Preset = "sign"
	PresetSafe Preset = "safe"
)

// autoLogoColors is the distinct color count at which the auto preset
// routes to the logo parameters instead of the sign parameters.
const autoLogoColors = 5

// presetParams are the tuned knobs behind a preset.
type presetParams struct {
	dehaloDist int
	dehaloGrow int
	blurSigma  float64
	minK       int
	maxK       int

	// secondPass re-runs a tighter halo suppression after the palette
	// is fixed, for scanned or photographed material.
	secondPass bool
}

func paramsFor(p Preset) presetParams {
	switch p {
	case PresetSign:
		return presetParams{dehaloDist: dehaloDistLogo, dehaloGrow: dehaloGrowLogo, blurSigma: 0.4, minK: 2, maxK: 3}
	case PresetSafe:
		return presetParams{dehaloDist: dehaloDistSafe, dehaloGrow: dehaloGrowSafe, blurSigma: 1.1, minK: 4, maxK: 6, secondPass: true}
	default:
		return presetParams{dehaloDist: dehaloDistLogo, dehaloGrow: dehaloGrowLogo, blurSigma: 0.7, minK: 2, maxK: 6}
	}
}

// StageDurations records the wall clock time spent in each pipeline stage.
type StageDurations struct {
	Normalize  time.Duration
	Dehalo     time.Duration
	Quantize   time.Duration
	Regularize time.Duration
	Trace      time.Duration
	Compose    time.Duration
}

// Metrics summarizes one vectorization run.
type Metrics struct {
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
	Upsample     int
	Preset       Preset
	Colors       int
	ShapeCount   int
	NodeCount    int
	Durations    StageDurations
}

// Processor options
type Processor struct {
	// MaxColors caps the palette size; zero picks K automatically.
	MaxColors int

	// MinAreaFraction is the minimum region area kept, as a fraction of
	// the canvas. Zero applies the default of 0.03%.
	MinAreaFraction float64

	Smoothness Smoothness
	LayerOrder LayerOrder
	Preset     Preset

	// StrokeOverlay adds an outline pass above the fills, traced from
	// the darkest palette layer.
	StrokeOverlay bool
	StrokeWidth   float64

	// MinFeaturePx caps the regularization blur so strokes of roughly
	// this width survive the smoothing. Zero disables the cap.
	MinFeaturePx int

	// Tracer overrides the built-in contour extraction. OverlayTracer
	// overrides the engine behind the stroke overlay pass.
	Tracer        Tracer
	OverlayTracer PathTracer

	Spinner *utils.Spinner
}

// Process reads one raster image from r and writes the vectorized SVG
// document to w.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	out, _, err := p.Vectorize(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Vectorize runs the full pipeline over the encoded input image and
// returns the SVG document together with the run metrics. A blank input
// produces a valid document with zero shapes, not an error.
func (p *Processor) Vectorize(data []byte) ([]byte, *Metrics, error) {
	stage := time.Now()
	ras, err := normalize(data)
	if err != nil {
		return nil, nil, err
	}

	img := ras.img
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	met := &Metrics{
		SourceWidth:  ras.origWidth,
		SourceHeight: ras.origHeight,
		Width:        w,
		Height:       h,
		Upsample:     ras.upsample,
	}
	met.Durations.Normalize = time.Since(stage)

	bg, ok := sampleBackground(img)
	if !ok {
		bg = backgroundColor
	}
	distinct := estimateDistinctColors(img, bg)

	preset := p.Preset
	if preset != PresetLogo && preset != PresetSign && preset != PresetSafe {
		preset = PresetSign
		if distinct >= autoLogoColors {
			preset = PresetLogo
		}
	}
	met.Preset = preset
	pp := paramsFor(preset)

	stage = time.Now()
	if dbg, ok := dehalo(img, pp.dehaloDist, pp.dehaloGrow); ok {
		bg = dbg
	}
	met.Durations.Dehalo = time.Since(stage)

	k := p.MaxColors
	if k > 0 {
		k = utils.Clamp(k, 2, 8)
	} else {
		k = utils.Max(chooseK(distinct, pp.maxK), pp.minK)
	}

	stage = time.Now()
	work := cloneNRGBA(img)
	palette, _ := quantize(work, k)
	met.Durations.Quantize = time.Since(stage)

	minAreaPx := p.minAreaFraction() * float64(w) * float64(h)
	smooth := p.smoothness()

	var (
		layers  []renderLayer
		overlay *strokeOverlay
	)

	if palette.isDegenerate() {
		// Effectively monochrome input: the Lab clusters collapsed, so a
		// brightness threshold separates ink from paper more reliably
		// than the clustering did. Binarization works on the dehaloed
		// image, not on the repainted clone.
		mask, bpal, ok := binarize(img)
		if ok {
			stage = time.Now()
			contours := extractContours(mask, minAreaPx, false)
			paths, shapes, nodes := buildPaths(contours, smooth)
			met.Durations.Trace = time.Since(stage)
			met.Colors = 2
			met.ShapeCount = shapes
			met.NodeCount = nodes

			layers = []renderLayer{
				{color: bpal[0].RGB, luminance: bpal[0].Luminance(), canvasBase: true, paths: []string{canvasPath(w, h)}},
				{color: bpal[1].RGB, luminance: bpal[1].Luminance(), paths: paths},
			}

			if p.StrokeOverlay {
				overlay, err = p.traceOverlay(mask, bpal[1].RGB)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	} else {
		stage = time.Now()
		reg, labels := regularize(work, palette, pp.blurSigma, p.MinFeaturePx)
		if pp.secondPass {
			if _, ok := dehalo(reg, pp.dehaloDist/2, 1); ok {
				labels = snapToPalette(reg, palette)
			}
		}
		met.Durations.Regularize = time.Since(stage)
		met.Colors = len(palette)

		bgLabel := nearestPaletteIndex(palette, bg)

		stage = time.Now()
		for label := range palette {
			mask := maskForLabel(labels, uint8(label))
			allowCanvas := label == bgLabel

			var contours []Contour
			if p.Tracer != nil {
				raw, err := p.Tracer.Trace(mask)
				if err != nil {
					return nil, nil, err
				}
				contours = filterContours(raw, w, h, minAreaPx, allowCanvas)
			} else {
				contours = extractContours(mask, minAreaPx, allowCanvas)
			}

			paths, shapes, nodes := buildPaths(contours, smooth)
			met.ShapeCount += shapes
			met.NodeCount += nodes

			layers = append(layers, renderLayer{
				color:      palette[label].RGB,
				luminance:  palette[label].Luminance(),
				canvasBase: allowCanvas,
				paths:      paths,
			})
		}
		met.Durations.Trace = time.Since(stage)

		if p.StrokeOverlay {
			darkest := 0
			for i := range palette {
				if palette[i].Luminance() < palette[darkest].Luminance() {
					darkest = i
				}
			}
			overlay, err = p.traceOverlay(maskForLabel(labels, uint8(darkest)), palette[darkest].RGB)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	stage = time.Now()
	var buf bytes.Buffer
	composeSVG(&buf, w, h, layers, p.layerOrder(), overlay)
	met.Durations.Compose = time.Since(stage)

	return buf.Bytes(), met, nil
}

// traceOverlay vectorizes the given layer mask with the overlay engine.
// The mask is eroded first so the stroke hugs the inside of the shape
// instead of widening it.
func (p *Processor) traceOverlay(mask *image.Gray, c color.NRGBA) (*strokeOverlay, error) {
	mask = erodeGray(erodeGray(mask))

	tracer := p.OverlayTracer
	if tracer == nil {
		tracer = gotraceTracer{}
	}
	paths, err := tracer.TracePaths(mask)
	if err != nil {
		return nil, err
	}
	return &strokeOverlay{color: c, width: p.strokeWidth(), paths: paths}, nil
}

// buildPaths simplifies the contours, fits the curves and merges each
// outer contour with its hole subpaths into one path description.
func buildPaths(contours []Contour, s Smoothness) (paths []string, shapes, nodes int) {
	simplified := make([][]Point, len(contours))
	for i := range contours {
		simplified[i] = simplifyContour(&contours[i], s)
	}

	for i := range contours {
		if contours[i].Hole || simplified[i] == nil {
			continue
		}
		d := pathData(simplified[i])
		nodes += nodeCount(simplified[i])

		for j := range contours {
			if contours[j].Hole && contours[j].Parent == i && simplified[j] != nil {
				d += " " + pathData(simplified[j])
				nodes += nodeCount(simplified[j])
			}
		}
		paths = append(paths, d)
		shapes++
	}
	return paths, shapes, nodes
}

// nearestPaletteIndex returns the palette entry closest to c in Lab space.
func nearestPaletteIndex(palette Palette, c color.NRGBA) int {
	target := rgbToLab(c)
	best, bestDist := 0, labDistSq(target, palette[0].Lab)
	for i := 1; i < len(palette); i++ {
		if d := labDistSq(target, palette[i].Lab); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// erodeGray shrinks the nonzero pixels of a mask with a 3x3 window.
func erodeGray(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			on := true
			for dy := -1; dy <= 1 && on; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h || src.GrayAt(nx, ny).Y == 0 {
						on = false
						break
					}
				}
			}
			if on {
				dst.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return dst
}

// cloneNRGBA returns a deep copy of the image.
func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func (p *Processor) smoothness() Smoothness {
	if p.Smoothness == "" {
		return SmoothMedium
	}
	return p.Smoothness
}

func (p *Processor) layerOrder() LayerOrder {
	if p.LayerOrder == "" {
		return LightToDark
	}
	return p.LayerOrder
}

func (p *Processor) minAreaFraction() float64 {
	if p.MinAreaFraction <= 0 {
		return 0.0003
	}
	return p.MinAreaFraction
}

func (p *Processor) strokeWidth() float64 {
	if p.StrokeWidth <= 0 {
		return 2
	}
	return p.StrokeWidth
}
