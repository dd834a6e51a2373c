package vectra

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// LayerOrder controls the paint order of the color layers in the output
// document. Painted-first means bottom of the stack.
type LayerOrder string

// The supported paint orders.
const (
	LightToDark LayerOrder = "light_to_dark"
	DarkToLight LayerOrder = "dark_to_light"
)

// renderLayer is one flat-color layer ready for serialization. A layer
// flagged as the canvas base paints first regardless of the luminance
// ordering; letting a full-canvas background rectangle float to the top
// of the stack would cover every other layer.
type renderLayer struct {
	color      color.NRGBA
	luminance  float64
	canvasBase bool
	paths      []string
}

// strokeOverlay is the optional outline pass drawn above the fills.
type strokeOverlay struct {
	color color.NRGBA
	width float64
	paths []string
}

// hexColor formats a color as a #rrggbb attribute value.
func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// sortLayers orders the layers for painting: the canvas base first, the
// rest by luminance according to the requested direction.
func sortLayers(layers []renderLayer, order LayerOrder) {
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].canvasBase != layers[j].canvasBase {
			return layers[i].canvasBase
		}
		if order == DarkToLight {
			return layers[i].luminance < layers[j].luminance
		}
		return layers[i].luminance > layers[j].luminance
	})
}

// composeSVG serializes the layers into an SVG document with an explicit
// viewBox. Every color group carries the evenodd fill rule so hole
// subpaths punch through their outer contour.
func composeSVG(w io.Writer, width, height int, layers []renderLayer, order LayerOrder, overlay *strokeOverlay) {
	sortLayers(layers, order)

	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width, height)

	for _, l := range layers {
		if len(l.paths) == 0 {
			continue
		}
		canvas.Group(fmt.Sprintf(`fill="%s"`, hexColor(l.color)), `fill-rule="evenodd"`)
		for _, d := range l.paths {
			canvas.Path(d)
		}
		canvas.Gend()
	}

	if overlay != nil && len(overlay.paths) > 0 {
		canvas.Group(`fill="none"`,
			fmt.Sprintf(`stroke="%s"`, hexColor(overlay.color)),
			fmt.Sprintf(`stroke-width="%s"`, strconv.FormatFloat(overlay.width, 'g', -1, 64)),
			`stroke-linejoin="round"`, `stroke-linecap="round"`)
		for _, d := range overlay.paths {
			canvas.Path(d)
		}
		canvas.Gend()
	}

	canvas.End()
}

// canvasPath returns a path description covering the whole canvas, used
// as the base rectangle of the intended background layer.
func canvasPath(width, height int) string {
	return fmt.Sprintf("M0,0 L%d,0 L%d,%d L0,%d Z", width, width, height, height)
}
