package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/printready/vectra"
	"github.com/printready/vectra/utils"
)

const HelpBanner = `
┬  ┬┌─┐┌─┐┌┬┐┬─┐┌─┐
└┐┌┘├┤ │   │ ├┬┘├─┤
 └┘ └─┘└─┘ ┴ ┴└─┴ ┴

Raster to SVG vectorizer for print-ready artwork.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source")
	destination = flag.String("out", pipeName, "Destination")
	colors      = flag.Int("colors", 0, "Maximum palette size, 0 = automatic")
	minArea     = flag.Float64("minarea", 0, "Minimum region area as a fraction of the canvas, 0 = default")
	smooth      = flag.String("smooth", "medium", "Boundary smoothness (low, medium, high)")
	order       = flag.String("order", "light_to_dark", "Layer paint order (light_to_dark, dark_to_light)")
	preset      = flag.String("preset", "auto", "Artwork preset (auto, logo, sign, safe)")
	stroke      = flag.Bool("stroke", false, "Add a stroke overlay above the fills")
	strokeWidth = flag.Float64("strokewidth", 2, "Stroke overlay width")
	minFeature  = flag.Int("minfeature", 0, "Minimum feature width in pixels to preserve, 0 = off")
	tracerCmd   = flag.String("tracer", "", "External tracer command for the stroke overlay, {in}/{out} substituted")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if !utils.Contains([]string{"low", "medium", "high"}, *smooth) {
		log.Fatalf(utils.DecorateText("Invalid smoothness level: %q", utils.ErrorMessage), *smooth)
	}
	if !utils.Contains([]string{"light_to_dark", "dark_to_light"}, *order) {
		log.Fatalf(utils.DecorateText("Invalid layer order: %q", utils.ErrorMessage), *order)
	}
	if !utils.Contains([]string{"auto", "logo", "sign", "safe"}, *preset) {
		log.Fatalf(utils.DecorateText("Invalid preset: %q", utils.ErrorMessage), *preset)
	}

	proc := &vectra.Processor{
		MaxColors:       *colors,
		MinAreaFraction: *minArea,
		Smoothness:      vectra.Smoothness(*smooth),
		LayerOrder:      vectra.LayerOrder(*order),
		Preset:          vectra.Preset(*preset),
		StrokeOverlay:   *stroke,
		StrokeWidth:     *strokeWidth,
		MinFeaturePx:    *minFeature,
	}

	if *tracerCmd != "" {
		fields := strings.Fields(*tracerCmd)
		proc.OverlayTracer = &vectra.CommandTracer{
			Command: fields[0],
			Args:    fields[1:],
		}
	}

	proc.Execute(&vectra.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
	})
}
