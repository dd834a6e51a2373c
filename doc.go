/*
Package vectra converts raster images (logos, signs, flat-color artwork)
into compact SVG documents: a small set of flat-colored closed regions
with smooth boundaries.

The pipeline is a single forward pass: decode and normalize the input,
suppress anti-aliasing halos around the background, quantize the colors
to a small perceptual palette, regularize the quantized regions, extract
hierarchical contours (outer boundaries and holes), simplify and fit the
boundaries to cubic curves, and compose the layered SVG output.

The package provides a command line interface, supporting various flags
for the different vectorization presets. To check the supported commands type:

	$ vectra --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"
		"os"

		"github.com/printready/vectra"
	)

	func main() {
		p := &vectra.Processor{
			// Initialize struct variables
		}

		if err := p.Process(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Error vectorizing image: %v", err)
		}
	}
*/
package vectra
