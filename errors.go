package vectra

import "errors"

// Error taxonomy of the vectorization pipeline. Recoverable conditions
// (degenerate quantization, an empty contour set) are handled by the
// per-stage fallbacks and never escape; everything below is caller visible.
var (
	// ErrEmptyInput is returned on a zero-length upload.
	ErrEmptyInput = errors.New("vectra: empty input")

	// ErrDecode is returned when the input bytes are not a supported or valid image.
	ErrDecode = errors.New("vectra: unsupported or corrupt image")

	// ErrTracer is returned when an external tracer exited non-zero,
	// timed out or did not produce a usable SVG document.
	ErrTracer = errors.New("vectra: external tracer failed")
)
