package vectra

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gotranspile/gotrace"
	rsvg "github.com/rustyoz/svg"
	"golang.org/x/image/bmp"
)

// Tracer turns a binary region mask into closed contours. The built-in
// tracer runs in process; alternative implementations can delegate to an
// external engine as long as they report hole contours with their parent
// linkage intact.
type Tracer interface {
	Trace(mask *image.Gray) ([]Contour, error)
}

// borderTracer is the default hole-aware tracer.
type borderTracer struct{}

func (borderTracer) Trace(mask *image.Gray) ([]Contour, error) {
	return findContours(mask), nil
}

// PathTracer produces ready SVG path descriptions from a mask. It backs
// the optional stroke overlay pass, where the curve quality of a potrace
// style engine is worth the extra dependency.
type PathTracer interface {
	TracePaths(mask *image.Gray) ([]string, error)
}

// gotraceTracer vectorizes a mask with the potrace port and extracts the
// path data from its SVG rendering.
type gotraceTracer struct{}

func (gotraceTracer) TracePaths(mask *image.Gray) ([]string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}

	return extractPathData(buf.Bytes())
}

// CommandTracer shells out to an external tracing binary. The command is
// invoked with the argument list after substituting {in} with a BMP mask
// file and {out} with the expected SVG output file. A non-zero exit,
// a timeout or unparsable output is reported as a tracer error with the
// captured stderr attached.
type CommandTracer struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func (t *CommandTracer) TracePaths(mask *image.Gray) ([]string, error) {
	dir, err := os.MkdirTemp("", "vectra-trace")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "mask.bmp")
	out := filepath.Join(dir, "mask.svg")

	fin, err := os.Create(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}
	if err := bmp.Encode(fin, mask); err != nil {
		fin.Close()
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}
	if err := fin.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}

	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		a = strings.ReplaceAll(a, "{in}", in)
		a = strings.ReplaceAll(a, "{out}", out)
		args[i] = a
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Command, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s",
			ErrTracer, t.Command, err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s produced no output: %v", ErrTracer, t.Command, err)
	}
	if _, err := rsvg.ParseSvg(string(data), "trace", 1.0); err != nil {
		return nil, fmt.Errorf("%w: %s produced invalid svg: %v", ErrTracer, t.Command, err)
	}

	return extractPathData(data)
}

// extractPathData collects the d attribute of every path element in an
// SVG document, whether at top level or nested one group deep.
func extractPathData(data []byte) ([]string, error) {
	type path struct {
		D string `xml:"d,attr"`
	}
	var doc struct {
		Paths   []path `xml:"path"`
		Grouped []path `xml:"g>path"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracer, err)
	}

	var out []string
	for _, p := range append(doc.Paths, doc.Grouped...) {
		if p.D != "" {
			out = append(out, p.D)
		}
	}
	return out, nil
}
