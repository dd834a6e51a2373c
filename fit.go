package vectra

import (
	"fmt"
	"strings"
)

// BezierSegment is a cubic curve with its four control points.
type BezierSegment struct {
	P0, C1, C2, P3 Point
}

// bezierFromPolyline synthesizes one cubic Bezier per consecutive
// vertex pair, placing the control points at 1/3 and 2/3 along the
// chord. A first-order tangent approximation is enough for flat-color
// artwork where the curvature is gentle, and it keeps the fitter
// numerically trivial and side-effect free.
func bezierFromPolyline(pts []Point, closed bool) []BezierSegment {
	if len(pts) < 2 {
		return nil
	}

	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}

	beziers := make([]BezierSegment, 0, segs)
	for i := 0; i < segs; i++ {
		p0 := pts[i%n]
		p3 := pts[(i+1)%n]
		tx, ty := p3.X-p0.X, p3.Y-p0.Y
		beziers = append(beziers, BezierSegment{
			P0: p0,
			C1: Point{p0.X + tx/3, p0.Y + ty/3},
			C2: Point{p0.X + 2*tx/3, p0.Y + 2*ty/3},
			P3: p3,
		})
	}
	return beziers
}

// pathData serializes a closed polygon into an SVG path description of
// cubic curves. Coordinates are emitted with two decimals.
func pathData(pts []Point) string {
	beziers := bezierFromPolyline(pts, true)
	if len(beziers) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "M%.2f,%.2f", beziers[0].P0.X, beziers[0].P0.Y)
	for _, b := range beziers {
		fmt.Fprintf(&sb, " C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
			b.C1.X, b.C1.Y, b.C2.X, b.C2.Y, b.P3.X, b.P3.Y)
	}
	sb.WriteString(" Z")
	return sb.String()
}

// nodeCount returns the number of path nodes a polygon contributes to
// the output document.
func nodeCount(pts []Point) int {
	return len(pts)
}
