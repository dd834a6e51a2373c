package vectra

import "math"

// Smoothness selects how aggressively the region boundaries are
// flattened before curve fitting.
type Smoothness string

// The supported smoothness levels.
const (
	SmoothLow    Smoothness = "low"
	SmoothMedium Smoothness = "medium"
	SmoothHigh   Smoothness = "high"
)

// epsilonFor maps the smoothness knob to a Douglas-Peucker tolerance in
// pixels. The low and medium levels use fixed tolerances that preserve
// corners; the high level scales with the contour perimeter to flatten
// low-curvature wiggles on large shapes, capped so it cannot erase the
// shape itself.
func epsilonFor(s Smoothness, perimeter float64) float64 {
	switch s {
	case SmoothLow:
		return 0.5
	case SmoothHigh:
		eps := math.Max(2.0, 0.01*perimeter)
		if limit := 0.025 * perimeter; limit > 2.0 && eps > limit {
			eps = limit
		}
		return eps
	default:
		return 1.0
	}
}

// perimeter returns the closed polygon perimeter.
func perimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
	}
	return sum
}

// simplifyPolyline decimates a polyline with the Ramer-Douglas-Peucker
// scheme: the point with the maximum perpendicular distance from the
// chord splits the span recursively; spans whose maximum distance stays
// under eps collapse to their two endpoints.
func simplifyPolyline(pts []Point, eps float64) []Point {
	if len(pts) < 3 {
		return pts
	}

	maxDist, idx := 0.0, 0
	for i := 1; i < len(pts)-1; i++ {
		if d := perpDist(pts[i], pts[0], pts[len(pts)-1]); d > maxDist {
			maxDist, idx = d, i
		}
	}

	if maxDist <= eps {
		return []Point{pts[0], pts[len(pts)-1]}
	}

	left := simplifyPolyline(pts[:idx+1], eps)
	right := simplifyPolyline(pts[idx:], eps)
	return append(left[:len(left)-1], right...)
}

// perpDist returns the distance from p to the segment a-b, clamped to
// the segment endpoints.
func perpDist(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	return math.Hypot(p.X-cx, p.Y-cy)
}

// simplifyContour decimates a closed contour. Polygons collapsing to
// fewer than 3 points are degenerate and reported as nil; a 2-point
// "polygon" is not a renderable filled region.
func simplifyContour(c *Contour, s Smoothness) []Point {
	eps := epsilonFor(s, perimeter(c.Points))
	pts := simplifyPolyline(c.Points, eps)
	if len(pts) < 3 {
		return nil
	}
	return pts
}
