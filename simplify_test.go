package vectra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerpDist(t *testing.T) {
	assert.Equal(t, 5.0, perpDist(Point{5, 5}, Point{0, 0}, Point{10, 0}))
	assert.Equal(t, 5.0, perpDist(Point{15, 0}, Point{0, 0}, Point{10, 0}))
	assert.Equal(t, 5.0, perpDist(Point{3, 4}, Point{7, 7}, Point{7, 7}))
}

func TestSimplifyPolyline_CollapsesCollinearRuns(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	got := simplifyPolyline(pts, 0.5)
	assert.Equal(t, []Point{{0, 0}, {4, 0}}, got)
}

func TestSimplifyPolyline_KeepsCorners(t *testing.T) {
	pts := []Point{{0, 0}, {5, 0}, {10, 0}, {10, 5}, {10, 10}, {5, 10}, {0, 10}}
	got := simplifyPolyline(pts, 0.5)

	assert.Contains(t, got, Point{10, 0})
	assert.Contains(t, got, Point{10, 10})
	assert.NotContains(t, got, Point{5, 0})
	assert.NotContains(t, got, Point{10, 5})
}

func TestSimplifyPolyline_EpsilonIsMonotonic(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0.4}, {2, -0.3}, {3, 0.6}, {4, 0}, {5, 1.2}, {6, 0}}

	prev := len(pts) + 1
	for _, eps := range []float64{0.1, 0.5, 1.0, 5.0} {
		got := simplifyPolyline(pts, eps)
		assert.LessOrEqual(t, len(got), prev)
		prev = len(got)
	}
}

func TestSimplifyContour_DropsDegeneratePolygons(t *testing.T) {
	c := &Contour{Points: []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}}
	assert.Nil(t, simplifyContour(c, SmoothHigh))

	square := &Contour{Points: []Point{{0, 0}, {20, 0}, {20, 20}, {0, 20}}}
	got := simplifyContour(square, SmoothLow)
	assert.Len(t, got, 4)
}

func TestEpsilonFor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.5, epsilonFor(SmoothLow, 100))
	assert.Equal(1.0, epsilonFor(SmoothMedium, 100))
	assert.Equal(1.0, epsilonFor(Smoothness(""), 100))

	// High scales with the perimeter but stays bounded.
	assert.Equal(2.0, epsilonFor(SmoothHigh, 50))
	assert.Equal(4.0, epsilonFor(SmoothHigh, 400))
	assert.LessOrEqual(epsilonFor(SmoothHigh, 10000), 0.025*10000)
}

func TestPerimeter(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.Equal(t, 40.0, perimeter(square))
	assert.Equal(t, 0.0, perimeter([]Point{{3, 3}}))
}
