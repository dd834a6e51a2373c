package vectra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBezierFromPolyline_Closed(t *testing.T) {
	assert := assert.New(t)

	pts := []Point{{0, 0}, {9, 0}, {9, 9}, {0, 9}}
	segs := bezierFromPolyline(pts, true)
	assert.Len(segs, 4)

	// Control points sit at the chord thirds.
	first := segs[0]
	assert.Equal(Point{0, 0}, first.P0)
	assert.Equal(Point{3, 0}, first.C1)
	assert.Equal(Point{6, 0}, first.C2)
	assert.Equal(Point{9, 0}, first.P3)

	// The last segment closes back onto the start point.
	assert.Equal(Point{0, 0}, segs[3].P3)
}

func TestBezierFromPolyline_Open(t *testing.T) {
	pts := []Point{{0, 0}, {3, 0}, {3, 3}}
	segs := bezierFromPolyline(pts, false)
	assert.Len(t, segs, 2)
	assert.Equal(t, Point{3, 3}, segs[1].P3)

	assert.Nil(t, bezierFromPolyline([]Point{{1, 1}}, true))
}

func TestPathData(t *testing.T) {
	assert := assert.New(t)

	d := pathData([]Point{{0, 0}, {10, 0}, {10, 10}})
	assert.True(strings.HasPrefix(d, "M0.00,0.00"))
	assert.True(strings.HasSuffix(d, "Z"))
	assert.Equal(3, strings.Count(d, "C"))

	assert.Empty(pathData(nil))
}
