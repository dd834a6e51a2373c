package vectra

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBorderTracer(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	fillRect(mask, image.Rect(5, 5, 15, 15), 0xff)

	contours, err := borderTracer{}.Trace(mask)
	assert.NoError(t, err)
	assert.Len(t, contours, 1)
	assert.False(t, contours[0].Hole)
}

func TestGotraceTracer(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 40, 40))
	fillRect(mask, image.Rect(10, 10, 30, 30), 0xff)

	paths, err := gotraceTracer{}.TracePaths(mask)
	assert.NoError(t, err)
	assert.NotEmpty(t, paths)
}

func TestCommandTracer_MissingBinary(t *testing.T) {
	tracer := &CommandTracer{
		Command: "vectra-test-no-such-binary",
		Args:    []string{"{in}", "-o", "{out}"},
		Timeout: time.Second,
	}

	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	fillRect(mask, image.Rect(2, 2, 8, 8), 0xff)

	_, err := tracer.TracePaths(mask)
	assert.ErrorIs(t, err, ErrTracer)
}

func TestExtractPathData(t *testing.T) {
	assert := assert.New(t)

	doc := []byte(`<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
<path d="M0,0 L5,5 Z"/>
<g transform="scale(1)">
<path d="M1,1 L2,2 Z"/>
</g>
</svg>`)

	paths, err := extractPathData(doc)
	assert.NoError(err)
	assert.Len(paths, 2)
	assert.Contains(paths, "M0,0 L5,5 Z")
	assert.Contains(paths, "M1,1 L2,2 Z")

	_, err = extractPathData([]byte("not xml at all <"))
	assert.Error(err)
}
