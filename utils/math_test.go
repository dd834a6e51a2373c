package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, 5, Max(2, 5))
	assert.Equal(t, -1.5, Min(-1.5, 0.0))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 3.5, Abs(3.5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2, Clamp(1, 2, 8))
	assert.Equal(t, 8, Clamp(9, 2, 8))
	assert.Equal(t, 5, Clamp(5, 2, 8))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{".jpg", ".png"}, ".png"))
	assert.False(t, Contains([]string{".jpg", ".png"}, ".svg"))
}
