package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxSlice(t *testing.T) {
	tests := []struct {
		in      []float64
		max     float64
		indices []int
	}{
		{[]float64{1}, 1, []int{0}},
		{[]float64{3, 1, 2}, 3, []int{0}},
		{[]float64{1, 3, 3}, 3, []int{1, 2}},
		{[]float64{2, 2, 2}, 2, []int{0, 1, 2}},
	}

	for _, test := range tests {
		max, indices := MaxSlice(test.in)
		assert.Equal(t, test.max, max)
		assert.Equal(t, test.indices, indices, "maxSlice(%v)", test.in)
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(5, -1, 1))
	assert.Equal(t, -1.0, Clip(-5, -1, 1))
	assert.Equal(t, 0.5, Clip(0.5, -1, 1))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1, -2, 0))
	assert.False(t, IsFinite(1, math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}
