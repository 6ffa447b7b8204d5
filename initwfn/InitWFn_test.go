package initwfn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

func TestHeUBoundsAndSeeding(t *testing.T) {
	init := NewHeU(math.Sqrt2, rand.NewSource(3))
	data := init(tensor.Float64, 8, 16).([]float64)
	require.Len(t, data, 128)

	bound := math.Sqrt2 * math.Sqrt(3.0/8)
	for _, v := range data {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}

	again := NewHeU(math.Sqrt2, rand.NewSource(3))(tensor.Float64, 8, 16)
	assert.Equal(t, data, again)

	other := NewHeU(math.Sqrt2, rand.NewSource(4))(tensor.Float64, 8, 16)
	assert.NotEqual(t, data, other)
}

func TestGlorotUBounds(t *testing.T) {
	data := NewGlorotU(1, rand.NewSource(1))(tensor.Float64, 4, 2).([]float64)
	require.Len(t, data, 8)

	bound := math.Sqrt(6.0 / 6)
	for _, v := range data {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}
}

func TestConfigCreate(t *testing.T) {
	init, err := Config{Type: Const, Gain: 2.5}.Create(rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, init(tensor.Float64, 1, 3))

	init, err = Config{Type: Zeroes}.Create(rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, init(tensor.Float64, 2))

	_, err = Config{Type: "LeCun"}.Create(rand.NewSource(1))
	assert.Error(t, err)

	assert.Panics(t, func() { init(tensor.Float32, 2) })
}
