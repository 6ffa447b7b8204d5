package expreplay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestSumTreeTotalAndMin(t *testing.T) {
	tree, err := NewSumTree(5, 1.0, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tree.Total())
	assert.True(t, math.IsInf(tree.Min(), 1))

	priorities := []float64{3, 1, 4, 1.5, 9}
	for i, p := range priorities {
		tree.Set(i, p)
	}
	assert.InDelta(t, 18.5, tree.Total(), 1e-12)
	assert.Equal(t, 1.0, tree.Min())

	tree.Set(1, 10)
	assert.InDelta(t, 27.5, tree.Total(), 1e-12)
	assert.Equal(t, 1.5, tree.Min())
}

func TestSumTreeAlpha(t *testing.T) {
	tree, err := NewSumTree(2, 0.5, 1e-6)
	require.NoError(t, err)

	tree.Set(0, 4)
	tree.Set(1, 9)
	assert.InDelta(t, 2.0, tree.Get(0), 1e-12)
	assert.InDelta(t, 3.0, tree.Get(1), 1e-12)
	assert.InDelta(t, 5.0, tree.Total(), 1e-12)
}

func TestSumTreeClampsPriority(t *testing.T) {
	const eps = 1e-3
	tree, err := NewSumTree(3, 0.6, eps)
	require.NoError(t, err)

	tree.Set(0, 0)
	tree.Set(1, -2)
	tree.Set(2, math.NaN())
	for i := 0; i < 3; i++ {
		assert.Greater(t, tree.Get(i), 0.0)
		assert.InDelta(t, math.Pow(eps, 0.6), tree.Get(i), 1e-15)
	}
}

func TestSumTreeUpdateLocality(t *testing.T) {
	tree, err := NewSumTree(7, 0.7, 1e-6)
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		tree.Set(i, float64(i+1))
	}

	before := make([]float64, 7)
	for i := range before {
		before[i] = tree.Get(i)
	}

	tree.Set(3, 100)
	sum := 0.0
	for i := range before {
		if i == 3 {
			assert.InDelta(t, math.Pow(100, 0.7), tree.Get(i), 1e-12)
		} else {
			assert.Equal(t, before[i], tree.Get(i), "leaf %v changed", i)
		}
		sum += tree.Get(i)
	}
	assert.InDelta(t, sum, tree.Total(), 1e-9)
}

func TestSumTreeFind(t *testing.T) {
	tree, err := NewSumTree(4, 1.0, 1e-6)
	require.NoError(t, err)
	for i, p := range []float64{1, 2, 3, 4} {
		tree.Set(i, p)
	}

	tests := []struct {
		value float64
		want  int
	}{
		{0, 0},
		{0.999, 0},
		{1, 1},
		{2.5, 1},
		{3, 2},
		{5.999, 2},
		{6, 3},
		{9.999, 3},
		{10, 3},
		{50, 3},
		{-1, 0},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, tree.Find(test.value), "find(%v)",
			test.value)
	}
}

func TestSumTreeFindIgnoresUnsetLeaves(t *testing.T) {
	tree, err := NewSumTree(8, 1.0, 1e-6)
	require.NoError(t, err)
	tree.Set(0, 1)
	tree.Set(1, 1)

	assert.Equal(t, 1, tree.Find(tree.Total()))
	assert.Equal(t, 1, tree.Find(math.Nextafter(tree.Total(), 0)))
}

func TestSumTreeSamplingDistribution(t *testing.T) {
	const alpha = 0.6
	priorities := []float64{0.5, 1, 2, 4, 8}

	tree, err := NewSumTree(len(priorities), alpha, 1e-6)
	require.NoError(t, err)
	total := 0.0
	for i, p := range priorities {
		tree.Set(i, p)
		total += math.Pow(p, alpha)
	}

	const draws = 200000
	rng := rand.New(rand.NewSource(7))
	counts := make([]float64, len(priorities))
	for i := 0; i < draws; i++ {
		counts[tree.Find(rng.Float64()*tree.Total())]++
	}

	for i, p := range priorities {
		want := math.Pow(p, alpha) / total
		assert.InDelta(t, want, counts[i]/draws, 0.005, "slot %v", i)
	}
}

func TestSumTreePanics(t *testing.T) {
	tree, err := NewSumTree(2, 1.0, 1e-6)
	require.NoError(t, err)

	assert.Panics(t, func() { tree.Find(0) })
	assert.Panics(t, func() { tree.Set(2, 1) })
	assert.Panics(t, func() { tree.Get(-1) })
}

func TestNewSumTreeErrors(t *testing.T) {
	_, err := NewSumTree(0, 1, 1e-6)
	assert.Error(t, err)
	_, err = NewSumTree(1, -1, 1e-6)
	assert.Error(t, err)
	_, err = NewSumTree(1, 1, 0)
	assert.Error(t, err)
}
