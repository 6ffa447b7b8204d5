package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreedySentinel(t *testing.T) {
	p := NewEGreedy(1)
	values := []float64{0.1, 2, -3, 1.5}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 1, p.SelectAction(values, Greedy))
	}
}

func TestZeroEpsilonIsGreedy(t *testing.T) {
	p := NewEGreedy(2)
	values := []float64{5, 2, -3}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 0, p.SelectAction(values, 0))
	}
}

func TestEpsilonOneIsUniform(t *testing.T) {
	p := NewEGreedy(3)
	values := []float64{5, 2, -3, 0}

	const n = 40000
	counts := make([]float64, len(values))
	for i := 0; i < n; i++ {
		counts[p.SelectAction(values, 1)]++
	}
	for _, c := range counts {
		assert.InDelta(t, 0.25, c/n, 0.01)
	}
}

func TestTiesBrokenRandomly(t *testing.T) {
	p := NewEGreedy(4)
	values := []float64{1, 3, 3, 0}

	seen := map[int]int{}
	for i := 0; i < 1000; i++ {
		seen[p.SelectAction(values, Greedy)]++
	}
	assert.Len(t, seen, 2)
	assert.Greater(t, seen[1], 0)
	assert.Greater(t, seen[2], 0)
}

func TestSeeded(t *testing.T) {
	a, b := NewEGreedy(5), NewEGreedy(5)
	values := []float64{1, 2, 3}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.SelectAction(values, 0.5),
			b.SelectAction(values, 0.5))
	}
}
