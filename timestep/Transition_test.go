package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewTransition(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1, 2})
	first := New(First, 0, obs, 0)

	next := New(Last, 3.5, mat.NewVecDense(2, []float64{4, 5}), 1)
	next.EndType = TerminalStateReached

	tr := NewTransition(first, 1, next)
	assert.Equal(t, []float64{1, 2}, tr.State)
	assert.Equal(t, []float64{4, 5}, tr.NextState)
	assert.Equal(t, 1, tr.Action)
	assert.Equal(t, 3.5, tr.Reward)
	assert.True(t, tr.Done)

	// Observations are copied
	obs.SetVec(0, 10)
	assert.Equal(t, 1.0, tr.State[0])
}

func TestTruncatedIsNotDone(t *testing.T) {
	next := New(Last, 1, mat.NewVecDense(1, []float64{0}), 500)
	next.EndType = Timeout

	assert.True(t, next.Truncated())
	assert.False(t, next.Done())

	tr := NewTransition(New(Mid, 0, mat.NewVecDense(1, nil), 499), 0, next)
	assert.False(t, tr.Done)
}
