package expreplay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrioritized(t *testing.T, capacity, batchSize int, alpha,
	beta float64) *prioritized {
	store, err := NewStore(capacity, 2)
	require.NoError(t, err)

	p, err := NewPrioritized(store, 1, batchSize, alpha, beta, DefaultEpsilon,
		11)
	require.NoError(t, err)
	return p.(*prioritized)
}

func TestPrioritizedNewSlotsGetMaxPriority(t *testing.T) {
	p := newTestPrioritized(t, 4, 2, 1.0, 0.4)

	p.Add(labelled(0))
	assert.Equal(t, 1.0, p.Priority(0))

	require.NoError(t, p.UpdatePriorities([]int{0}, []float64{-3}))
	assert.InDelta(t, 3+DefaultEpsilon, p.MaxPriority(), 1e-12)

	p.Add(labelled(1))
	assert.InDelta(t, 3+DefaultEpsilon, p.Priority(1), 1e-12)

	// Lowering a priority does not lower the maximum
	require.NoError(t, p.UpdatePriorities([]int{0, 1}, []float64{0.1, 0.2}))
	p.Add(labelled(2))
	assert.InDelta(t, 3+DefaultEpsilon, p.Priority(2), 1e-12)
}

func TestPrioritizedOverwriteResetsPriority(t *testing.T) {
	p := newTestPrioritized(t, 2, 2, 1.0, 0.4)
	p.Add(labelled(0))
	p.Add(labelled(1))
	require.NoError(t, p.UpdatePriorities([]int{0, 1}, []float64{0.5, 0.5}))

	// Slot 0 is overwritten and receives the maximum priority again
	p.Add(labelled(2))
	assert.Equal(t, 1.0, p.Priority(0))
	assert.InDelta(t, 0.5+DefaultEpsilon, p.Priority(1), 1e-12)
}

func TestPrioritizedZeroErrorStaysSampleable(t *testing.T) {
	p := newTestPrioritized(t, 2, 2, 0.6, 0.4)
	p.Add(labelled(0))
	p.Add(labelled(1))

	require.NoError(t, p.UpdatePriorities([]int{0, 1}, []float64{0, 0}))
	assert.Greater(t, p.Priority(0), 0.0)
	assert.Greater(t, p.Priority(1), 0.0)
}

func TestPrioritizedWeights(t *testing.T) {
	p := newTestPrioritized(t, 4, 64, 1.0, 0.5)
	for i := 0; i < 4; i++ {
		p.Add(labelled(float64(i)))
	}
	require.NoError(t, p.UpdatePriorities([]int{0, 1, 2, 3},
		[]float64{0.5, 1, 2, 4}))

	for trial := 0; trial < 20; trial++ {
		b, err := p.Sample()
		require.NoError(t, err)
		require.Equal(t, 64, b.Len())

		sawMin := false
		for i, w := range b.Weights {
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)

			if b.Indices[i] == 0 {
				sawMin = true
				assert.Equal(t, 1.0, w)
			}
		}
		assert.True(t, sawMin)
	}
}

func TestPrioritizedWeightValues(t *testing.T) {
	const beta = 0.4
	p := newTestPrioritized(t, 2, 16, 1.0, beta)
	p.Add(labelled(0))
	p.Add(labelled(1))

	// Priorities 1 and 3 give P = 1/4 and 3/4
	require.NoError(t, p.UpdatePriorities([]int{0, 1},
		[]float64{1 - DefaultEpsilon, 3 - DefaultEpsilon}))

	b, err := p.Sample()
	require.NoError(t, err)

	wMax := math.Pow(2*0.25, -beta)
	for i, index := range b.Indices {
		if index == 0 {
			assert.Equal(t, 1.0, b.Weights[i])
		} else {
			assert.InDelta(t, math.Pow(2*0.75, -beta)/wMax, b.Weights[i], 1e-9)
		}
	}
}

func TestPrioritizedBetaZeroWeightsOne(t *testing.T) {
	p := newTestPrioritized(t, 8, 8, 0.6, 0)
	for i := 0; i < 8; i++ {
		p.Add(labelled(float64(i)))
	}
	require.NoError(t, p.UpdatePriorities([]int{0, 5},
		[]float64{10, 0.01}))

	b, err := p.Sample()
	require.NoError(t, err)
	for _, w := range b.Weights {
		assert.Equal(t, 1.0, w)
	}
}

func TestPrioritizedSetBeta(t *testing.T) {
	p := newTestPrioritized(t, 2, 2, 1.0, 0.4)
	assert.Equal(t, 0.4, p.Beta())
	p.SetBeta(0.9)
	assert.Equal(t, 0.9, p.Beta())
}

func TestPrioritizedSamplingDistribution(t *testing.T) {
	const alpha = 0.7
	priorities := []float64{0.25, 1, 2, 5}

	p := newTestPrioritized(t, len(priorities), 4, alpha, 0.4)
	indices := make([]int, len(priorities))
	errs := make([]float64, len(priorities))
	total := 0.0
	for i, pr := range priorities {
		p.Add(labelled(float64(i)))
		indices[i] = i
		errs[i] = pr - DefaultEpsilon
		total += math.Pow(pr, alpha)
	}
	require.NoError(t, p.UpdatePriorities(indices, errs))

	const batches = 50000
	counts := make([]float64, len(priorities))
	for i := 0; i < batches; i++ {
		b, err := p.Sample()
		require.NoError(t, err)
		for _, index := range b.Indices {
			counts[index]++
		}
	}

	for i, pr := range priorities {
		want := math.Pow(pr, alpha) / total
		have := counts[i] / (batches * 4)
		assert.InDelta(t, want, have, 0.005, "slot %v", i)
	}
}

func TestPrioritizedUpdateErrors(t *testing.T) {
	p := newTestPrioritized(t, 4, 2, 1.0, 0.4)
	p.Add(labelled(0))

	err := p.UpdatePriorities([]int{0, 0}, []float64{1})
	assert.Error(t, err)

	err = p.UpdatePriorities([]int{1}, []float64{1})
	assert.True(t, IsIndexOutOfRange(err))

	err = p.UpdatePriorities([]int{0}, []float64{math.NaN()})
	assert.Error(t, err)

	// Failed updates leave priorities untouched
	assert.Equal(t, 1.0, p.Priority(0))
}

func TestPrioritizedSampleEmpty(t *testing.T) {
	p := newTestPrioritized(t, 4, 2, 1.0, 0.4)
	_, err := p.Sample()
	assert.True(t, IsEmptyBuffer(err))
}

func TestUniformSample(t *testing.T) {
	store, err := NewStore(8, 2)
	require.NoError(t, err)
	u, err := NewUniform(store, 3, 16, 5)
	require.NoError(t, err)

	_, err = u.Sample()
	assert.True(t, IsEmptyBuffer(err))

	u.Add(labelled(0))
	u.Add(labelled(1))
	_, err = u.Sample()
	assert.True(t, IsInsufficientSamples(err))

	u.Add(labelled(2))
	b, err := u.Sample()
	require.NoError(t, err)
	assert.Equal(t, 16, b.Len())
	for i, index := range b.Indices {
		assert.Less(t, index, 3)
		assert.Equal(t, float64(index), b.Rewards[i])
		assert.Equal(t, 1.0, b.Weights[i])
	}
}

func TestConfigCreate(t *testing.T) {
	c := Config{Capacity: 10, MinCapacity: 1, BatchSize: 4}
	r, err := c.Create(3, 1)
	require.NoError(t, err)
	_, ok := r.(Prioritizer)
	assert.False(t, ok)

	c.Prioritized = true
	c.Alpha = 0.6
	c.Beta = 0.4
	c.Epsilon = DefaultEpsilon
	r, err = c.Create(3, 1)
	require.NoError(t, err)
	_, ok = r.(Prioritizer)
	assert.True(t, ok)

	c.Beta = 1.5
	_, err = c.Create(3, 1)
	assert.Error(t, err)
}
