package cartpole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

func rollout(t *testing.T, c env.Environment, seed uint64) []float64 {
	step, err := c.Reset(seed)
	require.NoError(t, err)

	obs := mat.VecDenseCopyOf(step.Observation).RawVector().Data
	for i := 0; !step.Last(); i++ {
		step, err = c.Step(i % 2)
		require.NoError(t, err)
		obs = append(obs, mat.VecDenseCopyOf(step.Observation).RawVector().Data...)
	}
	return obs
}

func TestReset(t *testing.T) {
	c, err := env.Make(Name)
	require.NoError(t, err)

	step, err := c.Reset(7)
	require.NoError(t, err)
	assert.True(t, step.First())
	require.Equal(t, Features, step.Observation.Len())
	for i := 0; i < Features; i++ {
		assert.LessOrEqual(t, step.Observation.AtVec(i), StartBound)
		assert.GreaterOrEqual(t, step.Observation.AtVec(i), -StartBound)
	}

	assert.Equal(t, Actions, c.ActionSpec().Actions())
	assert.Equal(t, Features, c.ObservationSpec().Len())
}

func TestDeterministicUnderSeed(t *testing.T) {
	c := New(NewBalance(0, EpisodeSteps))

	first := rollout(t, c, 3)
	second := rollout(t, c, 3)
	assert.Equal(t, first, second)

	other := rollout(t, c, 4)
	assert.NotEqual(t, first[:Features], other[:Features])
}

func TestPushingOneWayFails(t *testing.T) {
	c := New(NewBalance(0, EpisodeSteps))
	_, err := c.Reset(1)
	require.NoError(t, err)

	var step ts.TimeStep
	total := 0.0
	for !step.Last() {
		step, err = c.Step(1)
		require.NoError(t, err)
		total += step.Reward
	}

	assert.True(t, step.Done())
	assert.Less(t, step.Number, EpisodeSteps)
	assert.Equal(t, float64(step.Number), total)

	_, err = c.Step(0)
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	c := New(NewBalance(0, 3))
	_, err := c.Reset(1)
	require.NoError(t, err)

	var step ts.TimeStep
	for i := 0; i < 3; i++ {
		step, err = c.Step(i % 2)
		require.NoError(t, err)
	}
	assert.True(t, step.Truncated())
	assert.False(t, step.Done())
}

func TestIllegalAction(t *testing.T) {
	c := New(NewBalance(0, EpisodeSteps))
	_, err := c.Step(0)
	assert.Error(t, err)

	_, err = c.Reset(0)
	require.NoError(t, err)
	_, err = c.Step(2)
	assert.Error(t, err)
}
