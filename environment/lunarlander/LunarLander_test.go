package lunarlander

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

// episode runs a full episode cycling through all actions and returns
// every observation and reward
func episode(t *testing.T, l env.Environment, seed uint64) ([]float64,
	[]float64, ts.TimeStep) {
	step, err := l.Reset(seed)
	require.NoError(t, err)
	require.True(t, step.First())

	obs := mat.VecDenseCopyOf(step.Observation).RawVector().Data
	var rewards []float64
	for i := 0; !step.Last(); i++ {
		step, err = l.Step(i % Actions)
		require.NoError(t, err)
		require.Equal(t, StateObservations, step.Observation.Len())

		obs = append(obs, mat.VecDenseCopyOf(step.Observation).RawVector().Data...)
		rewards = append(rewards, step.Reward)
	}
	return obs, rewards, step
}

func TestRegistered(t *testing.T) {
	l, err := env.Make(Name)
	require.NoError(t, err)

	assert.Equal(t, Actions, l.ActionSpec().Actions())
	assert.Equal(t, StateObservations, l.ObservationSpec().Len())
}

func TestDeterministicUnderSeed(t *testing.T) {
	l := New(NewLand(EpisodeSteps))

	obs1, rewards1, last1 := episode(t, l, 11)
	obs2, rewards2, last2 := episode(t, l, 11)

	assert.Equal(t, obs1, obs2)
	assert.Equal(t, rewards1, rewards2)
	assert.Equal(t, last1.Number, last2.Number)
	assert.LessOrEqual(t, last1.Number, EpisodeSteps)

	obs3, _, _ := episode(t, l, 12)
	assert.NotEqual(t, obs1[:2*StateObservations], obs3[:2*StateObservations])
}

func TestTerminalReward(t *testing.T) {
	l := New(NewLand(EpisodeSteps))
	_, rewards, last := episode(t, l, 5)

	if last.Done() {
		final := rewards[len(rewards)-1]
		assert.Contains(t, []float64{CrashReward, RestReward}, final)
	} else {
		assert.Equal(t, EpisodeSteps, last.Number)
	}

	_, err := l.Step(Noop)
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	l := New(NewLand(5))
	_, err := l.Reset(0)
	require.NoError(t, err)

	var step ts.TimeStep
	for i := 0; i < 5; i++ {
		step, err = l.Step(Noop)
		require.NoError(t, err)
	}
	assert.True(t, step.Truncated())
}

func TestIllegalAction(t *testing.T) {
	l := New(NewLand(EpisodeSteps))
	_, err := l.Step(Noop)
	assert.Error(t, err)

	_, err = l.Reset(0)
	require.NoError(t, err)
	_, err = l.Step(Actions)
	assert.Error(t, err)
	_, err = l.Step(-1)
	assert.Error(t, err)
}
