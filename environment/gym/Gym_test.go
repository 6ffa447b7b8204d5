//go:build gym

package gym_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	env "github.com/samuelfneumann/replaydqn/environment"
	"github.com/samuelfneumann/replaydqn/environment/gym"
)

func TestMake(t *testing.T) {
	envs := []string{
		"CartPole-v0",
		"Acrobot-v1",
		"MountainCar-v0",
		"LunarLander-v2",
	}

	for _, name := range envs {
		e, err := env.Make(gym.Prefix + name)
		require.NoError(t, err, name)

		step, err := e.Reset(123)
		require.NoError(t, err, name)
		assert.True(t, step.First())
		assert.Equal(t, e.ObservationSpec().Len(), step.Observation.Len())

		for i := 0; i < 15; i++ {
			if step.Last() {
				step, err = e.Reset(123)
				require.NoError(t, err, name)
			}
			step, err = e.Step(0)
			require.NoError(t, err, name)
		}

		_, err = e.Step(e.ActionSpec().Actions())
		assert.Error(t, err, name)

		require.NoError(t, e.(env.Closer).Close())
	}
}

func TestContinuousRejected(t *testing.T) {
	_, err := gym.New("Pendulum-v0")
	assert.Error(t, err)
}
