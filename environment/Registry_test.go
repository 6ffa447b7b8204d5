package environment

import (
	"testing"

	"github.com/samuelfneumann/replaydqn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// named is an Environment that only remembers its name
type named struct {
	name string
}

func (n named) Reset(uint64) (timestep.TimeStep, error) {
	return timestep.TimeStep{}, nil
}

func (n named) Step(int) (timestep.TimeStep, error) {
	return timestep.TimeStep{}, nil
}

func (n named) ObservationSpec() Spec {
	v := mat.NewVecDense(1, nil)
	return NewSpec(v, Observation, v, v, Continuous)
}

func (n named) ActionSpec() Spec {
	return NewDiscreteActionSpec(2)
}

func maker(name string) (Environment, error) {
	return named{name}, nil
}

func TestRegistry(t *testing.T) {
	Register("registryTest-v0", maker)
	Register("registryTest/", maker)

	env, err := Make("registryTest-v0")
	require.NoError(t, err)
	assert.Equal(t, named{"registryTest-v0"}, env)

	env, err = Make("registryTest/Anything-v3")
	require.NoError(t, err)
	assert.Equal(t, named{"registryTest/Anything-v3"}, env)

	_, err = Make("unknown-v0")
	assert.Error(t, err)

	assert.Contains(t, Names(), "registryTest-v0")
	assert.Panics(t, func() { Register("registryTest-v0", maker) })
}

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := timestep.New(timestep.Mid, 0, nil, 2)
	assert.False(t, limit.End(&step))
	assert.Equal(t, timestep.Mid, step.StepType)

	step.Number = 3
	assert.True(t, limit.End(&step))
	assert.True(t, step.Truncated())
	assert.False(t, step.Done())
}

func TestSpecActions(t *testing.T) {
	assert.Equal(t, 4, NewDiscreteActionSpec(4).Actions())
	assert.Equal(t, 1, NewDiscreteActionSpec(4).Len())
	assert.Panics(t, func() { named{}.ObservationSpec().Actions() })
}
