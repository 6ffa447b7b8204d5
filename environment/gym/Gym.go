//go:build gym

// Package gym provides access to OpenAI Gym environments with discrete
// actions through the Go bindings at github.com/samuelfneumann/gogym.
// Importing the package registers every "gym/<id>" name with the
// environment registry, e.g. "gym/Acrobot-v1".
//
// Gym does not report why an episode ended, so every episode end is
// treated as reaching a terminal state.
package gym

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

// Prefix is the registry prefix of Gym environments
const Prefix = "gym/"

func init() {
	env.Register(Prefix, func(name string) (env.Environment, error) {
		return New(strings.TrimPrefix(name, Prefix))
	})
}

// GymEnv implements access to an OpenAI Gym environment using GoGym
type GymEnv struct {
	gogym.Environment

	name        string
	actions     int
	currentStep ts.TimeStep
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite with a discrete action space.
func New(name string) (*GymEnv, error) {
	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, fmt.Errorf("new: could not create environment: %v", err)
	}

	if _, ok := goGymEnv.ActionSpace().(*gogym.DiscreteSpace); !ok {
		goGymEnv.Close()
		return nil, fmt.Errorf("new: environment %v does not have discrete "+
			"actions", name)
	}
	high := goGymEnv.ActionSpace().High()[0]

	return &GymEnv{
		Environment: goGymEnv,
		name:        name,
		actions:     int(high.AtVec(0)) + 1,
	}, nil
}

// Reset reseeds the environment and resets it to some starting state
func (g *GymEnv) Reset(seed uint64) (ts.TimeStep, error) {
	g.Environment.Seed(int(seed))
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not reset "+
			"environment: %v", err)
	}

	g.currentStep = ts.New(ts.First, 0, obs, 0)
	return g.currentStep, nil
}

// Step takes a single environmental step
func (g *GymEnv) Step(a int) (ts.TimeStep, error) {
	if a < 0 || a >= g.actions {
		return ts.TimeStep{}, fmt.Errorf("step: illegal action %v for %v",
			a, g.name)
	}

	action := mat.NewVecDense(1, []float64{float64(a)})
	obs, reward, done, err := g.Environment.Step(action)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("step: could not step "+
			"GoGym environment: %v", err)
	}

	t := ts.New(ts.Mid, reward, obs, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
		t.EndType = ts.TerminalStateReached
	}
	g.currentStep = t

	return t, nil
}

// ObservationSpec returns the observation spec of the environment
func (g *GymEnv) ObservationSpec() env.Spec {
	space := g.ObservationSpace()

	var low, high *mat.VecDense
	switch space.(type) {
	case *gogym.BoxSpace, *gogym.DiscreteSpace:
		low = space.Low()[0]
		high = space.High()[0]
	default:
		panic("observationSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	shape := mat.NewVecDense(low.Len(), nil)
	return env.NewSpec(shape, env.Observation, low, high, env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (g *GymEnv) ActionSpec() env.Spec {
	return env.NewDiscreteActionSpec(g.actions)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}
