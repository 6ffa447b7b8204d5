// Package environment outlines the interfaces and structs needed to
// implement concrete environments, and a registry of environments by
// name
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/replaydqn/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector

	// Seed reseeds the distribution of starting states
	Seed(seed uint64)
}

// Ender determines when episodes end. If an episode should end, End
// sets the StepType of t to timestep.Last and its EndType to how the
// episode ended.
type Ender interface {
	End(t *timestep.TimeStep) bool
}

// Environment implements a simulated environment with discrete actions
type Environment interface {
	// Reset reseeds the environment with seed and starts a new episode
	Reset(seed uint64) (timestep.TimeStep, error)

	// Step takes action in the environment. Once an episode has ended
	// Reset must be called before stepping again.
	Step(action int) (timestep.TimeStep, error)

	ObservationSpec() Spec
	ActionSpec() Spec
}

// Closer is an Environment which holds resources that must be released
// once it is no longer needed
type Closer interface {
	Environment
	Close() error
}
