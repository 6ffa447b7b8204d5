// Package expreplay implements experience replay buffers: a circular
// transition store, uniform sampling, and proportional prioritized
// sampling with importance-sampling weights.
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/replaydqn/timestep"
)

// DefaultEpsilon is the default amount added to the magnitude of each
// TD error before it is used as a priority
const DefaultEpsilon = 1e-6

// Batch is a batch of transitions sampled from a replay buffer. States
// and NextStates are row-major with FeatureSize columns. Dones holds
// 1.0 for transitions ending in a terminal state and 0.0 otherwise.
type Batch struct {
	States     []float64
	Actions    []int
	Rewards    []float64
	Dones      []float64
	NextStates []float64

	// Weights are the importance-sampling weights of each transition,
	// all 1 when sampling uniformly
	Weights []float64

	// Indices are the Store slots the transitions were drawn from
	Indices []int

	FeatureSize int
}

// Len returns the number of transitions in the batch
func (b Batch) Len() int {
	return len(b.Actions)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition)

	// Sample samples a batch of experience from the buffer
	Sample() (Batch, error)

	// Len returns the current number of samples in the buffer
	Len() int

	// Capacity returns the maximum allowable samples in the buffer
	Capacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// Prioritizer is an ExperienceReplayer which samples transitions in
// proportion to their priorities and corrects for the induced bias with
// importance-sampling weights
type Prioritizer interface {
	ExperienceReplayer

	// UpdatePriorities sets the priority of each slot in indices to
	// |errs[i]| + epsilon
	UpdatePriorities(indices []int, errs []float64) error

	// SetBeta sets the importance-sampling exponent used by subsequent
	// calls to Sample
	SetBeta(beta float64)
	Beta() float64
}

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	Capacity    int
	MinCapacity int
	BatchSize   int

	// Prioritized sampling only
	Prioritized bool
	Alpha       float64
	Beta        float64
	Epsilon     float64
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("create: capacity must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.Capacity)
	}
	if c.MinCapacity < 1 {
		return fmt.Errorf("create: minCapacity must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.MinCapacity)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("create: batch size must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.BatchSize)
	}
	if !c.Prioritized {
		return nil
	}

	if c.Alpha < 0 {
		return fmt.Errorf("create: alpha must be >= 0 \n\twant(>=0)"+
			"\n\thave(%v)", c.Alpha)
	}
	if c.Beta < 0 || c.Beta > 1 {
		return fmt.Errorf("create: beta must be in [0, 1] \n\twant([0, 1])"+
			"\n\thave(%v)", c.Beta)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("create: epsilon must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.Epsilon)
	}
	return nil
}

// Create creates and returns the ExperienceReplayer with the specified
// Config. If the Config is prioritized, the returned value is also a
// Prioritizer.
func (c Config) Create(featureSize int, seed uint64) (ExperienceReplayer,
	error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(c.Capacity, featureSize)
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}

	if !c.Prioritized {
		return NewUniform(store, c.MinCapacity, c.BatchSize, seed)
	}
	return NewPrioritized(store, c.MinCapacity, c.BatchSize, c.Alpha,
		c.Beta, c.Epsilon, seed)
}
