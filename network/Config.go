// Package network implements feed forward action-value networks built
// with Gorgonia
package network

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/replaydqn/initwfn"
	"github.com/samuelfneumann/replaydqn/solver"
)

// Config describes the architecture and training setup of a QNet
type Config struct {
	Features int
	Actions  int

	HiddenSizes []int
	Activations []*Activation

	// Dueling splits the output layer into state value and advantage
	// streams
	Dueling bool

	// BatchSize is the number of rows in a training batch
	BatchSize int

	Init   initwfn.Config
	Solver solver.Config
}

// NewConfig returns the Config of the network used for DQN training:
// two hidden ReLU layers of 64 units with He uniform initialization
// trained with Adam at learning rate lr
func NewConfig(features, actions, batchSize int, dueling bool,
	lr float64) Config {
	return Config{
		Features:    features,
		Actions:     actions,
		HiddenSizes: []int{64, 64},
		Activations: []*Activation{ReLU(), ReLU()},
		Dueling:     dueling,
		BatchSize:   batchSize,
		Init:        initwfn.Config{Type: initwfn.HeU, Gain: math.Sqrt2},
		Solver: solver.AdamConfig{
			StepSize: lr,
			Epsilon:  1e-8,
			Beta1:    0.9,
			Beta2:    0.999,
		},
	}
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.Features < 1 {
		return fmt.Errorf("validate: features must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.Features)
	}
	if c.Actions < 1 {
		return fmt.Errorf("validate: actions must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.Actions)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.BatchSize)
	}
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations "+
			"\n\twant(%v)\n\thave(%v)", len(c.HiddenSizes), len(c.Activations))
	}
	for i, size := range c.HiddenSizes {
		if size < 1 {
			return fmt.Errorf("validate: hidden layer %v must have >= 1 "+
				"units \n\twant(>=1)\n\thave(%v)", i, size)
		}
	}
	return nil
}
