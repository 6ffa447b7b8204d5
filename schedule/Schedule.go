// Package schedule implements the schedules of a training run: linear
// exploration decay, importance-sampling exponent annealing, learning
// rate decay, and the cadences of learning updates and evaluation.
package schedule

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/replaydqn/utils/floatutils"
)

// Phase is the phase of a training run
type Phase int

const (
	// Collecting means too few transitions are stored to learn
	Collecting Phase = iota

	// Learning means learning updates happen at the update cadence
	Learning
)

func (p Phase) String() string {
	if p == Learning {
		return "Learning"
	}
	return "Collecting"
}

// Config describes the schedules of a training run
type Config struct {
	// TotalSteps is the budget of environment steps
	TotalSteps int

	// Epsilon decays linearly from InitEpsilon to FinalEpsilon over
	// Explore steps
	InitEpsilon  float64
	FinalEpsilon float64
	Explore      int

	// Beta is annealed towards 1 when Prioritized
	Prioritized bool
	InitBeta    float64

	// The learning rate decays once per episode when DecayLR
	InitLR  float64
	DecayLR bool
	LRDecay float64

	// BatchSize is the number of stored transitions which must be
	// exceeded before learning
	BatchSize int

	// UpdateEvery is the number of environment steps between learning
	// updates
	UpdateEvery int

	// EvalEvery is the number of episodes between evaluations
	EvalEvery int
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.TotalSteps < 1 {
		return fmt.Errorf("validate: total steps must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.TotalSteps)
	}
	if c.Explore < 1 {
		return fmt.Errorf("validate: explore must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.Explore)
	}
	if c.FinalEpsilon < 0 || c.FinalEpsilon > c.InitEpsilon ||
		c.InitEpsilon > 1 {
		return fmt.Errorf("validate: epsilons must satisfy 0 <= final <= "+
			"init <= 1 \n\thave(init: %v, final: %v)", c.InitEpsilon,
			c.FinalEpsilon)
	}
	if c.Prioritized && (c.InitBeta < 0 || c.InitBeta > 1) {
		return fmt.Errorf("validate: beta must be in [0, 1] \n\twant([0, 1])"+
			"\n\thave(%v)", c.InitBeta)
	}
	if c.InitLR <= 0 {
		return fmt.Errorf("validate: learning rate must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.InitLR)
	}
	if c.DecayLR && c.LRDecay < 0 {
		return fmt.Errorf("validate: learning rate decay must be >= 0 "+
			"\n\twant(>=0)\n\thave(%v)", c.LRDecay)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.BatchSize)
	}
	if c.UpdateEvery < 1 {
		return fmt.Errorf("validate: update cadence must be >= 1 "+
			"\n\twant(>=1)\n\thave(%v)", c.UpdateEvery)
	}
	if c.EvalEvery < 1 {
		return fmt.Errorf("validate: evaluation cadence must be >= 1 "+
			"\n\twant(>=1)\n\thave(%v)", c.EvalEvery)
	}
	return nil
}

// Controller tracks the step and episode counts of a training run and
// the schedule values derived from them. Each environment step is
// bracketed by BeginStep and EndStep and each episode ends with
// EndEpisode.
type Controller struct {
	config Config

	steps    int
	decays   int
	episodes int

	epsilon float64
	beta    float64
	lr      float64
}

// New returns a new Controller
func New(c Config) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Controller{
		config:  c,
		epsilon: c.InitEpsilon,
		beta:    c.InitBeta,
		lr:      c.InitLR,
	}, nil
}

// BeginStep records the start of an environment step and returns its
// 1-based number
func (c *Controller) BeginStep() int {
	c.steps++
	return c.steps
}

// EndStep applies the per-step decay of epsilon and, if prioritized,
// beta. It is applied whether or not a learning update happened.
func (c *Controller) EndStep() {
	c.decays++

	// ε = max(ε_min, ε_0 - k (ε_0 - ε_min) / EXPLORE) after k decays,
	// and exactly ε_min from EXPLORE decays onwards
	if c.decays >= c.config.Explore {
		c.epsilon = c.config.FinalEpsilon
	} else {
		delta := c.config.InitEpsilon - c.config.FinalEpsilon
		eps := c.config.InitEpsilon -
			float64(c.decays)*delta/float64(c.config.Explore)
		c.epsilon = math.Max(c.config.FinalEpsilon, eps)
	}

	if c.config.Prioritized {
		if c.steps >= c.config.TotalSteps {
			c.beta = 1
		} else {
			fraction := float64(c.steps) / float64(c.config.TotalSteps)
			c.beta = floatutils.Clip(c.beta+fraction*(1-c.beta), 0, 1)
		}
	}
}

// EndEpisode records the end of an episode and, if enabled, decays the
// learning rate as lr = lr / (1 + decay * episodes). It returns the new
// learning rate.
func (c *Controller) EndEpisode() float64 {
	c.episodes++
	if c.config.DecayLR {
		c.lr = c.lr / (1 + c.config.LRDecay*float64(c.episodes))
	}
	return c.lr
}

// ShouldLearn returns whether a learning update is due on the current
// step given that live transitions are stored
func (c *Controller) ShouldLearn(live int) bool {
	return c.Phase(live) == Learning && c.steps%c.config.UpdateEvery == 0
}

// ShouldEvaluate returns whether a greedy evaluation episode is due
// after the last completed episode
func (c *Controller) ShouldEvaluate() bool {
	return c.episodes > 0 && c.episodes%c.config.EvalEvery == 0
}

// Phase returns the phase of the run given that live transitions are
// stored
func (c *Controller) Phase(live int) Phase {
	if live > c.config.BatchSize {
		return Learning
	}
	return Collecting
}

// Done returns whether the step budget is exhausted
func (c *Controller) Done() bool {
	return c.steps >= c.config.TotalSteps
}

// Epsilon returns the current exploration rate
func (c *Controller) Epsilon() float64 {
	return c.epsilon
}

// Beta returns the current importance-sampling exponent
func (c *Controller) Beta() float64 {
	return c.beta
}

// LearnRate returns the current learning rate
func (c *Controller) LearnRate() float64 {
	return c.lr
}

// Steps returns the number of environment steps begun
func (c *Controller) Steps() int {
	return c.steps
}

// Episodes returns the number of completed episodes
func (c *Controller) Episodes() int {
	return c.episodes
}

// Config returns the Config of the Controller
func (c *Controller) Config() Config {
	return c.config
}
