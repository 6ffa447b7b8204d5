package deepq

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/replaydqn/expreplay"
	"github.com/samuelfneumann/replaydqn/utils/floatutils"
)

// ErrNonFiniteLoss is returned by Update when the loss of a batch is
// NaN or infinite
var ErrNonFiniteLoss = errors.New("non-finite loss")

// Result reports the outcome of one learning update
type Result struct {
	// Loss is the importance-weighted mean of Losses
	Loss float64

	// Losses are the squared TD errors of each transition
	Losses  []float64
	Targets []float64
}

// Engine performs deep Q-learning updates on batches of transitions. It
// holds no data itself: each update reads a batch, computes TD targets
// with the target rule, takes one gradient step on the online
// approximator, and, when prioritized, sends the per-sample losses back
// to the replay buffer as new priorities.
type Engine struct {
	online     Learner
	target     Approximator
	rule       TargetRule
	gamma      float64
	priorities PriorityUpdater
}

// NewEngine returns a new Engine. If priorities is nil, no priorities
// are updated.
func NewEngine(online Learner, target Approximator, rule TargetRule,
	gamma float64, priorities PriorityUpdater) (*Engine, error) {
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("newEngine: gamma must be in [0, 1] "+
			"\n\twant([0, 1])\n\thave(%v)", gamma)
	}
	if online.Actions() != target.Actions() {
		return nil, fmt.Errorf("newEngine: online and target approximators "+
			"must predict the same number of actions \n\twant(%v)"+
			"\n\thave(%v)", online.Actions(), target.Actions())
	}
	if rule == nil {
		return nil, fmt.Errorf("newEngine: no target rule")
	}

	return &Engine{
		online:     online,
		target:     target,
		rule:       rule,
		gamma:      gamma,
		priorities: priorities,
	}, nil
}

// Update performs one learning update on b
func (e *Engine) Update(b expreplay.Batch) (Result, error) {
	targets, err := e.rule.Targets(e.online, e.target, b, e.gamma)
	if err != nil {
		return Result{}, fmt.Errorf("update: %v", err)
	}

	losses, loss, err := e.online.Train(b.States, b.Actions, targets,
		b.Weights)
	if err != nil {
		return Result{}, fmt.Errorf("update: %v", err)
	}
	if !floatutils.IsFinite(loss) || !floatutils.IsFinite(losses...) {
		return Result{}, fmt.Errorf("update: %w (%v)", ErrNonFiniteLoss, loss)
	}

	if e.priorities != nil {
		if err := e.priorities.UpdatePriorities(b.Indices, losses); err != nil {
			return Result{}, fmt.Errorf("update: %v", err)
		}
	}

	return Result{Loss: loss, Losses: losses, Targets: targets}, nil
}

// Rule returns the target rule of the Engine
func (e *Engine) Rule() TargetRule {
	return e.rule
}

// Gamma returns the discount factor of the Engine
func (e *Engine) Gamma() float64 {
	return e.gamma
}
