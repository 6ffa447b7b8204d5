package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

// Balance implements the Cartpole balancing task. The reward is +1 for
// every step, including the step on which the pole falls. Episodes end
// in a terminal state once the cart leaves [-FailPosition,
// FailPosition] or the pole angle leaves [-FailAngle, FailAngle], and
// time out after a step limit.
type Balance struct {
	env.Starter
	stepLimiter env.StepLimit
}

// NewBalance creates and returns a new Balance task
func NewBalance(seed uint64, episodeSteps int) *Balance {
	return &Balance{
		Starter:     env.NewUniformStarter(startBounds(), seed),
		stepLimiter: env.NewStepLimit(episodeSteps),
	}
}

// End checks if a TimeStep is the last in an episode and adjusts its
// StepType and EndType if so
func (b *Balance) End(t *ts.TimeStep) bool {
	if b.Failed(t.Observation) {
		t.StepType = ts.Last
		t.EndType = ts.TerminalStateReached
		return true
	}
	return b.stepLimiter.End(t)
}

// Failed returns whether the cart or pole has left its legal region
func (b *Balance) Failed(state mat.Vector) bool {
	return math.Abs(state.AtVec(0)) > FailPosition ||
		math.Abs(state.AtVec(2)) > FailAngle
}

// GetReward returns the reward for transitioning to nextState
func (b *Balance) GetReward(nextState mat.Vector) float64 {
	return 1.0
}
