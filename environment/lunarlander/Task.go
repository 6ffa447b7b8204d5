package lunarlander

import (
	"math"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

const (
	MainEngineFuel float64 = 0.30
	SideEngineFuel float64 = 0.03

	CrashReward float64 = -100
	RestReward  float64 = 100
)

// Land implements the landing task. Rewards are the change in a
// shaping potential that grows as the lander nears the helipad, slows
// down, levels out, and touches down its legs, minus a fuel cost for
// each engine fired. Crashing or flying off screen ends the episode
// with a reward of CrashReward; coming to rest ends it with
// RestReward. Episodes time out after a step limit.
type Land struct {
	stepLimit env.StepLimit

	prevShaping *float64
	terminal    bool

	env *LunarLander
}

// NewLand returns a new Land task with the given step limit
func NewLand(cutoff int) *Land {
	return &Land{stepLimit: env.NewStepLimit(cutoff)}
}

func (l *Land) registerEnv(e *LunarLander) {
	l.env = e
}

func (l *Land) reset() {
	l.prevShaping = nil
	l.terminal = false
}

// GetReward returns the reward for transitioning into state and
// records whether state is terminal
func (l *Land) GetReward(state mat.Vector) float64 {
	s := func(i int) float64 { return state.AtVec(i) }

	shaping := -100*math.Hypot(s(0), s(1)) -
		100*math.Hypot(s(2), s(3)) -
		100*math.Abs(s(4)) +
		10*s(6) + 10*s(7)

	reward := 0.0
	if l.prevShaping != nil {
		reward = shaping - *l.prevShaping
	}
	l.prevShaping = &shaping

	mPower, sPower := l.env.Power()
	reward -= mPower * MainEngineFuel
	reward -= sPower * SideEngineFuel

	l.terminal = false
	if l.env.GameOver() || math.Abs(s(0)) >= 1.0 {
		l.terminal = true
		reward = CrashReward
	}
	if !l.env.Awake() {
		l.terminal = true
		reward = RestReward
	}
	return reward
}

// End ends the episode if the last rewarded state was terminal or the
// step limit was reached
func (l *Land) End(t *ts.TimeStep) bool {
	if l.terminal {
		t.StepType = ts.Last
		t.EndType = ts.TerminalStateReached
		return true
	}
	return l.stepLimit.End(t)
}
