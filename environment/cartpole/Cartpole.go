// Package cartpole implements the Cartpole classic control environment
// with two discrete actions
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	TotalMass      float64 = CartMass + PoleMass
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Episode termination thresholds
	FailPosition float64 = 2.4
	FailAngle    float64 = 12 * 2 * math.Pi / 360

	// Bound (+/-) on each starting state feature
	StartBound float64 = 0.05

	EpisodeSteps int = 500
	Actions      int = 2
	Features     int = 4

	Name = "CartPole-v1"
)

func init() {
	env.Register(Name, func(string) (env.Environment, error) {
		return New(NewBalance(0, EpisodeSteps)), nil
	})
}

// Cartpole implements the classic control environment Cartpole. In
// this environment, a pole is attached to a cart, which can move
// horizontally. The agent must keep the pole upright for as long as
// possible.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity.
//
// Actions are discrete:
//
//	Action	Meaning
//	  0		Push left
//	  1		Push right
type Cartpole struct {
	*Balance
	lastStep ts.TimeStep
	started  bool
}

// New constructs a new Cartpole environment. Reset must be called
// before the first Step.
func New(t *Balance) *Cartpole {
	return &Cartpole{Balance: t}
}

// Reset reseeds the starting state distribution and starts a new
// episode
func (c *Cartpole) Reset(seed uint64) (ts.TimeStep, error) {
	c.Seed(seed)
	c.lastStep = ts.New(ts.First, 0, c.Start(), 0)
	c.started = true

	return c.lastStep, nil
}

// Step takes one environmental step given action a
func (c *Cartpole) Step(a int) (ts.TimeStep, error) {
	if !c.started {
		return ts.TimeStep{}, fmt.Errorf("step: called before reset")
	}
	if c.lastStep.Last() {
		return ts.TimeStep{}, fmt.Errorf("step: episode has ended")
	}
	if a < 0 || a >= Actions {
		return ts.TimeStep{}, fmt.Errorf("step: illegal action %v ∉ "+
			"{0, 1}", a)
	}

	state := c.lastStep.Observation
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	force := ForceMag
	if a == 0 {
		force = -ForceMag
	}

	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)
	poleMassLength := PoleMass * HalfPoleLength

	temp := (force + poleMassLength*thDot*thDot*sinTheta) / TotalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/TotalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/TotalMass

	// Euler kinematic integration
	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	nextState := mat.NewVecDense(Features, []float64{x, xDot, th, thDot})
	nextStep := ts.New(ts.Mid, c.GetReward(nextState), nextState,
		c.lastStep.Number+1)
	c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	return env.NewDiscreteActionSpec(Actions)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	high := []float64{2 * FailPosition, math.MaxFloat64, 2 * FailAngle,
		math.MaxFloat64}
	low := make([]float64, Features)
	for i := range high {
		low[i] = -high[i]
	}

	return env.NewSpec(mat.NewVecDense(Features, nil), env.Observation,
		mat.NewVecDense(Features, low), mat.NewVecDense(Features, high),
		env.Continuous)
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	if state == nil {
		return "Cartpole  |  not started"
	}
	return fmt.Sprintf(msg, state.AtVec(0), state.AtVec(1), state.AtVec(2),
		state.AtVec(3))
}

func startBounds() []r1.Interval {
	bounds := make([]r1.Interval, Features)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -StartBound, Max: StartBound}
	}
	return bounds
}
