// Package timestep implements timesteps of the agent-environment interaction
// and the transitions stored for off-policy learning
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended. It is only meaningful for a
// TimeStep with StepType Last.
type EndType int

const (
	// TerminalStateReached means the environment reached a terminal state,
	// so the value of the next state is zero.
	TerminalStateReached EndType = iota

	// Timeout means the episode was cut short by a step limit. The next
	// state is not terminal.
	Timeout
)

func (e EndType) String() string {
	if e == Timeout {
		return "Timeout"
	}
	return "TerminalStateReached"
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	EndType
	Reward      float64
	Observation mat.Vector
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r float64, o mat.Vector, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Observation: o, Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// Done returns whether the episode ended in a terminal state
func (t TimeStep) Done() bool {
	return t.Last() && t.EndType == TerminalStateReached
}

// Truncated returns whether the episode was cut short by a step limit
func (t TimeStep) Truncated() bool {
	return t.Last() && t.EndType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"
	if t.Last() {
		str += fmt.Sprintf("  |  End: %v", t.EndType)
	}

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Number)
}
