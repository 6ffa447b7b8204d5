package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s', done) tuple of experience
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// NewTransition creates a Transition from the TimeStep t in which
// action a was taken and the TimeStep next that followed. Observations
// are copied, so the Transition does not alias environment state.
func NewTransition(t TimeStep, a int, next TimeStep) Transition {
	return Transition{
		State:     vecData(t.Observation),
		Action:    a,
		Reward:    next.Reward,
		NextState: vecData(next.Observation),
		Done:      next.Done(),
	}
}

// Equal returns whether two transitions hold the same values
func (t Transition) Equal(other Transition) bool {
	if t.Action != other.Action || t.Reward != other.Reward ||
		t.Done != other.Done {
		return false
	}
	if len(t.State) != len(other.State) ||
		len(t.NextState) != len(other.NextState) {
		return false
	}
	for i := range t.State {
		if t.State[i] != other.State[i] {
			return false
		}
	}
	for i := range t.NextState {
		if t.NextState[i] != other.NextState[i] {
			return false
		}
	}
	return true
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition{s: %v, a: %v, r: %v, s': %v, done: %v}",
		t.State, t.Action, t.Reward, t.NextState, t.Done)
}

func vecData(v mat.Vector) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
