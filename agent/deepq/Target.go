package deepq

import (
	"fmt"

	"github.com/samuelfneumann/replaydqn/expreplay"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TargetRule computes the TD targets of a batch of transitions
type TargetRule interface {
	Targets(online, target Approximator, b expreplay.Batch,
		gamma float64) ([]float64, error)
	fmt.Stringer
}

// NewTargetRule returns the Double rule if double is true and the
// Vanilla rule otherwise
func NewTargetRule(double bool) TargetRule {
	if double {
		return Double{}
	}
	return Vanilla{}
}

// Vanilla is the Q-learning target
//
//	r + γ (1 - done) max_a Q_target(s', a)
type Vanilla struct{}

// Targets implements the TargetRule interface
func (Vanilla) Targets(_, target Approximator, b expreplay.Batch,
	gamma float64) ([]float64, error) {
	next, err := nextValues(target, b)
	if err != nil {
		return nil, fmt.Errorf("targets: %v", err)
	}

	targets := make([]float64, b.Len())
	for i := range targets {
		targets[i] = bootstrap(b.Rewards[i], b.Dones[i], gamma,
			floats.Max(next.RawRowView(i)))
	}
	return targets, nil
}

func (Vanilla) String() string {
	return "Vanilla"
}

// Double is the double Q-learning target, which selects the next action
// with the online approximator and evaluates it with the target
//
//	r + γ (1 - done) Q_target(s', argmax_a Q_online(s', a))
type Double struct{}

// Targets implements the TargetRule interface
func (Double) Targets(online, target Approximator, b expreplay.Batch,
	gamma float64) ([]float64, error) {
	onlineNext, err := nextValues(online, b)
	if err != nil {
		return nil, fmt.Errorf("targets: %v", err)
	}
	targetNext, err := nextValues(target, b)
	if err != nil {
		return nil, fmt.Errorf("targets: %v", err)
	}

	targets := make([]float64, b.Len())
	for i := range targets {
		action := floats.MaxIdx(onlineNext.RawRowView(i))
		targets[i] = bootstrap(b.Rewards[i], b.Dones[i], gamma,
			targetNext.At(i, action))
	}
	return targets, nil
}

func (Double) String() string {
	return "Double"
}

// nextValues returns the action values of the next states of b
// predicted by a, one row per transition
func nextValues(a Approximator, b expreplay.Batch) (*mat.Dense, error) {
	values, err := a.Forward(b.NextStates)
	if err != nil {
		return nil, err
	}
	if len(values) != b.Len()*a.Actions() {
		return nil, fmt.Errorf("expected %v action values, have %v",
			b.Len()*a.Actions(), len(values))
	}
	return mat.NewDense(b.Len(), a.Actions(), values), nil
}

// bootstrap returns r + γ (1 - done) q. Terminal transitions return r
// regardless of q.
func bootstrap(r, done, gamma, q float64) float64 {
	if done != 0 {
		return r
	}
	return r + gamma*q
}
