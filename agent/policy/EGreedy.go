// Package policy implements action selection over the action values
// predicted by a function approximator
package policy

import (
	"github.com/samuelfneumann/replaydqn/utils/floatutils"
	"golang.org/x/exp/rand"
)

// Greedy is the exploration rate sentinel which forces greedy action
// selection
const Greedy = -1.0

// EGreedy selects actions ε-greedily with respect to action values
type EGreedy struct {
	rng *rand.Rand
}

// NewEGreedy returns a new EGreedy policy which draws random numbers
// from a source seeded with seed
func NewEGreedy(seed uint64) *EGreedy {
	return &EGreedy{rng: rand.New(rand.NewSource(seed))}
}

// SelectAction selects a random action with probability epsilon and
// otherwise an action of maximum value, breaking ties randomly. An
// epsilon of Greedy, or any negative value, always selects an action
// of maximum value.
func (e *EGreedy) SelectAction(values []float64, epsilon float64) int {
	if len(values) == 0 {
		panic("selectAction: no action values")
	}

	if epsilon >= 0 && e.rng.Float64() < epsilon {
		return e.rng.Intn(len(values))
	}

	_, maxIndices := floatutils.MaxSlice(values)
	if len(maxIndices) == 1 {
		return maxIndices[0]
	}
	return maxIndices[e.rng.Intn(len(maxIndices))]
}
