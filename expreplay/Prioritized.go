package expreplay

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/replaydqn/timestep"
	"golang.org/x/exp/rand"
)

// prioritized is a Prioritizer which samples transitions in proportion
// to priority^alpha using stratified sampling over a SumTree.
//
// Each new transition is given the largest priority seen so far, which
// starts at 1, so that it is sampled at least once before its TD error
// is known.
type prioritized struct {
	store *Store
	tree  *SumTree
	rng   *rand.Rand

	beta        float64
	epsilon     float64
	maxPriority float64

	batchSize   int
	minCapacity int
}

// NewPrioritized returns a new Prioritizer over store. The alpha
// parameter controls how strongly priorities shape sampling (0 is
// uniform), beta is the initial importance-sampling exponent, and
// epsilon is added to each TD error magnitude to form a priority.
func NewPrioritized(store *Store, minCapacity, batchSize int, alpha, beta,
	epsilon float64, seed uint64) (Prioritizer, error) {
	if minCapacity < 1 {
		return nil, fmt.Errorf("newPrioritized: minCapacity must be >= 1")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("newPrioritized: batch size must be >= 1")
	}
	if beta < 0 {
		return nil, fmt.Errorf("newPrioritized: beta must be >= 0")
	}

	tree, err := NewSumTree(store.Capacity(), alpha, epsilon)
	if err != nil {
		return nil, fmt.Errorf("newPrioritized: %v", err)
	}

	return &prioritized{
		store:       store,
		tree:        tree,
		rng:         rand.New(rand.NewSource(seed)),
		beta:        beta,
		epsilon:     epsilon,
		maxPriority: 1.0,
		batchSize:   batchSize,
		minCapacity: minCapacity,
	}, nil
}

// Add implements the ExperienceReplayer interface
func (p *prioritized) Add(t timestep.Transition) {
	slot := p.store.Insert(t)
	p.tree.Set(slot, p.maxPriority)
}

// Sample implements the ExperienceReplayer interface. The range
// [0, total) of the priority mass is split into BatchSize() strata of
// equal width and one transition is drawn from each.
func (p *prioritized) Sample() (Batch, error) {
	n := p.store.Len()
	if n == 0 {
		return Batch{}, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if n < p.minCapacity {
		return Batch{}, &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
	}

	total := p.tree.Total()
	segment := total / float64(p.batchSize)
	indices := make([]int, p.batchSize)
	for i := range indices {
		value := segment*float64(i) + p.rng.Float64()*segment
		indices[i] = p.tree.Find(value)
	}

	batch, err := p.store.Gather(indices)
	if err != nil {
		return Batch{}, err
	}

	// The lowest priority present has the largest weight
	maxWeight := p.weight(p.tree.Min(), total, n)
	for i, index := range indices {
		batch.Weights[i] = p.weight(p.tree.Get(index), total, n) / maxWeight
	}

	return batch, nil
}

// weight returns the unnormalized importance-sampling weight
// (n * P(i))^-beta of a leaf with value leaf
func (p *prioritized) weight(leaf, total float64, n int) float64 {
	prob := leaf / total
	return math.Pow(float64(n)*prob, -p.beta)
}

// UpdatePriorities implements the Prioritizer interface
func (p *prioritized) UpdatePriorities(indices []int, errs []float64) error {
	if len(indices) != len(errs) {
		return &ExpReplayError{
			Op: "updatePriorities",
			Err: fmt.Errorf("%w: %v indices, %v errors", errLengthMismatch,
				len(indices), len(errs)),
		}
	}

	for i, index := range indices {
		if index < 0 || index >= p.store.Len() {
			return &ExpReplayError{
				Op:  "updatePriorities",
				Err: fmt.Errorf("%w: %v", errIndexOutOfRange, index),
			}
		}
		if math.IsNaN(errs[i]) || math.IsInf(errs[i], 0) {
			return &ExpReplayError{
				Op:  "updatePriorities",
				Err: fmt.Errorf("%w: %v", errNonFinitePriority, errs[i]),
			}
		}
	}

	for i, index := range indices {
		priority := math.Abs(errs[i]) + p.epsilon
		p.tree.Set(index, priority)
		if priority > p.maxPriority {
			p.maxPriority = priority
		}
	}
	return nil
}

// Priority returns the value priority^alpha of slot i
func (p *prioritized) Priority(i int) float64 {
	return p.tree.Get(i)
}

// MaxPriority returns the priority given to newly added transitions
func (p *prioritized) MaxPriority() float64 {
	return p.maxPriority
}

// SetBeta implements the Prioritizer interface
func (p *prioritized) SetBeta(beta float64) {
	p.beta = beta
}

// Beta implements the Prioritizer interface
func (p *prioritized) Beta() float64 {
	return p.beta
}

// Len implements the ExperienceReplayer interface
func (p *prioritized) Len() int {
	return p.store.Len()
}

// Capacity implements the ExperienceReplayer interface
func (p *prioritized) Capacity() int {
	return p.store.Capacity()
}

// MinCapacity implements the ExperienceReplayer interface
func (p *prioritized) MinCapacity() int {
	return p.minCapacity
}

// BatchSize implements the ExperienceReplayer interface
func (p *prioritized) BatchSize() int {
	return p.batchSize
}
