package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/replaydqn/timestep"
	"golang.org/x/exp/rand"
)

// uniform is an ExperienceReplayer which samples uniformly at random,
// with replacement, from its Store
type uniform struct {
	store       *Store
	rng         *rand.Rand
	batchSize   int
	minCapacity int
}

// NewUniform returns a new ExperienceReplayer which samples batchSize
// transitions uniformly at random from store. Sampling is seeded with
// seed.
func NewUniform(store *Store, minCapacity, batchSize int,
	seed uint64) (ExperienceReplayer, error) {
	if minCapacity < 1 {
		return nil, fmt.Errorf("newUniform: minCapacity must be >= 1")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("newUniform: batch size must be >= 1")
	}

	return &uniform{
		store:       store,
		rng:         rand.New(rand.NewSource(seed)),
		batchSize:   batchSize,
		minCapacity: minCapacity,
	}, nil
}

// Add implements the ExperienceReplayer interface
func (u *uniform) Add(t timestep.Transition) {
	u.store.Insert(t)
}

// Sample implements the ExperienceReplayer interface
func (u *uniform) Sample() (Batch, error) {
	if u.store.Len() == 0 {
		return Batch{}, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if u.store.Len() < u.minCapacity {
		return Batch{}, &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
	}

	indices, err := u.store.SampleUniform(u.batchSize, u.rng)
	if err != nil {
		return Batch{}, err
	}
	return u.store.Gather(indices)
}

// Len implements the ExperienceReplayer interface
func (u *uniform) Len() int {
	return u.store.Len()
}

// Capacity implements the ExperienceReplayer interface
func (u *uniform) Capacity() int {
	return u.store.Capacity()
}

// MinCapacity implements the ExperienceReplayer interface
func (u *uniform) MinCapacity() int {
	return u.minCapacity
}

// BatchSize implements the ExperienceReplayer interface
func (u *uniform) BatchSize() int {
	return u.batchSize
}
