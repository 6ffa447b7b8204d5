package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/replaydqn/timestep"
	"golang.org/x/exp/rand"
)

// Store is a fixed-capacity circular buffer of transitions. Once full,
// each insertion overwrites the oldest transition. Slot indices are
// stable and are used to address priorities in a SumTree.
//
// Data is stored in flat slices, one per field of a transition, so that
// gathering a batch is a sequence of copies.
type Store struct {
	stateCache     []float64
	actionCache    []int
	rewardCache    []float64
	doneCache      []float64
	nextStateCache []float64

	cursor int
	count  int

	capacity    int
	featureSize int
}

// NewStore returns a new Store which holds at most capacity
// transitions with states of length featureSize.
func NewStore(capacity, featureSize int) (*Store, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("newStore: capacity must be >= 1")
	}
	if featureSize < 1 {
		return nil, fmt.Errorf("newStore: featureSize must be >= 1")
	}

	return &Store{
		stateCache:     make([]float64, capacity*featureSize),
		actionCache:    make([]int, capacity),
		rewardCache:    make([]float64, capacity),
		doneCache:      make([]float64, capacity),
		nextStateCache: make([]float64, capacity*featureSize),
		capacity:       capacity,
		featureSize:    featureSize,
	}, nil
}

// Insert writes t into the slot at the write cursor, overwriting the
// oldest transition if the Store is full. The slot index written to is
// returned. Insert panics if the states of t do not have the Store's
// feature size.
func (s *Store) Insert(t timestep.Transition) int {
	if len(t.State) != s.featureSize || len(t.NextState) != s.featureSize {
		panic(fmt.Sprintf("insert: states must have %v features, have "+
			"(%v, %v)", s.featureSize, len(t.State), len(t.NextState)))
	}

	slot := s.cursor
	start := slot * s.featureSize
	copy(s.stateCache[start:start+s.featureSize], t.State)
	copy(s.nextStateCache[start:start+s.featureSize], t.NextState)
	s.actionCache[slot] = t.Action
	s.rewardCache[slot] = t.Reward
	if t.Done {
		s.doneCache[slot] = 1.0
	} else {
		s.doneCache[slot] = 0.0
	}

	s.cursor = (s.cursor + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
	return slot
}

// At returns a copy of the transition stored at slot i
func (s *Store) At(i int) (timestep.Transition, error) {
	if i < 0 || i >= s.count {
		return timestep.Transition{}, &ExpReplayError{
			Op:  "at",
			Err: errIndexOutOfRange,
		}
	}

	start := i * s.featureSize
	state := make([]float64, s.featureSize)
	nextState := make([]float64, s.featureSize)
	copy(state, s.stateCache[start:start+s.featureSize])
	copy(nextState, s.nextStateCache[start:start+s.featureSize])

	return timestep.Transition{
		State:     state,
		Action:    s.actionCache[i],
		Reward:    s.rewardCache[i],
		NextState: nextState,
		Done:      s.doneCache[i] == 1.0,
	}, nil
}

// Len returns the number of transitions in the Store
func (s *Store) Len() int {
	return s.count
}

// Capacity returns the maximum number of transitions in the Store
func (s *Store) Capacity() int {
	return s.capacity
}

// FeatureSize returns the length of the states held in the Store
func (s *Store) FeatureSize() int {
	return s.featureSize
}

// Order returns the occupied slot indices from the oldest to the newest
// transition
func (s *Store) Order() []int {
	order := make([]int, s.count)
	if s.count < s.capacity {
		for i := range order {
			order[i] = i
		}
		return order
	}

	for i := range order {
		order[i] = (s.cursor + i) % s.capacity
	}
	return order
}

// Gather returns the batch of transitions stored at the given slots.
// Indices may repeat. Weights of the returned Batch are all 1.
func (s *Store) Gather(indices []int) (Batch, error) {
	for _, i := range indices {
		if i < 0 || i >= s.count {
			return Batch{}, &ExpReplayError{
				Op:  "gather",
				Err: fmt.Errorf("%w: %v", errIndexOutOfRange, i),
			}
		}
	}

	k := len(indices)
	b := Batch{
		States:      make([]float64, k*s.featureSize),
		Actions:     make([]int, k),
		Rewards:     make([]float64, k),
		Dones:       make([]float64, k),
		NextStates:  make([]float64, k*s.featureSize),
		Weights:     make([]float64, k),
		Indices:     append([]int(nil), indices...),
		FeatureSize: s.featureSize,
	}

	for j, i := range indices {
		dst := j * s.featureSize
		src := i * s.featureSize
		copy(b.States[dst:dst+s.featureSize], s.stateCache[src:src+s.featureSize])
		copy(b.NextStates[dst:dst+s.featureSize],
			s.nextStateCache[src:src+s.featureSize])

		b.Actions[j] = s.actionCache[i]
		b.Rewards[j] = s.rewardCache[i]
		b.Dones[j] = s.doneCache[i]
		b.Weights[j] = 1.0
	}

	return b, nil
}

// SampleUniform returns k slot indices drawn uniformly with replacement
// from the occupied slots. If fewer than k transitions are stored,
// indices are repeated rather than failing.
func (s *Store) SampleUniform(k int, rng *rand.Rand) ([]int, error) {
	if s.count == 0 {
		return nil, &ExpReplayError{Op: "sampleUniform", Err: errEmptyCache}
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = rng.Intn(s.count)
	}
	return indices, nil
}

func (s *Store) String() string {
	return fmt.Sprintf("Store{len: %v, capacity: %v, cursor: %v}", s.count,
		s.capacity, s.cursor)
}
