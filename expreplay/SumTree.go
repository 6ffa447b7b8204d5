package expreplay

import (
	"fmt"
	"math"
)

// SumTree is a binary tree over a fixed number of leaves, one per slot
// of a Store. Each leaf holds priority^alpha and each internal node
// holds the sum of its children, so that sampling proportional to the
// leaves and updating a single leaf are both O(log n). A second tree
// over the same leaves holds minimums, giving the smallest leaf in
// O(1).
//
// The trees are stored as arrays of length 2*size where size is the
// smallest power of two >= the number of leaves. Node i has children
// 2i and 2i+1 and the leaves start at index size.
type SumTree struct {
	sum []float64
	min []float64

	size     int
	capacity int
	alpha    float64
	epsilon  float64

	// Leaves [0, occupied) have been set at least once
	occupied int
}

// NewSumTree returns a new SumTree with capacity leaves. Priorities are
// clamped below by epsilon and raised to alpha when stored.
func NewSumTree(capacity int, alpha, epsilon float64) (*SumTree, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("newSumTree: capacity must be >= 1")
	}
	if alpha < 0 {
		return nil, fmt.Errorf("newSumTree: alpha must be >= 0")
	}
	if epsilon <= 0 {
		return nil, fmt.Errorf("newSumTree: epsilon must be > 0")
	}

	size := 1
	for size < capacity {
		size *= 2
	}

	minTree := make([]float64, 2*size)
	for i := range minTree {
		minTree[i] = math.Inf(1)
	}

	return &SumTree{
		sum:      make([]float64, 2*size),
		min:      minTree,
		size:     size,
		capacity: capacity,
		alpha:    alpha,
		epsilon:  epsilon,
	}, nil
}

// Set sets the priority of leaf i to max(priority, epsilon)^alpha and
// updates all sums and minimums on the path to the root.
func (s *SumTree) Set(i int, priority float64) {
	if i < 0 || i >= s.capacity {
		panic(fmt.Sprintf("set: index %v out of range [0, %v)", i,
			s.capacity))
	}
	if priority < s.epsilon || math.IsNaN(priority) {
		priority = s.epsilon
	}
	value := math.Pow(priority, s.alpha)

	node := i + s.size
	s.sum[node] = value
	s.min[node] = value
	for node > 1 {
		node /= 2
		s.sum[node] = s.sum[2*node] + s.sum[2*node+1]
		s.min[node] = math.Min(s.min[2*node], s.min[2*node+1])
	}

	if i >= s.occupied {
		s.occupied = i + 1
	}
}

// Get returns the value stored at leaf i, which is priority^alpha
func (s *SumTree) Get(i int) float64 {
	if i < 0 || i >= s.capacity {
		panic(fmt.Sprintf("get: index %v out of range [0, %v)", i,
			s.capacity))
	}
	return s.sum[i+s.size]
}

// Total returns the sum of all leaves
func (s *SumTree) Total() float64 {
	return s.sum[1]
}

// Min returns the smallest leaf that has been set, or +Inf if no leaf
// has been set
func (s *SumTree) Min() float64 {
	return s.min[1]
}

// Capacity returns the number of leaves in the tree
func (s *SumTree) Capacity() int {
	return s.capacity
}

// Find returns the index of the leaf whose cumulative range
// [sum of leaves before it, sum of leaves up to and including it)
// contains value. Values outside [0, Total()) are clamped into range.
// Find panics if no leaf has been set.
func (s *SumTree) Find(value float64) int {
	if s.occupied == 0 {
		panic("find: no priorities set")
	}
	if value < 0 {
		value = 0
	}

	node := 1
	for node < s.size {
		left := 2 * node
		if value < s.sum[left] {
			node = left
		} else {
			value -= s.sum[left]
			node = left + 1
		}
	}

	// Rounding can walk past the last set leaf when value is close to
	// the total
	i := node - s.size
	if i >= s.occupied {
		i = s.occupied - 1
	}
	return i
}
