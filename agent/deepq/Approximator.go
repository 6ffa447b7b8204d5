// Package deepq implements the deep Q-learning update: temporal
// difference targets for vanilla and double Q-learning, a weighted
// squared error gradient step on an online approximator with priority
// feedback to a prioritized replay buffer, and hard synchronization of
// a frozen target approximator.
package deepq

// Approximator predicts action values. Forward takes states row-major
// and returns one row of action values per state.
type Approximator interface {
	Forward(states []float64) ([]float64, error)
	Actions() int
}

// Learner is an Approximator which can take gradient steps on the
// weighted mean squared error between targets and the values of the
// actions taken. The per-sample squared errors and their weighted mean
// are returned.
type Learner interface {
	Approximator
	Train(states []float64, actions []int, targets,
		weights []float64) ([]float64, float64, error)
}

// Parameterized is an approximator whose parameters can be read and
// replaced wholesale
type Parameterized interface {
	Params() [][]float64
	SetParams([][]float64) error
}

// PriorityUpdater receives new priorities for replayed transitions
type PriorityUpdater interface {
	UpdatePriorities(indices []int, errs []float64) error
}
