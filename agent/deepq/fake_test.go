package deepq

import (
	"fmt"
)

// tableQ is an Approximator which looks up the action values of a state
// by its first feature
type tableQ struct {
	features int
	actions  int
	table    map[float64][]float64

	// Set by Train
	trained int
	cost    float64
	params  float64
}

func newTableQ(features, actions int) *tableQ {
	return &tableQ{
		features: features,
		actions:  actions,
		table:    map[float64][]float64{},
	}
}

func (q *tableQ) Forward(states []float64) ([]float64, error) {
	if len(states)%q.features != 0 {
		return nil, fmt.Errorf("forward: bad states length %v", len(states))
	}

	rows := len(states) / q.features
	out := make([]float64, 0, rows*q.actions)
	for i := 0; i < rows; i++ {
		values, ok := q.table[states[i*q.features]]
		if !ok {
			values = make([]float64, q.actions)
		}
		out = append(out, values...)
	}
	return out, nil
}

func (q *tableQ) Actions() int {
	return q.actions
}

// Train returns the squared errors against the table and, unless cost
// is set, their weighted mean
func (q *tableQ) Train(states []float64, actions []int, targets,
	weights []float64) ([]float64, float64, error) {
	values, err := q.Forward(states)
	if err != nil {
		return nil, 0, err
	}

	losses := make([]float64, len(actions))
	cost := 0.0
	for i, a := range actions {
		diff := targets[i] - values[i*q.actions+a]
		losses[i] = diff * diff
		cost += losses[i] * weights[i]
	}
	cost /= float64(len(actions))

	q.trained++
	q.params++
	if q.cost != 0 {
		cost = q.cost
	}
	return losses, cost, nil
}

func (q *tableQ) Params() [][]float64 {
	return [][]float64{{q.params}}
}

func (q *tableQ) SetParams(p [][]float64) error {
	if len(p) != 1 || len(p[0]) != 1 {
		return fmt.Errorf("setParams: bad params")
	}
	q.params = p[0][0]
	return nil
}

// recorder is a PriorityUpdater which records its calls
type recorder struct {
	indices [][]int
	errs    [][]float64
}

func (r *recorder) UpdatePriorities(indices []int, errs []float64) error {
	r.indices = append(r.indices, indices)
	r.errs = append(r.errs, errs)
	return nil
}
