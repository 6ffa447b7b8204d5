// Package solver implements Gorgonia Solvers whose learning rate can be
// changed between steps.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam Type = "Adam"
)

// Solver is a Gorgonia Solver with an adjustable learning rate
type Solver interface {
	G.Solver

	// LearnRate returns the current learning rate
	LearnRate() float64

	// SetLearnRate sets the learning rate used by subsequent steps.
	// Any other optimizer state is kept.
	SetLearnRate(float64)
}

// Config implements a Solver configuration and can be used to create
// the Solver it describes.
type Config interface {
	Create() (Solver, error)
	Type() Type
}

// data returns the backing data of a Gorgonia Value
func data(v G.Value) ([]float64, error) {
	d, ok := v.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("data: only float64 values supported, have %T",
			v.Data())
	}
	return d, nil
}
