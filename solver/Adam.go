package solver

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// AdamConfig describes a configuration of the Adam solver
type AdamConfig struct {
	StepSize float64
	Epsilon  float64 // Smoothing factor
	Beta1    float64
	Beta2    float64
}

// NewDefaultAdam returns a new Adam Solver with default hyperparameters
func NewDefaultAdam(stepSize float64) (Solver, error) {
	return AdamConfig{
		StepSize: stepSize,
		Epsilon:  1e-8,
		Beta1:    0.9,
		Beta2:    0.999,
	}.Create()
}

// Create returns a new Adam Solver as described by the AdamConfig
func (a AdamConfig) Create() (Solver, error) {
	if a.StepSize <= 0 {
		return nil, fmt.Errorf("create: step size must be positive "+
			"\n\twant(>0)\n\thave(%v)", a.StepSize)
	}
	if a.Epsilon <= 0 {
		return nil, fmt.Errorf("create: epsilon must be positive "+
			"\n\twant(>0)\n\thave(%v)", a.Epsilon)
	}
	if a.Beta1 < 0 || a.Beta1 >= 1 || a.Beta2 < 0 || a.Beta2 >= 1 {
		return nil, fmt.Errorf("create: betas must be in [0, 1) "+
			"\n\twant([0, 1))\n\thave(%v, %v)", a.Beta1, a.Beta2)
	}

	return &adam{config: a, lr: a.StepSize}, nil
}

// Type returns the type of Solver described by the config
func (a AdamConfig) Type() Type {
	return Adam
}

// adam implements the Adam solver. Moment estimates are kept per
// position in the model passed to Step, so the same model must be
// passed to every call.
type adam struct {
	config AdamConfig
	lr     float64
	t      int

	m [][]float64
	v [][]float64
}

// Step takes one Adam step on each parameter of the model and zeroes
// each gradient
func (a *adam) Step(model []G.ValueGrad) error {
	if a.m == nil {
		a.m = make([][]float64, len(model))
		a.v = make([][]float64, len(model))
	} else if len(a.m) != len(model) {
		return fmt.Errorf("step: model changed size from %v to %v",
			len(a.m), len(model))
	}

	a.t++
	correction1 := 1 - math.Pow(a.config.Beta1, float64(a.t))
	correction2 := 1 - math.Pow(a.config.Beta2, float64(a.t))

	for i, vg := range model {
		weights, err := data(vg.Value())
		if err != nil {
			return fmt.Errorf("step: %v", err)
		}
		g, err := vg.Grad()
		if err != nil {
			return fmt.Errorf("step: could not get gradient: %v", err)
		}
		grad, err := data(g)
		if err != nil {
			return fmt.Errorf("step: %v", err)
		}

		if a.m[i] == nil {
			a.m[i] = make([]float64, len(weights))
			a.v[i] = make([]float64, len(weights))
		}
		m, v := a.m[i], a.v[i]

		for j := range weights {
			m[j] = a.config.Beta1*m[j] + (1-a.config.Beta1)*grad[j]
			v[j] = a.config.Beta2*v[j] + (1-a.config.Beta2)*grad[j]*grad[j]

			mHat := m[j] / correction1
			vHat := v[j] / correction2
			weights[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.config.Epsilon)

			// Tape machines add onto existing gradients
			grad[j] = 0
		}
	}
	return nil
}

// LearnRate implements the Solver interface
func (a *adam) LearnRate() float64 {
	return a.lr
}

// SetLearnRate implements the Solver interface
func (a *adam) SetLearnRate(lr float64) {
	a.lr = lr
}
