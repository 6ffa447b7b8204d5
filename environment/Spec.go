package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewDiscreteActionSpec returns the Spec of a single discrete action
// in [0, actions)
func NewDiscreteActionSpec(actions int) Spec {
	return NewSpec(
		mat.NewVecDense(1, nil),
		Action,
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{float64(actions - 1)}),
		Discrete,
	)
}

// Len returns the number of values described by the Spec
func (s Spec) Len() int {
	return s.Shape.Len()
}

// Actions returns the number of discrete actions described by a one
// dimensional discrete action Spec. It panics for any other Spec.
func (s Spec) Actions() int {
	if s.Type != Action || s.Cardinality != Discrete || s.Len() != 1 {
		panic(fmt.Sprintf("actions: not a one dimensional discrete "+
			"action spec: %v", s))
	}
	return int(s.UpperBound.AtVec(0)-s.LowerBound.AtVec(0)) + 1
}

func (s Spec) String() string {
	kind := "Observation"
	if s.Type == Action {
		kind = "Action"
	}
	return fmt.Sprintf("%v Spec{%v, len: %v, low: %v, high: %v}", kind,
		s.Cardinality, s.Len(), mat.Formatted(s.LowerBound.T()),
		mat.Formatted(s.UpperBound.T()))
}
