package network

import (
	G "gorgonia.org/gorgonia"
)

// Activation is an elementwise nonlinearity applied after a hidden
// layer
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

// ReLU returns the rectified linear Activation
func ReLU() *Activation {
	return &Activation{name: "relu", f: G.Rectify}
}

// apply adds the Activation of x to the graph of x
func (a *Activation) apply(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return a.name
}
