// Package initwfn implements seeded Gorgonia weight initializers. Each
// initializer draws from its own random source so that parameter
// initialization does not depend on process-wide random state.
package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
type Type string

// Available InitWFn types
const (
	GlorotU Type = "GlorotU"
	HeU     Type = "HeU"
	Zeroes  Type = "Zeroes"
	Const   Type = "Constant"
)

// Config describes an InitWFn. Gain scales the bounds of the
// uniform initializers and is the value used by the constant
// initializer.
type Config struct {
	Type
	Gain float64
}

// Create returns the Gorgonia InitWFn described by the Config, drawing
// random values from src
func (c Config) Create(src rand.Source) (G.InitWFn, error) {
	switch c.Type {
	case GlorotU:
		return NewGlorotU(c.Gain, src), nil
	case HeU:
		return NewHeU(c.Gain, src), nil
	case Zeroes:
		return NewConstant(0), nil
	case Const:
		return NewConstant(c.Gain), nil
	}
	return nil, fmt.Errorf("create: unknown initializer type %v", c.Type)
}

func (c Config) String() string {
	return fmt.Sprintf("{%v InitWFn: gain %v}", c.Type, c.Gain)
}

// NewConstant returns an InitWFn which sets all weights to value
func NewConstant(value float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		mustFloat64(dt)

		data := make([]float64, tensor.Shape(s).TotalSize())
		for i := range data {
			data[i] = value
		}
		return data
	}
}

// fans returns the fan in and fan out of a weight matrix with shape s
func fans(s ...int) (float64, float64) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return float64(s[0]), float64(s[0])
	}

	receptive := 1
	for _, dim := range s[2:] {
		receptive *= dim
	}
	return float64(s[0] * receptive), float64(s[1] * receptive)
}

func mustFloat64(dt tensor.Dtype) {
	if dt != tensor.Float64 {
		panic(fmt.Sprintf("initwfn: only %v supported, have %v",
			tensor.Float64, dt))
	}
}
