package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NewGlorotU returns a Glorot uniform initializer. Weights are drawn
// from U(-b, b) with b = gain * sqrt(6 / (fanIn + fanOut)).
func NewGlorotU(gain float64, src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		mustFloat64(dt)

		fanIn, fanOut := fans(s...)
		bound := gain * math.Sqrt(6/(fanIn+fanOut))
		return uniform(bound, src, s...)
	}
}
