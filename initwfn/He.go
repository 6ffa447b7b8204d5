package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NewHeU returns a He uniform initializer. Weights are drawn from
// U(-b, b) with b = gain * sqrt(3 / fanIn). Use gain = sqrt(2) for
// ReLU layers.
func NewHeU(gain float64, src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		mustFloat64(dt)

		fanIn, _ := fans(s...)
		bound := gain * math.Sqrt(3/fanIn)
		return uniform(bound, src, s...)
	}
}

// uniform returns values drawn from U(-bound, bound) for a tensor of
// shape s
func uniform(bound float64, src rand.Source, s ...int) []float64 {
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}

	data := make([]float64, tensor.Shape(s).TotalSize())
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}
