package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples starting states uniformly from a box
type UniformStarter struct {
	features int
	source   rand.Source
	dist     *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter over the given bounds
func NewUniformStarter(bounds []r1.Interval, seed uint64) *UniformStarter {
	source := rand.NewSource(seed)
	dist := distmv.NewUniform(bounds, source)

	return &UniformStarter{len(bounds), source, dist}
}

// Start implements the Starter interface
func (u *UniformStarter) Start() mat.Vector {
	return mat.NewVecDense(u.features, u.dist.Rand(nil))
}

// Seed implements the Starter interface
func (u *UniformStarter) Seed(seed uint64) {
	u.source.Seed(seed)
}
