package environment

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples vectors uniformly from an axis-aligned box.
// Each dimension i is sampled from [bounds[i].Min, bounds[i].Max), or
// is fixed to Min if Min == Max.
//
// The samples of a UniformStarter are fully determined by its seed.
type UniformStarter struct {
	features int
	seed     uint64
	bounds   []r1.Interval
	rand     *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter
func NewUniformStarter(bounds []r1.Interval, seed uint64) *UniformStarter {
	b := make([]r1.Interval, len(bounds))
	copy(b, bounds)

	source := rand.NewPCG(seed, seed)
	rand := distmv.NewUniform(b, source)

	return &UniformStarter{len(b), seed, b, rand}
}

// NewBoxStarter returns a UniformStarter sampling from the box
// [low, high)
func NewBoxStarter(low, high []float64, seed uint64) *UniformStarter {
	if len(low) != len(high) {
		panic("newBoxStarter: low and high must have the same length")
	}

	bounds := make([]r1.Interval, len(low))
	for i := range bounds {
		bounds[i] = r1.Interval{Min: low[i], Max: high[i]}
	}
	return NewUniformStarter(bounds, seed)
}

// Start returns a new sample
func (u *UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.features, u.rand.Rand(nil))
}

// Bounds returns the sampling intervals of each dimension
func (u *UniformStarter) Bounds() []r1.Interval {
	b := make([]r1.Interval, len(u.bounds))
	copy(b, u.bounds)
	return b
}

// Seed returns the seed of the UniformStarter
func (u *UniformStarter) Seed() uint64 {
	return u.seed
}
