package motionplan

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

type node struct {
	q []float64
}

// rrtMap maps each node of a tree to its parent. The root maps to nil.
type rrtMap map[*node]*node

// sampler draws uniform configurations from a Space
type sampler struct {
	uniform *distmv.Uniform
	rng     *rand.Rand
}

func newSampler(space Space, seed uint64) *sampler {
	return &sampler{
		uniform: distmv.NewUniform(space.Limits, rand.NewPCG(seed, seed)),
		rng:     rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func (s *sampler) sample() []float64 {
	return s.uniform.Rand(nil)
}

func inputDist(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func nearestNeighbor(target []float64, tree rrtMap) *node {
	bestDist := math.Inf(1)
	var best *node
	for n := range tree {
		if dist := inputDist(target, n.q); dist < bestDist {
			bestDist = dist
			best = n
		}
	}
	return best
}

// steer returns the configuration at most stepSize from "from" along
// the straight line to "to"
func steer(from, to []float64, stepSize float64) []float64 {
	dist := inputDist(from, to)
	if dist <= stepSize {
		return append([]float64(nil), to...)
	}
	return interpolateInputs(from, to, stepSize/dist)
}

func interpolateInputs(from, to []float64, by float64) []float64 {
	q := make([]float64, len(from))
	for i := range from {
		q[i] = from[i] + (to[i]-from[i])*by
	}
	return q
}

// checkPath returns whether every configuration on the straight line
// from "from" to "to" is valid, checking at the given resolution
func checkPath(ctx context.Context, valid Validator, from, to []float64,
	resolution float64) (bool, error) {
	var maxDelta float64
	for i := range from {
		maxDelta = math.Max(maxDelta, math.Abs(to[i]-from[i]))
	}

	steps := int(math.Ceil(maxDelta / resolution))
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		ok, err := valid(interpolateInputs(from, to, float64(i)/float64(steps)))
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// extractPath returns the path from the root of startMap through
// startReached and goalReached to the root of goalMap
func extractPath(startMap, goalMap rrtMap, startReached,
	goalReached *node) [][]float64 {
	path := make([][]float64, 0)
	for startReached != nil {
		path = append(path, startReached.q)
		startReached = startMap[startReached]
	}

	// reverse the slice
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	for goalReached != nil {
		path = append(path, goalReached.q)
		goalReached = goalMap[goalReached]
	}
	return path
}
