// Package random implements an agent which selects actions uniformly
// at random within the bounds of an environment's action space
package random

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/agent"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Type is the agent.Type of Random agents
const Type agent.Type = "Random"

func init() {
	agent.Register(Type, Config{})
}

// Config configures a Random agent
type Config struct {
	// Scale shrinks the sampled interval of each action dimension
	// about its centre. A Scale of 0 selects only the centre of the
	// action space.
	Scale float64
}

// DefaultConfig returns a Config sampling from the whole action space
func DefaultConfig() Config {
	return Config{Scale: 1}
}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	if c.Scale < 0 || c.Scale > 1 {
		return errors.Errorf("validate: scale must be in [0, 1], got %v",
			c.Scale)
	}
	return nil
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return Type
}

// CreateAgent implements the agent.Config interface
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "createAgent")
	}
	return New(env.ActionSpec(), c.Scale, seed)
}

// Random selects actions uniformly at random. Random agents do not
// learn.
type Random struct {
	spec   environment.Spec
	bounds []r1.Interval
	dist   *distmv.Uniform
	eval   bool
}

// New returns a new Random agent acting in an action space described
// by spec. The action space must be bounded.
func New(spec environment.Spec, scale float64, seed uint64) (*Random,
	error) {
	bounds := make([]r1.Interval, spec.Len())
	for i := range bounds {
		low, high := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)
		if math.IsInf(low, 0) || math.IsInf(high, 0) {
			return nil, errors.Errorf("new: action dimension %v is "+
				"unbounded", i)
		}

		centre := (low + high) / 2
		half := scale * (high - low) / 2
		bounds[i] = r1.Interval{Min: centre - half, Max: centre + half}
	}

	r := &Random{spec: spec, bounds: bounds}
	if scale > 0 {
		r.dist = distmv.NewUniform(bounds, rand.NewPCG(seed, seed))
	}
	return r, nil
}

// SelectAction returns a uniformly random action
func (r *Random) SelectAction(timestep.TimeStep) *mat.VecDense {
	if r.dist == nil {
		action := mat.NewVecDense(len(r.bounds), nil)
		for i, b := range r.bounds {
			action.SetVec(i, b.Min)
		}
		return action
	}
	sample := r.dist.Rand(nil)
	return mat.NewVecDense(len(sample), sample)
}

// Eval sets the agent to evaluation mode
func (r *Random) Eval() { r.eval = true }

// Train sets the agent to training mode
func (r *Random) Train() { r.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (r *Random) IsEval() bool { return r.eval }

// Step implements the agent.Learner interface
func (r *Random) Step() error { return nil }

// Observe implements the agent.Learner interface
func (r *Random) Observe(mat.Vector, timestep.TimeStep) error { return nil }

// ObserveFirst implements the agent.Learner interface
func (r *Random) ObserveFirst(timestep.TimeStep) error { return nil }

// EndEpisode implements the agent.Learner interface
func (r *Random) EndEpisode() {}
