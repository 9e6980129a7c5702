package motionplan

import (
	"context"

	"github.com/pkg/errors"
)

type rrtMotionPlanner struct {
	space Space
	opt   Options
	rand  *sampler
}

// NewRRT returns a Planner growing a single tree from the start
// configuration, sampling the goal with probability opt.GoalBias
func NewRRT(space Space, opt Options) Planner {
	return &rrtMotionPlanner{
		space: space,
		opt:   opt,
		rand:  newSampler(space, opt.Seed),
	}
}

func (mp *rrtMotionPlanner) Plan(ctx context.Context, start,
	goal []float64) ([][]float64, error) {
	root := &node{q: append([]float64(nil), start...)}
	tree := rrtMap{root: nil}

	for i := 0; i < mp.opt.PlanIter; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := goal
		if mp.rand.rng.Float64() >= mp.opt.GoalBias {
			target = mp.rand.sample()
		}

		nearest := nearestNeighbor(target, tree)
		q := steer(nearest.q, target, mp.opt.StepSize)
		ok, err := checkPath(ctx, mp.space.Valid, nearest.q, q, mp.opt.Resolution)
		if err != nil {
			return nil, errors.Wrap(err, "plan")
		}
		if !ok {
			continue
		}
		added := &node{q: q}
		tree[added] = nearest

		if inputDist(q, goal) > mp.opt.StepSize {
			continue
		}
		ok, err = checkPath(ctx, mp.space.Valid, q, goal, mp.opt.Resolution)
		if err != nil {
			return nil, errors.Wrap(err, "plan")
		}
		if ok {
			goalNode := &node{q: append([]float64(nil), goal...)}
			return extractPath(tree, rrtMap{goalNode: nil}, added, goalNode), nil
		}
	}
	return nil, ErrPlannerFailed
}
