package motionplan

import (
	"context"

	"github.com/pkg/errors"
)

// extension results
const (
	trapped = iota
	advanced
	reached
)

type rrtConnectMotionPlanner struct {
	space Space
	opt   Options
	rand  *sampler
}

// NewRRTConnect returns a Planner growing one tree from the start and
// one from the goal, greedily connecting them after each extension
func NewRRTConnect(space Space, opt Options) Planner {
	return &rrtConnectMotionPlanner{
		space: space,
		opt:   opt,
		rand:  newSampler(space, opt.Seed),
	}
}

func (mp *rrtConnectMotionPlanner) Plan(ctx context.Context, start,
	goal []float64) ([][]float64, error) {
	startMap := rrtMap{&node{q: append([]float64(nil), start...)}: nil}
	goalMap := rrtMap{&node{q: append([]float64(nil), goal...)}: nil}

	// Alternate which map is grown toward the samples
	map1, map2 := startMap, goalMap

	for i := 0; i < mp.opt.PlanIter; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, added, err := mp.extend(ctx, map1, mp.rand.sample())
		if err != nil {
			return nil, errors.Wrap(err, "plan")
		}
		if status != trapped {
			status, connected, err := mp.connect(ctx, map2, added.q)
			if err != nil {
				return nil, errors.Wrap(err, "plan")
			}
			if status == reached {
				if _, ok := startMap[added]; ok {
					return extractPath(startMap, goalMap, added, goalMap[connected]), nil
				}
				return extractPath(startMap, goalMap, connected, goalMap[added]), nil
			}
		}

		map1, map2 = map2, map1
	}
	return nil, ErrPlannerFailed
}

// extend grows tree by one step toward target
func (mp *rrtConnectMotionPlanner) extend(ctx context.Context, tree rrtMap,
	target []float64) (int, *node, error) {
	nearest := nearestNeighbor(target, tree)
	q := steer(nearest.q, target, mp.opt.StepSize)

	ok, err := checkPath(ctx, mp.space.Valid, nearest.q, q, mp.opt.Resolution)
	if err != nil || !ok {
		return trapped, nil, err
	}

	added := &node{q: q}
	tree[added] = nearest
	if inputDist(q, target) == 0 {
		return reached, added, nil
	}
	return advanced, added, nil
}

// connect extends tree toward target until it is reached or trapped.
// When reached, the returned node holds target.
func (mp *rrtConnectMotionPlanner) connect(ctx context.Context, tree rrtMap,
	target []float64) (int, *node, error) {
	for {
		status, added, err := mp.extend(ctx, tree, target)
		if err != nil || status != advanced {
			return status, added, err
		}
	}
}
