package motionplan

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/spatial/r1"
)

// wallSpace is a 2D square with a wall at 4 <= x <= 6 which can only be
// passed above y = 8
func wallSpace() Space {
	return Space{
		Limits: []r1.Interval{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
		Valid: func(q []float64) (bool, error) {
			if q[0] < 0 || q[0] > 10 || q[1] < 0 || q[1] > 10 {
				return false, nil
			}
			return !(q[0] >= 4 && q[0] <= 6 && q[1] < 8), nil
		},
	}
}

func TestPlannersAroundWall(t *testing.T) {
	start := []float64{1, 1}
	goal := []float64{9, 1}
	space := wallSpace()

	opt := NewDefaultOptions()
	opt.StepSize = 1
	opt.Seed = 3

	for _, name := range Planners() {
		planner, err := NewPlanner(name, space, opt)
		test.That(t, err, test.ShouldBeNil)

		path, err := planner.Plan(context.Background(), start, goal)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, path[0], test.ShouldResemble, start)
		test.That(t, path[len(path)-1], test.ShouldResemble, goal)

		var passed bool
		for n := 1; n < len(path); n++ {
			ok, err := checkPath(context.Background(), space.Valid, path[n-1],
				path[n], opt.Resolution)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, ok, test.ShouldBeTrue)
			test.That(t, inputDist(path[n-1], path[n]), test.ShouldBeLessThanOrEqualTo,
				opt.StepSize+1e-9)
			passed = passed || path[n][1] >= 8
		}
		test.That(t, passed, test.ShouldBeTrue)

		smoothed, err := smoothPath(context.Background(), space.Valid, path,
			opt.Resolution)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(smoothed), test.ShouldBeLessThanOrEqualTo, len(path))
		test.That(t, smoothed[0], test.ShouldResemble, start)
		test.That(t, smoothed[len(smoothed)-1], test.ShouldResemble, goal)
	}
}

func TestPlannerFailure(t *testing.T) {
	// The wall cannot be passed
	space := Space{
		Limits: []r1.Interval{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
		Valid: func(q []float64) (bool, error) {
			return !(q[0] >= 4 && q[0] <= 6), nil
		},
	}
	opt := NewDefaultOptions()
	opt.PlanIter = 200

	for _, name := range Planners() {
		planner, err := NewPlanner(name, space, opt)
		test.That(t, err, test.ShouldBeNil)

		_, err = planner.Plan(context.Background(), []float64{1, 1},
			[]float64{9, 1})
		test.That(t, errors.Is(err, ErrPlannerFailed), test.ShouldBeTrue)
	}
}

func TestPlannerValidatorError(t *testing.T) {
	failure := errors.New("no simulation")
	space := Space{
		Limits: []r1.Interval{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
		Valid: func([]float64) (bool, error) {
			return false, failure
		},
	}

	for _, name := range Planners() {
		planner, err := NewPlanner(name, space, NewDefaultOptions())
		test.That(t, err, test.ShouldBeNil)

		_, err = planner.Plan(context.Background(), []float64{1, 1},
			[]float64{9, 1})
		test.That(t, errors.Is(err, failure), test.ShouldBeTrue)
	}
}

func TestNewPlannerUnsupported(t *testing.T) {
	_, err := NewPlanner("PRM", wallSpace(), NewDefaultOptions())
	var unsupported *UnsupportedPlannerError
	test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldEqual, `planner "PRM" is not supported`)
}
