// Package motionplan implements sampling-based joint-space motion
// planners and an Interface which plans and executes collision-free
// paths for a simulated robot.
package motionplan

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	// Number of planner iterations before giving up
	defaultPlanIter = 5000

	// Maximum joint-space distance covered by one tree extension
	defaultStepSize = 0.3

	// Maximum joint displacement between two collision checks along an
	// edge
	defaultResolution = 0.05

	defaultGoalBias = 0.05
)

// ErrPlannerFailed is returned by a Planner which found no path
var ErrPlannerFailed = errors.New("motion planner failed to find path")

// UnsupportedPlannerError is returned when selecting a planner which
// has not been registered
type UnsupportedPlannerError struct {
	Name string
}

func (u *UnsupportedPlannerError) Error() string {
	return fmt.Sprintf("planner %q is not supported", u.Name)
}

// Validator returns whether a joint configuration is valid
type Validator func(q []float64) (bool, error)

// Space is the joint space a Planner searches
type Space struct {
	Limits []r1.Interval
	Valid  Validator
}

// Options configures a Planner
type Options struct {
	// Number of planner iterations before giving up
	PlanIter int `json:"plan_iter"`

	// StepSize bounds the joint-space distance of a single extension
	StepSize float64 `json:"step_size"`

	// Resolution bounds the joint displacement between two collision
	// checks along an edge
	Resolution float64 `json:"resolution"`

	// GoalBias is the probability of sampling the goal. Only used by
	// RRT.
	GoalBias float64 `json:"goal_bias"`

	Seed uint64 `json:"seed"`
}

// NewDefaultOptions returns the default planner Options
func NewDefaultOptions() Options {
	return Options{
		PlanIter:   defaultPlanIter,
		StepSize:   defaultStepSize,
		Resolution: defaultResolution,
		GoalBias:   defaultGoalBias,
	}
}

// Planner plans a path in joint space. Returned paths begin at start
// and end at goal. If no path is found within the planner's iteration
// budget, ErrPlannerFailed is returned. Cancelling ctx stops planning
// with ctx.Err().
type Planner interface {
	Plan(ctx context.Context, start, goal []float64) ([][]float64, error)
}

// Constructor creates a Planner searching a Space
type Constructor func(space Space, opt Options) Planner

var planners = map[string]Constructor{
	"RRT":        NewRRT,
	"RRTConnect": NewRRTConnect,
}

// RegisterPlanner makes a Planner available by name
func RegisterPlanner(name string, c Constructor) error {
	if _, ok := planners[name]; ok {
		return errors.Errorf("registerPlanner: planner %q already registered",
			name)
	}
	planners[name] = c
	return nil
}

// Planners returns the sorted names of all registered planners
func Planners() []string {
	names := make([]string, 0, len(planners))
	for name := range planners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPlanner returns the Planner registered as name
func NewPlanner(name string, space Space, opt Options) (Planner, error) {
	c, ok := planners[name]
	if !ok {
		return nil, &UnsupportedPlannerError{Name: name}
	}
	return c(space, opt), nil
}
