// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended. Episodes which end by reaching
// a terminal state are terminated, while episodes cut off by a step
// budget are truncated.
type EndType int

const (
	// Unknown is the EndType of a TimeStep which is not the last in
	// its episode
	Unknown EndType = iota

	// TerminalStateReached indicates that the episode ended because
	// the task was completed
	TerminalStateReached

	// Timeout indicates that the episode ended because its step budget
	// was exhausted
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Info holds auxiliary information about a TimeStep of a
// goal-conditioned environment
type Info struct {
	// IsSuccess reports whether the achieved goal was within the
	// success threshold of the desired goal
	IsSuccess bool

	// Collision reports whether the robot was in contact with the
	// scene after the action was applied
	Collision bool
}

// TimeStep packages together a single timestep in an environment.
//
// Goal-conditioned environments fill in AchievedGoal and DesiredGoal in
// addition to the Observation, which then holds only the robot and task
// observations.
type TimeStep struct {
	StepType
	Reward       float64
	Discount     float64
	Observation  *mat.VecDense
	AchievedGoal *mat.VecDense
	DesiredGoal  *mat.VecDense
	Info         Info
	Number       int

	endType EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// NewGoal returns a new TimeStep of a goal-conditioned environment
func NewGoal(t StepType, r, d float64, o, achieved, desired *mat.VecDense,
	info Info, n int) TimeStep {
	return TimeStep{
		StepType:     t,
		Reward:       r,
		Discount:     d,
		Observation:  o,
		AchievedGoal: achieved,
		DesiredGoal:  desired,
		Info:         info,
		Number:       n,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets how the episode ended. It has no effect unless the
// TimeStep is the last in its episode.
func (t *TimeStep) SetEnd(e EndType) {
	if t.Last() {
		t.endType = e
	}
}

// EndType returns how the episode ended
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminated returns whether the episode ended by reaching a terminal
// state
func (t *TimeStep) Terminated() bool {
	return t.Last() && t.endType == TerminalStateReached
}

// Truncated returns whether the episode was cut off before reaching a
// terminal state
func (t *TimeStep) Truncated() bool {
	return t.Last() && t.endType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v  |  Success: %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number,
		t.Info.IsSuccess)
}
