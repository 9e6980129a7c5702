package environment

import (
	"github.com/samuelfneumann/urgym/timestep"
)

// FunctionEnder ends an episode whenever a function of a TimeStep
// returns true.
type FunctionEnder struct {
	end     func(*timestep.TimeStep) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(*timestep.TimeStep) bool,
	endType timestep.EndType) *FunctionEnder {
	return &FunctionEnder{f, endType}
}

// NewSuccessEnder returns a FunctionEnder which terminates episodes
// as soon as a TimeStep reports success
func NewSuccessEnder() *FunctionEnder {
	return NewFunctionEnder(func(t *timestep.TimeStep) bool {
		return t.Info.IsSuccess
	}, timestep.TerminalStateReached)
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if f.end(t) {
		t.StepType = timestep.Last
		t.SetEnd(f.endType)
		return true
	}
	return false
}

// MultiEnder ends an episode when any of its Enders does. Enders are
// consulted in order, so the first Ender to end an episode determines
// its EndType.
type MultiEnder []Ender

// End implements the Ender interface
func (m MultiEnder) End(t *timestep.TimeStep) bool {
	for _, e := range m {
		if e.End(t) {
			return true
		}
	}
	return false
}
