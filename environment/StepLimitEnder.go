package environment

import "github.com/samuelfneumann/urgym/timestep"

// StepLimit is an Ender which truncates episodes once they reach a
// fixed number of steps
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit returns a StepLimit truncating episodes after
// episodeSteps steps
func NewStepLimit(episodeSteps int) *StepLimit {
	return &StepLimit{episodeSteps}
}

// End marks t as the last step of its episode, ended by
// timestep.Timeout, if t is at or beyond the step limit
func (s *StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number < s.episodeSteps {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(timestep.Timeout)
	return true
}

// Steps returns the maximum number of steps in an episode
func (s *StepLimit) Steps() int {
	return s.episodeSteps
}
