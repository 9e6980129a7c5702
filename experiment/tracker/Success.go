package tracker

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/timestep"
)

// Success tracks whether each episode ended in success, recording 1
// for a success and 0 otherwise. The mean of its data is the success
// rate of the experiment.
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess returns a new Success tracker which will save its data at
// filename
func NewSuccess(filename string) *Success {
	return &Success{filename: filename}
}

// Track implements the Tracker interface
func (s *Success) Track(t timestep.TimeStep) error {
	if !t.Last() {
		return nil
	}
	if t.Info.IsSuccess {
		s.successes = append(s.successes, 1)
	} else {
		s.successes = append(s.successes, 0)
	}
	return nil
}

// Data returns 1 for each successful episode and 0 for each failure
func (s *Success) Data() []float64 {
	return append([]float64(nil), s.successes...)
}

// Save saves the data tracked by the Success Tracker to disk
func (s *Success) Save() error {
	return s.SaveTo(s.filename)
}

// SaveTo implements the Tracker interface
func (s *Success) SaveTo(filename string) error {
	return errors.Wrap(save(filename, s.successes), "save")
}
