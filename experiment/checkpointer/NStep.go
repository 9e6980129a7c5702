package checkpointer

import (
	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/urgym/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	steps    int
	object   Serializable

	// filename returns the filename to save the next checkpoint in.
	// See FilenameEnumerator and FileTimer.
	filename func() string
}

// NewNStep returns a Checkpointer that saves object every n calls to
// Checkpoint, that is every n environmental steps of an experiment
func NewNStep(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n <= 0 {
		return nil, errors.Errorf("newNStep: interval must be positive, "+
			"got %v", n)
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked object if the interval has elapsed
func (n *nStep) Checkpoint(ts.TimeStep) error {
	n.steps++
	if n.steps%n.interval != 0 {
		return nil
	}
	return errors.Wrap(n.object.SaveTo(n.filename()), "checkpoint")
}
