// Package checkpointer implements periodic snapshots of experiment
// data
package checkpointer

import ts "github.com/samuelfneumann/urgym/timestep"

// Serializable is an object that can be saved to a file
type Serializable interface {
	SaveTo(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
