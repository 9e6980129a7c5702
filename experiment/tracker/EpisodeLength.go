package tracker

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode
func (e *EpisodeLength) Track(t timestep.TimeStep) error {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
	return nil
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return e.SaveTo(e.filename)
}

// SaveTo implements the Tracker interface
func (e *EpisodeLength) SaveTo(filename string) error {
	return errors.Wrap(save(filename, e.episodeLengths), "save")
}
