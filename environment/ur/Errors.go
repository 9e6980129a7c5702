package ur

import "github.com/pkg/errors"

// EnvError records an error and the operation that caused it
type EnvError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *EnvError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *EnvError) Unwrap() error {
	return e.Err
}

var (
	// ErrNotRunning is returned when stepping an environment which has
	// not been reset since construction or since its last episode ended
	ErrNotRunning = errors.New("environment not running, call Reset")

	// ErrActionShape is returned when an action does not match the
	// environment's action space
	ErrActionShape = errors.New("action has wrong shape")

	// ErrNoGoal is returned when a task's goal is requested before the
	// task was reset
	ErrNoGoal = errors.New("no goal sampled, call Reset")
)

// IsNotRunning returns whether an error reports that an environment
// was stepped while idle
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsActionShape returns whether an error reports an action of the
// wrong shape
func IsActionShape(err error) bool {
	return errors.Is(err, ErrActionShape)
}

// IsNoGoal returns whether an error reports a missing goal
func IsNoGoal(err error) bool {
	return errors.Is(err, ErrNoGoal)
}
