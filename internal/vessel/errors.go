package vessel

import (
	"errors"
	"fmt"
)

// Initialization errors. A component that cannot bind returns one of these
// wrapped in an InitError; the caller decides whether to carry on without it.
var (
	ErrNoReference = errors.New("vessel: no reference sensor")

	ErrNoOrientationActuators = errors.New("vessel: no orientation actuators")

	ErrNoThrusters = errors.New("vessel: no thrust actuators")

	// ErrEmptyGroup indicates a classification step left a required group empty.
	ErrEmptyGroup = errors.New("vessel: empty actuator group")

	ErrNoConnector = errors.New("vessel: no connector")

	ErrNoSensors = errors.New("vessel: missing proximity sensors")

	ErrNoProbe = errors.New("vessel: no ranging probe")

	ErrNoSuspension = errors.New("vessel: no suspension units")
)

// InitError wraps an initialization failure with the component that hit it.
type InitError struct {
	Component string
	Detail    string
	Wrapped   error
}

func (e *InitError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Component, e.Wrapped)
	}
	return fmt.Sprintf("%s: %v: %s", e.Component, e.Wrapped, e.Detail)
}

func (e *InitError) Unwrap() error {
	return e.Wrapped
}

func NewInitError(component string, err error, detail string) *InitError {
	return &InitError{Component: component, Detail: detail, Wrapped: err}
}
