package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged indicates the body state became NaN or infinite.
	ErrDiverged = errors.New("sim: state diverged")

	ErrInvalidConfig = errors.New("sim: invalid config")

	ErrUnknownLayout = errors.New("sim: unknown layout")
)

// TickError wraps a failure with the tick it happened on.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.3f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
