package calibrate

import (
	"errors"
	"fmt"

	"github.com/meenmo/multicurve/market"
)

// ErrCanceled reports a calibration stopped at an iteration boundary
// because the caller's context was done. The context cause is wrapped
// alongside it.
var ErrCanceled = errors.New("calibration canceled")

// MissingQuoteError is returned when a node's quote key is absent from
// the snapshot. Resolution fails before any iteration runs.
type MissingQuoteError struct {
	Key   market.QuoteKey
	Curve string
}

func (e *MissingQuoteError) Error() string {
	return fmt.Sprintf("missing quote %s for curve %s", e.Key, e.Curve)
}

// InvalidConfigurationError is returned for group or node definitions
// the calibrator cannot solve: role clashes, duplicate pillars, nodes
// without measures, instruments referencing unassigned curves.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// SingularJacobianError is returned when the Newton system cannot be
// solved: LU failure or non-finite numerics. Iteration counts from 1.
type SingularJacobianError struct {
	Iteration int
	Err       error
}

func (e *SingularJacobianError) Error() string {
	return fmt.Sprintf("singular jacobian at iteration %d: %v", e.Iteration, e.Err)
}

func (e *SingularJacobianError) Unwrap() error { return e.Err }

// NonConvergenceError is returned when the iteration budget runs out
// with the tolerances unmet.
type NonConvergenceError struct {
	Iterations   int
	ResidualNorm float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations, residual norm %.3e",
		e.Iterations, e.ResidualNorm)
}
