package calibrate

import "github.com/rs/zerolog"

// Options tunes the Newton solve. Zero-valued fields fall back to the
// defaults, so callers set only what they care about.
type Options struct {
	// ValueTolerance bounds the residual max-norm at convergence.
	ValueTolerance float64
	// ParameterTolerance bounds the Newton step max-norm at convergence.
	ParameterTolerance float64
	// MaxIterations caps the number of Newton steps.
	MaxIterations int
	// Logger receives per-iteration traces at debug level. Nil keeps
	// the solver silent.
	Logger *zerolog.Logger
}

// DefaultOptions returns the standard solver settings: both tolerances
// at 1e-9 and a budget of 100 iterations.
func DefaultOptions() Options {
	return Options{
		ValueTolerance:     1e-9,
		ParameterTolerance: 1e-9,
		MaxIterations:      100,
	}
}

// Calibrator drives the joint Newton solve for a curve group. It holds
// no per-call state, so one calibrator serves concurrent calls.
type Calibrator struct {
	measures *Measures
	opts     Options
}

// NewCalibrator builds a calibrator. A nil measure set selects
// StandardMeasures.
func NewCalibrator(measures *Measures, opts Options) *Calibrator {
	if measures == nil {
		measures = StandardMeasures()
	}
	def := DefaultOptions()
	if opts.ValueTolerance <= 0 {
		opts.ValueTolerance = def.ValueTolerance
	}
	if opts.ParameterTolerance <= 0 {
		opts.ParameterTolerance = def.ParameterTolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &Calibrator{measures: measures, opts: opts}
}
