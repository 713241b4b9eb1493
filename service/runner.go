package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meenmo/multicurve/calibrate"
	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
)

// RunnerOptions tunes a Runner. Zero values mean a standard-measure
// calibrator, no fixings, an empty FX matrix, today's date as the
// valuation date and no logging.
type RunnerOptions struct {
	Calibrator *calibrate.Calibrator
	Fixings    map[market.Index]market.FixingSeries
	Fx         market.FxMatrix
	Valuation  func() time.Time
	Logger     *zerolog.Logger
}

// Runner executes one calibration end to end: fetch quotes from the
// source, build a snapshot, calibrate the group, publish the result to
// the registry.
type Runner struct {
	group      curve.GroupDefinition
	source     marketdata.Source
	registry   *Registry
	calibrator *calibrate.Calibrator
	fixings    map[market.Index]market.FixingSeries
	fx         market.FxMatrix
	valuation  func() time.Time
	log        *zerolog.Logger
}

// NewRunner wires a runner for one curve group.
func NewRunner(group curve.GroupDefinition, source marketdata.Source, registry *Registry, opts RunnerOptions) *Runner {
	if opts.Calibrator == nil {
		opts.Calibrator = calibrate.NewCalibrator(nil, calibrate.DefaultOptions())
	}
	if opts.Valuation == nil {
		opts.Valuation = today
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &Runner{
		group:      group,
		source:     source,
		registry:   registry,
		calibrator: opts.Calibrator,
		fixings:    opts.Fixings,
		fx:         opts.Fx,
		valuation:  opts.Valuation,
		log:        opts.Logger,
	}
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// GroupName returns the name of the group this runner calibrates.
func (r *Runner) GroupName() string { return r.group.Name }

// Run performs one calibration and publishes the outcome. The returned
// record is also appended to the registry history, whether the run
// succeeded or not.
func (r *Runner) Run(ctx context.Context) (RunRecord, error) {
	rec := RunRecord{ID: uuid.New(), Group: r.group.Name, Start: time.Now()}

	records, err := r.source.Fetch(ctx)
	if err != nil {
		return r.fail(rec, fmt.Errorf("Runner.Run: fetch: %w", err))
	}
	snap, err := marketdata.BuildSnapshot(records)
	if err != nil {
		return r.fail(rec, fmt.Errorf("Runner.Run: %w", err))
	}

	provider, err := r.calibrator.Calibrate(ctx, r.group, r.valuation(), snap, r.fixings, r.fx)
	rec.Duration = time.Since(rec.Start)
	if err != nil {
		return r.fail(rec, fmt.Errorf("Runner.Run: %w", err))
	}

	diag := provider.Diagnostics()
	rec.Iterations = diag.Iterations
	rec.ResidualNorm = diag.ResidualNorm
	r.registry.Publish(r.group.Name, provider, rec)

	r.log.Info().
		Str("group", rec.Group).
		Str("run_id", rec.ID.String()).
		Int("iterations", rec.Iterations).
		Float64("residual_norm", rec.ResidualNorm).
		Dur("duration", rec.Duration).
		Msg("calibration published")
	return rec, nil
}

func (r *Runner) fail(rec RunRecord, err error) (RunRecord, error) {
	if rec.Duration == 0 {
		rec.Duration = time.Since(rec.Start)
	}
	rec.Err = err.Error()
	r.registry.Publish(r.group.Name, nil, rec)

	r.log.Error().
		Str("group", rec.Group).
		Str("run_id", rec.ID.String()).
		Dur("duration", rec.Duration).
		Err(err).
		Msg("calibration failed")
	return rec, err
}
