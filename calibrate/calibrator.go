package calibrate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
	"github.com/meenmo/multicurve/rates"
	"github.com/meenmo/multicurve/utils"
)

// resolvedNode is one calibration instrument with its quote and pillar
// fixed for the valuation date.
type resolvedNode struct {
	node    curve.Node
	measure Measure
	quote   float64
	pillar  time.Time
	label   string
}

// resolvedCurve is one curve of the group laid out on the flat
// parameter vector: nodes sorted by pillar date, offset recorded, base
// curve built once around the seed.
type resolvedCurve struct {
	def    curve.Definition
	offset int
	nodes  []resolvedNode
	xs     []float64
	dates  []time.Time
	labels []string
	seed   []float64
	base   *curve.Curve
}

// resolution is everything the Newton loop needs, materialized before
// the first iteration. No lookups or I/O happen after this point.
type resolution struct {
	valuation time.Time
	curves    []resolvedCurve
	total     int
	rowLabels []string
	discount  map[market.Currency]int
	forward   map[market.Index]int
	credit    map[curve.CreditAssignment]int
	fixings   map[market.Index]market.FixingSeries
}

func (c *Calibrator) resolve(group curve.GroupDefinition, valuation time.Time, snap *marketdata.Snapshot) (*resolution, error) {
	if err := group.Validate(); err != nil {
		return nil, &InvalidConfigurationError{Reason: err.Error()}
	}

	r := &resolution{
		valuation: valuation,
		discount:  make(map[market.Currency]int),
		forward:   make(map[market.Index]int),
		credit:    make(map[curve.CreditAssignment]int),
	}

	for idx, entry := range group.Entries {
		def := entry.Curve.WithDefaults()
		rc := resolvedCurve{def: def, offset: r.total}

		for _, node := range def.Nodes {
			measure, ok := c.measures.lookup(node.Kind())
			if !ok {
				return nil, &InvalidConfigurationError{
					Reason: fmt.Sprintf("no measure registered for node kind %s on curve %s", node.Kind(), def.Name),
				}
			}
			quote, ok := snap.Value(node.QuoteKey())
			if !ok {
				return nil, &MissingQuoteError{Key: node.QuoteKey(), Curve: def.Name}
			}
			pillar := node.PillarDate(valuation)
			if !pillar.After(valuation) {
				return nil, &InvalidConfigurationError{
					Reason: fmt.Sprintf("node %s on curve %s has pillar %s not after valuation %s",
						node.Label(), def.Name, pillar.Format(utils.DateLayout), valuation.Format(utils.DateLayout)),
				}
			}
			rc.nodes = append(rc.nodes, resolvedNode{
				node:    node,
				measure: measure,
				quote:   quote,
				pillar:  pillar,
				label:   node.Label(),
			})
		}

		sort.SliceStable(rc.nodes, func(i, j int) bool {
			return rc.nodes[i].pillar.Before(rc.nodes[j].pillar)
		})
		for i, rn := range rc.nodes {
			if i > 0 && !rc.nodes[i-1].pillar.Before(rn.pillar) {
				return nil, &InvalidConfigurationError{
					Reason: fmt.Sprintf("curve %s has duplicate pillar date %s (%s and %s)",
						def.Name, rn.pillar.Format(utils.DateLayout), rc.nodes[i-1].label, rn.label),
				}
			}
			rc.xs = append(rc.xs, def.DayCount.YearFraction(valuation, rn.pillar))
			rc.dates = append(rc.dates, rn.pillar)
			rc.labels = append(rc.labels, rn.label)
			r.rowLabels = append(r.rowLabels, def.Name+"/"+rn.label)
		}

		rc.seed = seedValues(rc)
		base, err := curve.NewCurve(def.Name, def.DayCount, def.YType, rc.xs, rc.seed,
			def.Interp, def.ExtrapLeft, def.ExtrapRight)
		if err != nil {
			return nil, &InvalidConfigurationError{Reason: err.Error()}
		}
		base, err = base.WithNodeMetadata(rc.dates, rc.labels)
		if err != nil {
			return nil, &InvalidConfigurationError{Reason: err.Error()}
		}
		rc.base = base

		r.total += len(rc.nodes)
		r.curves = append(r.curves, rc)

		for _, ccy := range entry.DiscountCurrencies {
			r.discount[ccy] = idx
		}
		for _, index := range entry.ForwardIndices {
			r.forward[index] = idx
		}
		for _, ca := range entry.CreditEntities {
			r.credit[ca] = idx
		}
	}
	return r, nil
}

// seedValues builds a curve's initial parameters: the definition's seed
// rate, else the first node's quote, hazard-adjusted for CDS nodes.
// Discount factor curves translate the flat rate to exp(-r*x).
func seedValues(rc resolvedCurve) []float64 {
	rate := rc.def.Seed
	if rate == 0 {
		rate = rc.nodes[0].quote
		if cds, ok := rc.nodes[0].node.(instruments.CdsNode); ok && cds.Conv.RecoveryRate < 1 {
			rate /= 1 - cds.Conv.RecoveryRate
		}
	}
	ys := make([]float64, len(rc.nodes))
	for j := range ys {
		if rc.def.YType == curve.ValueTypeDiscountFactor {
			ys[j] = math.Exp(-rate * rc.xs[j])
		} else {
			ys[j] = rate
		}
	}
	return ys
}

func (r *resolution) seedVector() []float64 {
	params := make([]float64, 0, r.total)
	for _, rc := range r.curves {
		params = append(params, rc.seed...)
	}
	return params
}

func (r *resolution) state(params []float64) *State {
	curves := make([]*curve.Curve, len(r.curves))
	offsets := make([]int, len(r.curves))
	for i := range r.curves {
		rc := &r.curves[i]
		curves[i] = rc.base.WithYValues(params[rc.offset : rc.offset+len(rc.seed)])
		offsets[i] = rc.offset
	}
	return &State{
		valuation: r.valuation,
		curves:    curves,
		offsets:   offsets,
		total:     r.total,
		discount:  r.discount,
		forward:   r.forward,
		credit:    r.credit,
		fixings:   r.fixings,
	}
}

// evaluate fills the residual vector and Jacobian from the measures and
// rejects non-finite numerics.
func (r *resolution) evaluate(s *State, iteration int, residual []float64, jac *mat.Dense) error {
	row := 0
	for _, rc := range r.curves {
		for _, rn := range rc.nodes {
			vd, err := rn.measure(s, rn.node, rn.quote)
			if err != nil {
				return err
			}
			if !isFinite(vd.Value) {
				return &SingularJacobianError{
					Iteration: iteration,
					Err:       fmt.Errorf("non-finite residual for %s", r.rowLabels[row]),
				}
			}
			residual[row] = vd.Value
			for j := 0; j < r.total; j++ {
				d := vd.Derivatives[j]
				if !isFinite(d) {
					return &SingularJacobianError{
						Iteration: iteration,
						Err:       fmt.Errorf("non-finite derivative of %s to parameter %d", r.rowLabels[row], j),
					}
				}
				jac.Set(row, j, d)
			}
			row++
		}
	}
	return nil
}

// Calibrate solves the group jointly against the snapshot and wraps the
// converged curves into a provider. Failure returns exactly one typed
// error and no partial result.
func (c *Calibrator) Calibrate(ctx context.Context, group curve.GroupDefinition, valuation time.Time,
	snap *marketdata.Snapshot, fixings map[market.Index]market.FixingSeries, fx market.FxMatrix) (*rates.Provider, error) {

	started := time.Now()
	if valuation.IsZero() {
		return nil, &InvalidConfigurationError{Reason: "valuation date is required"}
	}
	if snap == nil {
		return nil, &InvalidConfigurationError{Reason: "quote snapshot is required"}
	}

	res, err := c.resolve(group, valuation, snap)
	if err != nil {
		return nil, err
	}
	res.fixings = fixings

	n := res.total
	params := res.seedVector()
	residual := make([]float64, n)
	jac := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	var history []float64

	converged := false
	iterations := 0
	lastNorm := math.NaN()

	for iter := 1; iter <= c.opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w at iteration %d: %w", ErrCanceled, iter, context.Cause(ctx))
		}

		if err := res.evaluate(res.state(params), iter, residual, jac); err != nil {
			return nil, err
		}
		rNorm := maxAbs(residual)
		history = append(history, rNorm)

		for i := 0; i < n; i++ {
			rhs.SetVec(i, -residual[i])
		}
		var lu mat.LU
		lu.Factorize(jac)
		var delta mat.VecDense
		if err := lu.SolveVecTo(&delta, false, rhs); err != nil {
			return nil, &SingularJacobianError{Iteration: iter, Err: err}
		}

		dNorm := 0.0
		for j := 0; j < n; j++ {
			d := delta.AtVec(j)
			if !isFinite(d) {
				return nil, &SingularJacobianError{Iteration: iter, Err: errors.New("non-finite newton step")}
			}
			params[j] += d
			if a := math.Abs(d); a > dNorm {
				dNorm = a
			}
		}

		iterations = iter
		lastNorm = rNorm
		c.opts.Logger.Debug().
			Int("iteration", iter).
			Float64("residual_norm", rNorm).
			Float64("step_norm", dNorm).
			Msg("newton step")

		if rNorm < c.opts.ValueTolerance && dNorm < c.opts.ParameterTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, &NonConvergenceError{Iterations: iterations, ResidualNorm: lastNorm}
	}

	final := res.state(params)
	nodeResiduals := make([]rates.NodeResidual, 0, n)
	finalNorm := 0.0
	for _, rc := range res.curves {
		for _, rn := range rc.nodes {
			vd, err := rn.measure(final, rn.node, rn.quote)
			if err != nil {
				return nil, err
			}
			nodeResiduals = append(nodeResiduals, rates.NodeResidual{
				Curve:    rc.def.Name,
				Label:    rn.label,
				Residual: vd.Value,
			})
			if a := math.Abs(vd.Value); a > finalNorm {
				finalNorm = a
			}
		}
	}

	discount := make(map[market.Currency]*curve.Curve, len(res.discount))
	for ccy, idx := range res.discount {
		discount[ccy] = final.curves[idx]
	}
	forward := make(map[market.Index]*curve.Curve, len(res.forward))
	for index, idx := range res.forward {
		forward[index] = final.curves[idx]
	}
	credit := make(map[curve.CreditAssignment]*curve.Curve, len(res.credit))
	for key, idx := range res.credit {
		credit[key] = final.curves[idx]
	}

	c.opts.Logger.Info().
		Str("group", group.Name).
		Int("iterations", iterations).
		Float64("residual_norm", finalNorm).
		Dur("elapsed", time.Since(started)).
		Msg("calibration converged")

	return rates.NewProvider(rates.ProviderConfig{
		Valuation: valuation,
		Discount:  discount,
		Forward:   forward,
		Credit:    credit,
		Fixings:   fixings,
		Fx:        fx,
		Diagnostics: rates.Diagnostics{
			Iterations:    iterations,
			ResidualNorm:  finalNorm,
			History:       history,
			NodeResiduals: nodeResiduals,
			Elapsed:       time.Since(started),
		},
	})
}

// Calibrate runs a group through a fresh calibrator with the standard
// measures and default options.
func Calibrate(ctx context.Context, group curve.GroupDefinition, valuation time.Time,
	snap *marketdata.Snapshot, fixings map[market.Index]market.FixingSeries, fx market.FxMatrix) (*rates.Provider, error) {

	return NewCalibrator(nil, DefaultOptions()).Calibrate(ctx, group, valuation, snap, fixings, fx)
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
