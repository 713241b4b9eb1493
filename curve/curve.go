package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/multicurve/market"
)

// Curve is an immutable interpolated nodal curve. The x values are year
// fractions from the valuation date under the curve's day count; the y
// values are the calibration parameters, one per node, read as zero rates
// or discount factors depending on the value type.
type Curve struct {
	name        string
	dayCount    market.DayCount
	yType       ValueType
	xs          []float64
	ys          []float64
	dates       []time.Time
	labels      []string
	interp      Interpolator
	extrapLeft  Extrapolator
	extrapRight Extrapolator
}

// NewCurve validates and builds a curve. The xs must be strictly
// increasing and xs/ys must have equal, non-zero length.
func NewCurve(name string, dc market.DayCount, yType ValueType, xs, ys []float64,
	interp Interpolator, left, right Extrapolator) (*Curve, error) {

	if name == "" {
		return nil, fmt.Errorf("NewCurve: name is required")
	}
	if err := dc.Validate(); err != nil {
		return nil, fmt.Errorf("NewCurve: %w", err)
	}
	if err := yType.Validate(); err != nil {
		return nil, fmt.Errorf("NewCurve: %w", err)
	}
	if interp == nil || left == nil || right == nil {
		return nil, fmt.Errorf("NewCurve: interpolator and extrapolators are required")
	}
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("NewCurve: need matching non-empty xs and ys, got %d and %d", len(xs), len(ys))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("NewCurve: x values must be strictly increasing, x[%d]=%.6f x[%d]=%.6f",
				i-1, xs[i-1], i, xs[i])
		}
	}

	c := &Curve{
		name:        name,
		dayCount:    dc,
		yType:       yType,
		xs:          append([]float64(nil), xs...),
		ys:          append([]float64(nil), ys...),
		interp:      interp,
		extrapLeft:  left,
		extrapRight: right,
	}
	return c, nil
}

// WithNodeMetadata returns a copy carrying the pillar dates and labels of
// the nodes the curve was calibrated from. Lengths must match the
// parameter count.
func (c *Curve) WithNodeMetadata(dates []time.Time, labels []string) (*Curve, error) {
	if len(dates) != len(c.xs) || len(labels) != len(c.xs) {
		return nil, fmt.Errorf("WithNodeMetadata: need %d dates and labels, got %d and %d",
			len(c.xs), len(dates), len(labels))
	}
	out := *c
	out.dates = append([]time.Time(nil), dates...)
	out.labels = append([]string(nil), labels...)
	return &out, nil
}

// WithYValues returns a copy with a replaced parameter vector. The length
// must match the parameter count; the receiver is never mutated. The
// calibrator leans on this to rebuild trial curves every iteration.
func (c *Curve) WithYValues(ys []float64) *Curve {
	if len(ys) != len(c.ys) {
		panic(fmt.Sprintf("WithYValues: need %d values, got %d", len(c.ys), len(ys)))
	}
	out := *c
	out.ys = append([]float64(nil), ys...)
	return &out
}

// Name returns the curve name.
func (c *Curve) Name() string { return c.name }

// DayCount returns the convention that maps dates onto x values.
func (c *Curve) DayCount() market.DayCount { return c.dayCount }

// YType reports what the y values mean.
func (c *Curve) YType() ValueType { return c.yType }

// ParameterCount returns the number of nodes.
func (c *Curve) ParameterCount() int { return len(c.ys) }

// XValues returns a copy of the node x values.
func (c *Curve) XValues() []float64 { return append([]float64(nil), c.xs...) }

// YValues returns a copy of the parameter vector.
func (c *Curve) YValues() []float64 { return append([]float64(nil), c.ys...) }

// NodeDates returns a copy of the node pillar dates, if attached.
func (c *Curve) NodeDates() []time.Time { return append([]time.Time(nil), c.dates...) }

// NodeLabels returns a copy of the node labels, if attached.
func (c *Curve) NodeLabels() []string { return append([]string(nil), c.labels...) }

// YValue interpolates the raw y value at x.
func (c *Curve) YValue(x float64) float64 {
	v, _ := c.yValueWeights(x)
	return v
}

// YValueWithWeights interpolates the raw y value at x together with its
// gradient against each node parameter.
func (c *Curve) YValueWithWeights(x float64) (float64, []float64) {
	return c.yValueWeights(x)
}

func (c *Curve) yValueWeights(x float64) (float64, []float64) {
	switch {
	case x < c.xs[0]:
		return c.extrapLeft.Left(c.xs, c.ys, x)
	case x > c.xs[len(c.xs)-1]:
		return c.extrapRight.Right(c.xs, c.ys, x)
	default:
		return c.interp.Interpolate(c.xs, c.ys, x)
	}
}

// DiscountFactor reads the discount factor at x. Zero rate curves convert
// with df = exp(-y*x).
func (c *Curve) DiscountFactor(x float64) float64 {
	df, _ := c.DiscountFactorWithGradient(x)
	return df
}

// DiscountFactorWithGradient reads the discount factor at x and its
// gradient against each node parameter. At x = 0 the discount factor
// is 1 whatever the parameters say: a payment today is worth itself.
func (c *Curve) DiscountFactorWithGradient(x float64) (float64, []float64) {
	if x == 0 {
		return 1, make([]float64, len(c.ys))
	}
	y, w := c.yValueWeights(x)
	switch c.yType {
	case ValueTypeDiscountFactor:
		return y, w
	default:
		df := math.Exp(-y * x)
		for i := range w {
			w[i] *= -x * df
		}
		return df, w
	}
}

// ZeroRate reads the continuously compounded zero rate at x. For discount
// factor curves x must be positive.
func (c *Curve) ZeroRate(x float64) float64 {
	y := c.YValue(x)
	if c.yType == ValueTypeDiscountFactor {
		return -math.Log(y) / x
	}
	return y
}
