package curve

import (
	"fmt"
	"math"
	"sort"
)

// Interpolator reads a value off a set of curve nodes. Implementations
// also report the gradient of the value with respect to each node's y,
// which is what the calibration Jacobian is assembled from.
type Interpolator interface {
	Name() string
	// Interpolate returns the value at x, with xs[0] <= x <= xs[last],
	// and the gradient of that value against each ys entry.
	Interpolate(xs, ys []float64, x float64) (float64, []float64)
}

// Extrapolator extends a curve beyond its first or last node.
type Extrapolator interface {
	Name() string
	// Left handles x below xs[0].
	Left(xs, ys []float64, x float64) (float64, []float64)
	// Right handles x above xs[last].
	Right(xs, ys []float64, x float64) (float64, []float64)
}

// bracket returns i such that xs[i] <= x <= xs[i+1]. xs is strictly
// increasing and x lies inside the node range.
func bracket(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		return 0
	}
	if i >= len(xs) {
		return len(xs) - 2
	}
	if xs[i] == x && i < len(xs)-1 {
		return i
	}
	return i - 1
}

// LinearInterpolator interpolates linearly on the raw y values.
type LinearInterpolator struct{}

func (LinearInterpolator) Name() string { return "linear" }

func (LinearInterpolator) Interpolate(xs, ys []float64, x float64) (float64, []float64) {
	w := make([]float64, len(ys))
	if len(xs) == 1 {
		w[0] = 1
		return ys[0], w
	}
	i := bracket(xs, x)
	lambda := (x - xs[i]) / (xs[i+1] - xs[i])
	w[i] = 1 - lambda
	w[i+1] = lambda
	return (1-lambda)*ys[i] + lambda*ys[i+1], w
}

// LogLinearInterpolator interpolates linearly on ln(y). It requires
// positive y values and is the natural choice for discount factor curves:
// straight lines in log space are piecewise constant forward rates.
type LogLinearInterpolator struct{}

func (LogLinearInterpolator) Name() string { return "log-linear" }

func (LogLinearInterpolator) Interpolate(xs, ys []float64, x float64) (float64, []float64) {
	w := make([]float64, len(ys))
	if len(xs) == 1 {
		w[0] = 1
		return ys[0], w
	}
	i := bracket(xs, x)
	lambda := (x - xs[i]) / (xs[i+1] - xs[i])
	v := math.Exp((1-lambda)*math.Log(ys[i]) + lambda*math.Log(ys[i+1]))
	w[i] = v * (1 - lambda) / ys[i]
	w[i+1] = v * lambda / ys[i+1]
	return v, w
}

// FlatExtrapolator holds the boundary node's value.
type FlatExtrapolator struct{}

func (FlatExtrapolator) Name() string { return "flat" }

func (FlatExtrapolator) Left(xs, ys []float64, x float64) (float64, []float64) {
	w := make([]float64, len(ys))
	w[0] = 1
	return ys[0], w
}

func (FlatExtrapolator) Right(xs, ys []float64, x float64) (float64, []float64) {
	w := make([]float64, len(ys))
	w[len(ys)-1] = 1
	return ys[len(ys)-1], w
}

// LinearExtrapolator continues the slope of the boundary segment on the
// raw y values. A single-node curve extrapolates flat.
type LinearExtrapolator struct{}

func (LinearExtrapolator) Name() string { return "linear" }

func (LinearExtrapolator) Left(xs, ys []float64, x float64) (float64, []float64) {
	w := make([]float64, len(ys))
	if len(xs) == 1 {
		w[0] = 1
		return ys[0], w
	}
	lambda := (x - xs[0]) / (xs[1] - xs[0])
	w[0] = 1 - lambda
	w[1] = lambda
	return (1-lambda)*ys[0] + lambda*ys[1], w
}

func (LinearExtrapolator) Right(xs, ys []float64, x float64) (float64, []float64) {
	n := len(ys)
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return ys[0], w
	}
	lambda := (x - xs[n-2]) / (xs[n-1] - xs[n-2])
	w[n-2] = 1 - lambda
	w[n-1] = lambda
	return (1-lambda)*ys[n-2] + lambda*ys[n-1], w
}

// InterpolatorByName resolves the names used in group definition files.
func InterpolatorByName(name string) (Interpolator, error) {
	switch name {
	case "linear":
		return LinearInterpolator{}, nil
	case "log-linear":
		return LogLinearInterpolator{}, nil
	}
	return nil, fmt.Errorf("InterpolatorByName: unknown interpolator %q", name)
}

// ExtrapolatorByName resolves the names used in group definition files.
func ExtrapolatorByName(name string) (Extrapolator, error) {
	switch name {
	case "flat":
		return FlatExtrapolator{}, nil
	case "linear":
		return LinearExtrapolator{}, nil
	}
	return nil, fmt.Errorf("ExtrapolatorByName: unknown extrapolator %q", name)
}
