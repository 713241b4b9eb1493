package calibrate

// ValueDerivatives couples a scalar with its gradient against the full
// group parameter vector. Measures assemble their Jacobian rows by
// combining these with the usual calculus rules, so every arithmetic
// helper returns a fresh value and never mutates its operands.
type ValueDerivatives struct {
	Value       float64
	Derivatives []float64
}

func zeroDerivatives(n int) ValueDerivatives {
	return ValueDerivatives{Derivatives: make([]float64, n)}
}

// Add returns v + o.
func (v ValueDerivatives) Add(o ValueDerivatives) ValueDerivatives {
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = v.Derivatives[i] + o.Derivatives[i]
	}
	return ValueDerivatives{Value: v.Value + o.Value, Derivatives: d}
}

// Sub returns v - o.
func (v ValueDerivatives) Sub(o ValueDerivatives) ValueDerivatives {
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = v.Derivatives[i] - o.Derivatives[i]
	}
	return ValueDerivatives{Value: v.Value - o.Value, Derivatives: d}
}

// Mul returns v * o under the product rule.
func (v ValueDerivatives) Mul(o ValueDerivatives) ValueDerivatives {
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = v.Derivatives[i]*o.Value + v.Value*o.Derivatives[i]
	}
	return ValueDerivatives{Value: v.Value * o.Value, Derivatives: d}
}

// Div returns v / o under the quotient rule.
func (v ValueDerivatives) Div(o ValueDerivatives) ValueDerivatives {
	value := v.Value / o.Value
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = (v.Derivatives[i] - value*o.Derivatives[i]) / o.Value
	}
	return ValueDerivatives{Value: value, Derivatives: d}
}

// Scale returns v * k.
func (v ValueDerivatives) Scale(k float64) ValueDerivatives {
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = v.Derivatives[i] * k
	}
	return ValueDerivatives{Value: v.Value * k, Derivatives: d}
}

// AddScalar returns v + k; the gradient is unchanged.
func (v ValueDerivatives) AddScalar(k float64) ValueDerivatives {
	return ValueDerivatives{
		Value:       v.Value + k,
		Derivatives: append([]float64(nil), v.Derivatives...),
	}
}

// AddScaled returns v + k*o, the accumulation step of a leg sum.
func (v ValueDerivatives) AddScaled(o ValueDerivatives, k float64) ValueDerivatives {
	d := make([]float64, len(v.Derivatives))
	for i := range d {
		d[i] = v.Derivatives[i] + k*o.Derivatives[i]
	}
	return ValueDerivatives{Value: v.Value + k*o.Value, Derivatives: d}
}
