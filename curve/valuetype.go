package curve

import "fmt"

// ValueType states what a curve's y values mean.
type ValueType string

const (
	// ValueTypeZeroRate stores continuously compounded zero rates;
	// df = exp(-y*x).
	ValueTypeZeroRate ValueType = "zero_rate"
	// ValueTypeDiscountFactor stores discount factors directly.
	ValueTypeDiscountFactor ValueType = "discount_factor"
)

// Validate rejects unknown value types.
func (v ValueType) Validate() error {
	switch v {
	case ValueTypeZeroRate, ValueTypeDiscountFactor:
		return nil
	}
	return fmt.Errorf("ValueType: unknown value type %q", string(v))
}
