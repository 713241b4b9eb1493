package rates

import "time"

// NodeResidual records how far one calibration node reprices from its
// target on the final curves.
type NodeResidual struct {
	Curve    string
	Label    string
	Residual float64
}

// Diagnostics summarizes a calibration run: how hard the solver worked
// and how well the final curves reproduce the input quotes.
type Diagnostics struct {
	// Iterations is the number of Newton steps taken.
	Iterations int
	// ResidualNorm is the max-norm of the node residuals on the final
	// curves.
	ResidualNorm float64
	// History holds the residual max-norm seen at the start of each
	// iteration, in order.
	History []float64
	// NodeResiduals reports the final repricing error per node.
	NodeResiduals []NodeResidual
	// Elapsed is the wall-clock time of the calibration call.
	Elapsed time.Duration
}

func (d Diagnostics) clone() Diagnostics {
	out := d
	out.History = append([]float64(nil), d.History...)
	out.NodeResiduals = append([]NodeResidual(nil), d.NodeResiduals...)
	return out
}
