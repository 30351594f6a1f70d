// Package function implements the parameterized functions wrapped by
// neuroflow mechanisms.
//
// Functions come in five families:
//
//   - transfer functions (Linear, Logistic, Exponential, SoftMax, ReLU):
//     stateless elementwise transforms
//   - integrator functions (Simple, Constant, Adaptive, Accumulator,
//     DriftDiffusion, OrnsteinUhlenbeck): stateful accumulators carrying a
//     previous value between executions
//   - distribution functions (Normal, Uniform, Exponential, Gamma, Wald):
//     samplers used as noise sources
//   - the BogaczEtAl analytic drift-diffusion solution used by the DDM
//     mechanism in trial mode
//   - learning functions (Reinforcement, BackPropagation): weight-delta rules
//     applied to mapping projections
//
// Scalar-or-vector parameters (integration rates, noise) are expressed with
// Param and Noise; vector forms must match the variable length of the owning
// mechanism and fail validation otherwise.
package function

import (
	"fmt"

	"github.com/neuroflow/neuroflow/linalg"
)

// TransferFn is a stateless elementwise transform. Derivative reports
// df/dx evaluated from the function's input and output, as used by
// backpropagation learning.
type TransferFn interface {
	Apply(v linalg.Vector) linalg.Vector
	Derivative(input, output linalg.Vector) linalg.Vector
}

// IntegratorFn accumulates a value across executions. Next advances the
// integral by one step and returns the new value; Reset replaces the stored
// previous value (nil restores the configured initializer).
type IntegratorFn interface {
	Next(v linalg.Vector) (linalg.Vector, error)
	Reset(initializer linalg.Vector)
	Previous() linalg.Vector
}

// SizeValidator is implemented by functions whose vector parameters can be
// checked against a variable length before the first execution.
type SizeValidator interface {
	ValidateSize(size int) error
}

// Distribution draws samples for noise terms.
type Distribution interface {
	Sample() float64
}

// Param is a scalar-or-vector function parameter. A scalar broadcasts to the
// variable length; a vector must match it exactly.
type Param struct {
	scalar float64
	vec    linalg.Vector
	isVec  bool
	set    bool
}

// Scalar returns a scalar Param.
func Scalar(v float64) Param {
	return Param{scalar: v, set: true}
}

// PerElement returns a per-element Param.
func PerElement(v linalg.Vector) Param {
	return Param{vec: linalg.Clone(v), isVec: true, set: true}
}

// IsSet reports whether the parameter was explicitly provided.
func (p Param) IsSet() bool {
	return p.set
}

// IsVector reports whether the parameter is per-element.
func (p Param) IsVector() bool {
	return p.isVec
}

// ScalarValue returns the scalar value, or def when unset. It is only
// meaningful for non-vector params.
func (p Param) ScalarValue(def float64) float64 {
	if !p.set {
		return def
	}
	return p.scalar
}

// Resolve expands the parameter to a vector of the given size, using def when
// the parameter is unset. A vector param whose length differs from size is an
// error.
func (p Param) Resolve(size int, def float64) (linalg.Vector, error) {
	if !p.set {
		return linalg.Fill(size, def), nil
	}
	if p.isVec {
		if len(p.vec) != size {
			return nil, fmt.Errorf("function: parameter length %d does not match variable length %d", len(p.vec), size)
		}
		return linalg.Clone(p.vec), nil
	}
	return linalg.Fill(size, p.scalar), nil
}
