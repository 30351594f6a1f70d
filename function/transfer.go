package function

import (
	"math"

	"github.com/neuroflow/neuroflow/linalg"
)

// Linear computes slope*x + intercept elementwise.
type Linear struct {
	Slope     float64
	Intercept float64
}

// NewLinear returns a Linear with the default slope of 1 and intercept of 0.
func NewLinear() *Linear {
	return &Linear{Slope: 1}
}

func (f *Linear) Apply(v linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(v))
	for i, x := range v {
		out[i] = f.Slope*x + f.Intercept
	}
	return out
}

func (f *Linear) Derivative(_, output linalg.Vector) linalg.Vector {
	return linalg.Fill(len(output), f.Slope)
}

// Logistic computes 1 / (1 + exp(-(gain*x) + bias)) elementwise.
type Logistic struct {
	Gain float64
	Bias float64
}

// NewLogistic returns a Logistic with the default gain of 1 and bias of 0.
func NewLogistic() *Logistic {
	return &Logistic{Gain: 1}
}

func (f *Logistic) Apply(v linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(v))
	for i, x := range v {
		out[i] = 1 / (1 + math.Exp(-(f.Gain*x)+f.Bias))
	}
	return out
}

func (f *Logistic) Derivative(_, output linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(output))
	for i, y := range output {
		out[i] = f.Gain * y * (1 - y)
	}
	return out
}

// Exponential computes scale * exp(rate*x) elementwise.
type Exponential struct {
	Scale float64
	Rate  float64
}

// NewExponential returns an Exponential with the default scale and rate of 1.
func NewExponential() *Exponential {
	return &Exponential{Scale: 1, Rate: 1}
}

func (f *Exponential) Apply(v linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(v))
	for i, x := range v {
		out[i] = f.Scale * math.Exp(f.Rate*x)
	}
	return out
}

func (f *Exponential) Derivative(_, output linalg.Vector) linalg.Vector {
	return linalg.Scale(output, f.Rate)
}

// ReLU computes max(0, x) elementwise.
type ReLU struct{}

func (f *ReLU) Apply(v linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(v))
	for i, x := range v {
		if x > 0 {
			out[i] = x
		}
	}
	return out
}

func (f *ReLU) Derivative(input, _ linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(input))
	for i, x := range input {
		if x > 0 {
			out[i] = 1
		}
	}
	return out
}

// SoftMaxOutput selects what SoftMax reports.
type SoftMaxOutput int

const (
	// SoftMaxAll reports the full probability distribution.
	SoftMaxAll SoftMaxOutput = iota
	// SoftMaxMaxVal reports the maximum probability in its position and zero
	// elsewhere.
	SoftMaxMaxVal
	// SoftMaxMaxIndicator reports 1 in the maximum position and zero elsewhere.
	SoftMaxMaxIndicator
)

// SoftMax computes a numerically stable softmax of gain*x.
type SoftMax struct {
	Gain   float64
	Output SoftMaxOutput
}

// NewSoftMax returns a SoftMax with the default gain of 1 reporting the full
// distribution.
func NewSoftMax() *SoftMax {
	return &SoftMax{Gain: 1}
}

func (f *SoftMax) Apply(v linalg.Vector) linalg.Vector {
	scaled := linalg.Scale(v, f.Gain)
	max := linalg.Max(scaled)

	out := make(linalg.Vector, len(scaled))
	var sum float64
	for i, x := range scaled {
		out[i] = math.Exp(x - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	switch f.Output {
	case SoftMaxMaxVal:
		idx := linalg.MaxIndex(out)
		masked := linalg.Zeros(len(out))
		if idx >= 0 {
			masked[idx] = out[idx]
		}
		return masked
	case SoftMaxMaxIndicator:
		idx := linalg.MaxIndex(out)
		masked := linalg.Zeros(len(out))
		if idx >= 0 {
			masked[idx] = 1
		}
		return masked
	default:
		return out
	}
}

// Derivative uses the diagonal of the softmax Jacobian, which is what the
// learning rules consume.
func (f *SoftMax) Derivative(_, output linalg.Vector) linalg.Vector {
	out := make(linalg.Vector, len(output))
	for i, y := range output {
		out[i] = f.Gain * y * (1 - y)
	}
	return out
}
