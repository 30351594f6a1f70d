package function

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
)

// BackPropagation computes the weight change matrix for one projection from
// the sender activation and the receiver's error delta:
//
//	dW[i][j] = learningRate * activation[i] * delta[j]
//
// Deltas for upstream projections are obtained with PropagateError.
type BackPropagation struct {
	LearningRate float64
}

// NewBackPropagation returns a BackPropagation function with the default
// learning rate of 1.
func NewBackPropagation() *BackPropagation {
	return &BackPropagation{LearningRate: 1}
}

// WeightChange returns the matrix of weight adjustments for a projection
// whose sender produced activation and whose receiver has the given delta.
func (f *BackPropagation) WeightChange(activation, delta linalg.Vector) linalg.Matrix {
	m := linalg.Outer(activation, delta)
	for i := range m {
		for j := range m[i] {
			m[i][j] *= f.LearningRate
		}
	}
	return m
}

// PropagateError backs the receiver deltas through a weight matrix and scales
// them by the sender's transfer derivative, yielding the sender deltas. The
// matrix is indexed [sender][receiver].
func PropagateError(m linalg.Matrix, delta, derivative linalg.Vector) (linalg.Vector, error) {
	if m.Cols() != len(delta) {
		return nil, errors.Errorf("function: matrix width %d must equal length of error signal %d", m.Cols(), len(delta))
	}
	if m.Rows() != len(derivative) {
		return nil, errors.Errorf("function: matrix height %d must equal length of derivative %d", m.Rows(), len(derivative))
	}
	out := linalg.Zeros(m.Rows())
	for i := range m {
		var sum float64
		for j := range m[i] {
			sum += m[i][j] * delta[j]
		}
		out[i] = sum * derivative[i]
	}
	return out, nil
}

// Reinforcement computes a delta-rule weight change for a single rewarded
// action: the error signal may have at most one non-zero element, and the
// change is applied to the diagonal entry for that element.
type Reinforcement struct {
	LearningRate float64
}

// NewReinforcement returns a Reinforcement function with the default learning
// rate of 1.
func NewReinforcement() *Reinforcement {
	return &Reinforcement{LearningRate: 1}
}

// WeightChange returns a square matrix of weight adjustments sized to the
// error signal.
func (f *Reinforcement) WeightChange(errSignal linalg.Vector) (linalg.Matrix, error) {
	idx := -1
	for i, e := range errSignal {
		if e == 0 {
			continue
		}
		if idx >= 0 {
			return nil, errors.New("function: error signal for Reinforcement must have only one non-zero value")
		}
		idx = i
	}
	m := linalg.Constant(len(errSignal), len(errSignal), 0)
	if idx >= 0 {
		m[idx][idx] = f.LearningRate * errSignal[idx]
	}
	return m, nil
}
