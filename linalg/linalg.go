// Package linalg provides the dense vector and matrix primitives underneath
// the neuroflow computation graph.
//
// All mechanism values and projection weights in the engine are built on the
// two types defined here. Operations validate dimensions and return errors
// rather than panic, since shapes in a model are user input.
package linalg

import (
	"fmt"
	"math"
)

// Vector is a dense 1-D value. Mechanism inputs, outputs and noise terms are
// all Vectors.
type Vector = []float64

// Zeros returns a vector of n zeros.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// Clone returns a copy of v.
func Clone(v Vector) Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Fill returns a vector of n copies of val.
func Fill(n int, val float64) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = val
	}
	return v
}

// Add returns a+b elementwise.
func Add(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("linalg: add length mismatch: %d vs %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// Sub returns a-b elementwise.
func Sub(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("linalg: sub length mismatch: %d vs %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// Hadamard returns the elementwise product of a and b.
func Hadamard(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("linalg: hadamard length mismatch: %d vs %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out, nil
}

// Scale returns v*s elementwise.
func Scale(v Vector, s float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Sum returns the sum of all elements.
func Sum(v Vector) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// Max returns the largest element of v, or -Inf for an empty vector.
func Max(v Vector) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

// MaxIndex returns the index of the largest element, or -1 for an empty vector.
func MaxIndex(v Vector) int {
	idx := -1
	m := math.Inf(-1)
	for i, x := range v {
		if x > m {
			m = x
			idx = i
		}
	}
	return idx
}

// Dot computes the vector-matrix product v·M. len(v) must equal m.Rows();
// the result has m.Cols() elements.
func Dot(v Vector, m Matrix) (Vector, error) {
	if len(v) != m.Rows() {
		return nil, fmt.Errorf("linalg: dot dimension mismatch: vector length %d, matrix rows %d", len(v), m.Rows())
	}
	out := make(Vector, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		var s float64
		for i := 0; i < m.Rows(); i++ {
			s += v[i] * m[i][j]
		}
		out[j] = s
	}
	return out, nil
}

// Outer computes the outer product a⊗b as a len(a) x len(b) matrix.
func Outer(a, b Vector) Matrix {
	m := make(Matrix, len(a))
	for i := range a {
		m[i] = make(Vector, len(b))
		for j := range b {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}
