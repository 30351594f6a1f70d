package function

import (
	"fmt"

	"github.com/neuroflow/neuroflow/linalg"
)

type noiseKind int

const (
	noiseNone noiseKind = iota
	noiseScalar
	noiseVector
	noiseDist
	noiseDistVector
)

// Noise is the noise specification shared by mechanisms and integrators. It
// may be a constant scalar, a per-element constant vector, a distribution
// function resampled on every execution, or a vector of distribution
// functions. The zero value is no noise.
type Noise struct {
	kind   noiseKind
	scalar float64
	vec    linalg.Vector
	dist   Distribution
	dists  []Distribution
}

// ConstantNoise returns a scalar noise term added to every element.
func ConstantNoise(v float64) Noise {
	return Noise{kind: noiseScalar, scalar: v}
}

// VectorNoise returns a per-element constant noise term.
func VectorNoise(v linalg.Vector) Noise {
	return Noise{kind: noiseVector, vec: linalg.Clone(v)}
}

// DistNoise returns noise resampled from d for every element on each
// execution.
func DistNoise(d Distribution) Noise {
	return Noise{kind: noiseDist, dist: d}
}

// DistVectorNoise returns noise with one distribution per element.
func DistVectorNoise(ds []Distribution) Noise {
	out := make([]Distribution, len(ds))
	copy(out, ds)
	return Noise{kind: noiseDistVector, dists: out}
}

// IsZero reports whether the noise term is absent.
func (n Noise) IsZero() bool {
	return n.kind == noiseNone
}

// Validate checks the noise shape against the variable length.
func (n Noise) Validate(size int) error {
	switch n.kind {
	case noiseVector:
		if len(n.vec) != size {
			return fmt.Errorf("function: noise parameter length %d does not match variable length %d", len(n.vec), size)
		}
	case noiseDistVector:
		if len(n.dists) != size {
			return fmt.Errorf("function: noise parameter length %d does not match variable length %d", len(n.dists), size)
		}
	}
	return nil
}

// Sample produces the noise vector for one execution. Constant noise repeats
// its value; distribution noise draws fresh samples.
func (n Noise) Sample(size int) linalg.Vector {
	switch n.kind {
	case noiseScalar:
		return linalg.Fill(size, n.scalar)
	case noiseVector:
		return linalg.Clone(n.vec)
	case noiseDist:
		out := make(linalg.Vector, size)
		for i := range out {
			out[i] = n.dist.Sample()
		}
		return out
	case noiseDistVector:
		out := make(linalg.Vector, size)
		for i := range out {
			out[i] = n.dists[i].Sample()
		}
		return out
	default:
		return linalg.Zeros(size)
	}
}
