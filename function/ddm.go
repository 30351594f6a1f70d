package function

import (
	"math"
)

// BogaczEtAl is the analytic solution of the drift diffusion process from
// Bogacz et al. (2006): expected mean response time and error rate for a
// two-boundary diffusion with the given drift rate, starting point,
// threshold, diffusion noise and non-decision time.
type BogaczEtAl struct {
	DriftRate     float64
	StartingPoint float64
	Threshold     float64
	Noise         float64
	T0            float64
}

// NewBogaczEtAl returns the analytic solution with drift 1, threshold 1,
// noise 0.5 and non-decision time 0.2.
func NewBogaczEtAl() *BogaczEtAl {
	return &BogaczEtAl{DriftRate: 1, Threshold: 1, Noise: 0.5, T0: 0.2}
}

// argument magnitude beyond which exp overflows float64.
const expOverflow = 709

// Solve returns the mean response time and expected error rate for a single
// stimulus value. The stimulus scales the drift rate.
func (f *BogaczEtAl) Solve(stimulus float64) (rt, er float64) {
	drift := f.DriftRate * stimulus
	noise := f.Noise
	threshold := f.Threshold
	t0 := f.T0

	// Normalize the starting point into a bias in (0, 1).
	bias := (f.StartingPoint + threshold) / (2 * threshold)
	if bias <= 0 {
		bias = 1e-8
	}
	if bias >= 1 {
		bias = 1 - 1e-8
	}

	if math.Abs(drift) < 1e-8 {
		// Limit for vanishing drift, from Srivastava et al. (2016).
		biasAbs := bias*2*threshold - threshold
		rt = t0 + (threshold*threshold-biasAbs*biasAbs)/(noise*noise)
		er = (threshold - biasAbs) / (2 * threshold)
		return rt, er
	}

	// The closed form is derived for positive drift; a negative drift is
	// handled by reflecting the bias and the resulting error rate.
	driftNorm := math.Abs(drift)
	negDrift := drift < 0
	ztilde := threshold / driftNorm
	atilde := (driftNorm / noise) * (driftNorm / noise)

	biasAdj := bias
	if negDrift {
		biasAdj = 1 - bias
	}
	y0tilde := (noise * noise / 2) * math.Log(biasAdj/(1-biasAdj))
	if math.Abs(y0tilde) > threshold {
		if negDrift {
			y0tilde = -threshold
		} else {
			y0tilde = threshold
		}
	}
	x0tilde := y0tilde / driftNorm

	if 2*ztilde*atilde > expOverflow || math.Abs(2*x0tilde*atilde) > expOverflow {
		// Diffusion vanishes relative to drift and the process is
		// near-deterministic: errors go to zero and decision time to a
		// point mass.
		er = 0
		rt = ztilde/atilde - x0tilde + t0
	} else {
		denom := math.Exp(2*ztilde*atilde) - math.Exp(-2*ztilde*atilde)
		rt = ztilde*math.Tanh(ztilde*atilde) +
			(2*ztilde*(1-math.Exp(-2*x0tilde*atilde))/denom - x0tilde) + t0
		er = 1/(1+math.Exp(2*ztilde*atilde)) -
			(1-math.Exp(-2*x0tilde*atilde))/denom
	}

	// Report the error rate against a fixed reference point: closer to 1
	// always means higher probability of the upper boundary.
	if negDrift {
		er = 1 - er
	}
	return rt, er
}
