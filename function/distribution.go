package function

import (
	"math"
	"math/rand"
)

// The distribution functions sample a single value per call and are used as
// per-element noise sources. Each takes an explicit *rand.Rand so runs can be
// made reproducible; a nil Rand falls back to the global source.

// NormalDist samples from a normal distribution.
type NormalDist struct {
	Mean   float64
	StdDev float64
	Rand   *rand.Rand
}

// NewNormalDist returns a standard normal distribution.
func NewNormalDist(rng *rand.Rand) *NormalDist {
	return &NormalDist{StdDev: 1, Rand: rng}
}

func (d *NormalDist) Sample() float64 {
	return d.Mean + d.StdDev*normFloat(d.Rand)
}

// UniformDist samples uniformly from [Low, High).
type UniformDist struct {
	Low  float64
	High float64
	Rand *rand.Rand
}

// NewUniformDist returns a uniform distribution over [0, 1).
func NewUniformDist(rng *rand.Rand) *UniformDist {
	return &UniformDist{High: 1, Rand: rng}
}

func (d *UniformDist) Sample() float64 {
	return d.Low + (d.High-d.Low)*uniformFloat(d.Rand)
}

// ExponentialDist samples from an exponential distribution with the given
// rate parameter beta (the mean is 1/beta).
type ExponentialDist struct {
	Beta float64
	Rand *rand.Rand
}

// NewExponentialDist returns an exponential distribution with rate 1.
func NewExponentialDist(rng *rand.Rand) *ExponentialDist {
	return &ExponentialDist{Beta: 1, Rand: rng}
}

func (d *ExponentialDist) Sample() float64 {
	return expFloat(d.Rand) / d.Beta
}

// GammaDist samples from a gamma distribution with the given shape and scale,
// using the Marsaglia-Tsang method.
type GammaDist struct {
	Shape float64
	Scale float64
	Rand  *rand.Rand
}

// NewGammaDist returns a gamma distribution with shape 1 and scale 1.
func NewGammaDist(rng *rand.Rand) *GammaDist {
	return &GammaDist{Shape: 1, Scale: 1, Rand: rng}
}

func (d *GammaDist) Sample() float64 {
	shape := d.Shape
	if shape < 1 {
		// Boost to shape+1 and correct with a uniform power.
		u := uniformFloat(d.Rand)
		return d.sampleShape(shape+1) * math.Pow(u, 1/shape)
	}
	return d.sampleShape(shape)
}

func (d *GammaDist) sampleShape(shape float64) float64 {
	c1 := shape - 1.0/3.0
	c2 := 1 / math.Sqrt(9*c1)
	for {
		x := normFloat(d.Rand)
		v := 1 + c2*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := uniformFloat(d.Rand)
		if u < 1-0.0331*x*x*x*x {
			return d.Scale * c1 * v
		}
		if math.Log(u) < 0.5*x*x+c1*(1-v+math.Log(v)) {
			return d.Scale * c1 * v
		}
	}
}

// WaldDist samples from a Wald (inverse Gaussian) distribution using the
// transformation of Michael, Schucany and Haas.
type WaldDist struct {
	Mean  float64
	Scale float64
	Rand  *rand.Rand
}

// NewWaldDist returns a Wald distribution with mean 1 and scale 1.
func NewWaldDist(rng *rand.Rand) *WaldDist {
	return &WaldDist{Mean: 1, Scale: 1, Rand: rng}
}

func (d *WaldDist) Sample() float64 {
	mu, lambda := d.Mean, d.Scale
	y := normFloat(d.Rand)
	y = y * y
	x := mu + (mu*mu*y)/(2*lambda) - (mu/(2*lambda))*math.Sqrt(4*mu*lambda*y+mu*mu*y*y)
	if uniformFloat(d.Rand) <= mu/(mu+x) {
		return x
	}
	return mu * mu / x
}

func normFloat(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.NormFloat64()
	}
	return rand.NormFloat64()
}

func expFloat(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.ExpFloat64()
	}
	return rand.ExpFloat64()
}

func uniformFloat(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}
