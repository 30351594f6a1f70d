package function

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/neuroflow/neuroflow/linalg"
)

// IntegratorConfig carries the parameters shared by the integrator family.
// Unset fields take the integrator-specific defaults noted on each
// constructor.
type IntegratorConfig struct {
	Rate        Param
	Offset      float64
	Noise       Noise
	Initializer linalg.Vector // nil starts at zero; a single element broadcasts

	// Accumulator only.
	Increment Param

	// DriftDiffusion and OrnsteinUhlenbeck only.
	TimeStepSize float64
	Decay        float64
	Rand         *rand.Rand
}

// integratorState holds the previous value carried between executions.
// The previous value is sized lazily from the first input so integrators can
// be constructed before the variable length is known.
type integratorState struct {
	prev linalg.Vector
	init linalg.Vector
}

func (s *integratorState) previous(size int) (linalg.Vector, error) {
	if s.prev == nil {
		switch {
		case s.init == nil:
			s.prev = linalg.Zeros(size)
		case len(s.init) == size:
			s.prev = linalg.Clone(s.init)
		case len(s.init) == 1:
			s.prev = linalg.Fill(size, s.init[0])
		default:
			return nil, fmt.Errorf("function: initializer length %d does not match variable length %d", len(s.init), size)
		}
	}
	if len(s.prev) != size {
		return nil, fmt.Errorf("function: input length %d does not match integrator state length %d", size, len(s.prev))
	}
	return s.prev, nil
}

// Reset replaces the stored previous value. A nil initializer restores the
// configured one.
func (s *integratorState) Reset(initializer linalg.Vector) {
	if initializer != nil {
		s.init = linalg.Clone(initializer)
	}
	s.prev = nil
}

// Previous returns the stored previous value, which is nil before the first
// execution.
func (s *integratorState) Previous() linalg.Vector {
	return s.prev
}

// validateSize checks an integrator's vector parameters against the variable
// length, so mismatches surface at construction rather than on the first
// execution.
func validateSize(size int, init linalg.Vector, noise Noise, params ...Param) error {
	if init != nil && len(init) != 1 && len(init) != size {
		return fmt.Errorf("function: initializer length %d does not match variable length %d", len(init), size)
	}
	if err := noise.Validate(size); err != nil {
		return err
	}
	for _, p := range params {
		if _, err := p.Resolve(size, 0); err != nil {
			return err
		}
	}
	return nil
}

// SimpleIntegrator computes previous + rate*x + noise, plus offset.
type SimpleIntegrator struct {
	integratorState
	rate   Param
	offset float64
	noise  Noise
}

// NewSimpleIntegrator returns a SimpleIntegrator. Rate defaults to 1.
func NewSimpleIntegrator(cfg IntegratorConfig) (*SimpleIntegrator, error) {
	f := &SimpleIntegrator{rate: cfg.Rate, offset: cfg.Offset, noise: cfg.Noise}
	f.init = cfg.Initializer
	return f, nil
}

func (f *SimpleIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, f.noise, f.rate)
}

func (f *SimpleIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}
	if err := f.noise.Validate(len(v)); err != nil {
		return nil, err
	}
	noise := f.noise.Sample(len(v))

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = prev[i] + rate[i]*v[i] + noise[i] + f.offset
	}
	f.prev = out
	return linalg.Clone(out), nil
}

// ConstantIntegrator computes previous + rate + noise, plus offset. The input
// value is ignored.
type ConstantIntegrator struct {
	integratorState
	rate   Param
	offset float64
	noise  Noise
}

// NewConstantIntegrator returns a ConstantIntegrator. Rate defaults to 1.
func NewConstantIntegrator(cfg IntegratorConfig) (*ConstantIntegrator, error) {
	f := &ConstantIntegrator{rate: cfg.Rate, offset: cfg.Offset, noise: cfg.Noise}
	f.init = cfg.Initializer
	return f, nil
}

func (f *ConstantIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, f.noise, f.rate)
}

func (f *ConstantIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}
	if err := f.noise.Validate(len(v)); err != nil {
		return nil, err
	}
	noise := f.noise.Sample(len(v))

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = prev[i] + rate[i] + noise[i] + f.offset
	}
	f.prev = out
	return linalg.Clone(out), nil
}

// AdaptiveIntegrator computes (1-rate)*previous + rate*x + noise, plus offset:
// exponentially weighted time averaging with rate in [0, 1].
type AdaptiveIntegrator struct {
	integratorState
	rate   Param
	offset float64
	noise  Noise
}

// NewAdaptiveIntegrator returns an AdaptiveIntegrator. Rate defaults to 1 and
// must lie in [0, 1].
func NewAdaptiveIntegrator(cfg IntegratorConfig) (*AdaptiveIntegrator, error) {
	if cfg.Rate.IsSet() {
		var vals linalg.Vector
		if cfg.Rate.IsVector() {
			vals, _ = cfg.Rate.Resolve(len(cfg.Rate.vec), 1)
		} else {
			vals = linalg.Vector{cfg.Rate.ScalarValue(1)}
		}
		for _, r := range vals {
			if r < 0 || r > 1 {
				return nil, fmt.Errorf("function: rate parameter %v for AdaptiveIntegrator must be a float between 0 and 1", r)
			}
		}
	}
	f := &AdaptiveIntegrator{rate: cfg.Rate, offset: cfg.Offset, noise: cfg.Noise}
	f.init = cfg.Initializer
	return f, nil
}

func (f *AdaptiveIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, f.noise, f.rate)
}

func (f *AdaptiveIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}
	if err := f.noise.Validate(len(v)); err != nil {
		return nil, err
	}
	noise := f.noise.Sample(len(v))

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = (1-rate[i])*prev[i] + rate[i]*v[i] + noise[i] + f.offset
	}
	f.prev = out
	return linalg.Clone(out), nil
}

// AccumulatorIntegrator computes previous*rate + increment + noise. The input
// value is ignored.
type AccumulatorIntegrator struct {
	integratorState
	rate      Param
	increment Param
	noise     Noise
}

// NewAccumulatorIntegrator returns an AccumulatorIntegrator. Rate defaults to
// 1 and increment to 0.
func NewAccumulatorIntegrator(cfg IntegratorConfig) (*AccumulatorIntegrator, error) {
	f := &AccumulatorIntegrator{rate: cfg.Rate, increment: cfg.Increment, noise: cfg.Noise}
	f.init = cfg.Initializer
	return f, nil
}

func (f *AccumulatorIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, f.noise, f.rate, f.increment)
}

func (f *AccumulatorIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}
	incr, err := f.increment.Resolve(len(v), 0)
	if err != nil {
		return nil, err
	}
	if err := f.noise.Validate(len(v)); err != nil {
		return nil, err
	}
	noise := f.noise.Sample(len(v))

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = prev[i]*rate[i] + incr[i] + noise[i]
	}
	f.prev = out
	return linalg.Clone(out), nil
}

// scalarNoise extracts the plain float noise required by the diffusion
// integrators; anything else is rejected.
func scalarNoise(n Noise, owner string) (float64, error) {
	switch n.kind {
	case noiseNone:
		return 0, nil
	case noiseScalar:
		return n.scalar, nil
	default:
		return 0, fmt.Errorf("function: %s requires noise parameter to be a float", owner)
	}
}

// DriftDiffusionIntegrator computes
// previous + rate*x*dt + sqrt(dt*noise)*N(0,1), plus offset:
// a single stochastic step of a drift-diffusion path.
type DriftDiffusionIntegrator struct {
	integratorState
	rate   Param
	offset float64
	noise  float64
	dt     float64
	rng    *rand.Rand
}

// NewDriftDiffusionIntegrator returns a DriftDiffusionIntegrator. Rate and
// time step size default to 1; noise must be a plain float.
func NewDriftDiffusionIntegrator(cfg IntegratorConfig) (*DriftDiffusionIntegrator, error) {
	noise, err := scalarNoise(cfg.Noise, "DriftDiffusionIntegrator")
	if err != nil {
		return nil, err
	}
	dt := cfg.TimeStepSize
	if dt == 0 {
		dt = 1
	}
	f := &DriftDiffusionIntegrator{rate: cfg.Rate, offset: cfg.Offset, noise: noise, dt: dt, rng: cfg.Rand}
	f.init = cfg.Initializer
	return f, nil
}

func (f *DriftDiffusionIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, Noise{}, f.rate)
}

// TimeStepSize returns the integration step, used by callers tracking
// elapsed diffusion time.
func (f *DriftDiffusionIntegrator) TimeStepSize() float64 { return f.dt }

func (f *DriftDiffusionIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = prev[i] + rate[i]*v[i]*f.dt + math.Sqrt(f.dt*f.noise)*f.normal() + f.offset
	}
	f.prev = out
	return linalg.Clone(out), nil
}

func (f *DriftDiffusionIntegrator) normal() float64 {
	if f.noise == 0 {
		return 0
	}
	if f.rng != nil {
		return f.rng.NormFloat64()
	}
	return rand.NormFloat64()
}

// OrnsteinUhlenbeckIntegrator computes
// previous + decay*rate*x*dt + sqrt(dt*noise)*N(0,1), plus offset.
type OrnsteinUhlenbeckIntegrator struct {
	integratorState
	rate   Param
	offset float64
	noise  float64
	decay  float64
	dt     float64
	rng    *rand.Rand
}

// NewOrnsteinUhlenbeckIntegrator returns an OrnsteinUhlenbeckIntegrator.
// Rate, decay and time step size default to 1; noise must be a plain float.
func NewOrnsteinUhlenbeckIntegrator(cfg IntegratorConfig) (*OrnsteinUhlenbeckIntegrator, error) {
	noise, err := scalarNoise(cfg.Noise, "OrnsteinUhlenbeckIntegrator")
	if err != nil {
		return nil, err
	}
	dt := cfg.TimeStepSize
	if dt == 0 {
		dt = 1
	}
	decay := cfg.Decay
	if decay == 0 {
		decay = 1
	}
	f := &OrnsteinUhlenbeckIntegrator{rate: cfg.Rate, offset: cfg.Offset, noise: noise, decay: decay, dt: dt, rng: cfg.Rand}
	f.init = cfg.Initializer
	return f, nil
}

func (f *OrnsteinUhlenbeckIntegrator) ValidateSize(size int) error {
	return validateSize(size, f.init, Noise{}, f.rate)
}

func (f *OrnsteinUhlenbeckIntegrator) Next(v linalg.Vector) (linalg.Vector, error) {
	prev, err := f.previous(len(v))
	if err != nil {
		return nil, err
	}
	rate, err := f.rate.Resolve(len(v), 1)
	if err != nil {
		return nil, err
	}

	out := make(linalg.Vector, len(v))
	for i := range v {
		out[i] = prev[i] + f.decay*rate[i]*v[i]*f.dt + math.Sqrt(f.dt*f.noise)*f.normal() + f.offset
	}
	f.prev = out
	return linalg.Clone(out), nil
}

func (f *OrnsteinUhlenbeckIntegrator) normal() float64 {
	if f.noise == 0 {
		return 0
	}
	if f.rng != nil {
		return f.rng.NormFloat64()
	}
	return rand.NormFloat64()
}
