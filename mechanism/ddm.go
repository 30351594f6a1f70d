package mechanism

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/registry"
)

// Output port names published by a DDM mechanism.
const (
	DecisionVariable          = "DECISION_VARIABLE"
	ResponseTime              = "RESPONSE_TIME"
	ProbabilityUpperThreshold = "PROBABILITY_UPPER_THRESHOLD"
	ProbabilityLowerThreshold = "PROBABILITY_LOWER_THRESHOLD"
)

// DDMConfig configures a DDM mechanism. Analytic solves the diffusion in
// closed form per execution; Path steps a stochastic diffusion integrator
// instead. With neither set, the analytic solution with its defaults is used.
type DDMConfig struct {
	Name     string
	Analytic *function.BogaczEtAl
	Path     *function.DriftDiffusionIntegrator

	// Threshold bounds the decision variable in path mode. Defaults to 1.
	Threshold float64

	Rand     *rand.Rand
	Registry *registry.Registry
}

// DDM models a two-alternative decision as a drift diffusion process. Its
// primary output is the decision variable; response time and boundary
// probabilities are published on secondary ports.
type DDM struct {
	*Base
	analytic  *function.BogaczEtAl
	path      *function.DriftDiffusionIntegrator
	threshold float64
	rng       *rand.Rand
	elapsed   float64
}

// NewDDM returns a DDM mechanism.
func NewDDM(cfg DDMConfig) (*DDM, error) {
	if cfg.Analytic != nil && cfg.Path != nil {
		return nil, errors.New("mechanism: DDM takes either an analytic solution or a path integrator, not both")
	}
	analytic := cfg.Analytic
	if analytic == nil && cfg.Path == nil {
		analytic = function.NewBogaczEtAl()
	}

	threshold := cfg.Threshold
	if analytic != nil {
		threshold = analytic.Threshold
	}
	if threshold == 0 {
		threshold = 1
	}

	return &DDM{
		Base: newBase("DDM", cfg.Name, linalg.Zeros(1), cfg.Registry,
			DecisionVariable, ResponseTime, ProbabilityUpperThreshold, ProbabilityLowerThreshold),
		analytic:  analytic,
		path:      cfg.Path,
		threshold: threshold,
		rng:       cfg.Rand,
	}, nil
}

// Execute runs one decision (analytic mode) or one diffusion step (path
// mode). The input must hold a single numeric item: the stimulus.
func (m *DDM) Execute(input linalg.Vector) (linalg.Vector, error) {
	if input != nil && len(input) != 1 {
		return nil, errors.Errorf("mechanism: input to DDM %q must have only a single numeric item", m.Name())
	}
	in, err := m.resolveInput(input)
	if err != nil {
		return nil, err
	}
	stimulus := in[0]

	if m.path != nil {
		pos, err := m.path.Next(linalg.Vector{stimulus})
		if err != nil {
			return nil, errors.Wrapf(err, "mechanism: %s", m.Name())
		}
		x := pos[0]
		if x > m.threshold {
			x = m.threshold
		}
		if x < -m.threshold {
			x = -m.threshold
		}
		m.elapsed += m.path.TimeStepSize()
		m.setOutputs(x, m.elapsed, 0, 0)
		// A boundary crossing ends the trial; the next step starts fresh.
		if math.Abs(x) >= m.threshold {
			m.path.Reset(nil)
			m.elapsed = 0
		}
		return linalg.Vector{x}, nil
	}

	rt, er := m.analytic.Solve(stimulus)
	decision := m.threshold
	if m.uniform() < er {
		decision = -m.threshold
	}
	m.setOutputs(decision, rt, 1-er, er)
	return linalg.Vector{decision}, nil
}

func (m *DDM) setOutputs(decision, rt, pUpper, pLower float64) {
	vals := []float64{decision, rt, pUpper, pLower}
	for i, out := range m.outs {
		out.Value = linalg.Vector{vals[i]}
	}
	m.value = linalg.Vector{decision}
}

func (m *DDM) uniform() float64 {
	if m.rng != nil {
		return m.rng.Float64()
	}
	return rand.Float64()
}
