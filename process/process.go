// Package process chains mechanisms into a linear pathway. Adjacent
// mechanisms are connected with MappingProjections (auto-assigned when none
// is given), the first mechanism receives the process input, and executing
// the process runs the pathway in order. A process can also train its
// learnable projections from a target value.
package process

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
	"github.com/neuroflow/neuroflow/projection"
	"github.com/neuroflow/neuroflow/registry"
)

// LearningRule selects how ExecuteWithTarget adjusts learnable projections.
type LearningRule int

const (
	// BackPropagationRule propagates the output error backwards through
	// every learnable projection in the pathway.
	BackPropagationRule LearningRule = iota
	// ReinforcementRule applies the delta rule to the final projection;
	// the error signal may have only one non-zero element.
	ReinforcementRule
)

// Entry is one pathway position: a mechanism, optionally with instructions
// for the projection feeding it from the previous mechanism.
type Entry struct {
	Mechanism mechanism.Mechanism

	// Projection is an explicit projection into this mechanism. When nil
	// one is created, shaped by MatrixSpec (or auto-assigned).
	Projection *projection.Mapping
	MatrixSpec string
	Matrix     linalg.Matrix
}

// Config configures a Process.
type Config struct {
	Name    string
	Pathway []Entry

	// Learning makes every auto-created projection learnable.
	Learning     bool
	LearningRate float64
	Rule         LearningRule

	Logger   neuroflow.Logger
	Registry *registry.Registry
	Rand     *rand.Rand
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = neuroflow.NopLogger()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default
	}
	if cfg.Learning && cfg.LearningRate == 0 {
		cfg.LearningRate = 1
	}
	return cfg
}

// Process executes a pathway of mechanisms in order.
type Process struct {
	name  string
	mechs []mechanism.Mechanism
	projs []*projection.Mapping
	input *projection.ProcessInput

	learning bool
	rate     float64
	rule     LearningRule
	log      neuroflow.Logger
}

// New builds a Process from its pathway, wiring a projection between each
// adjacent pair of mechanisms and a process input into the first.
func New(config ...Config) (*Process, error) {
	cfg := configDefault(config...)
	if len(cfg.Pathway) == 0 {
		return nil, errors.New("process: pathway must name at least one mechanism")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Registry.Assign("Process")
	} else {
		name = cfg.Registry.Claim(name)
	}

	p := &Process{
		name:     name,
		learning: cfg.Learning,
		rate:     cfg.LearningRate,
		rule:     cfg.Rule,
		log:      cfg.Logger,
	}
	for _, e := range cfg.Pathway {
		if e.Mechanism == nil {
			return nil, errors.Errorf("process: %s: pathway entry without a mechanism", name)
		}
		p.mechs = append(p.mechs, e.Mechanism)
	}

	origin := p.mechs[0]
	p.input = projection.NewProcessInput(name+" input", origin.InputPort())
	p.input.Set(origin.DefaultVariable())

	for i := 1; i < len(p.mechs); i++ {
		e := cfg.Pathway[i]
		sender := p.mechs[i-1]
		proj := e.Projection
		if proj == nil {
			// Reuse an existing projection between this pair, so
			// pathways that share a leg do not double-deliver.
			for _, aff := range p.mechs[i].InputPort().Afferents() {
				if existing, ok := aff.(*projection.Mapping); ok && existing.Sender() == sender.PrimaryOutput() {
					proj = existing
					break
				}
			}
		}
		if proj == nil {
			// Projections size themselves from port values, which
			// are empty before the first execution.
			if sender.PrimaryOutput().Value == nil {
				sender.PrimaryOutput().Value = sender.DefaultVariable()
			}
			var err error
			proj, err = projection.NewMapping(sender.PrimaryOutput(), p.mechs[i].InputPort(), projection.MappingConfig{
				Matrix:       e.Matrix,
				MatrixSpec:   e.MatrixSpec,
				Rand:         cfg.Rand,
				Learnable:    cfg.Learning,
				LearningRate: cfg.LearningRate,
				Registry:     cfg.Registry,
			})
			if err != nil {
				return nil, errors.Wrapf(err, "process: %s", name)
			}
		}
		p.projs = append(p.projs, proj)
	}

	p.log.Debugw("process assembled",
		"process", name,
		"mechanisms", len(p.mechs),
		"projections", len(p.projs),
	)
	return p, nil
}

func (p *Process) Name() string { return p.name }

// Mechanisms returns the pathway in execution order.
func (p *Process) Mechanisms() []mechanism.Mechanism { return p.mechs }

// Projections returns the pathway projections in order.
func (p *Process) Projections() []*projection.Mapping { return p.projs }

// Origin returns the first mechanism of the pathway.
func (p *Process) Origin() mechanism.Mechanism { return p.mechs[0] }

// Terminal returns the last mechanism of the pathway.
func (p *Process) Terminal() mechanism.Mechanism { return p.mechs[len(p.mechs)-1] }

// Input returns the projection feeding the origin mechanism.
func (p *Process) Input() *projection.ProcessInput { return p.input }

// Execute runs the pathway once on the given input and returns the terminal
// mechanism's value. A nil input feeds the origin its default variable.
func (p *Process) Execute(input linalg.Vector) (linalg.Vector, error) {
	if input == nil {
		input = p.mechs[0].DefaultVariable()
	}
	if len(input) != len(p.mechs[0].DefaultVariable()) {
		return nil, errors.Errorf("process: %s: length (%d) of input does not match required length (%d) for origin %q",
			p.name, len(input), len(p.mechs[0].DefaultVariable()), p.mechs[0].Name())
	}
	p.input.Set(input)

	var out linalg.Vector
	for _, m := range p.mechs {
		v, err := m.Execute(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "process: %s", p.name)
		}
		p.log.Debugw("mechanism executed", "process", p.name, "mechanism", m.Name(), "value", v)
		out = v
	}
	return out, nil
}

// Run executes the pathway once per stimulus and returns the terminal values
// per trial.
func (p *Process) Run(stimuli []linalg.Vector) ([]linalg.Vector, error) {
	results := make([]linalg.Vector, 0, len(stimuli))
	for trial, stim := range stimuli {
		out, err := p.Execute(stim)
		if err != nil {
			return nil, errors.Wrapf(err, "process: %s: trial %d", p.name, trial)
		}
		results = append(results, out)
	}
	return results, nil
}
