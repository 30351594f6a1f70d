// Package modelfile loads model definitions from YAML and builds them into
// executable systems. A model file declares mechanisms, the process pathways
// connecting them, system options and optionally the stimuli to run.
package modelfile

import (
	"math/rand"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow"
	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
	"github.com/neuroflow/neuroflow/process"
	"github.com/neuroflow/neuroflow/registry"
	"github.com/neuroflow/neuroflow/system"
)

// MechanismSpec declares one mechanism.
type MechanismSpec struct {
	Name            string    `yaml:"name"`
	Type            string    `yaml:"type"` // transfer | recurrent | integrator | ddm
	Size            int       `yaml:"size"`
	DefaultVariable []float64 `yaml:"default_variable"`

	// Transfer options.
	Function     string    `yaml:"function"` // linear | logistic | exponential | relu | softmax
	Slope        *float64  `yaml:"slope"`
	Intercept    float64   `yaml:"intercept"`
	Gain         *float64  `yaml:"gain"`
	Bias         float64   `yaml:"bias"`
	Scale        *float64  `yaml:"scale"`
	TimeConstant *float64  `yaml:"time_constant"`
	Noise        *float64  `yaml:"noise"`
	Clip         []float64 `yaml:"clip"`

	// Recurrent options.
	Auto   *float64    `yaml:"auto"`
	Hetero *float64    `yaml:"hetero"`
	Matrix [][]float64 `yaml:"matrix"`

	// Integrator options. Rate is also the exponential function's rate.
	Integrator string   `yaml:"integrator"` // simple | constant | adaptive | accumulator
	Rate       *float64 `yaml:"rate"`
	Offset     float64  `yaml:"offset"`

	// DDM options.
	DriftRate     *float64 `yaml:"drift_rate"`
	Threshold     *float64 `yaml:"threshold"`
	StartingPoint float64  `yaml:"starting_point"`
	T0            float64  `yaml:"t0"`
}

// MatrixSpec is one pathway leg's matrix: either a keyword such as
// "identity" or "full", or explicit rows.
type MatrixSpec struct {
	Keyword string
	Rows    [][]float64
}

func (s *MatrixSpec) UnmarshalYAML(b []byte) error {
	var rows [][]float64
	if err := yaml.Unmarshal(b, &rows); err == nil {
		s.Rows = rows
		return nil
	}
	var kw string
	if err := yaml.Unmarshal(b, &kw); err != nil {
		return errors.New("matrix must be a keyword or rows of numbers")
	}
	s.Keyword = kw
	return nil
}

// ProcessSpec declares one pathway over previously declared mechanisms.
type ProcessSpec struct {
	Name         string       `yaml:"name"`
	Pathway      []string     `yaml:"pathway"`
	Matrices     []MatrixSpec `yaml:"matrices"` // optional matrix per leg
	Learning     bool         `yaml:"learning"`
	LearningRate float64      `yaml:"learning_rate"`
}

// SystemSpec declares system-level options.
type SystemSpec struct {
	Name          string               `yaml:"name"`
	InitialValues map[string][]float64 `yaml:"initial_values"`
	Workers       int                  `yaml:"workers"`
}

// RunSpec declares the stimuli for a run, one list of trials per origin.
type RunSpec struct {
	Stimuli map[string][][]float64 `yaml:"stimuli"`
}

// Model is a parsed model file.
type Model struct {
	Name       string          `yaml:"name"`
	Mechanisms []MechanismSpec `yaml:"mechanisms"`
	Processes  []ProcessSpec   `yaml:"processes"`
	System     SystemSpec      `yaml:"system"`
	Run        RunSpec         `yaml:"run"`
}

// Load reads and parses a model file.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "modelfile: read")
	}
	return Parse(raw)
}

// Parse parses model YAML.
func Parse(raw []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "modelfile: parse")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.Mechanisms) == 0 {
		return errors.New("modelfile: at least one mechanism is required")
	}
	if len(m.Processes) == 0 {
		return errors.New("modelfile: at least one process is required")
	}
	names := make(map[string]struct{}, len(m.Mechanisms))
	for _, spec := range m.Mechanisms {
		if spec.Name == "" {
			return errors.New("modelfile: mechanism without a name")
		}
		if _, dup := names[spec.Name]; dup {
			return errors.Errorf("modelfile: duplicate mechanism %q", spec.Name)
		}
		names[spec.Name] = struct{}{}
		switch spec.Type {
		case "", "transfer", "recurrent", "integrator", "ddm":
		default:
			return errors.Errorf("modelfile: mechanism %q has unknown type %q", spec.Name, spec.Type)
		}
		if len(spec.Clip) != 0 && len(spec.Clip) != 2 {
			return errors.Errorf("modelfile: mechanism %q: clip needs exactly two bounds", spec.Name)
		}
		if spec.Matrix != nil {
			if spec.Type != "recurrent" {
				return errors.Errorf("modelfile: mechanism %q: only a recurrent mechanism takes a matrix", spec.Name)
			}
			if err := linalg.Matrix(spec.Matrix).Validate(); err != nil {
				return errors.Wrapf(err, "modelfile: mechanism %q", spec.Name)
			}
		}
	}
	for _, p := range m.Processes {
		if len(p.Pathway) == 0 {
			return errors.Errorf("modelfile: process %q has an empty pathway", p.Name)
		}
		for _, leg := range p.Pathway {
			if _, ok := names[leg]; !ok {
				return errors.Errorf("modelfile: process %q references unknown mechanism %q", p.Name, leg)
			}
		}
		if len(p.Matrices) > 0 && len(p.Matrices) != len(p.Pathway)-1 {
			return errors.Errorf("modelfile: process %q declares %d matrices for %d legs",
				p.Name, len(p.Matrices), len(p.Pathway)-1)
		}
		for i, ms := range p.Matrices {
			if ms.Rows == nil {
				continue
			}
			if err := linalg.Matrix(ms.Rows).Validate(); err != nil {
				return errors.Wrapf(err, "modelfile: process %q: matrix for leg %d", p.Name, i)
			}
		}
	}
	return nil
}

// BuildConfig carries the runtime pieces a model file cannot express.
type BuildConfig struct {
	Logger   neuroflow.Logger
	Rand     *rand.Rand
	Observer system.Observer
}

// Build instantiates the model into a live system.
func (m *Model) Build(config ...BuildConfig) (*system.System, error) {
	var cfg BuildConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = neuroflow.NopLogger()
	}
	reg := registry.New()

	mechs := make(map[string]mechanism.Mechanism, len(m.Mechanisms))
	for _, spec := range m.Mechanisms {
		mech, err := buildMechanism(spec, reg, cfg.Rand)
		if err != nil {
			return nil, err
		}
		mechs[spec.Name] = mech
	}

	processes := make([]*process.Process, 0, len(m.Processes))
	for _, spec := range m.Processes {
		entries := make([]process.Entry, len(spec.Pathway))
		for i, leg := range spec.Pathway {
			entries[i] = process.Entry{Mechanism: mechs[leg]}
			if i > 0 && len(spec.Matrices) > 0 {
				ms := spec.Matrices[i-1]
				entries[i].MatrixSpec = ms.Keyword
				entries[i].Matrix = linalg.Matrix(ms.Rows)
			}
		}
		p, err := process.New(process.Config{
			Name:         spec.Name,
			Pathway:      entries,
			Learning:     spec.Learning,
			LearningRate: spec.LearningRate,
			Logger:       cfg.Logger,
			Registry:     reg,
			Rand:         cfg.Rand,
		})
		if err != nil {
			return nil, errors.Wrap(err, "modelfile")
		}
		processes = append(processes, p)
	}

	initial := make(map[string]linalg.Vector, len(m.System.InitialValues))
	for name, v := range m.System.InitialValues {
		initial[name] = linalg.Vector(v)
	}
	name := m.System.Name
	if name == "" {
		name = m.Name
	}
	s, err := system.New(system.Config{
		Name:          name,
		Processes:     processes,
		InitialValues: initial,
		Workers:       m.System.Workers,
		Observer:      cfg.Observer,
		Logger:        cfg.Logger,
		Registry:      reg,
	})
	return s, errors.Wrap(err, "modelfile")
}

// Stimuli converts the run section for system.Run.
func (m *Model) Stimuli() system.Stimuli {
	out := make(system.Stimuli, len(m.Run.Stimuli))
	for name, trials := range m.Run.Stimuli {
		list := make([]linalg.Vector, len(trials))
		for i, trial := range trials {
			list[i] = linalg.Vector(trial)
		}
		out[name] = list
	}
	return out
}

func buildTransferFn(spec MechanismSpec) (function.TransferFn, error) {
	switch spec.Function {
	case "", "linear":
		fn := function.NewLinear()
		if spec.Slope != nil {
			fn.Slope = *spec.Slope
		}
		fn.Intercept = spec.Intercept
		return fn, nil
	case "logistic":
		fn := function.NewLogistic()
		if spec.Gain != nil {
			fn.Gain = *spec.Gain
		}
		fn.Bias = spec.Bias
		return fn, nil
	case "exponential":
		fn := function.NewExponential()
		if spec.Scale != nil {
			fn.Scale = *spec.Scale
		}
		if spec.Rate != nil {
			fn.Rate = *spec.Rate
		}
		return fn, nil
	case "relu":
		return &function.ReLU{}, nil
	case "softmax":
		fn := function.NewSoftMax()
		if spec.Gain != nil {
			fn.Gain = *spec.Gain
		}
		return fn, nil
	default:
		return nil, errors.Errorf("modelfile: mechanism %q has unknown function %q", spec.Name, spec.Function)
	}
}

func buildMechanism(spec MechanismSpec, reg *registry.Registry, rng *rand.Rand) (mechanism.Mechanism, error) {
	switch spec.Type {
	case "", "transfer", "recurrent":
		fn, err := buildTransferFn(spec)
		if err != nil {
			return nil, err
		}
		tc := function.Param{}
		if spec.TimeConstant != nil {
			tc = function.Scalar(*spec.TimeConstant)
		}
		noise := function.Noise{}
		if spec.Noise != nil {
			noise = function.ConstantNoise(*spec.Noise)
		}
		var clip *[2]float64
		if len(spec.Clip) == 2 {
			clip = &[2]float64{spec.Clip[0], spec.Clip[1]}
		}
		tcfg := mechanism.TransferConfig{
			Name:            spec.Name,
			Size:            spec.Size,
			DefaultVariable: linalg.Vector(spec.DefaultVariable),
			Function:        fn,
			TimeConstant:    tc,
			Noise:           noise,
			Clip:            clip,
			Registry:        reg,
		}
		if spec.Type == "recurrent" {
			m, err := mechanism.NewRecurrentTransfer(mechanism.RecurrentConfig{
				TransferConfig: tcfg,
				Matrix:         linalg.Matrix(spec.Matrix),
				Auto:           spec.Auto,
				Hetero:         spec.Hetero,
				Rand:           rng,
			})
			return m, errors.Wrap(err, "modelfile")
		}
		m, err := mechanism.NewTransfer(tcfg)
		return m, errors.Wrap(err, "modelfile")

	case "integrator":
		icfg := function.IntegratorConfig{Offset: spec.Offset}
		if spec.Rate != nil {
			icfg.Rate = function.Scalar(*spec.Rate)
		}
		if spec.Noise != nil {
			icfg.Noise = function.ConstantNoise(*spec.Noise)
		}
		var fn function.IntegratorFn
		var err error
		switch spec.Integrator {
		case "simple":
			fn, err = function.NewSimpleIntegrator(icfg)
		case "constant":
			fn, err = function.NewConstantIntegrator(icfg)
		case "accumulator":
			fn, err = function.NewAccumulatorIntegrator(icfg)
		case "", "adaptive":
			if !icfg.Rate.IsSet() {
				icfg.Rate = function.Scalar(0.5)
			}
			fn, err = function.NewAdaptiveIntegrator(icfg)
		default:
			return nil, errors.Errorf("modelfile: mechanism %q has unknown integrator %q", spec.Name, spec.Integrator)
		}
		if err != nil {
			return nil, errors.Wrap(err, "modelfile")
		}
		m, err := mechanism.NewIntegrator(mechanism.IntegratorMechConfig{
			Name:            spec.Name,
			Size:            spec.Size,
			DefaultVariable: linalg.Vector(spec.DefaultVariable),
			Function:        fn,
			Registry:        reg,
		})
		return m, errors.Wrap(err, "modelfile")

	case "ddm":
		analytic := function.NewBogaczEtAl()
		if spec.DriftRate != nil {
			analytic.DriftRate = *spec.DriftRate
		}
		if spec.Threshold != nil {
			analytic.Threshold = *spec.Threshold
		}
		if spec.Noise != nil {
			analytic.Noise = *spec.Noise
		}
		analytic.StartingPoint = spec.StartingPoint
		if spec.T0 != 0 {
			analytic.T0 = spec.T0
		}
		m, err := mechanism.NewDDM(mechanism.DDMConfig{
			Name:     spec.Name,
			Analytic: analytic,
			Rand:     rng,
			Registry: reg,
		})
		return m, errors.Wrap(err, "modelfile")

	default:
		return nil, errors.Errorf("modelfile: mechanism %q has unknown type %q", spec.Name, spec.Type)
	}
}
