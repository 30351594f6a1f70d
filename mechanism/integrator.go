package mechanism

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/registry"
)

// IntegratorMechConfig configures an Integrator mechanism. With no function
// it accumulates with an AdaptiveIntegrator at rate 0.5.
type IntegratorMechConfig struct {
	Name            string
	Size            int
	DefaultVariable linalg.Vector
	Function        function.IntegratorFn
	Registry        *registry.Registry
}

// Integrator accumulates its input across executions with an integrator
// function.
type Integrator struct {
	*Base
	fn function.IntegratorFn
}

// NewIntegrator returns an Integrator mechanism.
func NewIntegrator(cfg IntegratorMechConfig) (*Integrator, error) {
	variable := resolveVariable(cfg.Size, cfg.DefaultVariable)

	fn := cfg.Function
	if fn == nil {
		var err error
		fn, err = function.NewAdaptiveIntegrator(function.IntegratorConfig{
			Rate:        function.Scalar(0.5),
			Initializer: variable,
		})
		if err != nil {
			return nil, errors.Wrap(err, "mechanism")
		}
	}
	if v, ok := fn.(function.SizeValidator); ok {
		if err := v.ValidateSize(len(variable)); err != nil {
			return nil, errors.Wrap(err, "mechanism")
		}
	}
	return &Integrator{
		Base: newBase("IntegratorMechanism", cfg.Name, variable, cfg.Registry),
		fn:   fn,
	}, nil
}

// Function returns the integrator function.
func (m *Integrator) Function() function.IntegratorFn { return m.fn }

// ResetInitializer restarts the accumulation from the given value.
func (m *Integrator) ResetInitializer(v linalg.Vector) {
	m.fn.Reset(v)
}

func (m *Integrator) Execute(input linalg.Vector) (linalg.Vector, error) {
	in, err := m.resolveInput(input)
	if err != nil {
		return nil, err
	}
	out, err := m.fn.Next(in)
	if err != nil {
		return nil, errors.Wrapf(err, "mechanism: %s", m.Name())
	}
	m.publish(out)
	return out, nil
}
