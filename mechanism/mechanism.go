// Package mechanism implements the processing units of a model. A mechanism
// takes an input vector, applies its function, and publishes the result on
// its output ports. Mechanisms are wired together with projections and
// executed by processes and systems.
package mechanism

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/port"
	"github.com/neuroflow/neuroflow/registry"
)

// Mechanism is the execution surface shared by all mechanism kinds.
type Mechanism interface {
	Name() string
	InputPort() *port.InputPort
	OutputPorts() []*port.OutputPort
	PrimaryOutput() *port.OutputPort
	DefaultVariable() linalg.Vector

	// Execute runs the mechanism on the given input. A nil input collects
	// the afferent projection values from the input port instead.
	Execute(input linalg.Vector) (linalg.Vector, error)

	// Value returns the result of the last execution, nil before the
	// first one.
	Value() linalg.Vector

	// Initialize seeds the primary output port, used to give mechanisms
	// that close a cycle a value for their efferents on the first pass.
	Initialize(v linalg.Vector)
}

// Base carries the name, ports and last value common to every mechanism.
type Base struct {
	name     string
	variable linalg.Vector
	in       *port.InputPort
	outs     []*port.OutputPort
	value    linalg.Vector
}

func newBase(kind, name string, variable linalg.Vector, reg *registry.Registry, outputNames ...string) *Base {
	if reg == nil {
		reg = registry.Default
	}
	if name == "" {
		name = reg.Assign(kind)
	} else {
		name = reg.Claim(name)
	}
	if len(outputNames) == 0 {
		outputNames = []string{"RESULT"}
	}
	b := &Base{
		name:     name,
		variable: linalg.Clone(variable),
		in:       &port.InputPort{Name: "InputPort", Owner: name, Value: linalg.Clone(variable)},
	}
	for _, on := range outputNames {
		b.outs = append(b.outs, &port.OutputPort{Name: on, Owner: name})
	}
	return b
}

// resolveVariable turns the Size / DefaultVariable pair of a config into the
// default variable, falling back to a single zero element.
func resolveVariable(size int, variable linalg.Vector) linalg.Vector {
	if variable != nil {
		return linalg.Clone(variable)
	}
	if size > 0 {
		return linalg.Zeros(size)
	}
	return linalg.Zeros(1)
}

func (b *Base) Name() string                    { return b.name }
func (b *Base) InputPort() *port.InputPort      { return b.in }
func (b *Base) OutputPorts() []*port.OutputPort { return b.outs }
func (b *Base) PrimaryOutput() *port.OutputPort { return b.outs[0] }
func (b *Base) DefaultVariable() linalg.Vector  { return linalg.Clone(b.variable) }
func (b *Base) Value() linalg.Vector            { return b.value }

func (b *Base) Initialize(v linalg.Vector) {
	b.outs[0].Value = linalg.Clone(v)
	b.value = linalg.Clone(v)
}

// resolveInput validates an explicit input or collects one from the afferent
// projections when input is nil.
func (b *Base) resolveInput(input linalg.Vector) (linalg.Vector, error) {
	if input == nil {
		collected, err := b.in.Collect()
		if err != nil {
			return nil, err
		}
		input = collected
	}
	if len(input) != len(b.variable) {
		return nil, errors.Errorf("mechanism: length (%d) of input does not match required length (%d) for input to %q",
			len(input), len(b.variable), b.name)
	}
	b.in.SetValue(input)
	return input, nil
}

// publish stores the execution result on the primary output port.
func (b *Base) publish(v linalg.Vector) {
	b.value = linalg.Clone(v)
	b.outs[0].Value = linalg.Clone(v)
}
