// Package projection implements the pathways that carry values between
// mechanism ports. A MappingProjection transforms the sender value by a
// weight matrix; a ProcessInput feeds externally supplied stimuli to an
// origin mechanism.
package projection

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/port"
	"github.com/neuroflow/neuroflow/registry"
)

// MappingConfig configures a MappingProjection. When both Matrix and
// MatrixSpec are empty the matrix is auto-assigned: identity when sender and
// receiver lengths match, full connectivity otherwise.
type MappingConfig struct {
	Name       string
	Matrix     linalg.Matrix
	MatrixSpec string
	Rand       *rand.Rand

	Learnable    bool
	LearningRate float64

	Registry *registry.Registry
}

// Mapping carries the sender's value through a weight matrix to the
// receiver. The matrix is indexed [sender][receiver].
type Mapping struct {
	name     string
	sender   *port.OutputPort
	receiver *port.InputPort
	matrix   linalg.Matrix

	learnable    bool
	learningRate float64
}

// NewMapping connects sender to receiver and attaches the projection to the
// receiver's afferents. Matrix dimensions are taken from the current port
// values.
func NewMapping(sender *port.OutputPort, receiver *port.InputPort, cfg MappingConfig) (*Mapping, error) {
	rows, cols := len(sender.Value), len(receiver.Value)
	if rows == 0 || cols == 0 {
		return nil, errors.Errorf("projection: cannot size matrix from %q (%d) to %q (%d)",
			sender.Owner, rows, receiver.Owner, cols)
	}

	var m linalg.Matrix
	switch {
	case cfg.Matrix != nil:
		if err := cfg.Matrix.Validate(); err != nil {
			return nil, errors.Wrap(err, "projection")
		}
		if cfg.Matrix.Rows() != rows || cfg.Matrix.Cols() != cols {
			return nil, errors.Errorf("projection: matrix shape %dx%d does not match sender length %d and receiver length %d",
				cfg.Matrix.Rows(), cfg.Matrix.Cols(), rows, cols)
		}
		m = linalg.CloneMatrix(cfg.Matrix)
	case cfg.MatrixSpec != "":
		if cfg.MatrixSpec == linalg.SpecIdentity && rows != cols {
			return nil, errors.Errorf("projection: length (%d) of sender %q must equal length (%d) of receiver %q for an identity matrix",
				rows, sender.Owner, cols, receiver.Owner)
		}
		var err error
		m, err = linalg.FromSpec(cfg.MatrixSpec, rows, cols, cfg.Rand)
		if err != nil {
			return nil, errors.Wrap(err, "projection")
		}
	default:
		if rows == cols {
			m = linalg.Identity(rows)
		} else {
			m = linalg.FullConnectivity(rows, cols)
		}
	}

	reg := cfg.Registry
	if reg == nil {
		reg = registry.Default
	}
	name := cfg.Name
	if name == "" {
		name = reg.Assign("MappingProjection")
	} else {
		name = reg.Claim(name)
	}

	lr := cfg.LearningRate
	if cfg.Learnable && lr == 0 {
		lr = 1
	}
	p := &Mapping{
		name:         name,
		sender:       sender,
		receiver:     receiver,
		matrix:       m,
		learnable:    cfg.Learnable,
		learningRate: lr,
	}
	receiver.Attach(p)
	return p, nil
}

func (p *Mapping) Name() string              { return p.name }
func (p *Mapping) Sender() *port.OutputPort  { return p.sender }
func (p *Mapping) Receiver() *port.InputPort { return p.receiver }
func (p *Mapping) Learnable() bool           { return p.learnable }
func (p *Mapping) LearningRate() float64     { return p.learningRate }

// Matrix returns the current weight matrix.
func (p *Mapping) Matrix() linalg.Matrix { return p.matrix }

// Transmit computes sender · matrix.
func (p *Mapping) Transmit() (linalg.Vector, error) {
	out, err := linalg.Dot(p.sender.Value, p.matrix)
	if err != nil {
		return nil, errors.Wrapf(err, "projection: %s", p.name)
	}
	return out, nil
}

// ApplyDelta adds a weight change matrix produced by a learning function.
func (p *Mapping) ApplyDelta(delta linalg.Matrix) error {
	if err := linalg.AddMatrix(p.matrix, delta); err != nil {
		return errors.Wrapf(err, "projection: %s", p.name)
	}
	return nil
}

// ProcessInput delivers an externally supplied stimulus to an origin
// mechanism. It transmits its stored value unchanged.
type ProcessInput struct {
	name     string
	value    *port.OutputPort
	receiver *port.InputPort
}

// NewProcessInput attaches a stimulus source to the receiver.
func NewProcessInput(name string, receiver *port.InputPort) *ProcessInput {
	p := &ProcessInput{
		name:     name,
		value:    &port.OutputPort{Name: name, Owner: name},
		receiver: receiver,
	}
	receiver.Attach(p)
	return p
}

func (p *ProcessInput) Name() string              { return p.name }
func (p *ProcessInput) Sender() *port.OutputPort  { return p.value }
func (p *ProcessInput) Receiver() *port.InputPort { return p.receiver }

// Set stores the stimulus to deliver on the next Transmit.
func (p *ProcessInput) Set(v linalg.Vector) {
	p.value.Value = linalg.Clone(v)
}

func (p *ProcessInput) Transmit() (linalg.Vector, error) {
	return linalg.Clone(p.value.Value), nil
}
