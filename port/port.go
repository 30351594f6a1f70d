// Package port holds the connection points between mechanisms. A mechanism
// exposes an InputPort that aggregates the values delivered by its afferent
// projections and one or more OutputPorts that hold the results of its last
// execution. Projections couple an OutputPort to an InputPort; the interface
// lives here so mechanisms and projections stay decoupled.
package port

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
)

// OutputPort holds one value produced by a mechanism execution.
type OutputPort struct {
	Name  string
	Owner string
	Value linalg.Vector
}

// Scalar returns the first element of the port value, for ports that carry a
// single number.
func (p *OutputPort) Scalar() float64 {
	if len(p.Value) == 0 {
		return 0
	}
	return p.Value[0]
}

// Projection carries a value from a sender OutputPort to a receiver
// InputPort, transforming it on the way.
type Projection interface {
	Sender() *OutputPort
	Receiver() *InputPort
	Transmit() (linalg.Vector, error)
}

// InputPort aggregates afferent projection values for a mechanism.
type InputPort struct {
	Name      string
	Owner     string
	Value     linalg.Vector
	afferents []Projection
}

// Attach registers an afferent projection.
func (p *InputPort) Attach(proj Projection) {
	p.afferents = append(p.afferents, proj)
}

// Afferents returns the attached projections.
func (p *InputPort) Afferents() []Projection {
	return p.afferents
}

// Collect sums the values delivered by the afferent projections and stores
// the result as the port value. With no afferents the current value is kept,
// so origin mechanisms can be fed directly through SetValue.
func (p *InputPort) Collect() (linalg.Vector, error) {
	if len(p.afferents) == 0 {
		return p.Value, nil
	}
	var sum linalg.Vector
	for _, proj := range p.afferents {
		v, err := proj.Transmit()
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = linalg.Clone(v)
			continue
		}
		s, err := linalg.Add(sum, v)
		if err != nil {
			return nil, errors.Wrapf(err, "port: combining afferent values for %s", p.Owner)
		}
		sum = s
	}
	p.Value = sum
	return sum, nil
}

// SetValue stores an externally supplied value, used to feed origin
// mechanisms their stimulus.
func (p *InputPort) SetValue(v linalg.Vector) {
	p.Value = linalg.Clone(v)
}
