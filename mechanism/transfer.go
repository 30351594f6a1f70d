package mechanism

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/registry"
)

// TransferConfig configures a Transfer mechanism. The zero value gives a
// single-element Linear mechanism with no smoothing.
type TransferConfig struct {
	Name            string
	Size            int
	DefaultVariable linalg.Vector

	// Function maps the (possibly smoothed) input to the output. Defaults
	// to Linear.
	Function function.TransferFn

	// TimeConstant in [0, 1] exponentially smooths the input across
	// executions; 1 (the default) passes the input through unchanged.
	TimeConstant function.Param

	// Noise is added to the input, inside the smoothing when a time
	// constant below 1 is set.
	Noise function.Noise

	// Clip bounds the output to [Clip[0], Clip[1]].
	Clip *[2]float64

	Registry *registry.Registry
}

// Transfer applies a transfer function to its input, with optional
// exponential smoothing, additive noise and output clipping.
type Transfer struct {
	*Base
	fn    function.TransferFn
	noise function.Noise
	clip  *[2]float64
	integ *function.AdaptiveIntegrator
}

// NewTransfer returns a Transfer mechanism.
func NewTransfer(cfg TransferConfig) (*Transfer, error) {
	variable := resolveVariable(cfg.Size, cfg.DefaultVariable)

	if cfg.TimeConstant.IsVector() {
		return nil, errors.New("mechanism: value of time_constant param must be compatible with float")
	}
	tc := cfg.TimeConstant.ScalarValue(1)
	if tc < 0 || tc > 1 {
		return nil, errors.Errorf("mechanism: time_constant parameter %v must be a float between 0 and 1", tc)
	}
	if err := cfg.Noise.Validate(len(variable)); err != nil {
		return nil, errors.Wrap(err, "mechanism")
	}

	fn := cfg.Function
	if fn == nil {
		fn = function.NewLinear()
	}

	t := &Transfer{
		Base:  newBase("TransferMechanism", cfg.Name, variable, cfg.Registry),
		fn:    fn,
		noise: cfg.Noise,
		clip:  cfg.Clip,
	}
	if tc < 1 {
		integ, err := function.NewAdaptiveIntegrator(function.IntegratorConfig{
			Rate:        function.Scalar(tc),
			Noise:       cfg.Noise,
			Initializer: variable,
		})
		if err != nil {
			return nil, errors.Wrap(err, "mechanism")
		}
		t.integ = integ
	}
	return t, nil
}

// Function returns the transfer function.
func (t *Transfer) Function() function.TransferFn { return t.fn }

func (t *Transfer) Execute(input linalg.Vector) (linalg.Vector, error) {
	in, err := t.resolveInput(input)
	if err != nil {
		return nil, err
	}

	v := in
	if t.integ != nil {
		v, err = t.integ.Next(in)
		if err != nil {
			return nil, errors.Wrapf(err, "mechanism: %s", t.Name())
		}
	} else if !t.noise.IsZero() {
		noise := t.noise.Sample(len(in))
		v, err = linalg.Add(in, noise)
		if err != nil {
			return nil, errors.Wrapf(err, "mechanism: %s", t.Name())
		}
	}

	out := t.fn.Apply(v)
	if t.clip != nil {
		out = linalg.Clone(out)
		for i, x := range out {
			if x < t.clip[0] {
				out[i] = t.clip[0]
			}
			if x > t.clip[1] {
				out[i] = t.clip[1]
			}
		}
	}
	t.publish(out)
	return out, nil
}
