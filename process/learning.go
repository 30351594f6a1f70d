package process

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
)

// transferer is implemented by mechanisms whose output comes from a transfer
// function with a usable derivative.
type transferer interface {
	Function() function.TransferFn
}

func derivative(m mechanism.Mechanism) linalg.Vector {
	out := m.Value()
	if t, ok := m.(transferer); ok {
		return t.Function().Derivative(m.InputPort().Value, out)
	}
	return linalg.Fill(len(out), 1)
}

// ExecuteWithTarget runs the pathway on input, then adjusts the learnable
// projections from the difference between target and the terminal value.
// It returns the terminal value from the forward pass.
func (p *Process) ExecuteWithTarget(input, target linalg.Vector) (linalg.Vector, error) {
	out, err := p.Execute(input)
	if err != nil {
		return nil, err
	}
	errSignal, err := linalg.Sub(target, out)
	if err != nil {
		return nil, errors.Wrapf(err, "process: %s: target", p.name)
	}

	switch p.rule {
	case ReinforcementRule:
		err = p.reinforce(errSignal)
	default:
		err = p.backpropagate(errSignal)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "process: %s", p.name)
	}
	return out, nil
}

func (p *Process) backpropagate(errSignal linalg.Vector) error {
	delta, err := linalg.Hadamard(errSignal, derivative(p.Terminal()))
	if err != nil {
		return err
	}

	for i := len(p.projs) - 1; i >= 0; i-- {
		proj := p.projs[i]
		sender := p.mechs[i]

		var deltaW linalg.Matrix
		if proj.Learnable() {
			bp := &function.BackPropagation{LearningRate: proj.LearningRate()}
			deltaW = bp.WeightChange(sender.PrimaryOutput().Value, delta)
		}

		// Propagate through the pre-update weights before applying.
		if i > 0 {
			delta, err = function.PropagateError(proj.Matrix(), delta, derivative(sender))
			if err != nil {
				return err
			}
		}
		if deltaW != nil {
			if err := proj.ApplyDelta(deltaW); err != nil {
				return err
			}
			p.log.Debugw("weights updated", "process", p.name, "projection", proj.Name())
		}
	}
	return nil
}

func (p *Process) reinforce(errSignal linalg.Vector) error {
	if len(p.projs) == 0 {
		return errors.New("reinforcement learning needs at least one projection")
	}
	last := p.projs[len(p.projs)-1]
	if !last.Learnable() {
		return nil
	}
	rf := &function.Reinforcement{LearningRate: last.LearningRate()}
	deltaW, err := rf.WeightChange(errSignal)
	if err != nil {
		return err
	}
	if err := last.ApplyDelta(deltaW); err != nil {
		return err
	}
	p.log.Debugw("weights updated", "process", p.name, "projection", last.Name())
	return nil
}
