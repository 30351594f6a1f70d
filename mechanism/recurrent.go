package mechanism

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/projection"
)

// RecurrentConfig configures a RecurrentTransfer mechanism. The recurrent
// matrix comes from Matrix, from the Auto (diagonal) and Hetero
// (off-diagonal) pair, or defaults to full connectivity.
type RecurrentConfig struct {
	TransferConfig

	Matrix linalg.Matrix
	Auto   *float64
	Hetero *float64
	Rand   *rand.Rand
}

// RecurrentTransfer is a Transfer mechanism with a projection from its own
// output back to its input. The recurrence only contributes when the
// mechanism is executed inside a process or system, where inputs are
// collected from afferents; a direct Execute with an explicit input bypasses
// it.
type RecurrentTransfer struct {
	*Transfer
	loop *projection.Mapping
}

// NewRecurrentTransfer returns a RecurrentTransfer mechanism.
func NewRecurrentTransfer(cfg RecurrentConfig) (*RecurrentTransfer, error) {
	t, err := NewTransfer(cfg.TransferConfig)
	if err != nil {
		return nil, err
	}
	n := len(t.DefaultVariable())

	var m linalg.Matrix
	switch {
	case cfg.Matrix != nil:
		if cfg.Auto != nil || cfg.Hetero != nil {
			return nil, errors.New("mechanism: recurrent matrix and auto/hetero are mutually exclusive")
		}
		m = cfg.Matrix
	case cfg.Auto != nil || cfg.Hetero != nil:
		auto, hetero := 1.0, 1.0
		if cfg.Auto != nil {
			auto = *cfg.Auto
		}
		if cfg.Hetero != nil {
			hetero = *cfg.Hetero
		}
		m = linalg.AutoHetero(n, auto, hetero)
	default:
		m = linalg.FullConnectivity(n, n)
	}

	// Seed the output so the projection can size itself.
	t.PrimaryOutput().Value = linalg.Zeros(n)
	loop, err := projection.NewMapping(t.PrimaryOutput(), t.InputPort(), projection.MappingConfig{
		Name:     t.Name() + " recurrent projection",
		Matrix:   m,
		Rand:     cfg.Rand,
		Registry: cfg.Registry,
	})
	if err != nil {
		return nil, err
	}
	return &RecurrentTransfer{Transfer: t, loop: loop}, nil
}

// RecurrentProjection returns the self-projection.
func (r *RecurrentTransfer) RecurrentProjection() *projection.Mapping { return r.loop }

// Matrix returns the recurrent weight matrix.
func (r *RecurrentTransfer) Matrix() linalg.Matrix { return r.loop.Matrix() }
