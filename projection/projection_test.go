package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/port"
	"github.com/neuroflow/neuroflow/registry"
)

func ports(senderLen, receiverLen int) (*port.OutputPort, *port.InputPort) {
	out := &port.OutputPort{Owner: "sender", Value: linalg.Zeros(senderLen)}
	in := &port.InputPort{Owner: "receiver", Value: linalg.Zeros(receiverLen)}
	return out, in
}

func TestAutoAssignIdentity(t *testing.T) {
	out, in := ports(3, 3)
	p, err := NewMapping(out, in, MappingConfig{Registry: registry.New()})
	require.NoError(t, err)
	assert.Equal(t, linalg.Identity(3), p.Matrix())
}

func TestAutoAssignFullConnectivity(t *testing.T) {
	out, in := ports(2, 4)
	p, err := NewMapping(out, in, MappingConfig{Registry: registry.New()})
	require.NoError(t, err)
	assert.Equal(t, linalg.FullConnectivity(2, 4), p.Matrix())
}

func TestIdentitySpecLengthMismatch(t *testing.T) {
	out, in := ports(2, 4)
	_, err := NewMapping(out, in, MappingConfig{MatrixSpec: linalg.SpecIdentity, Registry: registry.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must equal length")
}

func TestExplicitMatrixShape(t *testing.T) {
	out, in := ports(2, 2)
	_, err := NewMapping(out, in, MappingConfig{
		Matrix:   linalg.Matrix{{1, 2, 3}, {4, 5, 6}},
		Registry: registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match sender length")
}

func TestTransmit(t *testing.T) {
	out, in := ports(2, 3)
	p, err := NewMapping(out, in, MappingConfig{
		Matrix:   linalg.Matrix{{1, 2, 3}, {4, 5, 6}},
		Registry: registry.New(),
	})
	require.NoError(t, err)

	out.Value = linalg.Vector{1, 10}
	got, err := p.Transmit()
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{41, 52, 63}, got)

	// The projection registered itself with the receiver.
	collected, err := in.Collect()
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{41, 52, 63}, collected)
}

func TestApplyDelta(t *testing.T) {
	out, in := ports(2, 2)
	p, err := NewMapping(out, in, MappingConfig{Learnable: true, Registry: registry.New()})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.LearningRate())

	require.NoError(t, p.ApplyDelta(linalg.Matrix{{0.5, 0}, {0, 0.5}}))
	assert.Equal(t, linalg.Matrix{{1.5, 0}, {0, 1.5}}, p.Matrix())

	err = p.ApplyDelta(linalg.Matrix{{1}})
	require.Error(t, err)
}

func TestDefaultNames(t *testing.T) {
	reg := registry.New()
	out, in := ports(2, 2)
	p1, err := NewMapping(out, in, MappingConfig{Registry: reg})
	require.NoError(t, err)
	p2, err := NewMapping(out, in, MappingConfig{Registry: reg})
	require.NoError(t, err)
	assert.Equal(t, "MappingProjection-1", p1.Name())
	assert.Equal(t, "MappingProjection-2", p2.Name())
}

func TestProcessInput(t *testing.T) {
	_, in := ports(1, 2)
	p := NewProcessInput("stimulus", in)
	p.Set(linalg.Vector{7, 8})

	got, err := in.Collect()
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{7, 8}, got)
}
