package mechanism

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroflow/neuroflow/function"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/registry"
)

func TestTransferDefaults(t *testing.T) {
	m, err := NewTransfer(TransferConfig{Size: 4, Registry: registry.New()})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{10, 10, 10, 10})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{10, 10, 10, 10}, val)
	assert.Equal(t, val, m.Value())
	assert.Equal(t, val, m.PrimaryOutput().Value)
}

func TestTransferInputLength(t *testing.T) {
	m, err := NewTransfer(TransferConfig{Size: 4, Registry: registry.New()})
	require.NoError(t, err)

	_, err = m.Execute(linalg.Vector{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match required length")
}

func TestTransferConstantNoise(t *testing.T) {
	m, err := NewTransfer(TransferConfig{
		Size:     4,
		Noise:    function.ConstantNoise(5),
		Registry: registry.New(),
	})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{5, 5, 5, 5}, val)
}

func TestTransferNoiseLengthMismatch(t *testing.T) {
	_, err := NewTransfer(TransferConfig{
		Size:     4,
		Noise:    function.VectorNoise(linalg.Vector{5, 5, 5}),
		Registry: registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noise parameter")
}

func TestTransferTimeConstant(t *testing.T) {
	m, err := NewTransfer(TransferConfig{
		Size:         4,
		TimeConstant: function.Scalar(0.8),
		Registry:     registry.New(),
	})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{0.8, 0.8, 0.8, 0.8}, val)

	// Second execution keeps smoothing toward the input.
	val, err = m.Execute(linalg.Vector{1, 1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.96, val[0], 1e-12)
}

func TestTransferTimeConstantZeroIgnoresInput(t *testing.T) {
	m, err := NewTransfer(TransferConfig{
		Size:         4,
		TimeConstant: function.Scalar(0),
		Registry:     registry.New(),
	})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{0, 0, 0, 0}, val)
}

func TestTransferTimeConstantRange(t *testing.T) {
	_, err := NewTransfer(TransferConfig{
		Size:         4,
		TimeConstant: function.Scalar(2),
		Registry:     registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a float between 0 and 1")

	_, err = NewTransfer(TransferConfig{
		Size:         4,
		TimeConstant: function.PerElement(linalg.Vector{0.8, 0.8, 0.8, 0.8}),
		Registry:     registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be compatible with float")
}

func TestTransferLogistic(t *testing.T) {
	m, err := NewTransfer(TransferConfig{
		Size:     4,
		Function: function.NewLogistic(),
		Registry: registry.New(),
	})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{0.5, 0.5, 0.5, 0.5}, val)
}

func TestTransferClip(t *testing.T) {
	m, err := NewTransfer(TransferConfig{
		Size:     3,
		Clip:     &[2]float64{-1, 1},
		Registry: registry.New(),
	})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{-5, 0.5, 5})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{-1, 0.5, 1}, val)
}

func TestTransferAutoNaming(t *testing.T) {
	reg := registry.New()
	a, err := NewTransfer(TransferConfig{Registry: reg})
	require.NoError(t, err)
	b, err := NewTransfer(TransferConfig{Registry: reg})
	require.NoError(t, err)
	assert.Equal(t, "TransferMechanism-1", a.Name())
	assert.Equal(t, "TransferMechanism-2", b.Name())
}

func TestIntegratorDefaultFunction(t *testing.T) {
	m, err := NewIntegrator(IntegratorMechConfig{Registry: registry.New()})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{10})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{5}, val)
}

func TestIntegratorResetInitializer(t *testing.T) {
	fn, err := function.NewSimpleIntegrator(function.IntegratorConfig{})
	require.NoError(t, err)
	m, err := NewIntegrator(IntegratorMechConfig{Function: fn, Registry: registry.New()})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{10})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{10}, val)

	m.ResetInitializer(linalg.Vector{5})
	val, err = m.Execute(linalg.Vector{0})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{5}, val)
}

func TestIntegratorVectorParamsValidatedAtConstruction(t *testing.T) {
	fn, err := function.NewSimpleIntegrator(function.IntegratorConfig{
		Rate: function.PerElement(linalg.Vector{1, 2}),
	})
	require.NoError(t, err)

	_, err = NewIntegrator(IntegratorMechConfig{
		Size:     3,
		Function: fn,
		Registry: registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match variable length")

	noisy, err := function.NewSimpleIntegrator(function.IntegratorConfig{
		Noise: function.VectorNoise(linalg.Vector{0.1, 0.2}),
	})
	require.NoError(t, err)

	_, err = NewIntegrator(IntegratorMechConfig{
		Size:     3,
		Function: noisy,
		Registry: registry.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noise parameter length 2 does not match variable length 3")
}

func TestDDMAnalytic(t *testing.T) {
	m, err := NewDDM(DDMConfig{Registry: registry.New()})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{10})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{1}, val)

	ports := m.OutputPorts()
	require.Len(t, ports, 4)
	assert.InDelta(t, 0.3, ports[1].Scalar(), 1e-9)
	assert.InDelta(t, 1, ports[2].Scalar(), 1e-9)
	assert.InDelta(t, 0, ports[3].Scalar(), 1e-9)
}

func TestDDMAnalyticNegativeDrift(t *testing.T) {
	m, err := NewDDM(DDMConfig{Registry: registry.New()})
	require.NoError(t, err)

	val, err := m.Execute(linalg.Vector{-10})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{-1}, val)
}

func TestDDMRejectsVectorInput(t *testing.T) {
	m, err := NewDDM(DDMConfig{Registry: registry.New()})
	require.NoError(t, err)

	_, err = m.Execute(linalg.Vector{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have only a single numeric item")
}

func TestDDMPathMode(t *testing.T) {
	path, err := function.NewDriftDiffusionIntegrator(function.IntegratorConfig{
		Rate:         function.Scalar(1),
		TimeStepSize: 0.25,
	})
	require.NoError(t, err)

	m, err := NewDDM(DDMConfig{
		Path:      path,
		Threshold: 10,
		Rand:      rand.New(rand.NewSource(0)),
		Registry:  registry.New(),
	})
	require.NoError(t, err)

	// Deterministic with zero noise: each step adds rate*stim*dt, and the
	// response time advances by dt.
	val, err := m.Execute(linalg.Vector{4})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{1}, val)
	assert.Equal(t, 0.25, m.OutputPorts()[1].Scalar())

	val, err = m.Execute(linalg.Vector{4})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{2}, val)
	assert.Equal(t, 0.5, m.OutputPorts()[1].Scalar())
}

func TestDDMPathModeResetsAfterCrossing(t *testing.T) {
	path, err := function.NewDriftDiffusionIntegrator(function.IntegratorConfig{
		Rate:         function.Scalar(1),
		TimeStepSize: 0.5,
	})
	require.NoError(t, err)

	m, err := NewDDM(DDMConfig{Path: path, Threshold: 2, Registry: registry.New()})
	require.NoError(t, err)

	// One step of 1*4*0.5 crosses the threshold.
	val, err := m.Execute(linalg.Vector{4})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{2}, val)
	assert.Equal(t, 0.5, m.OutputPorts()[1].Scalar())

	// The crossing ends the trial: the next step starts from the
	// initializer with a fresh response time.
	val, err = m.Execute(linalg.Vector{4})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{2}, val)
	assert.Equal(t, 0.5, m.OutputPorts()[1].Scalar())
}

func TestRecurrentDefaults(t *testing.T) {
	m, err := NewRecurrentTransfer(RecurrentConfig{
		TransferConfig: TransferConfig{Registry: registry.New()},
	})
	require.NoError(t, err)
	assert.Equal(t, linalg.Matrix{{1}}, m.Matrix())
}

func TestRecurrentFullConnectivityDefault(t *testing.T) {
	m, err := NewRecurrentTransfer(RecurrentConfig{
		TransferConfig: TransferConfig{Size: 3, Registry: registry.New()},
	})
	require.NoError(t, err)
	assert.Equal(t, linalg.FullConnectivity(3, 3), m.Matrix())

	// Direct execution bypasses the recurrence.
	val, err := m.Execute(linalg.Vector{10, 12, -1})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{10, 12, -1}, val)
}

func TestRecurrentAutoHetero(t *testing.T) {
	auto, hetero := 3.0, -7.0
	m, err := NewRecurrentTransfer(RecurrentConfig{
		TransferConfig: TransferConfig{Size: 3, Registry: registry.New()},
		Auto:           &auto,
		Hetero:         &hetero,
	})
	require.NoError(t, err)
	assert.Equal(t, linalg.AutoHetero(3, 3, -7), m.Matrix())
}

func TestRecurrentCollectsOwnOutput(t *testing.T) {
	m, err := NewRecurrentTransfer(RecurrentConfig{
		TransferConfig: TransferConfig{Size: 2, Registry: registry.New()},
		Matrix:         linalg.Identity(2),
	})
	require.NoError(t, err)

	_, err = m.Execute(linalg.Vector{3, 4})
	require.NoError(t, err)

	// A nil input collects from afferents, which now include the
	// recurrent projection carrying the previous output.
	val, err := m.Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{3, 4}, val)
}

func TestRecurrentMatrixAutoHeteroConflict(t *testing.T) {
	auto := 1.0
	_, err := NewRecurrentTransfer(RecurrentConfig{
		TransferConfig: TransferConfig{Size: 2, Registry: registry.New()},
		Matrix:         linalg.Identity(2),
		Auto:           &auto,
	})
	require.Error(t, err)
}
