package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
	"github.com/neuroflow/neuroflow/process"
	"github.com/neuroflow/neuroflow/registry"
)

func transfer(t *testing.T, reg *registry.Registry, name string, size int) *mechanism.Transfer {
	t.Helper()
	m, err := mechanism.NewTransfer(mechanism.TransferConfig{Name: name, Size: size, Registry: reg})
	require.NoError(t, err)
	return m
}

func pathway(t *testing.T, reg *registry.Registry, name string, mechs ...mechanism.Mechanism) *process.Process {
	t.Helper()
	entries := make([]process.Entry, len(mechs))
	for i, m := range mechs {
		entries[i] = process.Entry{Mechanism: m}
	}
	p, err := process.New(process.Config{Name: name, Pathway: entries, Registry: reg})
	require.NoError(t, err)
	return p
}

func roles(t *testing.T, s *System, name string) []Role {
	t.Helper()
	return s.RolesOf(name)
}

func TestBranch(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)
	c := transfer(t, reg, "c", 2)
	d := transfer(t, reg, "d", 2)

	p1 := pathway(t, reg, "p1", a, b, c)
	p2 := pathway(t, reg, "p2", a, b, d)

	s, err := New(Config{Name: "Branch System", Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []string{"c", "d"}, s.MechanismsByRole(Terminal))
	assert.Equal(t, []Role{Internal}, roles(t, s, "b"))

	res, err := s.Execute(Inputs{"a": {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{2, 2}, res["c"])
	assert.Equal(t, linalg.Vector{2, 2}, res["d"])
}

func TestBypass(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)
	c := transfer(t, reg, "c", 2)
	d := transfer(t, reg, "d", 2)

	p1 := pathway(t, reg, "p1", a, b, c, d)
	p2 := pathway(t, reg, "p2", a, b, d)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []string{"d"}, s.MechanismsByRole(Terminal))
	assert.Equal(t, []Role{Internal}, roles(t, s, "b"))
	assert.Equal(t, []Role{Internal}, roles(t, s, "c"))

	// d collects both the b->d and c->d projections.
	res, err := s.Execute(Inputs{"a": {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{4, 4}, res["d"])
}

func TestChain(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 3)
	b := transfer(t, reg, "b", 3)
	c := transfer(t, reg, "c", 3)
	d := transfer(t, reg, "d", 3)
	e := transfer(t, reg, "e", 3)

	p1 := pathway(t, reg, "p1", a, b, c)
	p2 := pathway(t, reg, "p2", c, d, e)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []string{"e"}, s.MechanismsByRole(Terminal))
	for _, name := range []string{"b", "c", "d"} {
		assert.Equal(t, []Role{Internal}, roles(t, s, name), name)
	}

	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}, s.ExecutionSets())
}

func TestInternalProcessOriginGetsNoDefaultInput(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 1)
	c := transfer(t, reg, "c", 1)

	// b is p2's origin, so its process input carries b's default variable
	// until the system detaches it.
	b, err := mechanism.NewTransfer(mechanism.TransferConfig{
		Name:            "b",
		DefaultVariable: linalg.Vector{5},
		Registry:        reg,
	})
	require.NoError(t, err)

	p1 := pathway(t, reg, "p1", a, b)
	p2 := pathway(t, reg, "p2", b, c)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []Role{Internal}, roles(t, s, "b"))

	res, err := s.Execute(Inputs{"a": {1}})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{1}, res["c"])
}

func TestConvergent(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 1)
	c := transfer(t, reg, "c", 1)
	d := transfer(t, reg, "d", 1)
	e := transfer(t, reg, "e", 1)

	p1 := pathway(t, reg, "p1", a, b, e)
	p2 := pathway(t, reg, "p2", c, d, e)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []string{"e"}, s.MechanismsByRole(Terminal))
	assert.Equal(t, []Role{Internal}, roles(t, s, "b"))
	assert.Equal(t, []Role{Internal}, roles(t, s, "d"))

	res, err := s.Execute(Inputs{"a": {2, 2}, "c": {3}})
	require.NoError(t, err)
	// a feeds b through full connectivity (2+2), c feeds d, e sums both.
	assert.Equal(t, linalg.Vector{7}, res["e"])
}

func TestCyclicOneProcess(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)

	p1 := pathway(t, reg, "p1", a, b, a)

	s, err := New(Config{
		Processes:     []*process.Process{p1},
		InitialValues: map[string]linalg.Vector{"b": {1, 1}},
		Registry:      reg,
	})
	require.NoError(t, err)

	assert.Equal(t, []Role{Origin}, roles(t, s, "a"))
	assert.Equal(t, []Role{InitializeCycle}, roles(t, s, "b"))
	assert.Empty(t, s.MechanismsByRole(Terminal))

	// First trial: a sums its stimulus with b's initial value.
	res, err := s.Execute(Inputs{"a": {1, 1}})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, linalg.Vector{2, 2}, a.Value())
	assert.Equal(t, linalg.Vector{2, 2}, b.Value())
}

func TestCyclicTwoProcesses(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)
	c := transfer(t, reg, "c", 2)

	p1 := pathway(t, reg, "p1", a, b, a)
	p2 := pathway(t, reg, "p2", a, c, a)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []Role{Origin}, roles(t, s, "a"))
	assert.Equal(t, []Role{InitializeCycle}, roles(t, s, "b"))
	assert.Equal(t, []Role{InitializeCycle}, roles(t, s, "c"))
}

func TestCyclicExtendedLoop(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 1)
	c := transfer(t, reg, "c", 1)
	d := transfer(t, reg, "d", 1)
	e := transfer(t, reg, "e", 1)
	f := transfer(t, reg, "f", 1)

	p1 := pathway(t, reg, "p1", a, b, c, d)
	p2 := pathway(t, reg, "p2", e, c, f, b, d)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "e"}, s.MechanismsByRole(Origin))
	assert.Equal(t, []string{"d"}, s.MechanismsByRole(Terminal))
	assert.Equal(t, []Role{Cycle}, roles(t, s, "b"))
	assert.Equal(t, []Role{Internal}, roles(t, s, "c"))
	assert.Equal(t, []Role{InitializeCycle}, roles(t, s, "f"))
}

func TestStimulusValidation(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)
	p1 := pathway(t, reg, "p1", a, b)

	s, err := New(Config{Processes: []*process.Process{p1}, Registry: reg})
	require.NoError(t, err)

	_, err = s.Execute(Inputs{"b": {1, 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an ORIGIN mechanism")

	_, err = s.Execute(Inputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing stimulus")

	_, err = s.Execute(Inputs{"a": {1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match required length")
}

func TestInitialValueValidation(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 2)
	b := transfer(t, reg, "b", 2)
	p1 := pathway(t, reg, "p1", a, b)

	_, err := New(Config{
		Processes:     []*process.Process{p1},
		InitialValues: map[string]linalg.Vector{"nope": {1}},
		Registry:      reg,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mechanism")

	_, err = New(Config{
		Processes:     []*process.Process{p1},
		InitialValues: map[string]linalg.Vector{"b": {1, 2, 3}},
		Registry:      reg,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match required length")
}

func TestRunTrialsAndHooks(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 1)
	b := transfer(t, reg, "b", 1)
	p1 := pathway(t, reg, "p1", a, b)

	var before, after []int
	var observed []string
	s, err := New(Config{
		Processes:   []*process.Process{p1},
		BeforeTrial: func(trial int) { before = append(before, trial) },
		AfterTrial:  func(trial int) { after = append(after, trial) },
		Observer: func(trial int, mech string, value linalg.Vector) {
			observed = append(observed, mech)
		},
		Workers:  1,
		Registry: reg,
	})
	require.NoError(t, err)

	results, err := s.Run(Stimuli{"a": {{1}, {2}, {3}}})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, linalg.Vector{3}, results[2]["b"])
	assert.Equal(t, []int{0, 1, 2}, before)
	assert.Equal(t, []int{0, 1, 2}, after)
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, observed)
}

func TestRunMismatchedTrialCounts(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 1)
	c := transfer(t, reg, "c", 1)
	b := transfer(t, reg, "b", 1)
	p1 := pathway(t, reg, "p1", a, b)
	p2 := pathway(t, reg, "p2", c, b)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	_, err = s.Run(Stimuli{"a": {{1}, {2}}, "c": {{1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
}

func TestSharedOriginFedOnce(t *testing.T) {
	reg := registry.New()
	a := transfer(t, reg, "a", 1)
	b := transfer(t, reg, "b", 1)
	c := transfer(t, reg, "c", 1)

	p1 := pathway(t, reg, "p1", a, b)
	p2 := pathway(t, reg, "p2", a, c)

	s, err := New(Config{Processes: []*process.Process{p1, p2}, Registry: reg})
	require.NoError(t, err)

	// a receives a process input from both pathways; the stimulus must
	// not be double counted.
	res, err := s.Execute(Inputs{"a": {2}})
	require.NoError(t, err)
	assert.Equal(t, linalg.Vector{2}, res["b"])
	assert.Equal(t, linalg.Vector{2}, res["c"])
}
