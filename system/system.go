// Package system composes processes into an executable graph. The union of
// the pathway projections forms a dependency graph over mechanisms; edges
// that would close a cycle are treated as feedback and pruned from the
// execution order, and the mechanisms that send them are re-initialized from
// configured initial values. Mechanisms are grouped into execution sets by
// topological layer and each set runs concurrently.
package system

import (
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow"
	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
	"github.com/neuroflow/neuroflow/process"
	"github.com/neuroflow/neuroflow/projection"
	"github.com/neuroflow/neuroflow/registry"
)

// Role classifies a mechanism's position in the system graph.
type Role int

const (
	// Origin mechanisms have no afferents in the pruned graph and receive
	// the system inputs.
	Origin Role = iota
	// Internal mechanisms lie between origins and terminals.
	Internal
	// Cycle mechanisms receive a feedback projection.
	Cycle
	// InitializeCycle mechanisms send a feedback projection and need an
	// initial value for the first pass.
	InitializeCycle
	// Terminal mechanisms have no efferents; their values are the system
	// output.
	Terminal
)

func (r Role) String() string {
	switch r {
	case Origin:
		return "ORIGIN"
	case Internal:
		return "INTERNAL"
	case Cycle:
		return "CYCLE"
	case InitializeCycle:
		return "INITIALIZE_CYCLE"
	case Terminal:
		return "TERMINAL"
	default:
		return "UNKNOWN"
	}
}

// Observer receives every mechanism value as trials execute.
type Observer func(trial int, mech string, value linalg.Vector)

// Config configures a System.
type Config struct {
	Name      string
	Processes []*process.Process

	// InitialValues seeds mechanisms that close a cycle, keyed by
	// mechanism name. Mechanisms without an entry start from their
	// default variable.
	InitialValues map[string]linalg.Vector

	// Workers caps the goroutines executing one set. Zero means one
	// goroutine per mechanism in the set.
	Workers int

	BeforeTrial func(trial int)
	AfterTrial  func(trial int)
	Observer    Observer

	Logger   neuroflow.Logger
	Registry *registry.Registry
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = neuroflow.NopLogger()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default
	}
	return cfg
}

type edge struct {
	from, to string
}

// System executes a set of processes as one graph.
type System struct {
	name      string
	processes []*process.Process
	mechs     map[string]mechanism.Mechanism
	order     []string // deterministic node order

	edges    []edge // full graph
	pruned   map[string][]string
	feedback []edge

	roles       map[string]map[Role]struct{}
	sets        [][]string
	inputsByOrg map[string][]*projection.ProcessInput
	initial     map[string]linalg.Vector

	workers     int
	beforeTrial func(trial int)
	afterTrial  func(trial int)
	observer    Observer
	log         neuroflow.Logger

	initialized bool
}

// New builds a System from its processes.
func New(config ...Config) (*System, error) {
	cfg := configDefault(config...)
	if len(cfg.Processes) == 0 {
		return nil, errors.New("system: at least one process is required")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Registry.Assign("System")
	} else {
		name = cfg.Registry.Claim(name)
	}

	s := &System{
		name:        name,
		processes:   cfg.Processes,
		mechs:       make(map[string]mechanism.Mechanism),
		roles:       make(map[string]map[Role]struct{}),
		inputsByOrg: make(map[string][]*projection.ProcessInput),
		initial:     cfg.InitialValues,
		workers:     cfg.Workers,
		beforeTrial: cfg.BeforeTrial,
		afterTrial:  cfg.AfterTrial,
		observer:    cfg.Observer,
		log:         cfg.Logger,
	}

	for _, p := range cfg.Processes {
		for _, m := range p.Mechanisms() {
			if _, seen := s.mechs[m.Name()]; !seen {
				s.mechs[m.Name()] = m
				s.order = append(s.order, m.Name())
			}
		}
		origin := p.Origin().Name()
		s.inputsByOrg[origin] = append(s.inputsByOrg[origin], p.Input())
	}

	s.buildGraph()
	s.assignRoles()

	// A process origin that is fed by another mechanism inside the system
	// is not a system origin; its process input must not keep delivering
	// the default variable on every pass.
	for name, ins := range s.inputsByOrg {
		if s.HasRole(name, Origin) {
			continue
		}
		for _, in := range ins {
			in.Set(linalg.Zeros(len(s.mechs[name].DefaultVariable())))
		}
		delete(s.inputsByOrg, name)
	}

	if err := s.buildExecutionSets(); err != nil {
		return nil, err
	}
	if err := s.validateInitialValues(); err != nil {
		return nil, err
	}

	s.log.Infow("system assembled",
		"system", name,
		"mechanisms", len(s.mechs),
		"processes", len(s.processes),
		"executionSets", len(s.sets),
		"feedbackEdges", len(s.feedback),
	)
	return s, nil
}

// buildGraph collects the projection edges of every pathway in order,
// diverting edges that would close a cycle into the feedback set.
func (s *System) buildGraph() {
	s.pruned = make(map[string][]string, len(s.mechs))
	seen := make(map[edge]struct{})

	for _, p := range s.processes {
		mechs := p.Mechanisms()
		for i := range p.Projections() {
			e := edge{from: mechs[i].Name(), to: mechs[i+1].Name()}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			s.edges = append(s.edges, e)
			if e.from == e.to || s.reaches(e.to, e.from) {
				s.feedback = append(s.feedback, e)
				continue
			}
			s.pruned[e.from] = append(s.pruned[e.from], e.to)
		}
	}

	// Recurrent self-projections count as feedback on their mechanism.
	for _, m := range s.mechs {
		if r, ok := m.(*mechanism.RecurrentTransfer); ok {
			e := edge{from: r.Name(), to: r.Name()}
			if _, dup := seen[e]; !dup {
				seen[e] = struct{}{}
				s.edges = append(s.edges, e)
				s.feedback = append(s.feedback, e)
			}
		}
	}
}

// reaches reports whether to is reachable from from in the pruned graph.
func (s *System) reaches(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]struct{}{from: {}}
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range s.pruned[n] {
			if next == to {
				return true
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}

func (s *System) assignRoles() {
	prunedIn := make(map[string]int)
	fullOut := make(map[string]int)
	for _, tos := range s.pruned {
		for _, to := range tos {
			prunedIn[to]++
		}
	}
	for _, e := range s.edges {
		if e.from == e.to {
			// A self-recurrence does not make a mechanism internal.
			continue
		}
		fullOut[e.from]++
	}

	addRole := func(name string, r Role) {
		if s.roles[name] == nil {
			s.roles[name] = make(map[Role]struct{})
		}
		s.roles[name][r] = struct{}{}
	}

	for _, e := range s.feedback {
		addRole(e.from, InitializeCycle)
		if e.from != e.to {
			addRole(e.to, Cycle)
		}
	}
	for _, name := range s.order {
		if prunedIn[name] == 0 {
			addRole(name, Origin)
			delete(s.roles[name], Cycle)
		}
		if fullOut[name] == 0 {
			addRole(name, Terminal)
		}
		if len(s.roles[name]) == 0 {
			addRole(name, Internal)
		}
	}
}

// buildExecutionSets layers the pruned graph with Kahn's algorithm.
func (s *System) buildExecutionSets() error {
	indegree := make(map[string]int, len(s.mechs))
	for _, name := range s.order {
		indegree[name] = 0
	}
	for _, tos := range s.pruned {
		for _, to := range tos {
			indegree[to]++
		}
	}

	remaining := len(s.mechs)
	var frontier []string
	for _, name := range s.order {
		if indegree[name] == 0 {
			frontier = append(frontier, name)
		}
	}
	for len(frontier) > 0 {
		s.sets = append(s.sets, frontier)
		remaining -= len(frontier)
		var next []string
		for _, name := range frontier {
			for _, to := range s.pruned[name] {
				indegree[to]--
				if indegree[to] == 0 {
					next = append(next, to)
				}
			}
		}
		frontier = next
	}
	if remaining != 0 {
		return errors.Errorf("system: %s: graph still has a cycle after feedback pruning", s.name)
	}
	return nil
}

func (s *System) validateInitialValues() error {
	for name, v := range s.initial {
		m, ok := s.mechs[name]
		if !ok {
			return errors.Errorf("system: %s: initial value for unknown mechanism %q", s.name, name)
		}
		if len(v) != len(m.DefaultVariable()) {
			return errors.Errorf("system: %s: initial value length %d does not match required length %d for %q",
				s.name, len(v), len(m.DefaultVariable()), name)
		}
	}
	return nil
}

func (s *System) Name() string { return s.name }

// Mechanisms returns the system's mechanisms in discovery order.
func (s *System) Mechanisms() []mechanism.Mechanism {
	out := make([]mechanism.Mechanism, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.mechs[name])
	}
	return out
}

// RolesOf returns the roles assigned to the named mechanism.
func (s *System) RolesOf(name string) []Role {
	var out []Role
	for r := Origin; r <= Terminal; r++ {
		if _, ok := s.roles[name][r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// HasRole reports whether the named mechanism carries the role.
func (s *System) HasRole(name string, r Role) bool {
	_, ok := s.roles[name][r]
	return ok
}

// MechanismsByRole returns the names of every mechanism with the role, in
// discovery order.
func (s *System) MechanismsByRole(r Role) []string {
	var out []string
	for _, name := range s.order {
		if s.HasRole(name, r) {
			out = append(out, name)
		}
	}
	return out
}

// ExecutionSets returns the mechanism names grouped by topological layer.
func (s *System) ExecutionSets() [][]string {
	out := make([][]string, len(s.sets))
	for i, set := range s.sets {
		out[i] = append([]string(nil), set...)
	}
	return out
}
