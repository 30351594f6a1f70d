package system

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
)

// Inputs maps ORIGIN mechanism names to their stimulus for one trial.
type Inputs map[string]linalg.Vector

// Stimuli maps ORIGIN mechanism names to one stimulus per trial.
type Stimuli map[string][]linalg.Vector

// Result holds the terminal mechanism values of one trial.
type Result map[string]linalg.Vector

func (s *System) validateInputs(inputs Inputs) error {
	origins := s.MechanismsByRole(Origin)
	for name := range inputs {
		if !s.HasRole(name, Origin) {
			return errors.Errorf("system: %s: %q is not an ORIGIN mechanism", s.name, name)
		}
	}
	for _, name := range origins {
		stim, ok := inputs[name]
		if !ok {
			return errors.Errorf("system: %s: missing stimulus for ORIGIN mechanism %q", s.name, name)
		}
		want := len(s.mechs[name].DefaultVariable())
		if len(stim) != want {
			return errors.Errorf("system: %s: length (%d) of stimulus does not match required length (%d) for %q",
				s.name, len(stim), want, name)
		}
	}
	return nil
}

// initialize seeds cycle-closing mechanisms so their efferents have a value
// on the first pass.
func (s *System) initialize() {
	for _, name := range s.MechanismsByRole(InitializeCycle) {
		m := s.mechs[name]
		v, ok := s.initial[name]
		if !ok {
			v = m.DefaultVariable()
		}
		m.Initialize(v)
		s.log.Debugw("mechanism initialized", "system", s.name, "mechanism", name, "value", v)
	}
	s.initialized = true
}

// feed delivers the stimuli through the process input projections. When
// several processes share an origin only the first projection carries the
// stimulus, the rest are zeroed so the sum stays the stimulus.
func (s *System) feed(inputs Inputs) {
	for name, stim := range inputs {
		for i, in := range s.inputsByOrg[name] {
			if i == 0 {
				in.Set(stim)
				continue
			}
			in.Set(linalg.Zeros(len(stim)))
		}
	}
}

// Execute runs one trial. Every ORIGIN mechanism must have a stimulus; the
// returned result holds the TERMINAL mechanism values.
func (s *System) Execute(inputs Inputs) (Result, error) {
	return s.execute(inputs, 0)
}

func (s *System) execute(inputs Inputs, trial int) (Result, error) {
	if err := s.validateInputs(inputs); err != nil {
		return nil, err
	}
	if !s.initialized {
		s.initialize()
	}
	s.feed(inputs)

	executionID := uuid.NewString()
	s.log.Debugw("trial started", "system", s.name, "executionId", executionID, "trial", trial)

	for _, set := range s.sets {
		if err := s.executeSet(set); err != nil {
			return nil, errors.Wrapf(err, "system: %s: execution %s", s.name, executionID)
		}
		if s.observer != nil {
			for _, name := range set {
				s.observer(trial, name, s.mechs[name].Value())
			}
		}
	}

	result := make(Result)
	for _, name := range s.MechanismsByRole(Terminal) {
		result[name] = linalg.Clone(s.mechs[name].Value())
	}
	return result, nil
}

// executeSet runs one topological layer, fanning the mechanisms out over a
// bounded worker pool. Mechanisms in one set have no dependencies on each
// other.
func (s *System) executeSet(set []string) error {
	workers := s.workers
	if workers <= 0 || workers > len(set) {
		workers = len(set)
	}

	work := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range work {
				if _, err := s.mechs[name].Execute(nil); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for _, name := range set {
		work <- name
	}
	close(work)
	wg.Wait()
	return firstErr
}

// Run executes one trial per stimulus. Every ORIGIN mechanism needs the same
// number of stimuli.
func (s *System) Run(stimuli Stimuli) ([]Result, error) {
	trials := -1
	for name, list := range stimuli {
		if trials == -1 {
			trials = len(list)
			continue
		}
		if len(list) != trials {
			return nil, errors.Errorf("system: %s: %q has %d stimuli, expected %d", s.name, name, len(list), trials)
		}
	}
	if trials <= 0 {
		return nil, errors.Errorf("system: %s: no stimuli to run", s.name)
	}

	runID := uuid.NewString()
	s.log.Infow("run started", "system", s.name, "runId", runID, "trials", trials)

	results := make([]Result, 0, trials)
	for trial := 0; trial < trials; trial++ {
		if s.beforeTrial != nil {
			s.beforeTrial(trial)
		}
		inputs := make(Inputs, len(stimuli))
		for name, list := range stimuli {
			inputs[name] = list[trial]
		}
		res, err := s.execute(inputs, trial)
		if err != nil {
			return nil, errors.Wrapf(err, "trial %d", trial)
		}
		if s.afterTrial != nil {
			s.afterTrial(trial)
		}
		results = append(results, res)
	}

	s.log.Infow("run finished", "system", s.name, "runId", runID, "trials", trials)
	return results, nil
}
