// Package runlog records mechanism values across trials. A Recorder is
// attached to a system as its observer; recorded runs can be exported as CSV
// or persisted to a SQLite database.
package runlog

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/neuroflow/neuroflow/linalg"
)

// Entry is one recorded mechanism value.
type Entry struct {
	Trial     int
	Mechanism string
	Value     linalg.Vector
}

// Recorder accumulates entries for one run. It is safe for concurrent use,
// since the mechanisms of an execution set report from separate goroutines.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{runID: uuid.NewString()}
}

// RunID identifies this run in exports and the store.
func (r *Recorder) RunID() string { return r.runID }

// Observe records one mechanism value. Its signature matches the system
// observer hook.
func (r *Recorder) Observe(trial int, mech string, value linalg.Vector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Trial: trial, Mechanism: mech, Value: linalg.Clone(value)})
}

// Entries returns the recorded entries in arrival order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// WriteCSV exports the run with one row per entry.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "trial", "mechanism", "value"}); err != nil {
		return errors.Wrap(err, "runlog: csv header")
	}
	for _, e := range r.Entries() {
		row := []string{r.runID, strconv.Itoa(e.Trial), e.Mechanism, formatVector(e.Value)}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "runlog: csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "runlog: csv flush")
}

func formatVector(v linalg.Vector) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}

func parseVector(s string) (linalg.Vector, error) {
	if s == "" {
		return linalg.Vector{}, nil
	}
	parts := strings.Split(s, ";")
	out := make(linalg.Vector, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "runlog: value %q", s)
		}
		out[i] = x
	}
	return out, nil
}
