package runlog

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	run_id    TEXT NOT NULL,
	trial     INTEGER NOT NULL,
	mechanism TEXT NOT NULL,
	value     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_run ON entries (run_id, trial);
`

// Store persists recorded runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "runlog: open store")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "runlog: create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes every entry of the recorder under its run id.
func (s *Store) Save(r *Recorder) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "runlog: begin")
	}
	stmt, err := tx.Prepare("INSERT INTO entries (run_id, trial, mechanism, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "runlog: prepare")
	}
	defer stmt.Close()

	for _, e := range r.Entries() {
		if _, err := stmt.Exec(r.RunID(), e.Trial, e.Mechanism, formatVector(e.Value)); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "runlog: insert")
		}
	}
	return errors.Wrap(tx.Commit(), "runlog: commit")
}

// Runs lists the stored run ids.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT run_id FROM entries ORDER BY run_id")
	if err != nil {
		return nil, errors.Wrap(err, "runlog: runs")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "runlog: scan run")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "runlog: runs")
}

// Entries loads a stored run in insertion order.
func (s *Store) Entries(runID string) ([]Entry, error) {
	rows, err := s.db.Query("SELECT trial, mechanism, value FROM entries WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, errors.Wrap(err, "runlog: entries")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var raw string
		if err := rows.Scan(&e.Trial, &e.Mechanism, &raw); err != nil {
			return nil, errors.Wrap(err, "runlog: scan entry")
		}
		v, err := parseVector(raw)
		if err != nil {
			return nil, err
		}
		e.Value = v
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "runlog: entries")
}
