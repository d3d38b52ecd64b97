package reorient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// State is where a role ended up.
type State int

const (
	Pending State = iota
	Skipped
	SmartOriented
	DumbOriented
	Failed
)

var stateNames = [...]string{"PENDING", "SKIPPED", "SMART_ORIENTED", "DUMB_ORIENTED", "FAILED"}

func (s State) String() string {
	if s < Pending || s > Failed {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the role has been visited.
func (s State) Terminal() bool {
	return s != Pending
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseState is the inverse of State.String.
func ParseState(v string) (State, error) {
	for i, n := range stateNames {
		if n == v {
			return State(i), nil
		}
	}
	return Pending, fmt.Errorf("reorient: unknown state %q", v)
}

// Outcome records one role.
type Outcome struct {
	Role     string   `json:"role"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	State    State    `json:"state"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Aim      string   `json:"aim,omitempty"`
	Pole     string   `json:"pole,omitempty"`

	err error
}

// Err returns the failure cause, if any.
func (o Outcome) Err() error {
	if o.err == nil && o.Error != "" {
		return errors.New(o.Error)
	}
	return o.err
}

// Tally counts roles per terminal state.
type Tally struct {
	Skipped int `json:"skipped"`
	Smart   int `json:"smart"`
	Dumb    int `json:"dumb"`
	Failed  int `json:"failed"`
}

func (t Tally) Total() int {
	return t.Skipped + t.Smart + t.Dumb + t.Failed
}

func (t *Tally) add(s State) {
	switch s {
	case Skipped:
		t.Skipped++
	case SmartOriented:
		t.Smart++
	case DumbOriented:
		t.Dumb++
	case Failed:
		t.Failed++
	}
}

// Report is the result of a run: every role in mapping order plus the tally.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
	Tally    Tally     `json:"tally"`
}

func (r *Report) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Tally.add(o.State)
}

// Failed lists the failed roles.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == Failed {
			out = append(out, o)
		}
	}
	return out
}

// ByState lists the roles that ended in s.
func (r *Report) ByState(s State) []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.State == s {
			out = append(out, o.Role)
		}
	}
	return out
}

// Err joins every role failure, or returns nil when nothing failed.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s (%s ← %s): %w", o.Role, o.Target, o.Source, o.Err()))
	}
	return errors.Join(errs...)
}

// Summary is a one-line tally for console output.
func (r *Report) Summary() string {
	t := r.Tally
	return fmt.Sprintf("%d roles: %d smart, %d dumb, %d skipped, %d failed", t.Total(), t.Smart, t.Dumb, t.Skipped, t.Failed)
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteFile.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("reorient: report %s: %w", path, err)
	}
	return &r, nil
}
