// Package snapshot encodes and strictly validates the persisted planner state.
// A document is either accepted whole or rejected whole.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

var ErrInvalid = errors.New("invalid snapshot")

// ValidationError points at the first offending value in a document.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid snapshot: %s", e.Reason)
	}
	return fmt.Sprintf("invalid snapshot at %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// State is the full persisted document, also used as the import/export file.
type State struct {
	AllWeeks map[week.Key]week.Week `json:"allWeeks"`
	TodoPool []task.Task            `json:"todoPool"`
}

// Validate checks the rules that span the whole state: ids are unique
// everywhere, the pool holds no occurrences, and no occurrence points at
// itself.
func (s State) Validate() error {
	seen := make(map[task.ID]string)
	claim := func(path string, t task.Task) error {
		if prev, ok := seen[t.ID]; ok {
			return invalid(path, "duplicate id %d (also at %s)", t.ID, prev)
		}
		seen[t.ID] = path
		if t.SourceID != nil && *t.SourceID == t.ID {
			return invalid(path, "sourceId equals id %d", t.ID)
		}
		return nil
	}

	for i, t := range s.TodoPool {
		path := fmt.Sprintf("todoPool[%d]", i)
		if t.IsOccurrence() {
			return invalid(path, "habit occurrence %d cannot live in the pool", t.ID)
		}
		if err := claim(path, t); err != nil {
			return err
		}
	}
	for key, w := range s.AllWeeks {
		if key == "" {
			return invalid("allWeeks", "empty week key")
		}
		if err := w.Validate(); err != nil {
			return invalid("allWeeks."+string(key), "%v", err)
		}
		for _, d := range week.Days {
			for _, c := range week.Categories {
				for i, t := range w.Slot(d, c) {
					path := fmt.Sprintf("allWeeks.%s.%s.%s[%d]", key, d, c, i)
					if err := claim(path, t); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// Decode parses and validates a full {"allWeeks", "todoPool"} document.
func Decode(data []byte) (State, error) {
	raw, err := parse(data)
	if err != nil {
		return State{}, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return State{}, invalid("", "document must be an object")
	}
	rawWeeks, ok := obj["allWeeks"]
	if !ok {
		return State{}, invalid("allWeeks", "missing")
	}
	rawPool, ok := obj["todoPool"]
	if !ok {
		return State{}, invalid("todoPool", "missing")
	}

	var s State
	if s.AllWeeks, err = parseWeeks("allWeeks", rawWeeks); err != nil {
		return State{}, err
	}
	if s.TodoPool, err = parsePool("todoPool", rawPool); err != nil {
		return State{}, err
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

// DecodePool parses the persisted pool value on its own.
func DecodePool(data []byte) ([]task.Task, error) {
	raw, err := parse(data)
	if err != nil {
		return nil, err
	}
	tasks, err := parsePool("todoPool", raw)
	if err != nil {
		return nil, err
	}
	if err := (State{TodoPool: tasks}).Validate(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DecodeWeeks parses the persisted week map on its own.
func DecodeWeeks(data []byte) (map[week.Key]week.Week, error) {
	raw, err := parse(data)
	if err != nil {
		return nil, err
	}
	weeks, err := parseWeeks("allWeeks", raw)
	if err != nil {
		return nil, err
	}
	if err := (State{AllWeeks: weeks}).Validate(); err != nil {
		return nil, err
	}
	return weeks, nil
}

// Encode writes the document compactly. Empty collections encode as [] and {}.
func Encode(s State) ([]byte, error) {
	return json.Marshal(normalize(s))
}

func EncodePool(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return json.Marshal(tasks)
}

func EncodeWeeks(weeks map[week.Key]week.Week) ([]byte, error) {
	if weeks == nil {
		weeks = map[week.Key]week.Week{}
	}
	return json.Marshal(weeks)
}

func normalize(s State) State {
	if s.TodoPool == nil {
		s.TodoPool = []task.Task{}
	}
	if s.AllWeeks == nil {
		s.AllWeeks = map[week.Key]week.Week{}
	}
	return s
}
