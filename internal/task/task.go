// Package task holds the unit of work shared by the pool and the week grid.
package task

import (
	"errors"
	"strings"
)

const DefaultDuration = 30

var (
	ErrEmptyText       = errors.New("task text is empty")
	ErrInvalidDuration = errors.New("task duration must be positive")
	ErrUnknownKind     = errors.New("unknown task kind")
)

type ID int64

// Task is serialized field-for-field; SourceID is only set on habit occurrences.
type Task struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Urgent    bool   `json:"urgent"`
	Important bool   `json:"important"`
	Duration  int    `json:"duration"`
	Habit     bool   `json:"habit"`
	SourceID  *ID    `json:"sourceId,omitempty"`
}

// Kind is the form category a task is created under.
type Kind string

const (
	KindASAP    Kind = "asap"
	KindSoon    Kind = "soon"
	KindPending Kind = "pending"
	KindLeisure Kind = "leisure"
	KindBasics  Kind = "basics"
)

func Kinds() []Kind {
	return []Kind{KindASAP, KindSoon, KindPending, KindLeisure, KindBasics}
}

func ParseKind(v string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// New builds a pool task. A non-positive duration falls back to DefaultDuration.
func New(id ID, text string, kind Kind, duration int) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return Task{}, err
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Task{
		ID:        id,
		Text:      text,
		Urgent:    kind == KindASAP || kind == KindPending,
		Important: kind == KindASAP || kind == KindSoon,
		Duration:  duration,
		Habit:     kind == KindBasics,
	}, nil
}

func (t Task) IsOccurrence() bool {
	return t.SourceID != nil
}

// IsTemplate reports whether t is a recurring habit living in the pool.
func (t Task) IsTemplate() bool {
	return t.Habit && t.SourceID == nil
}

// Instantiate returns a fresh occurrence of the template t.
func (t Task) Instantiate(id ID) Task {
	src := t.ID
	occ := t
	occ.ID = id
	occ.SourceID = &src
	occ.Completed = false
	return occ
}

// Clone copies t, including its own SourceID pointer.
func (t Task) Clone() Task {
	if t.SourceID != nil {
		src := *t.SourceID
		t.SourceID = &src
	}
	return t
}

func (t Task) Kind() Kind {
	if t.Habit {
		return KindBasics
	}
	switch t.Quadrant() {
	case QuadrantASAP:
		return KindASAP
	case QuadrantSoon:
		return KindSoon
	case QuadrantPending:
		return KindPending
	default:
		return KindLeisure
	}
}

// Edit applies a new text and duration after validating both.
func (t *Task) Edit(text string, duration int) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}
	t.Text = text
	t.Duration = duration
	return nil
}
