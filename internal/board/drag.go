package board

import (
	"errors"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

var (
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrInvalidSource  = errors.New("invalid drag source")
)

type SourceKind int

const (
	FromPool SourceKind = iota + 1
	FromSlot
)

// Source is what was picked up. Task is a snapshot taken at pick time; the
// drop always acts on the live task with the same id.
type Source struct {
	Kind     SourceKind
	Task     task.Task
	WeekKey  week.Key
	Day      week.Day
	Category week.Category
}

func PoolSource(t task.Task) Source {
	return Source{Kind: FromPool, Task: t.Clone()}
}

func SlotSource(key week.Key, d week.Day, c week.Category, t task.Task) Source {
	return Source{Kind: FromSlot, Task: t.Clone(), WeekKey: key, Day: d, Category: c}
}

type TargetKind int

const (
	ToPool TargetKind = iota + 1
	ToSlot
	ToTrash
)

// Target is where the task is released. Slots always belong to the viewed week.
type Target struct {
	Kind     TargetKind
	Day      week.Day
	Category week.Category
}

func PoolTarget() Target  { return Target{Kind: ToPool} }
func TrashTarget() Target { return Target{Kind: ToTrash} }

func SlotTarget(d week.Day, c week.Category) Target {
	return Target{Kind: ToSlot, Day: d, Category: c}
}

type State int

const (
	StateIdle State = iota
	StateDragging
	StateDroppedValid
	StateDroppedInvalid
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateDroppedValid:
		return "dropped"
	case StateDroppedInvalid:
		return "rejected"
	case StateAborted:
		return "aborted"
	default:
		return "idle"
	}
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeMoved
	OutcomeInstantiated
	OutcomeReturned
	OutcomeDeleted
)

type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotDragging
	ReasonGoalOccupied
	ReasonOccurrenceToPool
	ReasonSameContainer
	ReasonStaleSource
	ReasonInvalidTarget
)

func (r Reason) String() string {
	switch r {
	case ReasonNotDragging:
		return "nothing is being dragged"
	case ReasonGoalOccupied:
		return "goal slot already holds a task"
	case ReasonOccurrenceToPool:
		return "habit occurrences cannot return to the pool"
	case ReasonSameContainer:
		return "task is already in the pool"
	case ReasonStaleSource:
		return "task is no longer where it was picked up"
	case ReasonInvalidTarget:
		return "invalid drop target"
	default:
		return ""
	}
}

// Result reports how a drag ended. Task is the task as it now exists (the
// new occurrence for an instantiation), or the picked task otherwise.
type Result struct {
	State   State
	Outcome Outcome
	Reason  Reason
	Task    task.Task
}

func (r Result) OK() bool {
	return r.State == StateDroppedValid
}

// Session tracks one drag gesture. The zero value is idle and a session can
// be reused after every drop or abort.
type Session struct {
	state State
	src   Source
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Dragging() bool {
	return s.state == StateDragging
}

func (s *Session) Source() (Source, bool) {
	return s.src, s.state == StateDragging
}

func (s *Session) reset() {
	s.state = StateIdle
	s.src = Source{}
}

// BeginDrag records src on s. No state changes until the drop.
func (b *Board) BeginDrag(s *Session, src Source) error {
	if s.Dragging() {
		return ErrDragInProgress
	}
	switch src.Kind {
	case FromPool:
	case FromSlot:
		if !src.Day.Valid() || !src.Category.Valid() {
			return ErrInvalidSource
		}
	default:
		return ErrInvalidSource
	}
	s.state = StateDragging
	s.src = src
	s.src.Task = src.Task.Clone()
	return nil
}

// PickFromPool starts dragging a pool task.
func (b *Board) PickFromPool(s *Session, id task.ID) error {
	b.mu.Lock()
	t, ok := b.pool.Get(id)
	b.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return b.BeginDrag(s, PoolSource(t))
}

// PickFromSlot starts dragging a task from a slot of the viewed week.
func (b *Board) PickFromSlot(s *Session, d week.Day, c week.Category, id task.ID) error {
	b.mu.Lock()
	key := b.currentKey()
	var (
		picked task.Task
		found  bool
	)
	for _, t := range b.weeks.Get(key).Slot(d, c) {
		if t.ID == id {
			picked, found = t, true
			break
		}
	}
	b.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	return b.BeginDrag(s, SlotSource(key, d, c, picked))
}

// EndDrag aborts a drag that was never dropped. Nothing changes.
func (b *Board) EndDrag(s *Session) Result {
	if !s.Dragging() {
		return Result{State: StateIdle}
	}
	t := s.src.Task
	s.reset()
	return Result{State: StateAborted, Task: t}
}

// Drop releases the dragged task on target and applies the move rules. A
// rejected drop leaves every container exactly as it was. The session is
// idle afterwards either way.
func (b *Board) Drop(s *Session, target Target) Result {
	if !s.Dragging() {
		return Result{State: StateIdle, Reason: ReasonNotDragging}
	}
	src := s.src
	s.reset()

	b.mu.Lock()
	res, c := b.drop(src, target)
	b.mu.Unlock()
	b.notify(c)
	return res
}

func (b *Board) drop(src Source, target Target) (Result, Change) {
	reject := func(r Reason) (Result, Change) {
		return Result{State: StateDroppedInvalid, Reason: r, Task: src.Task}, 0
	}
	done := func(o Outcome, t task.Task, c Change) (Result, Change) {
		return Result{State: StateDroppedValid, Outcome: o, Task: t.Clone()}, c
	}

	switch target.Kind {
	case ToSlot:
		if !target.Day.Valid() || !target.Category.Valid() {
			return reject(ReasonInvalidTarget)
		}
		key := b.currentKey()
		cur := b.weeks.Get(key)
		if slotFull(cur, key, src, target) {
			return reject(ReasonGoalOccupied)
		}
		switch src.Kind {
		case FromPool:
			live, ok := b.pool.Get(src.Task.ID)
			if !ok {
				return reject(ReasonStaleSource)
			}
			if live.IsTemplate() {
				occ := live.Instantiate(b.ids.Next())
				cur.Append(target.Day, target.Category, occ)
				return done(OutcomeInstantiated, occ, ChangeWeeks)
			}
			b.pool.Remove(live.ID)
			live.Completed = false
			cur.Append(target.Day, target.Category, live)
			return done(OutcomeMoved, live, ChangePool|ChangeWeeks)
		case FromSlot:
			live, ok := b.takeFromSlot(src)
			if !ok {
				return reject(ReasonStaleSource)
			}
			live.Completed = false
			cur.Append(target.Day, target.Category, live)
			return done(OutcomeMoved, live, ChangeWeeks)
		}

	case ToPool:
		if src.Kind == FromPool {
			return reject(ReasonSameContainer)
		}
		live, ok := b.peekSlot(src)
		if !ok {
			return reject(ReasonStaleSource)
		}
		if live.IsOccurrence() {
			return reject(ReasonOccurrenceToPool)
		}
		if b.pool.Contains(live.ID) {
			return reject(ReasonSameContainer)
		}
		live, _ = b.takeFromSlot(src)
		b.pool.Add(live)
		return done(OutcomeReturned, live, ChangePool|ChangeWeeks)

	case ToTrash:
		switch src.Kind {
		case FromPool:
			live, ok := b.pool.Remove(src.Task.ID)
			if !ok {
				return reject(ReasonStaleSource)
			}
			return done(OutcomeDeleted, live, ChangePool)
		case FromSlot:
			live, ok := b.takeFromSlot(src)
			if !ok {
				return reject(ReasonStaleSource)
			}
			return done(OutcomeDeleted, live, ChangeWeeks)
		}
	}
	return reject(ReasonInvalidTarget)
}

// slotFull applies the per-slot capacity (one task for goal). Moving a task
// within its own slot never counts against it.
func slotFull(cur week.Week, key week.Key, src Source, target Target) bool {
	limit := target.Category.Capacity()
	if limit <= 0 {
		return false
	}
	if src.Kind == FromSlot && src.WeekKey == key && src.Day == target.Day && src.Category == target.Category {
		return false
	}
	n := 0
	for _, t := range cur.Slot(target.Day, target.Category) {
		if t.ID != src.Task.ID {
			n++
		}
	}
	return n >= limit
}

func (b *Board) peekSlot(src Source) (task.Task, bool) {
	w, ok := b.weeks.Lookup(src.WeekKey)
	if !ok {
		return task.Task{}, false
	}
	for _, t := range w.Slot(src.Day, src.Category) {
		if t.ID == src.Task.ID {
			return t, true
		}
	}
	return task.Task{}, false
}

func (b *Board) takeFromSlot(src Source) (task.Task, bool) {
	w, ok := b.weeks.Lookup(src.WeekKey)
	if !ok {
		return task.Task{}, false
	}
	return w.Remove(src.Day, src.Category, src.Task.ID)
}
