// Package board is the planner's state engine. It owns the backlog pool and
// the week repository, and every mutation of either goes through it.
package board

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"weekplan/internal/pool"
	"weekplan/internal/task"
	"weekplan/internal/week"
)

// DefaultDailyCapacity is the number of minutes a day can hold.
const DefaultDailyCapacity = 480

var ErrNotFound = errors.New("task not found")

// Change tells observers which part of the state moved.
type Change uint8

const (
	ChangePool Change = 1 << iota
	ChangeWeeks
	ChangeView
)

func (c Change) Has(o Change) bool { return c&o != 0 }

// Observer is called after a mutation, outside the board lock.
type Observer func(Change)

type Options struct {
	Now           func() time.Time
	DailyCapacity int
}

type Board struct {
	mu        sync.Mutex
	pool      *pool.Pool
	weeks     *week.Repository
	offset    int
	now       func() time.Time
	ids       *task.IDGenerator
	capacity  int
	observers []Observer
}

// New takes ownership of p and weeks. The currently viewed week is created
// if it does not exist yet.
func New(p *pool.Pool, weeks *week.Repository, opts Options) *Board {
	if p == nil {
		p = pool.New()
	}
	if weeks == nil {
		weeks = week.NewRepository()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DailyCapacity <= 0 {
		opts.DailyCapacity = DefaultDailyCapacity
	}
	b := &Board{
		pool:     p,
		weeks:    weeks,
		now:      opts.Now,
		ids:      task.NewIDGenerator(opts.Now),
		capacity: opts.DailyCapacity,
	}
	b.observeIDs()
	b.weeks.Get(b.currentKey())
	return b
}

func (b *Board) Subscribe(fn Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

func (b *Board) notify(c Change) {
	if c == 0 {
		return
	}
	b.mu.Lock()
	obs := append([]Observer(nil), b.observers...)
	b.mu.Unlock()
	for _, fn := range obs {
		fn(c)
	}
}

func (b *Board) observeIDs() {
	for _, t := range b.pool.Tasks() {
		b.ids.Observe(t.ID)
	}
	for _, w := range b.weeks.Weeks() {
		for _, t := range w.Tasks() {
			b.ids.Observe(t.ID)
		}
	}
}

func (b *Board) currentKey() week.Key {
	return week.KeyFor(b.now(), b.offset)
}

func (b *Board) Capacity() int {
	return b.capacity
}

func (b *Board) Offset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offset
}

func (b *Board) CurrentKey() week.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentKey()
}

// CurrentWeek returns a copy of the viewed week.
func (b *Board) CurrentWeek() week.Week {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weeks.Get(b.currentKey()).Clone()
}

// RangeLabel formats the Monday and Sunday of the viewed week.
func (b *Board) RangeLabel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return week.RangeLabel(b.now(), b.offset)
}

func (b *Board) Dates() [7]time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return week.Dates(b.now(), b.offset)
}

// Today is the weekday of the wall clock, independent of the viewed week.
func (b *Board) Today() week.Day {
	return week.Today(b.now())
}

// NavigateWeek shifts the viewed week by delta and returns its key.
func (b *Board) NavigateWeek(delta int) week.Key {
	b.mu.Lock()
	b.offset += delta
	key := b.currentKey()
	b.weeks.Get(key)
	b.mu.Unlock()
	b.notify(ChangeView)
	return key
}

func (b *Board) SetOffset(offset int) week.Key {
	b.mu.Lock()
	b.offset = offset
	key := b.currentKey()
	b.weeks.Get(key)
	b.mu.Unlock()
	b.notify(ChangeView)
	return key
}

func (b *Board) Pool() []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Tasks()
}

func (b *Board) Quadrant(q task.Quadrant) []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Quadrant(q)
}

func (b *Board) Habits() []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Habits()
}

// UnscheduledHabits lists templates without an occurrence in the viewed week.
func (b *Board) UnscheduledHabits() []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.UnscheduledHabits(b.weeks.Get(b.currentKey()))
}

func (b *Board) Weeks() map[week.Key]week.Week {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weeks.Weeks()
}

// Snapshot copies the pool and every week under one lock.
func (b *Board) Snapshot() ([]task.Task, map[week.Key]week.Week) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Tasks(), b.weeks.Weeks()
}

// TotalTasks counts the pool and every stored week.
func (b *Board) TotalTasks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Len() + b.weeks.Count()
}

// WeekCount is the number of stored weeks.
func (b *Board) WeekCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weeks.Len()
}

// Replace swaps in a new pool and week set, as after an import, and jumps
// back to the current week. Callers validate the data first.
func (b *Board) Replace(tasks []task.Task, weeks map[week.Key]week.Week) {
	b.mu.Lock()
	b.pool = pool.New(tasks...)
	b.weeks = week.RepositoryFrom(weeks)
	b.offset = 0
	b.observeIDs()
	b.weeks.Get(b.currentKey())
	b.mu.Unlock()
	b.notify(ChangePool | ChangeWeeks | ChangeView)
}

// AddTask creates a task of the given kind in the pool.
func (b *Board) AddTask(text string, kind task.Kind, duration int) (task.Task, error) {
	b.mu.Lock()
	t, err := task.New(b.ids.Next(), text, kind, duration)
	if err != nil {
		b.mu.Unlock()
		return task.Task{}, err
	}
	b.pool.Add(t)
	b.mu.Unlock()
	b.notify(ChangePool)
	return t.Clone(), nil
}

// Locate finds a task in the viewed week, then in the pool, and describes it
// as a drag source.
func (b *Board) Locate(id task.ID) (Source, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := b.currentKey()
	if loc, t, ok := b.weeks.Get(key).Find(id); ok {
		return SlotSource(key, loc.Day, loc.Category, t), true
	}
	if t, ok := b.pool.Get(id); ok {
		return PoolSource(t), true
	}
	return Source{}, false
}

// update applies fn to the task in the viewed week, falling back to the pool.
func (b *Board) update(id task.ID, fn func(*task.Task)) (Change, bool) {
	if b.weeks.Get(b.currentKey()).Update(id, fn) {
		return ChangeWeeks, true
	}
	if b.pool.Update(id, fn) {
		return ChangePool, true
	}
	return 0, false
}

// ToggleCompleted flips the completion flag and returns the new value.
func (b *Board) ToggleCompleted(id task.ID) (bool, error) {
	var done bool
	b.mu.Lock()
	c, ok := b.update(id, func(t *task.Task) {
		t.Completed = !t.Completed
		done = t.Completed
	})
	b.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	b.notify(c)
	return done, nil
}

// EditTask changes text and duration. Invalid input leaves the task untouched.
func (b *Board) EditTask(id task.ID, text string, duration int) error {
	var editErr error
	b.mu.Lock()
	c, ok := b.update(id, func(t *task.Task) {
		edited := *t
		if editErr = edited.Edit(text, duration); editErr == nil {
			*t = edited
		}
	})
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrNotFound)
	}
	if editErr != nil {
		return editErr
	}
	b.notify(c)
	return nil
}

// DuplicateTask copies a task into the pool under a new id. The pool never
// holds occurrences, so copying one yields a new habit template.
func (b *Board) DuplicateTask(id task.ID) (task.Task, error) {
	b.mu.Lock()
	orig, ok := b.find(id)
	if !ok {
		b.mu.Unlock()
		return task.Task{}, fmt.Errorf("duplicate %d: %w", id, ErrNotFound)
	}
	cp := orig.Clone()
	cp.ID = b.ids.Next()
	cp.Completed = false
	cp.SourceID = nil
	b.pool.Add(cp)
	b.mu.Unlock()
	b.notify(ChangePool)
	return cp.Clone(), nil
}

func (b *Board) find(id task.ID) (task.Task, bool) {
	if _, t, ok := b.weeks.Get(b.currentKey()).Find(id); ok {
		return t, true
	}
	return b.pool.Get(id)
}

// ResetWeek empties the viewed week. Plain tasks return to the pool;
// occurrences and stray templates are dropped. It returns how many tasks
// went back to the pool.
func (b *Board) ResetWeek() int {
	b.mu.Lock()
	key := b.currentKey()
	returned := 0
	for _, t := range b.weeks.Get(key).Tasks() {
		if t.Habit || t.IsOccurrence() || b.pool.Contains(t.ID) {
			continue
		}
		t.Completed = false
		b.pool.Add(t)
		returned++
	}
	b.weeks.Put(key, week.New())
	b.mu.Unlock()
	c := ChangeWeeks
	if returned > 0 {
		c |= ChangePool
	}
	b.notify(c)
	return returned
}

// ClearAll deletes every plain task and every week. Habit templates survive.
func (b *Board) ClearAll() {
	b.mu.Lock()
	b.pool = pool.New(b.pool.Habits()...)
	b.weeks = week.NewRepository()
	b.offset = 0
	b.weeks.Get(b.currentKey())
	b.mu.Unlock()
	b.notify(ChangePool | ChangeWeeks | ChangeView)
}
