// Package pool holds the unscheduled backlog: plain tasks and habit templates.
package pool

import (
	"fmt"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

// Pool keeps tasks in insertion order. Views are derived on every call.
type Pool struct {
	tasks []task.Task
}

func New(tasks ...task.Task) *Pool {
	p := &Pool{}
	for _, t := range tasks {
		p.Add(t)
	}
	return p
}

// Add appends t. A duplicate id means the caller broke id allocation, so it panics.
func (p *Pool) Add(t task.Task) {
	if p.index(t.ID) >= 0 {
		panic(fmt.Sprintf("pool: duplicate task id %d", t.ID))
	}
	p.tasks = append(p.tasks, t)
}

// Remove takes the task out of the pool. A missing id is not an error.
func (p *Pool) Remove(id task.ID) (task.Task, bool) {
	i := p.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	t := p.tasks[i]
	p.tasks = append(p.tasks[:i:i], p.tasks[i+1:]...)
	return t, true
}

// RemoveIDs drops every task in ids in a single pass.
func (p *Pool) RemoveIDs(ids map[task.ID]bool) int {
	if len(ids) == 0 {
		return 0
	}
	kept := make([]task.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		if !ids[t.ID] {
			kept = append(kept, t)
		}
	}
	removed := len(p.tasks) - len(kept)
	p.tasks = kept
	return removed
}

func (p *Pool) Get(id task.ID) (task.Task, bool) {
	i := p.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return p.tasks[i], true
}

func (p *Pool) Contains(id task.ID) bool {
	return p.index(id) >= 0
}

func (p *Pool) Update(id task.ID, fn func(*task.Task)) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	fn(&p.tasks[i])
	return true
}

func (p *Pool) Len() int {
	return len(p.tasks)
}

// Tasks returns a copy of the pool in insertion order.
func (p *Pool) Tasks() []task.Task {
	out := make([]task.Task, len(p.tasks))
	for i, t := range p.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Backlog is every non-habit task, the input of the external planner.
func (p *Pool) Backlog() []task.Task {
	return p.filter(func(t task.Task) bool { return !t.Habit })
}

func (p *Pool) Quadrant(q task.Quadrant) []task.Task {
	return p.filter(func(t task.Task) bool { return !t.Habit && t.Quadrant() == q })
}

func (p *Pool) Habits() []task.Task {
	return p.filter(func(t task.Task) bool { return t.Habit })
}

// UnscheduledHabits lists templates with no occurrence in w, the viewed week.
func (p *Pool) UnscheduledHabits(w week.Week) []task.Task {
	scheduled := w.SourceIDs()
	return p.filter(func(t task.Task) bool { return t.Habit && !scheduled[t.ID] })
}

func (p *Pool) filter(keep func(task.Task) bool) []task.Task {
	var out []task.Task
	for _, t := range p.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (p *Pool) index(id task.ID) int {
	for i, t := range p.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
