// Package week models the 7 × category grid and the repository of weeks keyed
// by calendar week.
package week

import (
	"errors"
	"fmt"
	"strings"

	"weekplan/internal/task"
)

type Day string

const (
	Monday    Day = "MONDAY"
	Tuesday   Day = "TUESDAY"
	Wednesday Day = "WEDNESDAY"
	Thursday  Day = "THURSDAY"
	Friday    Day = "FRIDAY"
	Saturday  Day = "SATURDAY"
	Sunday    Day = "SUNDAY"
)

// Days is the fixed display order.
var Days = [7]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type Category string

const (
	Goal    Category = "goal"
	Focus   Category = "focus"
	Work    Category = "work"
	Leisure Category = "leisure"
	Basics  Category = "basics"
)

var Categories = [5]Category{Goal, Focus, Work, Leisure, Basics}

var (
	ErrUnknownDay      = errors.New("unknown day")
	ErrUnknownCategory = errors.New("unknown category")
)

func ParseDay(v string) (Day, error) {
	d := Day(strings.ToUpper(strings.TrimSpace(v)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDay, v)
	}
	return d, nil
}

func (d Day) Valid() bool {
	return d.Index() >= 0
}

// Index is the position of d in Days, or -1.
func (d Day) Index() int {
	for i, known := range Days {
		if d == known {
			return i
		}
	}
	return -1
}

func ParseCategory(v string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(v)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, v)
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Capacity is the number of tasks a single (day, category) slot may hold; 0 means unbounded.
func (c Category) Capacity() int {
	if c == Goal {
		return 1
	}
	return 0
}

type DayTasks map[Category][]task.Task

// Week maps every day to every category. A Week built with New is always
// fully populated; Validate checks the same shape for decoded data.
type Week map[Day]DayTasks

func New() Week {
	w := make(Week, len(Days))
	for _, d := range Days {
		dt := make(DayTasks, len(Categories))
		for _, c := range Categories {
			dt[c] = []task.Task{}
		}
		w[d] = dt
	}
	return w
}

// Location addresses a single slot inside a week.
type Location struct {
	Day      Day
	Category Category
}

func (w Week) Slot(d Day, c Category) []task.Task {
	return w[d][c]
}

func (w Week) Append(d Day, c Category, t task.Task) {
	w[d][c] = append(w[d][c], t)
}

// Remove takes the task with id out of the slot, keeping the order of the rest.
func (w Week) Remove(d Day, c Category, id task.ID) (task.Task, bool) {
	list := w[d][c]
	for i, t := range list {
		if t.ID != id {
			continue
		}
		out := make([]task.Task, 0, len(list)-1)
		out = append(out, list[:i]...)
		out = append(out, list[i+1:]...)
		w[d][c] = out
		return t, true
	}
	return task.Task{}, false
}

func (w Week) Contains(d Day, c Category, id task.ID) bool {
	for _, t := range w[d][c] {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Find walks the grid in display order and returns the first slot holding id.
func (w Week) Find(id task.ID) (Location, task.Task, bool) {
	for _, d := range Days {
		for _, c := range Categories {
			for _, t := range w[d][c] {
				if t.ID == id {
					return Location{Day: d, Category: c}, t, true
				}
			}
		}
	}
	return Location{}, task.Task{}, false
}

// Update applies fn to the task with id wherever it sits in the week.
func (w Week) Update(id task.ID, fn func(*task.Task)) bool {
	for _, d := range Days {
		for _, c := range Categories {
			list := w[d][c]
			for i := range list {
				if list[i].ID == id {
					fn(&list[i])
					return true
				}
			}
		}
	}
	return false
}

// Tasks flattens the week in display order.
func (w Week) Tasks() []task.Task {
	var out []task.Task
	for _, d := range Days {
		for _, c := range Categories {
			out = append(out, w[d][c]...)
		}
	}
	return out
}

func (w Week) Count() int {
	n := 0
	for _, d := range Days {
		for _, c := range Categories {
			n += len(w[d][c])
		}
	}
	return n
}

// Minutes sums the duration of everything planned on d, completed or not.
func (w Week) Minutes(d Day) int {
	total := 0
	for _, c := range Categories {
		for _, t := range w[d][c] {
			total += t.Duration
		}
	}
	return total
}

// SourceIDs returns the set of templates that have an occurrence in the week.
func (w Week) SourceIDs() map[task.ID]bool {
	ids := map[task.ID]bool{}
	for _, t := range w.Tasks() {
		if t.SourceID != nil {
			ids[*t.SourceID] = true
		}
	}
	return ids
}

func (w Week) Clone() Week {
	out := make(Week, len(w))
	for d, dt := range w {
		cp := make(DayTasks, len(dt))
		for c, list := range dt {
			tasks := make([]task.Task, len(list))
			for i, t := range list {
				tasks[i] = t.Clone()
			}
			cp[c] = tasks
		}
		out[d] = cp
	}
	return out
}

// Validate checks the full shape: exactly the 7 days, exactly the known
// categories per day, and at most Capacity tasks in bounded slots.
func (w Week) Validate() error {
	if len(w) != len(Days) {
		for d := range w {
			if !d.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownDay, string(d))
			}
		}
	}
	for _, d := range Days {
		dt, ok := w[d]
		if !ok || dt == nil {
			return fmt.Errorf("missing day %s", d)
		}
		for c := range dt {
			if !c.Valid() {
				return fmt.Errorf("%s: %w: %q", d, ErrUnknownCategory, string(c))
			}
		}
		for _, c := range Categories {
			list, ok := dt[c]
			if !ok || list == nil {
				return fmt.Errorf("%s: missing category %s", d, c)
			}
			if limit := c.Capacity(); limit > 0 && len(list) > limit {
				return fmt.Errorf("%s: %s holds %d tasks, limit is %d", d, c, len(list), limit)
			}
		}
	}
	return nil
}
