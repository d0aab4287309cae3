package board

import (
	"context"
	"errors"
	"fmt"

	"weekplan/internal/planner"
	"weekplan/internal/task"
	"weekplan/internal/week"
)

var ErrEmptyBacklog = errors.New("backlog has no tasks to plan")

// Skip reasons reported for assignments the importer ignores.
const (
	SkipNotInBacklog = "not in backlog"
	SkipHabit        = "habit template"
	SkipDuplicate    = "repeated in plan"
	SkipUnknownSlot  = "unknown day or category"
	SkipSlotFull     = "goal slot already holds a task"
)

type Skipped struct {
	Assignment planner.Assignment
	Reason     string
}

type PlanResult struct {
	WeekKey week.Key
	Placed  []task.ID
	Skipped []Skipped
}

// PlanRequest describes the backlog and the viewed week's load.
func (b *Board) PlanRequest() planner.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := b.currentKey()
	return planner.NewRequest(key, b.pool.Backlog(), b.weeks.Get(key), b.capacity)
}

// ApplyPlan places a plan into the viewed week.
func (b *Board) ApplyPlan(plan []planner.Assignment) PlanResult {
	return b.applyPlan("", plan)
}

// applyPlan builds the new week on a copy and commits it together with the
// pool removal, so callers see either none or all of the plan. An empty key
// means the viewed week.
func (b *Board) applyPlan(key week.Key, plan []planner.Assignment) PlanResult {
	b.mu.Lock()
	if key == "" {
		key = b.currentKey()
	}
	res := PlanResult{WeekKey: key}
	draft := b.weeks.Get(key).Clone()
	placed := make(map[task.ID]bool)

	for _, a := range plan {
		t, ok := b.pool.Get(a.ID)
		reason := ""
		switch {
		case !ok:
			reason = SkipNotInBacklog
		case t.Habit:
			reason = SkipHabit
		case placed[a.ID]:
			reason = SkipDuplicate
		case !a.Day.Valid() || !a.Category.Valid():
			reason = SkipUnknownSlot
		case a.Category.Capacity() > 0 && len(draft.Slot(a.Day, a.Category)) >= a.Category.Capacity():
			reason = SkipSlotFull
		}
		if reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Assignment: a, Reason: reason})
			continue
		}
		draft.Append(a.Day, a.Category, t)
		placed[a.ID] = true
		res.Placed = append(res.Placed, a.ID)
	}

	if len(placed) > 0 {
		b.weeks.Put(key, draft)
		b.pool.RemoveIDs(placed)
	}
	b.mu.Unlock()

	if len(placed) > 0 {
		b.notify(ChangePool | ChangeWeeks)
	}
	return res
}

// Organize asks p for a plan of the backlog and applies it to the week the
// request was built for. A planner error leaves the state unchanged.
func (b *Board) Organize(ctx context.Context, p planner.Planner) (PlanResult, error) {
	req := b.PlanRequest()
	if len(req.Tasks) == 0 {
		return PlanResult{WeekKey: req.WeekKey}, ErrEmptyBacklog
	}
	plan, err := p.Plan(ctx, req)
	if err != nil {
		return PlanResult{WeekKey: req.WeekKey}, fmt.Errorf("organize %s: %w", req.WeekKey, err)
	}
	if len(plan) == 0 {
		return PlanResult{WeekKey: req.WeekKey}, nil
	}
	return b.applyPlan(req.WeekKey, plan), nil
}
