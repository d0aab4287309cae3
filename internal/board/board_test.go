package board

import (
	"context"
	"errors"
	"testing"

	"weekplan/internal/planner"
	"weekplan/internal/task"
	"weekplan/internal/week"
)

type stubPlanner struct {
	plan []planner.Assignment
	err  error
	req  planner.Request
}

func (p *stubPlanner) Plan(_ context.Context, req planner.Request) ([]planner.Assignment, error) {
	p.req = req
	return p.plan, p.err
}

func TestAddTask(t *testing.T) {
	b := newBoard()
	got, err := b.AddTask("  Write report ", task.KindSoon, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.Text != "Write report" || got.Duration != task.DefaultDuration || !got.Important || got.Urgent {
		t.Fatalf("unexpected task %+v", got)
	}
	if _, err := b.AddTask("   ", task.KindASAP, 10); !errors.Is(err, task.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	second, _ := b.AddTask("Another", task.KindBasics, 15)
	if second.ID == got.ID || !second.Habit {
		t.Fatalf("unexpected second task %+v", second)
	}
	if len(b.Pool()) != 2 {
		t.Fatalf("pool size = %d", len(b.Pool()))
	}
}

func TestToggleAndEditPreferCurrentWeek(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Text: "a", Duration: 30}, task.Task{ID: 2, Text: "b", Duration: 30})
	var s Session
	mustPickPool(t, b, &s, 1)
	b.Drop(&s, SlotTarget(week.Monday, week.Work))

	done, err := b.ToggleCompleted(1)
	if err != nil || !done {
		t.Fatalf("toggle = %v %v", done, err)
	}
	if !b.CurrentWeek().Slot(week.Monday, week.Work)[0].Completed {
		t.Fatal("week task not toggled")
	}
	if done, _ := b.ToggleCompleted(2); !done {
		t.Fatal("pool task not toggled")
	}
	if _, err := b.ToggleCompleted(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := b.EditTask(1, "renamed", 90); err != nil {
		t.Fatalf("edit: %v", err)
	}
	edited := b.CurrentWeek().Slot(week.Monday, week.Work)[0]
	if edited.Text != "renamed" || edited.Duration != 90 {
		t.Fatalf("unexpected edit %+v", edited)
	}
	if err := b.EditTask(2, "x", 0); !errors.Is(err, task.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if pl := b.Pool(); pl[0].Text != "b" || pl[0].Duration != 30 {
		t.Fatalf("failed edit must not change the task: %+v", pl[0])
	}
}

func TestDuplicateTask(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Text: "a", Duration: 30, Completed: true}, task.Task{ID: 201, Text: "h", Habit: true, Duration: 20})
	var s Session
	mustPickPool(t, b, &s, 201)
	occ := b.Drop(&s, SlotTarget(week.Monday, week.Basics)).Task

	cp, err := b.DuplicateTask(1)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if cp.ID == 1 || cp.Text != "a" || cp.Completed {
		t.Fatalf("unexpected copy %+v", cp)
	}

	hcp, err := b.DuplicateTask(occ.ID)
	if err != nil {
		t.Fatalf("duplicate occurrence: %v", err)
	}
	if hcp.SourceID != nil || !hcp.IsTemplate() {
		t.Fatalf("copy of an occurrence must be a template: %+v", hcp)
	}
	if len(b.Pool()) != 4 {
		t.Fatalf("pool size = %d, want 4", len(b.Pool()))
	}
	if _, err := b.DuplicateTask(12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResetWeek(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Duration: 30}, task.Task{ID: 201, Habit: true, Duration: 20})
	var s Session
	mustPickPool(t, b, &s, 1)
	b.Drop(&s, SlotTarget(week.Monday, week.Work))
	mustPickPool(t, b, &s, 201)
	b.Drop(&s, SlotTarget(week.Monday, week.Basics))

	if n := b.ResetWeek(); n != 1 {
		t.Fatalf("returned %d tasks, want 1", n)
	}
	if b.CurrentWeek().Count() != 0 {
		t.Fatal("week must be empty")
	}
	if err := b.CurrentWeek().Validate(); err != nil {
		t.Fatalf("reset week lost its shape: %v", err)
	}
	if len(b.Pool()) != 2 {
		t.Fatalf("pool = %+v", b.Pool())
	}
}

func TestClearAllKeepsHabits(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Duration: 30}, task.Task{ID: 201, Habit: true, Duration: 20})
	var s Session
	mustPickPool(t, b, &s, 201)
	b.Drop(&s, SlotTarget(week.Monday, week.Basics))
	b.NavigateWeek(3)

	b.ClearAll()

	if b.Offset() != 0 {
		t.Fatalf("offset = %d", b.Offset())
	}
	if pl := b.Pool(); len(pl) != 1 || pl[0].ID != 201 {
		t.Fatalf("pool = %+v", pl)
	}
	weeks := b.Weeks()
	if len(weeks) != 1 || weeks["2026-W43"].Count() != 0 {
		t.Fatalf("weeks = %v", weeks)
	}
}

func TestNavigateWeekCreatesWeek(t *testing.T) {
	b := newBoard()
	if b.CurrentKey() != "2026-W43" {
		t.Fatalf("current key = %s", b.CurrentKey())
	}
	var seen Change
	b.Subscribe(func(c Change) { seen |= c })

	if k := b.NavigateWeek(-1); k != "2026-W42" {
		t.Fatalf("previous week = %s", k)
	}
	if b.WeekCount() != 2 {
		t.Fatalf("expected 2 weeks, got %d", b.WeekCount())
	}
	if !seen.Has(ChangeView) {
		t.Fatal("navigation must notify observers")
	}
	if k := b.SetOffset(0); k != "2026-W43" || len(b.Weeks()) != 2 {
		t.Fatalf("SetOffset(0) = %s with %d weeks", k, len(b.Weeks()))
	}
	if b.RangeLabel() != "19.10 - 25.10" {
		t.Fatalf("range = %s", b.RangeLabel())
	}
}

func TestApplyPlan(t *testing.T) {
	b := newBoard(
		task.Task{ID: 1, Duration: 60},
		task.Task{ID: 2, Duration: 60},
		task.Task{ID: 3, Duration: 60},
		task.Task{ID: 4, Duration: 60},
		task.Task{ID: 201, Habit: true, Duration: 20},
	)
	before := b.TotalTasks()

	res := b.ApplyPlan([]planner.Assignment{
		{ID: 1, Day: week.Monday, Category: week.Goal},
		{ID: 2, Day: week.Monday, Category: week.Goal},
		{ID: 3, Day: "FUNDAY", Category: week.Work},
		{ID: 1, Day: week.Tuesday, Category: week.Work},
		{ID: 201, Day: week.Monday, Category: week.Basics},
		{ID: 99, Day: week.Monday, Category: week.Work},
		{ID: 4, Day: week.Friday, Category: week.Leisure},
	})

	if len(res.Placed) != 2 || res.Placed[0] != 1 || res.Placed[1] != 4 {
		t.Fatalf("placed = %v", res.Placed)
	}
	wantReasons := []string{SkipSlotFull, SkipUnknownSlot, SkipDuplicate, SkipHabit, SkipNotInBacklog}
	if len(res.Skipped) != len(wantReasons) {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	for i, want := range wantReasons {
		if res.Skipped[i].Reason != want {
			t.Errorf("skip %d reason = %q, want %q", i, res.Skipped[i].Reason, want)
		}
	}

	w := b.CurrentWeek()
	if got := slotIDs(w, week.Monday, week.Goal); len(got) != 1 || got[0] != 1 {
		t.Fatalf("goal = %v", got)
	}
	if got := slotIDs(w, week.Friday, week.Leisure); len(got) != 1 || got[0] != 4 {
		t.Fatalf("friday leisure = %v", got)
	}
	var left []task.ID
	for _, tk := range b.Pool() {
		left = append(left, tk.ID)
	}
	if len(left) != 3 || left[0] != 2 || left[1] != 3 || left[2] != 201 {
		t.Fatalf("pool = %v", left)
	}
	if b.TotalTasks() != before {
		t.Fatalf("plan import must not change the task count: %d -> %d", before, b.TotalTasks())
	}
}

func TestOrganize(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Text: "a", Duration: 60, Urgent: true, Important: true}, task.Task{ID: 201, Habit: true, Duration: 20})

	p := &stubPlanner{plan: []planner.Assignment{{ID: 1, Day: week.Wednesday, Category: week.Focus}}}
	res, err := b.Organize(context.Background(), p)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if len(p.req.Tasks) != 1 || p.req.Tasks[0].ID != 1 || p.req.Capacity != DefaultDailyCapacity {
		t.Fatalf("request = %+v", p.req)
	}
	if res.WeekKey != "2026-W43" || len(res.Placed) != 1 {
		t.Fatalf("result = %+v", res)
	}

	if _, err := b.Organize(context.Background(), p); !errors.Is(err, ErrEmptyBacklog) {
		t.Fatalf("expected ErrEmptyBacklog, got %v", err)
	}
}

func TestOrganizeFailureLeavesState(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Duration: 60})
	boom := errors.New("boom")
	if _, err := b.Organize(context.Background(), &stubPlanner{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped planner error, got %v", err)
	}
	if len(b.Pool()) != 1 || b.CurrentWeek().Count() != 0 {
		t.Fatal("failed organize must not mutate")
	}
	res, err := b.Organize(context.Background(), &stubPlanner{})
	if err != nil || len(res.Placed) != 0 || len(b.Pool()) != 1 {
		t.Fatalf("empty plan = %+v %v", res, err)
	}
}

func TestOrganizeAppliesToRequestedWeek(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Duration: 60})
	p := &stubPlanner{plan: []planner.Assignment{{ID: 1, Day: week.Monday, Category: week.Work}}}
	navigating := plannerFunc(func(ctx context.Context, req planner.Request) ([]planner.Assignment, error) {
		b.NavigateWeek(1)
		return p.Plan(ctx, req)
	})

	res, err := b.Organize(context.Background(), navigating)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if res.WeekKey != "2026-W43" {
		t.Fatalf("week = %s", res.WeekKey)
	}
	if b.Weeks()["2026-W43"].Count() != 1 || b.CurrentWeek().Count() != 0 {
		t.Fatal("plan must land in the week it was requested for")
	}
}

type plannerFunc func(context.Context, planner.Request) ([]planner.Assignment, error)

func (f plannerFunc) Plan(ctx context.Context, req planner.Request) ([]planner.Assignment, error) {
	return f(ctx, req)
}

func TestDailyLoad(t *testing.T) {
	b := newBoard(task.Task{ID: 1, Duration: 240}, task.Task{ID: 2, Duration: 600})
	var s Session
	mustPickPool(t, b, &s, 1)
	b.Drop(&s, SlotTarget(week.Monday, week.Work))
	mustPickPool(t, b, &s, 2)
	b.Drop(&s, SlotTarget(week.Tuesday, week.Work))

	load := b.DailyLoad()
	if load[0].Day != week.Monday || load[0].Minutes != 240 || load[0].Percent != 50 {
		t.Fatalf("monday = %+v", load[0])
	}
	if load[1].Percent != 100 || load[1].Color != "#aa0909" {
		t.Fatalf("tuesday = %+v", load[1])
	}
	if load[6].Minutes != 0 || load[6].Color != "#25f425" {
		t.Fatalf("sunday = %+v", load[6])
	}
}

func TestLoadColorClamps(t *testing.T) {
	if LoadColor(-5) != LoadColor(0) || LoadColor(250) != LoadColor(100) {
		t.Fatal("colour must clamp to the 0-100 range")
	}
}
