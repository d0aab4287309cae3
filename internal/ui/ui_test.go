package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"weekplan/internal/config"
	"weekplan/internal/planner"
	"weekplan/internal/storage"
	"weekplan/internal/task"
	"weekplan/internal/week"
	"weekplan/internal/workspace"
)

var monday = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type plannerFunc func(context.Context, planner.Request) ([]planner.Assignment, error)

func (f plannerFunc) Plan(ctx context.Context, req planner.Request) ([]planner.Assignment, error) {
	return f(ctx, req)
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, p planner.Planner) Model {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.LoadOrCreate(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := storage.Open(filepath.Join(dir, "weekplan.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ws, err := workspace.Load(store, workspace.Options{
		Now:       func() time.Time { return monday },
		SaveDelay: time.Hour,
	})
	if err != nil {
		t.Fatalf("load workspace: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return New(ws, cfg, p)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func inPool(m Model, id task.ID) bool {
	for _, t := range m.board.Pool() {
		if t.ID == id {
			return true
		}
	}
	return false
}

func TestPickAndDropIntoGoal(t *testing.T) {
	m := newModel(t, nil)
	rows := m.poolRows()
	if len(rows) == 0 {
		t.Fatal("seeded pool is empty")
	}
	id := rows[0].task.ID

	m = press(t, m, enter)
	if m.mode != modeMove || m.focus != focusGrid {
		t.Fatalf("mode = %v focus = %v after pick", m.mode, m.focus)
	}
	m = press(t, m, enter)
	if m.mode != modeBoard {
		t.Fatalf("mode = %v after drop", m.mode)
	}
	goal := m.board.CurrentWeek().Slot(week.Monday, week.Goal)
	if len(goal) != 1 || goal[0].ID != id {
		t.Fatalf("monday goal = %+v", goal)
	}
	if inPool(m, id) {
		t.Fatal("task still in pool after drop")
	}
}

func TestSecondGoalIsRejected(t *testing.T) {
	m := newModel(t, nil)
	m = press(t, m, enter, enter)

	m = press(t, m, tab)
	id := m.poolRows()[0].task.ID
	m = press(t, m, enter, enter)

	if !strings.Contains(m.status, "goal slot already holds a task") {
		t.Fatalf("status = %q", m.status)
	}
	if !inPool(m, id) {
		t.Fatal("rejected task left the pool")
	}
	if n := len(m.board.CurrentWeek().Slot(week.Monday, week.Goal)); n != 1 {
		t.Fatalf("goal holds %d tasks", n)
	}
}

func TestEscCancelsMove(t *testing.T) {
	m := newModel(t, nil)
	before := len(m.board.Pool())
	m = press(t, m, enter, runes("j"), runes("l"), esc)
	if m.mode != modeBoard || m.session.Dragging() {
		t.Fatalf("mode = %v dragging = %v", m.mode, m.session.Dragging())
	}
	if len(m.board.Pool()) != before || m.board.CurrentWeek().Count() != 0 {
		t.Fatal("cancelled move changed the state")
	}
}

func TestMoveBetweenSlots(t *testing.T) {
	m := newModel(t, nil)
	id := m.poolRows()[0].task.ID
	// Monday goal, then pick it again and carry it to Tuesday work.
	m = press(t, m, enter, enter)
	m = press(t, m, enter, runes("l"), runes("j"), runes("j"), enter)

	w := m.board.CurrentWeek()
	if len(w.Slot(week.Monday, week.Goal)) != 0 {
		t.Fatal("source slot not emptied")
	}
	work := w.Slot(week.Tuesday, week.Work)
	if len(work) != 1 || work[0].ID != id {
		t.Fatalf("tuesday work = %+v", work)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	m := newModel(t, nil)
	id := m.poolRows()[0].task.ID

	m = press(t, m, runes("x"))
	if m.mode != modeConfirm {
		t.Fatalf("mode = %v", m.mode)
	}
	m = press(t, m, runes("n"))
	if !inPool(m, id) {
		t.Fatal("declined delete removed the task")
	}

	m = press(t, m, runes("x"), runes("y"))
	if inPool(m, id) {
		t.Fatal("task survived delete")
	}
}

func TestAddForm(t *testing.T) {
	m := newModel(t, nil)
	before := len(m.board.Pool())

	m = press(t, m, runes("a"))
	if m.mode != modeForm {
		t.Fatalf("mode = %v", m.mode)
	}
	m = press(t, m, runes("Read a book"), enter)
	m.input.SetValue("leisure")
	m = press(t, m, enter)
	m.input.SetValue("45")
	m = press(t, m, enter)

	if m.mode != modeBoard {
		t.Fatalf("form still open: %q", m.status)
	}
	tasks := m.board.Pool()
	if len(tasks) != before+1 {
		t.Fatalf("pool = %d, want %d", len(tasks), before+1)
	}
	added := tasks[len(tasks)-1]
	if added.Text != "Read a book" || added.Duration != 45 || added.Kind() != task.KindLeisure {
		t.Fatalf("added = %+v", added)
	}
}

func TestAddFormRejectsBadDuration(t *testing.T) {
	m := newModel(t, nil)
	before := len(m.board.Pool())
	m = press(t, m, runes("a"), runes("Stretch"), enter, enter)
	m.input.SetValue("soon")
	m = press(t, m, enter)
	if m.mode != modeForm || !strings.Contains(m.status, "duration invalid") {
		t.Fatalf("mode = %v status = %q", m.mode, m.status)
	}
	m = press(t, m, esc)
	if m.mode != modeBoard || len(m.board.Pool()) != before {
		t.Fatal("cancelled form changed the pool")
	}
}

func TestToggleAndReset(t *testing.T) {
	m := newModel(t, nil)
	id := m.poolRows()[0].task.ID
	m = press(t, m, enter, enter, space)

	slot := m.board.CurrentWeek().Slot(week.Monday, week.Goal)
	if len(slot) != 1 || !slot[0].Completed {
		t.Fatalf("goal = %+v", slot)
	}

	m = press(t, m, runes("R"), runes("n"))
	if m.board.CurrentWeek().Count() != 1 {
		t.Fatal("declined reset cleared the week")
	}
	m = press(t, m, runes("R"), runes("y"))
	if m.board.CurrentWeek().Count() != 0 || !inPool(m, id) {
		t.Fatal("reset did not return the task to the pool")
	}
}

func TestWeekNavigation(t *testing.T) {
	m := newModel(t, nil)
	m = press(t, m, runes("]"))
	if m.board.CurrentKey() != "2026-W44" {
		t.Fatalf("key = %s", m.board.CurrentKey())
	}
	m = press(t, m, runes("["), runes("["))
	if m.board.CurrentKey() != "2026-W42" {
		t.Fatalf("key = %s", m.board.CurrentKey())
	}
	m = press(t, m, runes("t"))
	if m.board.Offset() != 0 {
		t.Fatalf("offset = %d", m.board.Offset())
	}
}

func TestOrganize(t *testing.T) {
	var target task.ID
	p := plannerFunc(func(_ context.Context, req planner.Request) ([]planner.Assignment, error) {
		target = req.Tasks[0].ID
		return []planner.Assignment{{ID: target, Day: week.Wednesday, Category: week.Focus}}, nil
	})
	m := newModel(t, p)

	next, cmd := m.Update(runes("o"))
	m = next.(Model)
	if cmd == nil || !m.organizing {
		t.Fatal("organize did not start")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)

	if m.organizing || !strings.Contains(m.status, "Placed 1") {
		t.Fatalf("status = %q", m.status)
	}
	focus := m.board.CurrentWeek().Slot(week.Wednesday, week.Focus)
	if len(focus) != 1 || focus[0].ID != target {
		t.Fatalf("wednesday focus = %+v", focus)
	}
}

func TestOrganizeFailureKeepsState(t *testing.T) {
	p := plannerFunc(func(context.Context, planner.Request) ([]planner.Assignment, error) {
		return nil, errors.New("model unavailable")
	})
	m := newModel(t, p)
	before := len(m.board.Pool())

	next, cmd := m.Update(runes("o"))
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)
	if !strings.Contains(m.status, "model unavailable") {
		t.Fatalf("status = %q", m.status)
	}
	if len(m.board.Pool()) != before || m.board.CurrentWeek().Count() != 0 {
		t.Fatal("failed organize changed the state")
	}
}

func TestOrganizeWithoutPlanner(t *testing.T) {
	m := newModel(t, nil)
	next, cmd := m.Update(runes("o"))
	if cmd != nil {
		t.Fatal("expected no command without a planner")
	}
	if !strings.Contains(next.(Model).status, "No planner configured") {
		t.Fatalf("status = %q", next.(Model).status)
	}
}

func TestViewRendersWeek(t *testing.T) {
	m := newModel(t, nil)
	out := m.View()
	for _, want := range []string{"2026-W43", "19.10 - 25.10", "MON 19.10", "SUN 25.10", "Goal 0/1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestHeaderShowsUnsavedChanges(t *testing.T) {
	m := newModel(t, nil)
	if strings.Contains(m.renderHeader(), "unsaved") {
		t.Fatal("fresh planner must not be marked unsaved")
	}
	m = press(t, m, space)
	if !strings.Contains(m.renderHeader(), "*unsaved") {
		t.Fatalf("header after toggle: %q", m.renderHeader())
	}
	if err := m.ws.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if strings.Contains(m.renderHeader(), "unsaved") {
		t.Fatal("flushed planner still marked unsaved")
	}
}

func TestClampCursor(t *testing.T) {
	tests := []struct {
		cur, n, want int
	}{
		{-1, 3, 0},
		{5, 3, 2},
		{1, 3, 1},
		{4, 0, 0},
	}
	for _, tt := range tests {
		if got := clampCursor(tt.cur, tt.n); got != tt.want {
			t.Fatalf("clampCursor(%d, %d) = %d, want %d", tt.cur, tt.n, got, tt.want)
		}
	}
	if got := wrapIndex(-1, 3); got != 2 {
		t.Fatalf("wrapIndex(-1, 3) = %d", got)
	}
}
