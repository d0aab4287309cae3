// Package ui is the terminal front end: a backlog panel beside the week grid,
// with keyboard drag and drop between them.
package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"weekplan/internal/board"
	"weekplan/internal/config"
	"weekplan/internal/planner"
	"weekplan/internal/task"
	"weekplan/internal/week"
	"weekplan/internal/workspace"
)

type mode int

const (
	modeBoard mode = iota
	modeMove
	modeForm
	modeConfirm
)

type focus int

const (
	focusPool focus = iota
	focusGrid
)

type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmReset
)

// gridCursor addresses a task inside a slot. item may point past the end of
// an empty slot; nothing is selected then.
type gridCursor struct {
	day  int
	cat  int
	item int
}

type organizeDoneMsg struct {
	result board.PlanResult
	err    error
}

type Model struct {
	ws      *workspace.Workspace
	board   *board.Board
	cfg     config.Config
	keys    keyMap
	styles  styles
	planner planner.Planner

	mode       mode
	focus      focus
	poolCursor int
	grid       gridCursor
	session    board.Session

	form    *formState
	confirm confirmAction
	pending board.Source

	input      textinput.Model
	status     string
	organizing bool
	showHelp   bool
	width      int
}

// New builds the model. p may be nil when no planner is configured.
func New(ws *workspace.Workspace, cfg config.Config, p planner.Planner) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	b := ws.Board()
	m := Model{
		ws:      ws,
		board:   b,
		cfg:     cfg,
		keys:    newKeyMap(cfg.Keys),
		styles:  newStyles(ws.Theme()),
		planner: p,
		input:   ti,
		width:   120,
		status:  fmt.Sprintf("Press '%s' to pick a task, '%s' to add, '%s' for help.", keyLabel(cfg.Keys.Pick), cfg.Keys.Add, cfg.Keys.Help),
	}
	m.grid.day = b.Today().Index()
	if ws.Recovered() != nil {
		m.status = "Stored data was invalid; started from the default planner."
	}
	return m
}

func Run(ws *workspace.Workspace, cfg config.Config, p planner.Planner) error {
	program := tea.NewProgram(New(ws, cfg, p), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg)
		case modeConfirm:
			return m.updateConfirmMode(msg)
		case modeMove:
			return m.updateMoveMode(msg)
		default:
			return m.updateBoardMode(msg)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 10)
	case organizeDoneMsg:
		m.organizing = false
		m.status = describePlan(msg.result, msg.err)
		return m.clampCursors(), nil
	}
	return m, nil
}

func (m Model) updateBoardMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, k.Focus):
		m = m.toggleFocus()
	case key.Matches(msg, k.Up):
		m = m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		m = m.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		m = m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		m = m.moveCursor(1, 0)
	case key.Matches(msg, k.Pick):
		return m.pick()
	case key.Matches(msg, k.Trash):
		src, ok := m.selected()
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.mode = modeConfirm
		m.confirm = confirmDelete
		m.pending = src
		m.status = fmt.Sprintf("Delete %q? y/n", src.Task.Text)
	case key.Matches(msg, k.Add):
		return m.startAdd()
	case key.Matches(msg, k.Edit):
		src, ok := m.selected()
		if !ok {
			m.status = "No task to edit"
			return m, nil
		}
		return m.startEdit(src.Task)
	case key.Matches(msg, k.Toggle):
		src, ok := m.selected()
		if !ok {
			return m, nil
		}
		done, err := m.board.ToggleCompleted(src.Task.ID)
		switch {
		case err != nil:
			m.status = fmt.Sprintf("toggle failed: %v", err)
		case done:
			m.status = fmt.Sprintf("Completed %q", src.Task.Text)
		default:
			m.status = fmt.Sprintf("Reopened %q", src.Task.Text)
		}
	case key.Matches(msg, k.Duplicate):
		src, ok := m.selected()
		if !ok {
			return m, nil
		}
		t, err := m.board.DuplicateTask(src.Task.ID)
		if err != nil {
			m.status = fmt.Sprintf("duplicate failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Copied %q into the pool", t.Text)
	case key.Matches(msg, k.PrevWeek):
		m = m.navigate(-1)
	case key.Matches(msg, k.NextWeek):
		m = m.navigate(1)
	case key.Matches(msg, k.ThisWeek):
		m.board.SetOffset(0)
		m.status = "Back to this week"
		m = m.clampCursors()
	case key.Matches(msg, k.Organize):
		return m.organize()
	case key.Matches(msg, k.ResetWeek):
		m.mode = modeConfirm
		m.confirm = confirmReset
		m.status = fmt.Sprintf("Reset week %s? Plain tasks go back to the pool. y/n", m.board.CurrentKey())
	case key.Matches(msg, k.Theme):
		theme, err := m.ws.ToggleTheme()
		if err != nil {
			m.status = fmt.Sprintf("theme not saved: %v", err)
			return m, nil
		}
		m.styles = newStyles(theme)
		m.status = "Theme: " + theme
	}
	return m, nil
}

// pick starts a keyboard drag of the selected task. The cursor moves to the
// grid so the drop slot can be chosen.
func (m Model) pick() (tea.Model, tea.Cmd) {
	src, ok := m.selected()
	if !ok {
		m.status = "No task selected"
		return m, nil
	}
	if err := m.board.BeginDrag(&m.session, src); err != nil {
		m.status = fmt.Sprintf("pick failed: %v", err)
		return m, nil
	}
	m.mode = modeMove
	if src.Kind == board.FromPool {
		m.focus = focusGrid
	}
	m.status = fmt.Sprintf("Moving %q: choose a slot and press %s, %s for the pool, %s to delete, %s to cancel",
		src.Task.Text, keyLabel(m.cfg.Keys.Pick), m.cfg.Keys.ToPool, m.cfg.Keys.Trash, m.cfg.Keys.Cancel)
	return m, nil
}

func (m Model) updateMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.board.EndDrag(&m.session)
		m.mode = modeBoard
		m.status = "Move cancelled"
	case key.Matches(msg, k.Quit):
		m.board.EndDrag(&m.session)
		return m, tea.Quit
	case key.Matches(msg, k.Pick):
		if m.focus == focusPool {
			return m.drop(board.PoolTarget())
		}
		return m.drop(board.SlotTarget(week.Days[m.grid.day], week.Categories[m.grid.cat]))
	case key.Matches(msg, k.ToPool):
		return m.drop(board.PoolTarget())
	case key.Matches(msg, k.Trash):
		return m.drop(board.TrashTarget())
	case key.Matches(msg, k.Focus):
		m = m.toggleFocus()
	case key.Matches(msg, k.Up):
		m = m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		m = m.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		m = m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		m = m.moveCursor(1, 0)
	case key.Matches(msg, k.PrevWeek):
		m = m.navigate(-1)
	case key.Matches(msg, k.NextWeek):
		m = m.navigate(1)
	}
	return m, nil
}

func (m Model) drop(target board.Target) (tea.Model, tea.Cmd) {
	res := m.board.Drop(&m.session, target)
	m.mode = modeBoard
	m.status = m.describeDrop(res, target)
	return m.clampCursors(), nil
}

func (m Model) describeDrop(res board.Result, target board.Target) string {
	if !res.OK() {
		return fmt.Sprintf("Cannot move %q: %s", res.Task.Text, res.Reason)
	}
	switch res.Outcome {
	case board.OutcomeInstantiated:
		return fmt.Sprintf("Scheduled %q on %s (%s)", res.Task.Text, dayName(target.Day), m.cfg.Labels.Label(target.Category))
	case board.OutcomeMoved:
		return fmt.Sprintf("Moved %q to %s (%s)", res.Task.Text, dayName(target.Day), m.cfg.Labels.Label(target.Category))
	case board.OutcomeReturned:
		return fmt.Sprintf("Returned %q to the pool", res.Task.Text)
	case board.OutcomeDeleted:
		return fmt.Sprintf("Deleted %q", res.Task.Text)
	default:
		return ""
	}
}

func (m Model) updateConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.mode = modeBoard
		if m.confirm == confirmReset {
			n := m.board.ResetWeek()
			m.status = fmt.Sprintf("Week cleared, %d tasks back in the pool", n)
			return m.clampCursors(), nil
		}
		if err := m.board.BeginDrag(&m.session, m.pending); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		return m.drop(board.TrashTarget())
	case key.Matches(msg, m.keys.No):
		m.mode = modeBoard
		m.pending = board.Source{}
		m.status = "Cancelled"
	}
	return m, nil
}

func (m Model) organize() (tea.Model, tea.Cmd) {
	if m.planner == nil {
		m.status = "No planner configured; set [planner] command in the config file"
		return m, nil
	}
	if m.organizing {
		m.status = "Already organizing"
		return m, nil
	}
	m.organizing = true
	m.status = fmt.Sprintf("Organizing the backlog into %s...", m.board.CurrentKey())
	return m, organizeCmd(m.board, m.planner)
}

func organizeCmd(b *board.Board, p planner.Planner) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Organize(context.Background(), p)
		return organizeDoneMsg{result: res, err: err}
	}
}

func describePlan(res board.PlanResult, err error) string {
	switch {
	case errors.Is(err, board.ErrEmptyBacklog):
		return "Nothing to organize: the backlog is empty"
	case err != nil:
		return fmt.Sprintf("organize failed: %v", err)
	case len(res.Placed) == 0 && len(res.Skipped) == 0:
		return "The planner returned no assignments"
	case len(res.Skipped) > 0:
		return fmt.Sprintf("Placed %d tasks in %s, skipped %d (first: %s)",
			len(res.Placed), res.WeekKey, len(res.Skipped), res.Skipped[0].Reason)
	default:
		return fmt.Sprintf("Placed %d tasks in %s", len(res.Placed), res.WeekKey)
	}
}

func (m Model) navigate(delta int) Model {
	wk := m.board.NavigateWeek(delta)
	m.status = fmt.Sprintf("Week %s (%s)", wk, m.board.RangeLabel())
	return m.clampCursors()
}

// selected is the task under the cursor as a drag source.
func (m Model) selected() (board.Source, bool) {
	if m.focus == focusPool {
		rows := m.poolRows()
		if len(rows) == 0 {
			return board.Source{}, false
		}
		return board.PoolSource(rows[clampCursor(m.poolCursor, len(rows))].task), true
	}
	d, c := week.Days[m.grid.day], week.Categories[m.grid.cat]
	slot := m.board.CurrentWeek().Slot(d, c)
	if m.grid.item >= len(slot) {
		return board.Source{}, false
	}
	return board.SlotSource(m.board.CurrentKey(), d, c, slot[m.grid.item]), true
}

func (m Model) toggleFocus() Model {
	if m.focus == focusPool {
		m.focus = focusGrid
	} else {
		m.focus = focusPool
	}
	return m.clampCursors()
}

// moveCursor walks the pool rows or the grid. In the grid, vertical moves
// step through the tasks of a slot before crossing into the next category;
// while moving a task they jump slot to slot.
func (m Model) moveCursor(dx, dy int) Model {
	if m.focus == focusPool {
		if dx > 0 {
			m.focus = focusGrid
			return m.clampCursors()
		}
		m.poolCursor = clampCursor(m.poolCursor+dy, len(m.poolRows()))
		return m
	}

	w := m.board.CurrentWeek()
	slotLen := func(g gridCursor) int {
		return len(w.Slot(week.Days[g.day], week.Categories[g.cat]))
	}
	g := m.grid
	switch {
	case dx < 0 && g.day == 0:
		m.focus = focusPool
		return m
	case dx != 0:
		g.day = clampCursor(g.day+dx, len(week.Days))
		g.item = clampCursor(g.item, slotLen(g))
	case dy > 0:
		if m.mode != modeMove && g.item < slotLen(g)-1 {
			g.item++
		} else if g.cat < len(week.Categories)-1 {
			g.cat++
			g.item = 0
		}
	case dy < 0:
		if m.mode != modeMove && g.item > 0 {
			g.item--
		} else if g.cat > 0 {
			g.cat--
			g.item = 0
			if m.mode != modeMove {
				g.item = clampCursor(slotLen(g)-1, slotLen(g))
			}
		}
	}
	m.grid = g
	return m
}

func (m Model) clampCursors() Model {
	m.poolCursor = clampCursor(m.poolCursor, len(m.poolRows()))
	slot := m.board.CurrentWeek().Slot(week.Days[m.grid.day], week.Categories[m.grid.cat])
	m.grid.item = clampCursor(m.grid.item, len(slot))
	return m
}

// poolRow is one selectable line of the backlog panel.
type poolRow struct {
	section string
	task    task.Task
}

// poolRows lists the quadrants in display order followed by the habits not
// yet scheduled in the viewed week.
func (m Model) poolRows() []poolRow {
	var rows []poolRow
	for _, q := range task.Quadrants() {
		for _, t := range m.board.Quadrant(q) {
			rows = append(rows, poolRow{section: q.String(), task: t})
		}
	}
	for _, t := range m.board.UnscheduledHabits() {
		rows = append(rows, poolRow{section: "BASICS", task: t})
	}
	return rows
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
