package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"weekplan/internal/board"
	"weekplan/internal/task"
	"weekplan/internal/week"
)

const (
	poolWidth   = 30
	minColWidth = 14
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderPool(), " ", m.renderGrid()))
	b.WriteString("\n")

	if m.mode == modeForm && m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}

	status := m.styles.status
	if strings.Contains(m.status, "failed") || strings.HasPrefix(m.status, "Cannot") {
		status = m.styles.errStatus
	}
	b.WriteString(status.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	offset := m.board.Offset()
	when := "this week"
	switch {
	case offset == 1:
		when = "next week"
	case offset == -1:
		when = "last week"
	case offset != 0:
		when = fmt.Sprintf("%+d weeks", offset)
	}
	title := fmt.Sprintf("Weekplan  %s  %s  (%s)", m.board.CurrentKey(), m.board.RangeLabel(), when)
	if m.organizing {
		title += "  organizing..."
	}
	if m.ws.Unsaved() {
		title += "  *unsaved"
	}
	return m.styles.header.Render(title)
}

func (m Model) renderPool() string {
	dragged := m.draggedID()
	rows := m.poolRows()
	cur := clampCursor(m.poolCursor, len(rows))
	inner := poolWidth - 2

	var lines []string
	section := ""
	for i, r := range rows {
		if r.section != section {
			if section != "" {
				lines = append(lines, "")
			}
			section = r.section
			lines = append(lines, m.styles.section.Render(section))
		}
		line := m.taskLine(r.task, inner-2, dragged)
		if m.focus == focusPool && m.mode != modeMove && i == cur {
			line = m.styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if len(rows) == 0 {
		lines = append(lines, m.styles.dim.Render("Backlog is empty"))
	}
	if m.mode == modeMove && m.focus == focusPool {
		lines = append(lines, "", m.styles.target.Render("drop here to return to the pool"))
	}

	panel := m.styles.panel
	if m.focus == focusPool {
		panel = m.styles.panelFocused
	}
	return panel.Width(inner).Render(strings.Join(lines, "\n"))
}

func (m Model) colWidth() int {
	return max((m.width-poolWidth-4)/len(week.Days), minColWidth)
}

func (m Model) renderGrid() string {
	w := m.board.CurrentWeek()
	dates := m.board.Dates()
	loads := m.board.DailyLoad()
	showToday := m.board.Offset() == 0
	today := m.board.Today()
	dragged := m.draggedID()
	width := m.colWidth()

	cols := make([]string, 0, len(week.Days))
	for di, d := range week.Days {
		var lines []string
		head := fmt.Sprintf("%s %s", dayName(d), dates[di].Format("02.01"))
		if showToday && d == today {
			head = m.styles.today.Render(head)
		}
		lines = append(lines, head, m.renderLoad(loads[di]))

		for ci, c := range week.Categories {
			label := m.cfg.Labels.Label(c)
			if c.Capacity() > 0 {
				label = fmt.Sprintf("%s %d/%d", label, len(w.Slot(d, c)), c.Capacity())
			}
			here := m.focus == focusGrid && m.grid.day == di && m.grid.cat == ci
			if here && m.mode == modeMove {
				lines = append(lines, m.styles.target.Render("» "+label))
			} else {
				lines = append(lines, m.styles.category.Render(label))
			}

			slot := w.Slot(d, c)
			for ti, t := range slot {
				line := m.taskLine(t, width-2, dragged)
				if here && m.mode != modeMove && ti == m.grid.item {
					line = m.styles.selected.Render(line)
				}
				lines = append(lines, " "+line)
			}
			if len(slot) == 0 {
				lines = append(lines, m.styles.dim.Render(" ·"))
			}
		}
		cols = append(cols, lipgloss.NewStyle().Width(width).PaddingRight(1).Render(strings.Join(lines, "\n")))
	}

	panel := m.styles.panel
	if m.focus == focusGrid {
		panel = m.styles.panelFocused
	}
	return panel.Render(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

func (m Model) renderLoad(l board.DayLoad) string {
	return loadStyle(l.Color).Render(fmt.Sprintf("%dm %3.0f%%", l.Minutes, l.Percent))
}

// taskLine renders one task truncated to width. Occurrences carry a loop
// marker and templates a diamond.
func (m Model) taskLine(t task.Task, width int, dragged task.ID) string {
	glyph := "•"
	switch {
	case t.Completed:
		glyph = "✓"
	case t.IsOccurrence():
		glyph = "↻"
	case t.IsTemplate():
		glyph = "◆"
	}
	text := lipgloss.NewStyle().MaxWidth(max(width, 1)).Render(fmt.Sprintf("%s %s %dm", glyph, t.Text, t.Duration))
	switch {
	case t.ID == dragged:
		return m.styles.dragged.Render(text)
	case t.Completed:
		return m.styles.done.Render(text)
	case t.IsOccurrence():
		return m.styles.occurrence.Render(text)
	default:
		return text
	}
}

func (m Model) draggedID() task.ID {
	if src, ok := m.session.Source(); ok && m.session.Dragging() {
		return src.Task.ID
	}
	return 0
}

func (m Model) renderHelp() string {
	bindings := m.keys.shortHelp()
	switch {
	case m.mode == modeMove:
		bindings = m.keys.moveHelp()
	case m.mode == modeConfirm:
		bindings = []key.Binding{m.keys.Yes, m.keys.No}
	case m.mode == modeForm:
		return m.styles.help.Render("enter next/save • tab move • esc cancel")
	case m.showHelp:
		bindings = m.keys.fullHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(parts, " • "))
}

func dayName(d week.Day) string {
	s := string(d)
	if len(s) < 3 {
		return s
	}
	return s[:3]
}
