package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"weekplan/internal/task"
)

// formState is the add/edit editor. An edit form has no kind field since a
// task keeps the kind it was created with.
type formState struct {
	editID   task.ID
	text     string
	kind     string
	duration string
	index    int
}

const kindField = "kind (asap/soon/pending/leisure/basics)"

func (fs formState) fields() []string {
	if fs.editID != 0 {
		return []string{"text", "duration (minutes)"}
	}
	return []string{"text", kindField, "duration (minutes)"}
}

func (fs formState) currentLabel() string {
	return fs.fields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.currentLabel() {
	case "text":
		return fs.text
	case kindField:
		return fs.kind
	default:
		return fs.duration
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.currentLabel() {
	case "text":
		fs.text = v
	case kindField:
		fs.kind = v
	default:
		fs.duration = v
	}
}

func (fs formState) values() []string {
	if fs.editID != 0 {
		return []string{fs.text, fs.duration}
	}
	return []string{fs.text, fs.kind, fs.duration}
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	m.form = &formState{kind: string(task.KindASAP), duration: strconv.Itoa(task.DefaultDuration)}
	m.mode = modeForm
	return m.focusField(), nil
}

func (m Model) startEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.form = &formState{editID: t.ID, text: t.Text, duration: strconv.Itoa(t.Duration)}
	m.mode = modeForm
	return m.focusField(), nil
}

func (m Model) focusField() Model {
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
	m.input.Focus()
	m.status = m.formPrompt()
	return m
}

func (m Model) updateFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeBoard
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+1, len(m.form.fields()))
		return m.focusField(), nil
	case "shift+tab", "up":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index-1, len(m.form.fields()))
		return m.focusField(), nil
	case "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(m.form.fields())-1 {
			return m.saveForm()
		}
		m.form.index++
		return m.focusField(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	duration, err := parseDuration(m.form.duration)
	if err != nil {
		m.status = fmt.Sprintf("duration invalid: %v", err)
		return m, nil
	}
	if m.form.editID != 0 {
		if err := m.board.EditTask(m.form.editID, m.form.text, duration); err != nil {
			m.status = fmt.Sprintf("edit failed: %v", err)
			return m, nil
		}
		m.status = "Task updated"
	} else {
		kind, err := task.ParseKind(m.form.kind)
		if err != nil {
			m.status = fmt.Sprintf("kind invalid: %q", m.form.kind)
			return m, nil
		}
		t, err := m.board.AddTask(m.form.text, kind, duration)
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Added %q to the pool", t.Text)
	}
	m.form = nil
	m.mode = modeBoard
	m.input.SetValue("")
	m.input.Blur()
	return m, nil
}

// parseDuration reads minutes; blank means the default duration.
func parseDuration(v string) (int, error) {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "m"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number of minutes", v)
	}
	return n, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	verb := "New task"
	if m.form.editID != 0 {
		verb = "Editing task"
	}
	return fmt.Sprintf("%s: %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		verb, m.form.currentLabel(), m.form.index+1, len(m.form.fields()))
}

func (m Model) renderForm() string {
	fields := m.form.fields()
	values := m.form.values()
	title := "New task"
	if m.form.editID != 0 {
		title = fmt.Sprintf("Edit task %d", m.form.editID)
	}
	var b strings.Builder
	b.WriteString(m.styles.overlayHeader.Render(title))
	b.WriteString("\n\n")
	for i, name := range fields {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-18s : %s\n", prefix, strings.SplitN(name, " ", 2)[0], val))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return m.styles.overlay.Render(b.String())
}
