package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"weekplan/internal/config"
)

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Focus     key.Binding
	Pick      key.Binding
	Trash     key.Binding
	ToPool    key.Binding
	Cancel    key.Binding
	Add       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Duplicate key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	ThisWeek  key.Binding
	Organize  key.Binding
	ResetWeek key.Binding
	Theme     key.Binding
	Yes       key.Binding
	No        key.Binding
}

func bind(desc string, keys ...string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keyLabel(keys[0]), desc),
	)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:      bind("quit", k.Quit, "ctrl+c"),
		Help:      bind("help", k.Help),
		Up:        bind("up", k.Up, "up"),
		Down:      bind("down", k.Down, "down"),
		Left:      bind("prev day", k.Left, "left"),
		Right:     bind("next day", k.Right, "right"),
		Focus:     bind("pool/grid", k.Focus),
		Pick:      bind("pick/drop", k.Pick),
		Trash:     bind("delete", k.Trash),
		ToPool:    bind("drop in pool", k.ToPool),
		Cancel:    bind("cancel", k.Cancel),
		Add:       bind("add", k.Add),
		Edit:      bind("edit", k.Edit),
		Toggle:    bind("done", k.Toggle),
		Duplicate: bind("duplicate", k.Duplicate),
		PrevWeek:  bind("prev week", k.PrevWeek),
		NextWeek:  bind("next week", k.NextWeek),
		ThisWeek:  bind("this week", k.ThisWeek),
		Organize:  bind("organize", k.Organize),
		ResetWeek: bind("reset week", k.ResetWeek),
		Theme:     bind("theme", k.Theme),
		Yes:       bind("yes", "y", "Y"),
		No:        bind("no", "n", "N", k.Cancel),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Focus, k.Add, k.Toggle, k.Organize, k.Help, k.Quit}
}

func (k keyMap) fullHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.Focus,
		k.Pick, k.ToPool, k.Trash, k.Cancel,
		k.Add, k.Edit, k.Toggle, k.Duplicate,
		k.PrevWeek, k.NextWeek, k.ThisWeek,
		k.Organize, k.ResetWeek, k.Theme, k.Quit,
	}
}

func (k keyMap) moveHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Pick, k.ToPool, k.Trash, k.PrevWeek, k.NextWeek, k.Cancel}
}
