package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Record key.Binding
	Play   key.Binding
	Clear  key.Binding
	Submit key.Binding
	Next   key.Binding
	Prev   key.Binding
	Login  key.Binding
	Signup key.Binding
	Change key.Binding
	Logout key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Record: key.NewBinding(key.WithKeys("ctrl+r", " ", "space"), key.WithHelp("space/^r", "record")),
	Play:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("^p", "play")),
	Clear:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^l", "clear")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Login:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "log in")),
	Signup: key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "sign up")),
	Change: key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "change rhythm")),
	Logout: key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4", "log out")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Play, k.Clear, k.Submit, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Play, k.Clear, k.Submit},
		{k.Next, k.Prev},
		{k.Login, k.Signup, k.Change, k.Logout},
		{k.Help, k.Quit},
	}
}
