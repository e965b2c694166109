package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NewNode   key.Binding
	EditTitle key.Binding
	EditBody  key.Binding
	Collapse  key.Binding
	Expand    key.Binding
	Delete    key.Binding
	Next      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
	Fit       key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Theme     key.Binding
	Copy      key.Binding
	Paste     key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NewNode:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new idea")),
		EditTitle: key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit title")),
		EditBody:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit notes")),
		Collapse:  key.NewBinding(key.WithKeys(" ", "c"), key.WithHelp("space", "collapse")),
		Expand:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "expand")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next idea")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
		Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit board")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Left:      key.NewBinding(key.WithKeys("left", "h")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←↑↓→", "pan")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Paste:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewNode, k.Expand, k.EditTitle, k.Delete, k.Right, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewNode, k.EditTitle, k.EditBody, k.Collapse, k.Expand, k.Delete},
		{k.Next, k.ZoomIn, k.ZoomOut, k.Reset, k.Fit, k.Right},
		{k.Theme, k.Copy, k.Paste, k.Dismiss, k.Help, k.Quit},
	}
}
