package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause   key.Binding
	Next        key.Binding
	Previous    key.Binding
	QuitSpotify key.Binding
	Artwork     key.Binding
	Help        key.Binding
	Exit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "play/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("b", "left"),
			key.WithHelp("b", "previous"),
		),
		QuitSpotify: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "quit spotify"),
		),
		Artwork: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle art"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Exit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "exit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Exit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Next, k.Previous},
		{k.QuitSpotify, k.Artwork},
		{k.Help, k.Exit},
	}
}
