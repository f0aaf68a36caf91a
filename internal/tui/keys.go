package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	First       key.Binding
	Last        key.Binding
	Sort        key.Binding
	Filter      key.Binding
	RatingFloor key.Binding
	Rate        key.Binding
	ClearRating key.Binding
	Slideshow   key.Binding
	List        key.Binding
	Info        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", " ", "n"),
			key.WithHelp("→/l", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/h", "previous"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter by name"),
		),
		RatingFloor: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle min rating"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "rate"),
		),
		ClearRating: key.NewBinding(
			key.WithKeys("0", "x"),
			key.WithHelp("0", "clear rating"),
		),
		Slideshow: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "slideshow"),
		),
		List: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "file list"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Rate, k.Filter, k.Sort, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last},
		{k.Sort, k.Filter, k.RatingFloor},
		{k.Rate, k.ClearRating, k.Slideshow},
		{k.List, k.Info, k.Help, k.Quit},
	}
}
