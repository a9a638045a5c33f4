package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings shared by every screen.
type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Enter   key.Binding
	Tab     key.Binding
	Up      key.Binding
	Down    key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Search  key.Binding
	Manage  key.Binding
	Refresh key.Binding
	Sidebar key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q")),
		Back:    key.NewBinding(key.WithKeys("esc")),
		Enter:   key.NewBinding(key.WithKeys("enter")),
		Tab:     key.NewBinding(key.WithKeys("tab")),
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		New:     key.NewBinding(key.WithKeys("n")),
		Edit:    key.NewBinding(key.WithKeys("e")),
		Delete:  key.NewBinding(key.WithKeys("d")),
		Search:  key.NewBinding(key.WithKeys("/")),
		Manage:  key.NewBinding(key.WithKeys("m")),
		Refresh: key.NewBinding(key.WithKeys("r")),
		Sidebar: key.NewBinding(key.WithKeys("ctrl+b")),
	}
}
