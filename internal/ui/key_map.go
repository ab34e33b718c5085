package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of every view. List navigation and filtering come from the bubbles list itself.
type keyMap struct {
	proceed key.Binding
	confirm key.Binding
	cancel  key.Binding
	review  key.Binding
	abort   key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		proceed: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "import")),
		confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "import now")),
		cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "back to review")),
		review:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "review again")),
		abort:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "stop")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forView returns the bindings shown in the help line of v.
func (k keyMap) forView(v ViewState, dryRun bool) []key.Binding {
	switch v {
	case ReviewView:
		return []key.Binding{k.proceed, k.quit}
	case ConfirmView:
		return []key.Binding{k.confirm, k.cancel, k.quit}
	case ImportView:
		return []key.Binding{k.abort}
	case ResultView:
		if dryRun {
			return []key.Binding{k.quit}
		}
		return []key.Binding{k.review, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
