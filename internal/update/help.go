package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/dayloop/internal/views"
)

type helpKeyMap struct {
	global []key.Binding
	view   []key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	return append(append([]key.Binding(nil), k.global...), k.view...)
}

func (k helpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.global, k.view}
}

func binding(keys, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, desc))
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	km := m.helpKeys()
	plain := make([]string, 0, len(km.view))
	for _, b := range km.view {
		plain = append(plain, fmt.Sprintf("- %s: %s", b.Help().Key, b.Help().Desc))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView:    m.helpModel.FullHelpView(km.FullHelp()),
	})
}

func (m Model) helpKeys() helpKeyMap {
	return helpKeyMap{
		global: []key.Binding{
			binding(m.Keys.Today, "today"),
			binding(m.Keys.Workout, "workout"),
			binding(m.Keys.History, "history"),
			binding(m.Keys.Presets, "presets"),
			binding("/", "command palette"),
			binding(m.Keys.Help, "toggle help"),
			binding(m.Keys.Quit, "quit"),
		},
		view: viewKeys(m.CurrentView),
	}
}

func viewKeys(v View) []key.Binding {
	switch v {
	case ViewToday:
		return []key.Binding{
			binding("j/k", "move selection"),
			binding("x", "toggle task or non-negotiable"),
			binding("D", "delete task"),
			binding("+/-", "add/remove a glass of water"),
		}
	case ViewWorkout:
		return []key.Binding{
			binding("space", "start/pause timer"),
			binding("r", "reset workout"),
			binding("n/p", "next/previous exercise"),
		}
	case ViewHistory:
		return []key.Binding{
			binding("j/k", "move through days"),
			binding("g", "reload history"),
		}
	case ViewPresets:
		return []key.Binding{
			binding("j/k", "move selection"),
			binding("enter", "load into workout"),
			binding("c", "copy to a custom preset"),
			binding("D", "delete custom preset"),
		}
	default:
		return nil
	}
}
