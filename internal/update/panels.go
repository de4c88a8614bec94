package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title+": "+n.Body)
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.clock.Now(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

// syncBubbleData copies model state into the bubbles components before
// rendering.
func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Presets.Items))
	for _, p := range m.Presets.Items {
		items = append(items, listItem{title: strings.TrimSpace(p.Icon + " " + p.Name), description: presetDescription(p)})
	}
	m.presetList.SetItems(items)
	if len(items) > 0 {
		m.presetList.Select(m.Presets.Cursor)
	}

	rows := m.historyRows()
	m.historyTable.SetRows(rows)
	if len(rows) > 0 && m.History.Cursor < len(rows) {
		m.historyTable.SetCursor(m.History.Cursor)
	}
	if m.CurrentView == ViewHistory && len(rows) > 0 && m.History.Cursor < len(rows) {
		m.detailViewport.SetContent(views.RenderMarkdown(views.HistoryMarkdown(m.History.Records[m.History.Cursor])))
	} else {
		m.detailViewport.SetContent("")
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	_ = m.workoutProgress.SetPercent(m.phaseProgress())
}
