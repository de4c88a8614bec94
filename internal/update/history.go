package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/storage"
	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) handleHistoryKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.History.Cursor > 0 {
			m.History.Cursor--
		}
	case "down", "j":
		if m.History.Cursor < len(m.History.Records)-1 {
			m.History.Cursor++
		}
	case "g":
		m.refreshHistory()
		m.Status = StatusBar{Text: fmt.Sprintf("loaded %d day(s) of history", len(m.History.Records)), IsError: false}
	}
	return m
}

func (m *Model) refreshHistory() {
	if m.history == nil {
		return
	}
	records, err := m.history.ListHistory(m.ctx, storage.HistoryListFilter{Limit: historyPageSize})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("load history failed: %v", err), IsError: true}
		return
	}
	m.History.Records = records
	m.History.Loaded = true
	if m.History.Cursor >= len(records) {
		m.History.Cursor = max(len(records)-1, 0)
	}
}

func (m Model) historyRows() []table.Row {
	rows := make([]table.Row, 0, len(m.History.Records))
	for _, rec := range m.History.Records {
		rows = append(rows, table.Row{
			rec.Date,
			fmt.Sprint(rec.Workout.Count),
			fmt.Sprint(rec.Workout.Duration / 60),
			fmt.Sprint(rec.Workout.Calories),
			fmt.Sprint(rec.Nutrition.Protein),
			fmt.Sprint(rec.Nutrition.Water),
			fmt.Sprint(rec.Mindfulness.Minutes),
			fmt.Sprintf("%d/%d", len(rec.Prayers.Completed), rec.Prayers.Total),
		})
	}
	return rows
}

func (m Model) renderHistoryView() string {
	return views.RenderHistoryPanel(views.HistoryPanelData{
		TableView: m.historyTable.View(),
		Count:     len(m.History.Records),
	})
}

func (m Model) renderHistoryDetail() string {
	return views.RenderHistoryDetail(views.HistoryPanelData{
		DetailView: m.detailViewport.View(),
		Count:      len(m.History.Records),
	})
}
