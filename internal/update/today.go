package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) Model {
	rows := m.todayRows()
	switch msg.String() {
	case "up", "k":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
	case "down", "j":
		if m.Today.Cursor < len(rows)-1 {
			m.Today.Cursor++
		}
	case "x", "enter":
		row, ok := m.currentTodayRow()
		if !ok {
			return m
		}
		var err error
		if row.Kind == "task" {
			err = m.tracker.ToggleTask(m.ctx, row.ID)
		} else {
			err = m.tracker.ToggleNonNegotiable(m.ctx, row.ID)
		}
		m.afterMutation(fmt.Sprintf("toggled %s", row.Label), err)
	case "D":
		row, ok := m.currentTodayRow()
		if !ok || row.Kind != "task" {
			return m
		}
		m.afterMutation(fmt.Sprintf("removed task: %s", row.Label), m.tracker.RemoveTask(m.ctx, row.ID))
	case "+":
		m.afterMutation("water +1", m.tracker.AddGlass(m.ctx))
	case "-":
		m.afterMutation("water -1", m.tracker.RemoveGlass(m.ctx))
	}
	return m
}

// afterMutation reports the outcome of a tracker write and reloads the
// dashboard.
func (m *Model) afterMutation(ok string, err error) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Warn("daily update failed", "error", err)
	} else {
		m.Status = StatusBar{Text: ok, IsError: false}
	}
	m.refreshToday()
}

func (m *Model) refreshToday() {
	if m.tracker == nil {
		return
	}
	m.Today.Daily = m.tracker.State(m.ctx)
	m.Today.WorkoutsDone = 0
	if m.stats != nil {
		logs, err := m.stats.ForDate(m.ctx, m.Today.Daily.Date)
		if err != nil {
			m.logger.Warn("load workout logs", "date", m.Today.Daily.Date, "error", err)
		}
		m.Today.WorkoutsDone = len(logs)
	}
	if n := len(m.todayRows()); m.Today.Cursor >= n {
		m.Today.Cursor = max(n-1, 0)
	}
}

func (m Model) todayRows() []views.TodayRowData {
	d := m.Today.Daily
	rows := make([]views.TodayRowData, 0, len(d.Tasks)+len(d.NonNegotiables))
	for _, t := range d.Tasks {
		rows = append(rows, views.TodayRowData{ID: t.ID, Label: t.Title, Done: t.Done, Kind: "task"})
	}
	for _, n := range d.NonNegotiables {
		rows = append(rows, views.TodayRowData{ID: n.ID, Label: n.Label, Done: n.Done, Kind: "non_negotiable"})
	}
	return rows
}

func (m Model) currentTodayRow() (views.TodayRowData, bool) {
	rows := m.todayRows()
	if m.Today.Cursor < 0 || m.Today.Cursor >= len(rows) {
		return views.TodayRowData{}, false
	}
	return rows[m.Today.Cursor], true
}

func (m Model) renderTodayView() string {
	d := m.Today.Daily
	selected := ""
	if row, ok := m.currentTodayRow(); ok {
		selected = row.ID
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		Date:         d.Date,
		Routine:      string(d.ActiveRoutine),
		Protein:      d.Protein,
		Hydration:    d.Hydration,
		Mindfulness:  d.Mindfulness,
		PrayersDone:  d.Prayers,
		Rows:         m.todayRows(),
		SelectedID:   selected,
		WorkoutsDone: m.Today.WorkoutsDone,
	})
}
