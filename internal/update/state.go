package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/google/uuid"

	"github.com/sandeepkv93/dayloop/internal/scheduler"
)

// checkStale funnels every wakeup source into the tracker's single
// rollover path and reloads the dashboard when the day changed.
func (m *Model) checkStale(source string) {
	if m.tracker == nil {
		return
	}
	prevDate := m.Today.Daily.Date
	rolled := m.tracker.CheckStale(m.ctx)
	m.refreshToday()
	if !rolled && prevDate == m.Today.Daily.Date {
		return
	}
	m.logger.Info("day rolled over", "source", source, "from", prevDate, "to", m.Today.Daily.Date)
	m.Today.Cursor = 0
	m.History.Loaded = false
	if m.CurrentView == ViewHistory {
		m.refreshHistory()
	}
	if !m.Workout.Timer.IsRunning {
		m.loadRoutinePreset()
	}
	m.Status = StatusBar{Text: fmt.Sprintf("new day %s, routine %s", m.Today.Daily.Date, m.Today.Daily.ActiveRoutine), IsError: false}
	m.notify("New day", fmt.Sprintf("%s archived", prevDate), "info")
}

func (m *Model) scheduleNextBoundary() {
	if m.scheduler == nil {
		return
	}
	ev := scheduler.Event{
		ID:        uuid.NewString(),
		Kind:      scheduler.KindDayBoundary,
		TriggerAt: scheduler.NextMidnight(m.clock.Now(), m.loc),
	}
	if err := m.scheduler.Schedule(ev); err != nil {
		m.logger.Warn("schedule day boundary", "error", err)
	}
}

func waitForBoundaryCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DayBoundaryMsg{Event: ev}
	}
}

func staleCheckCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return StaleCheckMsg{} })
}
