package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{staleCheckCmd(m.staleCheckInterval)}
	if m.scheduler != nil {
		cmds = append(cmds, waitForBoundaryCmd(m.scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			m.refreshToday()
			return m, nil
		case m.Keys.Workout:
			m.CurrentView = ViewWorkout
			return m, nil
		case m.Keys.History:
			m.CurrentView = ViewHistory
			m.refreshHistory()
			return m, nil
		case m.Keys.Presets:
			m.CurrentView = ViewPresets
			m.refreshPresets()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			m.Workout.Generation++
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewToday:
			return m.handleTodayKey(typed), nil
		case ViewWorkout:
			return m.handleWorkoutKey(typed)
		case ViewHistory:
			return m.handleHistoryKey(typed), nil
		case ViewPresets:
			return m.handlePresetsKey(typed)
		}
		return m, nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case TimerTickMsg:
		return m.onTimerTick(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case tea.FocusMsg:
		m.checkStale("focus")
		return m, nil
	case StaleCheckMsg:
		m.checkStale("interval")
		return m, staleCheckCmd(m.staleCheckInterval)
	case DayBoundaryMsg:
		m.checkStale("midnight")
		m.scheduleNextBoundary()
		if m.scheduler != nil {
			return m, waitForBoundaryCmd(m.scheduler.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewToday:
		leftPane = m.renderTodayView()
		rightPane = m.renderWorkoutSummary()
	case ViewWorkout:
		leftPane = m.renderWorkoutView()
		rightPane = m.renderExerciseList()
	case ViewHistory:
		leftPane = m.renderHistoryView()
		rightPane = m.renderHistoryDetail()
	case ViewPresets:
		leftPane = m.renderPresetsView()
		rightPane = m.renderPresetDetail()
	}
	if side := strings.TrimSpace(m.renderCommandPalette() + "\n" + m.renderHelpIfVisible()); side != "" {
		rightPane = strings.TrimSpace(rightPane + "\n\n" + side)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dayloop | %s | view: %s", m.Today.Daily.Date, m.CurrentView),
		Width:        m.Width,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s today | %s workout | %s history | %s presets | / command | %s help | %s quit",
			m.Keys.Today, m.Keys.Workout, m.Keys.History, m.Keys.Presets, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewWorkout, ViewHistory, ViewPresets:
		return true
	default:
		return false
	}
}
