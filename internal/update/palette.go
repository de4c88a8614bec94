package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/commands"
	"github.com/sandeepkv93/dayloop/internal/timer"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m, nil
	}

	var teaCmd tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Task: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.tracker.AddTask(m.ctx, a.Title)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added task: %s", task.Title)}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			tasks := m.tracker.State(m.ctx).Tasks
			if a.Index < 1 || a.Index > len(tasks) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task #%d (have %d)", a.Index, len(tasks))}
			}
			task := tasks[a.Index-1]
			if err := m.tracker.ToggleTask(m.ctx, task.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("toggled task: %s", task.Title)}, nil
		},
		Protein: func(a commands.AmountArgs) (commands.Result, error) {
			if err := m.tracker.AddProtein(m.ctx, a.Amount); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("protein %+dg", a.Amount)}, nil
		},
		Water: func(a commands.AmountArgs) (commands.Result, error) {
			if err := m.tracker.AddGlasses(m.ctx, a.Amount); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("water %+d glass(es)", a.Amount)}, nil
		},
		Mind: func(a commands.AmountArgs) (commands.Result, error) {
			if err := m.tracker.AddMindfulness(m.ctx, a.Amount); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("mindfulness %+d min", a.Amount)}, nil
		},
		Pray: func(a commands.PrayArgs) (commands.Result, error) {
			if err := m.tracker.MarkPrayer(m.ctx, a.Prayer, a.Type); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s marked (%s)", a.Prayer, a.Type)}, nil
		},
		Routine: func(a commands.RoutineArgs) (commands.Result, error) {
			if err := m.tracker.SetRoutine(m.ctx, a.Routine); err != nil {
				return commands.Result{}, err
			}
			m.Today.Daily.ActiveRoutine = a.Routine
			if !m.Workout.Timer.IsRunning {
				m.loadRoutinePreset()
			}
			return commands.Result{Message: fmt.Sprintf("routine set to %s", a.Routine)}, nil
		},
		Workout: func(a commands.PresetArgs) (commands.Result, error) {
			p, err := m.catalog.Get(m.ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			m.loadPreset(p)
			m.CurrentView = ViewWorkout
			m, teaCmd = m.applyTimer(timer.Action{Type: timer.ActionStart})
			return commands.Result{Message: fmt.Sprintf("started %s", p.Name)}, nil
		},
		Copy: func(a commands.PresetArgs) (commands.Result, error) {
			p, err := m.catalog.Copy(m.ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			m.refreshPresets()
			m.selectPreset(p.ID)
			return commands.Result{Message: fmt.Sprintf("created %s (%s)", p.Name, p.ID)}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			imported, err := m.catalog.Import(m.ctx, a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			m.refreshPresets()
			names := make([]string, 0, len(imported))
			for _, p := range imported {
				names = append(names, p.Name)
			}
			return commands.Result{Message: fmt.Sprintf("imported %d preset(s): %s", len(imported), strings.Join(names, ", "))}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
		m.notify("Command", res.Message, "info")
	}
	m.refreshToday()
	m.closePalette()
	return m, teaCmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}
