package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/presets"
	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) handlePresetsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Presets.Cursor > 0 {
			m.Presets.Cursor--
		}
	case "down", "j":
		if m.Presets.Cursor < len(m.Presets.Items)-1 {
			m.Presets.Cursor++
		}
	case "enter":
		p, ok := m.currentPreset()
		if !ok {
			return m, nil
		}
		m.loadPreset(p)
		m.CurrentView = ViewWorkout
		m.Status = StatusBar{Text: fmt.Sprintf("loaded %s", p.Name), IsError: false}
	case "c":
		p, ok := m.currentPreset()
		if !ok {
			return m, nil
		}
		copied, err := m.catalog.Copy(m.ctx, p.ID)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.refreshPresets()
		m.selectPreset(copied.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("created %s", copied.Name), IsError: false}
	case "D":
		p, ok := m.currentPreset()
		if !ok {
			return m, nil
		}
		if err := m.catalog.Delete(m.ctx, p.ID); err != nil {
			text := err.Error()
			if errors.Is(err, presets.ErrImmutablePreset) {
				text = fmt.Sprintf("%s is built in; copy it with c first", p.Name)
			}
			m.Status = StatusBar{Text: text, IsError: true}
			return m, nil
		}
		m.refreshPresets()
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %s", p.Name), IsError: false}
	}
	return m, nil
}

func (m *Model) refreshPresets() {
	if m.catalog == nil {
		return
	}
	items, err := m.catalog.List(m.ctx)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("load presets failed: %v", err), IsError: true}
		return
	}
	m.Presets.Items = items
	if m.Presets.Cursor >= len(items) {
		m.Presets.Cursor = max(len(items)-1, 0)
	}
}

func (m *Model) selectPreset(id string) {
	for i, p := range m.Presets.Items {
		if p.ID == id {
			m.Presets.Cursor = i
			return
		}
	}
}

func (m Model) currentPreset() (model.WorkoutPreset, bool) {
	if m.Presets.Cursor < 0 || m.Presets.Cursor >= len(m.Presets.Items) {
		return model.WorkoutPreset{}, false
	}
	return m.Presets.Items[m.Presets.Cursor], true
}

func presetDescription(p model.WorkoutPreset) string {
	total := 0
	for _, e := range p.Exercises {
		total += timerSeconds(e)
	}
	parts := []string{fmt.Sprintf("%d exercises", len(p.Exercises)), fmt.Sprintf("~%d min", (total+59)/60)}
	if p.Routine != model.RoutineNone {
		parts = append(parts, "routine "+string(p.Routine))
	}
	if p.IsCustom() {
		parts = append(parts, "custom")
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderPresetsView() string {
	return views.RenderPresetsPanel(views.PresetsPanelData{
		ListView: m.presetList.View(),
		Active:   m.Workout.Preset.Name,
	})
}

func (m Model) renderPresetDetail() string {
	p, ok := m.currentPreset()
	if !ok {
		return "preset:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("preset: %s %s\nid: %s\n\n", p.Icon, p.Name, p.ID))
	for i, e := range p.Exercises {
		b.WriteString(fmt.Sprintf("%d. %s  %dx %ds work / %ds rest\n", i+1, e.Name, e.Sets, e.Work, e.Rest))
		if e.Detail != "" {
			b.WriteString(fmt.Sprintf("   %s\n", e.Detail))
		}
	}
	return strings.TrimSpace(b.String())
}
