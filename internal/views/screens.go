package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/dayloop/internal/model"
)

type TodayRowData struct {
	ID    string
	Label string
	Done  bool
	Kind  string
}

type TodayPanelData struct {
	Date         string
	Routine      string
	Protein      model.Protein
	Hydration    model.Hydration
	Mindfulness  model.Mindfulness
	PrayersDone  []model.PrayerStatus
	Rows         []TodayRowData
	SelectedID   string
	WorkoutsDone int
}

type WorkoutPanelData struct {
	PresetName   string
	Exercise     string
	Detail       string
	Phase        string
	Timer        string
	Set          string
	ExerciseNo   string
	ProgressView string
	ProgressPct  int
	Elapsed      string
	Running      bool
	Complete     bool
}

type HistoryPanelData struct {
	TableView  string
	DetailView string
	Count      int
}

type PresetsPanelData struct {
	ListView string
	Active   string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("today: %s | routine %s | workouts %d\n", data.Date, data.Routine, data.WorkoutsDone))
	b.WriteString("actions: [j/k]move [x]toggle [D]delete [+/-]water\n\n")
	b.WriteString(fmt.Sprintf("protein:     %s\n", meter(data.Protein.Current, data.Protein.Goal, "g")))
	b.WriteString(fmt.Sprintf("water:       %s\n", meter(data.Hydration.Glasses, data.Hydration.Goal, " glasses")))
	b.WriteString(fmt.Sprintf("mindfulness: %s\n", meter(data.Mindfulness.Minutes, data.Mindfulness.Goal, " min")))
	b.WriteString(fmt.Sprintf("prayers:     %s\n", prayerLine(data.PrayersDone)))

	renderTodaySection(&b, "Tasks", "task", data.Rows, data.SelectedID)
	renderTodaySection(&b, "Non-negotiables", "non_negotiable", data.Rows, data.SelectedID)
	return strings.TrimSpace(b.String())
}

func RenderWorkoutPanel(data WorkoutPanelData) string {
	var b strings.Builder
	b.WriteString("workout:\n")
	if data.PresetName == "" {
		b.WriteString("preset: (none loaded, pick one in Presets or /workout <id>)\n")
		return strings.TrimSpace(b.String())
	}
	b.WriteString(fmt.Sprintf("preset: %s\n", data.PresetName))
	b.WriteString(fmt.Sprintf("exercise %s: %s\n", data.ExerciseNo, data.Exercise))
	if data.Detail != "" {
		b.WriteString(fmt.Sprintf("  %s\n", data.Detail))
	}
	b.WriteString(fmt.Sprintf("phase: %s  set %s\n", PhaseLabel(data.Phase), data.Set))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("elapsed: %s\n", data.Elapsed))
	b.WriteString("actions: [space]start/pause [r]reset [n/p]next/prev exercise\n")
	if data.Complete {
		b.WriteString("workout complete, logged to today's stats")
	} else if !data.Running && data.Phase != "IDLE" {
		b.WriteString("paused")
	}
	return strings.TrimSpace(b.String())
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("history: %d day(s)\n", data.Count))
	b.WriteString("actions: [j/k]move [g]reload\n")
	if data.Count == 0 {
		b.WriteString("(no archived days yet)")
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderHistoryDetail(data HistoryPanelData) string {
	if strings.TrimSpace(data.DetailView) == "" {
		return "detail:\n(no selection)"
	}
	return "detail:\n" + data.DetailView
}

func RenderPresetsPanel(data PresetsPanelData) string {
	var b strings.Builder
	b.WriteString("presets:\n")
	if data.Active != "" {
		b.WriteString(fmt.Sprintf("loaded: %s\n", data.Active))
	}
	b.WriteString("actions: [enter]load [c]copy [D]delete custom\n")
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

// HistoryMarkdown describes one archived day as markdown for RenderMarkdown.
func HistoryMarkdown(rec model.HistoryRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", rec.Date))
	b.WriteString("| | |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Workouts | %d |\n", rec.Workout.Count))
	b.WriteString(fmt.Sprintf("| Duration | %s |\n", Clock(rec.Workout.Duration)))
	b.WriteString(fmt.Sprintf("| Calories | %d kcal |\n", rec.Workout.Calories))
	b.WriteString(fmt.Sprintf("| Protein | %d g |\n", rec.Nutrition.Protein))
	b.WriteString(fmt.Sprintf("| Water | %d glasses |\n", rec.Nutrition.Water))
	b.WriteString(fmt.Sprintf("| Mindfulness | %d min |\n", rec.Mindfulness.Minutes))
	b.WriteString(fmt.Sprintf("| Prayers | %d / %d |\n", len(rec.Prayers.Completed), rec.Prayers.Total))
	if len(rec.Prayers.Completed) > 0 {
		b.WriteString("\n## Prayers\n\n")
		for _, p := range rec.Prayers.Completed {
			b.WriteString(fmt.Sprintf("- **%s** (%s) %s\n", p.ID, p.Type, p.CompletedAt.Format("15:04")))
		}
	}
	return b.String()
}

// Clock formats seconds as mm:ss.
func Clock(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}

func meter(cur, goal int, unit string) string {
	mark := " "
	if goal > 0 && cur >= goal {
		mark = "✓"
	}
	return fmt.Sprintf("%d/%d%s %s", cur, goal, unit, mark)
}

func prayerLine(done []model.PrayerStatus) string {
	byID := make(map[string]model.PrayerStatus, len(done))
	for _, p := range done {
		byID[p.ID] = p
	}
	parts := make([]string, 0, len(model.DailyPrayers))
	for _, id := range model.DailyPrayers {
		p, ok := byID[id]
		switch {
		case !ok:
			parts = append(parts, "· "+id)
		case p.Type == model.PrayerJamat:
			parts = append(parts, "● "+id)
		default:
			parts = append(parts, "○ "+id)
		}
	}
	return strings.Join(parts, "  ")
}

func renderTodaySection(b *strings.Builder, title, kind string, rows []TodayRowData, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	n := 0
	for _, row := range rows {
		if row.Kind != kind {
			continue
		}
		n++
		cursor := " "
		if selectedID == row.ID {
			cursor = ">"
		}
		box, label := "[ ]", row.Label
		if row.Done {
			box, label = "[x]", doneStyle.Render(row.Label)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, box, label))
	}
	if n == 0 {
		b.WriteString("  (none)\n")
	}
}
