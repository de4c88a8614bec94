package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is one frame of the two-pane layout. Width is the terminal
// width; zero keeps the default pane size.
type AppData struct {
	Header       string
	Width        int
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Notification string
	Footer       string
}

const (
	defaultPaneWidth = 58
	minPaneWidth     = 36
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle  = dimStyle.Strikethrough(true)
)

var phaseColors = map[string]lipgloss.Color{
	"IDLE":     lipgloss.Color("8"),
	"PREP":     lipgloss.Color("11"),
	"WORK":     lipgloss.Color("10"),
	"REST":     lipgloss.Color("12"),
	"COMPLETE": lipgloss.Color("13"),
}

func paneWidth(total int) int {
	if total <= 0 {
		return defaultPaneWidth
	}
	// two panes, each with a border and padding on both sides
	return max(total/2-4, minPaneWidth)
}

func RenderApp(data AppData) string {
	w := paneWidth(data.Width)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Width(w).Render(data.LeftPane),
		boxStyle.Width(w).Render(data.RightPane),
	)

	statusStyle := okStyle
	if data.StatusError {
		statusStyle = errorStyle
	}
	out := []string{titleStyle.Render(data.Header), panes, statusStyle.Render(data.StatusLine)}
	if data.Notification != "" {
		out = append(out, boxStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		out = append(out, dimStyle.Render(data.Footer))
	}
	return strings.Join(out, "\n")
}

// PhaseLabel renders a timer phase name in its phase color.
func PhaseLabel(phase string) string {
	color, ok := phaseColors[strings.ToUpper(phase)]
	if !ok {
		return phase
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.ToUpper(phase))
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
