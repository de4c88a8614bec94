// Package update holds the bubbletea Model for the dayloop TUI: the Today
// dashboard, the guided workout timer, archived history and the preset
// catalog.
package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/daily"
	"github.com/sandeepkv93/dayloop/internal/logging"
	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/presets"
	"github.com/sandeepkv93/dayloop/internal/scheduler"
	"github.com/sandeepkv93/dayloop/internal/storage"
	"github.com/sandeepkv93/dayloop/internal/timer"
)

type View string

const (
	ViewToday   View = "Today"
	ViewWorkout View = "Workout"
	ViewHistory View = "History"
	ViewPresets View = "Presets"
)

const historyPageSize = 60

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Workout string
	History string
	Presets string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// HistoryLister is the read side of the history store.
type HistoryLister interface {
	ListHistory(ctx context.Context, filter storage.HistoryListFilter) ([]model.HistoryRecord, error)
}

// Deps are the services the Model drives. Tracker and Catalog are
// required; everything else degrades gracefully when nil.
type Deps struct {
	Context            context.Context
	Tracker            *daily.Tracker
	Catalog            *presets.Catalog
	Stats              *daily.Stats
	History            HistoryLister
	Scheduler          *scheduler.Engine
	Clock              clock.Clock
	Location           *time.Location
	Logger             *slog.Logger
	StaleCheckInterval time.Duration
}

type TodayState struct {
	Daily        model.DailyState
	Cursor       int
	WorkoutsDone int
}

// WorkoutState is the TUI's copy of the timer. Pulses carry Generation;
// a pulse whose generation is stale is dropped.
type WorkoutState struct {
	Preset     model.WorkoutPreset
	Timer      timer.State
	Elapsed    int
	StartedAt  time.Time
	Generation int
	Logged     bool
}

type HistoryState struct {
	Records []model.HistoryRecord
	Cursor  int
	Loaded  bool
}

type PresetsState struct {
	Items  []model.WorkoutPreset
	Cursor int
}

type Model struct {
	CurrentView   View
	Today         TodayState
	Workout       WorkoutState
	History       HistoryState
	Presets       PresetsState
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	Width         int

	ctx                context.Context
	tracker            *daily.Tracker
	catalog            *presets.Catalog
	stats              *daily.Stats
	history            HistoryLister
	scheduler          *scheduler.Engine
	clock              clock.Clock
	loc                *time.Location
	logger             *slog.Logger
	staleCheckInterval time.Duration

	presetList      list.Model
	historyTable    table.Model
	commandInput    textinput.Model
	workoutProgress progress.Model
	helpModel       help.Model
	detailViewport  viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TimerTickMsg is the one-second workout pulse.
type TimerTickMsg struct {
	Generation int
}

// StaleCheckMsg is the periodic prompt to re-check the day boundary.
type StaleCheckMsg struct{}

// DayBoundaryMsg is delivered when the scheduler reaches local midnight.
type DayBoundaryMsg struct {
	Event scheduler.Event
}

func DefaultKeys() GlobalKeyMap {
	return GlobalKeyMap{
		Today:   "1",
		Workout: "2",
		History: "3",
		Presets: "4",
		Help:    "?",
		Quit:    "q",
	}
}

// NewModel builds the TUI model, loads today's record and the preset for
// today's routine, and schedules the first midnight wakeup.
func NewModel(deps Deps) Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.StaleCheckInterval <= 0 {
		deps.StaleCheckInterval = time.Minute
	}
	m := Model{
		CurrentView:        ViewToday,
		Keys:               DefaultKeys(),
		ctx:                deps.Context,
		tracker:            deps.Tracker,
		catalog:            deps.Catalog,
		stats:              deps.Stats,
		history:            deps.History,
		scheduler:          deps.Scheduler,
		clock:              deps.Clock,
		loc:                deps.Location,
		logger:             logging.OrDiscard(deps.Logger),
		staleCheckInterval: deps.StaleCheckInterval,
	}
	m.initBubbleComponents()
	m.refreshToday()
	m.refreshPresets()
	m.loadRoutinePreset()
	m.scheduleNextBoundary()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.presetList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 14)
	m.presetList.Title = "Presets"
	m.presetList.SetShowHelp(false)
	m.presetList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Wk", Width: 3},
		{Title: "Min", Width: 4},
		{Title: "kcal", Width: 5},
		{Title: "Prot", Width: 5},
		{Title: "H2O", Width: 4},
		{Title: "Mind", Width: 4},
		{Title: "Pray", Width: 4},
	}
	m.historyTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.workoutProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(36))
	m.helpModel = help.New()
	m.detailViewport = viewport.New(56, 16)
}
