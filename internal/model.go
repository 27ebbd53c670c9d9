package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"timeclock/internal/analysis"
	"timeclock/internal/event"
	"timeclock/internal/logging"
	"timeclock/internal/preferences"
	"timeclock/internal/session"
	"timeclock/internal/timeconv"
)

// MsgTick is sent by the chronometer on every display tick.
type MsgTick struct{}

type viewMode int

const (
	modeMain viewMode = iota
	modeNameInput
	modeTargetInput
	modeEvents
)

// Deps are the components the terminal UI drives.
type Deps struct {
	Session     *session.Session
	Log         *event.Log
	Panes       *analysis.Set
	Preferences preferences.Store
	Logger      *slog.Logger
	Now         func() time.Time
	Location    *time.Location
}

type Model struct {
	session *session.Session
	log     *event.Log
	panes   *analysis.Set
	prefs   preferences.Store
	logger  *slog.Logger
	now     func() time.Time
	loc     *time.Location
	ctx     context.Context

	mode        viewMode
	nameInput   textinput.Model
	targetInput textinput.Model
	help        help.Model
	bar         progress.Model
	rowCursor   int
	eventCursor int
	events      []event.Event
	countdown   preferences.Preferences

	Status string
	Err    error

	unsubscribe []func()
}

func NewModel(ctx context.Context, deps Deps) (*Model, error) {
	if deps.Session == nil || deps.Log == nil || deps.Panes == nil || deps.Preferences == nil {
		return nil, errors.New("model requires session, log, panes and preferences")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	prefs, err := deps.Preferences.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	nameInput := textinput.New()
	nameInput.Placeholder = "What are you working on?"
	nameInput.CharLimit = 120
	nameInput.Width = 40

	targetInput := textinput.New()
	targetInput.Placeholder = "minutes from now"
	targetInput.CharLimit = 5
	targetInput.Width = 20

	m := &Model{
		session:     deps.Session,
		log:         deps.Log,
		panes:       deps.Panes,
		prefs:       deps.Preferences,
		logger:      deps.Logger.With(slog.String("component", "tui")),
		now:         deps.Now,
		loc:         deps.Location,
		ctx:         ctx,
		nameInput:   nameInput,
		targetInput: targetInput,
		help:        help.New(),
		bar:         newShareBar(),
		countdown:   prefs,
	}
	m.session.SetCountdown(toCountdown(prefs))

	m.onEvents(m.log.Events())
	m.unsubscribe = append(m.unsubscribe,
		m.log.Subscribe(m.onEvents),
		m.session.Subscribe(m.onSessionUpdate),
	)
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		if err := m.session.Tick(m.ctx); err != nil {
			m.fail("tick", err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.mode {
	case modeNameInput:
		return m.nameInputView()
	case modeTargetInput:
		return m.targetInputView()
	case modeEvents:
		return m.eventsView()
	}
	return m.mainView()
}

// Close detaches the model from the log and session.
func (m *Model) Close() {
	for _, cancel := range m.unsubscribe {
		cancel()
	}
	m.unsubscribe = nil
}

func (m *Model) onEvents(events []event.Event) {
	m.events = events
	m.panes.Update(events)
	m.clampCursors()
}

func (m *Model) onSessionUpdate(u session.Update) {
	switch u.Kind {
	case session.UpdateStarted:
		m.Status = fmt.Sprintf("Started %q", u.Event.Name)
		m.syncCountdown()
	case session.UpdateResumed:
		m.Status = fmt.Sprintf("Resumed %q", u.Event.Name)
	case session.UpdateStopped:
		m.Status = fmt.Sprintf("Saved %q (%s)", u.Event.Name, timeconv.FormatStopwatch(u.Event.Duration()))
	case session.UpdateCancelled:
		m.Status = fmt.Sprintf("Discarded %q", u.Event.Name)
	case session.UpdateCountdownWarning:
		m.Status = fmt.Sprintf("%s left on %q", timeconv.TimerString(u.RemainingSeconds), u.Event.Name)
	case session.UpdateCompleted:
		m.syncCountdown()
		m.Status = fmt.Sprintf("Countdown finished, saved %q", u.Event.Name)
	}
}

// syncCountdown persists a countdown the session disarmed on its own.
func (m *Model) syncCountdown() {
	if m.countdown.CountdownEnabled && !m.session.Countdown().Enabled {
		next := m.countdown
		next.CountdownEnabled = false
		m.applyPreferences(next)
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Err = nil

	switch m.mode {
	case modeNameInput:
		return m.handleNameInput(msg)
	case modeTargetInput:
		return m.handleTargetInput(msg)
	case modeEvents:
		return m.handleEventsInput(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Toggle):
		if m.session.IsRunning() {
			if _, err := m.session.Stop(m.ctx); err != nil {
				m.fail("stop", err)
			}
			return m, nil
		}
		m.mode = modeNameInput
		m.nameInput.Reset()
		return m, m.nameInput.Focus()
	case key.Matches(msg, keys.Cancel):
		if m.session.IsRunning() {
			if err := m.session.Cancel(m.ctx); err != nil {
				m.fail("cancel", err)
			}
		}
	case key.Matches(msg, keys.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.rowCursor < len(m.visibleRows())-1 {
			m.rowCursor++
		}
	case key.Matches(msg, keys.Select):
		rows := m.visibleRows()
		if m.rowCursor >= 0 && m.rowCursor < len(rows) {
			m.panes.Visible().SelectRow(rows[m.rowCursor].ID)
		}
	case key.Matches(msg, keys.Clear):
		if p := m.panes.Visible(); p != nil {
			p.ResetSelection()
		}
	case key.Matches(msg, keys.NextPane):
		m.panes.Next()
		m.rowCursor = 0
	case key.Matches(msg, keys.PrevPane):
		m.panes.Prev()
		m.rowCursor = 0
	case key.Matches(msg, keys.Events):
		m.mode = modeEvents
		m.eventCursor = 0
	case key.Matches(msg, keys.Countdown):
		next := m.countdown
		next.CountdownEnabled = !next.CountdownEnabled
		if next.CountdownEnabled && next.CountdownEndTime <= m.now().UnixMilli() {
			m.mode = modeTargetInput
			m.targetInput.Reset()
			return m, m.targetInput.Focus()
		}
		m.applyPreferences(next)
	case key.Matches(msg, keys.SetTarget):
		m.mode = modeTargetInput
		m.targetInput.Reset()
		return m, m.targetInput.Focus()
	case key.Matches(msg, keys.Warning):
		next := m.countdown
		next.CountdownWarningEnabled = !next.CountdownWarningEnabled
		m.applyPreferences(next)
	}
	return m, nil
}

func (m *Model) handleNameInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeMain
		m.nameInput.Blur()
		return m, nil
	case "enter":
		err := m.session.Start(m.ctx, m.nameInput.Value())
		if errors.Is(err, event.ErrInvalidEvent) {
			m.Err = errors.New("task name must not be empty")
			return m, nil
		}
		if err != nil {
			m.fail("start", err)
		}
		m.mode = modeMain
		m.nameInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleTargetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeMain
		m.targetInput.Blur()
		return m, nil
	case "enter":
		minutes, err := strconv.Atoi(strings.TrimSpace(m.targetInput.Value()))
		if err != nil || minutes <= 0 {
			m.Err = errors.New("countdown must be a positive number of minutes")
			return m, nil
		}
		next := m.countdown
		next.CountdownEnabled = true
		next.CountdownEndTime = m.now().Add(time.Duration(minutes) * time.Minute).UnixMilli()
		m.applyPreferences(next)
		m.mode = modeMain
		m.targetInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.targetInput, cmd = m.targetInput.Update(msg)
	return m, cmd
}

func (m *Model) handleEventsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit), key.Matches(msg, keys.Back), key.Matches(msg, keys.Events):
		m.mode = modeMain
	case key.Matches(msg, keys.Up):
		if m.eventCursor > 0 {
			m.eventCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.eventCursor < len(m.events)-1 {
			m.eventCursor++
		}
	case key.Matches(msg, keys.Delete):
		m.deleteSelectedEvent()
	}
	return m, nil
}

func (m *Model) deleteSelectedEvent() {
	if m.eventCursor < 0 || m.eventCursor >= len(m.events) {
		return
	}
	target := m.events[m.eventCursor]
	if current, ok := m.session.Current(); ok && current.ID == target.ID {
		m.Err = errors.New("stop or discard the running event before deleting it")
		return
	}

	err := m.log.Delete(m.ctx, target.ID)
	switch {
	case errors.Is(err, event.ErrNotFound):
		m.Status = fmt.Sprintf("%q was already deleted", target.Name)
	case err != nil:
		m.fail("delete", err)
	default:
		m.Status = fmt.Sprintf("Deleted %q", target.Name)
	}
}

func (m *Model) applyPreferences(next preferences.Preferences) {
	m.countdown = next
	m.session.SetCountdown(toCountdown(next))
	if err := m.prefs.Save(next); err != nil {
		m.fail("save preferences", err)
		return
	}
	m.logger.Info("preferences_saved",
		slog.Bool("countdown_enabled", next.CountdownEnabled),
		slog.Int64("countdown_end_time", next.CountdownEndTime),
		slog.Bool("countdown_warning_enabled", next.CountdownWarningEnabled),
	)
}

func (m *Model) visibleRows() []analysis.Row {
	p := m.panes.Visible()
	if p == nil {
		return nil
	}
	return p.Rows()
}

func (m *Model) clampCursors() {
	if n := len(m.visibleRows()); m.rowCursor >= n {
		m.rowCursor = max(n-1, 0)
	}
	if m.eventCursor >= len(m.events) {
		m.eventCursor = max(len(m.events)-1, 0)
	}
}

func (m *Model) fail(op string, err error) {
	m.Err = err
	m.logger.Error("ui_operation_failed", slog.String("op", op), slog.Any("error", err))
}

func toCountdown(p preferences.Preferences) session.Countdown {
	return session.Countdown{
		Enabled:        p.CountdownEnabled,
		Target:         p.CountdownEndTime,
		WarningEnabled: p.CountdownWarningEnabled,
	}
}
