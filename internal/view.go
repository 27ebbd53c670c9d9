package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"timeclock/internal/analysis"
	"timeclock/internal/event"
	"timeclock/internal/timeconv"
)

const (
	barWidth      = 12
	eventsPerPage = 15
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	rowCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(84).Render("Timeclock"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.clockView(),
		"  ",
		m.paneView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.ShortHelpView([]key.Binding{
		keys.Toggle, keys.Cancel, keys.Select, keys.NextPane,
		keys.Events, keys.Countdown, keys.SetTarget, keys.Warning, keys.Quit,
	}))

	return sb.String()
}

func (m *Model) clockView() string {
	var sb strings.Builder

	current, running := m.session.Current()
	countdown := m.session.Countdown()

	if running {
		sb.WriteString(fmt.Sprintf("Task: %s\n", current.Name))
		sb.WriteString(dimStyle.Render("since " + timeconv.FormatClockTime(current.StartTime, m.loc)))
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("Idle\n")
		sb.WriteString(dimStyle.Render("press enter to start"))
		sb.WriteString("\n\n")
	}

	display := timeconv.TimerString(m.session.ElapsedSeconds())
	label := "elapsed"
	if countdown.Enabled {
		display = timeconv.TimerString(m.session.RemainingSeconds())
		label = "remaining"
	}
	if running {
		sb.WriteString(timerRunningStyle.Render(display))
	} else {
		sb.WriteString(timerDisplayStyle.Render(display))
	}
	sb.WriteString(" " + dimStyle.Render(label))
	sb.WriteString("\n\n")

	if countdown.Enabled {
		sb.WriteString(fmt.Sprintf("Countdown until %s\n", timeconv.FormatClockTime(countdown.Target, m.loc)))
	} else {
		sb.WriteString("Countdown off\n")
	}
	warning := "off"
	if countdown.WarningEnabled {
		warning = "on"
	}
	sb.WriteString(dimStyle.Render("1 minute warning " + warning))

	return boxStyle.Width(32).Height(15).Render(sb.String())
}

func (m *Model) paneView() string {
	var sb strings.Builder

	tabs := make([]string, 0, m.panes.Len())
	for i := 0; i < m.panes.Len(); i++ {
		name := m.panes.Pane(i).RangeName()
		if i == m.panes.VisibleIndex() {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	sb.WriteString("\n\n")

	p := m.panes.Visible()
	if p == nil {
		return boxStyle.Width(48).Height(15).Render(sb.String())
	}

	rows := p.Rows()
	if len(rows) == 0 {
		sb.WriteString(dimStyle.Render("No time recorded in this range."))
	}
	for i, r := range rows {
		line := m.formatRow(r, p.TotalMillis(), r.ID == p.SelectedRowID())
		if i == m.rowCursor {
			sb.WriteString(rowCursorStyle.Render(line))
		} else {
			sb.WriteString(rowStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if row, ok := p.SelectedRow(); ok {
		sb.WriteString(selectedStyle.Render(fmt.Sprintf("%s: %s h", row.Name, timeconv.FormatDecimalHours(p.SelectedMillis()))))
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" of %s h", timeconv.FormatDecimalHours(p.TotalMillis()))))
	} else {
		sb.WriteString(headerStyle.Render(fmt.Sprintf("Total: %s h", timeconv.FormatDecimalHours(p.SelectedMillis()))))
	}

	return boxStyle.Width(48).Height(15).Render(sb.String())
}

func (m *Model) formatRow(r analysis.Row, total int64, selected bool) string {
	marker := " "
	if selected {
		marker = "*"
	}
	name := r.Name
	if len([]rune(name)) > 16 {
		name = string([]rune(name)[:15]) + "…"
	}
	pct := r.Percentage(total)
	return fmt.Sprintf("%s %-16s %6s h %s %3.0f%%",
		marker, name, timeconv.FormatDecimalHours(r.TotalMillis), m.bar.ViewAs(pct/100), pct)
}

func newShareBar() progress.Model {
	bar := progress.New(progress.WithSolidFill("69"), progress.WithoutPercentage())
	bar.Width = barWidth
	bar.Empty = '░'
	return bar
}

func (m *Model) eventsView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(84).Render("Events"))
	sb.WriteString("\n\n")

	if len(m.events) == 0 {
		sb.WriteString(dimStyle.Render("No events yet."))
	}

	start := 0
	if m.eventCursor >= eventsPerPage {
		start = m.eventCursor - eventsPerPage + 1
	}
	end := min(start+eventsPerPage, len(m.events))
	for i := start; i < end; i++ {
		line := m.formatEvent(m.events[i])
		if i == m.eventCursor {
			sb.WriteString(rowCursorStyle.Render(line))
		} else {
			sb.WriteString(rowStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Delete, keys.Back}))

	return boxStyle.Width(84).Render(sb.String())
}

func (m *Model) formatEvent(e event.Event) string {
	date := timeconv.FormatCalendarDate(e.StartTime, m.loc)
	from := timeconv.FormatClockTime(e.StartTime, m.loc)
	if e.Running() {
		return fmt.Sprintf("%-13s %8s - %-8s %8s  %s",
			date, from, "", timerRunningStyle.Render("running"), e.Name)
	}
	to := timeconv.FormatClockTime(e.EndTime, m.loc)
	return fmt.Sprintf("%-13s %8s - %-8s %8s  %s",
		date, from, to, timeconv.FormatStopwatch(e.Duration()), e.Name)
}

func (m *Model) nameInputView() string {
	form := fmt.Sprintf("%s\n\n%s\n\n%s",
		inputStyle.Render("→ Task:"),
		m.nameInput.View(),
		m.statusOrHelp("Enter: Start | Esc: Cancel"),
	)
	return lipgloss.Place(
		84, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(titleStyle.Width(46).Render("Start Clock")+"\n\n"+form),
	)
}

func (m *Model) targetInputView() string {
	form := fmt.Sprintf("%s\n\n%s\n\n%s",
		inputStyle.Render("→ Count down for (minutes):"),
		m.targetInput.View(),
		m.statusOrHelp("Enter: Save | Esc: Cancel"),
	)
	return lipgloss.Place(
		84, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(titleStyle.Width(46).Render("Countdown")+"\n\n"+form),
	)
}

func (m *Model) statusOrHelp(helpText string) string {
	if m.Err != nil {
		return errorStyle.Render(m.Err.Error())
	}
	return dimStyle.Render(helpText)
}

func (m *Model) statusLine() string {
	if m.Err != nil {
		return errorStyle.Render("Error: " + m.Err.Error())
	}
	return statusStyle.Render(m.Status)
}
