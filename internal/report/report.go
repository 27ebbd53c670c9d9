// Package report prints an analysis pane as a plain table for the
// non-interactive -report mode.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"timeclock/internal/analysis"
	"timeclock/internal/timeconv"
)

var ErrUnknownRange = errors.New("unknown range")

var ranges = map[string]analysis.Window{
	"today": {Name: "Today", Days: 1},
	"week":  {Name: "Last 7 Days", Days: 7},
	"month": {Name: "Last 30 Days", Days: 30},
	"all":   {Name: "All Time", Days: analysis.Unbounded},
}

// ParseRange maps today, week, month or all to its window.
func ParseRange(name string) (analysis.Window, error) {
	w, ok := ranges[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return analysis.Window{}, fmt.Errorf("%w %q: want today|week|month|all", ErrUnknownRange, name)
	}
	return w, nil
}

// Write renders the pane's rows followed by the window total.
func Write(w io.Writer, p *analysis.Pane) error {
	rows := p.Rows()
	total := p.TotalMillis()

	if _, err := fmt.Fprintf(w, "%s\n", p.RangeName()); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No time recorded in this range.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Task", "Time", "Hours", "Share")
	for _, r := range rows {
		t.Row(
			strconv.Itoa(r.ID),
			r.Name,
			timeconv.FormatStopwatch(r.TotalMillis),
			timeconv.FormatDecimalHours(r.TotalMillis),
			fmt.Sprintf("%.1f%%", r.Percentage(total)),
		)
	}

	_, err := fmt.Fprintf(w, "%s\nTotal: %s (%s h)\n",
		t.String(), timeconv.FormatStopwatch(total), timeconv.FormatDecimalHours(total))
	return err
}
