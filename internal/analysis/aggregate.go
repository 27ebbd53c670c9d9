// Package analysis groups the event log into per-task totals over rolling
// day windows and tracks which row of a window is highlighted.
package analysis

import (
	"sort"
	"time"

	"timeclock/internal/event"
)

// Unbounded is the window size that keeps every event.
const Unbounded = -1

// Row is one task's total within a window. ID is the row's rank at the
// time it was computed and is only meaningful until the next computation.
type Row struct {
	ID          int
	Name        string
	TotalMillis int64
}

// Percentage returns the row's share of total, or 0 when total is not positive.
func (r Row) Percentage(total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(r.TotalMillis) / float64(total) * 100
}

// WindowCutoff returns the exclusive lower bound, in epoch milliseconds,
// of a window of days calendar days ending at now. The current partial day
// counts as the first day.
func WindowCutoff(days int, now time.Time) int64 {
	lastMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	span := time.Duration(days-1)*24*time.Hour + now.Sub(lastMidnight)
	return now.Add(-span).UnixMilli()
}

// Filter keeps the events that started inside the window. A negative days
// keeps everything.
func Filter(events []event.Event, days int, now time.Time) []event.Event {
	if days < 0 {
		out := make([]event.Event, len(events))
		copy(out, events)
		return out
	}
	cutoff := WindowCutoff(days, now)
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.StartTime > cutoff {
			out = append(out, e)
		}
	}
	return out
}

// Aggregate sums completed event durations per name inside the window and
// returns rows ranked by total, largest first, together with the window's
// total. Equal totals keep the order in which the names were first seen.
func Aggregate(events []event.Event, days int, now time.Time) ([]Row, int64) {
	return Summarize(Filter(events, days, now))
}

// Summarize ranks already filtered events. Running events are skipped.
func Summarize(events []event.Event) ([]Row, int64) {
	totals := make(map[string]int64)
	var order []string
	var total int64

	for _, e := range events {
		if e.Running() {
			continue
		}
		if _, seen := totals[e.Name]; !seen {
			order = append(order, e.Name)
		}
		totals[e.Name] += e.Duration()
		total += e.Duration()
	}

	rows := make([]Row, 0, len(order))
	for _, name := range order {
		rows = append(rows, Row{Name: name, TotalMillis: totals[name]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalMillis > rows[j].TotalMillis
	})
	for idx := range rows {
		rows[idx].ID = idx
	}
	return rows, total
}
