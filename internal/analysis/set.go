package analysis

import (
	"time"

	"timeclock/internal/event"
)

// Window names a pane and its size in days.
type Window struct {
	Name string
	Days int
}

var defaultWindows = []Window{
	{Name: "Today", Days: 1},
	{Name: "Last 7 Days", Days: 7},
	{Name: "Last 30 Days", Days: 30},
	{Name: "All Time", Days: Unbounded},
}

// DefaultWindows returns a copy of the standard pane windows.
func DefaultWindows() []Window {
	out := make([]Window, len(defaultWindows))
	copy(out, defaultWindows)
	return out
}

// Set is an ordered collection of panes filtered from the same events,
// one of which is visible at a time.
type Set struct {
	panes   []*Pane
	visible int
}

// NewSet builds one pane per window. An empty list uses DefaultWindows.
func NewSet(windows []Window, now func() time.Time) *Set {
	if len(windows) == 0 {
		windows = DefaultWindows()
	}
	s := &Set{panes: make([]*Pane, 0, len(windows))}
	for _, w := range windows {
		s.panes = append(s.panes, NewPane(w.Name, w.Days, WithClock(now)))
	}
	return s
}

// Update recomputes every pane from events.
func (s *Set) Update(events []event.Event) {
	for _, p := range s.panes {
		p.OnEventsUpdate(events)
	}
}

func (s *Set) Len() int { return len(s.panes) }

func (s *Set) Pane(i int) *Pane {
	if i < 0 || i >= len(s.panes) {
		return nil
	}
	return s.panes[i]
}

// Find returns the first pane whose window has the given size.
func (s *Set) Find(days int) (*Pane, bool) {
	for _, p := range s.panes {
		if p.DaysInRange() == days {
			return p, true
		}
	}
	return nil, false
}

func (s *Set) VisibleIndex() int { return s.visible }

func (s *Set) Visible() *Pane {
	return s.Pane(s.visible)
}

// Show makes pane i visible. The pane being left has its selection reset
// so returning to it never shows a stale highlight.
func (s *Set) Show(i int) {
	if i < 0 || i >= len(s.panes) || i == s.visible {
		return
	}
	s.panes[s.visible].ResetSelection()
	s.visible = i
}

func (s *Set) Next() {
	if len(s.panes) == 0 {
		return
	}
	s.Show((s.visible + 1) % len(s.panes))
}

func (s *Set) Prev() {
	if len(s.panes) == 0 {
		return
	}
	s.Show((s.visible - 1 + len(s.panes)) % len(s.panes))
}
