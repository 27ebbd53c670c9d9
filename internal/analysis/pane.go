package analysis

import (
	"time"

	"timeclock/internal/event"
	"timeclock/internal/observe"
)

// NoSelection is the selected row id when nothing is highlighted.
const NoSelection = -1

// PaneState is a snapshot of a Pane published to observers.
type PaneState struct {
	RangeName      string
	DaysInRange    int
	Rows           []Row
	TotalMillis    int64
	SelectedRowID  int
	SelectedMillis int64
}

// Pane is one named window over the event log with its own row selection.
// It is not safe for concurrent use.
type Pane struct {
	rangeName      string
	daysInRange    int
	rows           []Row
	totalMillis    int64
	selectedRowID  int
	selectedMillis int64

	now     func() time.Time
	changed observe.Subject[PaneState]
}

// PaneOption customises a Pane.
type PaneOption func(*Pane)

// WithClock overrides the time source used to place the window.
func WithClock(now func() time.Time) PaneOption {
	return func(p *Pane) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPane creates an empty pane. days of Unbounded keeps every event.
func NewPane(rangeName string, days int, opts ...PaneOption) *Pane {
	p := &Pane{
		rangeName:     rangeName,
		daysInRange:   days,
		selectedRowID: NoSelection,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pane) RangeName() string { return p.rangeName }
func (p *Pane) DaysInRange() int { return p.daysInRange }
func (p *Pane) TotalMillis() int64 { return p.totalMillis }
func (p *Pane) SelectedRowID() int { return p.selectedRowID }
func (p *Pane) SelectedMillis() int64 { return p.selectedMillis }

// Rows returns a copy of the current ranking.
func (p *Pane) Rows() []Row {
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}

func (p *Pane) State() PaneState {
	return PaneState{
		RangeName:      p.rangeName,
		DaysInRange:    p.daysInRange,
		Rows:           p.Rows(),
		TotalMillis:    p.totalMillis,
		SelectedRowID:  p.selectedRowID,
		SelectedMillis: p.selectedMillis,
	}
}

// Subscribe registers fn to receive the pane state after every change.
func (p *Pane) Subscribe(fn func(PaneState)) (cancel func()) {
	return p.changed.Subscribe(fn)
}

// OnEventsUpdate recomputes the window from events. A selected id that no
// longer exists is kept, but the selected total falls back to the window
// total.
func (p *Pane) OnEventsUpdate(events []event.Event) {
	p.rows, p.totalMillis = Aggregate(events, p.daysInRange, p.now())
	p.refreshSelected()
	p.changed.Publish(p.State())
}

// SelectRow highlights rowID, or clears the highlight if rowID is already
// selected.
func (p *Pane) SelectRow(rowID int) {
	if p.selectedRowID == rowID {
		p.selectedRowID = NoSelection
	} else {
		p.selectedRowID = rowID
	}
	p.refreshSelected()
	p.changed.Publish(p.State())
}

// ResetSelection clears the highlight.
func (p *Pane) ResetSelection() {
	p.selectedRowID = NoSelection
	p.selectedMillis = p.totalMillis
	p.changed.Publish(p.State())
}

// SelectedRow returns the highlighted row if it exists in the current ranking.
func (p *Pane) SelectedRow() (Row, bool) {
	if p.selectedRowID == NoSelection {
		return Row{}, false
	}
	for _, r := range p.rows {
		if r.ID == p.selectedRowID {
			return r, true
		}
	}
	return Row{}, false
}

func (p *Pane) refreshSelected() {
	if r, ok := p.SelectedRow(); ok {
		p.selectedMillis = r.TotalMillis
		return
	}
	p.selectedMillis = p.totalMillis
}
