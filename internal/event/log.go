package event

import (
	"context"
	"fmt"
	"log/slog"

	"timeclock/internal/logging"
	"timeclock/internal/observe"
)

// Log is the in-memory, newest-first view of the events held by a Store.
// Every mutation is written to the Store first and applied in memory only
// once the write succeeds. A Log is not safe for concurrent use.
type Log struct {
	store   Store
	log     *slog.Logger
	events  []Event
	changed observe.Subject[[]Event]
}

func NewLog(store Store, logger *slog.Logger) *Log {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Log{
		store: store,
		log:   logger.With(slog.String("component", "event_log")),
	}
}

// Load replaces the in-memory events with the Store's contents.
func (l *Log) Load(ctx context.Context) error {
	events, err := l.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	l.events = events
	l.log.Info("events_loaded", slog.Int("count", len(events)))
	l.publish()
	return nil
}

// Events returns a copy of the events, newest first.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Subscribe registers fn to receive the event list after every change.
func (l *Log) Subscribe(fn func([]Event)) (cancel func()) {
	return l.changed.Subscribe(fn)
}

func (l *Log) Insert(ctx context.Context, e Event) error {
	if err := l.store.Insert(ctx, e); err != nil {
		return err
	}
	l.place(e)
	l.publish()
	return nil
}

// Update rewrites an existing event. An event the Store has but memory
// lacks is added to memory.
func (l *Log) Update(ctx context.Context, e Event) error {
	if err := l.store.Update(ctx, e); err != nil {
		return err
	}
	if idx := l.indexOf(e.ID); idx >= 0 && l.events[idx].StartTime == e.StartTime {
		l.events[idx] = e
	} else {
		if idx >= 0 {
			l.events = append(l.events[:idx], l.events[idx+1:]...)
		}
		l.place(e)
	}
	l.publish()
	return nil
}

func (l *Log) Delete(ctx context.Context, id string) error {
	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}
	if idx := l.indexOf(id); idx >= 0 {
		l.events = append(l.events[:idx], l.events[idx+1:]...)
	}
	l.log.Info("event_deleted", slog.String("id", id))
	l.publish()
	return nil
}

func (l *Log) MostRecentOpen(ctx context.Context) (Event, bool, error) {
	return l.store.MostRecentOpen(ctx)
}

// place inserts e keeping newest-first order. Among equal start times the
// newest insert comes first, as in the Store.
func (l *Log) place(e Event) {
	l.events = append(l.events, Event{})
	idx := len(l.events) - 1
	for idx > 0 && l.events[idx-1].StartTime <= e.StartTime {
		l.events[idx] = l.events[idx-1]
		idx--
	}
	l.events[idx] = e
}

func (l *Log) indexOf(id string) int {
	for i, e := range l.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Log) publish() {
	l.changed.Publish(l.Events())
}
