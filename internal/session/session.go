// Package session controls the single running clock: it opens an event on
// start, keeps the live elapsed or remaining time current on every tick,
// and closes the event on stop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timeclock/internal/chrono"
	"timeclock/internal/event"
	"timeclock/internal/logging"
	"timeclock/internal/notify"
	"timeclock/internal/observe"
)

// ErrInvalidState reports an operation the current state forbids, such as
// stopping an idle session.
var ErrInvalidState = errors.New("invalid session state")

// WarningThreshold is how close to the countdown target the warning fires.
const WarningThreshold = time.Minute

// PersistenceError wraps a failed write to the event store. The session
// state is left as it was before the call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Recorder is the part of the event log a session writes to.
type Recorder interface {
	Insert(ctx context.Context, e event.Event) error
	Update(ctx context.Context, e event.Event) error
	Delete(ctx context.Context, id string) error
	MostRecentOpen(ctx context.Context) (event.Event, bool, error)
}

// Ticker is the repeating tick source; *chrono.Chronometer satisfies it.
type Ticker interface {
	Start(initialDelay time.Duration)
	Stop()
}

// Countdown switches the display from counting up to counting down to
// Target (epoch milliseconds).
type Countdown struct {
	Enabled        bool
	Target         int64
	WarningEnabled bool
}

// Session is the state machine Idle -> Running -> Idle. It is not safe
// for concurrent use; ticks must be delivered on the caller's goroutine.
type Session struct {
	recorder      Recorder
	ticker        Ticker
	notifier      notify.Notifier
	now           func() time.Time
	log           *slog.Logger
	tickFrequency time.Duration

	current        *event.Event
	elapsedSeconds int64
	countdown      Countdown
	warned         bool
	updates        observe.Subject[Update]
}

// Option customises a Session.
type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithTickFrequency sets the period used to phase-align a resumed session.
func WithTickFrequency(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tickFrequency = d
		}
	}
}

func WithCountdown(c Countdown) Option {
	return func(s *Session) {
		s.countdown = c
	}
}

func New(recorder Recorder, ticker Ticker, notifier notify.Notifier, opts ...Option) *Session {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Session{
		recorder:      recorder,
		ticker:        ticker,
		notifier:      notifier,
		now:           time.Now,
		log:           logging.Discard(),
		tickFrequency: chrono.DefaultFrequency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "clock_session"))
	return s
}

// Subscribe registers fn to receive every session update.
func (s *Session) Subscribe(fn func(Update)) (cancel func()) {
	return s.updates.Subscribe(fn)
}

func (s *Session) IsRunning() bool {
	return s.current != nil
}

// Current returns the open event, if any.
func (s *Session) Current() (event.Event, bool) {
	if s.current == nil {
		return event.Event{}, false
	}
	return *s.current, true
}

// ElapsedSeconds is the whole seconds since the open event started, as of
// the last start, resume or tick.
func (s *Session) ElapsedSeconds() int64 {
	return s.elapsedSeconds
}

func (s *Session) Countdown() Countdown {
	return s.countdown
}

// SetCountdown changes the countdown settings. The warning is re-armed.
func (s *Session) SetCountdown(c Countdown) {
	s.countdown = c
	s.warned = false
}

// RemainingSeconds is the whole seconds left until the countdown target,
// rounded up and never negative.
func (s *Session) RemainingSeconds() int64 {
	left := s.countdown.Target - s.now().UnixMilli()
	if left <= 0 {
		return 0
	}
	return (left + 999) / 1000
}

// Start opens a new event named name. The event is persisted before the
// session becomes Running. A countdown whose target has already passed is
// disarmed.
func (s *Session) Start(ctx context.Context, name string) error {
	if s.current != nil {
		return fmt.Errorf("start %q while %q is running: %w", name, s.current.Name, ErrInvalidState)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("start: %w", event.ErrInvalidEvent)
	}

	e := event.NewRunning(name, s.now())
	if err := s.recorder.Insert(ctx, e); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}

	if s.countdown.Enabled && s.countdown.Target <= e.StartTime {
		// an expired target would end the new event on its first tick
		s.countdown.Enabled = false
		s.log.Info("countdown_disarmed", slog.String("reason", "target_passed"), slog.Int64("target", s.countdown.Target))
	}

	s.current = &e
	s.elapsedSeconds = 0
	s.warned = false
	s.ticker.Start(0)

	s.log.Info("session_started", slog.String("id", e.ID), slog.String("name", e.Name))
	s.publish(UpdateStarted, e)
	return nil
}

// Resume re-enters Running if the store's newest event is still open, as
// after a process restart. It reports whether a session was resumed.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.current != nil {
		return false, fmt.Errorf("resume while %q is running: %w", s.current.Name, ErrInvalidState)
	}

	e, ok, err := s.recorder.MostRecentOpen(ctx)
	if err != nil {
		return false, fmt.Errorf("find open event: %w", err)
	}
	if !ok {
		return false, nil
	}

	nowMs := s.now().UnixMilli()
	s.current = &e
	s.elapsedSeconds = (nowMs - e.StartTime) / 1000
	s.warned = false

	delay := chrono.FindEventStartTimeDelay(e.StartTime, s.tickFrequency.Milliseconds(), nowMs)
	s.ticker.Start(time.Duration(delay) * time.Millisecond)

	s.log.Info("session_resumed",
		slog.String("id", e.ID),
		slog.String("name", e.Name),
		slog.Int64("elapsed_seconds", s.elapsedSeconds),
		slog.Int64("first_tick_ms", delay),
	)
	s.publish(UpdateResumed, e)
	return true, nil
}

// Stop closes the open event at the current instant and returns it. On a
// failed write the session stays Running.
func (s *Session) Stop(ctx context.Context) (event.Event, error) {
	if s.current == nil {
		return event.Event{}, fmt.Errorf("stop: %w", ErrInvalidState)
	}

	finished := *s.current
	finished.EndTime = s.now().UnixMilli()
	if finished.EndTime <= finished.StartTime {
		// an equal end would read back as still running
		finished.EndTime = finished.StartTime + 1
	}

	if err := s.recorder.Update(ctx, finished); err != nil {
		return event.Event{}, &PersistenceError{Op: "update", Err: err}
	}

	s.ticker.Stop()
	s.current = nil
	s.elapsedSeconds = 0
	s.cancelNotification()

	s.log.Info("session_stopped",
		slog.String("id", finished.ID),
		slog.String("name", finished.Name),
		slog.Int64("duration_ms", finished.Duration()),
	)
	s.publish(UpdateStopped, finished)
	return finished, nil
}

// Cancel discards the open event instead of saving it.
func (s *Session) Cancel(ctx context.Context) error {
	if s.current == nil {
		return fmt.Errorf("cancel: %w", ErrInvalidState)
	}

	discarded := *s.current
	if err := s.recorder.Delete(ctx, discarded.ID); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	s.ticker.Stop()
	s.current = nil
	s.elapsedSeconds = 0
	s.cancelNotification()

	s.log.Info("session_cancelled", slog.String("id", discarded.ID), slog.String("name", discarded.Name))
	s.publish(UpdateCancelled, discarded)
	return nil
}

// Tick recomputes the live display. With a countdown enabled it raises the
// warning once, and when no time remains it stops the session and disarms
// the countdown. Ticks that arrive while Idle are ignored.
func (s *Session) Tick(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	e := *s.current
	s.elapsedSeconds = (s.now().UnixMilli() - e.StartTime) / 1000

	if !s.countdown.Enabled {
		s.publish(UpdateTick, e)
		return nil
	}

	remaining := s.RemainingSeconds()
	if remaining == 0 {
		finished, err := s.Stop(ctx)
		if err != nil {
			return fmt.Errorf("countdown complete: %w", err)
		}
		s.countdown.Enabled = false
		if err := s.notifier.NotifyTimerComplete(); err != nil {
			s.log.Warn("notify_timer_complete_failed", slog.Any("error", err))
		}
		s.publish(UpdateCompleted, finished)
		return nil
	}

	if s.countdown.WarningEnabled && !s.warned && remaining <= int64(WarningThreshold/time.Second) {
		s.warned = true
		if err := s.notifier.NotifyCountdownWarning(time.Duration(remaining) * time.Second); err != nil {
			s.log.Warn("notify_countdown_warning_failed", slog.Any("error", err))
		}
		s.publish(UpdateCountdownWarning, e)
		return nil
	}

	s.publish(UpdateTick, e)
	return nil
}

func (s *Session) cancelNotification() {
	if err := s.notifier.CancelInProgressNotification(); err != nil {
		s.log.Warn("cancel_notification_failed", slog.Any("error", err))
	}
}

func (s *Session) publish(kind UpdateKind, e event.Event) {
	s.updates.Publish(Update{
		Kind:             kind,
		Event:            e,
		ElapsedSeconds:   s.elapsedSeconds,
		RemainingSeconds: s.RemainingSeconds(),
		At:               s.now(),
	})
}
