// Package notify raises user-facing alerts for clock session transitions.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"timeclock/internal/logging"
	"timeclock/internal/timeconv"
)

// Notifier is told about session transitions. Errors are reported to the
// caller for logging only.
type Notifier interface {
	NotifyTimerComplete() error
	NotifyCountdownWarning(remaining time.Duration) error
	CancelInProgressNotification() error
}

// Terminal rings the terminal bell and records each alert in the log.
type Terminal struct {
	out io.Writer
	log *slog.Logger
}

func NewTerminal(out io.Writer, logger *slog.Logger) *Terminal {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Terminal{out: out, log: logger.With(slog.String("component", "notifier"))}
}

func (t *Terminal) NotifyTimerComplete() error {
	t.log.Info("timer_complete")
	return t.bell()
}

func (t *Terminal) NotifyCountdownWarning(remaining time.Duration) error {
	t.log.Info("countdown_warning", slog.String("remaining", timeconv.FormatStopwatch(remaining.Milliseconds())))
	return t.bell()
}

func (t *Terminal) CancelInProgressNotification() error {
	t.log.Debug("notification_cancelled")
	return nil
}

func (t *Terminal) bell() error {
	if _, err := fmt.Fprint(t.out, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) NotifyTimerComplete() error { return nil }
func (Nop) NotifyCountdownWarning(time.Duration) error { return nil }
func (Nop) CancelInProgressNotification() error { return nil }
