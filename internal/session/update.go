package session

import (
	"time"

	"timeclock/internal/event"
)

// UpdateKind names a session transition.
type UpdateKind string

const (
	UpdateStarted          UpdateKind = "started"
	UpdateResumed          UpdateKind = "resumed"
	UpdateTick             UpdateKind = "tick"
	UpdateStopped          UpdateKind = "stopped"
	UpdateCancelled        UpdateKind = "cancelled"
	UpdateCountdownWarning UpdateKind = "countdown_warning"
	UpdateCompleted        UpdateKind = "completed"
)

// Update is published to session observers after every transition and tick.
type Update struct {
	Kind             UpdateKind
	Event            event.Event
	ElapsedSeconds   int64
	RemainingSeconds int64
	At               time.Time
}
