package event

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports that no event exists with the requested id.
	ErrNotFound = errors.New("event not found")
	// ErrInvalidEvent reports an event with an empty name or an end before its start.
	ErrInvalidEvent = errors.New("invalid event")
)

// Event is one recorded or in-progress task interval. StartTime and
// EndTime are epoch milliseconds; an event is running while they are equal.
type Event struct {
	ID        string
	Name      string
	StartTime int64
	EndTime   int64
}

// NewRunning creates an open event for name starting at now.
func NewRunning(name string, now time.Time) Event {
	ms := now.UnixMilli()
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: ms,
		EndTime:   ms,
	}
}

func (e Event) Running() bool {
	return e.EndTime == e.StartTime
}

// Duration is the recorded interval in milliseconds.
func (e Event) Duration() int64 {
	return e.EndTime - e.StartTime
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.Join(ErrInvalidEvent, errors.New("name must not be empty"))
	}
	if e.EndTime < e.StartTime {
		return errors.Join(ErrInvalidEvent, errors.New("end time before start time"))
	}
	return nil
}
