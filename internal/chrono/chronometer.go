// Package chrono provides the repeating, cancelable tick source that drives
// live elapsed and countdown displays.
package chrono

import (
	"sync"
	"time"
)

// DefaultFrequency is the tick period used by New when none is given.
const DefaultFrequency = time.Second

// Chronometer delivers a notification to a single listener after an initial
// delay and then once per frequency until stopped. Ticks for one
// Chronometer are never delivered concurrently, and Stop may be called from
// inside the listener.
type Chronometer struct {
	mu        sync.Mutex
	frequency time.Duration
	listener  func()
	running   bool
	stopChan  chan struct{}

	// held while a listener runs so a restarted loop cannot overlap it
	deliver sync.Mutex
}

func New(frequency time.Duration) *Chronometer {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	return &Chronometer{
		frequency: frequency,
		stopChan:  make(chan struct{}),
	}
}

// SetTickListener replaces the tick callback. Scheduling is unaffected.
func (c *Chronometer) SetTickListener(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

// Frequency returns the tick period.
func (c *Chronometer) Frequency() time.Duration {
	return c.frequency
}

// Start schedules the first tick after initialDelay. Starting a running
// Chronometer restarts the schedule from now.
func (c *Chronometer) Start(initialDelay time.Duration) {
	if initialDelay < 0 {
		initialDelay = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
	}
	c.running = true
	c.stopChan = make(chan struct{})

	go c.run(c.stopChan, initialDelay)
}

// Stop cancels every pending tick. It is idempotent.
func (c *Chronometer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.running = false
	close(c.stopChan)
	c.stopChan = make(chan struct{})
}

func (c *Chronometer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Chronometer) run(stop <-chan struct{}, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if !c.fire(stop) {
				return
			}
			// drift after the first tick is tolerated
			timer.Reset(c.frequency)
		}
	}
}

func (c *Chronometer) fire(stop <-chan struct{}) bool {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	select {
	case <-stop:
		return false
	default:
	}

	c.mu.Lock()
	fn := c.listener
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// FindEventStartTimeDelay returns the milliseconds until the next tick
// boundary aligned to startMillis, so a resumed display ticks in phase with
// a scheduler that had been running since startMillis.
func FindEventStartTimeDelay(startMillis, tickFrequencyMillis, nowMillis int64) int64 {
	if tickFrequencyMillis <= 0 {
		tickFrequencyMillis = DefaultFrequency.Milliseconds()
	}
	elapsed := (nowMillis - startMillis) % tickFrequencyMillis
	if elapsed < 0 {
		elapsed += tickFrequencyMillis
	}
	return tickFrequencyMillis - elapsed
}
