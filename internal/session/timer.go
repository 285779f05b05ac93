package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTimerRunning is returned by Start while a countdown is active. The
// controller owns the timer exclusively and stops it before every restart,
// so seeing this error means a phase-ownership bug, not a recoverable state.
var ErrTimerRunning = errors.New("timer already running")

// TimerEvent is one second of countdown progress. Expired is set on the
// final event only; Remaining is 0 exactly once per Start.
type TimerEvent struct {
	Gen       int
	Remaining int
	Expired   bool
}

// Timer is a restartable integer-second countdown. Events are delivered to
// the channel supplied at construction; each Start bumps the generation so
// a consumer can discard ticks from a countdown it has already abandoned.
type Timer struct {
	interval time.Duration
	events   chan<- TimerEvent

	mu      sync.Mutex
	gen     int
	stopCh  chan struct{}
	running bool
}

// NewTimer builds a timer ticking at interval (1s in production; tests use
// shorter intervals).
func NewTimer(interval time.Duration, events chan<- TimerEvent) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{interval: interval, events: events}
}

// Start begins counting down from seconds.
func (t *Timer) Start(seconds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrTimerRunning
	}
	if seconds <= 0 {
		return fmt.Errorf("countdown must be positive, got %d", seconds)
	}
	t.gen++
	stop := make(chan struct{})
	t.stopCh = stop
	t.running = true
	go t.run(t.gen, seconds, stop)
	return nil
}

// Stop cancels the countdown early. Idempotent; no expiry is delivered
// after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.running = false
}

// Gen reports the generation of the most recent Start.
func (t *Timer) Gen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Running reports whether a countdown is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) run(gen, seconds int, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			ev := TimerEvent{Gen: gen, Remaining: remaining, Expired: remaining == 0}
			if ev.Expired {
				// Become restartable before delivering expiry: the consumer
				// reacts to expiry by starting the next phase's countdown.
				t.finish(stop)
				select {
				case t.events <- ev:
				case <-stop:
				}
				return
			}
			select {
			case t.events <- ev:
			case <-stop:
				return
			}
		}
	}
}

func (t *Timer) finish(stop chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh == stop {
		t.running = false
	}
}
