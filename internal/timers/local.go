package timers

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Local runs short same-process delays keyed by string. Scheduling
// under an existing key replaces the prior timer. Callback panics are
// caught and logged, never propagated into the timer goroutine's
// runtime.
type Local struct {
	clock clockwork.Clock

	mu     sync.Mutex
	timers map[string]*localEntry
}

type localEntry struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

func NewLocal(clock clockwork.Clock) *Local {
	return &Local{
		clock:  clock,
		timers: make(map[string]*localEntry),
	}
}

// Schedule arms fn to run after delay. An existing timer under the same
// key is cancelled first.
func (l *Local) Schedule(key string, delay time.Duration, fn func()) {
	entry := &localEntry{
		timer:  l.clock.NewTimer(delay),
		cancel: make(chan struct{}),
	}

	l.mu.Lock()
	if existing, ok := l.timers[key]; ok {
		close(existing.cancel)
		stopAndDrainTimer(existing.timer)
	}
	l.timers[key] = entry
	l.mu.Unlock()

	go func() {
		select {
		case <-entry.timer.Chan():
			l.remove(key, entry)
			runSafely(key, fn)
		case <-entry.cancel:
			stopAndDrainTimer(entry.timer)
		}
	}()
}

// Clear cancels the timer under key, if any. Idempotent.
func (l *Local) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.timers[key]; ok {
		close(entry.cancel)
		stopAndDrainTimer(entry.timer)
		delete(l.timers, key)
	}
}

// remove drops the entry only if it is still the current one for the
// key; a replacement scheduled while the callback raced stays armed.
func (l *Local) remove(key string, entry *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.timers[key]; ok && current == entry {
		delete(l.timers, key)
	}
}

func runSafely(key string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("timer_key", key).Any("panic", r).Msg("timer callback panicked")
		}
	}()
	fn()
}

// stopAndDrainTimer safely stops a timer and drains its channel to
// prevent goroutine leaks, per the time.Timer.Stop documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
