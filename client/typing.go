package client

import (
	"sort"
	"sync"
	"time"
)

// DefaultTypingTTL is how long a typer stays shown with no further events.
// The relay is at-most-once, so a lost stop event must not wedge the
// indicator; expiry is the compensating control.
const DefaultTypingTTL = 2 * time.Second

type typer struct {
	expire *time.Timer
}

// TypingTracker aggregates who is currently typing. Each typer holds its own
// timer handle, replaced atomically on every event, never shared closures.
type TypingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	typers   map[string]*typer
	onChange func([]string)
}

// NewTypingTracker reports every change of the active set through onChange,
// which may be nil. A non-positive ttl falls back to DefaultTypingTTL.
func NewTypingTracker(ttl time.Duration, onChange func([]string)) *TypingTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingTracker{ttl: ttl, typers: make(map[string]*typer), onChange: onChange}
}

// Set records a typing event for name. True starts or extends the typer's
// expiry window; false clears immediately.
func (t *TypingTracker) Set(name string, typing bool) {
	t.mu.Lock()
	existing, present := t.typers[name]
	if present {
		existing.expire.Stop()
	}
	if !typing {
		delete(t.typers, name)
		t.mu.Unlock()
		if present {
			t.notify()
		}
		return
	}
	t.typers[name] = &typer{expire: time.AfterFunc(t.ttl, func() { t.expired(name) })}
	t.mu.Unlock()
	if !present {
		t.notify()
	}
}

func (t *TypingTracker) expired(name string) {
	t.mu.Lock()
	_, present := t.typers[name]
	delete(t.typers, name)
	t.mu.Unlock()
	if present {
		t.notify()
	}
}

// Active returns the current typers, sorted for stable presentation.
func (t *TypingTracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked()
}

func (t *TypingTracker) activeLocked() []string {
	names := make([]string, 0, len(t.typers))
	for name := range t.typers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *TypingTracker) notify() {
	if t.onChange == nil {
		return
	}
	t.mu.Lock()
	names := t.activeLocked()
	t.mu.Unlock()
	t.onChange(names)
}

// Stop cancels every pending expiry. The tracker is dead afterwards.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, record := range t.typers {
		record.expire.Stop()
		delete(t.typers, name)
	}
}
