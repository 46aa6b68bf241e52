package intent

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so the tracker can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

type inflight struct {
	cancel  context.CancelFunc
	started time.Time
	gen     uint64
}

// Tracker supersedes in-flight classifications per session: when a newer
// utterance arrives while an older call is still running, the older call is
// cancelled, since the newer utterance's context is more complete. Entries
// expire after a TTL so an abandoned call never pins the map. State is
// injected, not process-global, so multiple instances behave consistently.
type Tracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	clock    Clock
	gen      uint64
	inflight map[string]inflight
}

// NewTracker creates a Tracker with the given entry TTL and clock.
func NewTracker(ttl time.Duration, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{
		ttl:      ttl,
		clock:    clock,
		inflight: make(map[string]inflight),
	}
}

// Supersede registers a new in-flight call for the key, cancelling any
// previous one that has not finished or expired. The returned release func
// clears this registration; it is a no-op once a newer call has taken the
// key, so an older call finishing late never unregisters its successor.
func (t *Tracker) Supersede(key string, cancel context.CancelFunc) (release func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.purgeLocked()
	if prev, ok := t.inflight[key]; ok {
		prev.cancel()
	}
	t.gen++
	gen := t.gen
	t.inflight[key] = inflight{cancel: cancel, started: t.clock.Now(), gen: gen}
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if cur, ok := t.inflight[key]; ok && cur.gen == gen {
			delete(t.inflight, key)
		}
	}
}

// Active reports whether a live, unexpired call is registered for the key.
func (t *Tracker) Active(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.purgeLocked()
	_, ok := t.inflight[key]
	return ok
}

// purgeLocked drops expired entries. Callers must hold the mutex.
func (t *Tracker) purgeLocked() {
	if t.ttl <= 0 {
		return
	}
	now := t.clock.Now()
	for k, v := range t.inflight {
		if now.Sub(v.started) > t.ttl {
			v.cancel()
			delete(t.inflight, k)
		}
	}
}
