package geo

import (
	"context"
	"log"
	"sync"
	"time"
)

// Key scopes tracked location to one session and purpose.
type Key struct {
	Session string
	Purpose Purpose
}

// Snapshot is the observable tracking state for one key.
type Snapshot struct {
	Locating bool           `json:"locating"`
	Fix      *Fix           `json:"fix,omitempty"`
	Err      *LocationError `json:"error,omitempty"`
	Notice   *Notice        `json:"notice,omitempty"`
}

// Ready reports whether actions that need a location may proceed.
func (s Snapshot) Ready() bool { return !s.Locating && s.Fix != nil }

type trackEntry struct {
	gen     uint64
	snap    Snapshot
	fixedAt time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

func (e *trackEntry) finish() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// Tracker runs location reads in the background and keeps the latest value
// per key. A result is applied only while its generation is current.
type Tracker struct {
	mu      sync.Mutex
	locator Locator
	policy  Policy
	opts    Options
	entries map[Key]*trackEntry
	gen     uint64
	now     func() time.Time
}

func NewTracker(locator Locator, policy Policy, opts Options) *Tracker {
	return &Tracker{
		locator: locator,
		policy:  policy,
		opts:    opts,
		entries: make(map[Key]*trackEntry),
		now:     time.Now,
	}
}

// Refresh starts a read unless a real fix younger than MaxAge exists.
// Fallback values are always re-requested.
func (t *Tracker) Refresh(key Key) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &trackEntry{done: make(chan struct{})}
		close(e.done)
		t.entries[key] = e
	}
	if !e.snap.Locating && e.snap.Fix != nil && !e.snap.Fix.Fallback &&
		t.opts.MaxAge > 0 && t.now().Sub(e.fixedAt) < t.opts.MaxAge {
		return e.snap
	}

	e.finish()
	// Generations never repeat for a key, even after Forget.
	t.gen++
	e.gen = t.gen
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.snap.Locating = true

	req := Request{Session: key.Session, Purpose: key.Purpose, Options: t.opts}
	go func() {
		result := Resolve(ctx, t.locator, req)
		t.apply(key, gen, result)
	}()
	return e.snap
}

func (t *Tracker) apply(key Key, gen uint64, result Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || e.gen != gen {
		log.Printf("Dropping stale location result for session %s (%s)", key.Session, key.Purpose)
		return
	}

	now := t.now()
	fix := t.policy.Apply(key.Purpose, result, now)
	if fix.Err != nil {
		log.Printf("Location error for session %s (%s): %v", key.Session, key.Purpose, fix.Err)
	}
	e.snap = Snapshot{Fix: &fix, Err: fix.Err, Notice: fix.Notice}
	e.fixedAt = now
	e.finish()
}

// Snapshot returns the current state without starting a read.
func (t *Tracker) Snapshot(key Key) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		return e.snap
	}
	return Snapshot{}
}

// Await blocks until the outstanding read for key settles.
func (t *Tracker) Await(ctx context.Context, key Key) (Snapshot, error) {
	for {
		t.mu.Lock()
		e, ok := t.entries[key]
		if !ok {
			t.mu.Unlock()
			return Snapshot{}, nil
		}
		if !e.snap.Locating {
			snap := e.snap
			t.mu.Unlock()
			return snap, nil
		}
		done := e.done
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-done:
		}
	}
}

// Forget drops state for key. An in-flight read is cancelled and its result
// discarded.
func (t *Tracker) Forget(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		e.finish()
		delete(t.entries, key)
	}
}

// ForgetSession drops every purpose tracked for a session.
func (t *Tracker) ForgetSession(session string) {
	for _, p := range []Purpose{PurposeAttendance, PurposeCustomer} {
		t.Forget(Key{Session: session, Purpose: p})
	}
}
