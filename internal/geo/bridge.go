package geo

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoPendingRequest = errors.New("no pending location request for session")

// Reading is what a client device reports back: coordinates, or the reason
// it could not produce them.
type Reading struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Accuracy     float64  `json:"accuracy"`
	Unsupported  bool     `json:"unsupported"`
	Permission   string   `json:"permission"`
	ErrorCode    int      `json:"error_code"`
	ErrorMessage string   `json:"error_message"`
}

// outcome converts a reading into coordinates or a classified error.
func (r Reading) outcome(now time.Time) (Coordinates, error) {
	switch {
	case r.Unsupported:
		return Coordinates{}, NewError(KindUnsupported, "")
	case r.Permission == "denied":
		return Coordinates{}, &LocationError{Kind: KindPermissionDenied, Code: CodePermissionDenied, Preflight: true}
	case r.ErrorCode != 0 || r.ErrorMessage != "":
		return Coordinates{}, Classify(r.ErrorCode, r.ErrorMessage)
	case r.Latitude == nil || r.Longitude == nil:
		return Coordinates{}, NewError(KindProcessing, "reading carried no coordinates")
	}
	return Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude, Accuracy: r.Accuracy, CapturedAt: now}, nil
}

type bridgeReply struct {
	coords Coordinates
	err    error
}

// DeviceBridge is a Locator served by the signed-in client: Locate parks a
// request until the device posts a Reading for the same session, or the
// read deadline passes.
type DeviceBridge struct {
	mu      sync.Mutex
	pending map[string][]chan bridgeReply
	now     func() time.Time
}

func NewDeviceBridge() *DeviceBridge {
	return &DeviceBridge{pending: make(map[string][]chan bridgeReply), now: time.Now}
}

func (b *DeviceBridge) Locate(ctx context.Context, req Request) (Coordinates, error) {
	ch := make(chan bridgeReply, 1)
	b.mu.Lock()
	b.pending[req.Session] = append(b.pending[req.Session], ch)
	b.mu.Unlock()

	select {
	case reply := <-ch:
		return reply.coords, reply.err
	case <-ctx.Done():
		b.drop(req.Session, ch)
		return Coordinates{}, ctx.Err()
	}
}

func (b *DeviceBridge) drop(session string, ch chan bridgeReply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	waiting := b.pending[session]
	for i, c := range waiting {
		if c == ch {
			waiting = append(waiting[:i], waiting[i+1:]...)
			break
		}
	}
	if len(waiting) == 0 {
		delete(b.pending, session)
	} else {
		b.pending[session] = waiting
	}
}

// Pending reports whether the session has reads waiting for the device.
func (b *DeviceBridge) Pending(session string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending[session]) > 0
}

// Report answers every read waiting on session and returns how many were
// answered.
func (b *DeviceBridge) Report(session string, r Reading) (int, error) {
	b.mu.Lock()
	waiting := b.pending[session]
	delete(b.pending, session)
	b.mu.Unlock()

	if len(waiting) == 0 {
		return 0, ErrNoPendingRequest
	}
	coords, err := r.outcome(b.now())
	for _, ch := range waiting {
		ch <- bridgeReply{coords: coords, err: err}
	}
	return len(waiting), nil
}
