// Package geo captures device location and turns every outcome, success or
// failure, into a usable location value.
package geo

import (
	"context"
	"errors"
	"math"
	"time"
)

type Coordinates struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

func (c Coordinates) valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Options bound a single location read.
type Options struct {
	Timeout      time.Duration
	MaxAge       time.Duration
	HighAccuracy bool
}

func DefaultOptions() Options {
	return Options{Timeout: 10 * time.Second, MaxAge: 60 * time.Second, HighAccuracy: true}
}

// Request identifies who asks for a reading.
type Request struct {
	Session string
	Purpose Purpose
	Options Options
}

// Locator is the host location capability.
type Locator interface {
	Locate(ctx context.Context, req Request) (Coordinates, error)
}

type LocatorFunc func(ctx context.Context, req Request) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context, req Request) (Coordinates, error) {
	return f(ctx, req)
}

// Result is either coordinates or a classified error, never both.
type Result struct {
	Coords Coordinates
	Err    *LocationError
}

func Ok(c Coordinates) Result { return Result{Coords: c} }

func Failed(err *LocationError) Result { return Result{Err: err} }

func (r Result) OK() bool { return r.Err == nil }

// Resolve performs one bounded read. A nil locator means the capability is
// absent.
func Resolve(ctx context.Context, loc Locator, req Request) Result {
	if loc == nil {
		return Failed(NewError(KindUnsupported, ""))
	}
	if req.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Options.Timeout)
		defer cancel()
	}

	coords, err := loc.Locate(ctx, req)
	if err != nil {
		var le *LocationError
		switch {
		case errors.As(err, &le):
			return Failed(le)
		case errors.Is(err, context.DeadlineExceeded):
			return Failed(&LocationError{Kind: KindTimeout, Code: CodeTimeout})
		default:
			return Failed(NewError(KindUnknown, err.Error()))
		}
	}
	if !coords.valid() {
		return Failed(NewError(KindProcessing, "coordinates out of range"))
	}
	if coords.CapturedAt.IsZero() {
		coords.CapturedAt = time.Now()
	}
	return Ok(coords)
}
