package geo

import (
	"fmt"
	"time"

	"fieldforce-system/internal/database/models"
)

// Purpose selects the address wording for the record being created.
type Purpose string

const (
	PurposeAttendance Purpose = "attendance"
	PurposeCustomer   Purpose = "customer"
)

func (p Purpose) Valid() bool { return p == PurposeAttendance || p == PurposeCustomer }

const NoticeDuration = 5 * time.Second

// Notice is a transient message for the user.
type Notice struct {
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Fix is the location value attached to a new record.
type Fix struct {
	Location models.CapturedLocation `json:"location"`
	Fallback bool                    `json:"fallback"`
	Err      *LocationError          `json:"error,omitempty"`
	Notice   *Notice                 `json:"notice,omitempty"`
}

type Policy struct {
	Fallback Coordinates
}

func DefaultPolicy() Policy {
	return Policy{Fallback: Coordinates{Latitude: 40.7128, Longitude: -74.0060}}
}

// Apply always yields a location. Failures get the fallback coordinate and
// an address naming the reason.
func (p Policy) Apply(purpose Purpose, r Result, now time.Time) Fix {
	if r.OK() {
		at := r.Coords.CapturedAt
		if at.IsZero() {
			at = now
		}
		return Fix{Location: models.CapturedLocation{
			Latitude:  r.Coords.Latitude,
			Longitude: r.Coords.Longitude,
			Address:   successAddress(purpose, r.Coords),
			Timestamp: at.UTC().Format(time.RFC3339),
		}}
	}

	fix := Fix{
		Location: models.CapturedLocation{
			Latitude:  p.Fallback.Latitude,
			Longitude: p.Fallback.Longitude,
			Address:   fallbackAddress(purpose, r.Err),
			Timestamp: now.UTC().Format(time.RFC3339),
		},
		Fallback: true,
		Err:      r.Err,
	}
	if r.Err.Kind == KindPolicyRestricted {
		fix.Notice = &Notice{Message: restrictedNotice(purpose), Duration: NoticeDuration}
	}
	return fix
}

func successAddress(purpose Purpose, c Coordinates) string {
	if purpose == PurposeCustomer {
		return fmt.Sprintf("Recorded at: %.4f, %.4f - Current Location", c.Latitude, c.Longitude)
	}
	return fmt.Sprintf("%.4f, %.4f - Business Area", c.Latitude, c.Longitude)
}

func fallbackAddress(purpose Purpose, err *LocationError) string {
	var addr string
	switch {
	case err.Kind == KindUnsupported:
		addr = KindUnsupported.Description()
	case err.Kind == KindPermissionDenied && err.Preflight:
		addr = "Location access denied - using fallback"
	case err.Kind == KindProcessing:
		addr = KindProcessing.Description()
	case err.Kind == KindPolicyRestricted:
		addr = "Default Business Location (Location restricted)"
	case purpose == PurposeCustomer:
		return fmt.Sprintf("Recorded at: Fallback location (%s)", err.Kind.Description())
	default:
		return "Fallback location - " + err.Kind.Description()
	}
	if purpose == PurposeCustomer {
		return "Recorded at: " + addr
	}
	return addr
}

func restrictedNotice(purpose Purpose) string {
	target := "tracking"
	if purpose == PurposeCustomer {
		target = "customer registration"
	}
	return "Location access restricted by browser security. App will use fallback location for " + target + "."
}
