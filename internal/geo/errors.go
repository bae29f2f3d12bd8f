package geo

import (
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindUnsupported      ErrorKind = "unsupported"
	KindPermissionDenied ErrorKind = "permission-denied"
	KindUnavailable      ErrorKind = "unavailable"
	KindTimeout          ErrorKind = "timeout"
	KindPolicyRestricted ErrorKind = "policy-restricted"
	KindProcessing       ErrorKind = "processing"
	KindUnknown          ErrorKind = "unknown"
)

// Device error codes as reported by the browser geolocation API.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Description is the human readable failure text shown with fallbacks.
func (k ErrorKind) Description() string {
	switch k {
	case KindUnsupported:
		return "Geolocation not supported by browser"
	case KindPermissionDenied:
		return "Location access denied by user"
	case KindUnavailable:
		return "Location information unavailable"
	case KindTimeout:
		return "Location request timed out"
	case KindPolicyRestricted:
		return "Location disabled by browser security"
	case KindProcessing:
		return "Error processing location data"
	default:
		return "Location service error"
	}
}

// LocationError is a classified location failure.
type LocationError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
	// Preflight marks a denial known before any read was attempted.
	Preflight bool `json:"preflight,omitempty"`
}

func (e *LocationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Description(), e.Message)
	}
	return e.Kind.Description()
}

func NewError(kind ErrorKind, message string) *LocationError {
	return &LocationError{Kind: kind, Message: message}
}

// Classify maps a device error report to a kind. The permissions policy
// message wins over the numeric code.
func Classify(code int, message string) *LocationError {
	e := &LocationError{Code: code, Message: message}
	if strings.Contains(message, "permissions policy") {
		e.Kind = KindPolicyRestricted
		return e
	}
	switch code {
	case CodePermissionDenied:
		e.Kind = KindPermissionDenied
	case CodePositionUnavailable:
		e.Kind = KindUnavailable
	case CodeTimeout:
		e.Kind = KindTimeout
	default:
		e.Kind = KindUnknown
	}
	return e
}
