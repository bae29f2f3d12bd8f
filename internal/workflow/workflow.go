// Package workflow is the review state machine shared by manual attendance
// and password change requests.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldforce-system/internal/database/models"
)

var (
	ErrInvalidTransition = errors.New("invalid request status transition")
	ErrAlreadyReviewed   = errors.New("request has already been reviewed")
	ErrUnknownDecision   = errors.New("unknown review decision")
)

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case Approve, Reject:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecision, s)
}

func (d Decision) Target() (models.RequestStatus, error) {
	switch d {
	case Approve:
		return models.RequestApproved, nil
	case Reject:
		return models.RequestRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecision, d)
}

// Transition allows pending→approved and pending→rejected only.
func Transition(from, to models.RequestStatus) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if from != models.RequestPending {
		return ErrAlreadyReviewed
	}
	if to == models.RequestPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Review is one admin decision with its optional note.
type Review struct {
	Decision   Decision
	ReviewerID int64
	Note       string
	At         time.Time
}

// ApplyManual moves a manual attendance request to its terminal state.
func ApplyManual(r *models.ManualAttendanceRequest, rv Review) error {
	to, err := rv.Decision.Target()
	if err != nil {
		return err
	}
	if err := Transition(r.Status, to); err != nil {
		return err
	}
	r.Status = to
	r.AdminNote = strings.TrimSpace(rv.Note)
	r.ReviewedBy = &rv.ReviewerID
	at := rv.At
	r.ReviewedAt = &at
	return nil
}

// ApplyPassword moves a password change request to its terminal state.
func ApplyPassword(r *models.PasswordChangeRequest, rv Review) error {
	to, err := rv.Decision.Target()
	if err != nil {
		return err
	}
	if err := Transition(r.Status, to); err != nil {
		return err
	}
	r.Status = to
	r.AdminNote = strings.TrimSpace(rv.Note)
	r.ReviewedBy = &rv.ReviewerID
	at := rv.At
	r.ReviewedAt = &at
	return nil
}

// CountPending counts items whose status is pending.
func CountPending[T any](items []T, status func(T) models.RequestStatus) int {
	n := 0
	for _, it := range items {
		if status(it) == models.RequestPending {
			n++
		}
	}
	return n
}
