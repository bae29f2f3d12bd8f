package workflow

import (
	"errors"
	"testing"
	"time"

	"fieldforce-system/internal/database/models"
)

func TestTransition(t *testing.T) {
	statuses := []models.RequestStatus{models.RequestPending, models.RequestApproved, models.RequestRejected}
	for _, from := range statuses {
		for _, to := range statuses {
			err := Transition(from, to)
			allowed := from == models.RequestPending && to != models.RequestPending
			if allowed && err != nil {
				t.Errorf("%s -> %s should be allowed, got %v", from, to, err)
			}
			if !allowed && err == nil {
				t.Errorf("%s -> %s should be rejected", from, to)
			}
		}
	}
	if err := Transition(models.RequestApproved, models.RequestRejected); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if err := Transition("draft", models.RequestApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyPasswordOnce(t *testing.T) {
	r := &models.PasswordChangeRequest{ID: 1, Reason: "Forgot current password", Status: models.RequestPending}
	at := time.Date(2024, 1, 23, 10, 0, 0, 0, time.UTC)

	if err := ApplyPassword(r, Review{Decision: Approve, ReviewerID: 1, Note: "  ok  ", At: at}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if r.Status != models.RequestApproved || r.AdminNote != "ok" || *r.ReviewedBy != 1 || !r.ReviewedAt.Equal(at) {
		t.Fatalf("unexpected request after approval: %+v", r)
	}
	if err := ApplyPassword(r, Review{Decision: Reject, ReviewerID: 1, At: at}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if r.Status != models.RequestApproved {
		t.Fatalf("status changed after refused transition: %s", r.Status)
	}
}

func TestApplyManualReject(t *testing.T) {
	r := &models.ManualAttendanceRequest{ID: 2, Status: models.RequestPending}
	if err := ApplyManual(r, Review{Decision: Reject, ReviewerID: 1, Note: "Please check in next time"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if r.Status != models.RequestRejected || r.AdminNote != "Please check in next time" {
		t.Fatalf("unexpected request: %+v", r)
	}
}

func TestCountPending(t *testing.T) {
	reqs := []models.PasswordChangeRequest{
		{Status: models.RequestPending},
		{Status: models.RequestApproved},
		{Status: models.RequestPending},
	}
	got := CountPending(reqs, func(r models.PasswordChangeRequest) models.RequestStatus { return r.Status })
	if got != 2 {
		t.Fatalf("expected 2 pending, got %d", got)
	}
}

func TestParseDecision(t *testing.T) {
	if d, err := ParseDecision(" Approve "); err != nil || d != Approve {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := ParseDecision("maybe"); !errors.Is(err, ErrUnknownDecision) {
		t.Fatalf("expected ErrUnknownDecision, got %v", err)
	}
}
