package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/notify"
	"fieldforce-system/internal/workflow"
)

const (
	KindManual   = "attendance"
	KindPassword = "password"

	requestClockLayout = "15:04"
	minPasswordLength  = 6
)

type RequestService struct {
	*Deps

	// reviewMu serialises read-decide-write on a request.
	reviewMu sync.Mutex
}

type NewManualRequest struct {
	Date     string `json:"date" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Location string `json:"location"`
}

type NewPasswordRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PasswordChange struct {
	Current string `json:"current_password" binding:"required"`
	New     string `json:"new_password" binding:"required"`
	Confirm string `json:"confirm_password" binding:"required"`
}

// PendingCounts backs the approval badges.
type PendingCounts struct {
	Attendance int `json:"attendance"`
	Password   int `json:"password"`
	Total      int `json:"total"`
}

func (s *RequestService) SubmitManual(ctx context.Context, actor models.User, in NewManualRequest) (models.ManualAttendanceRequest, error) {
	if err := access.Check(access.SubmitRequest, actor, actor.ID); err != nil {
		return models.ManualAttendanceRequest{}, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Date == "" || in.CheckIn == "" || in.CheckOut == "" || in.Reason == "" {
		return models.ManualAttendanceRequest{}, invalid("Please fill in all required fields")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return models.ManualAttendanceRequest{}, invalid("Date must be in YYYY-MM-DD format")
	}
	in.CheckIn, in.CheckOut = normalizeClock(in.CheckIn), normalizeClock(in.CheckOut)
	if in.CheckIn == "" || in.CheckOut == "" {
		return models.ManualAttendanceRequest{}, invalid("Check-in and check-out must be times like 09:00")
	}

	r := models.ManualAttendanceRequest{
		EmployeeID:    actor.ID,
		EmployeeName:  actor.Name,
		EmployeeEmail: actor.Email,
		Date:          in.Date,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		Reason:        in.Reason,
		Status:        models.RequestPending,
		RequestDate:   s.today(),
		Location:      strings.TrimSpace(in.Location),
	}
	if err := s.Store.CreateManualRequest(ctx, &r); err != nil {
		return models.ManualAttendanceRequest{}, err
	}
	s.invalidate(ctx, actor.ID)
	s.Notifier.Notify(ctx, notify.Event{Kind: notify.ManualRequestSubmitted, Subject: r.EmployeeName, Detail: r.Date + " " + r.Reason})

	if s.settings(ctx).AutoApproveAttendance {
		return s.decideManual(ctx, r.ID, workflow.Review{Decision: workflow.Approve, Note: "Auto-approved", At: s.Now()})
	}
	return r, nil
}

func normalizeClock(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range []string{requestClockLayout, clockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(requestClockLayout)
		}
	}
	return ""
}

func (s *RequestService) ListManual(ctx context.Context, actor models.User, employeeID int64) ([]models.ManualAttendanceRequest, error) {
	action := access.ReadOwned
	if employeeID == 0 {
		action = access.ReviewRequests
	}
	if err := access.Check(action, actor, employeeID); err != nil {
		return nil, err
	}
	out, err := s.Store.ListManualRequests(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list manual requests: %w", err)
	}
	return out, nil
}

func (s *RequestService) SubmitPassword(ctx context.Context, actor models.User, in NewPasswordRequest) (models.PasswordChangeRequest, error) {
	if err := access.Check(access.SubmitRequest, actor, actor.ID); err != nil {
		return models.PasswordChangeRequest{}, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return models.PasswordChangeRequest{}, invalid("Please provide a reason")
	}
	r := models.PasswordChangeRequest{
		EmployeeID:    actor.ID,
		EmployeeName:  actor.Name,
		EmployeeEmail: actor.Email,
		RequestDate:   s.today(),
		Reason:        in.Reason,
		Status:        models.RequestPending,
	}
	if err := s.Store.CreatePasswordRequest(ctx, &r); err != nil {
		return models.PasswordChangeRequest{}, err
	}
	s.invalidate(ctx)
	s.Notifier.Notify(ctx, notify.Event{Kind: notify.PasswordRequestSubmitted, Subject: r.EmployeeName, Detail: r.Reason})
	return r, nil
}

func (s *RequestService) ListPassword(ctx context.Context, actor models.User, employeeID int64) ([]models.PasswordChangeRequest, error) {
	action := access.ReadOwned
	if employeeID == 0 {
		action = access.ReviewRequests
	}
	if err := access.Check(action, actor, employeeID); err != nil {
		return nil, err
	}
	out, err := s.Store.ListPasswordRequests(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list password requests: %w", err)
	}
	return out, nil
}

// ReviewManual decides a manual attendance request. Approval also writes
// the attendance record the employee asked for.
func (s *RequestService) ReviewManual(ctx context.Context, actor models.User, id int64, decision workflow.Decision, note string) (models.ManualAttendanceRequest, error) {
	if err := access.Check(access.ReviewRequests, actor, 0); err != nil {
		return models.ManualAttendanceRequest{}, err
	}
	return s.decideManual(ctx, id, workflow.Review{Decision: decision, ReviewerID: actor.ID, Note: note, At: s.Now()})
}

// decideManual writes the approved attendance record before the request
// leaves pending, so a failed write leaves the request reviewable.
func (s *RequestService) decideManual(ctx context.Context, id int64, rv workflow.Review) (models.ManualAttendanceRequest, error) {
	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()

	r, err := s.Store.GetManualRequest(ctx, id)
	if err != nil {
		return models.ManualAttendanceRequest{}, err
	}
	if err := workflow.ApplyManual(&r, rv); err != nil {
		return models.ManualAttendanceRequest{}, err
	}
	if r.Status == models.RequestApproved {
		rec := manualRecord(r, s.shiftStart(ctx))
		if err := s.Store.CreateAttendance(ctx, &rec); err != nil {
			return models.ManualAttendanceRequest{}, fmt.Errorf("record approved attendance: %w", err)
		}
	}
	if err := s.Store.UpdateManualRequest(ctx, &r); err != nil {
		return models.ManualAttendanceRequest{}, err
	}

	s.Metrics.ObserveReview(KindManual, string(rv.Decision))
	s.invalidate(ctx, r.EmployeeID)
	s.Notifier.Notify(ctx, notify.Event{Kind: notify.ManualRequestReviewed, Subject: r.EmployeeName, Detail: string(r.Status)})
	return r, nil
}

func manualRecord(r models.ManualAttendanceRequest, shiftStart int) models.AttendanceRecord {
	rec := models.AttendanceRecord{
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Date:         r.Date,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		Status:       models.AttendancePresent,
		Location:     r.Location,
		IsManual:     true,
		ManualReason: r.Reason,
	}
	in, errIn := time.Parse(requestClockLayout, r.CheckIn)
	out, errOut := time.Parse(requestClockLayout, r.CheckOut)
	if errIn != nil || errOut != nil {
		return rec
	}
	rec.CheckIn = in.Format(clockLayout)
	rec.CheckOut = out.Format(clockLayout)
	rec.WorkingHours = FormatWorkingHours(out.Sub(in))
	if in.Hour()*60+in.Minute() > shiftStart {
		rec.Status = models.AttendanceLate
	}
	return rec
}

func (s *RequestService) ReviewPassword(ctx context.Context, actor models.User, id int64, decision workflow.Decision, note string) (models.PasswordChangeRequest, error) {
	if err := access.Check(access.ReviewRequests, actor, 0); err != nil {
		return models.PasswordChangeRequest{}, err
	}
	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()

	r, err := s.Store.GetPasswordRequest(ctx, id)
	if err != nil {
		return models.PasswordChangeRequest{}, err
	}
	if err := workflow.ApplyPassword(&r, workflow.Review{Decision: decision, ReviewerID: actor.ID, Note: note, At: s.Now()}); err != nil {
		return models.PasswordChangeRequest{}, err
	}
	if err := s.Store.UpdatePasswordRequest(ctx, &r); err != nil {
		return models.PasswordChangeRequest{}, err
	}

	s.Metrics.ObserveReview(KindPassword, string(decision))
	s.invalidate(ctx)
	s.Notifier.Notify(ctx, notify.Event{Kind: notify.PasswordRequestReviewed, Subject: r.EmployeeName, Detail: string(r.Status)})
	return r, nil
}

// Pending recomputes the badge counts from the full request lists.
func (s *RequestService) Pending(ctx context.Context, actor models.User) (PendingCounts, error) {
	if err := access.Check(access.ReviewRequests, actor, 0); err != nil {
		return PendingCounts{}, err
	}
	var counts PendingCounts
	if s.Cache.Get(ctx, cache.PENDING_COUNT_CACHE_KEY, &counts) {
		return counts, nil
	}

	manual, err := s.Store.ListManualRequests(ctx, 0)
	if err != nil {
		return PendingCounts{}, fmt.Errorf("list manual requests: %w", err)
	}
	passwords, err := s.Store.ListPasswordRequests(ctx, 0)
	if err != nil {
		return PendingCounts{}, fmt.Errorf("list password requests: %w", err)
	}
	counts.Attendance = workflow.CountPending(manual, func(r models.ManualAttendanceRequest) models.RequestStatus { return r.Status })
	counts.Password = workflow.CountPending(passwords, func(r models.PasswordChangeRequest) models.RequestStatus { return r.Status })
	counts.Total = counts.Attendance + counts.Password

	s.Metrics.SetPending(KindManual, counts.Attendance)
	s.Metrics.SetPending(KindPassword, counts.Password)
	s.Cache.Set(ctx, cache.PENDING_COUNT_CACHE_KEY, counts, cache.CACHE_TTL_SHORT)
	return counts, nil
}

// ChangeOwnPassword lets an admin replace their own password directly.
func (s *RequestService) ChangeOwnPassword(ctx context.Context, actor models.User, in PasswordChange) error {
	if !actor.IsAdmin() {
		return access.ErrForbidden
	}
	if in.New != in.Confirm {
		return invalid("New passwords don't match")
	}
	if len(in.New) < minPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	cred, err := s.Store.FindCredential(ctx, actor.Email)
	if err != nil {
		return fmt.Errorf("find credential: %w", err)
	}
	if cred.Password != in.Current {
		return invalid("Current password is incorrect")
	}
	cred.Password = in.New
	return s.Store.SaveCredential(ctx, &cred)
}
