package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/workflow"
)

const clockLayout = "03:04 PM"

var (
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrNotCheckedIn        = errors.New("no open check-in for today")
	ErrFingerprintRequired = errors.New("fingerprint verification is required to check in")
)

type AttendanceService struct {
	*Deps
}

// EmployeeStats summarise one employee's attendance history.
type EmployeeStats struct {
	TotalDays       int `json:"total_days"`
	Present         int `json:"present"`
	Late            int `json:"late"`
	Absent          int `json:"absent"`
	PendingRequests int `json:"pending_requests"`
}

// DayStats summarise every employee for one date.
type DayStats struct {
	Date           string `json:"date"`
	TotalEmployees int    `json:"total_employees"`
	Present        int    `json:"present"`
	Late           int    `json:"late"`
	Absent         int    `json:"absent"`
}

func (s *AttendanceService) ListAll(ctx context.Context, actor models.User, q filter.Query) ([]models.AttendanceRecord, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return nil, err
	}
	all, err := s.Store.ListAttendance(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return filter.Apply(all, filter.Attendance, q), nil
}

func (s *AttendanceService) ListOwned(ctx context.Context, actor models.User, employeeID int64, q filter.Query) ([]models.AttendanceRecord, error) {
	if err := access.Check(access.ReadOwned, actor, employeeID); err != nil {
		return nil, err
	}
	records, err := s.Store.ListAttendance(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return filter.Apply(records, filter.Attendance, q), nil
}

func (s *AttendanceService) todayRecord(ctx context.Context, employeeID int64) (models.AttendanceRecord, bool, error) {
	records, err := s.Store.ListAttendance(ctx, employeeID)
	if err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("list attendance: %w", err)
	}
	today := s.today()
	for _, r := range records {
		if r.Date == today {
			return r, true, nil
		}
	}
	return models.AttendanceRecord{}, false, nil
}

// CheckIn opens today's record for the acting employee using the session's
// current attendance location. Late means after the configured shift start.
func (s *AttendanceService) CheckIn(ctx context.Context, actor models.User, session string, fingerprintVerified bool) (models.AttendanceRecord, error) {
	if err := access.Check(access.CheckIn, actor, actor.ID); err != nil {
		return models.AttendanceRecord{}, err
	}
	existing, found, err := s.todayRecord(ctx, actor.ID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if found && existing.CheckIn != "" && existing.CheckIn != "-" {
		return models.AttendanceRecord{}, ErrAlreadyCheckedIn
	}
	if s.settings(ctx).RequireFingerprint && !fingerprintVerified {
		return models.AttendanceRecord{}, ErrFingerprintRequired
	}
	fix, err := s.currentFix(session, geo.PurposeAttendance)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	now := s.Now()
	status := models.AttendancePresent
	if now.Hour()*60+now.Minute() > s.shiftStart(ctx) {
		status = models.AttendanceLate
	}
	area := fix.Location.Address
	if emp, err := s.Store.GetEmployee(ctx, actor.ID); err == nil && emp.Location != "" {
		area = emp.Location
	}

	r := models.AttendanceRecord{
		ID:                  existing.ID,
		EmployeeID:          actor.ID,
		EmployeeName:        actor.Name,
		Date:                now.Format(dateLayout),
		CheckIn:             now.Format(clockLayout),
		Status:              status,
		Location:            area,
		CheckInLocation:     fix.Location,
		FingerprintVerified: fingerprintVerified,
	}
	if found {
		err = s.Store.UpdateAttendance(ctx, &r)
	} else {
		err = s.Store.CreateAttendance(ctx, &r)
	}
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	s.invalidate(ctx, actor.ID)
	return r, nil
}

// CheckOut closes today's record and fills in the hours worked.
func (s *AttendanceService) CheckOut(ctx context.Context, actor models.User) (models.AttendanceRecord, error) {
	if err := access.Check(access.CheckIn, actor, actor.ID); err != nil {
		return models.AttendanceRecord{}, err
	}
	r, found, err := s.todayRecord(ctx, actor.ID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !found || r.CheckIn == "" || r.CheckIn == "-" || (r.CheckOut != "" && r.CheckOut != "-") {
		return models.AttendanceRecord{}, ErrNotCheckedIn
	}

	now := s.Now()
	in, err := time.ParseInLocation(dateLayout+" "+clockLayout, r.Date+" "+r.CheckIn, now.Location())
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("parse check-in time %q: %w", r.CheckIn, err)
	}
	r.CheckOut = now.Format(clockLayout)
	r.WorkingHours = FormatWorkingHours(now.Sub(in))
	if err := s.Store.UpdateAttendance(ctx, &r); err != nil {
		return models.AttendanceRecord{}, err
	}
	s.invalidate(ctx, actor.ID)
	return r, nil
}

// FormatWorkingHours renders a duration as "9h 30m".
func FormatWorkingHours(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Round(time.Minute) / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func (s *AttendanceService) Stats(ctx context.Context, actor models.User, employeeID int64) (EmployeeStats, error) {
	if err := access.Check(access.ReadOwned, actor, employeeID); err != nil {
		return EmployeeStats{}, err
	}
	key := cache.EmployeeStatsKey(employeeID)
	var stats EmployeeStats
	if s.Cache.Get(ctx, key, &stats) {
		return stats, nil
	}

	records, err := s.Store.ListAttendance(ctx, employeeID)
	if err != nil {
		return EmployeeStats{}, fmt.Errorf("list attendance: %w", err)
	}
	requests, err := s.Store.ListManualRequests(ctx, employeeID)
	if err != nil {
		return EmployeeStats{}, fmt.Errorf("list manual requests: %w", err)
	}

	stats = EmployeeStats{TotalDays: workingDaysInMonth(s.Now())}
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceLate:
			stats.Late++
		case models.AttendanceAbsent:
			stats.Absent++
		}
	}
	stats.PendingRequests = workflow.CountPending(requests, func(r models.ManualAttendanceRequest) models.RequestStatus { return r.Status })

	s.Cache.Set(ctx, key, stats, cache.CACHE_TTL_SHORT)
	return stats, nil
}

// Day counts attendance statuses for every employee on date; employees
// without a record count as absent.
func (s *AttendanceService) Day(ctx context.Context, actor models.User, date string) (DayStats, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return DayStats{}, err
	}
	if date == "" {
		date = s.today()
	}
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return DayStats{}, fmt.Errorf("list employees: %w", err)
	}
	records, err := s.Store.ListAttendance(ctx, 0)
	if err != nil {
		return DayStats{}, fmt.Errorf("list attendance: %w", err)
	}

	stats := DayStats{Date: date, TotalEmployees: len(employees)}
	seen := make(map[int64]bool)
	for _, r := range records {
		if r.Date != date || seen[r.EmployeeID] {
			continue
		}
		seen[r.EmployeeID] = true
		switch r.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceLate:
			stats.Late++
		default:
			stats.Absent++
		}
	}
	for _, e := range employees {
		if !seen[e.ID] {
			stats.Absent++
		}
	}
	return stats, nil
}

func workingDaysInMonth(now time.Time) int {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
