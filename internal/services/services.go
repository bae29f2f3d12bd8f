// Package services holds the business operations behind the HTTP API. Every
// operation takes the acting user and checks it through the access package.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/metrics"
	"fieldforce-system/internal/notify"
	"fieldforce-system/internal/search"
)

const dateLayout = "2006-01-02"

var ErrLocationUnavailable = errors.New("Location not available. Please try again.")

// ValidationError is a rejected form submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

type Deps struct {
	Store    database.Store
	Cache    cache.Cache
	Index    *search.Index
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Tracker  *geo.Tracker
	Now      func() time.Time
}

type Services struct {
	deps *Deps

	Employees  *EmployeeService
	Customers  *CustomerService
	Attendance *AttendanceService
	Requests   *RequestService
	Visits     *VisitService
	Reports    *ReportService
	Settings   *SettingsService
}

func New(d Deps) *Services {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.LogNotifier{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	base := &d
	return &Services{
		deps:       base,
		Employees:  &EmployeeService{base},
		Customers:  &CustomerService{base},
		Attendance: &AttendanceService{base},
		Requests:   &RequestService{Deps: base},
		Visits:     &VisitService{base},
		Reports:    &ReportService{base},
		Settings:   &SettingsService{base},
	}
}

func (d *Deps) today() string {
	return d.Now().Format(dateLayout)
}

func (d *Deps) invalidate(ctx context.Context, employeeIDs ...int64) {
	cache.InvalidateReportCaches(ctx, d.Cache, []string{d.today()}, employeeIDs...)
}

// invalidateVisits also drops the stats of the day a visit was filed under.
func (d *Deps) invalidateVisits(ctx context.Context, v models.Visit) {
	cache.InvalidateReportCaches(ctx, d.Cache, []string{d.today(), v.VisitDate}, v.EmployeeID)
}

// currentFix returns the tracked location for a session, or
// ErrLocationUnavailable while none is ready.
func (d *Deps) currentFix(session string, purpose geo.Purpose) (geo.Fix, error) {
	if d.Tracker == nil {
		return geo.Fix{}, ErrLocationUnavailable
	}
	snap := d.Tracker.Snapshot(geo.Key{Session: session, Purpose: purpose})
	if !snap.Ready() {
		return geo.Fix{}, ErrLocationUnavailable
	}
	outcome := "ok"
	if snap.Fix.Err != nil {
		outcome = string(snap.Fix.Err.Kind)
	}
	d.Metrics.ObserveLocation(string(purpose), outcome)
	return *snap.Fix, nil
}

func (d *Deps) indexed(fn func(*search.Index)) {
	if d.Index != nil {
		fn(d.Index)
	}
}

// Search runs a full-text query. Employees only see their own customers
// and visits.
func (s *Services) Search(ctx context.Context, actor models.User, text string, limit int) ([]search.Hit, error) {
	if s.deps.Index == nil {
		return []search.Hit{}, nil
	}
	var owner int64
	if !actor.IsAdmin() {
		owner = actor.ID
	}
	hits, err := s.deps.Index.Search(text, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	return hits, nil
}
