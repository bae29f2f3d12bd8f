package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/search"
)

type CustomerService struct {
	*Deps
}

type NewCustomer struct {
	Name     string          `json:"name" binding:"required"`
	Contact  string          `json:"contact"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
	Notes    string          `json:"notes"`
	Priority models.Priority `json:"priority"`
}

type VisitLog struct {
	Purpose  models.VisitPurpose `json:"purpose" binding:"required"`
	Duration string              `json:"duration"`
	Notes    string              `json:"notes"`
}

type VisitSchedule struct {
	Date    string              `json:"date" binding:"required"`
	Time    string              `json:"time"`
	Purpose models.VisitPurpose `json:"purpose"`
	Notes   string              `json:"notes"`
}

func (s *CustomerService) ListAll(ctx context.Context, actor models.User, q filter.Query) ([]models.Customer, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return nil, err
	}
	all, err := s.Store.ListCustomers(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return filter.Apply(all, filter.Customers, q), nil
}

// ListOwned lists the customers registered by ownerID.
func (s *CustomerService) ListOwned(ctx context.Context, actor models.User, ownerID int64, q filter.Query) ([]models.Customer, error) {
	if err := access.Check(access.ReadOwned, actor, ownerID); err != nil {
		return nil, err
	}
	owned, err := s.Store.ListCustomers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return filter.Apply(owned, filter.OwnCustomers, q), nil
}

// Add registers a customer for the acting employee. The session's current
// location is copied into the record.
func (s *CustomerService) Add(ctx context.Context, actor models.User, session string, in NewCustomer) (models.Customer, error) {
	if err := access.Check(access.AddCustomer, actor, actor.ID); err != nil {
		return models.Customer{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.Customer{}, invalid("Customer name is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return models.Customer{}, invalid(fmt.Sprintf("Invalid priority %q", in.Priority))
	}
	fix, err := s.currentFix(session, geo.PurposeCustomer)
	if err != nil {
		return models.Customer{}, err
	}

	now := s.Now()
	c := models.Customer{
		Name:                 strings.TrimSpace(in.Name),
		Contact:              in.Contact,
		Email:                in.Email,
		Phone:                in.Phone,
		Address:              in.Address,
		Notes:                in.Notes,
		RegistrationDate:     now.Format(dateLayout),
		LastVisit:            "Never",
		NextVisit:            now.AddDate(0, 0, 7).Format(dateLayout),
		Status:               models.CustomerActive,
		Priority:             in.Priority,
		RegistrationLocation: fix.Location,
		AddedBy:              actor.Name,
		AddedByID:            actor.ID,
	}
	if err := s.Store.CreateCustomer(ctx, &c); err != nil {
		return models.Customer{}, err
	}
	s.indexed(func(i *search.Index) { i.IndexCustomer(c) })
	s.invalidate(ctx, actor.ID)
	return c, nil
}

func (s *CustomerService) owned(ctx context.Context, actor models.User, customerID int64) (models.Customer, error) {
	c, err := s.Store.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	if err := access.Check(access.RecordVisit, actor, c.AddedByID); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// LogVisit records a completed visit and stamps the customer's last visit.
func (s *CustomerService) LogVisit(ctx context.Context, actor models.User, customerID int64, in VisitLog) (models.Visit, error) {
	if !in.Purpose.Valid() {
		return models.Visit{}, invalid(fmt.Sprintf("Invalid visit purpose %q", in.Purpose))
	}
	c, err := s.owned(ctx, actor, customerID)
	if err != nil {
		return models.Visit{}, err
	}

	now := s.Now()
	c.LastVisit = now.Format(dateLayout)
	if err := s.Store.UpdateCustomer(ctx, &c); err != nil {
		return models.Visit{}, err
	}

	v := models.Visit{
		EmployeeID:    actor.ID,
		EmployeeName:  actor.Name,
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		ContactPerson: c.Contact,
		VisitDate:     c.LastVisit,
		VisitTime:     now.Format(clockLayout),
		Duration:      in.Duration,
		Purpose:       in.Purpose,
		Location:      c.Address,
		Status:        models.VisitCompleted,
		Notes:         in.Notes,
	}
	if err := s.Store.CreateVisit(ctx, &v); err != nil {
		return models.Visit{}, err
	}
	s.indexed(func(i *search.Index) {
		i.IndexCustomer(c)
		i.IndexVisit(v)
	})
	s.invalidateVisits(ctx, v)
	return v, nil
}

// ScheduleVisit books a future visit and moves the customer's next visit.
func (s *CustomerService) ScheduleVisit(ctx context.Context, actor models.User, customerID int64, in VisitSchedule) (models.Visit, error) {
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return models.Visit{}, invalid("Visit date must be YYYY-MM-DD")
	}
	if in.Purpose != "" && !in.Purpose.Valid() {
		return models.Visit{}, invalid(fmt.Sprintf("Invalid visit purpose %q", in.Purpose))
	}
	c, err := s.owned(ctx, actor, customerID)
	if err != nil {
		return models.Visit{}, err
	}

	c.NextVisit = date.Format(dateLayout)
	if err := s.Store.UpdateCustomer(ctx, &c); err != nil {
		return models.Visit{}, err
	}

	v := models.Visit{
		EmployeeID:    actor.ID,
		EmployeeName:  actor.Name,
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		ContactPerson: c.Contact,
		VisitDate:     c.NextVisit,
		VisitTime:     in.Time,
		Purpose:       in.Purpose,
		Location:      c.Address,
		Status:        models.VisitScheduled,
		Notes:         in.Notes,
	}
	if err := s.Store.CreateVisit(ctx, &v); err != nil {
		return models.Visit{}, err
	}
	s.indexed(func(i *search.Index) { i.IndexVisit(v) })
	s.invalidateVisits(ctx, v)
	return v, nil
}

// Upcoming lists the owner's customers whose next visit falls tomorrow or
// within the current Sunday-to-Saturday week, soonest first.
func (s *CustomerService) Upcoming(ctx context.Context, actor models.User, ownerID int64) ([]models.Customer, error) {
	owned, err := s.ListOwned(ctx, actor, ownerID, filter.Query{})
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	tomorrow := today.AddDate(0, 0, 1)

	type dated struct {
		c models.Customer
		d time.Time
	}
	var picked []dated
	for _, c := range owned {
		d, err := time.Parse(dateLayout, c.NextVisit)
		if err != nil {
			continue
		}
		if d.Equal(tomorrow) || (!d.Before(weekStart) && d.Before(weekEnd)) {
			picked = append(picked, dated{c, d})
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].d.Before(picked[j].d) })

	out := make([]models.Customer, len(picked))
	for i, p := range picked {
		out[i] = p.c
	}
	return out, nil
}
