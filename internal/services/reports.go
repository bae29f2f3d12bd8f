package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/export"
	"fieldforce-system/internal/workflow"
)

var ErrUnknownReport = errors.New("unknown report type")

type ReportService struct {
	*Deps
}

type Dashboard struct {
	Date             string          `json:"date"`
	TotalEmployees   int             `json:"total_employees"`
	ActiveEmployees  int             `json:"active_employees"`
	AttendanceRate   decimal.Decimal `json:"attendance_rate"`
	VisitsToday      int             `json:"visits_today"`
	TotalCustomers   int             `json:"total_customers"`
	PendingApprovals int             `json:"pending_approvals"`
	Weekly           []WeekdayCount  `json:"weekly_attendance"`
	Departments      []Share         `json:"departments"`
	VisitPurposes    []Share         `json:"visit_purposes"`
	Performance      []Performance   `json:"performance"`
}

type WeekdayCount struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
	Absent  int    `json:"absent"`
}

// Share is one slice of a distribution, percent rounded to one place.
type Share struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

type Performance struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Visits     int    `json:"visits"`
	Customers  int    `json:"customers"`
}

func percent(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

func shares(counts map[string]int, total int) []Share {
	out := make([]Share, 0, len(counts))
	for name, n := range counts {
		out = append(out, Share{Name: name, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Dashboard builds the admin overview for date, today when empty. Only the
// today view is cached.
func (s *ReportService) Dashboard(ctx context.Context, actor models.User, date string) (Dashboard, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return Dashboard{}, err
	}
	cacheable := date == ""
	if cacheable {
		date = s.today()
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return Dashboard{}, invalid("Date must be in YYYY-MM-DD format")
	}
	var d Dashboard
	if cacheable && s.Cache.Get(ctx, cache.DASHBOARD_CACHE_KEY, &d) && d.Date == date {
		return d, nil
	}

	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list employees: %w", err)
	}
	customers, err := s.Store.ListCustomers(ctx, 0)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list customers: %w", err)
	}
	records, err := s.Store.ListAttendance(ctx, 0)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list attendance: %w", err)
	}
	visits, err := s.Store.ListVisits(ctx, 0)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list visits: %w", err)
	}
	manual, err := s.Store.ListManualRequests(ctx, 0)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list manual requests: %w", err)
	}
	passwords, err := s.Store.ListPasswordRequests(ctx, 0)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list password requests: %w", err)
	}

	d = Dashboard{
		Date:             date,
		TotalEmployees:   len(employees),
		TotalCustomers:   len(customers),
		PendingApprovals: workflow.CountPending(manual, func(r models.ManualAttendanceRequest) models.RequestStatus { return r.Status }) + workflow.CountPending(passwords, func(r models.PasswordChangeRequest) models.RequestStatus { return r.Status }),
	}

	departments := make(map[string]int)
	for _, e := range employees {
		if e.Status == models.EmployeeActive {
			d.ActiveEmployees++
		}
		dept := e.Department
		if dept == "" {
			dept = "Unassigned"
		}
		departments[dept]++
	}
	d.Departments = shares(departments, len(employees))

	attended := 0
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	d.Weekly = make([]WeekdayCount, 7)
	for i := range d.Weekly {
		wd := weekStart.AddDate(0, 0, i)
		d.Weekly[i] = WeekdayCount{Day: wd.Weekday().String()[:3], Date: wd.Format(dateLayout)}
	}
	for _, r := range records {
		if r.Date == date && r.Status != models.AttendanceAbsent {
			attended++
		}
		rd, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			continue
		}
		idx := int(rd.Sub(weekStart).Hours() / 24)
		if idx < 0 || idx > 6 {
			continue
		}
		switch r.Status {
		case models.AttendancePresent:
			d.Weekly[idx].Present++
		case models.AttendanceLate:
			d.Weekly[idx].Late++
		default:
			d.Weekly[idx].Absent++
		}
	}
	d.AttendanceRate = percent(attended, len(employees))

	purposes := make(map[string]int)
	visitsBy := make(map[int64]int)
	for _, v := range visits {
		if v.VisitDate == date {
			d.VisitsToday++
		}
		purposes[string(v.Purpose)]++
		visitsBy[v.EmployeeID]++
	}
	d.VisitPurposes = shares(purposes, len(visits))

	customersBy := make(map[int64]int)
	for _, c := range customers {
		customersBy[c.AddedByID]++
	}
	for _, e := range employees {
		d.Performance = append(d.Performance, Performance{EmployeeID: e.ID, Name: e.Name, Visits: visitsBy[e.ID], Customers: customersBy[e.ID]})
	}
	sort.SliceStable(d.Performance, func(i, j int) bool { return d.Performance[i].Visits > d.Performance[j].Visits })

	if cacheable {
		s.Cache.Set(ctx, cache.DASHBOARD_CACHE_KEY, d, cache.CACHE_TTL_SHORT)
	}
	return d, nil
}

// DateRange bounds a report by YYYY-MM-DD dates, both inclusive.
type DateRange struct {
	From string `form:"from" json:"from"`
	To   string `form:"to" json:"to"`
}

// defaultReportDays is the look-back used when no start date is given.
const defaultReportDays = 30

func (r DateRange) contains(date string) bool {
	return date >= r.From && date <= r.To
}

// resolve fills in the defaults (the last 30 days up to today) and
// validates the bounds.
func (s *ReportService) resolve(r DateRange) (DateRange, error) {
	if r.To == "" {
		r.To = s.today()
	}
	to, err := time.Parse(dateLayout, r.To)
	if err != nil {
		return DateRange{}, invalid("End date must be in YYYY-MM-DD format")
	}
	if r.From == "" {
		r.From = to.AddDate(0, 0, -defaultReportDays).Format(dateLayout)
	}
	from, err := time.Parse(dateLayout, r.From)
	if err != nil {
		return DateRange{}, invalid("Start date must be in YYYY-MM-DD format")
	}
	if from.After(to) {
		return DateRange{}, invalid("Start date must not be after end date")
	}
	return r, nil
}

// Export builds the named report. Attendance, visits and performance are
// limited to the period; employees and customers are full rosters.
func (s *ReportService) Export(ctx context.Context, actor models.User, kind string, period DateRange) (export.Table, error) {
	if err := access.Check(access.ExportReports, actor, 0); err != nil {
		return export.Table{}, err
	}
	period, err := s.resolve(period)
	if err != nil {
		return export.Table{}, err
	}

	switch kind {
	case "attendance":
		records, err := s.Store.ListAttendance(ctx, 0)
		if err != nil {
			return export.Table{}, err
		}
		return export.AttendanceTable(inPeriod(records, period, func(r models.AttendanceRecord) string { return r.Date })), nil
	case "visits":
		visits, err := s.Store.ListVisits(ctx, 0)
		if err != nil {
			return export.Table{}, err
		}
		return export.VisitsTable(inPeriod(visits, period, func(v models.Visit) string { return v.VisitDate })), nil
	case "performance":
		rows, err := s.performance(ctx, period)
		if err != nil {
			return export.Table{}, err
		}
		return export.PerformanceTable(rows), nil
	case "employees":
		employees, err := s.Store.ListEmployees(ctx)
		if err != nil {
			return export.Table{}, err
		}
		return export.EmployeesTable(employees), nil
	case "customers":
		customers, err := s.Store.ListCustomers(ctx, 0)
		if err != nil {
			return export.Table{}, err
		}
		return export.CustomersTable(customers), nil
	}
	return export.Table{}, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
}

func inPeriod[T any](items []T, period DateRange, date func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if period.contains(date(it)) {
			out = append(out, it)
		}
	}
	return out
}

// performance totals each employee's visits and attendance over the period,
// busiest first.
func (s *ReportService) performance(ctx context.Context, period DateRange) ([]export.PerformanceRow, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	customers, err := s.Store.ListCustomers(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	records, err := s.Store.ListAttendance(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	visits, err := s.Store.ListVisits(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}

	type tally struct{ visits, completed, customers, present, late, days int }
	by := make(map[int64]*tally, len(employees))
	for _, e := range employees {
		by[e.ID] = &tally{}
	}
	for _, c := range customers {
		if t, ok := by[c.AddedByID]; ok {
			t.customers++
		}
	}
	for _, v := range inPeriod(visits, period, func(v models.Visit) string { return v.VisitDate }) {
		if t, ok := by[v.EmployeeID]; ok {
			t.visits++
			if v.Status == models.VisitCompleted {
				t.completed++
			}
		}
	}
	for _, r := range inPeriod(records, period, func(r models.AttendanceRecord) string { return r.Date }) {
		t, ok := by[r.EmployeeID]
		if !ok {
			continue
		}
		t.days++
		switch r.Status {
		case models.AttendancePresent:
			t.present++
		case models.AttendanceLate:
			t.late++
		}
	}

	rows := make([]export.PerformanceRow, 0, len(employees))
	for _, e := range employees {
		t := by[e.ID]
		rows = append(rows, export.PerformanceRow{
			Employee:       e.Name,
			Department:     e.Department,
			Visits:         t.visits,
			Completed:      t.completed,
			Customers:      t.customers,
			Present:        t.present,
			Late:           t.late,
			AttendanceRate: percent(t.present+t.late, t.days).String(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Visits > rows[j].Visits })
	return rows, nil
}
