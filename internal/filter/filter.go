// Package filter narrows list views by a free-text search and dropdown
// selections. It never mutates its input.
package filter

import (
	"strings"

	"fieldforce-system/internal/database/models"
)

// All is the dropdown value meaning no restriction.
const All = "all"

type Query struct {
	Search string
	// Exact holds dropdown selections keyed by field name.
	Exact map[string]string
}

// Fields declares how a record type is searched and filtered.
type Fields[T any] struct {
	Text  []func(T) string
	Exact map[string]func(T) string
}

// Apply keeps items where any Text field contains the search term,
// ignoring case, and every selected Exact field equals its value. Unknown
// Exact keys are ignored.
func Apply[T any](items []T, f Fields[T], q Query) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if term != "" && !matchesText(it, f.Text, term) {
			continue
		}
		if !matchesExact(it, f.Exact, q.Exact) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesText[T any](it T, fields []func(T) string, term string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(it)), term) {
			return true
		}
	}
	return false
}

func matchesExact[T any](it T, fields map[string]func(T) string, selected map[string]string) bool {
	for name, want := range selected {
		if want == "" || want == All {
			continue
		}
		field, ok := fields[name]
		if !ok {
			continue
		}
		if field(it) != want {
			return false
		}
	}
	return true
}

var Employees = Fields[models.Employee]{
	Text: []func(models.Employee) string{
		func(e models.Employee) string { return e.Name },
		func(e models.Employee) string { return e.Email },
	},
	Exact: map[string]func(models.Employee) string{
		"status":     func(e models.Employee) string { return string(e.Status) },
		"department": func(e models.Employee) string { return e.Department },
	},
}

// Customers is the admin customer list, searchable by who registered them.
var Customers = Fields[models.Customer]{
	Text: []func(models.Customer) string{
		func(c models.Customer) string { return c.Name },
		func(c models.Customer) string { return c.Contact },
		func(c models.Customer) string { return c.AddedBy },
	},
	Exact: map[string]func(models.Customer) string{
		"status":   func(c models.Customer) string { return string(c.Status) },
		"priority": func(c models.Customer) string { return string(c.Priority) },
	},
}

// OwnCustomers is an employee's own customer list.
var OwnCustomers = Fields[models.Customer]{
	Text: []func(models.Customer) string{
		func(c models.Customer) string { return c.Name },
		func(c models.Customer) string { return c.Contact },
	},
	Exact: Customers.Exact,
}

var Visits = Fields[models.Visit]{
	Text: []func(models.Visit) string{
		func(v models.Visit) string { return v.EmployeeName },
		func(v models.Visit) string { return v.CustomerName },
		func(v models.Visit) string { return v.ContactPerson },
	},
	Exact: map[string]func(models.Visit) string{
		"status":  func(v models.Visit) string { return string(v.Status) },
		"purpose": func(v models.Visit) string { return string(v.Purpose) },
	},
}

var Attendance = Fields[models.AttendanceRecord]{
	Text: []func(models.AttendanceRecord) string{
		func(a models.AttendanceRecord) string { return a.EmployeeName },
	},
	Exact: map[string]func(models.AttendanceRecord) string{
		"date":   func(a models.AttendanceRecord) string { return a.Date },
		"status": func(a models.AttendanceRecord) string { return string(a.Status) },
	},
}
