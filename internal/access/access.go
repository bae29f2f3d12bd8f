// Package access centralises the role and ownership checks applied to every
// action.
package access

import (
	"errors"

	"fieldforce-system/internal/database/models"
)

var ErrForbidden = errors.New("action not permitted for this user")

type Action string

const (
	// Admin-only actions.
	ManageEmployees Action = "employees:manage"
	ReviewRequests  Action = "requests:review"
	ViewAllRecords  Action = "records:view-all"
	ViewEmployee    Action = "employees:view"
	ExportReports   Action = "reports:export"
	ManageSettings  Action = "settings:manage"

	// Actions an employee performs on their own records.
	CheckIn       Action = "attendance:check-in"
	AddCustomer   Action = "customers:add"
	RecordVisit   Action = "visits:record"
	SubmitRequest Action = "requests:submit"

	// Reading records owned by someone; owners and admins may.
	ReadOwned Action = "records:read"
)

// CanManage reports whether actor may perform action on a resource owned by
// ownerID. ownerID is ignored for admin-only actions.
func CanManage(action Action, actor models.User, ownerID int64) bool {
	if actor.ID == 0 || !actor.Role.Valid() {
		return false
	}
	switch action {
	case ManageEmployees, ReviewRequests, ViewAllRecords, ViewEmployee, ExportReports, ManageSettings:
		return actor.IsAdmin()
	case CheckIn, AddCustomer, RecordVisit, SubmitRequest:
		return actor.Role == models.RoleEmployee && actor.ID == ownerID
	case ReadOwned:
		return actor.IsAdmin() || actor.ID == ownerID
	}
	return false
}

// Check is CanManage returning ErrForbidden on refusal.
func Check(action Action, actor models.User, ownerID int64) error {
	if !CanManage(action, actor, ownerID) {
		return ErrForbidden
	}
	return nil
}
