package session

import "fieldforce-system/internal/database/models"

type Tab string

const (
	TabDashboard  Tab = "dashboard"
	TabEmployees  Tab = "employees"
	TabCustomers  Tab = "customers"
	TabAttendance Tab = "attendance"
	TabVisits     Tab = "visits"
	TabReports    Tab = "reports"
	TabProfile    Tab = "profile"
)

type TabInfo struct {
	ID    Tab    `json:"id"`
	Label string `json:"label"`
}

var (
	adminTabs = []TabInfo{
		{TabDashboard, "Dashboard"},
		{TabEmployees, "Employees"},
		{TabCustomers, "Customers"},
		{TabAttendance, "Attendance"},
		{TabVisits, "Visits"},
		{TabReports, "Reports"},
		{TabProfile, "Profile"},
	}
	viewingTabs = []TabInfo{
		{TabAttendance, "Attendance"},
		{TabCustomers, "Customers"},
	}
	employeeTabs = []TabInfo{
		{TabAttendance, "My Attendance"},
		{TabCustomers, "My Customers"},
	}
)

// DefaultTab is the landing tab after login.
func DefaultTab(role models.Role) Tab {
	if role == models.RoleAdmin {
		return TabDashboard
	}
	return TabAttendance
}

// AvailableTabs lists the tabs reachable for a role, narrowed while an admin
// is viewing one employee.
func AvailableTabs(role models.Role, viewing bool) []TabInfo {
	var tabs []TabInfo
	switch {
	case role == models.RoleAdmin && viewing:
		tabs = viewingTabs
	case role == models.RoleAdmin:
		tabs = adminTabs
	default:
		tabs = employeeTabs
	}
	return append([]TabInfo(nil), tabs...)
}

func tabAllowed(tab Tab, tabs []TabInfo) bool {
	for _, t := range tabs {
		if t.ID == tab {
			return true
		}
	}
	return false
}
