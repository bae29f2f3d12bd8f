package models

import (
	"fmt"
	"strings"
	"time"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	return s == RequestPending || s == RequestApproved || s == RequestRejected
}

type AttendanceRecord struct {
	ID                  int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID          int64            `gorm:"index;not null" json:"employee_id"`
	EmployeeName        string           `json:"employee_name"`
	Date                string           `gorm:"index;not null" json:"date"`
	CheckIn             string           `json:"check_in"`
	CheckOut            string           `json:"check_out"`
	WorkingHours        string           `json:"working_hours"`
	Status              AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	Location            string           `json:"location"`
	CheckInLocation     CapturedLocation `gorm:"embedded;embeddedPrefix:checkin_" json:"check_in_location"`
	FingerprintVerified bool             `json:"fingerprint_verified"`
	IsManual            bool             `json:"is_manual"`
	ManualReason        string           `json:"manual_reason,omitempty"`
	CreatedAt           *time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt           *time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (a AttendanceRecord) Validate() error {
	if strings.TrimSpace(a.Date) == "" {
		return fmt.Errorf("attendance date is required")
	}
	switch a.Status {
	case AttendancePresent, AttendanceLate, AttendanceAbsent:
	default:
		return fmt.Errorf("invalid attendance status %q", a.Status)
	}
	return nil
}

type ManualAttendanceRequest struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID    int64         `gorm:"index;not null" json:"employee_id"`
	EmployeeName  string        `json:"employee_name"`
	EmployeeEmail string        `json:"employee_email"`
	Date          string        `gorm:"not null" json:"date"`
	CheckIn       string        `json:"check_in"`
	CheckOut      string        `json:"check_out"`
	Reason        string        `gorm:"type:text" json:"reason"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestDate   string        `json:"request_date"`
	AdminNote     string        `gorm:"type:text" json:"admin_note,omitempty"`
	Location      string        `json:"location,omitempty"`
	ReviewedBy    *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     *time.Time    `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     *time.Time    `gorm:"autoUpdateTime" json:"-"`
}

func (r ManualAttendanceRequest) Validate() error {
	if r.Date == "" || r.CheckIn == "" || r.CheckOut == "" || strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("date, check-in, check-out and reason are required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid request status %q", r.Status)
	}
	return nil
}

type PasswordChangeRequest struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID    int64         `gorm:"index;not null" json:"employee_id"`
	EmployeeName  string        `json:"employee_name"`
	EmployeeEmail string        `json:"employee_email"`
	RequestDate   string        `json:"request_date"`
	Reason        string        `gorm:"type:text" json:"reason"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AdminNote     string        `gorm:"type:text" json:"admin_note,omitempty"`
	ReviewedBy    *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     *time.Time    `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     *time.Time    `gorm:"autoUpdateTime" json:"-"`
}

func (r PasswordChangeRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("reason is required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid request status %q", r.Status)
	}
	return nil
}
