package models

import (
	"fmt"
	"strings"
	"time"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type VisitStatus string

const (
	VisitCompleted  VisitStatus = "completed"
	VisitInProgress VisitStatus = "in-progress"
	VisitScheduled  VisitStatus = "scheduled"
	VisitCancelled  VisitStatus = "cancelled"
)

type VisitPurpose string

const (
	PurposeProductDemo      VisitPurpose = "Product Demo"
	PurposeContractRenewal  VisitPurpose = "Contract Renewal"
	PurposeSupportVisit     VisitPurpose = "Support Visit"
	PurposeFollowUp         VisitPurpose = "Follow-up"
	PurposeNewClientMeeting VisitPurpose = "New Client Meeting"
)

var VisitPurposes = []VisitPurpose{
	PurposeProductDemo,
	PurposeContractRenewal,
	PurposeSupportVisit,
	PurposeFollowUp,
	PurposeNewClientMeeting,
}

func (p VisitPurpose) Valid() bool {
	for _, v := range VisitPurposes {
		if v == p {
			return true
		}
	}
	return false
}

// CapturedLocation is the position attached to a record at creation time.
type CapturedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Timestamp string  `json:"timestamp"`
}

type Customer struct {
	ID                   int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string           `gorm:"not null" json:"name"`
	Contact              string           `json:"contact"`
	Email                string           `json:"email"`
	Phone                string           `json:"phone"`
	Address              string           `gorm:"type:text" json:"address"`
	Notes                string           `gorm:"type:text" json:"notes,omitempty"`
	RegistrationDate     string           `json:"registration_date"`
	LastVisit            string           `json:"last_visit"`
	NextVisit            string           `json:"next_visit"`
	Status               CustomerStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Priority             Priority         `gorm:"type:varchar(20);not null" json:"priority"`
	RegistrationLocation CapturedLocation `gorm:"embedded;embeddedPrefix:reg_" json:"registration_location"`
	AddedBy              string           `json:"added_by"`
	AddedByID            int64            `gorm:"index" json:"added_by_id"`
	CreatedAt            *time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt            *time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}
	if c.Status != CustomerActive && c.Status != CustomerInactive {
		return fmt.Errorf("invalid customer status %q", c.Status)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("invalid customer priority %q", c.Priority)
	}
	return nil
}

type Visit struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID    int64        `gorm:"index" json:"employee_id"`
	EmployeeName  string       `json:"employee_name"`
	CustomerID    int64        `gorm:"index" json:"customer_id"`
	CustomerName  string       `json:"customer_name"`
	ContactPerson string       `json:"contact_person"`
	VisitDate     string       `gorm:"index" json:"visit_date"`
	VisitTime     string       `json:"visit_time"`
	Duration      string       `json:"duration"`
	Purpose       VisitPurpose `gorm:"type:varchar(40)" json:"purpose"`
	Location      string       `json:"location"`
	Status        VisitStatus  `gorm:"type:varchar(20);not null" json:"status"`
	Notes         string       `gorm:"type:text" json:"notes"`
	CreatedAt     *time.Time   `gorm:"autoCreateTime" json:"-"`
}

func (v Visit) Validate() error {
	switch v.Status {
	case VisitCompleted, VisitInProgress, VisitScheduled, VisitCancelled:
	default:
		return fmt.Errorf("invalid visit status %q", v.Status)
	}
	if v.Purpose != "" && !v.Purpose.Valid() {
		return fmt.Errorf("invalid visit purpose %q", v.Purpose)
	}
	return nil
}
