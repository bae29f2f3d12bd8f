package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	SettingsID = 1

	workingHoursLayout = "3:04 PM"
)

// SystemSettings is the single company-wide configuration row.
type SystemSettings struct {
	ID                    int64      `gorm:"primaryKey" json:"-"`
	EmailNotifications    bool       `json:"email_notifications"`
	SMSNotifications      bool       `json:"sms_notifications"`
	AutoApproveAttendance bool       `json:"auto_approve_attendance"`
	RequireFingerprint    bool       `json:"require_fingerprint"`
	WorkingHours          string     `gorm:"not null" json:"working_hours"`
	Timezone              string     `json:"timezone"`
	UpdatedAt             *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

func DefaultSettings() SystemSettings {
	return SystemSettings{
		ID:                 SettingsID,
		EmailNotifications: true,
		RequireFingerprint: true,
		WorkingHours:       "9:00 AM - 6:00 PM",
		Timezone:           "UTC-5",
	}
}

// Shift parses WorkingHours ("9:00 AM - 6:00 PM") into minutes of the day.
func (s SystemSettings) Shift() (start, end int, err error) {
	parts := strings.Split(s.WorkingHours, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("working hours %q must look like \"9:00 AM - 6:00 PM\"", s.WorkingHours)
	}
	from, err := time.Parse(workingHoursLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shift start %q", strings.TrimSpace(parts[0]))
	}
	to, err := time.Parse(workingHoursLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shift end %q", strings.TrimSpace(parts[1]))
	}
	start, end = from.Hour()*60+from.Minute(), to.Hour()*60+to.Minute()
	if end <= start {
		return 0, 0, fmt.Errorf("shift must end after it starts")
	}
	return start, end, nil
}

func (s SystemSettings) Validate() error {
	_, _, err := s.Shift()
	return err
}

// AdminProfile holds the editable contact card of an admin account.
type AdminProfile struct {
	UserID    int64      `gorm:"primaryKey" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `gorm:"type:text" json:"address"`
	Bio       string     `gorm:"type:text" json:"bio"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

func (p AdminProfile) Validate() error {
	if p.UserID == 0 || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile user and name are required")
	}
	return nil
}
