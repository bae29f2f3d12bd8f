package models

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type EmployeeStatus string

const (
	EmployeeActive  EmployeeStatus = "active"
	EmployeeOffline EmployeeStatus = "offline"
)

// User is the authenticated identity held by a session.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credential is a login directory entry. Passwords are compared as given.
type Credential struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"index;not null" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt *time.Time `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

func (c Credential) User() User {
	return User{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return fmt.Errorf("credential email and password are required")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("invalid role %q", c.Role)
	}
	return nil
}

type Employee struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string         `gorm:"not null" json:"name"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone             string         `json:"phone"`
	Address           string         `gorm:"type:text" json:"address,omitempty"`
	Status            EmployeeStatus `gorm:"type:varchar(20);not null" json:"status"`
	LastSeen          string         `json:"last_seen"`
	Location          string         `json:"location"`
	CustomersAssigned int            `json:"customers_assigned"`
	VisitsToday       int            `json:"visits_today"`
	Department        string         `json:"department"`
	Position          string         `gorm:"column:position" json:"position"`
	JoinDate          string         `json:"join_date"`
	CreatedAt         *time.Time     `gorm:"autoCreateTime" json:"-"`
	UpdatedAt         *time.Time     `gorm:"autoUpdateTime" json:"-"`
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Email) == "" {
		return fmt.Errorf("employee name and email are required")
	}
	if e.Status != EmployeeActive && e.Status != EmployeeOffline {
		return fmt.Errorf("invalid employee status %q", e.Status)
	}
	return nil
}
