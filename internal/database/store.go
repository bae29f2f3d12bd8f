package database

import (
	"context"
	"errors"
	"fmt"

	"fieldforce-system/internal/database/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

// Store is the authoritative data provider. List methods take an owner id
// where 0 means every owner; results are ordered by id.
type Store interface {
	FindCredential(ctx context.Context, email string) (models.Credential, error)
	SaveCredential(ctx context.Context, c *models.Credential) error
	DeleteCredentials(ctx context.Context, userID int64) error

	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error

	ListCustomers(ctx context.Context, addedByID int64) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error

	ListAttendance(ctx context.Context, employeeID int64) ([]models.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, a *models.AttendanceRecord) error
	UpdateAttendance(ctx context.Context, a *models.AttendanceRecord) error

	ListManualRequests(ctx context.Context, employeeID int64) ([]models.ManualAttendanceRequest, error)
	GetManualRequest(ctx context.Context, id int64) (models.ManualAttendanceRequest, error)
	CreateManualRequest(ctx context.Context, r *models.ManualAttendanceRequest) error
	UpdateManualRequest(ctx context.Context, r *models.ManualAttendanceRequest) error

	ListPasswordRequests(ctx context.Context, employeeID int64) ([]models.PasswordChangeRequest, error)
	GetPasswordRequest(ctx context.Context, id int64) (models.PasswordChangeRequest, error)
	CreatePasswordRequest(ctx context.Context, r *models.PasswordChangeRequest) error
	UpdatePasswordRequest(ctx context.Context, r *models.PasswordChangeRequest) error

	ListVisits(ctx context.Context, employeeID int64) ([]models.Visit, error)
	CreateVisit(ctx context.Context, v *models.Visit) error

	// Settings and profiles are upserted; Get returns ErrNotFound until saved.
	GetSettings(ctx context.Context) (models.SystemSettings, error)
	SaveSettings(ctx context.Context, s *models.SystemSettings) error
	GetProfile(ctx context.Context, userID int64) (models.AdminProfile, error)
	SaveProfile(ctx context.Context, p *models.AdminProfile) error

	Ping(ctx context.Context) error
	Close() error
}

type validator interface {
	Validate() error
}

func validate(v validator) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
