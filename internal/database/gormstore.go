package database

import (
	"context"
	"errors"
	"fmt"

	"fieldforce-system/internal/database/models"

	"gorm.io/gorm"
)

// GormStore persists entities through gorm (postgres or sqlite).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) FindCredential(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&c).Error
	return c, notFound(err)
}

func (s *GormStore) SaveCredential(ctx context.Context, c *models.Credential) error {
	if err := validate(c); err != nil {
		return err
	}
	var existing models.Credential
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?) AND id <> ?", c.Email, c.ID).First(&existing).Error
	if err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if c.ID == 0 {
		return s.create(ctx, c, false)
	}
	if err := s.update(ctx, &models.Credential{}, c.ID, c); !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.create(ctx, c, true)
}

func (s *GormStore) DeleteCredentials(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Credential{}).Error
}

func (s *GormStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var rows []models.Employee
	err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error
	return rows, err
}

func (s *GormStore) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	var e models.Employee
	err := s.db.WithContext(ctx).First(&e, id).Error
	return e, notFound(err)
}

func (s *GormStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Employee{}).Where("LOWER(email) = LOWER(?)", e.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return s.create(ctx, e, e.ID != 0)
}

func (s *GormStore) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Employee{}).Where("LOWER(email) = LOWER(?) AND id <> ?", e.Email, e.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return s.update(ctx, &models.Employee{}, e.ID, e)
}

func (s *GormStore) DeleteEmployee(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListCustomers(ctx context.Context, addedByID int64) ([]models.Customer, error) {
	var rows []models.Customer
	query := s.db.WithContext(ctx).Order("id asc")
	if addedByID != 0 {
		query = query.Where("added_by_id = ?", addedByID)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (s *GormStore) GetCustomer(ctx context.Context, id int64) (models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, notFound(err)
}

func (s *GormStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.create(ctx, c, c.ID != 0)
}

func (s *GormStore) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.update(ctx, &models.Customer{}, c.ID, c)
}

func (s *GormStore) ListAttendance(ctx context.Context, employeeID int64) ([]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	query := s.db.WithContext(ctx).Order("id asc")
	if employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (s *GormStore) CreateAttendance(ctx context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	return s.create(ctx, a, a.ID != 0)
}

func (s *GormStore) UpdateAttendance(ctx context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	return s.update(ctx, &models.AttendanceRecord{}, a.ID, a)
}

func (s *GormStore) ListManualRequests(ctx context.Context, employeeID int64) ([]models.ManualAttendanceRequest, error) {
	var rows []models.ManualAttendanceRequest
	query := s.db.WithContext(ctx).Order("id asc")
	if employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (s *GormStore) GetManualRequest(ctx context.Context, id int64) (models.ManualAttendanceRequest, error) {
	var r models.ManualAttendanceRequest
	err := s.db.WithContext(ctx).First(&r, id).Error
	return r, notFound(err)
}

func (s *GormStore) CreateManualRequest(ctx context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.create(ctx, r, r.ID != 0)
}

func (s *GormStore) UpdateManualRequest(ctx context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.update(ctx, &models.ManualAttendanceRequest{}, r.ID, r)
}

func (s *GormStore) ListPasswordRequests(ctx context.Context, employeeID int64) ([]models.PasswordChangeRequest, error) {
	var rows []models.PasswordChangeRequest
	query := s.db.WithContext(ctx).Order("id asc")
	if employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (s *GormStore) GetPasswordRequest(ctx context.Context, id int64) (models.PasswordChangeRequest, error) {
	var r models.PasswordChangeRequest
	err := s.db.WithContext(ctx).First(&r, id).Error
	return r, notFound(err)
}

func (s *GormStore) CreatePasswordRequest(ctx context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.create(ctx, r, r.ID != 0)
}

func (s *GormStore) UpdatePasswordRequest(ctx context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.update(ctx, &models.PasswordChangeRequest{}, r.ID, r)
}

func (s *GormStore) ListVisits(ctx context.Context, employeeID int64) ([]models.Visit, error) {
	var rows []models.Visit
	query := s.db.WithContext(ctx).Order("id asc")
	if employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (s *GormStore) CreateVisit(ctx context.Context, v *models.Visit) error {
	if err := validate(v); err != nil {
		return err
	}
	return s.create(ctx, v, v.ID != 0)
}

func (s *GormStore) GetSettings(ctx context.Context) (models.SystemSettings, error) {
	var st models.SystemSettings
	err := s.db.WithContext(ctx).First(&st, models.SettingsID).Error
	return st, notFound(err)
}

func (s *GormStore) SaveSettings(ctx context.Context, st *models.SystemSettings) error {
	if err := validate(st); err != nil {
		return err
	}
	st.ID = models.SettingsID
	return s.db.WithContext(ctx).Save(st).Error
}

func (s *GormStore) GetProfile(ctx context.Context, userID int64) (models.AdminProfile, error) {
	var p models.AdminProfile
	err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	return p, notFound(err)
}

func (s *GormStore) SaveProfile(ctx context.Context, p *models.AdminProfile) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// update saves a full row only when it already exists.
func (s *GormStore) update(ctx context.Context, model interface{}, id int64, row interface{}) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup %d: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.db.WithContext(ctx).Save(row).Error
}

// create inserts row. Postgres sequences do not advance on explicit ids, so
// they are moved past the inserted row.
func (s *GormStore) create(ctx context.Context, row interface{}, explicitID bool) error {
	db := s.db.WithContext(ctx)
	if err := db.Create(row).Error; err != nil {
		return err
	}
	if !explicitID || s.db.Dialector.Name() != DriverPostgres {
		return nil
	}
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(row); err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	table := stmt.Schema.Table
	return db.Exec(fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table)).Error
}
