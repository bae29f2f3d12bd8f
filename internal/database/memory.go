package database

import (
	"context"
	"slices"
	"strings"
	"sync"

	"fieldforce-system/internal/database/models"
)

type table[T any] struct {
	seq  int64
	rows map[int64]T
	id   func(*T) *int64
}

func newTable[T any](id func(*T) *int64) *table[T] {
	return &table[T]{rows: make(map[int64]T), id: id}
}

func (t *table[T]) insert(v *T) {
	p := t.id(v)
	if *p == 0 {
		t.seq++
		*p = t.seq
	} else if *p > t.seq {
		t.seq = *p
	}
	t.rows[*p] = *v
}

func (t *table[T]) get(id int64) (T, error) {
	v, ok := t.rows[id]
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

func (t *table[T]) update(v *T) error {
	id := *t.id(v)
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = *v
	return nil
}

func (t *table[T]) remove(id int64) error {
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) list(keep func(T) bool) []T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v := t.rows[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// MemoryStore keeps every entity in process memory. It is the default store
// and the one seeded from the bundled fixtures.
type MemoryStore struct {
	mu sync.RWMutex

	credentials *table[models.Credential]
	employees   *table[models.Employee]
	customers   *table[models.Customer]
	attendance  *table[models.AttendanceRecord]
	manual      *table[models.ManualAttendanceRequest]
	passwords   *table[models.PasswordChangeRequest]
	visits      *table[models.Visit]
	settings    *table[models.SystemSettings]
	profiles    *table[models.AdminProfile]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: newTable(func(c *models.Credential) *int64 { return &c.ID }),
		employees:   newTable(func(e *models.Employee) *int64 { return &e.ID }),
		customers:   newTable(func(c *models.Customer) *int64 { return &c.ID }),
		attendance:  newTable(func(a *models.AttendanceRecord) *int64 { return &a.ID }),
		manual:      newTable(func(r *models.ManualAttendanceRequest) *int64 { return &r.ID }),
		passwords:   newTable(func(r *models.PasswordChangeRequest) *int64 { return &r.ID }),
		visits:      newTable(func(v *models.Visit) *int64 { return &v.ID }),
		settings:    newTable(func(s *models.SystemSettings) *int64 { return &s.ID }),
		profiles:    newTable(func(p *models.AdminProfile) *int64 { return &p.UserID }),
	}
}

func (s *MemoryStore) FindCredential(_ context.Context, email string) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.credentials.list(nil) {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return models.Credential{}, ErrNotFound
}

func (s *MemoryStore) SaveCredential(_ context.Context, c *models.Credential) error {
	if err := validate(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.credentials.list(nil) {
		if strings.EqualFold(existing.Email, c.Email) && existing.ID != c.ID {
			return ErrDuplicate
		}
	}
	if c.ID != 0 {
		if err := s.credentials.update(c); err == nil {
			return nil
		}
	}
	s.credentials.insert(c)
	return nil
}

func (s *MemoryStore) DeleteCredentials(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.credentials.list(func(c models.Credential) bool { return c.UserID == userID }) {
		_ = s.credentials.remove(c.ID)
	}
	return nil
}

func (s *MemoryStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees.list(nil), nil
}

func (s *MemoryStore) GetEmployee(_ context.Context, id int64) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees.get(id)
}

func (s *MemoryStore) CreateEmployee(_ context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.employees.list(nil) {
		if strings.EqualFold(existing.Email, e.Email) {
			return ErrDuplicate
		}
	}
	s.employees.insert(e)
	return nil
}

func (s *MemoryStore) UpdateEmployee(_ context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.employees.list(nil) {
		if strings.EqualFold(existing.Email, e.Email) && existing.ID != e.ID {
			return ErrDuplicate
		}
	}
	return s.employees.update(e)
}

func (s *MemoryStore) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employees.remove(id)
}

func (s *MemoryStore) ListCustomers(_ context.Context, addedByID int64) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.list(func(c models.Customer) bool {
		return addedByID == 0 || c.AddedByID == addedByID
	}), nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, id int64) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.get(id)
}

func (s *MemoryStore) CreateCustomer(_ context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers.insert(c)
	return nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.update(c)
}

func (s *MemoryStore) ListAttendance(_ context.Context, employeeID int64) ([]models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attendance.list(func(a models.AttendanceRecord) bool {
		return employeeID == 0 || a.EmployeeID == employeeID
	}), nil
}

func (s *MemoryStore) CreateAttendance(_ context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance.insert(a)
	return nil
}

func (s *MemoryStore) UpdateAttendance(_ context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attendance.update(a)
}

func (s *MemoryStore) ListManualRequests(_ context.Context, employeeID int64) ([]models.ManualAttendanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manual.list(func(r models.ManualAttendanceRequest) bool {
		return employeeID == 0 || r.EmployeeID == employeeID
	}), nil
}

func (s *MemoryStore) GetManualRequest(_ context.Context, id int64) (models.ManualAttendanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manual.get(id)
}

func (s *MemoryStore) CreateManualRequest(_ context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual.insert(r)
	return nil
}

func (s *MemoryStore) UpdateManualRequest(_ context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual.update(r)
}

func (s *MemoryStore) ListPasswordRequests(_ context.Context, employeeID int64) ([]models.PasswordChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passwords.list(func(r models.PasswordChangeRequest) bool {
		return employeeID == 0 || r.EmployeeID == employeeID
	}), nil
}

func (s *MemoryStore) GetPasswordRequest(_ context.Context, id int64) (models.PasswordChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passwords.get(id)
}

func (s *MemoryStore) CreatePasswordRequest(_ context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords.insert(r)
	return nil
}

func (s *MemoryStore) UpdatePasswordRequest(_ context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwords.update(r)
}

func (s *MemoryStore) ListVisits(_ context.Context, employeeID int64) ([]models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits.list(func(v models.Visit) bool {
		return employeeID == 0 || v.EmployeeID == employeeID
	}), nil
}

func (s *MemoryStore) CreateVisit(_ context.Context, v *models.Visit) error {
	if err := validate(v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits.insert(v)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetSettings(_ context.Context) (models.SystemSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.get(models.SettingsID)
}

func (s *MemoryStore) SaveSettings(_ context.Context, st *models.SystemSettings) error {
	if err := validate(st); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = models.SettingsID
	s.settings.insert(st)
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID int64) (models.AdminProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.get(userID)
}

func (s *MemoryStore) SaveProfile(_ context.Context, p *models.AdminProfile) error {
	if err := validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles.insert(p)
	return nil
}
