package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fieldforce-system/internal/database/models"

	bolt "go.etcd.io/bbolt"
)

const (
	bCredentials = "credentials"
	bEmployees   = "employees"
	bCustomers   = "customers"
	bAttendance  = "attendance"
	bManual      = "manual_requests"
	bPasswords   = "password_requests"
	bVisits      = "visits"
	bSettings    = "settings"
	bProfiles    = "profiles"
)

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

type boltTable[T any] struct {
	name []byte
	id   func(*T) *int64
}

func newBoltTable[T any](name string, id func(*T) *int64) boltTable[T] {
	return boltTable[T]{name: []byte(name), id: id}
}

func (t boltTable[T]) bucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(t.name)
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", t.name)
	}
	return b, nil
}

func (t boltTable[T]) put(b *bolt.Bucket, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", t.name, err)
	}
	return b.Put(itob(*t.id(v)), data)
}

func (t boltTable[T]) insert(tx *bolt.Tx, v *T) error {
	b, err := t.bucket(tx)
	if err != nil {
		return err
	}
	p := t.id(v)
	if *p == 0 {
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		*p = int64(seq)
	} else if uint64(*p) > b.Sequence() {
		if err := b.SetSequence(uint64(*p)); err != nil {
			return err
		}
	}
	return t.put(b, v)
}

func (t boltTable[T]) get(tx *bolt.Tx, id int64) (T, error) {
	var v T
	b, err := t.bucket(tx)
	if err != nil {
		return v, err
	}
	data := b.Get(itob(id))
	if data == nil {
		return v, ErrNotFound
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s %d: %w", t.name, id, err)
	}
	return v, nil
}

func (t boltTable[T]) update(tx *bolt.Tx, v *T) error {
	b, err := t.bucket(tx)
	if err != nil {
		return err
	}
	if b.Get(itob(*t.id(v))) == nil {
		return ErrNotFound
	}
	return t.put(b, v)
}

func (t boltTable[T]) remove(tx *bolt.Tx, id int64) error {
	b, err := t.bucket(tx)
	if err != nil {
		return err
	}
	if b.Get(itob(id)) == nil {
		return ErrNotFound
	}
	return b.Delete(itob(id))
}

func (t boltTable[T]) list(tx *bolt.Tx, keep func(T) bool) ([]T, error) {
	b, err := t.bucket(tx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	c := b.Cursor()
	for k, data := c.First(); k != nil; k, data = c.Next() {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			log.Printf("WARN: skipping unreadable %s row %x: %v", t.name, k, err)
			continue
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// BoltStore is an embedded single-file store, one bucket per entity with
// JSON values keyed by big-endian id.
type BoltStore struct {
	db *bolt.DB

	credentials boltTable[storedCredential]
	employees   boltTable[models.Employee]
	customers   boltTable[models.Customer]
	attendance  boltTable[models.AttendanceRecord]
	manual      boltTable[models.ManualAttendanceRequest]
	passwords   boltTable[models.PasswordChangeRequest]
	visits      boltTable[models.Visit]
	settings    boltTable[models.SystemSettings]
	profiles    boltTable[models.AdminProfile]
}

func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory '%s': %w", filepath.Dir(path), err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bCredentials, bEmployees, bCustomers, bAttendance, bManual, bPasswords, bVisits, bSettings, bProfiles} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket '%s': %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return &BoltStore{
		db:          db,
		credentials: newBoltTable(bCredentials, func(c *storedCredential) *int64 { return &c.ID }),
		employees:   newBoltTable(bEmployees, func(e *models.Employee) *int64 { return &e.ID }),
		customers:   newBoltTable(bCustomers, func(c *models.Customer) *int64 { return &c.ID }),
		attendance:  newBoltTable(bAttendance, func(a *models.AttendanceRecord) *int64 { return &a.ID }),
		manual:      newBoltTable(bManual, func(r *models.ManualAttendanceRequest) *int64 { return &r.ID }),
		passwords:   newBoltTable(bPasswords, func(r *models.PasswordChangeRequest) *int64 { return &r.ID }),
		visits:      newBoltTable(bVisits, func(v *models.Visit) *int64 { return &v.ID }),
		settings:    newBoltTable(bSettings, func(s *models.SystemSettings) *int64 { return &s.ID }),
		profiles:    newBoltTable(bProfiles, func(p *models.AdminProfile) *int64 { return &p.UserID }),
	}, nil
}

// storedCredential keeps the password in the persisted JSON, which the
// public model omits.
type storedCredential struct {
	models.Credential
	Password string `json:"password"`
}

func (c storedCredential) credential() models.Credential {
	out := c.Credential
	out.Password = c.Password
	return out
}

func (s *BoltStore) FindCredential(_ context.Context, email string) (models.Credential, error) {
	var found models.Credential
	err := s.db.View(func(tx *bolt.Tx) error {
		rows, err := s.credentials.list(tx, func(c storedCredential) bool {
			return strings.EqualFold(c.Email, email)
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrNotFound
		}
		found = rows[0].credential()
		return nil
	})
	return found, err
}

func (s *BoltStore) SaveCredential(_ context.Context, c *models.Credential) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		dup, err := s.credentials.list(tx, func(existing storedCredential) bool {
			return strings.EqualFold(existing.Email, c.Email) && existing.ID != c.ID
		})
		if err != nil {
			return err
		}
		if len(dup) > 0 {
			return ErrDuplicate
		}
		row := storedCredential{Credential: *c, Password: c.Password}
		if c.ID != 0 {
			if err := s.credentials.update(tx, &row); err == nil {
				return nil
			}
		}
		if err := s.credentials.insert(tx, &row); err != nil {
			return err
		}
		c.ID = row.ID
		return nil
	})
}

func (s *BoltStore) DeleteCredentials(_ context.Context, userID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rows, err := s.credentials.list(tx, func(c storedCredential) bool { return c.UserID == userID })
		if err != nil {
			return err
		}
		for _, c := range rows {
			if err := s.credentials.remove(tx, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	var rows []models.Employee
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.employees.list(tx, nil)
		return err
	})
	return rows, err
}

func (s *BoltStore) GetEmployee(_ context.Context, id int64) (models.Employee, error) {
	var e models.Employee
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		e, err = s.employees.get(tx, id)
		return err
	})
	return e, err
}

func (s *BoltStore) CreateEmployee(_ context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		dup, err := s.employees.list(tx, func(existing models.Employee) bool {
			return strings.EqualFold(existing.Email, e.Email)
		})
		if err != nil {
			return err
		}
		if len(dup) > 0 {
			return ErrDuplicate
		}
		return s.employees.insert(tx, e)
	})
}

func (s *BoltStore) UpdateEmployee(_ context.Context, e *models.Employee) error {
	if err := validate(e); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		dup, err := s.employees.list(tx, func(existing models.Employee) bool {
			return strings.EqualFold(existing.Email, e.Email) && existing.ID != e.ID
		})
		if err != nil {
			return err
		}
		if len(dup) > 0 {
			return ErrDuplicate
		}
		return s.employees.update(tx, e)
	})
}

func (s *BoltStore) DeleteEmployee(_ context.Context, id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error { return s.employees.remove(tx, id) })
}

func (s *BoltStore) ListCustomers(_ context.Context, addedByID int64) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.customers.list(tx, func(c models.Customer) bool {
			return addedByID == 0 || c.AddedByID == addedByID
		})
		return err
	})
	return rows, err
}

func (s *BoltStore) GetCustomer(_ context.Context, id int64) (models.Customer, error) {
	var c models.Customer
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		c, err = s.customers.get(tx, id)
		return err
	})
	return c, err
}

func (s *BoltStore) CreateCustomer(_ context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.customers.insert(tx, c) })
}

func (s *BoltStore) UpdateCustomer(_ context.Context, c *models.Customer) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.customers.update(tx, c) })
}

func (s *BoltStore) ListAttendance(_ context.Context, employeeID int64) ([]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.attendance.list(tx, func(a models.AttendanceRecord) bool {
			return employeeID == 0 || a.EmployeeID == employeeID
		})
		return err
	})
	return rows, err
}

func (s *BoltStore) CreateAttendance(_ context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.attendance.insert(tx, a) })
}

func (s *BoltStore) UpdateAttendance(_ context.Context, a *models.AttendanceRecord) error {
	if err := validate(a); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.attendance.update(tx, a) })
}

func (s *BoltStore) ListManualRequests(_ context.Context, employeeID int64) ([]models.ManualAttendanceRequest, error) {
	var rows []models.ManualAttendanceRequest
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.manual.list(tx, func(r models.ManualAttendanceRequest) bool {
			return employeeID == 0 || r.EmployeeID == employeeID
		})
		return err
	})
	return rows, err
}

func (s *BoltStore) GetManualRequest(_ context.Context, id int64) (models.ManualAttendanceRequest, error) {
	var r models.ManualAttendanceRequest
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		r, err = s.manual.get(tx, id)
		return err
	})
	return r, err
}

func (s *BoltStore) CreateManualRequest(_ context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.manual.insert(tx, r) })
}

func (s *BoltStore) UpdateManualRequest(_ context.Context, r *models.ManualAttendanceRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.manual.update(tx, r) })
}

func (s *BoltStore) ListPasswordRequests(_ context.Context, employeeID int64) ([]models.PasswordChangeRequest, error) {
	var rows []models.PasswordChangeRequest
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.passwords.list(tx, func(r models.PasswordChangeRequest) bool {
			return employeeID == 0 || r.EmployeeID == employeeID
		})
		return err
	})
	return rows, err
}

func (s *BoltStore) GetPasswordRequest(_ context.Context, id int64) (models.PasswordChangeRequest, error) {
	var r models.PasswordChangeRequest
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		r, err = s.passwords.get(tx, id)
		return err
	})
	return r, err
}

func (s *BoltStore) CreatePasswordRequest(_ context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.passwords.insert(tx, r) })
}

func (s *BoltStore) UpdatePasswordRequest(_ context.Context, r *models.PasswordChangeRequest) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.passwords.update(tx, r) })
}

func (s *BoltStore) ListVisits(_ context.Context, employeeID int64) ([]models.Visit, error) {
	var rows []models.Visit
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		rows, err = s.visits.list(tx, func(v models.Visit) bool {
			return employeeID == 0 || v.EmployeeID == employeeID
		})
		return err
	})
	return rows, err
}

func (s *BoltStore) CreateVisit(_ context.Context, v *models.Visit) error {
	if err := validate(v); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.visits.insert(tx, v) })
}

func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		_, err := s.credentials.bucket(tx)
		return err
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetSettings(_ context.Context) (models.SystemSettings, error) {
	var st models.SystemSettings
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		st, err = s.settings.get(tx, models.SettingsID)
		return err
	})
	return st, err
}

func (s *BoltStore) SaveSettings(_ context.Context, st *models.SystemSettings) error {
	if err := validate(st); err != nil {
		return err
	}
	st.ID = models.SettingsID
	return s.db.Update(func(tx *bolt.Tx) error { return s.settings.insert(tx, st) })
}

func (s *BoltStore) GetProfile(_ context.Context, userID int64) (models.AdminProfile, error) {
	var p models.AdminProfile
	err := s.db.View(func(tx *bolt.Tx) (err error) {
		p, err = s.profiles.get(tx, userID)
		return err
	})
	return p, err
}

func (s *BoltStore) SaveProfile(_ context.Context, p *models.AdminProfile) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error { return s.profiles.insert(tx, p) })
}
