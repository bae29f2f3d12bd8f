// Package session implements the login gate and the per-session navigation
// state: active tab and the admin's read-only employee drill-down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

var (
	ErrInvalidCredentials = errors.New("Invalid credentials. Please check your email, password, and role.")
	ErrTabUnavailable     = errors.New("tab is not available")
	ErrNotViewing         = errors.New("not viewing an employee")
)

// State is everything the server remembers about one signed-in browser.
type State struct {
	ID        string           `json:"id"`
	User      models.User      `json:"user"`
	ActiveTab Tab              `json:"active_tab"`
	Viewing   *models.Employee `json:"viewing_employee,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s State) Tabs() []TabInfo {
	return AvailableTabs(s.User.Role, s.Viewing != nil)
}

func (s State) Title() string {
	if s.Viewing != nil {
		return s.Viewing.Name + " - Employee Details"
	}
	return "Employee Management System"
}

func (s State) Subtitle() string {
	if s.Viewing != nil {
		return s.Viewing.Department + " • " + s.Viewing.Position
	}
	return "Welcome back, " + s.User.Name
}

// CredentialSource and EmployeeSource are the store slices the gate reads.
type CredentialSource interface {
	FindCredential(ctx context.Context, email string) (models.Credential, error)
}

type EmployeeSource interface {
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
}

type Gate struct {
	creds     CredentialSource
	employees EmployeeSource
	store     Store
	ttl       time.Duration
}

func NewGate(creds CredentialSource, employees EmployeeSource, store Store, ttl time.Duration) *Gate {
	return &Gate{creds: creds, employees: employees, store: store, ttl: ttl}
}

func (g *Gate) TTL() time.Duration { return g.ttl }

// Login opens a session when email, password and role all match one
// credential exactly.
func (g *Gate) Login(ctx context.Context, email, password string, role models.Role) (State, error) {
	cred, err := g.creds.FindCredential(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return State{}, ErrInvalidCredentials
	}
	if err != nil {
		return State{}, fmt.Errorf("lookup credential: %w", err)
	}
	if cred.Email != email || cred.Password != password || cred.Role != role {
		return State{}, ErrInvalidCredentials
	}

	st := State{
		ID:        uuid.NewString(),
		User:      cred.User(),
		ActiveTab: DefaultTab(cred.Role),
		CreatedAt: time.Now(),
	}
	if err := g.store.Save(ctx, st, g.ttl); err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}
	log.Printf("Login: %s (%s) session %s", cred.Email, cred.Role, st.ID)
	return st, nil
}

func (g *Gate) Current(ctx context.Context, id string) (State, error) {
	return g.store.Get(ctx, id)
}

func (g *Gate) Logout(ctx context.Context, id string) error {
	if _, err := g.store.Get(ctx, id); err != nil {
		return err
	}
	return g.store.Delete(ctx, id)
}

func (g *Gate) SelectTab(ctx context.Context, id string, tab Tab) (State, error) {
	return g.mutate(ctx, id, func(st *State) error {
		if !tabAllowed(tab, st.Tabs()) {
			return fmt.Errorf("%w: %s", ErrTabUnavailable, tab)
		}
		st.ActiveTab = tab
		return nil
	})
}

// ViewEmployee enters the admin's read-only drill-down for one employee.
func (g *Gate) ViewEmployee(ctx context.Context, id string, employeeID int64) (State, error) {
	return g.mutate(ctx, id, func(st *State) error {
		if err := access.Check(access.ViewEmployee, st.User, employeeID); err != nil {
			return err
		}
		emp, err := g.employees.GetEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		st.Viewing = &emp
		st.ActiveTab = TabAttendance
		return nil
	})
}

func (g *Gate) ExitViewing(ctx context.Context, id string) (State, error) {
	return g.mutate(ctx, id, func(st *State) error {
		if st.Viewing == nil {
			return ErrNotViewing
		}
		st.Viewing = nil
		st.ActiveTab = TabEmployees
		return nil
	})
}

// OpenProfile leaves any drill-down and shows the admin profile.
func (g *Gate) OpenProfile(ctx context.Context, id string) (State, error) {
	return g.mutate(ctx, id, func(st *State) error {
		if !st.User.IsAdmin() {
			return access.ErrForbidden
		}
		st.Viewing = nil
		st.ActiveTab = TabProfile
		return nil
	})
}

func (g *Gate) mutate(ctx context.Context, id string, fn func(*State) error) (State, error) {
	st, err := g.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	if err := fn(&st); err != nil {
		return State{}, err
	}
	if err := g.store.Save(ctx, st, 0); err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}
