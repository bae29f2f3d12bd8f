package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/notify"
	"fieldforce-system/internal/search"
)

type EmployeeService struct {
	*Deps
}

type NewEmployee struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Password   string `json:"password" binding:"required"`
}

// EmployeeUpdate carries only the fields being changed.
type EmployeeUpdate struct {
	Name       *string                `json:"name"`
	Email      *string                `json:"email"`
	Phone      *string                `json:"phone"`
	Address    *string                `json:"address"`
	Department *string                `json:"department"`
	Position   *string                `json:"position"`
	Status     *models.EmployeeStatus `json:"status"`
	Location   *string                `json:"location"`
}

func (s *EmployeeService) List(ctx context.Context, actor models.User, q filter.Query) ([]models.Employee, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return nil, err
	}
	all, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return filter.Apply(all, filter.Employees, q), nil
}

func (s *EmployeeService) Get(ctx context.Context, actor models.User, id int64) (models.Employee, error) {
	if err := access.Check(access.ReadOwned, actor, id); err != nil {
		return models.Employee{}, err
	}
	return s.Store.GetEmployee(ctx, id)
}

// Create adds an employee and registers a login for them with the initial
// password as given.
func (s *EmployeeService) Create(ctx context.Context, actor models.User, in NewEmployee) (models.Employee, error) {
	if err := access.Check(access.ManageEmployees, actor, 0); err != nil {
		return models.Employee{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return models.Employee{}, invalid("Name, email and initial password are required")
	}

	e := models.Employee{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		Department: in.Department,
		Position:   in.Position,
		Status:     models.EmployeeActive,
		JoinDate:   s.today(),
		LastSeen:   "Just created",
		Location:   "Not yet assigned",
	}
	if err := s.Store.CreateEmployee(ctx, &e); err != nil {
		return models.Employee{}, err
	}

	cred := models.Credential{UserID: e.ID, Name: e.Name, Email: e.Email, Password: in.Password, Role: models.RoleEmployee}
	if err := s.Store.SaveCredential(ctx, &cred); err != nil {
		if delErr := s.Store.DeleteEmployee(ctx, e.ID); delErr != nil {
			log.Printf("Failed to roll back employee %d: %v", e.ID, delErr)
		}
		return models.Employee{}, fmt.Errorf("register credential: %w", err)
	}

	s.indexed(func(i *search.Index) { i.IndexEmployee(e) })
	s.invalidate(ctx)
	s.Notifier.Notify(ctx, notify.Event{Kind: notify.EmployeeAdded, Subject: e.Name, Detail: e.Email})
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, actor models.User, id int64, in EmployeeUpdate) (models.Employee, error) {
	if err := access.Check(access.ManageEmployees, actor, 0); err != nil {
		return models.Employee{}, err
	}
	e, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	oldEmail := e.Email

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&e.Name, in.Name)
	set(&e.Email, in.Email)
	set(&e.Phone, in.Phone)
	set(&e.Address, in.Address)
	set(&e.Department, in.Department)
	set(&e.Position, in.Position)
	set(&e.Location, in.Location)
	if in.Status != nil {
		e.Status = *in.Status
	}

	// The login directory must accept the new email before the row changes.
	if !strings.EqualFold(oldEmail, e.Email) {
		taken, err := s.Store.FindCredential(ctx, e.Email)
		if err == nil && taken.UserID != e.ID {
			return models.Employee{}, database.ErrDuplicate
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return models.Employee{}, fmt.Errorf("lookup credential: %w", err)
		}
	}

	if err := s.Store.UpdateEmployee(ctx, &e); err != nil {
		return models.Employee{}, err
	}
	if err := s.syncCredential(ctx, oldEmail, e); err != nil {
		return models.Employee{}, err
	}

	s.indexed(func(i *search.Index) { i.IndexEmployee(e) })
	s.invalidate(ctx, e.ID)
	return e, nil
}

func (s *EmployeeService) syncCredential(ctx context.Context, oldEmail string, e models.Employee) error {
	cred, err := s.Store.FindCredential(ctx, oldEmail)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup credential: %w", err)
	}
	if cred.Name == e.Name && cred.Email == e.Email {
		return nil
	}
	cred.Name, cred.Email = e.Name, e.Email
	return s.Store.SaveCredential(ctx, &cred)
}

// Delete removes the employee and their login.
func (s *EmployeeService) Delete(ctx context.Context, actor models.User, id int64) error {
	if err := access.Check(access.ManageEmployees, actor, 0); err != nil {
		return err
	}
	if err := s.Store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	if err := s.Store.DeleteCredentials(ctx, id); err != nil {
		return fmt.Errorf("remove credentials: %w", err)
	}
	s.indexed(func(i *search.Index) { i.Remove(search.KindEmployee, id) })
	s.invalidate(ctx, id)
	return nil
}
