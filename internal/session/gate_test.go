package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	db := database.NewMemoryStore()
	if err := database.Seed(context.Background(), db, database.DefaultFixtures()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewGate(db, db, NewMemoryStore(), time.Hour)
}

func tabIDs(tabs []TabInfo) []Tab {
	ids := make([]Tab, len(tabs))
	for i, t := range tabs {
		ids[i] = t.ID
	}
	return ids
}

func TestAdminLoginLandsOnDashboard(t *testing.T) {
	g := newTestGate(t)
	st, err := g.Login(context.Background(), "admin@company.com", "admin123", models.RoleAdmin)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if st.ActiveTab != TabDashboard {
		t.Fatalf("expected dashboard, got %s", st.ActiveTab)
	}
	if len(st.Tabs()) != 7 {
		t.Fatalf("expected 7 admin tabs, got %v", tabIDs(st.Tabs()))
	}
	if st.Subtitle() != "Welcome back, Admin User" {
		t.Fatalf("unexpected subtitle %q", st.Subtitle())
	}
}

func TestEmployeeLoginTabs(t *testing.T) {
	g := newTestGate(t)
	st, err := g.Login(context.Background(), "john.smith@company.com", "john123", models.RoleEmployee)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if st.ActiveTab != TabAttendance {
		t.Fatalf("expected attendance, got %s", st.ActiveTab)
	}
	tabs := st.Tabs()
	if len(tabs) != 2 || tabs[0].Label != "My Attendance" || tabs[1].Label != "My Customers" {
		t.Fatalf("unexpected employee tabs: %+v", tabs)
	}
	if _, err := g.SelectTab(context.Background(), st.ID, TabReports); !errors.Is(err, ErrTabUnavailable) {
		t.Fatalf("expected ErrTabUnavailable, got %v", err)
	}
}

func TestLoginRequiresExactMatch(t *testing.T) {
	g := newTestGate(t)
	cases := []struct {
		name, email, password string
		role                  models.Role
	}{
		{"wrong email", "john@company.com", "john123", models.RoleEmployee},
		{"wrong password", "john.smith@company.com", "john124", models.RoleEmployee},
		{"wrong role", "john.smith@company.com", "john123", models.RoleAdmin},
		{"email case differs", "John.Smith@company.com", "john123", models.RoleEmployee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Login(context.Background(), tc.email, tc.password, tc.role)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
	// No lockout after repeated failures.
	if _, err := g.Login(context.Background(), "john.smith@company.com", "john123", models.RoleEmployee); err != nil {
		t.Fatalf("login after failures: %v", err)
	}
}

func TestViewEmployeeDrillDown(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(t)
	admin, _ := g.Login(ctx, "admin@company.com", "admin123", models.RoleAdmin)

	st, err := g.ViewEmployee(ctx, admin.ID, 3)
	if err != nil {
		t.Fatalf("view employee: %v", err)
	}
	if st.ActiveTab != TabAttendance || st.Viewing == nil || st.Viewing.Name != "Sarah Johnson" {
		t.Fatalf("unexpected viewing state: %+v", st)
	}
	if got := tabIDs(st.Tabs()); len(got) != 2 || got[0] != TabAttendance || got[1] != TabCustomers {
		t.Fatalf("unexpected viewing tabs: %v", got)
	}
	if st.Title() != "Sarah Johnson - Employee Details" {
		t.Fatalf("unexpected title %q", st.Title())
	}
	if _, err := g.SelectTab(ctx, admin.ID, TabDashboard); !errors.Is(err, ErrTabUnavailable) {
		t.Fatalf("dashboard should be hidden while viewing, got %v", err)
	}

	st, err = g.ExitViewing(ctx, admin.ID)
	if err != nil {
		t.Fatalf("exit viewing: %v", err)
	}
	if st.Viewing != nil || st.ActiveTab != TabEmployees {
		t.Fatalf("unexpected state after exit: %+v", st)
	}
	if _, err := g.ExitViewing(ctx, admin.ID); !errors.Is(err, ErrNotViewing) {
		t.Fatalf("expected ErrNotViewing, got %v", err)
	}
}

func TestOpenProfileClearsViewing(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(t)
	admin, _ := g.Login(ctx, "admin@company.com", "admin123", models.RoleAdmin)
	if _, err := g.ViewEmployee(ctx, admin.ID, 2); err != nil {
		t.Fatalf("view employee: %v", err)
	}
	st, err := g.OpenProfile(ctx, admin.ID)
	if err != nil {
		t.Fatalf("open profile: %v", err)
	}
	if st.Viewing != nil || st.ActiveTab != TabProfile {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestEmployeeCannotViewOthers(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(t)
	john, _ := g.Login(ctx, "john.smith@company.com", "john123", models.RoleEmployee)
	if _, err := g.ViewEmployee(ctx, john.ID, 3); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(t)
	admin, _ := g.Login(ctx, "admin@company.com", "admin123", models.RoleAdmin)
	if _, err := g.ViewEmployee(ctx, admin.ID, 2); err != nil {
		t.Fatalf("view employee: %v", err)
	}
	if err := g.Logout(ctx, admin.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := g.Current(ctx, admin.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if err := s.Save(ctx, State{ID: "a"}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	// An update without ttl keeps the original expiry.
	if err := s.Save(ctx, State{ID: "a", ActiveTab: TabVisits}, 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
