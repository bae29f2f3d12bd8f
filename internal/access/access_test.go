package access

import (
	"errors"
	"testing"

	"fieldforce-system/internal/database/models"
)

var (
	admin = models.User{ID: 1, Name: "Admin User", Role: models.RoleAdmin}
	john  = models.User{ID: 2, Name: "John Smith", Role: models.RoleEmployee}
	sarah = models.User{ID: 3, Name: "Sarah Johnson", Role: models.RoleEmployee}
)

func TestCanManage(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		actor  models.User
		owner  int64
		want   bool
	}{
		{"admin manages employees", ManageEmployees, admin, 0, true},
		{"employee cannot manage employees", ManageEmployees, john, 2, false},
		{"admin reviews requests", ReviewRequests, admin, 2, true},
		{"employee cannot review own request", ReviewRequests, john, 2, false},
		{"admin manages settings", ManageSettings, admin, 0, true},
		{"employee cannot manage settings", ManageSettings, john, 2, false},
		{"employee checks in for self", CheckIn, john, 2, true},
		{"employee cannot check in for another", CheckIn, john, 3, false},
		{"admin cannot check in for employee", CheckIn, admin, 2, false},
		{"employee adds own customer", AddCustomer, sarah, 3, true},
		{"employee submits own request", SubmitRequest, john, 2, true},
		{"employee cannot submit for another", SubmitRequest, sarah, 2, false},
		{"owner reads records", ReadOwned, john, 2, true},
		{"admin reads any records", ReadOwned, admin, 3, true},
		{"employee cannot read another", ReadOwned, john, 3, false},
		{"anonymous denied", ReadOwned, models.User{}, 0, false},
		{"unknown action denied", Action("bogus"), admin, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManage(tt.action, tt.actor, tt.owner); got != tt.want {
				t.Fatalf("CanManage(%s) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestCheckReturnsForbidden(t *testing.T) {
	if err := Check(ExportReports, john, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Check(ExportReports, admin, 0); err != nil {
		t.Fatalf("expected admin export to pass, got %v", err)
	}
}
