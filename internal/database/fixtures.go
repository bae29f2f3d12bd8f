package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fieldforce-system/internal/database/models"
)

const fallbackLat, fallbackLng = 40.7128, -74.0060

// Fixtures is the seed data set loaded into an empty store.
type Fixtures struct {
	Credentials      []models.Credential
	Employees        []models.Employee
	Customers        []models.Customer
	Attendance       []models.AttendanceRecord
	ManualRequests   []models.ManualAttendanceRequest
	PasswordRequests []models.PasswordChangeRequest
	Visits           []models.Visit
	Settings         *models.SystemSettings
	Profiles         []models.AdminProfile
}

// DefaultFixtures returns the demo company data. Employee ids match the
// login user ids so ownership checks compare one identity.
func DefaultFixtures() Fixtures {
	settings := models.DefaultSettings()
	return Fixtures{
		Settings: &settings,
		Profiles: []models.AdminProfile{
			{UserID: 1, Name: "Admin User", Email: "admin@company.com", Phone: "+1 (555) 000-0000", Address: "123 Admin Street, HQ Building", Bio: "System Administrator"},
		},
		Credentials: []models.Credential{
			{ID: 1, UserID: 1, Name: "Admin User", Email: "admin@company.com", Password: "admin123", Role: models.RoleAdmin},
			{ID: 2, UserID: 2, Name: "John Smith", Email: "john.smith@company.com", Password: "john123", Role: models.RoleEmployee},
			{ID: 3, UserID: 3, Name: "Sarah Johnson", Email: "sarah.j@company.com", Password: "sarah123", Role: models.RoleEmployee},
			{ID: 4, UserID: 4, Name: "Emily Davis", Email: "emily.d@company.com", Password: "emily123", Role: models.RoleEmployee},
			{ID: 5, UserID: 5, Name: "Mike Wilson", Email: "mike.w@company.com", Password: "mike123", Role: models.RoleEmployee},
		},
		Employees: []models.Employee{
			{ID: 2, Name: "John Smith", Email: "john.smith@company.com", Phone: "+1 (555) 123-4567", Status: models.EmployeeActive, LastSeen: "2 hours ago", Location: "Downtown District", CustomersAssigned: 24, VisitsToday: 3, Department: "Sales", Position: "Sales Representative", JoinDate: "2023-06-15"},
			{ID: 3, Name: "Sarah Johnson", Email: "sarah.j@company.com", Phone: "+1 (555) 234-5678", Status: models.EmployeeActive, LastSeen: "30 minutes ago", Location: "Business Park", CustomersAssigned: 31, VisitsToday: 5, Department: "Sales", Position: "Senior Sales Rep", JoinDate: "2023-03-20"},
			{ID: 4, Name: "Emily Davis", Email: "emily.d@company.com", Phone: "+1 (555) 456-7890", Status: models.EmployeeActive, LastSeen: "1 hour ago", Location: "Tech Hub", CustomersAssigned: 27, VisitsToday: 2, Department: "Sales", Position: "Sales Representative", JoinDate: "2023-07-05"},
			{ID: 5, Name: "Mike Wilson", Email: "mike.w@company.com", Phone: "+1 (555) 345-6789", Status: models.EmployeeOffline, LastSeen: "8 hours ago", Location: "North Branch", CustomersAssigned: 18, VisitsToday: 0, Department: "Support", Position: "Customer Support", JoinDate: "2023-09-10"},
		},
		Customers: []models.Customer{
			{ID: 1, Name: "ABC Corporation", Contact: "James Wilson", Email: "james@abccorp.com", Phone: "+1 (555) 111-2222", Address: "123 Business St, Downtown", Notes: "Regular customer, interested in premium services", RegistrationDate: "2024-01-15", LastVisit: "2024-01-20", NextVisit: "2024-01-25", Status: models.CustomerActive, Priority: models.PriorityHigh, RegistrationLocation: models.CapturedLocation{Latitude: fallbackLat, Longitude: fallbackLng, Address: "Recorded at: 123 Business St, Downtown, NY", Timestamp: "2024-01-15 10:30:00"}, AddedBy: "John Smith", AddedByID: 2},
			{ID: 2, Name: "XYZ Ltd", Contact: "Maria Garcia", Email: "maria@xyzltd.com", Phone: "+1 (555) 222-3333", Address: "456 Commerce Ave, Business Park", Notes: "Small business, looking for cost-effective solutions", RegistrationDate: "2024-01-18", LastVisit: "2024-01-21", NextVisit: "2024-01-26", Status: models.CustomerActive, Priority: models.PriorityLow, RegistrationLocation: models.CapturedLocation{Latitude: 40.7589, Longitude: -73.9851, Address: "Recorded at: 456 Commerce Ave, Business Park, NY", Timestamp: "2024-01-18 11:45:00"}, AddedBy: "Sarah Johnson", AddedByID: 3},
			{ID: 3, Name: "Tech Solutions Inc", Contact: "Robert Chen", Email: "robert@techsol.com", Phone: "+1 (555) 333-4444", Address: "789 Innovation Blvd, Tech Hub", Notes: "Tech-savvy client, prefers digital communications", RegistrationDate: "2024-01-12", LastVisit: "2024-01-19", NextVisit: "2024-01-24", Status: models.CustomerActive, Priority: models.PriorityMedium, RegistrationLocation: models.CapturedLocation{Latitude: 40.7831, Longitude: -73.9712, Address: "Recorded at: 789 Innovation Blvd, Tech Hub, NY", Timestamp: "2024-01-12 14:15:00"}, AddedBy: "Emily Davis", AddedByID: 4},
			{ID: 4, Name: "Global Enterprises", Contact: "Lisa Thompson", Email: "lisa@globalent.com", Phone: "+1 (555) 444-5555", Address: "321 Corporate Plaza, Financial District", RegistrationDate: "2024-01-10", LastVisit: "2024-01-17", NextVisit: "2024-01-27", Status: models.CustomerInactive, Priority: models.PriorityMedium, RegistrationLocation: models.CapturedLocation{Latitude: 40.7074, Longitude: -74.0113, Address: "Recorded at: 321 Corporate Plaza, Financial District, NY", Timestamp: "2024-01-10 09:20:00"}, AddedBy: "Mike Wilson", AddedByID: 5},
		},
		Attendance: []models.AttendanceRecord{
			{ID: 1, EmployeeID: 2, EmployeeName: "John Smith", Date: "2024-01-22", CheckIn: "08:45 AM", CheckOut: "06:15 PM", WorkingHours: "9h 30m", Status: models.AttendancePresent, Location: "Downtown District", CheckInLocation: models.CapturedLocation{Latitude: fallbackLat, Longitude: fallbackLng, Address: "123 Business St, Downtown, NY", Timestamp: "2024-01-22 08:45:00"}, FingerprintVerified: true},
			{ID: 2, EmployeeID: 3, EmployeeName: "Sarah Johnson", Date: "2024-01-22", CheckIn: "09:00 AM", CheckOut: "05:45 PM", WorkingHours: "8h 45m", Status: models.AttendancePresent, Location: "Business Park", FingerprintVerified: true},
			{ID: 3, EmployeeID: 5, EmployeeName: "Mike Wilson", Date: "2024-01-22", CheckIn: "-", CheckOut: "-", WorkingHours: "-", Status: models.AttendanceAbsent, Location: "-"},
			{ID: 4, EmployeeID: 4, EmployeeName: "Emily Davis", Date: "2024-01-22", CheckIn: "08:30 AM", CheckOut: "06:00 PM", WorkingHours: "9h 30m", Status: models.AttendancePresent, Location: "Tech Hub", FingerprintVerified: true},
			{ID: 5, EmployeeID: 2, EmployeeName: "John Smith", Date: "2024-01-21", CheckIn: "08:50 AM", CheckOut: "06:20 PM", WorkingHours: "9h 30m", Status: models.AttendancePresent, Location: "Downtown District", CheckInLocation: models.CapturedLocation{Latitude: 40.7130, Longitude: -74.0058, Address: "125 Business St, Downtown, NY", Timestamp: "2024-01-21 08:50:00"}, FingerprintVerified: true},
			{ID: 6, EmployeeID: 3, EmployeeName: "Sarah Johnson", Date: "2024-01-21", CheckIn: "09:15 AM", CheckOut: "05:30 PM", WorkingHours: "8h 15m", Status: models.AttendanceLate, Location: "Business Park", FingerprintVerified: true},
			{ID: 7, EmployeeID: 2, EmployeeName: "John Smith", Date: "2024-01-20", CheckIn: "09:15 AM", CheckOut: "05:30 PM", WorkingHours: "8h 15m", Status: models.AttendanceLate, Location: "Downtown District", CheckInLocation: models.CapturedLocation{Latitude: 40.7125, Longitude: -74.0062, Address: "121 Business St, Downtown, NY", Timestamp: "2024-01-20 09:15:00"}, IsManual: true, ManualReason: "Fingerprint scanner was not working"},
		},
		ManualRequests: []models.ManualAttendanceRequest{
			{ID: 1, EmployeeID: 2, EmployeeName: "John Smith", EmployeeEmail: "john.smith@company.com", Date: "2024-01-23", CheckIn: "09:00", CheckOut: "18:00", Reason: "Fingerprint scanner was malfunctioning in the morning", Status: models.RequestPending, RequestDate: "2024-01-23", Location: "Downtown District Office"},
			{ID: 2, EmployeeID: 3, EmployeeName: "Sarah Johnson", EmployeeEmail: "sarah.j@company.com", Date: "2024-01-22", CheckIn: "08:45", CheckOut: "17:30", Reason: "Forgot to check in - was already working on urgent client issue", Status: models.RequestPending, RequestDate: "2024-01-22", Location: "Business Park Office"},
			{ID: 3, EmployeeID: 5, EmployeeName: "Mike Wilson", EmployeeEmail: "mike.w@company.com", Date: "2024-01-21", CheckIn: "09:30", CheckOut: "18:15", Reason: "System was down for maintenance", Status: models.RequestApproved, RequestDate: "2024-01-21", Location: "North Branch Office", AdminNote: "Confirmed with IT - system was indeed down"},
			{ID: 4, EmployeeID: 4, EmployeeName: "Emily Davis", EmployeeEmail: "emily.d@company.com", Date: "2024-01-20", CheckIn: "08:30", CheckOut: "17:45", Reason: "Emergency client meeting - rushed in without checking", Status: models.RequestRejected, RequestDate: "2024-01-20", Location: "Tech Hub Office", AdminNote: "Please ensure to check in even during emergencies"},
		},
		PasswordRequests: []models.PasswordChangeRequest{
			{ID: 1, EmployeeID: 2, EmployeeName: "John Smith", EmployeeEmail: "john.smith@company.com", RequestDate: "2024-01-22", Reason: "Forgot current password", Status: models.RequestPending},
			{ID: 2, EmployeeID: 3, EmployeeName: "Sarah Johnson", EmployeeEmail: "sarah.j@company.com", RequestDate: "2024-01-21", Reason: "Security concern - possible breach", Status: models.RequestPending},
			{ID: 3, EmployeeID: 5, EmployeeName: "Mike Wilson", EmployeeEmail: "mike.w@company.com", RequestDate: "2024-01-20", Reason: "Password expired", Status: models.RequestApproved},
		},
		Visits: []models.Visit{
			{ID: 1, EmployeeID: 2, EmployeeName: "John Smith", CustomerID: 1, CustomerName: "ABC Corporation", ContactPerson: "James Wilson", VisitDate: "2024-01-22", VisitTime: "10:30 AM", Duration: "45 minutes", Purpose: models.PurposeProductDemo, Location: "123 Business St, Downtown", Status: models.VisitCompleted, Notes: "Customer showed interest in our premium package. Follow-up scheduled for next week."},
			{ID: 2, EmployeeID: 3, EmployeeName: "Sarah Johnson", CustomerID: 2, CustomerName: "XYZ Ltd", ContactPerson: "Maria Garcia", VisitDate: "2024-01-22", VisitTime: "02:15 PM", Duration: "1 hour 20 minutes", Purpose: models.PurposeContractRenewal, Location: "456 Commerce Ave, Business Park", Status: models.VisitCompleted, Notes: "Contract renewed for another year. Discussed additional services."},
			{ID: 3, EmployeeID: 4, EmployeeName: "Emily Davis", CustomerID: 3, CustomerName: "Tech Solutions Inc", ContactPerson: "Robert Chen", VisitDate: "2024-01-22", VisitTime: "11:00 AM", Duration: "30 minutes", Purpose: models.PurposeSupportVisit, Location: "789 Innovation Blvd, Tech Hub", Status: models.VisitCompleted, Notes: "Resolved technical issues. Customer satisfied with support."},
			{ID: 4, EmployeeID: 2, EmployeeName: "John Smith", CustomerID: 4, CustomerName: "Global Enterprises", ContactPerson: "Lisa Thompson", VisitDate: "2024-01-22", VisitTime: "04:00 PM", Duration: "25 minutes", Purpose: models.PurposeFollowUp, Location: "321 Corporate Plaza, Financial District", Status: models.VisitInProgress, Notes: "Currently meeting with the client to discuss project updates."},
			{ID: 5, EmployeeID: 5, EmployeeName: "Mike Wilson", CustomerName: "StartUp Hub", ContactPerson: "David Kim", VisitDate: "2024-01-21", VisitTime: "03:30 PM", Duration: "1 hour 15 minutes", Purpose: models.PurposeNewClientMeeting, Location: "555 Innovation Drive, Startup District", Status: models.VisitCompleted, Notes: "New client onboarded. Setup complete and training provided."},
		},
	}
}

// Seed loads fixtures into the store unless the first credential already
// exists.
func Seed(ctx context.Context, store Store, f Fixtures) error {
	if len(f.Credentials) > 0 {
		if _, err := store.FindCredential(ctx, f.Credentials[0].Email); err == nil {
			log.Printf("Store already seeded, skipping fixtures")
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check seed state: %w", err)
		}
	}

	for i := range f.Credentials {
		if err := store.SaveCredential(ctx, &f.Credentials[i]); err != nil {
			return fmt.Errorf("seed credential %s: %w", f.Credentials[i].Email, err)
		}
	}
	for i := range f.Employees {
		if err := store.CreateEmployee(ctx, &f.Employees[i]); err != nil {
			return fmt.Errorf("seed employee %d: %w", f.Employees[i].ID, err)
		}
	}
	for i := range f.Customers {
		if err := store.CreateCustomer(ctx, &f.Customers[i]); err != nil {
			return fmt.Errorf("seed customer %d: %w", f.Customers[i].ID, err)
		}
	}
	for i := range f.Attendance {
		if err := store.CreateAttendance(ctx, &f.Attendance[i]); err != nil {
			return fmt.Errorf("seed attendance %d: %w", f.Attendance[i].ID, err)
		}
	}
	for i := range f.ManualRequests {
		if err := store.CreateManualRequest(ctx, &f.ManualRequests[i]); err != nil {
			return fmt.Errorf("seed manual request %d: %w", f.ManualRequests[i].ID, err)
		}
	}
	for i := range f.PasswordRequests {
		if err := store.CreatePasswordRequest(ctx, &f.PasswordRequests[i]); err != nil {
			return fmt.Errorf("seed password request %d: %w", f.PasswordRequests[i].ID, err)
		}
	}
	for i := range f.Visits {
		if err := store.CreateVisit(ctx, &f.Visits[i]); err != nil {
			return fmt.Errorf("seed visit %d: %w", f.Visits[i].ID, err)
		}
	}

	if f.Settings != nil {
		if err := store.SaveSettings(ctx, f.Settings); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}
	for i := range f.Profiles {
		if err := store.SaveProfile(ctx, &f.Profiles[i]); err != nil {
			return fmt.Errorf("seed profile %d: %w", f.Profiles[i].UserID, err)
		}
	}

	log.Printf("Seeded store with %d employees, %d customers, %d attendance records",
		len(f.Employees), len(f.Customers), len(f.Attendance))
	return nil
}

// Open builds the store selected by driver and seeds it when empty.
func Open(ctx context.Context, driver, dsn, boltPath string) (Store, error) {
	var store Store
	switch driver {
	case "", DriverMemory:
		store = NewMemoryStore()
	case DriverPostgres, DriverSQLite:
		db, err := NewConnection(driver, dsn)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		store = NewGormStore(db)
	case DriverBolt:
		bs, err := OpenBoltStore(boltPath)
		if err != nil {
			return nil, err
		}
		store = bs
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	if err := Seed(ctx, store, DefaultFixtures()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
