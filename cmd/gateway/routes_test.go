package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/metrics"
	"fieldforce-system/internal/rpc"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetSecret("test-secret")

	ctx := context.Background()
	store := database.NewMemoryStore()
	if err := database.Seed(ctx, store, database.DefaultFixtures()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := metrics.New()
	device := geo.NewDeviceBridge()
	tracker := geo.NewTracker(device, geo.DefaultPolicy(), geo.Options{Timeout: 2 * time.Second, MaxAge: time.Minute})
	svc := services.New(services.Deps{
		Store:   store,
		Cache:   cache.NewMemory(),
		Metrics: m,
		Tracker: tracker,
	})

	r, err := newRouter(&app{
		gate:        session.NewGate(store, store, session.NewMemoryStore(), time.Hour),
		services:    svc,
		tracker:     tracker,
		device:      device,
		metrics:     m,
		probes:      []rpc.Probe{{Service: "store", Check: store.Ping}},
		rateLimit:   "1000-M",
		corsOrigins: []string{"*"},
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return r
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func login(t *testing.T, r http.Handler, email, password, role string) (string, map[string]interface{}) {
	t.Helper()
	w, env := call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password, "role": role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token   string                 `json:"token"`
		Session map[string]interface{} `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return data.Token, data.Session
}

func TestAdminLoginLandsOnDashboard(t *testing.T) {
	r := newTestRouter(t)
	token, sess := login(t, r, "admin@company.com", "admin123", "admin")

	if sess["active_tab"] != "dashboard" {
		t.Fatalf("active tab = %v, want dashboard", sess["active_tab"])
	}
	if tabs := sess["tabs"].([]interface{}); len(tabs) != 7 {
		t.Fatalf("admin sees %d tabs, want 7", len(tabs))
	}

	w, env := call(t, r, http.MethodGet, "/api/v1/reports/dashboard?date=2024-01-22", token, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var d struct {
		TotalEmployees int    `json:"total_employees"`
		AttendanceRate string `json:"attendance_rate"`
	}
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if d.TotalEmployees != 4 || d.AttendanceRate != "75" {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestLoginRejectsWrongRole(t *testing.T) {
	r := newTestRouter(t)
	w, env := call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@company.com", "password": "admin123", "role": "employee",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if env.Message != session.ErrInvalidCredentials.Error() {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestEmployeeSeesOwnTabsOnly(t *testing.T) {
	r := newTestRouter(t)
	token, sess := login(t, r, "john.smith@company.com", "john123", "employee")

	if sess["active_tab"] != "attendance" {
		t.Fatalf("active tab = %v, want attendance", sess["active_tab"])
	}
	if tabs := sess["tabs"].([]interface{}); len(tabs) != 2 {
		t.Fatalf("employee sees %d tabs, want 2", len(tabs))
	}

	if w, _ := call(t, r, http.MethodGet, "/api/v1/employees", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("employee list: status %d, want 403", w.Code)
	}
	if w, _ := call(t, r, http.MethodPut, "/api/v1/session/tab", token, map[string]string{"tab": "reports"}); w.Code != http.StatusBadRequest {
		t.Fatalf("select reports tab: status %d, want 400", w.Code)
	}

	w, env := call(t, r, http.MethodGet, "/api/v1/me/attendance", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("own attendance: %d", w.Code)
	}
	var records []map[string]interface{}
	json.Unmarshal(env.Data, &records)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
}

func TestManualRequestIsPendingWithTodayRequestDate(t *testing.T) {
	r := newTestRouter(t)
	john, _ := login(t, r, "john.smith@company.com", "john123", "employee")
	admin, _ := login(t, r, "admin@company.com", "admin123", "admin")

	w, env := call(t, r, http.MethodPost, "/api/v1/me/requests/attendance", john, map[string]string{
		"date": "2024-01-19", "check_in": "09:00", "check_out": "17:00", "reason": "Scanner was offline",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var req struct {
		Status      string `json:"status"`
		RequestDate string `json:"request_date"`
	}
	json.Unmarshal(env.Data, &req)
	if req.Status != "pending" || req.RequestDate != time.Now().Format("2006-01-02") {
		t.Fatalf("unexpected request %+v", req)
	}

	if w, _ := call(t, r, http.MethodPost, "/api/v1/me/requests/attendance", john, map[string]string{"date": "2024-01-19"}); w.Code != http.StatusBadRequest {
		t.Fatalf("incomplete submit: status %d, want 400", w.Code)
	}

	_, env = call(t, r, http.MethodGet, "/api/v1/requests/pending-count", admin, nil)
	var counts services.PendingCounts
	json.Unmarshal(env.Data, &counts)
	if counts.Attendance != 3 || counts.Total != 5 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestApprovingPasswordRequestUpdatesBadge(t *testing.T) {
	r := newTestRouter(t)
	admin, _ := login(t, r, "admin@company.com", "admin123", "admin")

	w, env := call(t, r, http.MethodPost, "/api/v1/requests/password/1/approve", admin, map[string]string{"admin_note": "Reset sent"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", w.Code, w.Body.String())
	}
	var reviewed struct {
		Status    string `json:"status"`
		AdminNote string `json:"admin_note"`
	}
	json.Unmarshal(env.Data, &reviewed)
	if reviewed.Status != "approved" || reviewed.AdminNote != "Reset sent" {
		t.Fatalf("unexpected review %+v", reviewed)
	}

	_, env = call(t, r, http.MethodGet, "/api/v1/requests/pending-count", admin, nil)
	var counts services.PendingCounts
	json.Unmarshal(env.Data, &counts)
	if counts.Password != 1 || counts.Total != 3 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	if w, _ := call(t, r, http.MethodPost, "/api/v1/requests/password/1/reject", admin, nil); w.Code != http.StatusConflict {
		t.Fatalf("second review: status %d, want 409", w.Code)
	}
}

func TestAddCustomerWaitsForLocation(t *testing.T) {
	r := newTestRouter(t)
	token, _ := login(t, r, "john.smith@company.com", "john123", "employee")
	customer := map[string]string{"name": "Harbor Supplies", "contact": "Ann Lee"}

	w, env := call(t, r, http.MethodPost, "/api/v1/me/customers", token, customer)
	if w.Code != http.StatusConflict || env.Message != services.ErrLocationUnavailable.Error() {
		t.Fatalf("add before location: %d %q", w.Code, env.Message)
	}

	waitFor(t, func() bool {
		_, env := call(t, r, http.MethodGet, "/api/v1/location?purpose=customer", token, nil)
		var v struct {
			AwaitingDevice bool `json:"awaiting_device"`
		}
		json.Unmarshal(env.Data, &v)
		return v.AwaitingDevice
	})
	if w, _ := call(t, r, http.MethodPost, "/api/v1/location/report", token, map[string]string{"permission": "denied"}); w.Code != http.StatusOK {
		t.Fatalf("report: status %d", w.Code)
	}
	waitFor(t, func() bool {
		_, env := call(t, r, http.MethodGet, "/api/v1/location?purpose=customer", token, nil)
		var v struct {
			Ready bool `json:"ready"`
		}
		json.Unmarshal(env.Data, &v)
		return v.Ready
	})

	w, env = call(t, r, http.MethodPost, "/api/v1/me/customers", token, customer)
	if w.Code != http.StatusCreated {
		t.Fatalf("add after fallback: %d %s", w.Code, w.Body.String())
	}
	var c struct {
		LastVisit            string `json:"last_visit"`
		RegistrationLocation struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Address   string  `json:"address"`
		} `json:"registration_location"`
	}
	json.Unmarshal(env.Data, &c)
	if c.LastVisit != "Never" || c.RegistrationLocation.Latitude != 40.7128 || c.RegistrationLocation.Longitude != -74.0060 {
		t.Fatalf("unexpected customer %+v", c)
	}
	if !strings.HasPrefix(c.RegistrationLocation.Address, "Recorded at:") {
		t.Fatalf("unexpected address %q", c.RegistrationLocation.Address)
	}
}

func TestAdminDrillDownIsReadOnly(t *testing.T) {
	r := newTestRouter(t)
	admin, _ := login(t, r, "admin@company.com", "admin123", "admin")

	w, env := call(t, r, http.MethodPost, "/api/v1/session/viewing/2", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("view employee: %d %s", w.Code, w.Body.String())
	}
	var view struct {
		Title     string        `json:"title"`
		ActiveTab string        `json:"active_tab"`
		Tabs      []interface{} `json:"tabs"`
	}
	json.Unmarshal(env.Data, &view)
	if view.Title != "John Smith - Employee Details" || view.ActiveTab != "attendance" || len(view.Tabs) != 2 {
		t.Fatalf("unexpected drill-down view %+v", view)
	}

	if w, _ := call(t, r, http.MethodGet, "/api/v1/employees/2/customers", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("employee customers: %d", w.Code)
	}
	if w, _ := call(t, r, http.MethodPost, "/api/v1/me/customers/1/visits/log", admin, map[string]string{"purpose": "Follow-up"}); w.Code != http.StatusForbidden {
		t.Fatalf("admin logging a visit: status %d, want 403", w.Code)
	}

	_, env = call(t, r, http.MethodDelete, "/api/v1/session/viewing", admin, nil)
	json.Unmarshal(env.Data, &view)
	if view.ActiveTab != "employees" {
		t.Fatalf("after exit active tab = %s, want employees", view.ActiveTab)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	r := newTestRouter(t)
	token, _ := login(t, r, "sarah.j@company.com", "sarah123", "employee")

	if w, _ := call(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w, _ := call(t, r, http.MethodGet, "/api/v1/session", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("session after logout: status %d, want 401", w.Code)
	}
	if w, _ := call(t, r, http.MethodGet, "/api/v1/session", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	r := newTestRouter(t)
	admin, _ := login(t, r, "admin@company.com", "admin123", "admin")

	w, _ := call(t, r, http.MethodGet, "/api/v1/reports/export?type=visits&format=csv&from=2024-01-01&to=2024-01-31", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "visits-report.csv") {
		t.Fatalf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if lines := strings.Count(strings.TrimSpace(w.Body.String()), "\n"); lines != 5 {
		t.Fatalf("got %d data lines, want 5", lines)
	}

	w, env := call(t, r, http.MethodGet, "/api/v1/reports/export?type=visits&from=2024-01-31&to=2024-01-01", admin, nil)
	if w.Code != http.StatusBadRequest || env.Message != "Start date must not be after end date" {
		t.Fatalf("reversed range: %d %s", w.Code, w.Body.String())
	}
}

func TestSettingsAreAdminOnly(t *testing.T) {
	r := newTestRouter(t)
	admin, _ := login(t, r, "admin@company.com", "admin123", "admin")
	john, _ := login(t, r, "john.smith@company.com", "john123", "employee")

	w, _ := call(t, r, http.MethodGet, "/api/v1/settings", john, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee settings: %d", w.Code)
	}

	w, env := call(t, r, http.MethodPut, "/api/v1/settings", admin, map[string]interface{}{
		"auto_approve_attendance": true,
		"working_hours":           "8:30 AM - 5:30 PM",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", w.Code, w.Body.String())
	}
	var st struct {
		AutoApprove  bool   `json:"auto_approve_attendance"`
		Fingerprint  bool   `json:"require_fingerprint"`
		WorkingHours string `json:"working_hours"`
	}
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !st.AutoApprove || !st.Fingerprint || st.WorkingHours != "8:30 AM - 5:30 PM" {
		t.Fatalf("unexpected settings %+v", st)
	}

	w, _ = call(t, r, http.MethodPut, "/api/v1/settings", admin, map[string]string{"working_hours": "whenever"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid working hours: %d", w.Code)
	}

	w, env = call(t, r, http.MethodPut, "/api/v1/profile", admin, map[string]string{"phone": "+1 (555) 999-0000"})
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), "999-0000") {
		t.Fatalf("update profile: %d %s", w.Code, w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w, _ := call(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	w, _ = call(t, r, http.MethodGet, "/health/detailed", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"disabled"`) {
		t.Fatalf("detailed health: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	r.ServeHTTP(mw, req)
	if mw.Code != http.StatusOK || !strings.Contains(mw.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d", mw.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
