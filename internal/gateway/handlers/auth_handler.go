package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/metrics"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/utils"
)

type AuthHTTPHandler struct {
	gate    *session.Gate
	tracker *geo.Tracker
	metrics *metrics.Metrics
}

func NewAuthHTTPHandler(gate *session.Gate, tracker *geo.Tracker, m *metrics.Metrics) *AuthHTTPHandler {
	return &AuthHTTPHandler{gate: gate, tracker: tracker, metrics: m}
}

type LoginRequest struct {
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

type SelectTabRequest struct {
	Tab session.Tab `json:"tab" binding:"required"`
}

// SessionView is the navigation state a client renders.
type SessionView struct {
	ID        string            `json:"id"`
	User      models.User       `json:"user"`
	ActiveTab session.Tab       `json:"active_tab"`
	Tabs      []session.TabInfo `json:"tabs"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	Viewing   *models.Employee  `json:"viewing_employee,omitempty"`
}

func viewOf(st session.State) SessionView {
	return SessionView{
		ID:        st.ID,
		User:      st.User,
		ActiveTab: st.ActiveTab,
		Tabs:      st.Tabs(),
		Title:     st.Title(),
		Subtitle:  st.Subtitle(),
		Viewing:   st.Viewing,
	}
}

func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.gate.Login(ctx, req.Email, req.Password, req.Role)
	h.metrics.ObserveLogin(err == nil)
	if err != nil {
		writeError(c, err)
		return
	}

	token, expiresAt, err := utils.GenerateToken(st.ID, st.User.ID, string(st.User.Role), h.gate.TTL())
	if err != nil {
		writeError(c, err)
		return
	}

	// Employees start capturing location as soon as they sign in.
	if h.tracker != nil && !st.User.IsAdmin() {
		h.tracker.Refresh(geo.Key{Session: st.ID, Purpose: geo.PurposeAttendance})
		h.tracker.Refresh(geo.Key{Session: st.ID, Purpose: geo.PurposeCustomer})
	}

	c.JSON(http.StatusOK, successResponse("Login successful", map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
		"session":    viewOf(st),
	}))
}

func (h *AuthHTTPHandler) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	st := middleware.CurrentSession(c)
	if err := h.gate.Logout(ctx, st.ID); err != nil {
		writeError(c, err)
		return
	}
	if h.tracker != nil {
		h.tracker.ForgetSession(st.ID)
	}
	c.JSON(http.StatusOK, successResponse("Logged out", nil))
}

func (h *AuthHTTPHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Session retrieved successfully", viewOf(middleware.CurrentSession(c))))
}

func (h *AuthHTTPHandler) SelectTab(c *gin.Context) {
	var req SelectTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.gate.SelectTab(ctx, middleware.CurrentSession(c).ID, req.Tab)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Tab selected", viewOf(st)))
}

func (h *AuthHTTPHandler) ViewEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.gate.ViewEmployee(ctx, middleware.CurrentSession(c).ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Viewing employee", viewOf(st)))
}

func (h *AuthHTTPHandler) ExitViewing(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.gate.ExitViewing(ctx, middleware.CurrentSession(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Back to employees", viewOf(st)))
}

func (h *AuthHTTPHandler) OpenProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.gate.OpenProfile(ctx, middleware.CurrentSession(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Profile opened", viewOf(st)))
}
