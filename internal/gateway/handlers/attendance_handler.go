package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
)

type AttendanceHTTPHandler struct {
	svc *services.Services
}

func NewAttendanceHTTPHandler(svc *services.Services) *AttendanceHTTPHandler {
	return &AttendanceHTTPHandler{svc: svc}
}

type CheckInRequest struct {
	FingerprintVerified bool `json:"fingerprint_verified"`
}

func (h *AttendanceHTTPHandler) ListAttendance(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := h.svc.Attendance.ListAll(ctx, middleware.CurrentUser(c), filterQuery(c, q, filter.Attendance))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(records, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Attendance retrieved successfully", page, meta))
}

func (h *AttendanceHTTPHandler) DayStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.svc.Attendance.Day(ctx, middleware.CurrentUser(c), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Attendance stats retrieved successfully", stats))
}

func (h *AttendanceHTTPHandler) ListMyAttendance(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	records, err := h.svc.Attendance.ListOwned(ctx, user, user.ID, filterQuery(c, q, filter.Attendance))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(records, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Attendance retrieved successfully", page, meta))
}

func (h *AttendanceHTTPHandler) MyStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	stats, err := h.svc.Attendance.Stats(ctx, user, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Attendance stats retrieved successfully", stats))
}

func (h *AttendanceHTTPHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
			return
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st := middleware.CurrentSession(c)
	record, err := h.svc.Attendance.CheckIn(ctx, st.User, st.ID, req.FingerprintVerified)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Checked in successfully", record))
}

func (h *AttendanceHTTPHandler) CheckOut(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.svc.Attendance.CheckOut(ctx, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Checked out successfully", record))
}
