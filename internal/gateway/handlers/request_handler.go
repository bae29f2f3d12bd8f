package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/workflow"
)

type RequestHTTPHandler struct {
	svc *services.Services
}

func NewRequestHTTPHandler(svc *services.Services) *RequestHTTPHandler {
	return &RequestHTTPHandler{svc: svc}
}

type ReviewRequest struct {
	Note string `json:"admin_note"`
}

func (h *RequestHTTPHandler) SubmitManual(c *gin.Context) {
	var req services.NewManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Please fill in all required fields"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.svc.Requests.SubmitManual(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Manual attendance request submitted successfully", r))
}

func (h *RequestHTTPHandler) ListMyManual(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	list, err := h.svc.Requests.ListManual(ctx, user, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Requests retrieved successfully", list))
}

func (h *RequestHTTPHandler) SubmitPassword(c *gin.Context) {
	var req services.NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Please provide a reason"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.svc.Requests.SubmitPassword(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Password change request submitted successfully", r))
}

func (h *RequestHTTPHandler) ListMyPassword(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	list, err := h.svc.Requests.ListPassword(ctx, user, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Requests retrieved successfully", list))
}

func (h *RequestHTTPHandler) ListManual(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.svc.Requests.ListManual(ctx, middleware.CurrentUser(c), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Requests retrieved successfully", list))
}

func (h *RequestHTTPHandler) ListPassword(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.svc.Requests.ListPassword(ctx, middleware.CurrentUser(c), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Requests retrieved successfully", list))
}

// ReviewManual handles both approve and reject routes; the decision comes
// from the route.
func (h *RequestHTTPHandler) ReviewManual(decision workflow.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, note, ok := bindReview(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		r, err := h.svc.Requests.ReviewManual(ctx, middleware.CurrentUser(c), id, decision, note)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Request "+string(r.Status), r))
	}
}

func (h *RequestHTTPHandler) ReviewPassword(decision workflow.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, note, ok := bindReview(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		r, err := h.svc.Requests.ReviewPassword(ctx, middleware.CurrentUser(c), id, decision, note)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Request "+string(r.Status), r))
	}
}

func bindReview(c *gin.Context) (int64, string, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return 0, "", false
	}
	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
			return 0, "", false
		}
	}
	return id, req.Note, true
}

func (h *RequestHTTPHandler) PendingCount(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	counts, err := h.svc.Requests.Pending(ctx, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Pending counts retrieved successfully", counts))
}

func (h *RequestHTTPHandler) ChangePassword(c *gin.Context) {
	var req services.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Please fill in all password fields"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Requests.ChangeOwnPassword(ctx, middleware.CurrentUser(c), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Password updated successfully", nil))
}
